package serial

import (
	"context"
	"fmt"
	"io"
	"time"

	tarm "github.com/tarm/serial"
	"go.uber.org/zap"

	"github.com/scheerer/screen-ambilight/internal/lights"
	"github.com/scheerer/screen-ambilight/internal/logging"
)

var logger = logging.New("serial")

// MessageSize is the length of one color message: RRRGGGBBB.
const MessageSize = 9

type Config struct {
	Port string
	Baud int
	// ReadTimeout is passed to the driver; the firmware never answers.
	ReadTimeout time.Duration
}

// Serial writes one RRRGGGBBB message per color to a serial port.
type Serial struct {
	port io.WriteCloser
	name string
	buf  [MessageSize]byte
}

var _ lights.LightService = (*Serial)(nil)

func Open(config Config) (*Serial, error) {
	port, err := tarm.OpenPort(&tarm.Config{
		Name:        config.Port,
		Baud:        config.Baud,
		ReadTimeout: config.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", lights.ErrConnectionFailure, config.Port, err)
	}

	logger.With(zap.String("port", config.Port), zap.Int("baud", config.Baud)).Info("Serial port open")
	return New(port, config.Port), nil
}

// New wraps an already open port.
func New(port io.WriteCloser, name string) *Serial {
	return &Serial{port: port, name: name}
}

func (s *Serial) LightCount() int {
	return 1
}

func (s *Serial) SetColor(ctx context.Context, color lights.Color) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := AppendMessage(s.buf[:0], color)
	n, err := s.port.Write(msg)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", lights.ErrWriteFailure, s.name, err)
	}
	if n != len(msg) {
		return fmt.Errorf("%w: %s: short write %d of %d bytes", lights.ErrWriteFailure, s.name, n, len(msg))
	}
	return nil
}

func (s *Serial) Close() error {
	return s.port.Close()
}
