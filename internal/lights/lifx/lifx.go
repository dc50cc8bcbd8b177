package lifx

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pdf/golifx"
	"github.com/pdf/golifx/common"
	"github.com/pdf/golifx/protocol"
	"go.uber.org/zap"

	"github.com/scheerer/screen-ambilight/internal/lights"
	"github.com/scheerer/screen-ambilight/internal/logging"
)

var logger = logging.New("lifx")

const (
	kelvin = 3500
	// about 1.5% of full scale
	blackThreshold    = 983
	discoveryInterval = 15 * time.Second
	discoveryTimeout  = 5 * time.Second
)

type Config struct {
	GroupName     string
	MaxBrightness float64
	MinBrightness float64
	Transition    time.Duration
}

// LifxLights drives every bulb in one LIFX group. The group is looked up in
// the background and refreshed every discoveryInterval.
type LifxLights struct {
	config Config
	client *golifx.Client

	mu    sync.RWMutex
	group common.Group

	cancel context.CancelFunc
	done   chan struct{}
}

var _ lights.LightService = (*LifxLights)(nil)

func NewLifx(ctx context.Context, config Config) (*LifxLights, error) {
	client, err := golifx.NewClient(&protocol.V2{})
	if err != nil {
		return nil, fmt.Errorf("%w: lifx client: %v", lights.ErrConnectionFailure, err)
	}
	client.SetDiscoveryInterval(discoveryInterval)

	ctx, cancel := context.WithCancel(ctx)
	l := &LifxLights{
		config: config,
		client: client,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go l.run(ctx)
	return l, nil
}

func (l *LifxLights) run(ctx context.Context) {
	defer close(l.done)

	ticker := time.NewTicker(discoveryInterval)
	defer ticker.Stop()

	l.discover(ctx)
	for {
		select {
		case <-ticker.C:
			l.discover(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (l *LifxLights) discover(ctx context.Context) {
	logger.With(zap.String("group", l.config.GroupName)).Debug("LIFX discovery starting")

	type result struct {
		group common.Group
		err   error
	}
	completed := make(chan result, 1)
	go func() {
		g, err := l.client.GetGroupByLabel(l.config.GroupName)
		completed <- result{group: g, err: err}
	}()

	ctx, cancel := context.WithTimeout(ctx, discoveryTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		logger.With(zap.Error(ctx.Err())).Warn("LIFX discovery timed out")
	case r := <-completed:
		if r.err != nil || r.group == nil {
			logger.With(zap.String("group", l.config.GroupName), zap.Error(r.err)).Warn("Couldn't discover LIFX group")
			return
		}
		l.mu.Lock()
		found := l.group == nil
		l.group = r.group
		l.mu.Unlock()
		if found {
			logger.With(zap.String("group", r.group.GetLabel())).Info("LIFX group found")
		}
	}
}

func (l *LifxLights) LightCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.group == nil {
		return 0
	}
	return len(l.group.Lights())
}

func (l *LifxLights) SetColor(ctx context.Context, color lights.Color) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.RLock()
	group := l.group
	l.mu.RUnlock()
	if group == nil {
		return fmt.Errorf("%w: group %q not discovered yet", lights.ErrWriteFailure, l.config.GroupName)
	}

	lifxColor := adjustColor(newLifxColor(color), l.config)
	logger.With(zap.Stringer("color", color), zap.Any("lifxColor", lifxColor)).Debug("Setting LIFX group color")

	if err := group.SetColor(lifxColor, l.config.Transition); err != nil {
		return fmt.Errorf("%w: group %q: %v", lights.ErrWriteFailure, l.config.GroupName, err)
	}
	return nil
}

func (l *LifxLights) Close() error {
	l.cancel()
	<-l.done
	return l.client.Close()
}

func newLifxColor(color lights.Color) common.Color {
	c := colorful.Color{
		R: float64(color.Red) / 0xFF,
		G: float64(color.Green) / 0xFF,
		B: float64(color.Blue) / 0xFF,
	}
	h, s, v := c.Hsv()

	return common.Color{
		Hue:        uint16(math.Round(h / 360 * 0xFFFF)),
		Saturation: uint16(math.Round(s * 0xFFFF)),
		Brightness: uint16(math.Round(v * 0xFFFF)),
		Kelvin:     kelvin,
	}
}

func adjustColor(color common.Color, config Config) common.Color {
	if color.Brightness <= blackThreshold && color.Saturation <= blackThreshold {
		// blackish - turn the light off
		return common.Color{Kelvin: kelvin}
	}

	color.Brightness = uint16(math.Min(config.MaxBrightness*0xFFFF, math.Max(config.MinBrightness*0xFFFF, float64(color.Brightness))))

	return color
}
