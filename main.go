package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env"
	"go.uber.org/zap"

	"github.com/scheerer/screen-ambilight/ambient"
	"github.com/scheerer/screen-ambilight/internal/lights"
	"github.com/scheerer/screen-ambilight/internal/lights/lifx"
	"github.com/scheerer/screen-ambilight/internal/lights/serial"
	"github.com/scheerer/screen-ambilight/internal/logging"
	"github.com/scheerer/screen-ambilight/internal/screen"
)

var (
	logger = logging.New("main")
	config = AmbilightConfig{}
)

type AmbilightConfig struct {
	CaptureInterval    time.Duration `env:"CAPTURE_INTERVAL" envDefault:"0s"`
	ThroughputInterval time.Duration `env:"THROUGHPUT_INTERVAL" envDefault:"1s"`
	CaptureMaxBackoff  time.Duration `env:"CAPTURE_MAX_BACKOFF" envDefault:"5s"`
	LightType          string        `env:"LIGHT_TYPE" envDefault:"SERIAL"`
	SerialPort         string        `env:"SERIAL_PORT" envDefault:"/dev/ttyUSB0"`
	SerialBaud         int           `env:"SERIAL_BAUD" envDefault:"115200"`
	LightGroupName     string        `env:"LIGHT_GROUP_NAME" envDefault:"AMBILIGHT"`
	MaxBrightness      float64       `env:"MAX_BRIGHTNESS" envDefault:"0.65"`
	MinBrightness      float64       `env:"MIN_BRIGHTNESS" envDefault:"0"`
	Transition         time.Duration `env:"TRANSITION" envDefault:"50ms"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	defer logger.Sync()

	err := env.Parse(&config)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to parse environment variables")
	}

	level, err := logging.ParseLevel(config.LogLevel)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Invalid LOG_LEVEL")
	}
	logging.GetLeveler().SetAllLevels(level)

	logger.With(zap.Any("config", config)).Info("Starting ambilight")
	logger.Info("Adjust CAPTURE_INTERVAL to limit the frame rate. 0 captures as fast as possible.")
	logger.Info("Adjust LIGHT_TYPE to choose the output. Valid values are: [SERIAL, LIFX]")
	logger.Info("Adjust SERIAL_PORT and SERIAL_BAUD to match the microcontroller.")
	logger.Info("Adjust LOG_LEVEL to debug to log every color sent.")
	logger.Info("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lightService, err := openLights(ctx, config)
	if err != nil {
		logger.With(zap.Error(err), zap.String("lightType", config.LightType)).Fatal("Failed to connect to lights")
	}
	defer func() {
		if err := lightService.Close(); err != nil {
			logger.With(zap.Error(err)).Warn("Failed to close lights")
		}
	}()

	ambient.Run(ctx, ambient.Config{
		CaptureInterval:    config.CaptureInterval,
		ThroughputInterval: config.ThroughputInterval,
		MaxCaptureBackoff:  config.CaptureMaxBackoff,
	}, screen.NewSampler(), screen.NewAnalyzer(), lightService)

	logger.Info("Shutting down")
}

func openLights(ctx context.Context, config AmbilightConfig) (lights.LightService, error) {
	switch config.LightType {
	case "SERIAL":
		return serial.Open(serial.Config{
			Port: config.SerialPort,
			Baud: config.SerialBaud,
		})
	case "LIFX":
		return lifx.NewLifx(ctx, lifx.Config{
			GroupName:     config.LightGroupName,
			MinBrightness: config.MinBrightness,
			MaxBrightness: config.MaxBrightness,
			Transition:    config.Transition,
		})
	default:
		return nil, fmt.Errorf("unknown light type: %v", config.LightType)
	}
}
