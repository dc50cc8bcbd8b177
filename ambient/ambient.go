package ambient

import (
	"context"
	"image"
	"image/color"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/scheerer/screen-ambilight/internal/lights"
	"github.com/scheerer/screen-ambilight/internal/logging"
)

var logger = logging.New("ambient")

const (
	// idlePoll is how often to check for lights when unthrottled.
	idlePoll            = 100 * time.Millisecond
	slowWarningInterval = 10 * time.Second
	initialRetry        = 50 * time.Millisecond
)

type Config struct {
	// CaptureInterval is the target time between frames. Zero runs as fast
	// as capture and output allow.
	CaptureInterval    time.Duration
	ThroughputInterval time.Duration
	MaxCaptureBackoff  time.Duration
}

type Sampler interface {
	Capture() (*image.RGBA, error)
}

type Analyzer interface {
	DominantColor(img *image.RGBA) color.RGBA
}

// Run captures, analyzes and sends one frame at a time until ctx is done.
// Capture and write failures drop the frame and the loop carries on.
func Run(ctx context.Context, config Config, sampler Sampler, analyzer Analyzer, lightService lights.LightService) {
	retry := newCaptureBackoff(config.MaxCaptureBackoff)
	stats := throughput{start: time.Now()}
	var lastWarning time.Time

	for ctx.Err() == nil {
		if lightService.LightCount() == 0 {
			sleep(ctx, idleInterval(config.CaptureInterval))
			continue
		}

		startTime := time.Now()
		img, err := sampler.Capture()
		captureScreenDuration := time.Since(startTime)
		if err != nil {
			wait := retry.NextBackOff()
			logger.With(zap.Error(err), zap.Duration("retryIn", wait)).Error("Failed to capture screen")
			sleep(ctx, wait)
			continue
		}
		retry.Reset()

		colorCalculationStart := time.Now()
		c := lights.FromRGBA(analyzer.DominantColor(img))
		colorCalculationDuration := time.Since(colorCalculationStart)

		if ctx.Err() != nil {
			// cancelled while capturing or analyzing
			break
		}

		setColorStart := time.Now()
		if err := lightService.SetColor(ctx, c); err != nil {
			stats.dropped++
			logger.With(zap.Error(err), zap.Stringer("color", c)).Warn("Dropped frame")
		} else {
			stats.sent++
			logger.With(zap.Stringer("color", c)).Debug("Sent color")
		}
		setColorDuration := time.Since(setColorStart)

		if r, ok := stats.observe(time.Now(), config.ThroughputInterval); ok {
			logger.With(zap.Int("sent", r.sent), zap.Int("dropped", r.dropped), zap.Duration("elapsed", r.elapsed)).
				Info("Colors sent")
		}

		if config.CaptureInterval <= 0 {
			continue
		}
		totalDuration := time.Since(startTime)
		if totalDuration > config.CaptureInterval {
			if time.Since(lastWarning) > slowWarningInterval {
				logger.With(
					zap.Stringer("captureScreenDuration", captureScreenDuration),
					zap.Stringer("colorCalculationDuration", colorCalculationDuration),
					zap.Stringer("setColorDuration", setColorDuration),
					zap.Stringer("totalDuration", totalDuration)).
					Warn("Cannot keep up with CAPTURE_INTERVAL. Consider increasing CAPTURE_INTERVAL or setting it to 0.")
				lastWarning = time.Now()
			}
		} else {
			sleep(ctx, config.CaptureInterval-totalDuration)
		}
	}
}

func newCaptureBackoff(ceiling time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialRetry
	if ceiling > 0 {
		b.MaxInterval = ceiling
		if ceiling < b.InitialInterval {
			b.InitialInterval = ceiling
		}
	}
	// keep retrying for as long as the process runs
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func idleInterval(captureInterval time.Duration) time.Duration {
	if captureInterval > 0 {
		return captureInterval
	}
	return idlePoll
}

// sleep waits for d or until ctx is done, whichever is first.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
