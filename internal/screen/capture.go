package screen

import (
	"errors"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/scheerer/screen-ambilight/internal/logging"
)

var logger = logging.New("screen")

// DownscaleFactor divides the native display width and height.
const DownscaleFactor = 4

// primaryDisplay is the display index kbinani/screenshot reports as primary.
const primaryDisplay = 0

var ErrCaptureUnavailable = errors.New("screen capture unavailable")

// Sampler captures the primary display into a reused, downsampled buffer.
// The returned image is only valid until the next call to Capture.
type Sampler struct {
	factor int
	frame  *image.RGBA
}

func NewSampler() *Sampler {
	return &Sampler{factor: DownscaleFactor}
}

func (s *Sampler) Capture() (*image.RGBA, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return nil, fmt.Errorf("%w: no active displays", ErrCaptureUnavailable)
	}

	bounds := screenshot.GetDisplayBounds(primaryDisplay)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}

	frame, err := Downsample(s.frame, img, s.factor)
	if err != nil {
		return nil, err
	}
	if frame != s.frame {
		logger.With(zap.Int("width", frame.Rect.Dx()), zap.Int("height", frame.Rect.Dy())).Debug("Allocated frame buffer")
		s.frame = frame
	}
	return frame, nil
}

// Downsample scales src down by factor into dst using nearest neighbour
// sampling. dst is reallocated only when it is nil or the wrong size, so
// callers should pass back the previously returned image.
func Downsample(dst *image.RGBA, src image.Image, factor int) (*image.RGBA, error) {
	if factor < 1 {
		factor = 1
	}
	sb := src.Bounds()
	w, h := sb.Dx()/factor, sb.Dy()/factor
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: display %dx%d too small to downscale by %d", ErrCaptureUnavailable, sb.Dx(), sb.Dy(), factor)
	}

	if dst == nil || dst.Rect.Dx() != w || dst.Rect.Dy() != h {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	draw.NearestNeighbor.Scale(dst, dst.Rect, src, sb, draw.Src, nil)
	return dst, nil
}
