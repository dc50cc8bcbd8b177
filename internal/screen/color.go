package screen

import (
	"image"
	"image/color"
)

const (
	// Pixels with every channel at or below blackLevel count as black.
	blackLevel = 25
	// Pixels with every channel at or above whiteLevel count as white.
	whiteLevel = 230

	// Black or white wins once it covers more than this percent of the crop.
	blackPercent = 82
	whitePercent = 90

	quantizeBits = 3
	bucketBits   = 8 - quantizeBits
	bucketCount  = 1 << (3 * bucketBits)
)

var (
	Black = color.RGBA{A: 0xFF}
	White = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// Quantize clears the low bits of a channel, leaving 32 levels.
func Quantize(c uint8) uint8 {
	return c &^ (1<<quantizeBits - 1)
}

func bucketKey(r, g, b uint8) uint16 {
	return uint16(r>>quantizeBits)<<(2*bucketBits) | uint16(g>>quantizeBits)<<bucketBits | uint16(b>>quantizeBits)
}

func bucketColor(k uint16) color.RGBA {
	const mask = 1<<bucketBits - 1
	return color.RGBA{
		R: uint8(k>>(2*bucketBits)&mask) << quantizeBits,
		G: uint8(k>>bucketBits&mask) << quantizeBits,
		B: uint8(k&mask) << quantizeBits,
		A: 0xFF,
	}
}

// Tally counts the pixels of one analysis pass. It is reused between passes;
// Reset only clears the buckets touched since the previous Reset.
type Tally struct {
	Black int
	White int

	counts [bucketCount]uint32
	// keys in the order they were first seen
	seen []uint16
}

func (t *Tally) Reset() {
	for _, k := range t.seen {
		t.counts[k] = 0
	}
	t.seen = t.seen[:0]
	t.Black = 0
	t.White = 0
}

func (t *Tally) Add(r, g, b uint8) {
	switch {
	case r <= blackLevel && g <= blackLevel && b <= blackLevel:
		t.Black++
	case r >= whiteLevel && g >= whiteLevel && b >= whiteLevel:
		t.White++
	default:
		k := bucketKey(r, g, b)
		if t.counts[k] == 0 {
			t.seen = append(t.seen, k)
		}
		t.counts[k]++
	}
}

// Count returns how many pixels fell into the bucket of c.
func (t *Tally) Count(c color.RGBA) int {
	return int(t.counts[bucketKey(c.R, c.G, c.B)])
}

// Colors is the number of distinct quantized colors counted.
func (t *Tally) Colors() int {
	return len(t.seen)
}

// Mode returns the quantized color with the highest count. Ties go to the
// color that was seen first.
func (t *Tally) Mode() (color.RGBA, bool) {
	if len(t.seen) == 0 {
		return color.RGBA{}, false
	}
	best := t.seen[0]
	for _, k := range t.seen[1:] {
		if t.counts[k] > t.counts[best] {
			best = k
		}
	}
	return bucketColor(best), true
}

// Analyzer picks the dominant color of a frame. It keeps its tally between
// calls and is not safe for concurrent use.
type Analyzer struct {
	tally Tally
}

func NewAnalyzer() *Analyzer {
	a := &Analyzer{}
	a.tally.seen = make([]uint16, 0, 1024)
	return a
}

// DominantColor crops away black borders and classifies what is left. A
// frame that is entirely pure black is reported as Black without cropping.
func (a *Analyzer) DominantColor(img *image.RGBA) color.RGBA {
	crop, ok := DetectCrop(img)
	if !ok {
		return Black
	}
	return a.Classify(img, crop)
}

// Classify returns the dominant color of img inside crop.
func (a *Analyzer) Classify(img *image.RGBA, crop image.Rectangle) color.RGBA {
	crop = crop.Intersect(img.Bounds())
	if crop.Empty() {
		return Black
	}

	t := &a.tally
	t.Reset()
	for y := crop.Min.Y; y < crop.Max.Y; y++ {
		i := img.PixOffset(crop.Min.X, y)
		for x := crop.Min.X; x < crop.Max.X; x++ {
			t.Add(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
			i += 4
		}
	}

	total := crop.Dx() * crop.Dy()
	if t.Black*100 > blackPercent*total {
		return Black
	}
	if t.White*100 > whitePercent*total {
		return White
	}
	if c, ok := t.Mode(); ok {
		return c
	}

	// only black and white pixels, neither past its threshold
	if t.White > t.Black {
		return White
	}
	return Black
}
