package screen

import (
	"image"
	"image/color"
	"testing"
)

func TestQuantize_Idempotent(t *testing.T) {
	for v := 0; v < 256; v++ {
		q := Quantize(uint8(v))
		if Quantize(q) != q {
			t.Errorf("Quantize(Quantize(%d)) = %d, want %d", v, Quantize(q), q)
		}
		if q&7 != 0 || int(q) > v || v-int(q) > 7 {
			t.Errorf("Quantize(%d) = %d is not the lower multiple of 8", v, q)
		}
	}
}

func TestBucketKey_RoundTrip(t *testing.T) {
	c := color.RGBA{R: 7, G: 255, B: 130, A: 255}
	got := bucketColor(bucketKey(c.R, c.G, c.B))
	want := color.RGBA{R: Quantize(c.R), G: Quantize(c.G), B: Quantize(c.B), A: 255}
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestClassify_AllDark(t *testing.T) {
	img := solid(10, 10, color.RGBA{R: 25, G: 25, B: 25, A: 255})
	fill(img, image.Rect(0, 0, 5, 10), color.RGBA{R: 3, G: 20, B: 11, A: 255})

	got := NewAnalyzer().Classify(img, img.Rect)
	if got != Black {
		t.Errorf("expected black, got %v", got)
	}
}

func TestClassify_AllBright(t *testing.T) {
	img := solid(10, 10, color.RGBA{R: 230, G: 230, B: 230, A: 255})
	fill(img, image.Rect(0, 0, 10, 4), color.RGBA{R: 255, G: 240, B: 231, A: 255})

	got := NewAnalyzer().Classify(img, img.Rect)
	if got != White {
		t.Errorf("expected white, got %v", got)
	}
}

func TestClassify_BlackDominatesFragmentedColors(t *testing.T) {
	// 100 pixels: 83 black, 17 distinct colors.
	img := solid(10, 10, Black)
	for i := 0; i < 17; i++ {
		x, y := i%10, 9-i/10
		img.SetRGBA(x, y, color.RGBA{R: uint8(40 + i*8), G: 100, B: 60, A: 255})
	}

	got := NewAnalyzer().Classify(img, img.Rect)
	if got != Black {
		t.Errorf("expected black, got %v", got)
	}
}

func TestClassify_Thresholds(t *testing.T) {
	red := color.RGBA{R: 200, G: 16, B: 40, A: 255}
	blue := color.RGBA{R: 32, G: 64, B: 200, A: 255}

	tests := []struct {
		name  string
		bulk  color.RGBA
		count int
		rest  color.RGBA
		want  color.RGBA
	}{
		{"82 percent black is not enough", Black, 82, red, red},
		{"83 percent black", Black, 83, red, Black},
		{"90 percent white is not enough", White, 90, blue, blue},
		{"91 percent white", White, 91, blue, White},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := solid(10, 10, tt.rest)
			for i := 0; i < tt.count; i++ {
				img.SetRGBA(i%10, i/10, tt.bulk)
			}
			got := NewAnalyzer().Classify(img, img.Rect)
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestClassify_QuantizedMode(t *testing.T) {
	img := solid(10, 10, color.RGBA{R: 40, G: 160, B: 80, A: 255})
	// 60 pixels that differ only in their low bits collapse into one bucket
	// and outnumber the 40 pixels above.
	for i := 0; i < 60; i++ {
		off := uint8(i % 8)
		img.SetRGBA(i%10, 4+i/10, color.RGBA{R: 120 + off, G: 48 + off, B: 200 + off, A: 255})
	}

	got := NewAnalyzer().Classify(img, img.Rect)
	want := color.RGBA{R: 120, G: 48, B: 200, A: 255}
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestClassify_TieGoesToFirstSeen(t *testing.T) {
	first := color.RGBA{R: 200, G: 80, B: 40, A: 255}
	second := color.RGBA{R: 40, G: 80, B: 200, A: 255}

	img := solid(4, 2, second)
	fill(img, image.Rect(0, 0, 4, 1), first)

	a := NewAnalyzer()
	if got := a.Classify(img, img.Rect); got != first {
		t.Errorf("expected first row color %v, got %v", first, got)
	}

	fill(img, image.Rect(0, 0, 4, 1), second)
	fill(img, image.Rect(0, 1, 4, 2), first)
	if got := a.Classify(img, img.Rect); got != second {
		t.Errorf("expected first row color %v, got %v", second, got)
	}
}

func TestClassify_OnlyBlackAndWhite(t *testing.T) {
	tests := []struct {
		name  string
		white int
		want  color.RGBA
	}{
		{"even split prefers black", 50, Black},
		{"more white", 60, White},
		{"more black", 40, Black},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := solid(10, 10, Black)
			for i := 0; i < tt.white; i++ {
				img.SetRGBA(i%10, i/10, White)
			}
			got := NewAnalyzer().Classify(img, img.Rect)
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 18))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(i * 7)
		img.Pix[i+1] = uint8(i * 13)
		img.Pix[i+2] = uint8(i * 29)
		img.Pix[i+3] = 255
	}

	a := NewAnalyzer()
	first := a.Classify(img, img.Rect)
	for i := 0; i < 5; i++ {
		if got := a.Classify(img, img.Rect); got != first {
			t.Fatalf("run %d: expected %v, got %v", i, first, got)
		}
		if got := NewAnalyzer().Classify(img, img.Rect); got != first {
			t.Fatalf("fresh analyzer: expected %v, got %v", first, got)
		}
	}
}

func TestClassify_TallyResetBetweenFrames(t *testing.T) {
	a := NewAnalyzer()
	red := color.RGBA{R: 200, G: 16, B: 16, A: 255}
	green := color.RGBA{R: 16, G: 200, B: 16, A: 255}

	a.Classify(solid(10, 10, red), image.Rect(0, 0, 10, 10))

	img := solid(10, 10, green)
	img.SetRGBA(0, 0, red)
	if got := a.Classify(img, img.Rect); got != green {
		t.Errorf("expected %v, got %v", green, got)
	}
	if n := a.tally.Colors(); n != 2 {
		t.Errorf("expected 2 buckets after reset, got %d", n)
	}
	if n := a.tally.Count(red); n != 1 {
		t.Errorf("expected red count 1 after reset, got %d", n)
	}
}

func TestClassify_CropOutsideFrame(t *testing.T) {
	img := solid(4, 4, White)
	got := NewAnalyzer().Classify(img, image.Rect(10, 10, 20, 20))
	if got != Black {
		t.Errorf("expected black for empty crop, got %v", got)
	}
}

func TestDominantColor_CropsLetterbox(t *testing.T) {
	// Black bars take 80% of the frame; without cropping black would win.
	img := solid(10, 20, Black)
	purple := color.RGBA{R: 128, G: 32, B: 160, A: 255}
	fill(img, image.Rect(0, 8, 10, 12), purple)

	got := NewAnalyzer().DominantColor(img)
	if got != purple {
		t.Errorf("expected %v, got %v", purple, got)
	}
}

func TestDominantColor_AllBlack(t *testing.T) {
	got := NewAnalyzer().DominantColor(solid(16, 9, Black))
	if got != Black {
		t.Errorf("expected black, got %v", got)
	}
}
