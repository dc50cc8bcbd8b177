package screen

import "image"

// DetectCrop finds the letterbox-free region of img: the smallest rectangle
// whose outer rows and columns each contain at least one pixel that is not pure
// black (R, G and B all zero; alpha is ignored).
//
// It reports false when every pixel is pure black. The returned rectangle is
// then the full image bounds and must not be treated as content.
func DetectCrop(img *image.RGBA) (image.Rectangle, bool) {
	b := img.Bounds()
	if b.Empty() {
		return b, false
	}
	crop := b

	top := -1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if !blackRow(img, y, b.Min.X, b.Max.X) {
			top = y
			break
		}
	}
	if top < 0 {
		return b, false
	}
	crop.Min.Y = top

	// A non-black row exists, so each remaining scan stops before running off
	// the end.
	for y := b.Max.Y - 1; y >= top; y-- {
		if !blackRow(img, y, b.Min.X, b.Max.X) {
			crop.Max.Y = y + 1
			break
		}
	}

	for x := b.Min.X; x < b.Max.X; x++ {
		if !blackColumn(img, x, crop.Min.Y, crop.Max.Y) {
			crop.Min.X = x
			break
		}
	}

	for x := b.Max.X - 1; x >= crop.Min.X; x-- {
		if !blackColumn(img, x, crop.Min.Y, crop.Max.Y) {
			crop.Max.X = x + 1
			break
		}
	}

	return crop, true
}

func blackRow(img *image.RGBA, y, x0, x1 int) bool {
	i := img.PixOffset(x0, y)
	for x := x0; x < x1; x++ {
		if img.Pix[i] != 0 || img.Pix[i+1] != 0 || img.Pix[i+2] != 0 {
			return false
		}
		i += 4
	}
	return true
}

func blackColumn(img *image.RGBA, x, y0, y1 int) bool {
	i := img.PixOffset(x, y0)
	for y := y0; y < y1; y++ {
		if img.Pix[i] != 0 || img.Pix[i+1] != 0 || img.Pix[i+2] != 0 {
			return false
		}
		i += img.Stride
	}
	return true
}
