package normalize

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // decoder registration
	"image/png"

	_ "golang.org/x/image/bmp" // decoder registration
	xdraw "golang.org/x/image/draw"
)

// canonicalizeRaster decodes any registered raster format, downscales when a
// side exceeds MaxDimension (aspect ratio preserved), and re-encodes as PNG.
// Already-canonical input round-trips to an equivalent image.
func (n *Normalizer) canonicalizeRaster(raw []byte) (CanonicalImage, error) {
	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return CanonicalImage{}, fmt.Errorf("decode %s image: %w", format, ErrCorruptInput)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return CanonicalImage{}, fmt.Errorf("zero-sized image: %w", ErrCorruptInput)
	}

	if max := n.cfg.MaxDimension; w > max || h > max {
		w, h = fitWithin(w, h, max)
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return CanonicalImage{}, fmt.Errorf("encode png: %w", err)
	}
	return CanonicalImage{PNG: buf.Bytes(), Width: w, Height: h}, nil
}

// fitWithin scales (w, h) so the longest side equals max, keeping proportions.
func fitWithin(w, h, max int) (int, int) {
	if w >= h {
		return max, maxInt(1, h*max/w)
	}
	return maxInt(1, w*max/h), max
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
