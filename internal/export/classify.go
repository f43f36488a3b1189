package export

import (
	"image"

	"golang.org/x/image/draw"
)

// Classifier judges a render result.
type Classifier interface {
	// Blank reports whether img looks like a silently failed render.
	Blank(img image.Image) bool
}

// Blank detection parameters.
const (
	sampleSize      = 64
	minAlpha        = 10
	whiteCutoff     = 250
	DefaultMinInked = 8
)

// BlankDetector downsamples the image to a 64×64 grid and counts pixels
// that are opaque enough and not near-white. Fewer than MinInked such
// pixels means blank.
type BlankDetector struct {
	MinInked int
}

// Blank reports whether img has fewer than MinInked inked sample pixels.
func (d BlankDetector) Blank(img image.Image) bool {
	if img == nil {
		return true
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return true
	}

	sample := image.NewNRGBA(image.Rect(0, 0, sampleSize, sampleSize))
	draw.BiLinear.Scale(sample, sample.Bounds(), img, bounds, draw.Src, nil)

	threshold := d.MinInked
	if threshold <= 0 {
		threshold = DefaultMinInked
	}
	inked := 0
	for i := 0; i < len(sample.Pix); i += 4 {
		r, g, b, a := sample.Pix[i], sample.Pix[i+1], sample.Pix[i+2], sample.Pix[i+3]
		if a < minAlpha {
			continue
		}
		if r < whiteCutoff || g < whiteCutoff || b < whiteCutoff {
			inked++
		}
	}
	return inked < threshold
}
