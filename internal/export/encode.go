package export

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/phpdave11/gofpdf"
)

// DefaultJPEGQuality is the quality used for image exports.
const DefaultJPEGQuality = 95

// EncodeJPEG compresses img.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Placement is where the raster lands on the page, in millimetres.
type Placement struct {
	X, Y, W, H float64
}

// FitToPage scales an image of iw×ih onto a pw×ph page keeping its aspect
// ratio. The result is centered horizontally and top aligned.
func FitToPage(pw, ph, iw, ih float64) Placement {
	ratio := min(pw/iw, ph/ih)
	w, h := iw*ratio, ih*ratio
	return Placement{X: (pw - w) / 2, Y: 0, W: w, H: h}
}

// EncodePDF places img on a single A4 portrait page.
func EncodePDF(img image.Image, title string, quality int) ([]byte, error) {
	jpg, err := EncodeJPEG(img, quality)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(title, true)
	pdf.SetCreator("quotation", true)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader("capture", opts, bytes.NewReader(jpg))

	pw, ph := pdf.GetPageSize()
	b := img.Bounds()
	at := FitToPage(pw, ph, float64(b.Dx()), float64(b.Dy()))
	pdf.ImageOptions("capture", at.X, at.Y, at.W, at.H, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return out.Bytes(), nil
}
