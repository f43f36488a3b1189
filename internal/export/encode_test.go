package export

import (
	"bytes"
	"image/color"
	"image/jpeg"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitToPage(t *testing.T) {
	const a4w, a4h = 210.0, 297.0

	tests := []struct {
		name   string
		iw, ih float64
		want   Placement
	}{
		{
			name: "page-shaped capture fills the width",
			iw:   1600, ih: 2246,
			want: Placement{X: 0, Y: 0, W: 210, H: 2246.0 * 210 / 1600},
		},
		{
			name: "tall capture is centered horizontally",
			iw:   100, ih: 1000,
			want: Placement{X: (210 - 29.7) / 2, Y: 0, W: 29.7, H: 297},
		},
		{
			name: "wide capture stays at the top",
			iw:   2000, ih: 1000,
			want: Placement{X: 0, Y: 0, W: 210, H: 105},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitToPage(a4w, a4h, tt.iw, tt.ih)
			for _, v := range []struct {
				name      string
				got, want float64
			}{
				{"X", got.X, tt.want.X},
				{"Y", got.Y, tt.want.Y},
				{"W", got.W, tt.want.W},
				{"H", got.H, tt.want.H},
			} {
				if math.Abs(v.got-v.want) > 1e-9 {
					t.Errorf("%s = %v, want %v", v.name, v.got, v.want)
				}
			}
		})
	}
}

func TestEncodeJPEG(t *testing.T) {
	data, err := EncodeJPEG(solid(color.Black), DefaultJPEGQuality)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
}

func TestEncodePDF(t *testing.T) {
	data, err := EncodePDF(solid(color.Black), "Website Redesign", DefaultJPEGQuality)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.True(t, bytes.Contains(data, []byte("%%EOF")))
}
