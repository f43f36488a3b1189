package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/quotation/internal/media"
	"github.com/mmynk/quotation/internal/surface"
)

func pngDataURL(t *testing.T, c color.Color, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return media.EncodeDataURL("image/png", buf.Bytes())
}

func exportConfig() RenderConfig {
	return RenderConfig{MarkerID: "export-test", ExportMode: true, Scale: 2, Background: color.White}
}

func TestBasicBackendRender(t *testing.T) {
	q := sampleQuotation()
	q.Provider.Logo = pngDataURL(t, color.RGBA{R: 255, A: 255}, 10, 10)
	doc := exportClone(surface.Build(q))

	img, err := NewBasicBackend(NewFontSet()).Render(context.Background(), doc, exportConfig())
	require.NoError(t, err)

	b := img.Bounds()
	assert.Equal(t, 1600, b.Dx())
	assert.Equal(t, int(math.Ceil(doc.Height*2)), b.Dy())
	assert.False(t, BlankDetector{}.Blank(img))

	r, g, bl, _ := img.At(152, 152).RGBA()
	assert.Greater(t, r>>8, uint32(200), "logo should be painted")
	assert.Less(t, g>>8, uint32(60))
	assert.Less(t, bl>>8, uint32(60))

	r, g, bl, _ = img.At(4, 4).RGBA()
	assert.Equal(t, [3]uint32{255, 255, 255}, [3]uint32{r >> 8, g >> 8, bl >> 8}, "page margin stays white")
}

func TestBasicBackendHidesInteractionOnlyNodes(t *testing.T) {
	doc := &surface.Document{Width: 100, Height: 100, Root: &surface.Node{
		Kind: surface.KindBox,
		Rect: surface.Rect{W: 100, H: 100},
		Children: []*surface.Node{{
			ID:              "delete",
			Kind:            surface.KindBox,
			Rect:            surface.Rect{X: 10, Y: 10, W: 50, H: 50},
			Style:           surface.Style{Background: "#ef4444"},
			InteractionOnly: true,
		}},
	}}
	backend := NewBasicBackend(NewFontSet())

	cfg := exportConfig()
	cfg.Scale = 1
	img, err := backend.Render(context.Background(), doc, cfg)
	require.NoError(t, err)
	assert.True(t, BlankDetector{}.Blank(img))

	cfg.ExportMode = false
	img, err = backend.Render(context.Background(), doc, cfg)
	require.NoError(t, err)
	assert.False(t, BlankDetector{}.Blank(img))
}

func TestGGBackendRender(t *testing.T) {
	doc := exportClone(surface.Build(sampleQuotation()))

	img, err := NewGGBackend(NewFontSet()).Render(context.Background(), doc, exportConfig())
	require.NoError(t, err)

	b := img.Bounds()
	assert.Equal(t, 1600, b.Dx())
	assert.Equal(t, int(math.Ceil(doc.Height*2)), b.Dy())
}

func TestBackendsRejectEmptySurface(t *testing.T) {
	doc := &surface.Document{Root: &surface.Node{}}
	fonts := NewFontSet()
	for _, b := range []Backend{NewGGBackend(fonts), NewBasicBackend(fonts)} {
		_, err := b.Render(context.Background(), doc, exportConfig())
		assert.Error(t, err, b.Name())
	}
}

func TestBackendsHonourCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fonts := NewFontSet()
	for _, b := range []Backend{NewGGBackend(fonts), NewBasicBackend(fonts)} {
		_, err := b.Render(ctx, testDoc(), exportConfig())
		assert.ErrorIs(t, err, context.Canceled, b.Name())
	}
}

func TestWrapWords(t *testing.T) {
	advance := func(s string) float64 { return float64(len(s)) }

	tests := []struct {
		name string
		in   string
		max  float64
		want []string
	}{
		{name: "fits", in: "one two", max: 20, want: []string{"one two"}},
		{name: "breaks", in: "one two three", max: 8, want: []string{"one two", "three"}},
		{name: "long word", in: "extraordinary a", max: 5, want: []string{"extraordinary", "a"}},
		{name: "empty", in: "", max: 5, want: []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapWords(tt.in, tt.max, advance))
		})
	}
}

func TestFitRect(t *testing.T) {
	got := fitRect(surface.Rect{X: 0, Y: 0, W: 40, H: 40}, 20, 10)
	assert.Equal(t, surface.Rect{X: 0, Y: 10, W: 40, H: 20}, got)
}
