package export

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/mmynk/quotation/internal/media"
	"github.com/mmynk/quotation/internal/surface"
)

// BasicBackend rasterizes with plain glyph drawing. It needs no shaping
// and no path filling, so it works where the high-fidelity backend comes
// out blank.
type BasicBackend struct {
	fonts *FontSet
}

// NewBasicBackend returns the fallback backend.
func NewBasicBackend(fonts *FontSet) *BasicBackend {
	return &BasicBackend{fonts: fonts}
}

func (b *BasicBackend) Name() string { return "basic" }

func (b *BasicBackend) Render(ctx context.Context, doc *surface.Document, cfg RenderConfig) (image.Image, error) {
	s := cfg.Scale
	w, h := int(math.Ceil(doc.Width*s)), int(math.Ceil(doc.Height*s))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty surface %vx%v", doc.Width, doc.Height)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(cfg.Background), image.Point{}, draw.Src)

	for _, n := range visibleNodes(doc, cfg) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.paint(dst, n, s); err != nil {
			return nil, fmt.Errorf("failed to paint %s %q: %w", n.Kind, n.ID, err)
		}
	}
	return dst, nil
}

func scaled(r surface.Rect, s float64) image.Rectangle {
	x0, y0 := int(math.Round(r.X*s)), int(math.Round(r.Y*s))
	x1, y1 := int(math.Round((r.X+r.W)*s)), int(math.Round((r.Y+r.H)*s))
	if x1 == x0 {
		x1++
	}
	if y1 == y0 {
		y1++
	}
	return image.Rect(x0, y0, x1, y1)
}

func (b *BasicBackend) paint(dst *image.RGBA, n *surface.Node, s float64) error {
	r := scaled(n.Rect, s)
	if n.Style.Background != "" && n.Kind != surface.KindImage {
		draw.Draw(dst, r, image.NewUniform(hexColor(n.Style.Background)), image.Point{}, draw.Over)
	}
	if bw := int(math.Max(1, math.Round(n.Style.BorderWidth*s))); n.Style.BorderWidth > 0 && n.Style.BorderColor != "" {
		c := image.NewUniform(hexColor(n.Style.BorderColor))
		for _, edge := range []image.Rectangle{
			image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+bw),
			image.Rect(r.Min.X, r.Max.Y-bw, r.Max.X, r.Max.Y),
			image.Rect(r.Min.X, r.Min.Y, r.Min.X+bw, r.Max.Y),
			image.Rect(r.Max.X-bw, r.Min.Y, r.Max.X, r.Max.Y),
		} {
			draw.Draw(dst, edge, c, image.Point{}, draw.Over)
		}
	}

	switch n.Kind {
	case surface.KindImage:
		img, err := media.Decode(n.Image)
		if err != nil {
			slog.Warn("Skipping undecodable image", "node", n.ID, "error", err)
			return nil
		}
		bounds := img.Bounds()
		fit := scaled(fitRect(n.Rect, float64(bounds.Dx()), float64(bounds.Dy())), s)
		draw.ApproxBiLinear.Scale(dst, fit, img, bounds, draw.Over, nil)
	case surface.KindText, surface.KindInput, surface.KindTextArea:
		return b.text(dst, n, s)
	}
	return nil
}

func (b *BasicBackend) text(dst *image.RGBA, n *surface.Node, s float64) error {
	content, placeholder := n.DisplayText()
	if content == "" {
		return nil
	}
	st := n.Style
	face, err := b.fonts.OpenTypeFace(st.Bold, st.FontSize*s)
	if err != nil {
		return err
	}
	advance := func(str string) float64 {
		return fix(font.MeasureString(face, str))
	}

	maxW := n.Rect.W * s
	spacing := st.LetterSpacing * s
	var lines []string
	switch st.Whitespace {
	case surface.WhitespacePre:
		lines = []string{strings.ReplaceAll(content, "\n", " ")}
	case surface.WhitespacePreWrap:
		for _, para := range strings.Split(content, "\n") {
			lines = append(lines, wrapWords(para, maxW, advance)...)
		}
	default:
		lines = wrapWords(collapseSpace(content), maxW, advance)
	}

	m := face.Metrics()
	ascent, descent := fix(m.Ascent), fix(m.Descent)
	lh := lineHeight(st) * s
	top := (n.Rect.Y + st.PaddingTop) * s
	rect := surface.Rect{X: n.Rect.X * s, W: maxW}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(hexColor(textColor(n, placeholder))), Face: face}
	for i, line := range lines {
		baseline := top + float64(i)*lh + (lh-(ascent+descent))/2 + ascent
		x := alignX(rect, st.Align, textWidth(line, spacing, advance))
		d.Dot = fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(baseline * 64)}
		if spacing == 0 {
			d.DrawString(line)
			continue
		}
		for _, r := range line {
			d.DrawString(string(r))
			d.Dot.X += fixed.Int26_6(spacing * 64)
		}
	}
	return nil
}

func fix(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// wrapWords breaks s at spaces so each line fits maxW. A single word wider
// than maxW gets a line of its own.
func wrapWords(s string, maxW float64, advance func(string) float64) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		candidate := line + " " + w
		if advance(candidate) <= maxW {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = w
	}
	return append(lines, line)
}
