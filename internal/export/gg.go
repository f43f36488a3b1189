package export

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"
	"strings"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/mmynk/quotation/internal/media"
	"github.com/mmynk/quotation/internal/surface"
)

// GGBackend renders with shaped text and exact font metrics.
type GGBackend struct {
	fonts *FontSet
}

// NewGGBackend returns the high-fidelity backend.
func NewGGBackend(fonts *FontSet) *GGBackend {
	return &GGBackend{fonts: fonts}
}

func (b *GGBackend) Name() string { return "high-fidelity" }

func (b *GGBackend) Render(ctx context.Context, doc *surface.Document, cfg RenderConfig) (image.Image, error) {
	s := cfg.Scale
	w, h := int(math.Ceil(doc.Width*s)), int(math.Ceil(doc.Height*s))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty surface %vx%v", doc.Width, doc.Height)
	}

	dc := gg.NewContext(w, h)
	defer dc.Close()
	dc.ClearWithColor(gg.FromColor(cfg.Background))

	for _, n := range visibleNodes(doc, cfg) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.paint(dc, n, s); err != nil {
			return nil, fmt.Errorf("failed to paint %s %q: %w", n.Kind, n.ID, err)
		}
	}
	return dc.Image(), nil
}

func (b *GGBackend) paint(dc *gg.Context, n *surface.Node, s float64) error {
	r := n.Rect
	if n.Style.Background != "" && n.Kind != surface.KindImage {
		dc.SetHexColor(n.Style.Background)
		dc.DrawRectangle(r.X*s, r.Y*s, math.Max(r.W*s, 1), math.Max(r.H*s, 1))
		if err := dc.Fill(); err != nil {
			return err
		}
	}
	if n.Style.BorderWidth > 0 && n.Style.BorderColor != "" {
		dc.SetHexColor(n.Style.BorderColor)
		dc.SetLineWidth(n.Style.BorderWidth * s)
		dc.DrawRectangle(r.X*s, r.Y*s, r.W*s, r.H*s)
		if err := dc.Stroke(); err != nil {
			return err
		}
	}

	switch n.Kind {
	case surface.KindImage:
		b.image(dc, n, s)
	case surface.KindText, surface.KindInput, surface.KindTextArea:
		return b.text(dc, n, s)
	}
	return nil
}

func (b *GGBackend) image(dc *gg.Context, n *surface.Node, s float64) {
	img, err := media.Decode(n.Image)
	if err != nil {
		slog.Warn("Skipping undecodable image", "node", n.ID, "error", err)
		return
	}
	bounds := img.Bounds()
	fit := fitRect(n.Rect, float64(bounds.Dx()), float64(bounds.Dy()))
	dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:             fit.X * s,
		Y:             fit.Y * s,
		DstWidth:      fit.W * s,
		DstHeight:     fit.H * s,
		Interpolation: gg.InterpBilinear,
		Opacity:       1,
	})
}

func (b *GGBackend) text(dc *gg.Context, n *surface.Node, s float64) error {
	content, placeholder := n.DisplayText()
	if content == "" {
		return nil
	}
	st := n.Style
	face, err := b.fonts.Face(st.Bold, st.FontSize*s)
	if err != nil {
		return err
	}
	dc.SetFont(face)
	dc.SetHexColor(textColor(n, placeholder))

	spacing := st.LetterSpacing * s
	maxW := n.Rect.W * s
	var lines []string
	switch st.Whitespace {
	case surface.WhitespacePre:
		lines = []string{strings.ReplaceAll(content, "\n", " ")}
	case surface.WhitespacePreWrap:
		for _, para := range strings.Split(content, "\n") {
			lines = append(lines, wrapShaped(para, face, maxW)...)
		}
	default:
		lines = wrapShaped(collapseSpace(content), face, maxW)
	}

	m := face.Metrics()
	lh := lineHeight(st) * s
	top := (n.Rect.Y + st.PaddingTop) * s
	rect := surface.Rect{X: n.Rect.X * s, W: maxW}
	for i, line := range lines {
		baseline := top + float64(i)*lh + (lh-(m.Ascent+m.Descent))/2 + m.Ascent
		x := alignX(rect, st.Align, textWidth(line, spacing, face.Advance))
		drawSpaced(dc, face, line, x, baseline, spacing)
	}
	return nil
}

func wrapShaped(s string, face text.Face, maxW float64) []string {
	results := text.WrapText(s, face, maxW, text.WrapWordChar)
	if len(results) == 0 {
		return []string{s}
	}
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = r.Text
	}
	return lines
}

func drawSpaced(dc *gg.Context, face text.Face, s string, x, y, spacing float64) {
	if spacing == 0 {
		dc.DrawString(s, x, y)
		return
	}
	for _, r := range s {
		g := string(r)
		dc.DrawString(g, x, y)
		x += face.Advance(g) + spacing
	}
}
