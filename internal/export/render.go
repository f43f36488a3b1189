package export

import (
	"context"
	"image"
	"image/color"
	"strings"
	"unicode/utf8"

	"github.com/gogpu/gg"

	"github.com/mmynk/quotation/internal/surface"
)

// RenderConfig is passed to a backend for a single render. The surface
// itself is never mutated to carry these settings.
type RenderConfig struct {
	// MarkerID tags the export session the render belongs to.
	MarkerID string
	// ExportMode hides interaction-only nodes.
	ExportMode bool
	// Scale is the device pixel ratio of the output.
	Scale      float64
	Background color.Color
}

// Backend rasterizes a laid-out document.
type Backend interface {
	Name() string
	Render(ctx context.Context, doc *surface.Document, cfg RenderConfig) (image.Image, error)
}

// placeholderColor is used for empty editable controls.
const placeholderColor = "#cbd5e1"

func hexColor(s string) color.Color {
	return gg.Hex(s).Color()
}

func textColor(n *surface.Node, placeholder bool) string {
	switch {
	case placeholder:
		return placeholderColor
	case n.Style.Color != "":
		return n.Style.Color
	default:
		return "#1e293b"
	}
}

func lineHeight(st surface.Style) float64 {
	if st.LineHeight == 0 {
		return st.FontSize * 1.4
	}
	return st.FontSize * st.LineHeight
}

// textWidth is the advance of s plus letter spacing between glyphs.
func textWidth(s string, spacing float64, advance func(string) float64) float64 {
	w := advance(s)
	if n := utf8.RuneCountInString(s); n > 1 {
		w += spacing * float64(n-1)
	}
	return w
}

// alignX returns the left edge of a line of width w inside the node's box.
func alignX(r surface.Rect, align surface.Align, w float64) float64 {
	switch align {
	case surface.AlignCenter:
		return r.X + (r.W-w)/2
	case surface.AlignRight:
		return r.X + r.W - w
	default:
		return r.X
	}
}

// collapseSpace folds runs of whitespace, including newlines, into single
// spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// visibleNodes returns the nodes painted under cfg, in paint order.
func visibleNodes(doc *surface.Document, cfg RenderConfig) []*surface.Node {
	var out []*surface.Node
	surface.Walk(doc.Root, func(n *surface.Node) bool {
		if n.Hidden(cfg.ExportMode) {
			return false
		}
		out = append(out, n)
		return true
	})
	return out
}

// fitRect scales an image of size (iw, ih) into r keeping its aspect ratio,
// centered.
func fitRect(r surface.Rect, iw, ih float64) surface.Rect {
	if iw <= 0 || ih <= 0 {
		return r
	}
	ratio := min(r.W/iw, r.H/ih)
	w, h := iw*ratio, ih*ratio
	return surface.Rect{X: r.X + (r.W-w)/2, Y: r.Y + (r.H-h)/2, W: w, H: h}
}
