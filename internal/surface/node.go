// Package surface models the editable quotation page as a tree of laid-out
// nodes. Editable controls and interaction-only widgets are first-class
// nodes so the export pipeline can reproduce exactly what the editor shows.
package surface

import "strings"

// Kind identifies what a node draws.
type Kind int

const (
	// KindBox is a container that may paint a background or border.
	KindBox Kind = iota
	// KindText is static text.
	KindText
	// KindInput is a single-line text control.
	KindInput
	// KindTextArea is a multi-line text control.
	KindTextArea
	// KindFileInput is an image upload control.
	KindFileInput
	// KindImage draws an inline data URL image.
	KindImage
	// KindRule is a horizontal line.
	KindRule
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindText:
		return "text"
	case KindInput:
		return "input"
	case KindTextArea:
		return "textarea"
	case KindFileInput:
		return "file"
	case KindImage:
		return "image"
	case KindRule:
		return "rule"
	default:
		return "unknown"
	}
}

// Editable reports whether the node is a live text control.
func (k Kind) Editable() bool {
	return k == KindInput || k == KindTextArea
}

// Align is the horizontal alignment of text within its node.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Whitespace controls how text content is broken into lines.
type Whitespace int

const (
	// WhitespaceNormal wraps at word boundaries and collapses newlines.
	WhitespaceNormal Whitespace = iota
	// WhitespacePre keeps the text on a single line.
	WhitespacePre
	// WhitespacePreWrap honours newlines and wraps long lines.
	WhitespacePreWrap
)

// Style is the computed visual style of a node. Colors are hex strings;
// an empty color means transparent.
type Style struct {
	FontSize      float64
	Bold          bool
	Color         string
	Align         Align
	LetterSpacing float64
	// LineHeight is a multiple of FontSize.
	LineHeight float64
	Uppercase  bool
	Whitespace Whitespace

	Background  string
	BorderColor string
	BorderWidth float64

	PaddingTop    float64
	PaddingBottom float64
}

// Rect is a box in page coordinates (CSS pixels, origin top-left).
type Rect struct {
	X, Y, W, H float64
}

// Node is one element of the page.
type Node struct {
	ID    string
	Kind  Kind
	Rect  Rect
	Style Style

	// Text is the content of a text node or the value of a control.
	Text        string
	Placeholder string
	// Image is an inline data URL for image nodes.
	Image string

	// InteractionOnly marks editor chrome (drag handles, upload and delete
	// buttons) that export mode hides.
	InteractionOnly bool

	Children []*Node
}

// Document is a laid-out page.
type Document struct {
	Width  float64
	Height float64
	Root   *Node
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	return &Document{Width: d.Width, Height: d.Height, Root: d.Root.clone()}
}

func (n *Node) clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.clone()
		}
	}
	return &c
}

// Walk visits n and its descendants depth-first in paint order. When fn
// returns false the children of that node are skipped.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, fn)
	}
}

// Find returns the first node with the given id, or nil.
func (d *Document) Find(id string) *Node {
	var found *Node
	Walk(d.Root, func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Hidden reports whether n is suppressed in the given mode.
func (n *Node) Hidden(exportMode bool) bool {
	return exportMode && n.InteractionOnly
}

// FreezeControls replaces every text input and text area under root with a
// static text node carrying the same computed style, so rendered baselines
// match the editor. File pickers are left alone. It returns the number of
// controls replaced.
func FreezeControls(root *Node) int {
	frozen := 0
	Walk(root, func(n *Node) bool {
		if !n.Kind.Editable() {
			return true
		}
		if n.Kind == KindTextArea {
			n.Style.Whitespace = WhitespacePreWrap
		} else {
			n.Style.Whitespace = WhitespacePre
		}
		n.Kind = KindText
		n.Placeholder = ""
		n.Style.BorderColor = ""
		n.Style.BorderWidth = 0
		n.Style.Background = ""
		n.Style.PaddingTop = 1
		n.Style.PaddingBottom = 2
		frozen++
		return true
	})
	return frozen
}

// exportPaddingBottom is the extra room below text-bearing nodes that keeps
// descenders from being clipped.
const exportPaddingBottom = 2

// ApplyExportStyle adds bottom padding to every text-bearing node under
// root that has less.
func ApplyExportStyle(root *Node) {
	Walk(root, func(n *Node) bool {
		if n.Kind == KindText && n.Style.PaddingBottom < exportPaddingBottom {
			n.Style.PaddingBottom = exportPaddingBottom
		}
		return true
	})
}

// DisplayText returns the string a node shows: its text, or the
// placeholder when an editable control is empty. Uppercase styling is
// applied.
func (n *Node) DisplayText() (s string, placeholder bool) {
	s = n.Text
	if s == "" && n.Kind.Editable() {
		s, placeholder = n.Placeholder, true
	}
	if n.Style.Uppercase {
		s = strings.ToUpper(s)
	}
	return s, placeholder
}
