package surface

import (
	"math"
	"strings"

	"github.com/mmynk/quotation/internal/calculator"
	"github.com/mmynk/quotation/internal/models"
	"github.com/mmynk/quotation/internal/money"
)

// Page geometry in CSS pixels.
const (
	PageWidth     = 800.0
	MinPageHeight = 1123.0
	pagePadding   = 56.0
	contentWidth  = PageWidth - 2*pagePadding
)

// Palette.
const (
	colorInk     = "#0f172a"
	colorText    = "#1e293b"
	colorBody    = "#334155"
	colorMuted   = "#64748b"
	colorSubtle  = "#94a3b8"
	colorFaint   = "#cbd5e1"
	colorLine    = "#f1f5f9"
	colorDivider = "#f8fafc"
	colorAccent  = "#2563eb"
	colorBrand   = "#3b82f6"
	colorDanger  = "#ef4444"
)

// Table column widths; the delete column only holds editor chrome.
const (
	colQty      = 80.0
	colPrice    = 128.0
	colSubtotal = 128.0
	colDelete   = 48.0
	colItem     = contentWidth - colQty - colPrice - colSubtotal - colDelete
)

// EmptyItemsLabel is shown in the item table when there are no items.
const EmptyItemsLabel = "No items yet"

// Build lays out the editor page for q. Totals are recomputed from the
// items, never read from a cache.
func Build(q *models.Quotation) *Document {
	b := &builder{root: &Node{ID: "page", Kind: KindBox}}
	totals := calculator.ForQuotation(q)

	b.y = pagePadding
	b.header(q)
	b.meta(q)
	b.parties(q)
	b.items(q)
	b.footer(q, totals)

	height := math.Max(MinPageHeight, b.y+pagePadding)
	b.root.Rect = Rect{W: PageWidth, H: height}
	b.root.Style.Background = "#ffffff"
	return &Document{Width: PageWidth, Height: height, Root: b.root}
}

type builder struct {
	root *Node
	y    float64
}

func (b *builder) add(n *Node) *Node {
	b.root.Children = append(b.root.Children, n)
	return n
}

func lineBox(size, lineHeight float64) float64 {
	return math.Ceil(size * lineHeight)
}

func (b *builder) text(id, s string, r Rect, st Style) *Node {
	if st.LineHeight == 0 {
		st.LineHeight = 1.4
	}
	if r.H == 0 {
		r.H = lineBox(st.FontSize, st.LineHeight)
	}
	return b.add(&Node{ID: id, Kind: KindText, Text: s, Rect: r, Style: st})
}

func (b *builder) input(id, value, placeholder string, r Rect, st Style) *Node {
	if st.LineHeight == 0 {
		st.LineHeight = 1.4
	}
	if r.H == 0 {
		r.H = lineBox(st.FontSize, st.LineHeight)
	}
	st.Whitespace = WhitespacePre
	return b.add(&Node{ID: id, Kind: KindInput, Text: value, Placeholder: placeholder, Rect: r, Style: st})
}

// textArea sizes the control to the number of lines its value needs at an
// average glyph width of half the font size.
func (b *builder) textArea(id, value, placeholder string, r Rect, st Style) *Node {
	if st.LineHeight == 0 {
		st.LineHeight = 1.5
	}
	lines := estimateLines(value, r.W, st.FontSize)
	r.H = math.Max(r.H, float64(lines)*lineBox(st.FontSize, st.LineHeight))
	st.Whitespace = WhitespacePreWrap
	return b.add(&Node{ID: id, Kind: KindTextArea, Text: value, Placeholder: placeholder, Rect: r, Style: st})
}

func estimateLines(s string, width, size float64) int {
	perLine := int(width / (size * 0.5))
	if perLine < 1 {
		perLine = 1
	}
	total := 0
	for _, para := range strings.Split(s, "\n") {
		n := (len([]rune(para)) + perLine - 1) / perLine
		if n == 0 {
			n = 1
		}
		total += n
	}
	return total
}

func (b *builder) rule(id string, x, y, w float64, color string) {
	b.add(&Node{ID: id, Kind: KindRule, Rect: Rect{X: x, Y: y, W: w, H: 1}, Style: Style{Background: color}})
}

func (b *builder) chrome(id string, r Rect, background string) {
	b.add(&Node{ID: id, Kind: KindBox, Rect: r, Style: Style{Background: background}, InteractionOnly: true})
}

func label(size float64, color string) Style {
	return Style{FontSize: size, Bold: true, Color: color, Uppercase: true, LetterSpacing: size * 0.1}
}

func (b *builder) header(q *models.Quotation) {
	top := b.y
	logo := Rect{X: pagePadding, Y: top, W: 40, H: 40}
	if q.Provider.Logo != "" {
		b.add(&Node{ID: "provider.logo", Kind: KindImage, Image: q.Provider.Logo, Rect: logo})
		b.chrome("provider.logo.remove", Rect{X: logo.X + 32, Y: logo.Y - 8, W: 20, H: 20}, colorDanger)
	} else {
		b.add(&Node{ID: "provider.logo.placeholder", Kind: KindBox, Rect: logo,
			Style: Style{BorderColor: colorBrand, BorderWidth: 1}})
		b.chrome("provider.logo.upload", Rect{X: logo.X + 32, Y: logo.Y - 8, W: 20, H: 20}, colorBrand)
	}
	b.add(&Node{ID: "provider.logo.file", Kind: KindFileInput, Rect: Rect{X: logo.X, Y: logo.Y}, InteractionOnly: true})

	left := pagePadding + 52
	b.input("header.provider.companyName", q.Provider.CompanyName, "Company name",
		Rect{X: left, Y: top, W: 280},
		Style{FontSize: 18, Bold: true, Color: colorInk, Uppercase: true, LineHeight: 1.3})
	b.input("provider.brandName", q.Provider.BrandName, "Brand name",
		Rect{X: left, Y: top + 26, W: 280},
		Style{FontSize: 9, Bold: true, Color: colorBrand, Uppercase: true, LetterSpacing: 1.8})

	right := pagePadding + contentWidth - 320
	b.input("title", q.Title, "Project Quotation",
		Rect{X: right, Y: top, W: 320},
		Style{FontSize: 24, Color: colorInk, Align: AlignRight, LineHeight: 1.3})
	b.input("subtitle", q.Subtitle, "QUOTATION",
		Rect{X: right, Y: top + 36, W: 320},
		Style{FontSize: 9, Color: colorSubtle, Align: AlignRight, LetterSpacing: 2.7})

	b.y = top + 52 + 48
}

func (b *builder) meta(q *models.Quotation) {
	top := b.y
	b.rule("meta.top", pagePadding, top, contentWidth, colorLine)

	col := contentWidth / 3
	y := top + 16
	b.text("meta.number.label", "Document No.", Rect{X: pagePadding, Y: y, W: col}, label(9, colorSubtle))
	b.input("quotationNumber", q.QuotationNumber, "QT-20250101-001",
		Rect{X: pagePadding, Y: y + 16, W: col}, Style{FontSize: 12, Color: colorText})

	b.text("meta.date.label", "Issue Date", Rect{X: pagePadding + col, Y: y, W: col}, label(9, colorSubtle))
	b.text("quotationDate", q.QuotationDate, Rect{X: pagePadding + col, Y: y + 16, W: col},
		Style{FontSize: 12, Color: colorText})

	b.text("meta.valid.label", "Valid Until", Rect{X: pagePadding + 2*col, Y: y, W: col},
		withAlign(label(9, colorSubtle), AlignRight))
	b.text("validUntil", q.ValidUntil, Rect{X: pagePadding + 2*col, Y: y + 16, W: col},
		Style{FontSize: 12, Color: colorAccent, Align: AlignRight})

	bottom := y + 16 + lineBox(12, 1.4) + 16
	b.rule("meta.bottom", pagePadding, bottom, contentWidth, colorLine)
	b.y = bottom + 40
}

func withAlign(st Style, a Align) Style {
	st.Align = a
	return st
}

func (b *builder) parties(q *models.Quotation) {
	top := b.y
	col := (contentWidth - 48) / 2
	small := Style{FontSize: 11, Color: colorMuted}

	// Client column.
	x := pagePadding
	b.text("client.heading", "To", Rect{X: x, Y: top, W: col}, label(10, colorInk))
	b.rule("client.heading.rule", x, top+20, col, colorLine)
	y := top + 32
	b.input("client.companyName", q.Client.CompanyName, "Company name", Rect{X: x, Y: y, W: col},
		Style{FontSize: 16, Bold: true, Color: colorInk})
	y += 28
	for _, f := range []struct{ id, value, placeholder string }{
		{"client.contactPerson", q.Client.ContactPerson, "Contact person"},
		{"client.phone", q.Client.Phone, "Phone"},
		{"client.email", q.Client.Email, "email@example.com"},
		{"client.address", q.Client.Address, "Address"},
	} {
		b.input(f.id, f.value, f.placeholder, Rect{X: x, Y: y, W: col}, small)
		y += 17
	}
	clientBottom := y

	// Provider column.
	x = pagePadding + col + 48
	b.text("provider.heading", "From", Rect{X: x, Y: top, W: col}, label(10, colorInk))
	b.rule("provider.heading.rule", x, top+20, col, colorLine)
	y = top + 32
	b.input("provider.companyName", q.Provider.CompanyName, "Company name", Rect{X: x, Y: y, W: col},
		Style{FontSize: 16, Bold: true, Color: colorInk})
	y += 28
	b.input("provider.contactPerson", q.Provider.ContactPerson, "Contact person", Rect{X: x, Y: y, W: col},
		Style{FontSize: 11, Bold: true, Color: colorBody})
	y += 17
	half := (col - 16) / 2
	b.input("provider.phone", q.Provider.Phone, "Phone", Rect{X: x, Y: y, W: half}, small)
	b.text("provider.separator", "|", Rect{X: x + half + 4, Y: y, W: 8}, small)
	b.input("provider.email", q.Provider.Email, "email", Rect{X: x + half + 16, Y: y, W: half}, small)
	y += 17
	b.input("provider.address", q.Provider.Address, "Address", Rect{X: x, Y: y, W: col}, small)
	y += 17
	b.text("provider.taxId.label", "Tax ID:", Rect{X: x, Y: y, W: 40}, Style{FontSize: 9, Color: colorMuted})
	b.input("provider.taxId", q.Provider.TaxID, "Tax ID", Rect{X: x + 40, Y: y, W: 96},
		Style{FontSize: 9, Color: colorMuted})
	y += 15

	b.y = math.Max(clientBottom, y) + 48
}

func (b *builder) items(q *models.Quotation) {
	b.chrome("items.add", Rect{X: pagePadding, Y: b.y, W: 96, H: 28}, colorLine)
	b.y += 28 + 16

	x := pagePadding
	head := label(9, colorSubtle)
	b.text("items.head.item", "Item", Rect{X: x, Y: b.y, W: colItem}, head)
	b.text("items.head.qty", "Qty", Rect{X: x + colItem, Y: b.y, W: colQty}, withAlign(head, AlignCenter))
	b.text("items.head.price", "Unit Price", Rect{X: x + colItem + colQty, Y: b.y, W: colPrice}, withAlign(head, AlignRight))
	b.text("items.head.subtotal", "Subtotal", Rect{X: x + colItem + colQty + colPrice, Y: b.y, W: colSubtotal}, withAlign(head, AlignRight))
	b.y += 24
	b.rule("items.head.rule", x, b.y, contentWidth, colorLine)

	if len(q.Items) == 0 {
		b.text("items.empty", EmptyItemsLabel, Rect{X: x, Y: b.y + 12, W: contentWidth},
			Style{FontSize: 14, Color: colorSubtle, Align: AlignCenter})
		b.y += 48
		return
	}

	for i, it := range q.Items {
		top := b.y + 12
		prefix := "items." + it.ID
		b.chrome(prefix+".handle", Rect{X: x - 20, Y: top, W: 12, H: 20}, colorLine)
		b.input(prefix+".name", it.Name, "Item name", Rect{X: x, Y: top, W: colItem - 16},
			Style{FontSize: 14, Bold: true, Color: colorText})
		desc := b.textArea(prefix+".description", it.Description, "Details / description",
			Rect{X: x, Y: top + 24, W: colItem - 16}, Style{FontSize: 12, Color: colorSubtle})

		mono := Style{FontSize: 14, Color: colorMuted}
		b.input(prefix+".quantity", money.Format(it.Quantity), "0",
			Rect{X: x + colItem, Y: top, W: colQty}, withAlign(mono, AlignCenter))
		b.input(prefix+".unitPrice", money.Format(it.UnitPrice), "0",
			Rect{X: x + colItem + colQty, Y: top, W: colPrice}, withAlign(mono, AlignRight))
		b.text(prefix+".subtotal", money.Format(it.Subtotal),
			Rect{X: x + colItem + colQty + colPrice, Y: top, W: colSubtotal},
			Style{FontSize: 14, Bold: true, Color: colorText, Align: AlignRight})
		b.chrome(prefix+".delete", Rect{X: x + contentWidth - colDelete + 12, Y: top, W: 24, H: 24}, colorDanger)

		b.y = desc.Rect.Y + desc.Rect.H + 12
		if i < len(q.Items)-1 {
			b.rule(prefix+".rule", x, b.y, contentWidth, colorDivider)
		}
	}
}

func (b *builder) footer(q *models.Quotation, t calculator.Totals) {
	b.y += 32
	b.rule("footer.rule", pagePadding, b.y, contentWidth, colorLine)
	top := b.y + 24

	leftW := contentWidth*7/12 - 16
	rightX := pagePadding + contentWidth*7/12 + 16
	rightW := contentWidth - (rightX - pagePadding)

	// Notes and signature.
	b.text("notes.label", "Notes & Terms", Rect{X: pagePadding, Y: top, W: leftW / 2}, label(9, colorSubtle))
	b.chrome("signature.toggle", Rect{X: pagePadding + leftW - 120, Y: top, W: 120, H: 16}, colorLine)
	notes := b.textArea("notes", q.Notes, "Notes...", Rect{X: pagePadding + 4, Y: top + 24, W: leftW - 4},
		Style{FontSize: 10, Color: colorSubtle})
	left := notes.Rect.Y + notes.Rect.H

	if q.SignatureVisible() {
		y := left + 40
		half := (leftW - 40) / 2
		b.text("signature.client", "Client Signature", Rect{X: pagePadding, Y: y, W: half}, label(8, colorFaint))
		b.rule("signature.client.rule", pagePadding, y+48, half, colorLine)
		sx := pagePadding + half + 40
		b.text("signature.company", "Company Stamp", Rect{X: sx, Y: y, W: half}, label(8, colorFaint))
		if q.Provider.Stamp != "" {
			b.add(&Node{ID: "provider.stamp", Kind: KindImage, Image: q.Provider.Stamp,
				Rect: Rect{X: sx + half - 72, Y: y - 8, W: 64, H: 64}})
		}
		b.rule("signature.company.rule", sx, y+48, half, colorLine)
		left = y + 49
	}

	// Totals.
	y := top
	b.chrome("tax.mode", Rect{X: rightX, Y: y, W: rightW, H: 32}, colorLine)
	y += 44
	row := Style{FontSize: 14, Color: colorMuted}
	amount := func(id, caption string, v float64) {
		b.text(id+".label", caption, Rect{X: rightX + 4, Y: y, W: rightW / 2}, row)
		b.text(id, money.Format(v), Rect{X: rightX + rightW/2, Y: y, W: rightW/2 - 4}, withAlign(row, AlignRight))
		y += 28
	}
	taxRow := func() {
		b.input("taxConfig.name", q.TaxConfig.Name, "Tax", Rect{X: rightX + 4, Y: y, W: 64}, row)
		b.text("taxConfig.open", "(", Rect{X: rightX + 70, Y: y, W: 6}, row)
		b.input("taxConfig.rate", money.FormatRate(q.TaxConfig.Rate), "0", Rect{X: rightX + 76, Y: y, W: 32},
			withAlign(row, AlignCenter))
		b.text("taxConfig.close", "%)", Rect{X: rightX + 108, Y: y, W: 20}, row)
		b.text("totals.tax", money.Format(t.Tax), Rect{X: rightX + rightW/2, Y: y, W: rightW/2 - 4}, withAlign(row, AlignRight))
		y += 28
	}

	switch t.Mode {
	case models.TaxModeNone:
		amount("totals.untaxed", "Subtotal", t.AfterTaxSubtotal)
	case models.TaxModeIncluded:
		amount("totals.inclusive", "Total (tax incl.)", t.Total)
		amount("totals.untaxed", "Pre-tax amount", t.AfterTaxSubtotal)
		taxRow()
	default:
		amount("totals.untaxed", "Subtotal", t.AfterTaxSubtotal)
		taxRow()
	}

	y += 12
	b.rule("totals.rule", rightX, y, rightW, colorInk)
	y += 16
	b.text("totals.total.label", "Amount Due", Rect{X: rightX, Y: y + 6, W: rightW / 2},
		Style{FontSize: 12, Bold: true, Color: colorInk, Uppercase: true, LetterSpacing: 1.2})
	b.text("totals.total", money.Format(t.Total), Rect{X: rightX + rightW/3, Y: y, W: rightW * 2 / 3},
		Style{FontSize: 20, Bold: true, Color: colorAccent, Align: AlignRight, LineHeight: 1.3})
	y += 28
	b.text("totals.total.caption", "Total Amount Due", Rect{X: rightX + rightW/3, Y: y, W: rightW * 2 / 3},
		withAlign(label(8, colorFaint), AlignRight))
	y += 16

	b.y = math.Max(left, y)
}
