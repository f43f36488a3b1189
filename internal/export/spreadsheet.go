package export

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/mmynk/quotation/internal/calculator"
	"github.com/mmynk/quotation/internal/media"
	"github.com/mmynk/quotation/internal/models"
	"github.com/mmynk/quotation/internal/money"
)

// SheetName is the name of the single worksheet.
const SheetName = "Quotation"

const logoSize = 100.0

var columnWidths = []struct {
	col   string
	width float64
}{
	{"A", 15}, {"B", 30}, {"C", 10}, {"D", 15}, {"E", 15},
}

type sheetStyles struct {
	title, header, cell, number int
	bold, label                 int
	amount, strongAmount        int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	thin := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	right := &excelize.Alignment{Horizontal: "right"}
	bold := &excelize.Font{Bold: true}

	var s sheetStyles
	for _, d := range []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.title, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 16},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		}},
		{&s.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 12},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E5E7EB"}},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    thin,
		}},
		{&s.cell, &excelize.Style{Border: thin}},
		{&s.number, &excelize.Style{Border: thin, Alignment: right}},
		{&s.bold, &excelize.Style{Font: bold}},
		{&s.label, &excelize.Style{Font: bold, Alignment: right}},
		{&s.amount, &excelize.Style{Alignment: right}},
		{&s.strongAmount, &excelize.Style{Font: bold, Alignment: right}},
	} {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return s, fmt.Errorf("failed to create style: %w", err)
		}
		*d.dst = id
	}
	return s, nil
}

// sheet wraps the worksheet with a sticky error so the layout code reads
// top to bottom.
type sheet struct {
	f   *excelize.File
	err error
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func (s *sheet) set(col, row int, v any, style int) {
	if s.err != nil {
		return
	}
	cell := cellName(col, row)
	if s.err = s.f.SetCellValue(SheetName, cell, v); s.err != nil {
		return
	}
	if style != 0 {
		s.err = s.f.SetCellStyle(SheetName, cell, cell, style)
	}
}

func (s *sheet) merge(row, fromCol, toCol int) {
	if s.err != nil {
		return
	}
	s.err = s.f.MergeCell(SheetName, cellName(fromCol, row), cellName(toCol, row))
}

// BuildSpreadsheet lays out q as a single-sheet workbook. Totals are
// recomputed from the items.
func BuildSpreadsheet(q *models.Quotation) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	for _, c := range columnWidths {
		if err := f.SetColWidth(SheetName, c.col, c.col, c.width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	st, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	s := &sheet{f: f}
	row := 1

	title := q.Title
	if title == "" {
		title = fallbackName
	}
	s.merge(row, 1, 5)
	s.set(1, row, title, st.title)
	row += 2

	s.set(1, row, "Quotation No.:", 0)
	s.set(2, row, q.QuotationNumber, 0)
	row++
	s.set(1, row, "Quotation Date:", 0)
	s.set(2, row, q.QuotationDate, 0)
	row++
	s.set(1, row, "Valid Until:", 0)
	s.set(2, row, q.ValidUntil, 0)
	row += 2

	partiesRow := row
	s.set(1, row, "Client", st.bold)
	s.set(3, row, "Provider", st.bold)
	row++
	for _, line := range []struct{ caption, client, provider string }{
		{"Company", q.Client.CompanyName, q.Provider.CompanyName},
		{"Contact", q.Client.ContactPerson, q.Provider.ContactPerson},
		{"Phone", q.Client.Phone, q.Provider.Phone},
		{"Email", q.Client.Email, q.Provider.Email},
		{"Address", q.Client.Address, q.Provider.Address},
	} {
		s.set(1, row, line.caption+": "+line.client, 0)
		s.set(3, row, line.caption+": "+line.provider, 0)
		row++
	}
	row++

	if q.Provider.Logo != "" {
		if err := addLogo(f, cellName(4, partiesRow), q.Provider.Logo); err != nil {
			slog.Warn("Failed to embed provider logo", "quotation_id", q.ID, "error", err)
		}
	}

	for i, h := range []string{"Item", "Description", "Quantity", "Unit Price", "Subtotal"} {
		s.set(i+1, row, h, st.header)
	}
	row++
	for _, it := range q.Items {
		s.set(1, row, it.Name, st.cell)
		s.set(2, row, it.Description, st.cell)
		s.set(3, row, it.Quantity, st.number)
		s.set(4, row, it.UnitPrice, st.number)
		s.set(5, row, money.Round(it.Subtotal), st.number)
		row++
	}

	t := calculator.ForQuotation(q)
	taxLabel := fmt.Sprintf("%s (%s%%):", q.TaxConfig.Name, money.FormatRate(q.TaxConfig.Rate))
	total := func(caption string, v float64, strong bool) {
		row++
		s.set(4, row, caption, st.label)
		style := st.amount
		if strong {
			style = st.strongAmount
		}
		s.set(5, row, money.Round(v), style)
	}
	switch t.Mode {
	case models.TaxModeIncluded:
		total("Total (tax incl.):", t.Subtotal, false)
		total("Pre-tax amount:", t.AfterTaxSubtotal, false)
		total(taxLabel, t.Tax, false)
	case models.TaxModeExcluded:
		total("Pre-tax amount:", t.Subtotal, false)
		total(taxLabel, t.Tax, false)
		total("Total (tax incl.):", t.Total, true)
	default:
		total("Total:", t.Total, true)
	}

	if q.Notes != "" {
		row += 2
		s.set(1, row, "Notes:", st.bold)
		row++
		s.merge(row, 1, 5)
		s.set(1, row, q.Notes, 0)
	}

	if s.err != nil {
		return nil, fmt.Errorf("failed to fill sheet: %w", s.err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// addLogo anchors the image at cell, scaled to 100×100 pixels.
func addLogo(f *excelize.File, cell, dataURL string) error {
	att, err := media.Parse(dataURL)
	if err != nil {
		return err
	}
	img, err := att.Image()
	if err != nil {
		return err
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return fmt.Errorf("empty logo image")
	}
	return f.AddPictureFromBytes(SheetName, cell, &excelize.Picture{
		Extension: att.Extension(),
		File:      att.Data,
		Format: &excelize.GraphicOptions{
			ScaleX: logoSize / float64(b.Dx()),
			ScaleY: logoSize / float64(b.Dy()),
		},
	})
}
