package export

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/quotation/internal/models"
)

func openSheet(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, name string) string {
	t.Helper()
	v, err := f.GetCellValue(SheetName, name)
	require.NoError(t, err)
	return v
}

func TestBuildSpreadsheetLayout(t *testing.T) {
	data, err := BuildSpreadsheet(sampleQuotation())
	require.NoError(t, err)
	f := openSheet(t, data)

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	assert.Equal(t, "Website Redesign", cell(t, f, "A1"))
	assert.Equal(t, "QT-001", cell(t, f, "B3"))
	assert.Equal(t, "2026-03-01", cell(t, f, "B4"))
	assert.Equal(t, "2026-03-31", cell(t, f, "B5"))
	assert.Equal(t, "Client", cell(t, f, "A7"))
	assert.Equal(t, "Provider", cell(t, f, "C7"))
	assert.Equal(t, "Company: Acme", cell(t, f, "A8"))
	assert.Equal(t, "Company: Studio", cell(t, f, "C8"))

	assert.Equal(t, "Item", cell(t, f, "A14"))
	assert.Equal(t, "Subtotal", cell(t, f, "E14"))
	assert.Equal(t, "Design", cell(t, f, "A15"))
	assert.Equal(t, "200", cell(t, f, "E15"))
	assert.Equal(t, "Build", cell(t, f, "A16"))

	assert.Equal(t, "Pre-tax amount:", cell(t, f, "D18"))
	assert.Equal(t, "250", cell(t, f, "E18"))
	assert.Equal(t, "VAT (5%):", cell(t, f, "D19"))
	assert.Equal(t, "12.5", cell(t, f, "E19"))
	assert.Equal(t, "Total (tax incl.):", cell(t, f, "D20"))
	assert.Equal(t, "262.5", cell(t, f, "E20"))

	assert.Equal(t, "Notes:", cell(t, f, "A22"))
	assert.Equal(t, "Payment within 30 days", cell(t, f, "A23"))

	width, err := f.GetColWidth(SheetName, "B")
	require.NoError(t, err)
	assert.Equal(t, 30.0, width)

	merged, err := f.GetMergeCells(SheetName)
	require.NoError(t, err)
	var ranges []string
	for _, m := range merged {
		ranges = append(ranges, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	assert.Contains(t, ranges, "A1:E1")
	assert.Contains(t, ranges, "A23:E23")
}

func TestBuildSpreadsheetTotalsByMode(t *testing.T) {
	tests := []struct {
		name string
		mode models.TaxMode
		rate float64
		want map[string]string
	}{
		{
			name: "included",
			mode: models.TaxModeIncluded,
			rate: 25,
			want: map[string]string{
				"D18": "Total (tax incl.):", "E18": "250",
				"D19": "Pre-tax amount:", "E19": "200",
				"D20": "VAT (25%):", "E20": "50",
			},
		},
		{
			name: "none",
			mode: models.TaxModeNone,
			rate: 25,
			want: map[string]string{
				"D18": "Total:", "E18": "250",
				"D19": "",
			},
		},
		{
			name: "legacy record without mode",
			mode: "",
			rate: 10,
			want: map[string]string{
				"D18": "Pre-tax amount:", "E18": "250",
				"E19": "25",
				"D20": "Total (tax incl.):", "E20": "275",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := sampleQuotation()
			q.TaxConfig.Mode = tt.mode
			q.TaxConfig.Rate = tt.rate
			q.Notes = ""

			data, err := BuildSpreadsheet(q)
			require.NoError(t, err)
			f := openSheet(t, data)
			for name, want := range tt.want {
				assert.Equal(t, want, cell(t, f, name), name)
			}
		})
	}
}

func TestBuildSpreadsheetWithoutItems(t *testing.T) {
	q := sampleQuotation()
	q.Items = nil
	q.Title = ""

	data, err := BuildSpreadsheet(q)
	require.NoError(t, err)
	f := openSheet(t, data)

	assert.Equal(t, fallbackName, cell(t, f, "A1"))
	assert.Equal(t, "Item", cell(t, f, "A14"))
	assert.Equal(t, "Pre-tax amount:", cell(t, f, "D16"))
	assert.Equal(t, "0", cell(t, f, "E16"))
}

func TestBuildSpreadsheetEmbedsLogo(t *testing.T) {
	q := sampleQuotation()
	q.Provider.Logo = pngDataURL(t, color.RGBA{B: 255, A: 255}, 50, 25)

	data, err := BuildSpreadsheet(q)
	require.NoError(t, err)
	f := openSheet(t, data)

	pics, err := f.GetPictures(SheetName, "D7")
	require.NoError(t, err)
	require.Len(t, pics, 1)
	assert.Equal(t, ".png", pics[0].Extension)
}

func TestBuildSpreadsheetSkipsBadLogo(t *testing.T) {
	q := sampleQuotation()
	q.Provider.Logo = "data:image/png;base64,bm90IGFuIGltYWdl"

	data, err := BuildSpreadsheet(q)
	require.NoError(t, err)
	f := openSheet(t, data)

	pics, err := f.GetPictures(SheetName, "D7")
	require.NoError(t, err)
	assert.Empty(t, pics)
}
