package service

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/quotation/internal/export"
	"github.com/mmynk/quotation/internal/models"
	"github.com/mmynk/quotation/internal/profile"
	"github.com/mmynk/quotation/internal/quotation"
	"github.com/mmynk/quotation/internal/storage/sqlite"
	"github.com/mmynk/quotation/internal/surface"
)

// inkBackend paints a solid black capture, or fails with err.
type inkBackend struct {
	err error
}

func (b inkBackend) Name() string { return "ink" }

func (b inkBackend) Render(context.Context, *surface.Document, export.RenderConfig) (image.Image, error) {
	if b.err != nil {
		return nil, b.err
	}
	img := image.NewRGBA(image.Rect(0, 0, 80, 120))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	return img, nil
}

type testServer struct {
	*httptest.Server
	store *quotation.Store
}

// setupTestServer serves the QuotationService over a temp SQLite database.
func setupTestServer(t *testing.T, backend export.Backend) *testServer {
	t.Helper()

	records, err := sqlite.New(filepath.Join(t.TempDir(), "quotation.db"))
	require.NoError(t, err)
	t.Cleanup(func() { records.Close() })

	profiles := profile.NewStore(records)
	store := quotation.New(context.Background(), records, profiles)
	exporter := export.NewExporter(store, export.NewPipeline([]export.Backend{backend}), export.ExporterConfig{})
	svc := NewQuotationService(store, profiles, exporter)

	mux := http.NewServeMux()
	path, handler := NewQuotationServiceHandler(svc)
	mux.Handle(path, handler)
	mux.Handle(DownloadPattern, svc.DownloadHandler())

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &testServer{Server: server, store: store}
}

func call[Req, Res any](t *testing.T, srv *testServer, procedure string, msg *Req) (*Res, error) {
	t.Helper()
	client := connect.NewClient[Req, Res](srv.Client(), srv.URL+procedure, WithJSON())
	resp, err := client.CallUnary(context.Background(), connect.NewRequest(msg))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func TestGetCurrentCreatesQuotation(t *testing.T) {
	srv := setupTestServer(t, inkBackend{})

	resp, err := call[Empty, QuotationResponse](t, srv, GetCurrentProcedure, &Empty{})
	require.NoError(t, err)
	require.NotNil(t, resp.Quotation)
	assert.Equal(t, quotation.DefaultTitle, resp.Quotation.Title)
	assert.Equal(t, models.TaxModeExcluded, resp.Quotation.TaxConfig.Mode)
	require.NotNil(t, resp.Totals)
	assert.Equal(t, 0.0, resp.Totals.Total)

	again, err := call[Empty, QuotationResponse](t, srv, GetCurrentProcedure, &Empty{})
	require.NoError(t, err)
	assert.Equal(t, resp.Quotation.ID, again.Quotation.ID)
}

func TestLineItemsAndTotals(t *testing.T) {
	srv := setupTestServer(t, inkBackend{})
	_, err := call[Empty, QuotationResponse](t, srv, CreateQuotationProcedure, &Empty{})
	require.NoError(t, err)

	added, err := call[Empty, AddLineItemResponse](t, srv, AddLineItemProcedure, &Empty{})
	require.NoError(t, err)
	require.NotEmpty(t, added.ID)
	require.Len(t, added.Quotation.Items, 1)
	assert.Equal(t, 1.0, added.Quotation.Items[0].Quantity)

	updated, err := call[UpdateLineItemRequest, QuotationResponse](t, srv, UpdateLineItemProcedure, &UpdateLineItemRequest{
		ID:    added.ID,
		Patch: models.LineItemPatch{Name: models.StringPtr("Design"), Quantity: models.FloatPtr(2), UnitPrice: models.FloatPtr(100)},
	})
	require.NoError(t, err)
	assert.Equal(t, 200.0, updated.Quotation.Items[0].Subtotal)

	_, err = call[models.TaxPatch, QuotationResponse](t, srv, UpdateTaxConfigProcedure, &models.TaxPatch{
		Rate: models.FloatPtr(10),
		Mode: models.TaxModePtr(models.TaxModeIncluded),
	})
	require.NoError(t, err)

	totals, err := call[Empty, Totals](t, srv, GetTotalsProcedure, &Empty{})
	require.NoError(t, err)
	assert.Equal(t, 200.0, totals.Total)
	assert.Equal(t, 181.82, totals.AfterTaxSubtotal)
	assert.Equal(t, 18.18, totals.Tax)
	assert.Equal(t, models.TaxModeIncluded, totals.Mode)
	assert.Equal(t, "Sales Tax (10%)", totals.Label)

	second, err := call[Empty, AddLineItemResponse](t, srv, AddLineItemProcedure, &Empty{})
	require.NoError(t, err)
	reordered, err := call[ReorderItemsRequest, QuotationResponse](t, srv, ReorderItemsProcedure, &ReorderItemsRequest{From: 1, To: 0})
	require.NoError(t, err)
	assert.Equal(t, second.ID, reordered.Quotation.Items[0].ID)

	deleted, err := call[IDRequest, QuotationResponse](t, srv, DeleteLineItemProcedure, &IDRequest{ID: second.ID})
	require.NoError(t, err)
	require.Len(t, deleted.Quotation.Items, 1)
	assert.Equal(t, added.ID, deleted.Quotation.Items[0].ID)
}

func TestInvalidRequests(t *testing.T) {
	srv := setupTestServer(t, inkBackend{})
	_, err := call[Empty, QuotationResponse](t, srv, CreateQuotationProcedure, &Empty{})
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
	}{
		{
			name: "tax rate above 100",
			call: func() error {
				_, err := call[models.TaxPatch, QuotationResponse](t, srv, UpdateTaxConfigProcedure, &models.TaxPatch{Rate: models.FloatPtr(120)})
				return err
			},
		},
		{
			name: "unknown tax mode",
			call: func() error {
				mode := models.TaxMode("sometimes")
				_, err := call[models.TaxPatch, QuotationResponse](t, srv, UpdateTaxConfigProcedure, &models.TaxPatch{Mode: &mode})
				return err
			},
		},
		{
			name: "logo with unsupported type",
			call: func() error {
				_, err := call[models.ProviderPatch, QuotationResponse](t, srv, UpdateProviderProcedure, &models.ProviderPatch{
					Logo: models.StringPtr("data:image/svg+xml;base64,PHN2Zz48L3N2Zz4="),
				})
				return err
			},
		},
		{
			name: "line item without id",
			call: func() error {
				_, err := call[UpdateLineItemRequest, QuotationResponse](t, srv, UpdateLineItemProcedure, &UpdateLineItemRequest{})
				return err
			},
		},
		{
			name: "unknown export kind",
			call: func() error {
				_, err := call[ExportRequest, ExportResponse](t, srv, ExportProcedure, &ExportRequest{Kind: "docx"})
				return err
			},
		},
		{
			name: "malformed profile",
			call: func() error {
				_, err := call[ImportProfileRequest, ProfileResponse](t, srv, ImportProfileProcedure, &ImportProfileRequest{Document: "{not json"})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(tt.call()))
		})
	}

	cur := srv.store.Current()
	assert.Equal(t, quotation.DefaultTaxRate, cur.TaxConfig.Rate)
	assert.Empty(t, cur.Provider.Logo)
}

func TestHistoryRoundTrip(t *testing.T) {
	srv := setupTestServer(t, inkBackend{})
	first, err := call[Empty, QuotationResponse](t, srv, CreateQuotationProcedure, &Empty{})
	require.NoError(t, err)
	_, err = call[models.FieldsPatch, QuotationResponse](t, srv, UpdateFieldsProcedure, &models.FieldsPatch{Title: models.StringPtr("First")})
	require.NoError(t, err)

	history, err := call[Empty, HistoryResponse](t, srv, SaveToHistoryProcedure, &Empty{})
	require.NoError(t, err)
	require.Len(t, history.Quotations, 1)

	_, err = call[Empty, QuotationResponse](t, srv, CreateQuotationProcedure, &Empty{})
	require.NoError(t, err)

	loaded, err := call[IDRequest, QuotationResponse](t, srv, LoadFromHistoryProcedure, &IDRequest{ID: first.Quotation.ID})
	require.NoError(t, err)
	assert.Equal(t, "First", loaded.Quotation.Title)

	_, err = call[IDRequest, QuotationResponse](t, srv, LoadFromHistoryProcedure, &IDRequest{ID: "missing"})
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	history, err = call[IDRequest, HistoryResponse](t, srv, DeleteFromHistoryProcedure, &IDRequest{ID: first.Quotation.ID})
	require.NoError(t, err)
	assert.Empty(t, history.Quotations)
	assert.Nil(t, srv.store.Current(), "deleting the current quotation clears it")

	_, err = call[Empty, Totals](t, srv, GetTotalsProcedure, &Empty{})
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
}

func TestExport(t *testing.T) {
	srv := setupTestServer(t, inkBackend{})
	_, err := call[Empty, QuotationResponse](t, srv, CreateQuotationProcedure, &Empty{})
	require.NoError(t, err)
	_, err = call[models.FieldsPatch, QuotationResponse](t, srv, UpdateFieldsProcedure, &models.FieldsPatch{QuotationNumber: models.StringPtr("QT-7")})
	require.NoError(t, err)

	resp, err := call[ExportRequest, ExportResponse](t, srv, ExportProcedure, &ExportRequest{Kind: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, "QT-7.pdf", resp.Filename)
	assert.Equal(t, "application/pdf", resp.ContentType)
	assert.Equal(t, "%PDF-", string(resp.Data[:5]))

	history, err := call[Empty, HistoryResponse](t, srv, ListHistoryProcedure, &Empty{})
	require.NoError(t, err)
	assert.Len(t, history.Quotations, 1, "export saves to history")
}

func TestExportFailureIsInternal(t *testing.T) {
	srv := setupTestServer(t, inkBackend{err: errors.New("renderer exploded")})
	_, err := call[Empty, QuotationResponse](t, srv, CreateQuotationProcedure, &Empty{})
	require.NoError(t, err)

	_, err = call[ExportRequest, ExportResponse](t, srv, ExportProcedure, &ExportRequest{Kind: "image"})
	require.Error(t, err)
	assert.Equal(t, connect.CodeInternal, connect.CodeOf(err))

	var cerr *connect.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "export failed", cerr.Message())
}

func TestDownload(t *testing.T) {
	srv := setupTestServer(t, inkBackend{})

	resp, err := srv.Client().Get(srv.URL + "/export/xlsx")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "nothing to export yet")

	srv.store.Create(context.Background())

	resp, err = srv.Client().Get(srv.URL + "/export/xlsx")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="Project Quotation.xlsx"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "PK", string(body[:2]))

	resp, err = srv.Client().Get(srv.URL + "/export/docx")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProfileImportExport(t *testing.T) {
	srv := setupTestServer(t, inkBackend{})

	empty, err := call[Empty, ProfileResponse](t, srv, GetProfileProcedure, &Empty{})
	require.NoError(t, err)
	assert.Nil(t, empty.Profile)

	doc := `{"title":"Studio Quote","provider":{"companyName":"Studio"},"taxConfig":{"name":"VAT","rate":20}}`
	imported, err := call[ImportProfileRequest, ProfileResponse](t, srv, ImportProfileProcedure, &ImportProfileRequest{Document: doc})
	require.NoError(t, err)
	assert.Equal(t, "Studio Quote", imported.Profile.Title)

	created, err := call[Empty, QuotationResponse](t, srv, CreateQuotationProcedure, &Empty{})
	require.NoError(t, err)
	assert.Equal(t, "Studio Quote", created.Quotation.Title)
	assert.Equal(t, "Studio", created.Quotation.Provider.CompanyName)
	assert.Equal(t, "VAT", created.Quotation.TaxConfig.Name)
	assert.Equal(t, 20.0, created.Quotation.TaxConfig.Rate)

	exported, err := call[Empty, ExportProfileResponse](t, srv, ExportProfileProcedure, &Empty{})
	require.NoError(t, err)
	assert.Equal(t, profile.FileName, exported.Filename)
	assert.Contains(t, exported.Document, `"companyName": "Studio"`)

	_, err = call[Empty, Empty](t, srv, DeleteProfileProcedure, &Empty{})
	require.NoError(t, err)
	gone, err := call[Empty, ProfileResponse](t, srv, GetProfileProcedure, &Empty{})
	require.NoError(t, err)
	assert.Nil(t, gone.Profile)
}
