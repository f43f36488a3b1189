// Package service exposes the quotation store, its totals and the exports
// as a Connect service speaking JSON.
package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/quotation/internal/export"
	"github.com/mmynk/quotation/internal/models"
	"github.com/mmynk/quotation/internal/profile"
	"github.com/mmynk/quotation/internal/quotation"
)

// errExportFailed hides renderer details from callers; the cause is logged.
var errExportFailed = errors.New("export failed")

// QuotationService implements the Connect QuotationService.
type QuotationService struct {
	store    *quotation.Store
	profiles *profile.Store
	exporter *export.Exporter
	validate *validator.Validate
}

// NewQuotationService creates a QuotationService. exporter may be nil, in
// which case Export reports Unimplemented.
func NewQuotationService(store *quotation.Store, profiles *profile.Store, exporter *export.Exporter) *QuotationService {
	return &QuotationService{
		store:    store,
		profiles: profiles,
		exporter: exporter,
		validate: validator.New(),
	}
}

func (s *QuotationService) check(msg any) error {
	if err := s.validate.Struct(msg); err != nil {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	return nil
}

func (s *QuotationService) current() *connect.Response[QuotationResponse] {
	q := s.store.Current()
	return connect.NewResponse(&QuotationResponse{Quotation: q, Totals: totalsOf(q)})
}

// GetCurrent returns the current quotation, creating one when none exists.
func (s *QuotationService) GetCurrent(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[QuotationResponse], error) {
	q := s.store.EnsureCurrent(ctx)
	return connect.NewResponse(&QuotationResponse{Quotation: q, Totals: totalsOf(q)}), nil
}

// CreateQuotation replaces the current quotation with a fresh one.
func (s *QuotationService) CreateQuotation(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[QuotationResponse], error) {
	q := s.store.Create(ctx)
	return connect.NewResponse(&QuotationResponse{Quotation: q, Totals: totalsOf(q)}), nil
}

// UpdateFields merges top-level fields.
func (s *QuotationService) UpdateFields(ctx context.Context, req *connect.Request[models.FieldsPatch]) (*connect.Response[QuotationResponse], error) {
	s.store.UpdateFields(ctx, *req.Msg)
	return s.current(), nil
}

// UpdateNotes replaces the notes.
func (s *QuotationService) UpdateNotes(ctx context.Context, req *connect.Request[UpdateNotesRequest]) (*connect.Response[QuotationResponse], error) {
	s.store.UpdateNotes(ctx, req.Msg.Notes)
	return s.current(), nil
}

// UpdateClient merges client fields. Invalid images are rejected.
func (s *QuotationService) UpdateClient(ctx context.Context, req *connect.Request[models.ClientPatch]) (*connect.Response[QuotationResponse], error) {
	if err := s.store.UpdateClient(ctx, *req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return s.current(), nil
}

// UpdateProvider merges provider fields. Invalid images are rejected.
func (s *QuotationService) UpdateProvider(ctx context.Context, req *connect.Request[models.ProviderPatch]) (*connect.Response[QuotationResponse], error) {
	if err := s.store.UpdateProvider(ctx, *req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return s.current(), nil
}

// UpdateTaxConfig merges tax configuration fields.
func (s *QuotationService) UpdateTaxConfig(ctx context.Context, req *connect.Request[models.TaxPatch]) (*connect.Response[QuotationResponse], error) {
	if err := s.check(req.Msg); err != nil {
		return nil, err
	}
	s.store.UpdateTaxConfig(ctx, *req.Msg)
	return s.current(), nil
}

// AddLineItem appends an empty line item.
func (s *QuotationService) AddLineItem(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[AddLineItemResponse], error) {
	id := s.store.AddLineItem(ctx)
	q := s.store.Current()
	return connect.NewResponse(&AddLineItemResponse{
		ID:                id,
		QuotationResponse: QuotationResponse{Quotation: q, Totals: totalsOf(q)},
	}), nil
}

// UpdateLineItem merges fields into one line item.
func (s *QuotationService) UpdateLineItem(ctx context.Context, req *connect.Request[UpdateLineItemRequest]) (*connect.Response[QuotationResponse], error) {
	if err := s.check(req.Msg); err != nil {
		return nil, err
	}
	s.store.UpdateLineItem(ctx, req.Msg.ID, req.Msg.Patch)
	return s.current(), nil
}

// DeleteLineItem removes one line item.
func (s *QuotationService) DeleteLineItem(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[QuotationResponse], error) {
	if err := s.check(req.Msg); err != nil {
		return nil, err
	}
	s.store.DeleteLineItem(ctx, req.Msg.ID)
	return s.current(), nil
}

// ReorderItems moves one line item.
func (s *QuotationService) ReorderItems(ctx context.Context, req *connect.Request[ReorderItemsRequest]) (*connect.Response[QuotationResponse], error) {
	if err := s.check(req.Msg); err != nil {
		return nil, err
	}
	s.store.ReorderItems(ctx, req.Msg.From, req.Msg.To)
	return s.current(), nil
}

// GetTotals returns the totals of the current quotation.
func (s *QuotationService) GetTotals(_ context.Context, _ *connect.Request[Empty]) (*connect.Response[Totals], error) {
	t := totalsOf(s.store.Current())
	if t == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, export.ErrNoQuotation)
	}
	return connect.NewResponse(t), nil
}

// ListHistory returns the history snapshots.
func (s *QuotationService) ListHistory(_ context.Context, _ *connect.Request[Empty]) (*connect.Response[HistoryResponse], error) {
	return connect.NewResponse(&HistoryResponse{Quotations: s.store.History()}), nil
}

// SaveToHistory snapshots the current quotation.
func (s *QuotationService) SaveToHistory(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[HistoryResponse], error) {
	s.store.SaveToHistory(ctx)
	return connect.NewResponse(&HistoryResponse{Quotations: s.store.History()}), nil
}

// LoadFromHistory makes a history snapshot current.
func (s *QuotationService) LoadFromHistory(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[QuotationResponse], error) {
	if err := s.check(req.Msg); err != nil {
		return nil, err
	}
	if !s.store.LoadFromHistory(ctx, req.Msg.ID) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("quotation not in history"))
	}
	return s.current(), nil
}

// DeleteFromHistory removes a history snapshot.
func (s *QuotationService) DeleteFromHistory(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[HistoryResponse], error) {
	if err := s.check(req.Msg); err != nil {
		return nil, err
	}
	s.store.DeleteFromHistory(ctx, req.Msg.ID)
	return connect.NewResponse(&HistoryResponse{Quotations: s.store.History()}), nil
}

// Export produces an image, PDF or spreadsheet of the current quotation.
func (s *QuotationService) Export(ctx context.Context, req *connect.Request[ExportRequest]) (*connect.Response[ExportResponse], error) {
	if err := s.check(req.Msg); err != nil {
		return nil, err
	}
	art, err := s.export(ctx, req.Msg.Kind)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&ExportResponse{
		Filename:    art.Filename,
		ContentType: art.ContentType,
		Data:        art.Data,
	}), nil
}

func (s *QuotationService) export(ctx context.Context, name string) (*export.Artifact, error) {
	if s.exporter == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, errors.New("exports are disabled"))
	}
	kind, err := export.ParseKind(name)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	art, err := s.exporter.Export(ctx, kind)
	switch {
	case err == nil:
		return art, nil
	case errors.Is(err, export.ErrNoQuotation):
		return nil, connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, export.ErrBusy):
		return nil, connect.NewError(connect.CodeResourceExhausted, err)
	case errors.Is(err, context.Canceled):
		return nil, connect.NewError(connect.CodeCanceled, err)
	default:
		return nil, connect.NewError(connect.CodeInternal, errExportFailed)
	}
}

// GetProfile returns the saved profile.
func (s *QuotationService) GetProfile(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[ProfileResponse], error) {
	return connect.NewResponse(&ProfileResponse{Profile: s.profiles.Load(ctx)}), nil
}

// SaveProfile replaces the saved profile.
func (s *QuotationService) SaveProfile(ctx context.Context, req *connect.Request[models.Profile]) (*connect.Response[ProfileResponse], error) {
	if err := s.check(req.Msg); err != nil {
		return nil, err
	}
	if err := s.profiles.Save(ctx, req.Msg); err != nil {
		slog.Error("SaveProfile failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&ProfileResponse{Profile: req.Msg}), nil
}

// DeleteProfile removes the saved profile.
func (s *QuotationService) DeleteProfile(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[Empty], error) {
	if err := s.profiles.Delete(ctx); err != nil {
		slog.Error("DeleteProfile failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&Empty{}), nil
}

// ImportProfile parses, validates and saves a profile document.
func (s *QuotationService) ImportProfile(ctx context.Context, req *connect.Request[ImportProfileRequest]) (*connect.Response[ProfileResponse], error) {
	if err := s.check(req.Msg); err != nil {
		return nil, err
	}
	p, err := s.profiles.Import(ctx, strings.NewReader(req.Msg.Document))
	if err != nil {
		if errors.Is(err, profile.ErrMalformed) {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&ProfileResponse{Profile: p}), nil
}

// ExportProfile returns the saved profile as a JSON document.
func (s *QuotationService) ExportProfile(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[ExportProfileResponse], error) {
	var buf bytes.Buffer
	if err := s.profiles.Export(ctx, &buf); err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&ExportProfileResponse{
		Filename: profile.FileName,
		Document: buf.String(),
	}), nil
}
