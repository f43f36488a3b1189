package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"connectrpc.com/connect"
)

// QuotationServiceName is the fully-qualified name of the service.
const QuotationServiceName = "quotation.v1.QuotationService"

// Procedure paths, relative to the server root.
const (
	GetCurrentProcedure        = "/" + QuotationServiceName + "/GetCurrent"
	CreateQuotationProcedure   = "/" + QuotationServiceName + "/CreateQuotation"
	UpdateFieldsProcedure      = "/" + QuotationServiceName + "/UpdateFields"
	UpdateNotesProcedure       = "/" + QuotationServiceName + "/UpdateNotes"
	UpdateClientProcedure      = "/" + QuotationServiceName + "/UpdateClient"
	UpdateProviderProcedure    = "/" + QuotationServiceName + "/UpdateProvider"
	UpdateTaxConfigProcedure   = "/" + QuotationServiceName + "/UpdateTaxConfig"
	AddLineItemProcedure       = "/" + QuotationServiceName + "/AddLineItem"
	UpdateLineItemProcedure    = "/" + QuotationServiceName + "/UpdateLineItem"
	DeleteLineItemProcedure    = "/" + QuotationServiceName + "/DeleteLineItem"
	ReorderItemsProcedure      = "/" + QuotationServiceName + "/ReorderItems"
	GetTotalsProcedure         = "/" + QuotationServiceName + "/GetTotals"
	ListHistoryProcedure       = "/" + QuotationServiceName + "/ListHistory"
	SaveToHistoryProcedure     = "/" + QuotationServiceName + "/SaveToHistory"
	LoadFromHistoryProcedure   = "/" + QuotationServiceName + "/LoadFromHistory"
	DeleteFromHistoryProcedure = "/" + QuotationServiceName + "/DeleteFromHistory"
	ExportProcedure            = "/" + QuotationServiceName + "/Export"
	GetProfileProcedure        = "/" + QuotationServiceName + "/GetProfile"
	SaveProfileProcedure       = "/" + QuotationServiceName + "/SaveProfile"
	DeleteProfileProcedure     = "/" + QuotationServiceName + "/DeleteProfile"
	ImportProfileProcedure     = "/" + QuotationServiceName + "/ImportProfile"
	ExportProfileProcedure     = "/" + QuotationServiceName + "/ExportProfile"
)

// NewQuotationServiceHandler builds an HTTP handler for every procedure of
// svc. It returns the path to mount it on. The JSON codec is always
// installed.
func NewQuotationServiceHandler(svc *QuotationService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(GetCurrentProcedure, connect.NewUnaryHandler(GetCurrentProcedure, svc.GetCurrent, opts...))
	mux.Handle(CreateQuotationProcedure, connect.NewUnaryHandler(CreateQuotationProcedure, svc.CreateQuotation, opts...))
	mux.Handle(UpdateFieldsProcedure, connect.NewUnaryHandler(UpdateFieldsProcedure, svc.UpdateFields, opts...))
	mux.Handle(UpdateNotesProcedure, connect.NewUnaryHandler(UpdateNotesProcedure, svc.UpdateNotes, opts...))
	mux.Handle(UpdateClientProcedure, connect.NewUnaryHandler(UpdateClientProcedure, svc.UpdateClient, opts...))
	mux.Handle(UpdateProviderProcedure, connect.NewUnaryHandler(UpdateProviderProcedure, svc.UpdateProvider, opts...))
	mux.Handle(UpdateTaxConfigProcedure, connect.NewUnaryHandler(UpdateTaxConfigProcedure, svc.UpdateTaxConfig, opts...))
	mux.Handle(AddLineItemProcedure, connect.NewUnaryHandler(AddLineItemProcedure, svc.AddLineItem, opts...))
	mux.Handle(UpdateLineItemProcedure, connect.NewUnaryHandler(UpdateLineItemProcedure, svc.UpdateLineItem, opts...))
	mux.Handle(DeleteLineItemProcedure, connect.NewUnaryHandler(DeleteLineItemProcedure, svc.DeleteLineItem, opts...))
	mux.Handle(ReorderItemsProcedure, connect.NewUnaryHandler(ReorderItemsProcedure, svc.ReorderItems, opts...))
	mux.Handle(GetTotalsProcedure, connect.NewUnaryHandler(GetTotalsProcedure, svc.GetTotals, opts...))
	mux.Handle(ListHistoryProcedure, connect.NewUnaryHandler(ListHistoryProcedure, svc.ListHistory, opts...))
	mux.Handle(SaveToHistoryProcedure, connect.NewUnaryHandler(SaveToHistoryProcedure, svc.SaveToHistory, opts...))
	mux.Handle(LoadFromHistoryProcedure, connect.NewUnaryHandler(LoadFromHistoryProcedure, svc.LoadFromHistory, opts...))
	mux.Handle(DeleteFromHistoryProcedure, connect.NewUnaryHandler(DeleteFromHistoryProcedure, svc.DeleteFromHistory, opts...))
	mux.Handle(ExportProcedure, connect.NewUnaryHandler(ExportProcedure, svc.Export, opts...))
	mux.Handle(GetProfileProcedure, connect.NewUnaryHandler(GetProfileProcedure, svc.GetProfile, opts...))
	mux.Handle(SaveProfileProcedure, connect.NewUnaryHandler(SaveProfileProcedure, svc.SaveProfile, opts...))
	mux.Handle(DeleteProfileProcedure, connect.NewUnaryHandler(DeleteProfileProcedure, svc.DeleteProfile, opts...))
	mux.Handle(ImportProfileProcedure, connect.NewUnaryHandler(ImportProfileProcedure, svc.ImportProfile, opts...))
	mux.Handle(ExportProfileProcedure, connect.NewUnaryHandler(ExportProfileProcedure, svc.ExportProfile, opts...))
	return "/" + QuotationServiceName + "/", mux
}

// DownloadPattern is the route of DownloadHandler.
const DownloadPattern = "GET /export/{kind}"

// DownloadHandler serves an export as a file download, so browsers can
// save it without decoding the RPC response.
func (s *QuotationService) DownloadHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		art, err := s.export(r.Context(), r.PathValue("kind"))
		if err != nil {
			status := httpStatus(err)
			slog.Warn("Download failed", "kind", r.PathValue("kind"), "status", status, "error", err)
			http.Error(w, errorMessage(err), status)
			return
		}
		w.Header().Set("Content-Type", art.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(art.Data); err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("Download interrupted", "file", art.Filename, "error", err)
		}
	})
}

func httpStatus(err error) int {
	switch connect.CodeOf(err) {
	case connect.CodeInvalidArgument:
		return http.StatusBadRequest
	case connect.CodeFailedPrecondition:
		return http.StatusConflict
	case connect.CodeResourceExhausted:
		return http.StatusTooManyRequests
	case connect.CodeUnimplemented:
		return http.StatusNotImplemented
	case connect.CodeCanceled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return cerr.Message()
	}
	return err.Error()
}
