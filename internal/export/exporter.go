// Package export produces the static outputs of a quotation: a JPEG
// raster and a single-page PDF rendered from the editor surface, and a
// spreadsheet built straight from the quotation data.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmynk/quotation/internal/models"
	"github.com/mmynk/quotation/internal/surface"
)

// ErrNoQuotation is returned when there is nothing to export.
var ErrNoQuotation = errors.New("no current quotation")

// Kind is an output format.
type Kind string

const (
	KindImage       Kind = "image"
	KindPDF         Kind = "pdf"
	KindSpreadsheet Kind = "xlsx"
)

// ParseKind accepts a kind name or its common file extension.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "image", "jpg", "jpeg":
		return KindImage, nil
	case "pdf":
		return KindPDF, nil
	case "xlsx", "excel", "spreadsheet":
		return KindSpreadsheet, nil
	default:
		return "", fmt.Errorf("unknown export kind %q", s)
	}
}

func (k Kind) extension() string {
	switch k {
	case KindImage:
		return ".jpg"
	case KindPDF:
		return ".pdf"
	default:
		return ".xlsx"
	}
}

func (k Kind) contentType() string {
	switch k {
	case KindImage:
		return "image/jpeg"
	case KindPDF:
		return "application/pdf"
	default:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
}

// fallbackName is used when a quotation has neither number nor title.
const fallbackName = "quotation"

// BaseName picks the download name of q: its number, else its title, else
// a generic label. Path separators are replaced.
func BaseName(q *models.Quotation) string {
	name := strings.TrimSpace(q.QuotationNumber)
	if name == "" {
		name = strings.TrimSpace(q.Title)
	}
	if name == "" {
		return fallbackName
	}
	return strings.NewReplacer("/", "-", `\`, "-").Replace(name)
}

// Artifact is a finished export.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Source is the quotation store as seen by the exporter.
type Source interface {
	Current() *models.Quotation
	SaveToHistory(ctx context.Context)
}

// Exporter saves the current quotation to history and produces an export
// of it.
type Exporter struct {
	source    Source
	pipeline  *Pipeline
	quality   int
	outputDir string
	metrics   *Metrics
}

// ExporterConfig configures an Exporter.
type ExporterConfig struct {
	JPEGQuality int
	// OutputDir, when set, also receives every artifact.
	OutputDir string
	Metrics   *Metrics
}

// NewExporter creates an Exporter.
func NewExporter(source Source, pipeline *Pipeline, cfg ExporterConfig) *Exporter {
	quality := cfg.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Exporter{
		source:    source,
		pipeline:  pipeline,
		quality:   quality,
		outputDir: cfg.OutputDir,
		metrics:   cfg.Metrics,
	}
}

// Export produces kind for the current quotation. The quotation is saved to
// history before anything is rendered. Nothing is written on failure.
func (e *Exporter) Export(ctx context.Context, kind Kind) (*Artifact, error) {
	start := time.Now()
	art, err := e.export(ctx, kind)
	outcome := "success"
	switch {
	case errors.Is(err, ErrBusy):
		outcome = "busy"
	case err != nil:
		outcome = "error"
	}
	e.metrics.observe(kind, outcome, time.Since(start).Seconds())

	if err != nil {
		slog.Error("Export failed", "kind", kind, "error", err)
		return nil, err
	}
	slog.Info("Export completed",
		"kind", kind,
		"file", art.Filename,
		"bytes", len(art.Data),
		"duration", time.Since(start),
	)
	return art, nil
}

func (e *Exporter) export(ctx context.Context, kind Kind) (*Artifact, error) {
	q := e.source.Current()
	if q == nil {
		return nil, ErrNoQuotation
	}
	e.source.SaveToHistory(ctx)
	models.Normalize(q)

	var (
		data []byte
		err  error
	)
	switch kind {
	case KindImage, KindPDF:
		img, cerr := e.pipeline.Capture(ctx, surface.Build(q))
		if cerr != nil {
			return nil, fmt.Errorf("capture failed: %w", cerr)
		}
		if kind == KindImage {
			data, err = EncodeJPEG(img, e.quality)
		} else {
			data, err = EncodePDF(img, q.Title, e.quality)
		}
	case KindSpreadsheet:
		data, err = BuildSpreadsheet(q)
	default:
		return nil, fmt.Errorf("unknown export kind %q", kind)
	}
	if err != nil {
		return nil, err
	}

	art := &Artifact{
		Filename:    BaseName(q) + kind.extension(),
		ContentType: kind.contentType(),
		Data:        data,
	}
	if e.outputDir != "" {
		if err := writeAtomic(e.outputDir, art.Filename, art.Data); err != nil {
			return nil, err
		}
	}
	return art, nil
}

// writeAtomic writes data next to its destination and renames it into
// place, so a failed write leaves no partial file.
func writeAtomic(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}
