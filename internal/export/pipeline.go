package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/semaphore"

	"github.com/mmynk/quotation/internal/surface"
)

var (
	// ErrBusy is returned when an export is already running.
	ErrBusy = errors.New("an export is already in progress")
	// ErrBlank marks a render that produced no visible content.
	ErrBlank = errors.New("render produced a blank image")
)

// Pipeline turns a laid-out surface into a raster by trying each backend
// in order until one produces a usable image.
type Pipeline struct {
	backends   []Backend
	classifier Classifier
	fonts      *FontSet
	fontWait   time.Duration
	scale      float64
	background color.Color
	metrics    *Metrics

	// guard allows one capture at a time.
	guard *semaphore.Weighted

	mu       sync.Mutex
	sessions map[string]struct{}
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithClassifier replaces the blank detector.
func WithClassifier(c Classifier) PipelineOption {
	return func(p *Pipeline) { p.classifier = c }
}

// WithFonts sets the font set whose readiness is awaited before rendering.
func WithFonts(f *FontSet, wait time.Duration) PipelineOption {
	return func(p *Pipeline) {
		p.fonts = f
		p.fontWait = wait
	}
}

// WithScale sets the output pixel ratio.
func WithScale(scale float64) PipelineOption {
	return func(p *Pipeline) {
		if scale > 0 {
			p.scale = scale
		}
	}
}

// WithMetrics attaches export metrics.
func WithMetrics(m *Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

// NewPipeline creates a pipeline that tries backends in the given order.
func NewPipeline(backends []Backend, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		backends:   backends,
		classifier: BlankDetector{MinInked: DefaultMinInked},
		scale:      2,
		background: color.White,
		guard:      semaphore.NewWeighted(1),
		sessions:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// session is the transient state of one capture.
type session struct {
	cfg RenderConfig
}

// ActiveSessions returns the number of captures that have not been torn
// down.
func (p *Pipeline) ActiveSessions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

func (p *Pipeline) prepare(ctx context.Context) (*session, error) {
	s := &session{cfg: RenderConfig{
		MarkerID:   "export-" + uuid.NewString(),
		ExportMode: true,
		Scale:      p.scale,
		Background: p.background,
	}}
	p.mu.Lock()
	p.sessions[s.cfg.MarkerID] = struct{}{}
	p.mu.Unlock()

	if p.fonts != nil {
		if err := p.fonts.Wait(ctx, p.fontWait); err != nil {
			return s, fmt.Errorf("waiting for fonts: %w", err)
		}
	}
	return s, nil
}

func (p *Pipeline) teardown(s *session) {
	p.mu.Lock()
	delete(p.sessions, s.cfg.MarkerID)
	p.mu.Unlock()
}

// Capture renders doc. The document itself is left untouched; every
// attempt works on a frozen clone. A blank result from any backend but the
// last moves on to the next one, as does an error. When the last backend
// errors, the failures of every attempt are returned together.
func (p *Pipeline) Capture(ctx context.Context, doc *surface.Document) (image.Image, error) {
	if !p.guard.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer p.guard.Release(1)

	s, err := p.prepare(ctx)
	defer p.teardown(s)
	if err != nil {
		return nil, err
	}
	if len(p.backends) == 0 {
		return nil, errors.New("no render backends configured")
	}

	var result *multierror.Error
	for i, backend := range p.backends {
		last := i == len(p.backends)-1
		log := slog.With("marker", s.cfg.MarkerID, "attempt", i+1, "backend", backend.Name())

		img, err := backend.Render(ctx, exportClone(doc), s.cfg)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", backend.Name(), err))
			if ctx.Err() != nil {
				return nil, result.ErrorOrNil()
			}
			log.Warn("Render attempt failed", "error", err)
			if !last {
				p.metrics.fallback()
			}
			continue
		}

		if p.classifier.Blank(img) {
			if !last {
				log.Warn("Render attempt came out blank, falling back")
				result = multierror.Append(result, fmt.Errorf("%s: %w", backend.Name(), ErrBlank))
				p.metrics.fallback()
				continue
			}
			log.Warn("Last render attempt came out blank, using it anyway")
		}

		log.Debug("Render attempt succeeded")
		return img, nil
	}
	return nil, result.ErrorOrNil()
}

// exportClone prepares a copy of doc for rendering: controls become static
// text and text nodes get extra bottom padding.
func exportClone(doc *surface.Document) *surface.Document {
	c := doc.Clone()
	surface.FreezeControls(c.Root)
	surface.ApplyExportStyle(c.Root)
	return c
}
