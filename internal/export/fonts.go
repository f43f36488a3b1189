package export

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontSet loads the document typefaces once and shares them between
// backends.
type FontSet struct {
	once  sync.Once
	ready chan struct{}
	err   error

	regular *text.FontSource
	bold    *text.FontSource

	regularOT *opentype.Font
	boldOT    *opentype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

type faceKey struct {
	bold bool
	size float64
}

// NewFontSet returns an unloaded font set.
func NewFontSet() *FontSet {
	return &FontSet{
		ready: make(chan struct{}),
		faces: make(map[faceKey]font.Face),
	}
}

// Preload parses the fonts. It is safe to call repeatedly and from several
// goroutines; later calls return the first result.
func (f *FontSet) Preload() error {
	f.once.Do(func() {
		defer close(f.ready)
		f.err = f.load()
		if f.err != nil {
			slog.Error("Failed to load fonts", "error", f.err)
		}
	})
	return f.err
}

func (f *FontSet) load() error {
	var err error
	if f.regular, err = text.NewFontSource(goregular.TTF); err != nil {
		return fmt.Errorf("failed to load regular font source: %w", err)
	}
	if f.bold, err = text.NewFontSource(gobold.TTF); err != nil {
		return fmt.Errorf("failed to load bold font source: %w", err)
	}
	if f.regularOT, err = opentype.Parse(goregular.TTF); err != nil {
		return fmt.Errorf("failed to parse regular font: %w", err)
	}
	if f.boldOT, err = opentype.Parse(gobold.TTF); err != nil {
		return fmt.Errorf("failed to parse bold font: %w", err)
	}
	return nil
}

// Ready is closed once loading has finished, successfully or not.
func (f *FontSet) Ready() <-chan struct{} {
	return f.ready
}

// Wait blocks until the fonts are ready, the timeout elapses or ctx is
// done. Only ctx cancellation is reported; a timeout lets rendering go
// ahead with whatever is available.
func (f *FontSet) Wait(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		select {
		case <-f.ready:
		default:
		}
		return nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-f.ready:
		return nil
	case <-timer.C:
		slog.Warn("Fonts not ready, rendering anyway", "waited", timeout)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Face returns a shaped-text face for the gg backend.
func (f *FontSet) Face(bold bool, size float64) (text.Face, error) {
	if err := f.Preload(); err != nil {
		return nil, err
	}
	if bold {
		return f.bold.Face(size), nil
	}
	return f.regular.Face(size), nil
}

// OpenTypeFace returns a cached x/image face for the basic backend.
func (f *FontSet) OpenTypeFace(bold bool, size float64) (font.Face, error) {
	if err := f.Preload(); err != nil {
		return nil, err
	}
	key := faceKey{bold: bold, size: size}

	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faces[key]; ok {
		return face, nil
	}
	src := f.regularOT
	if bold {
		src = f.boldOT
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}
	f.faces[key] = face
	return face, nil
}
