// Package profile persists the reusable default values that seed new
// quotations, and moves them in and out as standalone JSON files.
package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"

	"github.com/mmynk/quotation/internal/media"
	"github.com/mmynk/quotation/internal/models"
	"github.com/mmynk/quotation/internal/storage"
)

// ErrMalformed is returned by Import for unparseable or invalid documents.
var ErrMalformed = errors.New("malformed profile")

// FileName is the suggested name of an exported profile.
const FileName = storage.RecordProfile

// Store reads and writes the profile record.
type Store struct {
	records  storage.Store
	validate *validator.Validate
}

// NewStore creates a profile Store on top of records.
func NewStore(records storage.Store) *Store {
	return &Store{records: records, validate: validator.New()}
}

// Load returns the saved profile, or nil when none exists. Storage and
// decoding failures are logged and reported as "no profile".
func (s *Store) Load(ctx context.Context) *models.Profile {
	payload, err := s.records.Get(ctx, storage.RecordProfile)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("Failed to read profile", "error", err)
		}
		return nil
	}
	p := &models.Profile{}
	if err := json.Unmarshal(payload, p); err != nil {
		slog.Error("Failed to decode profile", "error", err)
		return nil
	}
	return p
}

// Save persists p, replacing any existing profile.
func (s *Store) Save(ctx context.Context, p *models.Profile) error {
	payload, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	return s.records.Put(ctx, storage.RecordProfile, payload)
}

// Delete removes the saved profile.
func (s *Store) Delete(ctx context.Context) error {
	return s.records.Delete(ctx, storage.RecordProfile)
}

// Import parses and validates a profile document. On success the profile
// is saved; on failure nothing is written and ErrMalformed is returned.
func (s *Store) Import(ctx context.Context, r io.Reader) (*models.Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	p := &models.Profile{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := s.validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for _, img := range append(p.Client.Images(), p.Provider.Images()...) {
		if err := media.Validate(img); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	if err := s.Save(ctx, p); err != nil {
		return nil, err
	}
	slog.Info("Profile imported")
	return p, nil
}

// Export writes the saved profile as indented JSON. An absent profile is
// exported as an empty object.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	p := s.Load(ctx)
	if p == nil {
		p = &models.Profile{}
	}
	payload, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}
