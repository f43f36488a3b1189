// Package quotation owns the current editable quotation and the bounded
// history of saved snapshots.
//
// Every operation is an atomic read-modify-write under a single mutex and
// persists the affected record before returning. Operations on a missing
// current document or a missing id are silent no-ops: callers invoke them
// opportunistically and never need to check first.
package quotation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mmynk/quotation/internal/media"
	"github.com/mmynk/quotation/internal/models"
	"github.com/mmynk/quotation/internal/storage"
)

// HistoryLimit is the maximum number of snapshots kept in history.
const HistoryLimit = 5

// validity is the default distance between issue date and expiry.
const validity = 30 * 24 * time.Hour

// Built-in defaults used when no profile value is available.
const (
	DefaultTitle    = "Project Quotation"
	DefaultSubtitle = "QUOTATION"
	DefaultTaxName  = "Sales Tax"
	DefaultTaxRate  = 5.0
)

// ProfileLoader provides the defaults that seed a new quotation.
// A nil profile means "use built-in defaults".
type ProfileLoader interface {
	Load(ctx context.Context) *models.Profile
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the id source for quotations and line items.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Store is the single writer of the current quotation and the history.
type Store struct {
	mu       sync.Mutex
	records  storage.Store
	profiles ProfileLoader
	now      func() time.Time
	newID    func() string

	current *models.Quotation
	history []*models.Quotation
}

// New creates a Store and hydrates it from records. Unreadable records are
// logged and treated as absent; New never fails.
func New(ctx context.Context, records storage.Store, profiles ProfileLoader, opts ...Option) *Store {
	s := &Store{
		records:  records,
		profiles: profiles,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) {
	var current models.Quotation
	if s.readRecord(ctx, storage.RecordCurrent, &current) && current.ID != "" {
		models.Normalize(&current)
		s.current = &current
	}

	var history []*models.Quotation
	if s.readRecord(ctx, storage.RecordHistory, &history) {
		for _, q := range history {
			if q == nil || q.ID == "" {
				continue
			}
			models.Normalize(q)
			s.history = append(s.history, q)
		}
		s.orderHistory()
	}

	slog.Info("Quotation store hydrated",
		"has_current", s.current != nil,
		"history_count", len(s.history),
	)
}

// readRecord decodes a record into v. It reports false when the record is
// absent or unusable.
func (s *Store) readRecord(ctx context.Context, name string, v any) bool {
	payload, err := s.records.Get(ctx, name)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("Failed to read record", "record", name, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(payload, v); err != nil {
		slog.Error("Failed to decode record", "record", name, "error", err)
		return false
	}
	return true
}

// Current returns a deep copy of the current quotation, or nil.
func (s *Store) Current() *models.Quotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// EnsureCurrent returns the current quotation, creating one if none exists.
func (s *Store) EnsureCurrent(ctx context.Context) *models.Quotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		s.current = s.newQuotation(ctx)
		s.persistCurrent(ctx)
	}
	return s.current.Clone()
}

// History returns deep copies of the saved snapshots, most recent first.
func (s *Store) History() []*models.Quotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Quotation, len(s.history))
	for i, q := range s.history {
		out[i] = q.Clone()
	}
	return out
}

// Create replaces the current quotation with a fresh one seeded from the
// profile, or from built-in defaults.
func (s *Store) Create(ctx context.Context) *models.Quotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.newQuotation(ctx)
	s.persistCurrent(ctx)
	slog.Info("Quotation created", "quotation_id", s.current.ID)
	return s.current.Clone()
}

func (s *Store) newQuotation(ctx context.Context) *models.Quotation {
	now := s.now()
	q := &models.Quotation{
		ID:            s.newID(),
		Title:         DefaultTitle,
		Subtitle:      DefaultSubtitle,
		QuotationDate: now.Format(models.DateLayout),
		ValidUntil:    now.Add(validity).Format(models.DateLayout),
		Items:         []models.LineItem{},
		TaxConfig: models.TaxConfig{
			Name: DefaultTaxName,
			Rate: DefaultTaxRate,
			Mode: models.TaxModeExcluded,
		},
		ShowSignatureSection: models.BoolPtr(true),
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	var p *models.Profile
	if s.profiles != nil {
		p = s.profiles.Load(ctx)
	}
	if p == nil {
		return q
	}

	if p.Title != "" {
		q.Title = p.Title
	}
	if p.Subtitle != "" {
		q.Subtitle = p.Subtitle
	}
	client, provider := p.Client, p.Provider
	dropInvalidImage("client.logo", &client.Logo)
	dropInvalidImage("provider.logo", &provider.Logo)
	dropInvalidImage("provider.stamp", &provider.Stamp)
	client.ApplyTo(&q.Client)
	provider.ApplyTo(&q.Provider)
	if p.TaxConfig.Name != nil && *p.TaxConfig.Name != "" {
		q.TaxConfig.Name = *p.TaxConfig.Name
	}
	if p.TaxConfig.Rate != nil {
		q.TaxConfig.Rate = *p.TaxConfig.Rate
	}
	if p.TaxConfig.Mode != nil && *p.TaxConfig.Mode != "" {
		q.TaxConfig.Mode = p.TaxConfig.Mode.OrDefault()
	}
	q.Notes = p.Notes
	if p.ShowSignatureSection != nil {
		q.ShowSignatureSection = models.BoolPtr(*p.ShowSignatureSection)
	}
	return q
}

// mutate applies fn to the current quotation. When fn reports a change,
// UpdatedAt is bumped and the record persisted. It reports false when there
// is no current quotation or nothing changed.
func (s *Store) mutate(ctx context.Context, fn func(q *models.Quotation) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || !fn(s.current) {
		return false
	}
	s.current.UpdatedAt = s.now()
	s.persistCurrent(ctx)
	return true
}

// UpdateFields merges top-level fields into the current quotation.
func (s *Store) UpdateFields(ctx context.Context, patch models.FieldsPatch) {
	s.mutate(ctx, func(q *models.Quotation) bool {
		patch.ApplyTo(q)
		return true
	})
}

// UpdateNotes replaces the notes of the current quotation.
func (s *Store) UpdateNotes(ctx context.Context, notes string) {
	s.mutate(ctx, func(q *models.Quotation) bool {
		q.Notes = notes
		return true
	})
}

// UpdateClient merges client fields. Images are validated before any
// state changes.
func (s *Store) UpdateClient(ctx context.Context, patch models.ClientPatch) error {
	if err := validateImages(patch.Images()); err != nil {
		return err
	}
	s.mutate(ctx, func(q *models.Quotation) bool {
		patch.ApplyTo(&q.Client)
		return true
	})
	return nil
}

// UpdateProvider merges provider fields. Images are validated before any
// state changes.
func (s *Store) UpdateProvider(ctx context.Context, patch models.ProviderPatch) error {
	if err := validateImages(patch.Images()); err != nil {
		return err
	}
	s.mutate(ctx, func(q *models.Quotation) bool {
		patch.ApplyTo(&q.Provider)
		return true
	})
	return nil
}

// UpdateTaxConfig merges tax configuration fields.
func (s *Store) UpdateTaxConfig(ctx context.Context, patch models.TaxPatch) {
	s.mutate(ctx, func(q *models.Quotation) bool {
		patch.ApplyTo(&q.TaxConfig)
		return true
	})
}

// dropInvalidImage clears a profile image that is not an accepted upload
// so it never reaches a quotation.
func dropInvalidImage(field string, img **string) {
	if *img == nil || **img == "" {
		return
	}
	if err := media.Validate(**img); err != nil {
		slog.Warn("Ignoring invalid profile image", "field", field, "error", err)
		*img = nil
	}
}

func validateImages(images []string) error {
	for _, img := range images {
		if err := media.Validate(img); err != nil {
			return fmt.Errorf("invalid image: %w", err)
		}
	}
	return nil
}

// AddLineItem appends an empty line (quantity 1, price 0) and returns its
// id, or "" when there is no current quotation.
func (s *Store) AddLineItem(ctx context.Context) string {
	id := s.newID()
	ok := s.mutate(ctx, func(q *models.Quotation) bool {
		q.Items = append(q.Items, models.LineItem{ID: id, Quantity: 1})
		return true
	})
	if !ok {
		return ""
	}
	return id
}

// UpdateLineItem merges fields into the item with the given id and
// recomputes its subtotal.
func (s *Store) UpdateLineItem(ctx context.Context, id string, patch models.LineItemPatch) {
	s.mutate(ctx, func(q *models.Quotation) bool {
		for i := range q.Items {
			if q.Items[i].ID == id {
				patch.ApplyTo(&q.Items[i])
				return true
			}
		}
		return false
	})
}

// DeleteLineItem removes the item with the given id, if present.
func (s *Store) DeleteLineItem(ctx context.Context, id string) {
	s.mutate(ctx, func(q *models.Quotation) bool {
		items := make([]models.LineItem, 0, len(q.Items))
		for _, it := range q.Items {
			if it.ID != id {
				items = append(items, it)
			}
		}
		removed := len(items) != len(q.Items)
		q.Items = items
		return removed
	})
}

// ReorderItems moves the item at index from to index to, keeping the
// relative order of every other item. Out-of-range indexes are ignored.
func (s *Store) ReorderItems(ctx context.Context, from, to int) {
	s.mutate(ctx, func(q *models.Quotation) bool {
		n := len(q.Items)
		if from < 0 || from >= n || to < 0 || to >= n {
			return false
		}
		moved := q.Items[from]
		rest := make([]models.LineItem, 0, n)
		rest = append(rest, q.Items[:from]...)
		rest = append(rest, q.Items[from+1:]...)

		items := make([]models.LineItem, 0, n)
		items = append(items, rest[:to]...)
		items = append(items, moved)
		items = append(items, rest[to:]...)
		q.Items = items
		return true
	})
}

// SaveToHistory upserts a snapshot of the current quotation into history,
// keeping the HistoryLimit most recently updated entries.
func (s *Store) SaveToHistory(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}

	snapshot := s.current.Clone()
	replaced := false
	for i, q := range s.history {
		if q.ID == snapshot.ID {
			s.history[i] = snapshot
			replaced = true
			break
		}
	}
	if !replaced {
		s.history = append([]*models.Quotation{snapshot}, s.history...)
	}

	s.orderHistory()

	s.persistHistory(ctx)
	slog.Debug("Quotation saved to history",
		"quotation_id", snapshot.ID,
		"replaced", replaced,
		"history_count", len(s.history),
	)
}

// orderHistory sorts history by UpdatedAt, newest first, and keeps the
// HistoryLimit most recent entries.
func (s *Store) orderHistory() {
	sort.SliceStable(s.history, func(i, j int) bool {
		return s.history[i].UpdatedAt.After(s.history[j].UpdatedAt)
	})
	if len(s.history) > HistoryLimit {
		s.history = s.history[:HistoryLimit]
	}
}

// LoadFromHistory makes the snapshot with the given id current. Legacy
// fields are backfilled.
func (s *Store) LoadFromHistory(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.history {
		if q.ID == id {
			loaded := q.Clone()
			models.Normalize(loaded)
			s.current = loaded
			s.persistCurrent(ctx)
			slog.Info("Quotation loaded from history", "quotation_id", id)
			return true
		}
	}
	return false
}

// DeleteFromHistory removes the snapshot with the given id. When it is the
// current quotation, the current quotation is cleared as well.
func (s *Store) DeleteFromHistory(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.history[:0]
	for _, q := range s.history {
		if q.ID != id {
			history = append(history, q)
		}
	}
	for i := len(history); i < len(s.history); i++ {
		s.history[i] = nil
	}
	s.history = history
	s.persistHistory(ctx)

	if s.current != nil && s.current.ID == id {
		s.current = nil
		s.persistCurrent(ctx)
	}
}

// persistCurrent writes the current record. Failures are logged; the
// in-memory state remains authoritative.
func (s *Store) persistCurrent(ctx context.Context) {
	if s.current == nil {
		if err := s.records.Delete(ctx, storage.RecordCurrent); err != nil {
			slog.Error("Failed to clear current quotation", "error", err)
		}
		return
	}
	s.writeRecord(ctx, storage.RecordCurrent, s.current)
}

func (s *Store) persistHistory(ctx context.Context) {
	s.writeRecord(ctx, storage.RecordHistory, s.history)
}

func (s *Store) writeRecord(ctx context.Context, name string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to encode record", "record", name, "error", err)
		return
	}
	if err := s.records.Put(ctx, name, payload); err != nil {
		slog.Error("Failed to persist record", "record", name, "error", err)
	}
}
