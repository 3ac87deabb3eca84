package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"invoicer/internal/logger"
	"invoicer/pkg/models"
)

// Repository is the invoice history as seen by the CLI.
type Repository interface {
	// List returns the invoices newest first.
	List(ctx context.Context) []models.Invoice

	// Get looks an invoice up by id.
	Get(ctx context.Context, id string) (models.Invoice, bool)

	// Find looks an invoice up by id or invoice number (case-insensitive).
	Find(ctx context.Context, ref string) (models.Invoice, bool)

	// Insert places a new invoice at the head of the history and persists it.
	Insert(ctx context.Context, inv models.Invoice) error

	// UpdateStatus changes the status of one invoice. It reports false when
	// no invoice has that id.
	UpdateStatus(ctx context.Context, id string, status models.Status) (bool, error)

	// Remove deletes one invoice. It reports false, without writing, when no
	// invoice has that id.
	Remove(ctx context.Context, id string) (bool, error)
}

// Store keeps the whole invoice collection in memory and rewrites it to one
// KV slot on every mutation. Memory is only updated once the write succeeds.
type Store struct {
	mu       sync.RWMutex
	kv       KV
	key      string
	invoices []models.Invoice
	log      zerolog.Logger

	// damaged is set when the slot held data that did not load in full.
	// The first write backs the slot up before replacing it.
	damaged bool
	now     func() time.Time
}

var _ Repository = (*Store)(nil)

// New loads the collection stored under key (DefaultInvoicesKey when empty).
// A missing slot yields an empty history. An unreadable or corrupt slot also
// loads as empty (records that decode are kept) with a warning logged; its
// raw contents are copied to a backup key before the first write replaces it.
func New(ctx context.Context, kv KV, key string) *Store {
	if key == "" {
		key = DefaultInvoicesKey
	}
	s := &Store{
		kv:  kv,
		key: key,
		log: logger.WithComponent("store"),
		now: time.Now,
	}
	s.invoices = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []models.Invoice {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		s.damaged = true
		s.log.Warn().Err(err).Str("key", s.key).Msg("Failed to read invoice history, starting empty")
		return nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		s.damaged = true
		s.log.Warn().Err(err).Str("key", s.key).Msg("Invoice history is corrupt, starting empty")
		return nil
	}

	invoices := make([]models.Invoice, 0, len(records))
	for i, raw := range records {
		var inv models.Invoice
		if err := json.Unmarshal(raw, &inv); err != nil {
			s.damaged = true
			s.log.Warn().Err(err).Int("index", i).Str("key", s.key).Msg("Skipping unreadable invoice record")
			continue
		}
		// Records written before statuses existed have no status field.
		if !inv.Status.Valid() {
			inv.Status = models.StatusPending
		}
		invoices = append(invoices, inv)
	}

	s.log.Debug().Int("count", len(invoices)).Str("key", s.key).Msg("Loaded invoice history")
	return invoices
}

// preserve copies a slot that failed to load to "<key>.corrupt-<unix>". It
// refuses when the slot still cannot be read, so nothing is overwritten blind.
func (s *Store) preserve(ctx context.Context) error {
	const op = "preserve"

	if !s.damaged {
		return nil
	}

	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		s.damaged = false
		return nil
	}
	if err != nil {
		return WrapStoreError(op, fmt.Errorf("%w: %w", ErrHistoryUnreadable, err), fmt.Sprintf("reading %s", s.key))
	}

	backup := fmt.Sprintf("%s.corrupt-%d", s.key, s.now().Unix())
	if err := s.kv.Put(ctx, backup, data); err != nil {
		return WrapStoreError(op, err, fmt.Sprintf("writing backup %s", backup))
	}
	s.damaged = false

	s.log.Warn().Str("key", s.key).Str("backup", backup).Msg("Backed up damaged invoice history before overwriting")
	return nil
}

func (s *Store) persist(ctx context.Context, invoices []models.Invoice) error {
	const op = "persist"

	if err := s.preserve(ctx); err != nil {
		return err
	}

	if invoices == nil {
		invoices = []models.Invoice{}
	}
	data, err := json.Marshal(invoices)
	if err != nil {
		return WrapStoreError(op, err, "encoding invoices")
	}
	if err := s.kv.Put(ctx, s.key, data); err != nil {
		return WrapStoreError(op, err, fmt.Sprintf("writing %s", s.key))
	}
	return nil
}

func (s *Store) List(ctx context.Context) []models.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Invoice, len(s.invoices))
	for i, inv := range s.invoices {
		out[i] = inv.Clone()
	}
	return out
}

func (s *Store) Get(ctx context.Context, id string) (models.Invoice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.invoices[i].Clone(), true
	}
	return models.Invoice{}, false
}

func (s *Store) Find(ctx context.Context, ref string) (models.Invoice, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Invoice{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, inv := range s.invoices {
		if inv.ID == ref || strings.EqualFold(inv.InvoiceNumber, ref) {
			return inv.Clone(), true
		}
	}
	return models.Invoice{}, false
}

func (s *Store) Insert(ctx context.Context, inv models.Invoice) error {
	const op = "Insert"

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Invoice, 0, len(s.invoices)+1)
	next = append(next, inv.Clone())
	next = append(next, s.invoices...)

	if err := s.persist(ctx, next); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invoices = next

	s.log.Info().
		Str("invoice_number", inv.InvoiceNumber).
		Str("id", inv.ID).
		Int("count", len(next)).
		Msg("Invoice saved")
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status models.Status) (bool, error) {
	const op = "UpdateStatus"

	if !status.Valid() {
		return false, fmt.Errorf("%s: %w: %q", op, ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}

	next := append([]models.Invoice(nil), s.invoices...)
	previous := next[i].Status
	next[i].Status = status

	if err := s.persist(ctx, next); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	s.invoices = next

	s.log.Info().
		Str("invoice_number", next[i].InvoiceNumber).
		Str("from", previous.String()).
		Str("to", status.String()).
		Msg("Invoice status changed")
	return true, nil
}

func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	const op = "Remove"

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}

	removed := s.invoices[i]
	next := make([]models.Invoice, 0, len(s.invoices)-1)
	next = append(next, s.invoices[:i]...)
	next = append(next, s.invoices[i+1:]...)

	if err := s.persist(ctx, next); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	s.invoices = next

	s.log.Info().Str("invoice_number", removed.InvoiceNumber).Msg("Invoice deleted")
	return true, nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.invoices {
		if s.invoices[i].ID == id {
			return i
		}
	}
	return -1
}
