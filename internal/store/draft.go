package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"invoicer/internal/invoice"
	"invoicer/internal/logger"
)

// DraftStore keeps the working draft between CLI invocations.
type DraftStore struct {
	mu  sync.Mutex
	kv  KV
	key string
	log zerolog.Logger
}

func NewDraftStore(kv KV, key string) *DraftStore {
	if key == "" {
		key = DefaultDraftKey
	}
	return &DraftStore{kv: kv, key: key, log: logger.WithComponent("draft-store")}
}

// Load returns the saved draft, or a fresh one when nothing usable is stored.
func (d *DraftStore) Load(ctx context.Context) *invoice.Draft {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := d.kv.Get(ctx, d.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			d.log.Warn().Err(err).Msg("Failed to read saved draft, starting fresh")
		}
		return invoice.NewDraft()
	}

	var draft invoice.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		d.log.Warn().Err(err).Msg("Saved draft is corrupt, starting fresh")
		return invoice.NewDraft()
	}
	draft.Normalize()
	return &draft
}

func (d *DraftStore) Save(ctx context.Context, draft *invoice.Draft) error {
	const op = "DraftStore.Save"

	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := json.Marshal(draft)
	if err != nil {
		return WrapStoreError(op, err, "encoding draft")
	}
	if err := d.kv.Put(ctx, d.key, data); err != nil {
		return WrapStoreError(op, err, "writing "+d.key)
	}
	return nil
}

// Reset replaces the saved draft with an empty one and returns it.
func (d *DraftStore) Reset(ctx context.Context) (*invoice.Draft, error) {
	draft := invoice.NewDraft()
	if err := d.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}
