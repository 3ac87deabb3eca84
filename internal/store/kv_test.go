package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/internal/invoice"
	"invoicer/pkg/models"
)

func TestBackends(t *testing.T) {
	backends := []string{BackendFile, BackendSQLite}

	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			kv, err := Open(ctx, backend, t.TempDir())
			require.NoError(t, err)
			t.Cleanup(func() { kv.Close() })

			_, err = kv.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, kv.Put(ctx, "slot", []byte(`[1]`)))
			require.NoError(t, kv.Put(ctx, "slot", []byte(`[1,2]`)))

			got, err := kv.Get(ctx, "slot")
			require.NoError(t, err)
			assert.Equal(t, `[1,2]`, string(got))
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), "postgres", t.TempDir())
	assert.Error(t, err)
}

func TestFileKVLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	require.NoError(t, err)

	require.NoError(t, kv.Put(context.Background(), DefaultInvoicesKey, []byte(`[]`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, DefaultInvoicesKey+".json", entries[0].Name())
}

func TestFileKVRejectsPathKeys(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)

	err = kv.Put(context.Background(), filepath.Join("..", "escape"), []byte(`x`))
	assert.Error(t, err)
}

func TestDraftStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)
	ds := NewDraftStore(kv, "")

	draft := ds.Load(ctx)
	require.Len(t, draft.Items, 1)

	draft.SetCustomer(models.Customer{Name: "Emeka"})
	draft.UpdateItem(draft.Items[0].ID, invoice.FieldQuantity, "20")
	draft.SetDeliveryFee("5000")
	require.NoError(t, ds.Save(ctx, draft))

	loaded := ds.Load(ctx)
	assert.Equal(t, "Emeka", loaded.Customer.Name)
	assert.Equal(t, 20, loaded.Items[0].Quantity)
	assert.Equal(t, draft.Items[0].ID, loaded.Items[0].ID)
	assert.Equal(t, "5000", loaded.DeliveryFee.String())

	fresh, err := ds.Reset(ctx)
	require.NoError(t, err)
	assert.Empty(t, fresh.Customer.Name)
	assert.Empty(t, ds.Load(ctx).Customer.Name)
}

func TestDraftStoreCorrupt(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.data[DefaultDraftKey] = []byte(`{"items": "nope"`)

	draft := NewDraftStore(kv, "").Load(ctx)
	assert.Len(t, draft.Items, 1)

	kv.data[DefaultDraftKey] = []byte(`{"customer": {"name": "Ada"}, "items": []}`)
	draft = NewDraftStore(kv, "").Load(ctx)
	assert.Equal(t, "Ada", draft.Customer.Name)
	assert.Len(t, draft.Items, 1, "a stored draft with no rows gets its blank row back")
}
