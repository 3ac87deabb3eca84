package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"invoicer/internal/export"
	"invoicer/internal/store"
	"invoicer/pkg/models"
)

// stores bundles the open storage backend with the repositories on top of it.
type stores struct {
	kv       store.KV
	invoices *store.Store
	drafts   *store.DraftStore
}

func openStores(ctx context.Context) (*stores, error) {
	kv, err := store.Open(ctx, appConfig.StoreBackend, appConfig.StorePath)
	if err != nil {
		return nil, handleStoreError(err)
	}
	return &stores{
		kv:       kv,
		invoices: store.New(ctx, kv, store.DefaultInvoicesKey),
		drafts:   store.NewDraftStore(kv, store.DefaultDraftKey),
	}, nil
}

func (s *stores) Close() {
	_ = s.kv.Close()
}

// findInvoice resolves an invoice id or number from the command line.
func (s *stores) findInvoice(ctx context.Context, ref string) (models.Invoice, error) {
	inv, ok := s.invoices.Find(ctx, ref)
	if !ok {
		return models.Invoice{}, fmt.Errorf("no invoice matches %q; run \"invoicer invoice list\" to see invoice numbers", ref)
	}
	return inv, nil
}

// createContext creates a context with timeout and signal handling
func createContext(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	var ctx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func business() export.Business {
	return export.Business{
		Name:    appConfig.BusinessName,
		Tagline: appConfig.BusinessTagline,
		Address: appConfig.BusinessAddress,
		Phone:   appConfig.BusinessPhone,
	}
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
