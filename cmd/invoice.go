package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"invoicer/internal/export"
	"invoicer/internal/invoice"
	"invoicer/internal/logger"
	"invoicer/internal/store"
	"invoicer/pkg/models"
)

var invoiceCmd = &cobra.Command{
	Use:     "invoice",
	Aliases: []string{"invoices"},
	Short:   "Create invoices from the draft and manage the invoice history",
	Long: `Finalized invoices are immutable: only their status (pending, paid or
cancelled) can change afterwards. Invoices are referenced by their number
(e.g. TMV-482913-007, case-insensitive) or id.`,
}

var invoiceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Finalize the draft into a new invoice",
	Long: `Validate the draft, assign an invoice number and save the invoice at the
top of the history. The draft is cleared afterwards.

The draft must have a customer name and a description on every item row.`,
	Args: cobra.NoArgs,
	RunE: runInvoiceCreate,
}

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices, newest first",
	Args:  cobra.NoArgs,
	RunE:  runInvoiceList,
}

var invoiceShowCmd = &cobra.Command{
	Use:   "show <invoice>",
	Short: "Show one invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceShow,
}

var invoiceStatusCmd = &cobra.Command{
	Use:   "status <invoice> <pending|paid|cancelled>",
	Short: "Change the status of an invoice",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := models.ParseStatus(args[1])
		if err != nil {
			return err
		}
		return setInvoiceStatus(cmd, args[0], status)
	},
}

var invoiceMarkPaidCmd = &cobra.Command{
	Use:   "mark-paid <invoice>",
	Short: "Mark an invoice as paid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setInvoiceStatus(cmd, args[0], models.StatusPaid)
	},
}

var invoiceDeleteCmd = &cobra.Command{
	Use:   "delete <invoice>",
	Short: "Delete an invoice from the history forever",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceDelete,
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(invoiceCreateCmd, invoiceListCmd, invoiceShowCmd, invoiceStatusCmd, invoiceMarkPaidCmd, invoiceDeleteCmd)

	invoiceListCmd.Flags().String("status", "", "Only list invoices with this status")
	invoiceDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

func runInvoiceCreate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")
	ctx := cmd.Context()

	s, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	d := s.drafts.Load(ctx)
	inv, err := invoice.NewFinalizer(appConfig.InvoicePrefix).Finalize(d)
	if err != nil {
		return handleInvoiceError(err, log)
	}

	if err := s.invoices.Insert(ctx, inv); err != nil {
		return handleStoreError(err)
	}
	if _, err := s.drafts.Reset(ctx); err != nil {
		// The invoice is saved; a stale draft is only an inconvenience.
		log.Warn().Err(err).Msg("Failed to clear draft after creating invoice")
	}

	if jsonOutput(cmd) {
		return printJSON(cmd.OutOrStdout(), inv)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, export.SummaryText(inv, business()))
	fmt.Fprintf(out, "\nShare it with: invoicer share whatsapp %s\n", inv.InvoiceNumber)
	return nil
}

func runInvoiceList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var filter models.Status
	if v, _ := cmd.Flags().GetString("status"); v != "" {
		status, err := models.ParseStatus(v)
		if err != nil {
			return err
		}
		filter = status
	}

	s, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	invoices := s.invoices.List(ctx)
	if filter != "" {
		kept := invoices[:0]
		for _, inv := range invoices {
			if inv.Status == filter {
				kept = append(kept, inv)
			}
		}
		invoices = kept
	}

	if jsonOutput(cmd) {
		return printJSON(cmd.OutOrStdout(), invoices)
	}
	if len(invoices) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No invoices yet. Build a draft and run \"invoicer invoice create\".")
		return nil
	}
	writeInvoiceTable(cmd.OutOrStdout(), invoices)
	return nil
}

func writeInvoiceTable(out io.Writer, invoices []models.Invoice) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NUMBER\tDATE\tCUSTOMER\tTOTAL\tSTATUS")
	for _, inv := range invoices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			inv.InvoiceNumber, export.FormatDate(inv.Date), inv.Customer.Name,
			export.FormatNaira(inv.TotalAmount), inv.Status)
	}
	tw.Flush()
}

func runInvoiceShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	inv, err := s.findInvoice(ctx, args[0])
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cmd.OutOrStdout(), inv)
	}
	fmt.Fprintln(cmd.OutOrStdout(), export.SummaryText(inv, business()))
	return nil
}

func setInvoiceStatus(cmd *cobra.Command, ref string, status models.Status) error {
	ctx := cmd.Context()

	s, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	inv, err := s.findInvoice(ctx, ref)
	if err != nil {
		return err
	}
	ok, err := s.invoices.UpdateStatus(ctx, inv.ID, status)
	if err != nil {
		return handleStoreError(err)
	}
	if !ok {
		return fmt.Errorf("invoice %s no longer exists", inv.InvoiceNumber)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", inv.InvoiceNumber, inv.Status, status)
	return nil
}

func runInvoiceDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	inv, err := s.findInvoice(ctx, args[0])
	if err != nil {
		return err
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		fmt.Fprintf(cmd.OutOrStdout(), "Delete invoice %s for %s forever? [y/N] ", inv.InvoiceNumber, inv.Customer.Name)
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Kept.")
			return nil
		}
	}

	if _, err := s.invoices.Remove(ctx, inv.ID); err != nil {
		return handleStoreError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", inv.InvoiceNumber)
	return nil
}

// handleInvoiceError lists every field that blocks finalization.
func handleInvoiceError(err error, log zerolog.Logger) error {
	log.Warn().Err(err).Msg("Draft not ready for finalization")

	if !errors.Is(err, invoice.ErrInvalidDraft) {
		return fmt.Errorf("could not create invoice: %w", err)
	}

	var b strings.Builder
	b.WriteString("the draft is not ready:")
	for _, v := range invoice.ValidationErrors(err) {
		switch {
		case v.Field == "customer.name":
			b.WriteString("\n  - customer name is required (invoicer draft set --name ...)")
		case v.Field == "items":
			b.WriteString("\n  - add at least one item (invoicer draft add-item)")
		case strings.HasPrefix(v.Field, "items["):
			b.WriteString(fmt.Sprintf("\n  - %s: description is required (invoicer draft update-item <row> description ...)", itemRowLabel(v.Field)))
		default:
			b.WriteString("\n  - " + v.Error())
		}
	}
	return errors.New(b.String())
}

// itemRowLabel turns "items[2].description" into "row 3".
func itemRowLabel(field string) string {
	var idx int
	if _, err := fmt.Sscanf(field, "items[%d]", &idx); err != nil {
		return field
	}
	return fmt.Sprintf("row %d", idx+1)
}

// handleStoreError provides user-friendly messages for storage failures.
func handleStoreError(err error) error {
	log := logger.WithComponent("store")
	log.Error().Err(err).Msg("Storage operation failed")

	switch {
	case errors.Is(err, store.ErrInvalidStatus):
		return fmt.Errorf("unknown status; use pending, paid or cancelled")
	case errors.Is(err, store.ErrHistoryUnreadable):
		return fmt.Errorf("the invoice history in %s could not be read, so it was not overwritten; nothing was changed: %w",
			appConfig.StorePath, err)
	default:
		return fmt.Errorf("could not save to %s (%s backend); nothing was changed: %w",
			appConfig.StorePath, appConfig.StoreBackend, err)
	}
}
