package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"invoicer/internal/export"
	"invoicer/internal/logger"
	"invoicer/pkg/models"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Save an invoice as PDF or PNG, or append it to a Google Sheet",
}

var exportPDFCmd = &cobra.Command{
	Use:   "pdf <invoice>",
	Short: "Write Invoice-<number>.pdf",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExportFile(cmd, args[0], export.FormatPDF)
	},
}

var exportPNGCmd = &cobra.Command{
	Use:     "png <invoice>",
	Aliases: []string{"image"},
	Short:   "Write Invoice-<number>.png",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExportFile(cmd, args[0], export.FormatPNG)
	},
}

var exportSheetCmd = &cobra.Command{
	Use:   "sheet [invoice]",
	Short: "Append invoices to the Google Sheet register",
	Long: `Append one invoice (or every invoice with --all) as rows of the worksheet
named by GOOGLE_SHEET_WORKSHEET in the spreadsheet at GOOGLE_SHEET_URL.
The worksheet and its header row are created when missing. Rows are only
appended; later status changes are not written back.

Required environment variables:
  GOOGLE_SHEET_URL - Google Sheets URL to write to
  GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS - service account
  with edit access to the sheet`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExportSheet,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportPDFCmd, exportPNGCmd, exportSheetCmd)

	exportCmd.PersistentFlags().String("dir", "", "Output directory (default: EXPORT_DIR)")
	exportSheetCmd.Flags().Bool("all", false, "Append every invoice in the history")
}

func runExportFile(cmd *cobra.Command, ref string, format export.Format) error {
	log := logger.WithComponent("export")
	ctx, cancel := createContext(0, log)
	defer cancel()

	s, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	inv, err := s.findInvoice(ctx, ref)
	if err != nil {
		return err
	}

	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = appConfig.ExportDir
	}

	path, err := export.NewExporter(business()).Export(ctx, inv, format, dir)
	if err != nil {
		return handleExportError(err, inv, log)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runExportSheet(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export")
	ctx, cancel := createContext(appConfig.ParserTimeout, log)
	defer cancel()

	all, _ := cmd.Flags().GetBool("all")
	if all == (len(args) == 1) {
		return fmt.Errorf("give an invoice number or --all")
	}
	if appConfig.GoogleSheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL is not set")
	}

	s, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	var invoices []models.Invoice
	if all {
		invoices = s.invoices.List(ctx)
		// Oldest first so the register reads chronologically.
		for i, j := 0, len(invoices)-1; i < j; i, j = i+1, j-1 {
			invoices[i], invoices[j] = invoices[j], invoices[i]
		}
	} else {
		inv, err := s.findInvoice(ctx, args[0])
		if err != nil {
			return err
		}
		invoices = []models.Invoice{inv}
	}
	if len(invoices) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No invoices to export.")
		return nil
	}

	register, err := export.NewSheetRegister(ctx, appConfig.GoogleSheetURL, appConfig.GoogleSheetWorksheet)
	if err != nil {
		return handleExportError(err, invoices[0], log)
	}
	if err := register.Append(ctx, invoices...); err != nil {
		return handleExportError(err, invoices[0], log)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Appended %d invoice(s) to %s\n", len(invoices), appConfig.GoogleSheetWorksheet)
	return nil
}

// handleExportError suggests the text share as a fallback when a file or sheet export fails.
func handleExportError(err error, inv models.Invoice, log zerolog.Logger) error {
	log.Error().Err(err).Str("invoice_number", inv.InvoiceNumber).Msg("Export failed")

	fallback := fmt.Sprintf("You can still send the invoice as text: invoicer share whatsapp %s", inv.InvoiceNumber)

	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("export canceled")
	case errors.Is(err, export.ErrUnsupportedFormat):
		return fmt.Errorf("unsupported export format; use pdf or png")
	case errors.Is(err, export.ErrMissingCredentials):
		return fmt.Errorf("Google credentials are not set. Set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS")
	case errors.Is(err, export.ErrInvalidSheetURL):
		return fmt.Errorf("GOOGLE_SHEET_URL is not a Google Sheets link (https://docs.google.com/spreadsheets/d/...)")
	case errors.Is(err, export.ErrWriteFailed):
		return fmt.Errorf("could not save the file: %w\n%s", err, fallback)
	default:
		return fmt.Errorf("export failed: %w\n%s", err, fallback)
	}
}
