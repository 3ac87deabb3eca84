package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"invoicer/internal/export"
	"invoicer/internal/logger"
	"invoicer/pkg/models"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Print a chat link that sends the invoice summary",
	Long: `Print a WhatsApp or Telegram deep link with the invoice summary prefilled.
Open it on a phone or in a browser to send the message.`,
}

var shareWhatsAppCmd = &cobra.Command{
	Use:     "whatsapp <invoice>",
	Aliases: []string{"wa"},
	Short:   "Link that opens a WhatsApp chat with the customer",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShare(cmd, args[0], "whatsapp", export.WhatsAppLink)
	},
}

var shareTelegramCmd = &cobra.Command{
	Use:     "telegram <invoice>",
	Aliases: []string{"tg"},
	Short:   "Link that shares the invoice on Telegram",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShare(cmd, args[0], "telegram", export.TelegramLink)
	},
}

var shareTextCmd = &cobra.Command{
	Use:   "text <invoice>",
	Short: "Print the plain summary text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShare(cmd, args[0], "text", func(inv models.Invoice, b export.Business) string {
			return export.SummaryText(inv, b)
		})
	},
}

func init() {
	rootCmd.AddCommand(shareCmd)
	shareCmd.AddCommand(shareWhatsAppCmd, shareTelegramCmd, shareTextCmd)
}

func runShare(cmd *cobra.Command, ref, channel string, render func(models.Invoice, export.Business) string) error {
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

	if channel == "whatsapp" && export.PhoneDigits(inv.Customer.Phone) == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "No phone number on this invoice; WhatsApp will ask you to pick a contact.")
	}

	log := logger.WithInvoice("share", inv.InvoiceNumber)
	log.Debug().Str("channel", channel).Msg("Share link generated")
	fmt.Fprintln(cmd.OutOrStdout(), render(inv, business()))
	return nil
}
