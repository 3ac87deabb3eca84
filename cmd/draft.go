package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"invoicer/internal/export"
	"invoicer/internal/invoice"
	"invoicer/internal/logger"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Build the order draft that the next invoice is created from",
	Long: `The draft is the order being composed. It is saved between runs and
always has at least one item row. Items are addressed by their row number
as shown by "invoicer draft show" or by a prefix of their id.

Totals are recalculated on every change:
  subtotal = sum of quantity x unit price
  discount = subtotal x discount% / 100
  total    = subtotal - discount + delivery fee

Numbers that cannot be read (or are negative) count as 0. Amounts may be
written as 9000, 9,000, N9,000 or 15k.`,
	Example: `  invoicer draft set --name "John Okafor" --phone 08012345678
  invoicer draft update-item 1 description "Dangote 42.5R"
  invoicer draft update-item 1 qty 50
  invoicer draft update-item 1 price 9000
  invoicer draft add-item
  invoicer draft set --delivery-fee 15k --discount 2
  invoicer draft show`,
}

var draftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the draft and its running totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDraft(cmd, false, func(d *invoice.Draft) error { return nil })
	},
}

var draftAddItemCmd = &cobra.Command{
	Use:   "add-item",
	Short: "Append a blank item row (quantity 1, price 0)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDraft(cmd, true, func(d *invoice.Draft) error {
			d.AddItem()
			return nil
		})
	},
}

var draftUpdateItemCmd = &cobra.Command{
	Use:   "update-item <row|id> <field> <value>",
	Short: "Set the description, quantity or unit price of an item",
	Long: `Set one field of an item row. Fields: description (desc), quantity (qty),
unitPrice (price).`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, ok := invoice.ParseItemField(args[1])
		if !ok {
			return fmt.Errorf("unknown item field %q (want description, quantity or price)", args[1])
		}
		return withDraft(cmd, true, func(d *invoice.Draft) error {
			id, err := resolveItem(d, args[0])
			if err != nil {
				return err
			}
			d.UpdateItem(id, field, args[2])
			return nil
		})
	},
}

var draftRemoveItemCmd = &cobra.Command{
	Use:   "remove-item <row|id>",
	Short: "Remove an item row (the last row cannot be removed)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDraft(cmd, true, func(d *invoice.Draft) error {
			id, err := resolveItem(d, args[0])
			if err != nil {
				return err
			}
			if !d.RemoveItem(id) {
				fmt.Fprintln(cmd.ErrOrStderr(), "The draft needs at least one item; row kept.")
			}
			return nil
		})
	},
}

var draftSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set customer details, delivery fee, discount or notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		changed := false
		for _, name := range []string{"name", "phone", "address", "delivery-fee", "discount", "notes"} {
			changed = changed || flags.Changed(name)
		}
		if !changed {
			return fmt.Errorf("nothing to set; see --help for the available flags")
		}
		return withDraft(cmd, true, func(d *invoice.Draft) error {
			customer := d.Customer
			if flags.Changed("name") {
				customer.Name, _ = flags.GetString("name")
			}
			if flags.Changed("phone") {
				customer.Phone, _ = flags.GetString("phone")
			}
			if flags.Changed("address") {
				customer.Address, _ = flags.GetString("address")
			}
			d.SetCustomer(customer)

			if flags.Changed("delivery-fee") {
				v, _ := flags.GetString("delivery-fee")
				d.SetDeliveryFee(v)
			}
			if flags.Changed("discount") {
				v, _ := flags.GetString("discount")
				d.SetDiscountPercent(v)
			}
			if flags.Changed("notes") {
				v, _ := flags.GetString("notes")
				d.SetNotes(v)
			}
			return nil
		})
	},
}

var draftResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the draft and start over",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDraft(cmd, true, func(d *invoice.Draft) error {
			d.Reset()
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(draftCmd)
	draftCmd.AddCommand(draftShowCmd, draftAddItemCmd, draftUpdateItemCmd, draftRemoveItemCmd, draftSetCmd, draftResetCmd)

	draftSetCmd.Flags().String("name", "", "Customer name")
	draftSetCmd.Flags().String("phone", "", "Customer phone number")
	draftSetCmd.Flags().String("address", "", "Delivery address")
	draftSetCmd.Flags().String("delivery-fee", "", "Delivery fee, e.g. 15000 or 15k")
	draftSetCmd.Flags().String("discount", "", "Discount percentage, e.g. 2.5")
	draftSetCmd.Flags().String("notes", "", "Notes printed on the invoice")
}

// withDraft loads the saved draft, applies fn, saves it when save is set
// and prints the result.
func withDraft(cmd *cobra.Command, save bool, fn func(*invoice.Draft) error) error {
	ctx := cmd.Context()
	s, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	d := s.drafts.Load(ctx)
	if err := fn(d); err != nil {
		return err
	}
	if save {
		if err := s.drafts.Save(ctx, d); err != nil {
			return handleStoreError(err)
		}
		log := logger.WithComponent("draft")
		log.Debug().
			Int("items", len(d.Items)).
			Str("total", d.Totals().Total.String()).
			Msg("Draft saved")
	}

	if jsonOutput(cmd) {
		return printJSON(cmd.OutOrStdout(), draftView(d))
	}
	writeDraft(cmd.OutOrStdout(), d)
	return nil
}

// resolveItem accepts a 1-based row number or an id prefix.
func resolveItem(d *invoice.Draft, ref string) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(d.Items) {
			return "", fmt.Errorf("no item row %d (the draft has %d)", n, len(d.Items))
		}
		return d.Items[n-1].ID, nil
	}

	match := ""
	for _, item := range d.Items {
		if strings.HasPrefix(item.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("item id prefix %q is ambiguous", ref)
			}
			match = item.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no item with id %q", ref)
	}
	return match, nil
}

type draftJSON struct {
	*invoice.Draft
	Totals invoice.Totals `json:"totals"`
}

func draftView(d *invoice.Draft) draftJSON {
	return draftJSON{Draft: d, Totals: d.Totals()}
}

func writeDraft(out io.Writer, d *invoice.Draft) {
	fmt.Fprintf(out, "Customer: %s\n", orDash(d.Customer.Name))
	fmt.Fprintf(out, "Phone:    %s\n", orDash(d.Customer.Phone))
	fmt.Fprintf(out, "Address:  %s\n\n", orDash(d.Customer.Address))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tID\tQTY\tUNIT PRICE\tAMOUNT\t\tDESCRIPTION")
	for i, item := range d.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t\t%s\n",
			i+1, shortID(item.ID), item.Quantity,
			export.FormatNaira(item.UnitPrice), export.FormatNaira(item.LineTotal()),
			orDash(item.Description))
	}
	tw.Flush()

	totals := d.Totals()
	fmt.Fprintf(out, "\nSubtotal: %s\n", export.FormatNaira(totals.Subtotal))
	if !totals.DiscountAmount.IsZero() {
		fmt.Fprintf(out, "Discount: -%s (%s%%)\n", export.FormatNaira(totals.DiscountAmount), d.DiscountPercent.String())
	}
	fmt.Fprintf(out, "Delivery: %s\n", export.FormatNaira(d.DeliveryFee))
	fmt.Fprintf(out, "Total:    %s\n", export.FormatNaira(totals.Total))
	if d.Notes != "" {
		fmt.Fprintf(out, "Notes:    %s\n", d.Notes)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
