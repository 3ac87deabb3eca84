package export

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"invoicer/internal/logger"
	"invoicer/pkg/models"
)

var registerHeaders = []interface{}{
	"Invoice", "Date", "Customer", "Phone", "Address", "Items",
	"Subtotal", "Discount", "Delivery", "Total", "Status", "Exported",
}

const (
	registerColumns  = "A:L"
	registerColCount = 12
)

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// SheetRegister appends invoices to a worksheet acting as a sales register.
// It only ever appends; later status changes are not synced back.
type SheetRegister struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	clock         func() time.Time
	log           zerolog.Logger
}

// NewSheetRegister connects to the spreadsheet at sheetURL using the service
// account from GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS.
func NewSheetRegister(ctx context.Context, sheetURL, sheetName string) (*SheetRegister, error) {
	const op = "NewSheetRegister"

	spreadsheetID, err := extractSpreadsheetID(sheetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var creds []byte
	if credsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credsFile != "" {
		creds, err = os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read credentials file: %w", op, err)
		}
	} else if credsJSON := os.Getenv("GOOGLE_CREDENTIALS"); credsJSON != "" {
		creds = []byte(credsJSON)
	} else {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingCredentials)
	}

	config, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse credentials: %w", op, err)
	}

	service, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create sheets service: %w", op, err)
	}

	return NewSheetRegisterWithService(service, spreadsheetID, sheetName), nil
}

// NewSheetRegisterWithService creates a register over an existing Sheets client.
func NewSheetRegisterWithService(service *sheets.Service, spreadsheetID, sheetName string) *SheetRegister {
	if sheetName == "" {
		sheetName = "Invoices"
	}
	return &SheetRegister{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		clock:         time.Now,
		log:           logger.WithComponent("sheets"),
	}
}

func extractSpreadsheetID(url string) (string, error) {
	matches := spreadsheetIDPattern.FindStringSubmatch(url)
	if len(matches) < 2 {
		return "", ErrInvalidSheetURL
	}
	return matches[1], nil
}

// Append writes one row per invoice, creating the worksheet and its header
// row first when they are missing.
func (s *SheetRegister) Append(ctx context.Context, invoices ...models.Invoice) error {
	const op = "Append"

	if len(invoices) == 0 {
		return nil
	}

	s.log.Info().
		Str("sheet", s.sheetName).
		Int("rows", len(invoices)).
		Msg("Writing invoices to Google Sheet")

	if err := s.ensureSheetWithHeaders(ctx); err != nil {
		return fmt.Errorf("%s: failed to ensure sheet exists: %w", op, err)
	}

	exportedAt := s.clock().In(Lagos).Format("02/01/2006 15:04")
	values := make([][]interface{}, 0, len(invoices))
	for _, inv := range invoices {
		values = append(values, registerRow(inv, exportedAt))
	}

	_, err := s.service.Spreadsheets.Values.Append(
		s.spreadsheetID,
		s.sheetName+"!"+registerColumns,
		&sheets.ValueRange{Values: values},
	).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to append values to sheet: %w", op, err)
	}

	s.log.Info().
		Int("rows_written", len(values)).
		Msg("Successfully wrote invoices to Google Sheet")
	return nil
}

// registerRow converts an invoice to one sheet row (columns A to L).
func registerRow(inv models.Invoice, exportedAt string) []interface{} {
	items := make([]string, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, fmt.Sprintf("%d x %s", item.Quantity, item.Description))
	}
	return []interface{}{
		inv.InvoiceNumber,                   // A: Invoice
		FormatDate(inv.Date),                // B: Date
		inv.Customer.Name,                   // C: Customer
		inv.Customer.Phone,                  // D: Phone
		inv.Customer.Address,                // E: Address
		strings.Join(items, "; "),           // F: Items
		inv.Subtotal.InexactFloat64(),       // G: Subtotal
		inv.DiscountAmount.InexactFloat64(), // H: Discount
		inv.DeliveryFee.InexactFloat64(),    // I: Delivery
		inv.TotalAmount.InexactFloat64(),    // J: Total
		StatusLabel(inv.Status),             // K: Status
		exportedAt,                          // L: Exported
	}
}

func (s *SheetRegister) ensureSheetWithHeaders(ctx context.Context) error {
	const op = "ensureSheetWithHeaders"

	spreadsheet, err := s.service.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to get spreadsheet: %w", op, err)
	}

	var sheetExists bool
	var sheetID int64
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == s.sheetName {
			sheetExists = true
			sheetID = sheet.Properties.SheetId
			break
		}
	}

	if !sheetExists {
		s.log.Info().Str("sheet", s.sheetName).Msg("Creating new sheet")

		resp, err := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{
				{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: s.sheetName}}},
			},
		}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("%s: failed to create sheet: %w", op, err)
		}
		if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil {
			sheetID = resp.Replies[0].AddSheet.Properties.SheetId
		}
	}

	headerRange := s.sheetName + "!A1:L1"
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to get headers: %w", op, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	s.log.Info().Str("sheet", s.sheetName).Msg("Adding headers to sheet")
	_, err = s.service.Spreadsheets.Values.Update(
		s.spreadsheetID,
		headerRange,
		&sheets.ValueRange{Values: [][]interface{}{registerHeaders}},
	).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to add headers: %w", op, err)
	}

	if err := s.formatHeaders(ctx, sheetID); err != nil {
		s.log.Warn().Err(err).Msg("Failed to format headers, continuing anyway")
	}
	return nil
}

// formatHeaders makes the header row bold and sizes the columns.
func (s *SheetRegister) formatHeaders(ctx context.Context, sheetID int64) error {
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   registerColCount,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat:      &sheets.TextFormat{Bold: true},
						BackgroundColor: &sheets.Color{Red: 0.9, Green: 0.9, Blue: 0.9},
					},
				},
				Fields: "userEnteredFormat(textFormat,backgroundColor)",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   registerColCount,
				},
			},
		},
	}

	_, err := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	return err
}
