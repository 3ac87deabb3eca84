package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"invoicer/internal/invoice"
	"invoicer/internal/logger"
	"invoicer/internal/ocr"
	"invoicer/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse [text]",
	Short: "Fill the draft from a message, voice note or photo of an order",
	Long: `Send free-form order input to the OpenAI API and merge what it finds into
the saved draft.

Input can be text (arguments, or "-" to read stdin), a voice note (--audio)
or a photo of a written order (--image, read with Google Cloud Vision).

Merge rules:
  - delivery fee and discount are replaced whenever the order states them, even as 0
  - customer name, phone, address and notes are replaced only by non-empty values
  - a non-empty item list replaces all item rows
  - anything the order does not mention is left as it was
If nothing usable is found, or the request fails, the draft is unchanged.

Required environment variables:
  OPENAI_API_KEY - OpenAI API key
For --image additionally:
  GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS`,
	Example: `  invoicer parse "50 bags of Dangote to John 08012345678, delivery 15k"
  pbpaste | invoicer parse -
  invoicer parse --audio voice-note.ogg
  invoicer parse --image order.jpg`,
	Args: cobra.ArbitraryArgs,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().String("audio", "", "Voice note file to transcribe")
	parseCmd.Flags().String("mime", "", "Mime type of --audio (default: from the file extension)")
	parseCmd.Flags().String("image", "", "Photo of a written order")
}

func runParse(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("parse")

	audioPath, _ := cmd.Flags().GetString("audio")
	mimeType, _ := cmd.Flags().GetString("mime")
	imagePath, _ := cmd.Flags().GetString("image")

	sources := 0
	for _, set := range []bool{len(args) > 0, audioPath != "", imagePath != ""} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf("give exactly one of: text arguments, --audio or --image")
	}

	ctx, cancel := createContext(appConfig.ParserTimeout, log)
	defer cancel()

	p, err := parser.NewOpenAIParser(parser.Config{
		APIKey:             appConfig.OpenAIAPIKey,
		BaseURL:            appConfig.OpenAIBaseURL,
		Model:              appConfig.OpenAIModel,
		TranscriptionModel: appConfig.OpenAITranscriptionModel,
		BusinessName:       appConfig.BusinessName,
		MaxRetries:         appConfig.ParserMaxRetries,
		Temperature:        0.1,
		Timeout:            appConfig.ParserTimeout,
	})
	if err != nil {
		return handleParseError(err, log)
	}
	guarded := parser.NewGuard(p)

	var result *invoice.ParsedResult
	switch {
	case audioPath != "":
		result, err = parseAudio(ctx, guarded, audioPath, mimeType)
	case imagePath != "":
		result, err = parseImage(ctx, guarded, imagePath, log)
	default:
		text, readErr := inputText(cmd.InOrStdin(), args)
		if readErr != nil {
			return readErr
		}
		result, err = guarded.ParseText(ctx, text)
	}
	if err != nil {
		return handleParseError(err, log)
	}

	s, err := openStores(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	d := s.drafts.Load(cmd.Context())
	if !d.ApplyParsedResult(result) {
		return handleParseError(invoice.ErrNoUsableData, log)
	}
	if err := s.drafts.Save(cmd.Context(), d); err != nil {
		return handleStoreError(err)
	}

	log.Info().
		Int("items", len(d.Items)).
		Str("total", d.Totals().Total.String()).
		Msg("Parsed order merged into draft")

	if jsonOutput(cmd) {
		return printJSON(cmd.OutOrStdout(), draftView(d))
	}
	writeDraft(cmd.OutOrStdout(), d)
	return nil
}

func inputText(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

func parseAudio(ctx context.Context, p invoice.Parser, path, mimeType string) (*invoice.ParsedResult, error) {
	if mimeType == "" {
		mimeType = parser.AudioMimeType(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()
	return p.ParseAudio(ctx, f, mimeType)
}

func parseImage(ctx context.Context, p invoice.Parser, path string, log zerolog.Logger) (*invoice.ParsedResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer f.Close()

	extractor, err := ocr.NewVisionExtractor(ctx)
	if err != nil {
		return nil, err
	}
	defer extractor.Close()

	text, err := extractor.ExtractText(ctx, f)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("text", text).Msg("Order text read from image")
	return p.ParseText(ctx, text)
}

// handleParseError provides user-friendly messages for parser failures.
// The draft is never modified when this is reached.
func handleParseError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Parse failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("the parser took too long; the draft is unchanged. Try again or raise PARSER_TIMEOUT")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("parse canceled; the draft is unchanged")
	case errors.Is(err, parser.ErrMissingCredentials):
		return fmt.Errorf("OPENAI_API_KEY is not set. Add it to your environment or .env file")
	case errors.Is(err, parser.ErrEmptyInput):
		return fmt.Errorf("nothing to parse. Pass the order text, --audio or --image")
	case errors.Is(err, parser.ErrParseInFlight):
		return fmt.Errorf("another parse is still running; wait for it to finish")
	case errors.Is(err, parser.ErrUnsupportedAudio):
		return fmt.Errorf("unsupported audio format. Use webm, ogg, mp3, m4a, wav or flac, or pass --mime")
	case errors.Is(err, parser.ErrEmptyResponse), errors.Is(err, parser.ErrMalformedResponse):
		return fmt.Errorf("the parser returned an unusable answer; the draft is unchanged. Try rephrasing the order")
	case errors.Is(err, invoice.ErrNoUsableData):
		return fmt.Errorf("no order details found in the input; the draft is unchanged")
	case errors.Is(err, ocr.ErrMissingCredentials):
		return fmt.Errorf("Google Cloud credentials are not set. Set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS to read photos")
	case errors.Is(err, ocr.ErrUnsupportedImage), errors.Is(err, ocr.ErrImageTooLarge):
		return fmt.Errorf("the photo could not be used (JPEG, PNG, GIF or WebP up to 20MB): %w", err)
	case errors.Is(err, ocr.ErrNoText):
		return fmt.Errorf("no writing found in the photo; the draft is unchanged")
	default:
		return fmt.Errorf("parse failed; the draft is unchanged: %w", err)
	}
}
