// Package parser turns free-form order text and voice notes into a partial
// invoice draft using the OpenAI API.
//
// Text goes through a chat completion that must answer with a JSON object
// shaped like invoice.ParsedResult. Audio is transcribed with Whisper first
// and the transcript is parsed as text. The result is only a proposal: the
// caller merges it into the draft with Draft.ApplyParsedResult.
//
// Required Environment Variables:
//   - OPENAI_API_KEY: API key for chat completion and transcription
//
// Optional:
//   - OPENAI_MODEL (default gpt-4o-mini)
//   - OPENAI_TRANSCRIPTION_MODEL (default whisper-1)
//   - OPENAI_BASE_URL: alternative endpoint, e.g. a proxy
package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"invoicer/internal/invoice"
	"invoicer/internal/logger"
)

// Config configures the OpenAI parser
type Config struct {
	APIKey             string
	BaseURL            string        // Empty for api.openai.com
	Model              string        // Chat model, e.g. gpt-4o-mini
	TranscriptionModel string        // e.g. whisper-1
	BusinessName       string        // Named in the system prompt
	MaxRetries         int           // Attempts per chat completion
	Temperature        float32       // Chat temperature
	Timeout            time.Duration // Per request, 0 for none
}

// OpenAIParser implements invoice.Parser with chat completion and Whisper.
type OpenAIParser struct {
	client *openai.Client
	config Config
	log    zerolog.Logger
}

var _ invoice.Parser = (*OpenAIParser)(nil)

// NewOpenAIParser builds a client from cfg. It fails with
// ErrMissingCredentials when no API key is set.
func NewOpenAIParser(cfg Config) (*OpenAIParser, error) {
	const op = "NewOpenAIParser"

	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, NewParseError(op, ErrMissingCredentials, "")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return NewOpenAIParserWithClient(openai.NewClientWithConfig(clientConfig), cfg), nil
}

// NewOpenAIParserWithClient creates a parser with an explicit client
func NewOpenAIParserWithClient(client *openai.Client, cfg Config) *OpenAIParser {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = openai.Whisper1
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.BusinessName == "" {
		cfg.BusinessName = "Threm Multilinks Venture"
	}
	return &OpenAIParser{
		client: client,
		config: cfg,
		log:    logger.WithComponent("parser"),
	}
}

func (p *OpenAIParser) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.config.Timeout > 0 {
		return context.WithTimeout(ctx, p.config.Timeout)
	}
	return context.WithCancel(ctx)
}

// ParseText asks the chat model to structure text. Transport and decode
// failures are retried up to MaxRetries times.
func (p *OpenAIParser) ParseText(ctx context.Context, text string) (*invoice.ParsedResult, error) {
	const op = "ParseText"

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewParseError(op, ErrEmptyInput, "")
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	p.log.Debug().
		Int("input_length", len(text)).
		Str("model", p.config.Model).
		Msg("Sending parse request")

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= p.config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, NewParseError(op, err, "request canceled")
		}

		resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       p.config.Model,
			Temperature: p.config.Temperature,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: p.systemPrompt(),
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: userPrompt(text),
				},
			},
		})
		if err != nil {
			lastErr = err
			p.log.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_retries", p.config.MaxRetries).
				Msg("Parse request failed, retrying")
			continue
		}

		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			lastErr = ErrEmptyResponse
			p.log.Warn().Int("attempt", attempt).Msg("Empty parse response, retrying")
			continue
		}

		content := resp.Choices[0].Message.Content
		p.log.Debug().Str("response", content).Msg("Received parse response")

		result, err := invoice.DecodeParsedResult([]byte(content))
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrMalformedResponse, err)
			p.log.Warn().
				Err(err).
				Int("attempt", attempt).
				Msg("Failed to decode parse response, retrying")
			continue
		}

		p.log.Info().
			Int("items", len(result.Items)).
			Bool("customer", result.Customer != nil).
			Dur("duration", time.Since(start)).
			Int("attempt", attempt).
			Msg("Parsed order text")
		return result, nil
	}

	return nil, NewParseError(op, lastErr, fmt.Sprintf("all %d attempts failed", p.config.MaxRetries))
}

// ParseAudio transcribes a voice note and parses the transcript.
func (p *OpenAIParser) ParseAudio(ctx context.Context, audio io.Reader, mimeType string) (*invoice.ParsedResult, error) {
	const op = "ParseAudio"

	if audio == nil {
		return nil, NewParseError(op, ErrEmptyInput, "no audio")
	}
	ext, err := AudioExtension(mimeType)
	if err != nil {
		return nil, NewParseError(op, err, mimeType)
	}

	transcript, err := p.Transcribe(ctx, audio, "voice-note."+ext)
	if err != nil {
		return nil, err
	}
	return p.ParseText(ctx, transcript)
}

// Transcribe converts speech to text. fileName only tells the API the container format.
func (p *OpenAIParser) Transcribe(ctx context.Context, audio io.Reader, fileName string) (string, error) {
	const op = "Transcribe"

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.config.TranscriptionModel,
		FilePath: fileName,
		Reader:   audio,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", NewParseError(op, err, "request canceled")
		}
		return "", NewParseError(op, err, "transcription request failed")
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", NewParseError(op, ErrEmptyResponse, "no speech recognized")
	}

	p.log.Info().
		Int("transcript_length", len(text)).
		Dur("duration", time.Since(start)).
		Msg("Transcribed voice note")
	return text, nil
}

var audioExtensions = map[string]string{
	"audio/webm":   "webm",
	"video/webm":   "webm",
	"audio/ogg":    "ogg",
	"audio/opus":   "ogg",
	"audio/mpeg":   "mp3",
	"audio/mp3":    "mp3",
	"audio/mp4":    "m4a",
	"audio/m4a":    "m4a",
	"audio/x-m4a":  "m4a",
	"audio/aac":    "m4a",
	"audio/wav":    "wav",
	"audio/x-wav":  "wav",
	"audio/wave":   "wav",
	"audio/flac":   "flac",
	"audio/x-flac": "flac",
}

// AudioExtension maps a mime type such as "audio/webm;codecs=opus" to the
// file extension the transcription API expects.
func AudioExtension(mimeType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return "", ErrUnsupportedAudio
	}
	ext, ok := audioExtensions[mediaType]
	if !ok {
		return "", ErrUnsupportedAudio
	}
	return ext, nil
}

// AudioMimeType guesses a mime type from a file extension for the CLI's --audio flag.
func AudioMimeType(fileName string) string {
	return canonicalMime[strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))]
}

var canonicalMime = map[string]string{
	"webm": "audio/webm",
	"ogg":  "audio/ogg",
	"oga":  "audio/ogg",
	"opus": "audio/ogg",
	"mp3":  "audio/mpeg",
	"m4a":  "audio/mp4",
	"wav":  "audio/wav",
	"flac": "audio/flac",
}

func (p *OpenAIParser) systemPrompt() string {
	return fmt.Sprintf(`You are an assistant for %s, a cement seller in Nigeria. Extract customer details, items (cement brand and grade, quantity in bags, price per bag), delivery fee, discount and notes from natural language orders.

If a price is not mentioned use the usual price: 9,000 for Dangote, 8,500 for BUA. Amounts are in Naira; "15k" means 15000.

Answer with a single JSON object and nothing else:
{
  "customer": {"name": string, "phone": string, "address": string},
  "items": [{"description": string, "quantity": number, "unitPrice": number}],
  "deliveryFee": number,
  "discountPercent": number,
  "notes": string
}
Leave out any field the order does not mention. Never invent a customer name or phone number.`, p.config.BusinessName)
}

func userPrompt(text string) string {
	return fmt.Sprintf("Parse the following text into structured invoice data for a cement business: %q", text)
}
