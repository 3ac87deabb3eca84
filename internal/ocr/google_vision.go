package ocr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"invoicer/internal/logger"
)

// MaxImageSizeBytes is the largest photo accepted for inline annotation (20MB).
const MaxImageSizeBytes = 20 * 1024 * 1024

var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// VisionExtractor implements TextExtractor using Google Cloud Vision API.
type VisionExtractor struct {
	client *vision.ImageAnnotatorClient
	log    zerolog.Logger
}

var _ TextExtractor = (*VisionExtractor)(nil)

// NewVisionExtractor creates an extractor with credentials from environment.
// It expects either GOOGLE_CREDENTIALS JSON or a GOOGLE_APPLICATION_CREDENTIALS path.
func NewVisionExtractor(ctx context.Context) (*VisionExtractor, error) {
	const op = "NewVisionExtractor"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		// Try default credentials as fallback
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return NewVisionExtractorWithClient(client), nil
}

// NewVisionExtractorWithClient creates an extractor with an explicit client.
func NewVisionExtractorWithClient(client *vision.ImageAnnotatorClient) *VisionExtractor {
	return &VisionExtractor{
		client: client,
		log:    logger.WithComponent("ocr"),
	}
}

// ExtractText returns the text found in the image.
func (v *VisionExtractor) ExtractText(ctx context.Context, image io.Reader) (string, error) {
	result, err := v.ExtractTextWithMetadata(ctx, image)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// ExtractTextWithMetadata runs document text detection on the image.
func (v *VisionExtractor) ExtractTextWithMetadata(ctx context.Context, image io.Reader) (*Result, error) {
	const op = "ExtractTextWithMetadata"
	startTime := time.Now()

	data, err := io.ReadAll(image)
	if err != nil {
		return nil, WrapError(op, err, "failed to read image data")
	}
	mimeType, err := checkImage(data)
	if err != nil {
		return nil, WrapError(op, err, fmt.Sprintf("%d bytes", len(data)))
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: data},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				ImageContext: &visionpb.ImageContext{
					LanguageHints: []string{"en"},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, WrapError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return nil, WrapError(op, ErrOCRFailed, "no response from Vision API")
	}

	result, err := processImageResponse(resp.Responses[0])
	if err != nil {
		return nil, WrapError(op, err, "failed to process Vision API response")
	}

	result.MimeType = mimeType
	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)

	v.log.Info().
		Int("text_length", len(result.Text)).
		Float32("confidence", result.Confidence).
		Dur("duration", result.ProcessingDuration).
		Msg("Extracted text from image")

	return result, nil
}

// checkImage validates size and sniffs the image type.
func checkImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrUnsupportedImage
	}
	if len(data) > MaxImageSizeBytes {
		return "", ErrImageTooLarge
	}
	mimeType := http.DetectContentType(data)
	if !supportedImageTypes[mimeType] {
		return "", ErrUnsupportedImage
	}
	return mimeType, nil
}

// processImageResponse extracts text with metadata from one image annotation.
func processImageResponse(resp *visionpb.AnnotateImageResponse) (*Result, error) {
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: Vision API error: %s", ErrOCRFailed, resp.Error.Message)
	}

	annotation := resp.FullTextAnnotation
	if annotation == nil || strings.TrimSpace(annotation.Text) == "" {
		return nil, ErrNoText
	}

	var confidenceSum float32
	var confidenceCount int
	languageSet := make(map[string]bool)

	for _, page := range annotation.Pages {
		for _, block := range page.Blocks {
			if block.Confidence > 0 {
				confidenceSum += block.Confidence
				confidenceCount++
			}
		}
		if page.Property != nil {
			for _, lang := range page.Property.DetectedLanguages {
				if lang.LanguageCode != "" {
					languageSet[lang.LanguageCode] = true
				}
			}
		}
	}

	var avgConfidence float32
	if confidenceCount > 0 {
		avgConfidence = confidenceSum / float32(confidenceCount)
	}

	languages := make([]string, 0, len(languageSet))
	for lang := range languageSet {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	return &Result{
		Text:          strings.TrimSpace(annotation.Text),
		Confidence:    avgConfidence,
		LanguageCodes: languages,
	}, nil
}

// Close closes the underlying Vision client.
func (v *VisionExtractor) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
