package ocr

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/status"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestCheckImage(t *testing.T) {
	mimeType, err := checkImage(pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)

	_, err = checkImage([]byte("%PDF-1.7 not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = checkImage(nil)
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = checkImage(make([]byte, MaxImageSizeBytes+1))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestProcessImageResponse(t *testing.T) {
	resp := &visionpb.AnnotateImageResponse{
		FullTextAnnotation: &visionpb.TextAnnotation{
			Text: "20 bags Dangote\nMr Okafor 0803 555 0199\n",
			Pages: []*visionpb.Page{{
				Property: &visionpb.TextAnnotation_TextProperty{
					DetectedLanguages: []*visionpb.TextAnnotation_DetectedLanguage{
						{LanguageCode: "en"}, {LanguageCode: "yo"},
					},
				},
				Blocks: []*visionpb.Block{{Confidence: 0.9}, {Confidence: 0.7}},
			}},
		},
	}

	result, err := processImageResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "20 bags Dangote\nMr Okafor 0803 555 0199", result.Text)
	assert.InDelta(t, 0.8, result.Confidence, 0.0001)
	assert.Equal(t, []string{"en", "yo"}, result.LanguageCodes)
}

func TestProcessImageResponseFailures(t *testing.T) {
	_, err := processImageResponse(&visionpb.AnnotateImageResponse{})
	assert.ErrorIs(t, err, ErrNoText)

	_, err = processImageResponse(&visionpb.AnnotateImageResponse{
		Error: &status.Status{Code: 3, Message: "Bad image data"},
	})
	assert.ErrorIs(t, err, ErrOCRFailed)
}

func TestExtractRejectsBeforeCallingVision(t *testing.T) {
	// A nil client is never reached for invalid input.
	v := NewVisionExtractorWithClient(nil)

	_, err := v.ExtractText(context.Background(), bytes.NewReader([]byte("plain text")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	var ocrErr *Error
	require.ErrorAs(t, err, &ocrErr)
	assert.Equal(t, "ExtractTextWithMetadata", ocrErr.Op)
}
