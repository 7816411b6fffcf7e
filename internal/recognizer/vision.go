package recognizer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"toll_plaza/internal/domain"
)

const visionMaxResults = 50

var placeholderKeys = []string{
	"your_google_cloud_api_key_here",
	"your_actual_api_key_here",
}

type VisionConfig struct {
	APIKey        string
	LanguageHints []string
	// Endpoint overrides the API base URL, for tests.
	Endpoint string
	Prep     ImagePrep
}

// Vision recognizes text with the Google Cloud Vision images:annotate call,
// requesting both TEXT_DETECTION and DOCUMENT_TEXT_DETECTION.
type Vision struct {
	svc       *vision.Service
	keyErr    error
	languages []string
	prep      ImagePrep
}

// NewVision builds the client. A missing or placeholder key is not an error
// here: every Recognize call reports the recognizer as unavailable instead.
func NewVision(ctx context.Context, cfg VisionConfig) (*Vision, error) {
	v := &Vision{languages: cfg.LanguageHints, prep: cfg.Prep}
	if v.keyErr = checkAPIKey(cfg.APIKey); v.keyErr != nil {
		log.Printf("Vision Recognizer: %v", v.keyErr)
		return v, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating vision client: %w", err)
	}
	v.svc = svc
	return v, nil
}

func checkAPIKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: GOOGLE_CLOUD_API_KEY is not set", domain.ErrCollaboratorUnavailable)
	}
	for _, p := range placeholderKeys {
		if key == p {
			return fmt.Errorf("%w: GOOGLE_CLOUD_API_KEY is set to a placeholder value", domain.ErrCollaboratorUnavailable)
		}
	}
	if strings.HasPrefix(key, "AIzaSyC-your-actual-api-key-here") {
		return fmt.Errorf("%w: GOOGLE_CLOUD_API_KEY is set to a placeholder value", domain.ErrCollaboratorUnavailable)
	}
	return nil
}

func (v *Vision) Recognize(ctx context.Context, img []byte, hint *domain.RegionHint) (*domain.RecognizedText, error) {
	if v.keyErr != nil {
		return nil, v.keyErr
	}
	img, err := v.prep.Prepare(img, hint)
	if err != nil {
		return nil, err
	}

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{Content: base64.StdEncoding.EncodeToString(img)},
			Features: []*vision.Feature{
				{Type: "TEXT_DETECTION", MaxResults: visionMaxResults},
				{Type: "DOCUMENT_TEXT_DETECTION", MaxResults: visionMaxResults},
			},
			ImageContext: &vision.ImageContext{LanguageHints: v.languages},
		}},
	}

	resp, err := v.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, classifyVisionError(err)
	}
	if len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return nil, fmt.Errorf("%w: vision: empty response", domain.ErrCollaboratorRejected)
	}

	r := resp.Responses[0]
	if r.Error != nil {
		return nil, fmt.Errorf("%w: vision response error: %s", domain.ErrCollaboratorRejected, r.Error.Message)
	}
	return textFromVision(r), nil
}

// textFromVision prefers the document text. The first text annotation is
// the whole-image block, the rest are individual tokens; all are kept in
// TokenConfidences and VisionConfidence skips the first. Vision leaves the
// field out for tokens it did not score; those count as DefaultConfidence.
func textFromVision(r *vision.AnnotateImageResponse) *domain.RecognizedText {
	full := ""
	if r.FullTextAnnotation != nil {
		full = r.FullTextAnnotation.Text
	}
	if full == "" && len(r.TextAnnotations) > 0 {
		full = r.TextAnnotations[0].Description
	}

	confidences := make([]float64, 0, len(r.TextAnnotations))
	for _, a := range r.TextAnnotations {
		c := a.Confidence
		if c == 0 {
			c = a.Score
		}
		if c == 0 {
			c = domain.DefaultConfidence
		}
		confidences = append(confidences, c)
	}
	return domain.NewRecognizedText(full, confidences)
}

func classifyVisionError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusBadRequest && strings.Contains(gerr.Message, "API key not valid") {
			return fmt.Errorf("%w: invalid Google Cloud API key, check the key and that the Vision API is enabled", domain.ErrCollaboratorRejected)
		}
		if gerr.Code >= 400 && gerr.Code < 500 {
			return fmt.Errorf("%w: vision API error %d: %s", domain.ErrCollaboratorRejected, gerr.Code, gerr.Message)
		}
		return fmt.Errorf("%w: vision API error %d: %s", domain.ErrCollaboratorUnavailable, gerr.Code, gerr.Message)
	}
	return fmt.Errorf("%w: vision: %w", domain.ErrCollaboratorUnavailable, err)
}
