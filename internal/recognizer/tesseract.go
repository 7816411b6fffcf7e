//go:build tesseract

package recognizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"toll_plaza/internal/domain"
)

// Tesseract runs OCR locally through gosseract. Build with -tags tesseract;
// the ben and eng traineddata files must be installed.
type Tesseract struct {
	languages []string
	prep      ImagePrep
}

func NewTesseract(languages []string, prep ImagePrep) *Tesseract {
	if len(languages) == 0 {
		languages = []string{"ben", "eng"}
	}
	return &Tesseract{languages: languages, prep: prep}
}

func (t *Tesseract) Recognize(ctx context.Context, img []byte, hint *domain.RegionHint) (*domain.RecognizedText, error) {
	img, err := t.prep.Prepare(img, hint)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: tesseract: %w", domain.ErrCollaboratorUnavailable, err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return nil, fmt.Errorf("%w: tesseract: languages %s: %w", domain.ErrCollaboratorUnavailable, strings.Join(t.languages, "+"), err)
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return nil, fmt.Errorf("%w: tesseract: set image: %w", domain.ErrCollaboratorRejected, err)
	}
	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("%w: tesseract: %w", domain.ErrCollaboratorRejected, err)
	}

	var confidences []float64
	if boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD); err == nil {
		for _, b := range boxes {
			if strings.TrimSpace(b.Word) == "" {
				continue
			}
			confidences = append(confidences, b.Confidence/100)
		}
	}
	return domain.NewRecognizedText(text, confidences), nil
}
