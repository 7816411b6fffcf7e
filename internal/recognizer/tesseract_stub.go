//go:build !tesseract

package recognizer

import (
	"context"
	"fmt"

	"toll_plaza/internal/domain"
)

// Tesseract is unavailable in builds without the tesseract tag.
type Tesseract struct{}

func NewTesseract(_ []string, _ ImagePrep) *Tesseract {
	return &Tesseract{}
}

func (t *Tesseract) Recognize(_ context.Context, _ []byte, _ *domain.RegionHint) (*domain.RecognizedText, error) {
	return nil, fmt.Errorf("%w: tesseract support not compiled in (build with -tags tesseract)", domain.ErrCollaboratorUnavailable)
}
