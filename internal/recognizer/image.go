// Package recognizer extracts text from plate images using an OCR engine.
//
// Three engines are available: Google Cloud Vision, Amazon Rekognition
// DetectText and a local Tesseract build (behind the "tesseract" build tag).
// All of them report failures wrapped in domain.ErrCollaboratorUnavailable or
// domain.ErrCollaboratorRejected.
package recognizer

import (
	"bytes"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	"toll_plaza/internal/domain"
)

// minCropHeight is the height small plate crops are upscaled to before OCR.
const minCropHeight = 64

// ImagePrep prepares an image before it is sent to an engine.
type ImagePrep struct {
	// Enhance converts to grayscale and raises contrast.
	Enhance bool
	// Contrast change passed to bild, in [-1, 1]. Zero means 0.3.
	Contrast float64
}

// Prepare returns img unchanged when there is nothing to do. Otherwise it
// decodes, crops to hint (clamped to the image), optionally enhances and
// re-encodes as PNG.
func (p ImagePrep) Prepare(img []byte, hint *domain.RegionHint) ([]byte, error) {
	if hint == nil && !p.Enhance {
		return img, nil
	}
	src, err := imaging.Decode(bytes.NewReader(img), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %w", domain.ErrCollaboratorRejected, err)
	}

	if hint != nil {
		if src, err = cropRegion(src, hint); err != nil {
			return nil, err
		}
	}
	if p.Enhance {
		src = p.enhance(src)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, src, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding prepared image: %w", err)
	}
	return buf.Bytes(), nil
}

func cropRegion(src image.Image, hint *domain.RegionHint) (image.Image, error) {
	rect := image.Rect(hint.X1, hint.Y1, hint.X2, hint.Y2).Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("%w: region %v lies outside the image %v", domain.ErrCollaboratorRejected,
			image.Rect(hint.X1, hint.Y1, hint.X2, hint.Y2), src.Bounds())
	}
	cropped := imaging.Crop(src, rect)
	if cropped.Bounds().Dy() < minCropHeight {
		cropped = imaging.Resize(cropped, 0, minCropHeight, imaging.Lanczos)
	}
	return cropped, nil
}

func (p ImagePrep) enhance(src image.Image) image.Image {
	contrast := p.Contrast
	if contrast == 0 {
		contrast = 0.3
	}
	return adjust.Contrast(effect.Grayscale(src), contrast)
}
