package recognizer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"toll_plaza/internal/awserr"
	"toll_plaza/internal/domain"
)

// TextAPI is the part of the Rekognition client the recognizer uses.
type TextAPI interface {
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

// Rekognition recognizes text with Amazon Rekognition DetectText. A region
// hint becomes a region of interest instead of a crop.
type Rekognition struct {
	client TextAPI
	prep   ImagePrep
}

func NewRekognition(client TextAPI, prep ImagePrep) *Rekognition {
	return &Rekognition{client: client, prep: prep}
}

func (r *Rekognition) Recognize(ctx context.Context, img []byte, hint *domain.RegionHint) (*domain.RecognizedText, error) {
	if r.client == nil {
		return nil, fmt.Errorf("%w: rekognition client not configured", domain.ErrCollaboratorUnavailable)
	}

	input := &rekognition.DetectTextInput{}
	if hint != nil {
		roi, err := regionOfInterest(img, hint)
		if err != nil {
			return nil, err
		}
		input.Filters = &types.DetectTextFilters{RegionsOfInterest: []types.RegionOfInterest{roi}}
	}
	img, err := r.prep.Prepare(img, nil)
	if err != nil {
		return nil, err
	}
	input.Image = &types.Image{Bytes: img}

	log.Println("Rekognition Recognizer: calling DetectText...")
	out, err := r.client.DetectText(ctx, input)
	if err != nil {
		return nil, awserr.Classify("rekognition.DetectText", err)
	}
	log.Printf("Rekognition Recognizer: %d text block(s) returned", len(out.TextDetections))
	return textFromRekognition(out.TextDetections), nil
}

// textFromRekognition builds the full text from LINE detections, in reading
// order, and takes token confidences from WORD detections.
func textFromRekognition(detections []types.TextDetection) *domain.RecognizedText {
	var lines []string
	var confidences []float64
	for _, d := range detections {
		switch d.Type {
		case types.TextTypesLine:
			lines = append(lines, aws.ToString(d.DetectedText))
		case types.TextTypesWord:
			confidences = append(confidences, float64(aws.ToFloat32(d.Confidence))/100)
		}
	}
	return domain.NewRecognizedText(strings.Join(lines, "\n"), confidences)
}

func regionOfInterest(img []byte, hint *domain.RegionHint) (types.RegionOfInterest, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return types.RegionOfInterest{}, fmt.Errorf("%w: cannot read image size: %w", domain.ErrCollaboratorRejected, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return types.RegionOfInterest{}, fmt.Errorf("%w: image has no pixels", domain.ErrCollaboratorRejected)
	}
	w, h := float32(cfg.Width), float32(cfg.Height)
	return types.RegionOfInterest{BoundingBox: &types.BoundingBox{
		Left:   aws.Float32(float32(hint.X1) / w),
		Top:    aws.Float32(float32(hint.Y1) / h),
		Width:  aws.Float32(float32(hint.X2-hint.X1) / w),
		Height: aws.Float32(float32(hint.Y2-hint.Y1) / h),
	}}, nil
}
