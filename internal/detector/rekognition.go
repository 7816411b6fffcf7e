package detector

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

// LabelsAPI is the part of the Rekognition client the detector uses.
type LabelsAPI interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// Rekognition detects plates with Amazon Rekognition DetectLabels, keeping
// instances of the "License Plate" label.
type Rekognition struct {
	client        LabelsAPI
	minConfidence float64
}

func NewRekognition(client LabelsAPI, minConfidence float64) *Rekognition {
	return &Rekognition{client: client, minConfidence: minConfidence}
}

const plateLabelName = "License Plate"

func (d *Rekognition) Detect(ctx context.Context, img []byte) ([]domain.Detection, error) {
	if d.client == nil {
		return nil, fmt.Errorf("%w: rekognition client not configured", domain.ErrCollaboratorUnavailable)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("%w: rekognition detector: cannot read image size: %w", domain.ErrCollaboratorRejected, err)
	}

	out, err := d.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: img},
		MaxLabels:     aws.Int32(50),
		MinConfidence: aws.Float32(float32(d.minConfidence * 100)),
	})
	if err != nil {
		return nil, awserr.Classify("rekognition.DetectLabels", err)
	}

	var detections []domain.Detection
	for _, label := range out.Labels {
		if !strings.EqualFold(aws.ToString(label.Name), plateLabelName) {
			continue
		}
		for _, inst := range label.Instances {
			if inst.BoundingBox == nil {
				continue
			}
			confidence := float64(aws.ToFloat32(inst.Confidence)) / 100
			if confidence <= d.minConfidence {
				continue
			}
			detections = append(detections, domain.Detection{
				BoundingBox: pixelBox(inst.BoundingBox, cfg.Width, cfg.Height),
				Confidence:  confidence,
				ClassLabel:  plateClassLabel,
			})
		}
	}
	log.Printf("Rekognition Detector: %d plate instance(s) found", len(detections))
	return detections, nil
}

// pixelBox converts a ratio bounding box into pixel corners.
func pixelBox(b *types.BoundingBox, width, height int) [4]int {
	left := float64(aws.ToFloat32(b.Left)) * float64(width)
	top := float64(aws.ToFloat32(b.Top)) * float64(height)
	w := float64(aws.ToFloat32(b.Width)) * float64(width)
	h := float64(aws.ToFloat32(b.Height)) * float64(height)
	return [4]int{int(left), int(top), int(left + w), int(top + h)}
}
