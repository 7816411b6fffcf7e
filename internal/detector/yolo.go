// Package detector finds license plate regions in images.
package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"toll_plaza/internal/domain"
)

const plateClassLabel = "license_plate"

type YOLOConfig struct {
	PythonBin  string
	ScriptPath string
	ModelPath  string
	// Detections at or below MinConfidence are dropped.
	MinConfidence float64
	// TempDir defaults to os.TempDir().
	TempDir string
}

// YOLO runs the plate detection script as a subprocess, one process per image.
// The script is called as `<python> <script> <image path>` and prints a single
// JSON document on stdout.
type YOLO struct {
	cfg YOLOConfig
}

func NewYOLO(cfg YOLOConfig) *YOLO {
	if cfg.PythonBin == "" {
		cfg.PythonBin = "python3"
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	return &YOLO{cfg: cfg}
}

type yoloDetection struct {
	BBox       []float64 `json:"bbox"` // x, y, w, h
	Confidence float64   `json:"confidence"`
	Class      string    `json:"class"`
}

type yoloOutput struct {
	Detections     []yoloDetection `json:"detections"`
	ProcessingTime float64         `json:"processing_time"`
	ModelVersion   string          `json:"model_version"`
	Error          string          `json:"error"`
}

func (d *YOLO) Detect(ctx context.Context, image []byte) ([]domain.Detection, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: yolo: empty image", domain.ErrCollaboratorRejected)
	}
	if _, err := os.Stat(d.cfg.ScriptPath); err != nil {
		return nil, fmt.Errorf("%w: yolo: detection script not found at %s: %w", domain.ErrCollaboratorUnavailable, d.cfg.ScriptPath, err)
	}

	tempPath := filepath.Join(d.cfg.TempDir, fmt.Sprintf("plate_%s.jpg", uuid.NewString()))
	if err := os.WriteFile(tempPath, image, 0o600); err != nil {
		return nil, fmt.Errorf("%w: yolo: writing temp image: %w", domain.ErrCollaboratorUnavailable, err)
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("YOLO Detector: failed to remove temp file %s: %v", tempPath, err)
		}
	}()

	cmd := exec.CommandContext(ctx, d.cfg.PythonBin, d.cfg.ScriptPath, tempPath)
	cmd.Env = append(os.Environ(), "YOLO_MODEL_PATH="+d.cfg.ModelPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: yolo: %w", domain.ErrCollaboratorUnavailable, ctx.Err())
		}
		return nil, fmt.Errorf("%w: yolo: script failed: %w: %s", domain.ErrCollaboratorUnavailable, err, strings.TrimSpace(stderr.String()))
	}

	out, err := parseYOLOOutput(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	detections := out.toDetections(d.cfg.MinConfidence)
	log.Printf("YOLO Detector: %d detection(s) kept of %d (model %s, %.2fs)",
		len(detections), len(out.Detections), out.ModelVersion, out.ProcessingTime)
	return detections, nil
}

func parseYOLOOutput(raw []byte) (*yoloOutput, error) {
	var out yoloOutput
	if err := json.Unmarshal(bytes.TrimSpace(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: yolo: unreadable output %q: %w", domain.ErrCollaboratorRejected, truncate(string(raw), 200), err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: yolo: %s", domain.ErrCollaboratorRejected, out.Error)
	}
	return &out, nil
}

// toDetections converts [x, y, w, h] boxes to [x1, y1, x2, y2].
func (o *yoloOutput) toDetections(minConfidence float64) []domain.Detection {
	detections := make([]domain.Detection, 0, len(o.Detections))
	for _, yd := range o.Detections {
		if yd.Confidence <= minConfidence || len(yd.BBox) != 4 {
			continue
		}
		x, y, w, h := int(yd.BBox[0]), int(yd.BBox[1]), int(yd.BBox[2]), int(yd.BBox[3])
		label := yd.Class
		if label == "" {
			label = plateClassLabel
		}
		detections = append(detections, domain.Detection{
			BoundingBox: [4]int{x, y, x + w, y + h},
			Confidence:  yd.Confidence,
			ClassLabel:  label,
		})
	}
	return detections
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
