package domain

import (
	"strings"
	"time"
)

// Detection is a plate region reported by the detector.
// BoundingBox is [x1, y1, x2, y2] in pixels.
type Detection struct {
	BoundingBox [4]int  `json:"bounding_box"`
	Confidence  float64 `json:"confidence"`
	ClassLabel  string  `json:"class_label"`
}

// RegionHint asks a recognizer to look only inside a rectangle.
type RegionHint struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func RegionHintFromDetection(d Detection) *RegionHint {
	return &RegionHint{X1: d.BoundingBox[0], Y1: d.BoundingBox[1], X2: d.BoundingBox[2], Y2: d.BoundingBox[3]}
}

type RecognizedText struct {
	FullText         string    `json:"full_text"`
	Lines            []string  `json:"lines"`
	TokenConfidences []float64 `json:"token_confidences,omitempty"`
}

// DefaultConfidence stands in for a confidence the recognizer did not report.
const DefaultConfidence = 0.8

// NewRecognizedText derives Lines from fullText.
func NewRecognizedText(fullText string, tokenConfidences []float64) *RecognizedText {
	return &RecognizedText{
		FullText:         fullText,
		Lines:            SplitLines(fullText),
		TokenConfidences: tokenConfidences,
	}
}

func (t *RecognizedText) Empty() bool {
	return t == nil || strings.TrimSpace(t.FullText) == ""
}

// SplitLines splits on line breaks, trims each line and drops empty ones.
func SplitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// PlateComponents: every field is optional, an empty string means "not found".
// AreaName already carries the metro qualifier ("ঢাকা-মেট্রো").
type PlateComponents struct {
	AreaName     string `json:"area_name,omitempty"`
	MetroTag     string `json:"metro_tag,omitempty"`
	VehicleClass string `json:"vehicle_class,omitempty"`
	Serial       string `json:"serial,omitempty"`
}

type PipelineStatus string

const (
	StatusNoDetection          PipelineStatus = "no_detection"
	StatusDetectionFailed      PipelineStatus = "detection_failed"
	StatusRecognitionFailed    PipelineStatus = "recognition_failed"
	StatusTextExtractedNoPlate PipelineStatus = "text_extracted_no_plate"
	StatusVehicleFound         PipelineStatus = "vehicle_found"
	StatusVehicleNotFound      PipelineStatus = "vehicle_not_found"
	StatusLookupFailed         PipelineStatus = "lookup_failed"
	StatusCancelled            PipelineStatus = "cancelled"
)

// PipelineResult is the outcome of one pipeline run.
// It is built by a single run and not modified once Status is set.
type PipelineResult struct {
	RunID          string          `json:"run_id"`
	Status         PipelineStatus  `json:"status"`
	Detections     []Detection     `json:"detections"`
	Primary        *Detection      `json:"primary_detection,omitempty"`
	RecognizedText *RecognizedText `json:"recognized_text,omitempty"`
	Components     PlateComponents `json:"components"`
	CanonicalPlate string          `json:"canonical_plate"`
	Partial        bool            `json:"partial"`
	Confidence     float64         `json:"confidence"`
	VehicleRecord  *VehicleRecord  `json:"vehicle_record,omitempty"`
	Trace          []string        `json:"trace"`
	Error          string          `json:"error,omitempty"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`

	Err error `json:"-"`
}

// LPRRequestDTO is what the dashboard sends to process a captured image.
type LPRRequestDTO struct {
	// Base64, optionally with a data URL prefix.
	ImageBase64 string `json:"image_base64" binding:"required"`
}

// ManualLookupRequestDTO is the fallback the dashboard offers after vehicle_not_found.
type ManualLookupRequestDTO struct {
	Plate string `json:"plate" binding:"required"`
	// BoothID, when set, records a manual toll event for the resolved vehicle.
	BoothID string `json:"booth_id,omitempty"`
}

type ManualLookupResponseDTO struct {
	Plate         string         `json:"plate"`
	TriedKeys     []string       `json:"tried_keys"`
	VehicleRecord *VehicleRecord `json:"vehicle_record,omitempty"`
	TollEvent     *TollEvent     `json:"toll_event,omitempty"`
	ErrorMessage  string         `json:"error_message,omitempty"`
}
