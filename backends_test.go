package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"

	"toll_plaza/internal/config"
	"toll_plaza/internal/detector"
	"toll_plaza/internal/recognizer"
	"toll_plaza/internal/service"
)

func TestNewDetector(t *testing.T) {
	awsCfg := aws.Config{Region: "ap-south-1"}

	tests := []struct {
		backend string
		want    any
		wantErr bool
	}{
		{backend: "yolo", want: &detector.YOLO{}},
		{backend: "", want: &detector.YOLO{}},
		{backend: "rekognition", want: &detector.Rekognition{}},
		{backend: "opencv", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := &config.Config{DetectorBackend: tt.backend, DetectorMinConfidence: 0.5}
			d, err := newDetector(cfg, awsCfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for backend %q", tt.backend)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch tt.want.(type) {
			case *detector.YOLO:
				if _, ok := d.(*detector.YOLO); !ok {
					t.Errorf("got %T, want *detector.YOLO", d)
				}
			case *detector.Rekognition:
				if _, ok := d.(*detector.Rekognition); !ok {
					t.Errorf("got %T, want *detector.Rekognition", d)
				}
			}
		})
	}
}

func TestNewRecognizerPicksAggregator(t *testing.T) {
	awsCfg := aws.Config{Region: "ap-south-1"}

	tests := []struct {
		backend  string
		wantAggr service.ConfidenceAggregator
	}{
		{backend: "vision", wantAggr: service.VisionConfidence{}},
		{backend: "rekognition", wantAggr: service.TokenMeanConfidence{}},
		{backend: "tesseract", wantAggr: service.TokenMeanConfidence{}},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := &config.Config{RecognizerBackend: tt.backend, TesseractLanguages: []string{"ben"}}
			rec, aggr, err := newRecognizer(context.Background(), cfg, awsCfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec == nil {
				t.Fatal("recognizer is nil")
			}
			if aggr != tt.wantAggr {
				t.Errorf("aggregator = %T, want %T", aggr, tt.wantAggr)
			}
		})
	}

	t.Run("vision without key", func(t *testing.T) {
		rec, _, err := newRecognizer(context.Background(), &config.Config{RecognizerBackend: "vision"}, awsCfg)
		if err != nil {
			t.Fatalf("missing key must not fail startup: %v", err)
		}
		if _, ok := rec.(*recognizer.Vision); !ok {
			t.Errorf("got %T, want *recognizer.Vision", rec)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, _, err := newRecognizer(context.Background(), &config.Config{RecognizerBackend: "easyocr"}, awsCfg); err == nil {
			t.Error("expected error for unknown backend")
		}
	})
}

func TestNewParser(t *testing.T) {
	p, err := newParser(&config.Config{})
	if err != nil || p == nil {
		t.Fatalf("default parser: %v", err)
	}

	if _, err := newParser(&config.Config{GazetteerFile: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Error("expected error for missing gazetteer file")
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("areas: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := newParser(&config.Config{GazetteerFile: path}); err == nil {
		t.Error("expected error for malformed gazetteer file")
	}
}
