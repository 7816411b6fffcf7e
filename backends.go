package main

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"

	"toll_plaza/internal/config"
	"toll_plaza/internal/detector"
	"toll_plaza/internal/plate"
	"toll_plaza/internal/recognizer"
	"toll_plaza/internal/service"
)

func newDetector(cfg *config.Config, awsCfg aws.Config) (service.Detector, error) {
	switch cfg.DetectorBackend {
	case "", "yolo":
		log.Printf("Detector: YOLO subprocess (%s %s, model %s)", cfg.YOLOPythonBin, cfg.YOLOScriptPath, cfg.YOLOModelPath)
		return detector.NewYOLO(detector.YOLOConfig{
			PythonBin:     cfg.YOLOPythonBin,
			ScriptPath:    cfg.YOLOScriptPath,
			ModelPath:     cfg.YOLOModelPath,
			MinConfidence: cfg.DetectorMinConfidence,
		}), nil
	case "rekognition":
		log.Println("Detector: Amazon Rekognition DetectLabels")
		return detector.NewRekognition(rekognition.NewFromConfig(awsCfg), cfg.DetectorMinConfidence), nil
	default:
		return nil, fmt.Errorf("unknown DETECTOR_BACKEND '%s'", cfg.DetectorBackend)
	}
}

// newRecognizer also picks the confidence aggregation that matches the
// engine's token list.
func newRecognizer(ctx context.Context, cfg *config.Config, awsCfg aws.Config) (service.Recognizer, service.ConfidenceAggregator, error) {
	prep := recognizer.ImagePrep{Enhance: cfg.EnhanceImage}
	switch cfg.RecognizerBackend {
	case "", "vision":
		log.Printf("Recognizer: Google Cloud Vision (language hints %v)", cfg.VisionLanguageHints)
		v, err := recognizer.NewVision(ctx, recognizer.VisionConfig{
			APIKey:        cfg.GoogleVisionAPIKey,
			LanguageHints: cfg.VisionLanguageHints,
			Prep:          prep,
		})
		if err != nil {
			return nil, nil, err
		}
		return v, service.VisionConfidence{}, nil
	case "rekognition":
		log.Println("Recognizer: Amazon Rekognition DetectText")
		return recognizer.NewRekognition(rekognition.NewFromConfig(awsCfg), prep), service.TokenMeanConfidence{}, nil
	case "tesseract":
		log.Printf("Recognizer: Tesseract (languages %v)", cfg.TesseractLanguages)
		return recognizer.NewTesseract(cfg.TesseractLanguages, prep), service.TokenMeanConfidence{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown RECOGNIZER_BACKEND '%s'", cfg.RecognizerBackend)
	}
}

func newParser(cfg *config.Config) (*plate.Parser, error) {
	if cfg.GazetteerFile == "" {
		return plate.NewParser(nil), nil
	}
	g, err := plate.LoadGazetteer(cfg.GazetteerFile)
	if err != nil {
		return nil, err
	}
	log.Printf("Parser: gazetteer loaded from %s", cfg.GazetteerFile)
	return plate.NewParser(g), nil
}
