package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	DBDriver   string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	AWSRegion          string
	SQSCaptureQueueURL string
	IoTMQTTEndpoint    string
	IoTTopicPrefix     string

	DetectorBackend       string // "yolo" or "rekognition"
	YOLOPythonBin         string
	YOLOScriptPath        string
	YOLOModelPath         string
	DetectorMinConfidence float64

	RecognizerBackend   string // "vision", "rekognition" or "tesseract"
	GoogleVisionAPIKey  string
	VisionLanguageHints []string
	TesseractLanguages  []string
	// EnhanceImage applies grayscale and contrast before OCR.
	EnhanceImage bool

	CropToDetection        bool
	LPRRequestTimeout      time.Duration
	GazetteerFile          string
	TollEventRetentionDays int
	AutoOpenBarrier        bool
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	minConfidence, err := strconv.ParseFloat(getEnv("DETECTOR_MIN_CONFIDENCE", "0.5"), 64)
	if err != nil {
		log.Printf("Warning: invalid DETECTOR_MIN_CONFIDENCE, using 0.5: %v", err)
		minConfidence = 0.5
	}
	timeoutSeconds, err := strconv.Atoi(getEnv("LPR_REQUEST_TIMEOUT_SECONDS", "30"))
	if err != nil || timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	retentionDays, _ := strconv.Atoi(getEnv("TOLL_EVENT_RETENTION_DAYS", "90"))

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DBDriver:   getEnv("DB_DRIVER", "pgx"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "toll"),
		DBPassword: getEnv("DB_PASSWORD", "toll"),
		DBName:     getEnv("DB_NAME", "toll_plaza"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		AWSRegion:          getEnv("AWS_REGION", "ap-south-1"),
		SQSCaptureQueueURL: getEnv("SQS_CAPTURE_QUEUE_URL", ""),
		IoTMQTTEndpoint:    getEnv("IOT_MQTT_ENDPOINT", ""),
		IoTTopicPrefix:     strings.Trim(getEnv("IOT_TOPIC_PREFIX", "tollplaza"), "/"),

		DetectorBackend:       strings.ToLower(getEnv("DETECTOR_BACKEND", "yolo")),
		YOLOPythonBin:         getEnv("YOLO_PYTHON_BIN", "python3"),
		YOLOScriptPath:        getEnv("YOLO_SCRIPT_PATH", "scripts/detect_plate.py"),
		YOLOModelPath:         getEnv("YOLO_MODEL_PATH", "models/plate.pt"),
		DetectorMinConfidence: minConfidence,

		RecognizerBackend:   strings.ToLower(getEnv("RECOGNIZER_BACKEND", "vision")),
		GoogleVisionAPIKey:  getEnv("GOOGLE_CLOUD_API_KEY", ""),
		VisionLanguageHints: splitList(getEnv("VISION_LANGUAGE_HINTS", "bn,en")),
		TesseractLanguages:  splitList(getEnv("TESSERACT_LANGUAGES", "ben,eng")),
		EnhanceImage:        getBool("RECOGNIZER_ENHANCE_IMAGE", false),

		CropToDetection:        getBool("LPR_CROP_TO_DETECTION", false),
		LPRRequestTimeout:      time.Duration(timeoutSeconds) * time.Second,
		GazetteerFile:          getEnv("LPR_GAZETTEER_FILE", ""),
		TollEventRetentionDays: retentionDays,
		AutoOpenBarrier:        getBool("AUTO_OPEN_BARRIER", false),
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable '%s' not set, using default: '%s'", key, fallback)
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		log.Printf("Warning: invalid boolean for %s, using %t", key, fallback)
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
