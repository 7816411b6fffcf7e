package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsgo_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"toll_plaza/internal/api"
	"toll_plaza/internal/api/handler"
	"toll_plaza/internal/config"
	"toll_plaza/internal/iot"
	"toll_plaza/internal/repository/postgresql"
	"toll_plaza/internal/service"
)

func main() {
	// 1. Configuration
	cfg := config.Load()
	log.Println("Configuration loaded.")

	// 2. Database
	db, err := postgresql.NewDB(cfg)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Printf("Connected to database (driver %s).", cfg.DBDriver)

	// 3. AWS SDK config
	awsSDKCfg, err := awsgo_config.LoadDefaultConfig(context.TODO(), awsgo_config.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Fatalf("Could not load AWS SDK config: %v", err)
	}
	log.Println("AWS SDK config loaded for region:", cfg.AWSRegion)

	// 4. Pipeline collaborators
	plateDetector, err := newDetector(cfg, awsSDKCfg)
	if err != nil {
		log.Fatalf("Detector: %v", err)
	}
	plateRecognizer, aggregator, err := newRecognizer(context.Background(), cfg, awsSDKCfg)
	if err != nil {
		log.Fatalf("Recognizer: %v", err)
	}
	parser, err := newParser(cfg)
	if err != nil {
		log.Fatalf("Parser: %v", err)
	}

	// 5. Repositories
	vehicleRepo := postgresql.NewPgVehicleRepository(db)
	tollEventRepo := postgresql.NewPgTollEventRepository(db)

	// 6. WebSocket manager
	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()
	webSocketManager := handler.NewWebSocketManager()
	go webSocketManager.Start(rootCtx)
	log.Println("WebSocket Manager started.")

	// 7. Services
	lprService := service.NewLPRService(plateDetector, plateRecognizer, vehicleRepo, parser, aggregator, cfg.CropToDetection)
	vehicleService := service.NewVehicleService(vehicleRepo, tollEventRepo, parser)

	var publisher service.IoTPublisher
	if cfg.IoTMQTTEndpoint == "" {
		log.Println("WARNING: IOT_MQTT_ENDPOINT not set. Results will not be published to booths.")
	} else {
		publisher = newIoTDataPlaneClient(awsSDKCfg, cfg.IoTMQTTEndpoint)
	}
	boothService := service.NewBoothService(lprService, tollEventRepo, publisher, webSocketManager, cfg)

	// 8. SQS consumer
	var wg sync.WaitGroup
	if cfg.SQSCaptureQueueURL == "" {
		log.Println("WARNING: SQS_CAPTURE_QUEUE_URL not set. SQS Consumer will not run.")
	} else {
		sqsConsumer := iot.NewSQSConsumer(sqs.NewFromConfig(awsSDKCfg), cfg, boothService)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sqsConsumer.Start(rootCtx)
			log.Println("SQS Consumer stopped.")
		}()
	}

	// 9. Toll event retention
	if cfg.TollEventRetentionDays > 0 {
		go startTollEventCleanupJob(rootCtx, vehicleService, cfg.TollEventRetentionDays)
	}

	// 10. HTTP server
	router := api.SetupRouter(lprService, vehicleService, boothService, webSocketManager, db, cfg.LPRRequestTimeout)
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancelRoot()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shut down: %v", err)
	}

	if cfg.SQSCaptureQueueURL != "" {
		log.Println("Waiting for SQS consumer to stop (up to 5 seconds)...")
		c := make(chan struct{})
		go func() {
			defer close(c)
			wg.Wait()
		}()
		select {
		case <-c:
			log.Println("SQS consumer stopped.")
		case <-time.After(5 * time.Second):
			log.Println("SQS consumer did not stop in time.")
		}
	}

	log.Println("Server stopped.")
}

func newIoTDataPlaneClient(awsCfg aws.Config, endpoint string) *iotdataplane.Client {
	return iotdataplane.NewFromConfig(awsCfg, func(o *iotdataplane.Options) {
		if !strings.HasPrefix(endpoint, "https://") && !strings.HasPrefix(endpoint, "http://") {
			endpoint = "https://" + endpoint
		}
		o.BaseEndpoint = aws.String(endpoint)
	})
}

func startTollEventCleanupJob(ctx context.Context, vs *service.VehicleService, retentionDays int) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			count, err := vs.PruneTollEvents(jobCtx, retentionDays)
			cancel()
			if err != nil {
				log.Printf("Error pruning toll events: %v", err)
			} else if count > 0 {
				log.Printf("Pruned %d toll event(s) older than %d days", count, retentionDays)
			}
		}
	}
}
