package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"

	"toll_plaza/internal/config"
	"toll_plaza/internal/domain"
	"toll_plaza/internal/repository"
)

// WebSocketManager is implemented by the API layer; declared here to avoid
// an import cycle.
type WebSocketManager interface {
	BroadcastPlateResult(notification domain.PlateResultNotification)
}

// IoTPublisher is the part of the IoT data plane client the booth service uses.
type IoTPublisher interface {
	Publish(ctx context.Context, params *iotdataplane.PublishInput, optFns ...func(*iotdataplane.Options)) (*iotdataplane.PublishOutput, error)
}

// PlatePipeline runs one image through recognition and resolution.
type PlatePipeline interface {
	Run(ctx context.Context, image []byte) *domain.PipelineResult
}

// BoothService handles messages from booth controllers: it runs captured
// frames through the pipeline, records tolls and reports back to the booth
// and the dashboards.
type BoothService struct {
	pipeline         PlatePipeline
	tollEventRepo    repository.TollEventRepository
	iotDataClient    IoTPublisher
	webSocketManager WebSocketManager
	cfg              *config.Config
	now              func() time.Time
}

func NewBoothService(
	pipeline PlatePipeline,
	tollEventRepo repository.TollEventRepository,
	iotDataClient IoTPublisher,
	wsManager WebSocketManager,
	cfg *config.Config,
) *BoothService {
	return &BoothService{
		pipeline:         pipeline,
		tollEventRepo:    tollEventRepo,
		iotDataClient:    iotDataClient,
		webSocketManager: wsManager,
		cfg:              cfg,
		now:              time.Now,
	}
}

// HandleDeviceEvent processes one queue message. Messages that can never be
// processed are logged and acknowledged (nil); a returned error means the
// message should be redelivered.
func (s *BoothService) HandleDeviceEvent(ctx context.Context, sqsMessageBody string) error {
	var generic domain.GenericBoothEvent
	if err := json.Unmarshal([]byte(sqsMessageBody), &generic); err != nil {
		log.Printf("BoothService: dropping malformed message: %v", err)
		return nil
	}
	generic.RawPayload = json.RawMessage(sqsMessageBody)

	switch generic.MessageType {
	case domain.BoothMessageCapture:
		var event domain.BoothCaptureEvent
		if err := json.Unmarshal(generic.RawPayload, &event); err != nil {
			log.Printf("BoothService: dropping malformed capture event from booth '%s': %v", generic.BoothID, err)
			return nil
		}
		event.GenericBoothEvent = generic
		return s.HandleCaptureEvent(ctx, event)

	case domain.BoothMessageHeartbeat:
		var event domain.BoothHeartbeatEvent
		if err := json.Unmarshal(generic.RawPayload, &event); err == nil {
			log.Printf("BoothService: heartbeat from booth '%s' (firmware %s, up %ds)", generic.BoothID, event.FirmwareVersion, event.Uptime)
		}
		return nil

	default:
		log.Printf("BoothService: unhandled message type '%s' from booth '%s' (topic %s)",
			generic.MessageType, generic.BoothID, generic.ReceivedMqttTopic)
		return nil
	}
}

// HandleCaptureEvent runs the pipeline for one booth frame. The toll event
// is keyed by the capture's event ID, so a redelivered message does not
// charge twice.
func (s *BoothService) HandleCaptureEvent(ctx context.Context, event domain.BoothCaptureEvent) error {
	if event.BoothID == "" {
		log.Printf("BoothService: dropping capture event %s without booth_id", event.EventID)
		return nil
	}
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	image, err := domain.DecodeImageBase64(event.ImageBase64)
	if err != nil {
		log.Printf("BoothService: dropping capture event %s from booth '%s': %v", event.EventID, event.BoothID, err)
		return nil
	}

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if s.cfg.LPRRequestTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.LPRRequestTimeout)
	}
	result := s.pipeline.Run(runCtx, image)
	cancel()
	log.Printf("BoothService: capture %s at booth '%s' lane '%s' -> %s %s",
		event.EventID, event.BoothID, event.Lane, result.Status, result.CanonicalPlate)

	if result.Status == domain.StatusCancelled && ctx.Err() != nil {
		return ctx.Err()
	}

	if result.Status == domain.StatusVehicleFound {
		if err := s.recordToll(ctx, event, result); err != nil {
			return err
		}
	}

	notification := s.buildNotification(event, result)
	if err := s.publishResult(ctx, notification); err != nil {
		log.Printf("BoothService: %v", err)
	}
	if s.cfg.AutoOpenBarrier && result.Status == domain.StatusVehicleFound {
		if err := s.SendBarrierCommand(ctx, event.BoothID, domain.BarrierOpen, event.EventID, "toll charged"); err != nil {
			log.Printf("BoothService: auto-open for booth '%s' failed: %v", event.BoothID, err)
		}
	}
	if s.webSocketManager != nil {
		s.webSocketManager.BroadcastPlateResult(notification)
	}
	return nil
}

func (s *BoothService) recordToll(ctx context.Context, event domain.BoothCaptureEvent, result *domain.PipelineResult) error {
	vehicle := result.VehicleRecord
	toll := &domain.TollEvent{
		EventID:    event.EventID,
		BoothID:    event.BoothID,
		License:    vehicle.License,
		VehicleID:  null.IntFrom(int64(vehicle.ID)),
		TollAmount: vehicle.TollAmount,
		Confidence: null.FloatFrom(result.Confidence),
		Status:     domain.TollEventCharged,
	}
	err := s.tollEventRepo.Create(ctx, toll)
	switch {
	case err == nil:
		log.Printf("BoothService: toll %.2f charged to %s (event %s)", toll.TollAmount, toll.License, toll.EventID)
		return nil
	case errors.Is(err, repository.ErrDuplicateEntry):
		log.Printf("BoothService: toll for event %s already recorded", event.EventID)
		return nil
	default:
		return fmt.Errorf("BoothService.recordToll: %w", err)
	}
}

func (s *BoothService) buildNotification(event domain.BoothCaptureEvent, result *domain.PipelineResult) domain.PlateResultNotification {
	n := domain.PlateResultNotification{
		EventID:           event.EventID,
		BoothID:           event.BoothID,
		Lane:              event.Lane,
		RunID:             result.RunID,
		Status:            result.Status,
		CanonicalPlate:    result.CanonicalPlate,
		Confidence:        result.Confidence,
		RequiresUserInput: result.Status != domain.StatusVehicleFound,
		Message:           statusMessage(result),
		Timestamp:         s.now().UTC(),
	}
	if v := result.VehicleRecord; v != nil {
		n.VehicleType = v.VehicleType
		n.Owner = v.Owner
		n.TollAmount = v.TollAmount
	}
	return n
}

func statusMessage(result *domain.PipelineResult) string {
	switch result.Status {
	case domain.StatusVehicleFound:
		return fmt.Sprintf("Vehicle %s found, toll %.2f.", result.CanonicalPlate, result.VehicleRecord.TollAmount)
	case domain.StatusVehicleNotFound:
		return fmt.Sprintf("Plate %s is not registered. Please enter the vehicle manually.", result.CanonicalPlate)
	case domain.StatusNoDetection:
		return "No license plate detected. Please retake the photo or enter the plate manually."
	case domain.StatusTextExtractedNoPlate:
		return "Plate text could not be read completely. Please enter the plate manually."
	default:
		return fmt.Sprintf("Plate recognition failed (%s). Please enter the plate manually.", result.Status)
	}
}

func (s *BoothService) boothTopic(boothID, leaf string) string {
	return fmt.Sprintf("%s/booths/%s/%s", s.cfg.IoTTopicPrefix, boothID, leaf)
}

func (s *BoothService) publishResult(ctx context.Context, n domain.PlateResultNotification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal plate result: %w", err)
	}
	return s.publish(ctx, s.boothTopic(n.BoothID, "plate"), payload)
}

func (s *BoothService) publish(ctx context.Context, topic string, payload []byte) error {
	if s.iotDataClient == nil {
		log.Printf("BoothService: IoT endpoint not configured, not publishing to %s", topic)
		return nil
	}
	_, err := s.iotDataClient.Publish(ctx, &iotdataplane.PublishInput{
		Topic:   aws.String(topic),
		Qos:     1,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// ErrInvalidBarrierCommand reports a barrier request the caller got wrong.
var ErrInvalidBarrierCommand = errors.New("invalid barrier command")

// SendBarrierCommand publishes an open or close command to a booth barrier.
func (s *BoothService) SendBarrierCommand(ctx context.Context, boothID string, command domain.BarrierCommand, requestID, reason string) error {
	if command != domain.BarrierOpen && command != domain.BarrierClose {
		return fmt.Errorf("%w: unknown command '%s'", ErrInvalidBarrierCommand, command)
	}
	boothID = strings.TrimSpace(boothID)
	if boothID == "" {
		return fmt.Errorf("%w: booth_id is required", ErrInvalidBarrierCommand)
	}
	payload, err := json.Marshal(domain.BarrierControlCommandPayload{
		Command:   command,
		RequestID: requestID,
		Reason:    reason,
	})
	if err != nil {
		return fmt.Errorf("marshal barrier command: %w", err)
	}

	topic := s.boothTopic(boothID, "barrier")
	log.Printf("BoothService: publishing '%s' (ReqID: %s) to %s", command, requestID, topic)
	return s.publish(ctx, topic, payload)
}
