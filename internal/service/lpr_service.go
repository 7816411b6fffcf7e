package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"toll_plaza/internal/domain"
	"toll_plaza/internal/plate"
	"toll_plaza/internal/repository"
)

// Detector finds plate regions in an image.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]domain.Detection, error)
}

// Recognizer extracts text from an image, optionally limited to hint.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, hint *domain.RegionHint) (*domain.RecognizedText, error)
}

// VehicleRegistry looks vehicles up by canonical plate. Absence is
// reported as repository.ErrNotFound.
type VehicleRegistry interface {
	FindByLicense(ctx context.Context, license string) (*domain.VehicleRecord, error)
}

type LPRService struct {
	detector        Detector
	recognizer      Recognizer
	registry        VehicleRegistry
	parser          *plate.Parser
	confidence      ConfidenceAggregator
	cropToDetection bool
	now             func() time.Time
}

func NewLPRService(detector Detector, recognizer Recognizer, registry VehicleRegistry,
	parser *plate.Parser, confidence ConfidenceAggregator, cropToDetection bool) *LPRService {
	if parser == nil {
		parser = plate.NewParser(nil)
	}
	if confidence == nil {
		confidence = VisionConfidence{}
	}
	return &LPRService{
		detector:        detector,
		recognizer:      recognizer,
		registry:        registry,
		parser:          parser,
		confidence:      confidence,
		cropToDetection: cropToDetection,
		now:             time.Now,
	}
}

// pipelineRun holds the state of one Run. Nothing in it outlives the call.
type pipelineRun struct {
	image   []byte
	result  *domain.PipelineResult
	primary domain.Detection
}

func (r *pipelineRun) tracef(format string, args ...any) {
	r.result.Trace = append(r.result.Trace, fmt.Sprintf(format, args...))
}

// finish sets the terminal status. Only the first call has any effect.
func (r *pipelineRun) finish(status domain.PipelineStatus, err error) {
	if r.result.Status != "" {
		return
	}
	r.result.Status = status
	if err != nil {
		r.result.Err = err
		r.result.Error = err.Error()
	}
}

// stage runs one pipeline step and returns the next one, or nil once the
// run has reached a terminal status.
type stage func(ctx context.Context, run *pipelineRun) stage

// Run takes one image through detect, recognize, parse and resolve. It always
// returns a result with exactly one terminal status; failures are reported in
// the result, not as a Go error. Nothing is retried and nothing is cached
// between runs.
func (s *LPRService) Run(ctx context.Context, image []byte) *domain.PipelineResult {
	run := &pipelineRun{
		image: image,
		result: &domain.PipelineResult{
			RunID:      uuid.NewString(),
			Detections: []domain.Detection{},
			Trace:      []string{},
			StartedAt:  s.now().UTC(),
		},
	}
	log.Printf("LPRService: run %s started (%d bytes)", run.result.RunID, len(image))

	next := stage(s.detect)
	for next != nil {
		// Only cancellation stops the run here. An expired deadline is left to
		// the next collaborator call, which fails its stage the same way a
		// deadline hit mid-call does (see failureStatus).
		if err := ctx.Err(); errors.Is(err, context.Canceled) {
			run.tracef("Cancelled: %v", err)
			run.finish(domain.StatusCancelled, err)
			break
		}
		next = next(ctx, run)
	}

	run.result.FinishedAt = s.now().UTC()
	log.Printf("LPRService: run %s finished with status %s in %s (plate %q)",
		run.result.RunID, run.result.Status, run.result.FinishedAt.Sub(run.result.StartedAt), run.result.CanonicalPlate)
	return run.result
}

func (s *LPRService) detect(ctx context.Context, run *pipelineRun) stage {
	detections, err := s.detector.Detect(ctx, run.image)
	if err != nil {
		err = s.collaboratorError("detector", err)
		run.tracef("Detect: detector failed: %v", err)
		run.finish(failureStatus(ctx, domain.StatusDetectionFailed), err)
		return nil
	}

	run.result.Detections = append(run.result.Detections, detections...)
	if len(detections) == 0 {
		run.tracef("Detect: no license plate detected")
		run.finish(domain.StatusNoDetection, domain.ErrNoDetection)
		return nil
	}

	best := 0
	for i, d := range detections {
		if d.Confidence > detections[best].Confidence {
			best = i
		}
	}
	run.primary = detections[best]
	primary := run.primary
	run.result.Primary = &primary
	run.tracef("Detect: %d plate region(s) found, primary %v confidence %.3f",
		len(detections), primary.BoundingBox, primary.Confidence)
	return s.recognize
}

func (s *LPRService) recognize(ctx context.Context, run *pipelineRun) stage {
	var hint *domain.RegionHint
	if s.cropToDetection {
		hint = domain.RegionHintFromDetection(run.primary)
		run.tracef("Recognize: restricting recognition to primary box %v", run.primary.BoundingBox)
	} else {
		run.tracef("Recognize: sending full image, primary box %v kept for audit only", run.primary.BoundingBox)
	}

	text, err := s.recognizer.Recognize(ctx, run.image, hint)
	if err != nil {
		err = s.collaboratorError("recognizer", err)
		run.tracef("Recognize: text recognition failed: %v", err)
		run.finish(failureStatus(ctx, domain.StatusRecognitionFailed), err)
		return nil
	}

	run.result.RecognizedText = text
	if text.Empty() {
		run.tracef("Recognize: no text found in image")
		run.finish(domain.StatusTextExtractedNoPlate, domain.ErrNoCompletePlate)
		return nil
	}
	run.result.Confidence = s.confidence.Aggregate(text.TokenConfidences)
	run.tracef("Recognize: %d line(s) extracted, confidence %.3f", len(text.Lines), run.result.Confidence)
	return s.parse
}

func (s *LPRService) parse(_ context.Context, run *pipelineRun) stage {
	parsed := s.parser.Parse(run.result.RecognizedText.FullText)
	run.result.Components = parsed.Components
	run.result.CanonicalPlate = parsed.Canonical
	run.result.Partial = parsed.Partial

	c := parsed.Components
	run.tracef("Parse: area=%s class=%s serial=%s",
		orDash(c.AreaName), withRule(c.VehicleClass, parsed.ClassRule), withRule(c.Serial, parsed.SerialLayout))

	if !parsed.Complete {
		if parsed.Partial {
			run.tracef("Parse: some plate components recognized, plate incomplete")
		} else {
			run.tracef("Parse: no plate components recognized")
		}
		run.finish(domain.StatusTextExtractedNoPlate, domain.ErrNoCompletePlate)
		return nil
	}
	run.tracef("Parse: canonical plate %s", parsed.Canonical)
	return s.resolve
}

func (s *LPRService) resolve(ctx context.Context, run *pipelineRun) stage {
	plateKey := run.result.CanonicalPlate
	vehicle, err := s.registry.FindByLicense(ctx, plateKey)
	if err == nil && vehicle == nil {
		err = repository.ErrNotFound
	}
	switch {
	case err == nil:
		run.result.VehicleRecord = vehicle
		run.tracef("Resolve: vehicle found (%s, toll %.2f)", vehicle.VehicleType, vehicle.TollAmount)
		run.finish(domain.StatusVehicleFound, nil)
	case errors.Is(err, repository.ErrNotFound):
		run.tracef("Resolve: no vehicle registered for %s", plateKey)
		run.finish(domain.StatusVehicleNotFound, domain.ErrRecordNotFound)
	default:
		log.Printf("LPRService: registry lookup for %s failed: %v", plateKey, err)
		run.tracef("Resolve: registry lookup failed: %v", err)
		run.finish(failureStatus(ctx, domain.StatusLookupFailed), fmt.Errorf("registry lookup: %w", err))
	}
	return nil
}

// collaboratorError makes sure err carries one of the collaborator sentinels.
func (s *LPRService) collaboratorError(who string, err error) error {
	log.Printf("LPRService: %s error: %v", who, err)
	if errors.Is(err, domain.ErrCollaboratorUnavailable) || errors.Is(err, domain.ErrCollaboratorRejected) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrCollaboratorUnavailable, who, err)
}

// failureStatus turns a failure caused by the caller cancelling into a
// cancelled run. Deadlines are left alone: the caller set them as a
// collaborator timeout.
func failureStatus(ctx context.Context, status domain.PipelineStatus) domain.PipelineStatus {
	if errors.Is(ctx.Err(), context.Canceled) {
		return domain.StatusCancelled
	}
	return status
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func withRule(value, rule string) string {
	if value == "" {
		return "-"
	}
	return value + " (" + rule + ")"
}
