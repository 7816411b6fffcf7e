package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"

	"toll_plaza/internal/domain"
	"toll_plaza/internal/plate"
	"toll_plaza/internal/repository"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// VehicleService answers registry questions outside the pipeline: direct
// lookups, the operator's manual plate entry and the toll event history.
type VehicleService struct {
	vehicleRepo   repository.VehicleRepository
	tollEventRepo repository.TollEventRepository
	parser        *plate.Parser
}

func NewVehicleService(vehicleRepo repository.VehicleRepository, tollEventRepo repository.TollEventRepository, parser *plate.Parser) *VehicleService {
	if parser == nil {
		parser = plate.NewParser(nil)
	}
	return &VehicleService{vehicleRepo: vehicleRepo, tollEventRepo: tollEventRepo, parser: parser}
}

// GetVehicleInfo looks a license up exactly as stored, after digit
// normalization.
func (s *VehicleService) GetVehicleInfo(ctx context.Context, license string) (*domain.VehicleRecord, error) {
	license = plate.ToBanglaDigits(strings.TrimSpace(license))
	if license == "" {
		return nil, fmt.Errorf("license is required")
	}
	return s.vehicleRepo.FindByLicense(ctx, license)
}

func (s *VehicleService) GetMostRecentVehicle(ctx context.Context) (*domain.VehicleRecord, error) {
	return s.vehicleRepo.FindMostRecent(ctx)
}

// ManualLookup resolves a plate typed by the operator. It tries the literal
// entry first, then its canonical form. When boothID is set and the vehicle
// is found, a manual toll event is recorded.
func (s *VehicleService) ManualLookup(ctx context.Context, req domain.ManualLookupRequestDTO) (*domain.ManualLookupResponseDTO, error) {
	resp := &domain.ManualLookupResponseDTO{Plate: req.Plate, TriedKeys: []string{}}
	keys := s.parser.LookupKeys(req.Plate)
	if len(keys) == 0 {
		return resp, fmt.Errorf("plate is required")
	}

	for _, key := range keys {
		resp.TriedKeys = append(resp.TriedKeys, key)
		vehicle, err := s.vehicleRepo.FindByLicense(ctx, key)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return resp, fmt.Errorf("VehicleService.ManualLookup: %w", err)
		}
		resp.Plate = key
		resp.VehicleRecord = vehicle
		log.Printf("VehicleService: manual lookup %q resolved to %s", req.Plate, key)

		if req.BoothID != "" {
			event := &domain.TollEvent{
				EventID:       uuid.NewString(),
				BoothID:       req.BoothID,
				License:       vehicle.License,
				VehicleID:     null.IntFrom(int64(vehicle.ID)),
				TollAmount:    vehicle.TollAmount,
				Status:        domain.TollEventManual,
				IsManualEntry: true,
			}
			if err := s.tollEventRepo.Create(ctx, event); err != nil {
				log.Printf("VehicleService: recording manual toll event for %s failed: %v", key, err)
				resp.ErrorMessage = "vehicle found but the toll event could not be recorded"
			} else {
				resp.TollEvent = event
			}
		}
		return resp, nil
	}

	resp.ErrorMessage = domain.ErrRecordNotFound.Error()
	return resp, domain.ErrRecordNotFound
}

// RecentTollEvents returns the newest toll events. limit is clamped to
// [1, 100]; zero or less means 20.
func (s *VehicleService) RecentTollEvents(ctx context.Context, limit int) ([]domain.TollEvent, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return s.tollEventRepo.FindRecent(ctx, limit)
}

// PruneTollEvents deletes toll events older than retentionDays. A
// non-positive retention keeps everything.
func (s *VehicleService) PruneTollEvents(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	return s.tollEventRepo.DeleteOlderThan(ctx, retentionDays)
}
