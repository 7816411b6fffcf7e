package repository

import (
	"context"
	"errors"

	"toll_plaza/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")

// VehicleRepository is the vehicle registry. Licenses are stored in
// canonical form and matched exactly.
type VehicleRepository interface {
	FindByLicense(ctx context.Context, license string) (*domain.VehicleRecord, error)
	FindMostRecent(ctx context.Context) (*domain.VehicleRecord, error)
}

type TollEventRepository interface {
	Create(ctx context.Context, event *domain.TollEvent) error
	FindRecent(ctx context.Context, limit int) ([]domain.TollEvent, error)
	// DeleteOlderThan removes events older than the given number of days.
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}
