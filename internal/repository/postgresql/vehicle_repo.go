package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"toll_plaza/internal/domain"
	"toll_plaza/internal/repository"
)

type pgVehicleRepository struct {
	db *sql.DB
}

func NewPgVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &pgVehicleRepository{db: db}
}

const vehicleColumns = `id, license, owner, phone, vehicle_type, toll_amount, created_at`

func scanVehicle(row interface{ Scan(dest ...any) error }) (*domain.VehicleRecord, error) {
	v := &domain.VehicleRecord{}
	if err := row.Scan(&v.ID, &v.License, &v.Owner, &v.Phone, &v.VehicleType, &v.TollAmount, &v.CreatedAt); err != nil {
		return nil, err
	}
	v.CreatedAt = v.CreatedAt.In(time.UTC)
	return v, nil
}

func (r *pgVehicleRepository) FindByLicense(ctx context.Context, license string) (*domain.VehicleRecord, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE license = $1`
	v, err := scanVehicle(r.db.QueryRowContext(ctx, query, license))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleRepository.FindByLicense: %w", err)
	}
	return v, nil
}

func (r *pgVehicleRepository) FindMostRecent(ctx context.Context) (*domain.VehicleRecord, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles ORDER BY created_at DESC, id DESC LIMIT 1`
	v, err := scanVehicle(r.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleRepository.FindMostRecent: %w", err)
	}
	return v, nil
}
