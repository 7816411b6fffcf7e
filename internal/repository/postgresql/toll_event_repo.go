package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"toll_plaza/internal/domain"
	"toll_plaza/internal/repository"
)

type pgTollEventRepository struct {
	db *sql.DB
}

func NewPgTollEventRepository(db *sql.DB) repository.TollEventRepository {
	return &pgTollEventRepository{db: db}
}

func (r *pgTollEventRepository) Create(ctx context.Context, event *domain.TollEvent) error {
	query := `INSERT INTO toll_events
		(event_id, booth_id, license, vehicle_id, toll_amount, confidence, status, is_manual_entry, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		event.EventID, event.BoothID, event.License, event.VehicleID,
		event.TollAmount, event.Confidence, event.Status, event.IsManualEntry,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("TollEventRepository.Create: %w", err)
	}
	event.CreatedAt = event.CreatedAt.In(time.UTC)
	return nil
}

func (r *pgTollEventRepository) FindRecent(ctx context.Context, limit int) ([]domain.TollEvent, error) {
	query := `SELECT id, event_id, booth_id, license, vehicle_id, toll_amount, confidence,
		status, is_manual_entry, created_at
		FROM toll_events ORDER BY created_at DESC, id DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("TollEventRepository.FindRecent: %w", err)
	}
	defer rows.Close()

	events := []domain.TollEvent{}
	for rows.Next() {
		var e domain.TollEvent
		if err := rows.Scan(&e.ID, &e.EventID, &e.BoothID, &e.License, &e.VehicleID, &e.TollAmount,
			&e.Confidence, &e.Status, &e.IsManualEntry, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("TollEventRepository.FindRecent (scan): %w", err)
		}
		e.CreatedAt = e.CreatedAt.In(time.UTC)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("TollEventRepository.FindRecent (rows): %w", err)
	}
	return events, nil
}

func (r *pgTollEventRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	query := `DELETE FROM toll_events WHERE created_at < CURRENT_TIMESTAMP - make_interval(days => $1)`

	result, err := r.db.ExecContext(ctx, query, days)
	if err != nil {
		return 0, fmt.Errorf("TollEventRepository.DeleteOlderThan: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("TollEventRepository.DeleteOlderThan (checking rows): %w", err)
	}
	return count, nil
}
