package postgresql

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"lib/pq unique violation", &pq.Error{Code: "23505"}, true},
		{"pgx unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped pgx unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"wrapped lib/pq unique violation", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), true},
		{"lib/pq foreign key violation", &pq.Error{Code: "23503"}, false},
		{"pgx not null violation", &pgconn.PgError{Code: "23502"}, false},
		{"no rows", sql.ErrNoRows, false},
		{"plain error", errors.New("duplicate key"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int:
			*p = r.values[i].(int)
		case *string:
			*p = r.values[i].(string)
		case *float64:
			*p = r.values[i].(float64)
		case *time.Time:
			*p = r.values[i].(time.Time)
		case sql.Scanner:
			if err := p.Scan(r.values[i]); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unexpected destination %T", d)
		}
	}
	return nil
}

func TestScanVehicle(t *testing.T) {
	dhaka := time.FixedZone("BST", 6*60*60)
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, dhaka)
	row := fakeRow{values: []any{1, "ঢাকা-মেট্রো-গ-১২-৩৪৫৬", "Rahim Uddin", nil, "car", 100.0, created}}

	v, err := scanVehicle(row)
	if err != nil {
		t.Fatalf("scanVehicle() error = %v", err)
	}
	if v.License != "ঢাকা-মেট্রো-গ-১২-৩৪৫৬" || v.Owner != "Rahim Uddin" || v.TollAmount != 100 {
		t.Errorf("vehicle = %+v", v)
	}
	if v.Phone.Valid {
		t.Errorf("Phone = %v, want null", v.Phone)
	}
	if v.CreatedAt.Location() != time.UTC || !v.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v in UTC", v.CreatedAt, created)
	}

	if _, err := scanVehicle(fakeRow{err: sql.ErrNoRows}); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}
