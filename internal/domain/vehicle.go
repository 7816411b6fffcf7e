package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// VehicleRecord is a registry entry. License holds the canonical plate.
type VehicleRecord struct {
	ID          int         `json:"id"`
	License     string      `json:"license"`
	Owner       string      `json:"owner"`
	Phone       null.String `json:"phone"`
	VehicleType string      `json:"vehicle_type"`
	TollAmount  float64     `json:"toll_amount"`
	CreatedAt   time.Time   `json:"created_at"`
}

type VehicleInfoRequestDTO struct {
	License string `json:"license" binding:"required"`
}

type TollEventStatus string

const (
	TollEventCharged TollEventStatus = "charged"
	TollEventManual  TollEventStatus = "manual"
)

// TollEvent is the record kept once a passing vehicle has been resolved.
type TollEvent struct {
	ID            int64           `json:"id"`
	EventID       string          `json:"event_id"`
	BoothID       string          `json:"booth_id"`
	License       string          `json:"license"`
	VehicleID     null.Int        `json:"vehicle_id"`
	TollAmount    float64         `json:"toll_amount"`
	Confidence    null.Float      `json:"confidence"`
	Status        TollEventStatus `json:"status"`
	IsManualEntry bool            `json:"is_manual_entry"`
	CreatedAt     time.Time       `json:"created_at"`
}
