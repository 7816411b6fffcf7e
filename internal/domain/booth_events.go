package domain

import (
	"encoding/json"
	"time"
)

// Booth message types arriving over SQS.
const (
	BoothMessageCapture   = "capture"
	BoothMessageHeartbeat = "heartbeat"
)

// GenericBoothEvent is parsed first to route a queue message by message_type.
type GenericBoothEvent struct {
	EventID           string          `json:"event_id"`
	BoothID           string          `json:"booth_id"`
	MessageType       string          `json:"message_type"`
	Timestamp         string          `json:"timestamp"`                     // ISO 8601 UTC from the booth controller
	ReceivedMqttTopic string          `json:"received_mqtt_topic,omitempty"` // added by the IoT rule
	RawPayload        json.RawMessage `json:"-"`
}

// BoothCaptureEvent carries a camera frame taken when a vehicle reached the lane.
type BoothCaptureEvent struct {
	GenericBoothEvent
	Lane        string `json:"lane,omitempty"`
	CameraID    string `json:"camera_id,omitempty"`
	ImageBase64 string `json:"image_base64"`
}

type BoothHeartbeatEvent struct {
	GenericBoothEvent
	FirmwareVersion string `json:"firmware_version,omitempty"`
	Uptime          int64  `json:"uptime_seconds,omitempty"`
}

// PlateResultNotification is pushed to dashboards over WebSocket and to the
// booth over MQTT.
type PlateResultNotification struct {
	EventID        string         `json:"event_id"`
	BoothID        string         `json:"booth_id"`
	Lane           string         `json:"lane,omitempty"`
	RunID          string         `json:"run_id"`
	Status         PipelineStatus `json:"status"`
	CanonicalPlate string         `json:"canonical_plate,omitempty"`
	Confidence     float64        `json:"confidence"`
	VehicleType    string         `json:"vehicle_type,omitempty"`
	Owner          string         `json:"owner,omitempty"`
	TollAmount     float64        `json:"toll_amount,omitempty"`
	// RequiresUserInput asks the operator for a manual plate entry.
	RequiresUserInput bool      `json:"requires_user_input"`
	Message           string    `json:"message,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

type BarrierCommand string

const (
	BarrierOpen  BarrierCommand = "open"
	BarrierClose BarrierCommand = "close"
)

type BarrierControlCommandPayload struct {
	Command   BarrierCommand `json:"command"`
	RequestID string         `json:"request_id,omitempty"`
	Reason    string         `json:"reason,omitempty"`
}

type BarrierControlRequestDTO struct {
	BoothID string         `json:"booth_id" binding:"required"`
	Command BarrierCommand `json:"command" binding:"required,oneof=open close"`
}
