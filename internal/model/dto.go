package model

import (
	"time"

	"github.com/google/uuid"
)

// ==================== Ingestion ====================

// IngestPayload is the raw, untrusted body sent by a monitoring device.
// Embedded senders transmit malformed values transiently, so every field is
// optional and loosely typed; only the normalizer consumes this shape.
type IngestPayload struct {
	PatientID   any `json:"patientId"`
	DeviceID    any `json:"deviceId"`
	DeviceKey   any `json:"deviceKey"`
	WifiSSID    any `json:"wifiSsid"`
	HeartRate   any `json:"heartRate"`
	Temperature any `json:"temperature"`
	Spo2        any `json:"spo2"`
	EcgMean     any `json:"ecgMean"`
	RecordedAt  any `json:"recordedAt"`
	// Timestamp is the alternate field name used by older firmware
	Timestamp any `json:"timestamp"`
}

// NormalizedReading is a fully-populated canonical reading. Every field is
// concrete; downstream components never see missing or malformed values.
type NormalizedReading struct {
	PatientID   string    `json:"patientId"`
	DeviceID    string    `json:"deviceId"`
	DeviceKey   string    `json:"-"`
	WifiSSID    string    `json:"wifiSsid"`
	HeartRate   float64   `json:"heartRate"`
	Temperature float64   `json:"temperature"`
	Spo2        float64   `json:"spo2"`
	EcgMean     float64   `json:"ecgMean"`
	RecordedAt  time.Time `json:"recordedAt"`
}

// IngestResponse is the summary returned to the device after a reading is
// fully processed
type IngestResponse struct {
	Message       string     `json:"message"`
	PatientID     string     `json:"patientId"`
	AlertCount    int        `json:"alertCount"`
	Prediction    Prediction `json:"prediction"`
	LastUpdatedAt *time.Time `json:"lastUpdatedAt"`
}

// ==================== Live vitals & prediction ====================

// LiveVitals is the current displayable state for a patient
type LiveVitals struct {
	PatientID     string     `json:"patientId"`
	HeartRate     float64    `json:"heartRate"`
	Temperature   float64    `json:"temperature"`
	Spo2          float64    `json:"spo2"`
	EcgMean       float64    `json:"ecgMean"`
	LastUpdatedAt *time.Time `json:"lastUpdatedAt"`
	IsStale       bool       `json:"isStale"`
}

// Prediction is the risk-model output. Never persisted on its own; embedded
// as a snapshot inside alerts when one fires.
type Prediction struct {
	RiskLevel  string   `json:"riskLevel"`
	Confidence float64  `json:"confidence"`
	Systolic   *float64 `json:"systolic"`
	Diastolic  *float64 `json:"diastolic"`
}

// PredictionResponse decorates a prediction with the freshness of the
// vitals it was computed from
type PredictionResponse struct {
	Prediction
	LastUpdatedAt *time.Time `json:"lastUpdatedAt"`
	IsStale       bool       `json:"isStale"`
}

// PatientSummary is one row of the patient list with its current risk level
type PatientSummary struct {
	ID        string     `json:"id"`
	PatientID string     `json:"patientId"`
	Name      string     `json:"name"`
	Age       *int       `json:"age"`
	Gender    string     `json:"gender"`
	Condition string     `json:"condition"`
	Status    string     `json:"status"`
	RiskLevel string     `json:"riskLevel"`
	LastVisit *time.Time `json:"lastVisit"`
}

// PatientDetail is the full profile plus recent readings
type PatientDetail struct {
	Patient
	PreviousRecords   []SensorReading `json:"previousRecords"`
	IsProfileComplete bool            `json:"isProfileComplete"`
}

// ==================== Auth ====================

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type FamilyRegisterRequest struct {
	PatientID   string `json:"patientId" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Password    string `json:"password" binding:"required,min=6"`
	Name        string `json:"name"`
	Relation    string `json:"relation"`
}

type FamilyLoginRequest struct {
	PatientID   string `json:"patientId" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// ErrorResponse is the standard error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse is the standard acknowledgement body
type SuccessResponse struct {
	Message string `json:"message"`
}

// ==================== WebSocket events ====================

// WSEvent is the envelope broadcast to real-time subscribers
type WSEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Real-time event kinds
const (
	// WSEventTelemetry carries every ingested reading plus its prediction
	WSEventTelemetry = "telemetry"
	// WSEventAlert is published once per created alert
	WSEventAlert = "alert"
	// WSEventNotification is delivered to an alert's recipients only
	WSEventNotification = "notification"
)

// TelemetryEvent is the payload of a telemetry broadcast
type TelemetryEvent struct {
	PatientID  string     `json:"patientId"`
	LiveData   LiveVitals `json:"liveData"`
	Prediction Prediction `json:"prediction"`
}

// AlertEvent is the payload of an alert broadcast
type AlertEvent struct {
	PatientID   string    `json:"patientId"`
	Severity    Severity  `json:"severity"`
	Message     string    `json:"message"`
	AlertID     uuid.UUID `json:"alertId"`
	TriggeredAt time.Time `json:"triggeredAt"`
}
