package model

import (
	"time"

	"github.com/google/uuid"
)

// Severity grades alerts and the notifications derived from them
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Alert rule types
const (
	AlertTypeHeartRate   = "HEART_RATE"
	AlertTypeSpo2        = "SPO2"
	AlertTypeTemperature = "TEMPERATURE"
	AlertTypeMLRisk      = "ML_RISK"
)

// ReadingSnapshot is the vitals frozen into an alert at trigger time
type ReadingSnapshot struct {
	HeartRate   float64    `json:"heartRate"`
	Spo2        float64    `json:"spo2"`
	Temperature float64    `json:"temperature"`
	EcgMean     float64    `json:"ecgMean"`
	RecordedAt  *time.Time `json:"recordedAt"`
}

// PredictionSnapshot is the model output frozen into an alert at trigger time
type PredictionSnapshot struct {
	RiskLevel  string   `json:"riskLevel" gorm:"size:32"`
	Confidence float64  `json:"confidence"`
	Systolic   *float64 `json:"systolic"`
	Diastolic  *float64 `json:"diastolic"`
}

// Alert is a persisted record of one rule violation. Immutable once created
// except for the externally-owned acknowledged flag.
type Alert struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PatientID      string     `json:"patientId" gorm:"index;not null;size:32"`
	Severity       Severity   `json:"severity" gorm:"size:20;not null"`
	Type           string     `json:"type" gorm:"size:32;not null"`
	Message        string     `json:"message" gorm:"size:255;not null"`
	TriggeredAt    time.Time  `json:"triggeredAt" gorm:"index;not null"`
	Acknowledged   bool       `json:"acknowledged" gorm:"default:false;index"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt"`

	Reading    ReadingSnapshot    `json:"reading" gorm:"embedded;embeddedPrefix:reading_"`
	Prediction PredictionSnapshot `json:"prediction" gorm:"embedded;embeddedPrefix:prediction_"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
