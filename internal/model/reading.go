package model

import (
	"time"

	"github.com/google/uuid"
)

// SensorReading is one persisted vitals sample. Append-only: rows are never
// updated or deleted, live state is always derived from the newest row.
type SensorReading struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PatientID   string    `json:"patientId" gorm:"index;not null;size:32"`
	HeartRate   float64   `json:"heartRate"`
	Temperature float64   `json:"temperature"`
	Spo2        float64   `json:"spo2"`
	EcgMean     float64   `json:"ecgMean"`
	// RecordedAt is the device-reported sample time; CreatedAt is the
	// ingestion instant and breaks ordering ties between equal samples
	RecordedAt time.Time `json:"recordedAt" gorm:"index;not null"`
	CreatedAt  time.Time `json:"ingestedAt" gorm:"index"`
}
