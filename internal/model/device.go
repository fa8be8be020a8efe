package model

import (
	"time"

	"github.com/google/uuid"
)

// Device is the registry entry for the sender reporting a patient's vitals.
// One device per patient; provisioned on the first reading and refreshed on
// every subsequent one.
type Device struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PatientID string    `json:"patientId" gorm:"uniqueIndex;not null;size:32"`
	DeviceID  string    `json:"deviceId" gorm:"size:64;not null"`
	// DeviceKey is the shared secret presented on ingestion; empty for
	// legacy devices provisioned without one
	DeviceKey  string     `json:"-" gorm:"size:128"`
	WifiSSID   string     `json:"wifiSsid" gorm:"size:64"`
	LastSeenAt *time.Time `json:"lastSeenAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
