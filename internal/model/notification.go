package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is one recipient's mailbox entry for an alert. Immutable
// once created except for the externally-owned isRead flag.
type Notification struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	PatientID string    `json:"patientId" gorm:"index;not null;size:32"`
	AlertID   uuid.UUID `json:"alertId" gorm:"type:uuid;not null;index"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	Body      string    `json:"body" gorm:"size:255;not null"`
	Severity  Severity  `json:"severity" gorm:"size:20;default:'INFO'"`
	IsRead    bool      `json:"isRead" gorm:"default:false;index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
