package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient represents a monitored patient profile
type Patient struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PatientID   string     `json:"patientId" gorm:"uniqueIndex;not null;size:32"`
	Name        string     `json:"name" gorm:"size:100"`
	Age         *int       `json:"age"`
	Gender      string     `json:"gender" gorm:"size:20"`
	Status      string     `json:"status" gorm:"size:20;default:'active'"`
	Condition   string     `json:"condition" gorm:"size:100"`
	Address     string     `json:"address" gorm:"size:255"`
	PhoneNumber string     `json:"phoneNumber" gorm:"size:32"`
	PhotoURL    string     `json:"photoUrl" gorm:"size:500;default:''"`
	// LastActiveAt is refreshed on every ingested reading
	LastActiveAt *time.Time `json:"lastActiveAt"`

	FamilyMembers  []FamilyMember `json:"familyMembers" gorm:"foreignKey:PatientID;references:PatientID"`
	MedicalHistory []MedicalNote  `json:"medicalHistory" gorm:"foreignKey:PatientID;references:PatientID"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FamilyMember is a contact registered on a patient's profile.
// Family register matches the supplied phone number against these entries.
type FamilyMember struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PatientID   string    `json:"patientId" gorm:"index;not null;size:32"`
	Name        string    `json:"name" gorm:"size:100"`
	Relation    string    `json:"relation" gorm:"size:50"`
	PhoneNumber string    `json:"phoneNumber" gorm:"size:32"`
}

// MedicalNote is one dated entry in a patient's medical history
type MedicalNote struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PatientID string    `json:"patientId" gorm:"index;not null;size:32"`
	Date      time.Time `json:"date"`
	Note      string    `json:"note" gorm:"type:text"`
}
