package repository

import (
	"time"

	"github.com/vitalwatch/api/internal/model"
	"gorm.io/gorm"
)

// PatientRepository handles database operations for Patient
type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// Create inserts a new patient with its family members and history
func (r *PatientRepository) Create(patient *model.Patient) error {
	return r.db.Create(patient).Error
}

// FindByPatientID loads a full profile by its business key
func (r *PatientRepository) FindByPatientID(patientID string) (*model.Patient, error) {
	var patient model.Patient
	err := r.db.
		Preload("FamilyMembers").
		Preload("MedicalHistory").
		Where("patient_id = ?", patientID).
		First(&patient).Error
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

// List returns all patients ordered by their business key
func (r *PatientRepository) List() ([]model.Patient, error) {
	patients := []model.Patient{}
	err := r.db.Order("patient_id ASC").Find(&patients).Error
	return patients, err
}

// TouchLastActive refreshes the patient's last-active marker. A no-op when
// no profile exists for the patient yet.
func (r *PatientRepository) TouchLastActive(patientID string, at time.Time) error {
	return r.db.Model(&model.Patient{}).
		Where("patient_id = ?", patientID).
		Update("last_active_at", at).Error
}

// UpdatePhotoURL sets the patient's profile photo
func (r *PatientRepository) UpdatePhotoURL(patientID, url string) error {
	return r.db.Model(&model.Patient{}).
		Where("patient_id = ?", patientID).
		Update("photo_url", url).Error
}
