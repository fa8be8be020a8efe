package repository

import (
	"github.com/vitalwatch/api/internal/model"
	"gorm.io/gorm"
)

// ReadingRepository handles database operations for the append-only
// sensor-reading log
type ReadingRepository struct {
	db *gorm.DB
}

func NewReadingRepository(db *gorm.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// Create appends a new reading
func (r *ReadingRepository) Create(reading *model.SensorReading) error {
	return r.db.Create(reading).Error
}

// FindLatest returns the most recently recorded reading for a patient.
// Ties on recorded_at are broken by insertion order.
func (r *ReadingRepository) FindLatest(patientID string) (*model.SensorReading, error) {
	var reading model.SensorReading
	err := r.db.
		Where("patient_id = ?", patientID).
		Order("recorded_at DESC, created_at DESC").
		First(&reading).Error
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

// FindRecent returns the newest readings for a patient, newest first
func (r *ReadingRepository) FindRecent(patientID string, limit int) ([]model.SensorReading, error) {
	readings := []model.SensorReading{}
	err := r.db.
		Where("patient_id = ?", patientID).
		Order("recorded_at DESC, created_at DESC").
		Limit(limit).
		Find(&readings).Error
	return readings, err
}
