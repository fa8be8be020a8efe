package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/vitalwatch/api/internal/model"
	"gorm.io/gorm"
)

// AlertRepository handles database operations for Alert
type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create persists a new alert
func (r *AlertRepository) Create(alert *model.Alert) error {
	return r.db.Create(alert).Error
}

// FindByID finds an alert by ID
func (r *AlertRepository) FindByID(id uuid.UUID) (*model.Alert, error) {
	var alert model.Alert
	err := r.db.Where("id = ?", id).First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// List returns the newest alerts, optionally only unacknowledged ones
func (r *AlertRepository) List(onlyOpen bool, limit int) ([]model.Alert, error) {
	alerts := []model.Alert{}
	query := r.db.Order("triggered_at DESC").Limit(limit)
	if onlyOpen {
		query = query.Where("acknowledged = ?", false)
	}
	err := query.Find(&alerts).Error
	return alerts, err
}

// ListByPatient returns the newest alerts for one patient
func (r *AlertRepository) ListByPatient(patientID string, limit int) ([]model.Alert, error) {
	alerts := []model.Alert{}
	err := r.db.
		Where("patient_id = ?", patientID).
		Order("triggered_at DESC").
		Limit(limit).
		Find(&alerts).Error
	return alerts, err
}

// Acknowledge sets the externally-owned acknowledged flag
func (r *AlertRepository) Acknowledge(id uuid.UUID) error {
	now := time.Now()
	return r.db.Model(&model.Alert{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"acknowledged":    true,
			"acknowledged_at": now,
		}).Error
}
