package repository

import (
	"time"

	"github.com/vitalwatch/api/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceRepository handles database operations for the device registry
type DeviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// FindByPatientID returns the registry entry for a patient
func (r *DeviceRepository) FindByPatientID(patientID string) (*model.Device, error) {
	var device model.Device
	err := r.db.Where("patient_id = ?", patientID).First(&device).Error
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// Upsert provisions a device or refreshes its metadata. The conflict target
// is the unique patient_id, so two concurrent first readings for the same
// unseen patient collapse into one registry row.
func (r *DeviceRepository) Upsert(device *model.Device) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "patient_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"device_id":    device.DeviceID,
			"wifi_ssid":    device.WifiSSID,
			"last_seen_at": device.LastSeenAt,
			"updated_at":   time.Now(),
		}),
	}).Create(device).Error
}
