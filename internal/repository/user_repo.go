package repository

import (
	"github.com/google/uuid"
	"github.com/vitalwatch/api/internal/model"
	"gorm.io/gorm"
)

// UserRepository handles database operations for User
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by UUID
func (r *UserRepository) FindByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAlertRecipients returns everyone who must be notified about an alert
// for the given patient: all admins plus the family members linked to that
// patient.
func (r *UserRepository) FindAlertRecipients(patientID string) ([]model.User, error) {
	users := []model.User{}
	err := r.db.
		Where("role = ?", model.RoleAdmin).
		Or("role = ? AND linked_patient_id = ?", model.RoleFamily, patientID).
		Find(&users).Error
	return users, err
}

// FindFamilyByPatient returns the family accounts linked to a patient
func (r *UserRepository) FindFamilyByPatient(patientID string) ([]model.User, error) {
	users := []model.User{}
	err := r.db.
		Where("role = ? AND linked_patient_id = ?", model.RoleFamily, patientID).
		Find(&users).Error
	return users, err
}
