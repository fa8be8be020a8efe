package repository

import (
	"github.com/google/uuid"
	"github.com/vitalwatch/api/internal/model"
	"gorm.io/gorm"
)

// NotificationRepository handles database operations for per-recipient
// notification mailboxes
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateBatch inserts one notification per recipient
func (r *NotificationRepository) CreateBatch(notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.Create(&notifications).Error
}

// ListByUser returns a user's notification feed, newest first
func (r *NotificationRepository) ListByUser(userID uuid.UUID, limit int) ([]model.Notification, error) {
	notifications := []model.Notification{}
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// MarkRead sets the externally-owned isRead flag. Scoped to the owning user
// so one recipient cannot flip another's mailbox entry.
func (r *NotificationRepository) MarkRead(id, userID uuid.UUID) error {
	return r.db.Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
}

// CountUnread counts a user's unread notifications
func (r *NotificationRepository) CountUnread(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
