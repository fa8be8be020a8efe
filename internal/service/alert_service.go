package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/vitalwatch/api/internal/model"
	"github.com/vitalwatch/api/pkg/mailer"
	"github.com/vitalwatch/api/pkg/notification"
)

// AlertStore persists alerts
type AlertStore interface {
	Create(alert *model.Alert) error
}

// NotificationStore persists per-recipient notifications
type NotificationStore interface {
	CreateBatch(notifications []model.Notification) error
}

// RecipientStore resolves who must be told about a patient's alerts
type RecipientStore interface {
	FindAlertRecipients(patientID string) ([]model.User, error)
}

// EventPublisher pushes real-time events to subscribers without blocking
type EventPublisher interface {
	Broadcast(event *model.WSEvent)
	SendToUser(userID uuid.UUID, event *model.WSEvent)
}

// AlertService persists candidate alerts and fans each one out to its
// recipients: a mailbox notification per recipient, a broadcast event for
// dashboards, plus best-effort push and email side channels.
type AlertService struct {
	alerts        AlertStore
	notifications NotificationStore
	recipients    RecipientStore
	publisher     EventPublisher
	push          *notification.PushService
	mail          *mailer.Mailer
}

func NewAlertService(
	alerts AlertStore,
	notifications NotificationStore,
	recipients RecipientStore,
	publisher EventPublisher,
	push *notification.PushService,
	mail *mailer.Mailer,
) *AlertService {
	return &AlertService{
		alerts:        alerts,
		notifications: notifications,
		recipients:    recipients,
		publisher:     publisher,
		push:          push,
		mail:          mail,
	}
}

// Dispatch processes candidate alerts in their fixed evaluation order.
// Candidates are independent: a failure while persisting or fanning out
// one of them is logged and never blocks the rest. Returns the number of
// candidates processed.
func (s *AlertService) Dispatch(
	ctx context.Context,
	patientID string,
	candidates []AlertCandidate,
	reading model.LiveVitals,
	prediction model.Prediction,
	triggeredAt time.Time,
) int {
	for _, candidate := range candidates {
		if err := s.dispatchOne(ctx, patientID, candidate, reading, prediction, triggeredAt); err != nil {
			log.Printf("⚠️  Failed to dispatch %s alert for %s: %v", candidate.Type, patientID, err)
		}
	}
	return len(candidates)
}

func (s *AlertService) dispatchOne(
	ctx context.Context,
	patientID string,
	candidate AlertCandidate,
	reading model.LiveVitals,
	prediction model.Prediction,
	triggeredAt time.Time,
) error {
	alert := &model.Alert{
		PatientID:   patientID,
		Severity:    candidate.Severity,
		Type:        candidate.Type,
		Message:     candidate.Message,
		TriggeredAt: triggeredAt,
		Reading: model.ReadingSnapshot{
			HeartRate:   reading.HeartRate,
			Spo2:        reading.Spo2,
			Temperature: reading.Temperature,
			EcgMean:     reading.EcgMean,
			RecordedAt:  reading.LastUpdatedAt,
		},
		Prediction: model.PredictionSnapshot{
			RiskLevel:  prediction.RiskLevel,
			Confidence: prediction.Confidence,
			Systolic:   prediction.Systolic,
			Diastolic:  prediction.Diastolic,
		},
	}

	if err := s.alerts.Create(alert); err != nil {
		return fmt.Errorf("failed to persist alert: %w", err)
	}

	// Recipient resolution and mailbox writes are auxiliary: the alert
	// exists even when they fail
	recipients, err := s.recipients.FindAlertRecipients(patientID)
	if err != nil {
		log.Printf("⚠️  Failed to resolve recipients for %s: %v", patientID, err)
		recipients = nil
	}

	if len(recipients) > 0 {
		notifications := make([]model.Notification, 0, len(recipients))
		for _, user := range recipients {
			notifications = append(notifications, model.Notification{
				UserID:    user.ID,
				PatientID: patientID,
				AlertID:   alert.ID,
				Title:     fmt.Sprintf("%s Alert for %s", alert.Severity, patientID),
				Body:      alert.Message,
				Severity:  alert.Severity,
			})
		}
		if err := s.notifications.CreateBatch(notifications); err != nil {
			log.Printf("⚠️  Failed to create notifications for alert %s: %v", alert.ID, err)
		} else {
			for _, n := range notifications {
				s.publisher.SendToUser(n.UserID, &model.WSEvent{
					Type:    model.WSEventNotification,
					Payload: n,
				})
			}
		}
	}

	s.publisher.Broadcast(&model.WSEvent{
		Type: model.WSEventAlert,
		Payload: model.AlertEvent{
			PatientID:   patientID,
			Severity:    alert.Severity,
			Message:     alert.Message,
			AlertID:     alert.ID,
			TriggeredAt: alert.TriggeredAt,
		},
	})

	s.notifySideChannels(ctx, alert, recipients)
	return nil
}

// notifySideChannels delivers push and email for critical alerts.
// Both are optional and best-effort.
func (s *AlertService) notifySideChannels(ctx context.Context, alert *model.Alert, recipients []model.User) {
	if alert.Severity != model.SeverityCritical {
		return
	}

	if s.push != nil {
		if err := s.push.SendAlertPush(ctx, alert); err != nil {
			log.Printf("⚠️  Alert push failed for %s: %v", alert.ID, err)
		}
	}

	if s.mail != nil {
		for _, user := range recipients {
			if user.Role != model.RoleFamily {
				continue
			}
			if err := s.mail.SendAlertEmail(user.Email, alert.PatientID, string(alert.Severity), alert.Message, alert.TriggeredAt); err != nil {
				log.Printf("⚠️  Alert email to %s failed: %v", user.Email, err)
			}
		}
	}
}
