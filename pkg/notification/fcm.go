package notification

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/vitalwatch/api/internal/model"
	"google.golang.org/api/option"
)

// PushService sends FCM push notifications for critical alerts. It is
// optional: a nil service silently drops every send.
type PushService struct {
	client *messaging.Client
	topic  string
}

// NewPushService creates a new FCM push service
func NewPushService(credentialsFile string) (*PushService, error) {
	if credentialsFile == "" {
		log.Println("⚠️ Firebase credentials not provided, push notifications disabled")
		return nil, nil
	}

	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		// Log warning instead of error to not block server startup
		log.Printf("⚠️ Failed to initialize Firebase app: %v (push notifications disabled)", err)
		return nil, nil
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		log.Printf("⚠️ Failed to get messaging client: %v", err)
		return nil, nil
	}

	log.Println("✅ Firebase FCM initialized")
	return &PushService{
		client: client,
		topic:  "vitalwatch-alerts",
	}, nil
}

// SendAlertPush pushes a created alert to the staff alert topic. Best-effort:
// failures are returned for logging but never abort the fan-out.
func (s *PushService) SendAlertPush(ctx context.Context, alert *model.Alert) error {
	if s == nil || s.client == nil {
		return nil
	}

	message := &messaging.Message{
		Topic: s.topic,
		Notification: &messaging.Notification{
			Title: fmt.Sprintf("%s Alert for %s", alert.Severity, alert.PatientID),
			Body:  alert.Message,
		},
		Data: map[string]string{
			"type":       "alert",
			"alert_id":   alert.ID.String(),
			"patient_id": alert.PatientID,
			"severity":   string(alert.Severity),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if _, err := s.client.Send(ctx, message); err != nil {
		return fmt.Errorf("error sending alert push: %w", err)
	}
	return nil
}
