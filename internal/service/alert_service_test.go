package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vitalwatch/api/internal/model"
)

func alertFixture() (*AlertService, *fakeAlertStore, *fakeNotificationStore, *fakeRecipientStore, *fakePublisher) {
	alertStore := &fakeAlertStore{}
	notifications := &fakeNotificationStore{}
	recipients := &fakeRecipientStore{}
	publisher := newFakePublisher()
	svc := NewAlertService(alertStore, notifications, recipients, publisher, nil, nil)
	return svc, alertStore, notifications, recipients, publisher
}

func criticalCandidate() AlertCandidate {
	return AlertCandidate{
		Severity: model.SeverityCritical,
		Type:     model.AlertTypeHeartRate,
		Message:  "Abnormal heart rate detected (150 bpm).",
	}
}

func TestDispatch_PersistsSnapshotAndBroadcasts(t *testing.T) {
	svc, alertStore, _, _, publisher := alertFixture()

	recordedAt := time.Now().Add(-time.Minute)
	systolic := 128.0
	triggeredAt := time.Now()

	count := svc.Dispatch(context.Background(), "PT007",
		[]AlertCandidate{criticalCandidate()},
		model.LiveVitals{HeartRate: 150, Spo2: 97, Temperature: 98.6, EcgMean: 1.0, LastUpdatedAt: &recordedAt},
		model.Prediction{RiskLevel: "high", Confidence: 91, Systolic: &systolic},
		triggeredAt,
	)
	require.Equal(t, 1, count)

	require.Len(t, alertStore.created, 1)
	alert := alertStore.created[0]
	require.Equal(t, "PT007", alert.PatientID)
	require.Equal(t, model.SeverityCritical, alert.Severity)
	require.Equal(t, 150.0, alert.Reading.HeartRate)
	require.Equal(t, "high", alert.Prediction.RiskLevel)
	require.Equal(t, 91.0, alert.Prediction.Confidence)
	require.NotNil(t, alert.Prediction.Systolic)
	require.False(t, alert.Acknowledged)

	require.Len(t, publisher.broadcasts, 1)
	require.Equal(t, model.WSEventAlert, publisher.broadcasts[0].Type)
	event := publisher.broadcasts[0].Payload.(model.AlertEvent)
	require.Equal(t, "PT007", event.PatientID)
	require.Equal(t, alert.Message, event.Message)
}

func TestDispatch_NotifiesEachRecipient(t *testing.T) {
	svc, _, notifications, recipientStore, publisher := alertFixture()

	admin := model.User{ID: uuid.New(), Role: model.RoleAdmin}
	linked := "PT007"
	family := model.User{ID: uuid.New(), Role: model.RoleFamily, LinkedPatientID: &linked}
	recipientStore.users = []model.User{admin, family}

	svc.Dispatch(context.Background(), "PT007",
		[]AlertCandidate{criticalCandidate()},
		model.LiveVitals{HeartRate: 150}, model.Prediction{RiskLevel: "low"}, time.Now())

	require.Len(t, notifications.created, 2)
	for _, n := range notifications.created {
		require.Equal(t, "CRITICAL Alert for PT007", n.Title)
		require.Equal(t, "Abnormal heart rate detected (150 bpm).", n.Body)
		require.False(t, n.IsRead)
	}

	// One targeted event per recipient
	require.Len(t, publisher.perUser[admin.ID], 1)
	require.Len(t, publisher.perUser[family.ID], 1)
	require.Equal(t, model.WSEventNotification, publisher.perUser[admin.ID][0].Type)
}

func TestDispatch_RecipientLookupFailureKeepsAlert(t *testing.T) {
	svc, alertStore, notifications, recipientStore, publisher := alertFixture()
	recipientStore.err = errors.New("users table down")

	count := svc.Dispatch(context.Background(), "PT007",
		[]AlertCandidate{criticalCandidate()},
		model.LiveVitals{HeartRate: 150}, model.Prediction{}, time.Now())

	require.Equal(t, 1, count)
	require.Len(t, alertStore.created, 1)
	require.Empty(t, notifications.created)
	// The dashboard broadcast still goes out
	require.Len(t, publisher.broadcasts, 1)
}

func TestDispatch_PersistFailureDoesNotBlockOthers(t *testing.T) {
	svc, alertStore, _, _, publisher := alertFixture()
	alertStore.err = errors.New("disk full")

	count := svc.Dispatch(context.Background(), "PT007",
		[]AlertCandidate{
			criticalCandidate(),
			{Severity: model.SeverityHigh, Type: model.AlertTypeTemperature, Message: "Temperature out of safe range (40 C)."},
		},
		model.LiveVitals{}, model.Prediction{}, time.Now())

	// Count reflects candidates processed, not persisted rows
	require.Equal(t, 2, count)
	require.Empty(t, alertStore.created)
	require.Empty(t, publisher.broadcasts)
}

func TestDispatch_NotificationFailureKeepsBroadcast(t *testing.T) {
	svc, alertStore, notifications, recipientStore, publisher := alertFixture()
	recipientStore.users = []model.User{{ID: uuid.New(), Role: model.RoleAdmin}}
	notifications.err = errors.New("notifications table down")

	svc.Dispatch(context.Background(), "PT007",
		[]AlertCandidate{criticalCandidate()},
		model.LiveVitals{}, model.Prediction{}, time.Now())

	require.Len(t, alertStore.created, 1)
	require.Len(t, publisher.broadcasts, 1)
	// No targeted events when the mailbox write failed
	require.Empty(t, publisher.perUser)
}
