package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vitalwatch/api/internal/model"
)

type ingestFixture struct {
	devices       *fakeDeviceStore
	readings      *fakeReadingStore
	patients      *fakePatientTracker
	predictor     *stubPredictor
	alertStore    *fakeAlertStore
	notifications *fakeNotificationStore
	recipients    *fakeRecipientStore
	publisher     *fakePublisher
	svc           *IngestService
}

func newIngestFixture() *ingestFixture {
	f := &ingestFixture{
		devices:       newFakeDeviceStore(),
		readings:      &fakeReadingStore{},
		patients:      &fakePatientTracker{},
		predictor:     &stubPredictor{prediction: model.Prediction{RiskLevel: "low", Confidence: 10}},
		alertStore:    &fakeAlertStore{},
		notifications: &fakeNotificationStore{},
		recipients:    &fakeRecipientStore{},
		publisher:     newFakePublisher(),
	}

	vitals := NewVitalsService(f.readings, f.predictor, 10*time.Minute)
	alerts := NewAlertService(f.alertStore, f.notifications, f.recipients, f.publisher, nil, nil)
	f.svc = NewIngestService(f.devices, f.readings, f.patients, vitals, f.predictor, alerts, f.publisher)
	return f
}

func TestProcessReading_HappyPath(t *testing.T) {
	f := newIngestFixture()

	resp, err := f.svc.ProcessReading(context.Background(), model.IngestPayload{
		PatientID: "PT010",
		HeartRate: 75.0,
		Spo2:      98.0,
	})
	require.NoError(t, err)

	require.Equal(t, "Reading received", resp.Message)
	require.Equal(t, "PT010", resp.PatientID)
	require.Equal(t, 0, resp.AlertCount)
	require.Equal(t, "low", resp.Prediction.RiskLevel)
	require.NotNil(t, resp.LastUpdatedAt)

	require.Len(t, f.readings.readings, 1)
	require.Equal(t, []string{"PT010"}, f.patients.touched)

	// Telemetry always goes out
	require.Len(t, f.publisher.broadcasts, 1)
	require.Equal(t, model.WSEventTelemetry, f.publisher.broadcasts[0].Type)
}

func TestProcessReading_FirstReadingProvisionsDevice(t *testing.T) {
	f := newIngestFixture()

	_, err := f.svc.ProcessReading(context.Background(), model.IngestPayload{
		PatientID: "PT010",
		DeviceID:  "esp32-ward-1",
		DeviceKey: "secret",
		WifiSSID:  "ward-wifi",
	})
	require.NoError(t, err)

	device, err := f.devices.FindByPatientID("PT010")
	require.NoError(t, err)
	require.Equal(t, "esp32-ward-1", device.DeviceID)
	require.Equal(t, "secret", device.DeviceKey)
	require.Equal(t, "ward-wifi", device.WifiSSID)
	require.NotNil(t, device.LastSeenAt)
}

func TestProcessReading_ProvisionsWithoutKey(t *testing.T) {
	f := newIngestFixture()

	_, err := f.svc.ProcessReading(context.Background(), model.IngestPayload{
		PatientID: "PT011",
	})
	require.NoError(t, err)

	device, err := f.devices.FindByPatientID("PT011")
	require.NoError(t, err)
	require.Equal(t, "", device.DeviceKey)
	require.Len(t, f.readings.readings, 1)
}

func TestProcessReading_KeyMismatchAbortsBeforePersist(t *testing.T) {
	f := newIngestFixture()
	f.devices.devices["PT010"] = model.Device{PatientID: "PT010", DeviceID: "esp32-a", DeviceKey: "stored"}

	_, err := f.svc.ProcessReading(context.Background(), model.IngestPayload{
		PatientID: "PT010",
		DeviceKey: "wrong",
	})
	require.ErrorIs(t, err, ErrInvalidDeviceKey)

	// Nothing persisted, nothing broadcast
	require.Empty(t, f.readings.readings)
	require.Empty(t, f.patients.touched)
	require.Empty(t, f.publisher.broadcasts)
	require.Empty(t, f.alertStore.created)
}

func TestProcessReading_MissingKeyAcceptedForRegisteredDevice(t *testing.T) {
	f := newIngestFixture()
	f.devices.devices["PT010"] = model.Device{PatientID: "PT010", DeviceID: "esp32-a", DeviceKey: "stored"}

	_, err := f.svc.ProcessReading(context.Background(), model.IngestPayload{
		PatientID: "PT010",
		DeviceID:  "esp32-b",
	})
	require.NoError(t, err)
	require.Len(t, f.readings.readings, 1)

	// Metadata refreshed, stored key kept
	device, err := f.devices.FindByPatientID("PT010")
	require.NoError(t, err)
	require.Equal(t, "esp32-b", device.DeviceID)
	require.Equal(t, "stored", device.DeviceKey)
}

func TestProcessReading_RegistryLookupFailureDoesNotBlock(t *testing.T) {
	f := newIngestFixture()
	f.devices.findErr = errors.New("registry down")

	resp, err := f.svc.ProcessReading(context.Background(), model.IngestPayload{PatientID: "PT010"})
	require.NoError(t, err)
	require.Equal(t, "Reading received", resp.Message)
	require.Len(t, f.readings.readings, 1)
}

func TestProcessReading_ReadingPersistFailureIsReturned(t *testing.T) {
	f := newIngestFixture()
	f.readings.createErr = errors.New("disk full")

	_, err := f.svc.ProcessReading(context.Background(), model.IngestPayload{PatientID: "PT010"})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidDeviceKey)
	require.Empty(t, f.publisher.broadcasts)
}

func TestProcessReading_TouchFailureIsSkipped(t *testing.T) {
	f := newIngestFixture()
	f.patients.err = errors.New("patients table locked")

	resp, err := f.svc.ProcessReading(context.Background(), model.IngestPayload{PatientID: "PT010"})
	require.NoError(t, err)
	require.Equal(t, 0, resp.AlertCount)
	require.Len(t, f.readings.readings, 1)
}

func TestProcessReading_UnavailablePredictionStillIngests(t *testing.T) {
	f := newIngestFixture()
	f.predictor.prediction = model.Prediction{RiskLevel: "Unavailable", Confidence: 0}

	resp, err := f.svc.ProcessReading(context.Background(), model.IngestPayload{PatientID: "PT010"})
	require.NoError(t, err)
	require.Equal(t, "Unavailable", resp.Prediction.RiskLevel)
	require.Equal(t, 0, resp.AlertCount)
	require.Len(t, f.readings.readings, 1)
	require.Len(t, f.publisher.broadcasts, 1)
}

func TestProcessReading_AlertCountMatchesFiredRules(t *testing.T) {
	f := newIngestFixture()

	resp, err := f.svc.ProcessReading(context.Background(), model.IngestPayload{
		PatientID: "PT010",
		HeartRate: 150.0,
		Spo2:      85.0,
	})
	require.NoError(t, err)
	require.Equal(t, 2, resp.AlertCount)
	require.Len(t, f.alertStore.created, 2)

	// Two alert events plus one telemetry event
	types := []string{}
	for _, e := range f.publisher.broadcasts {
		types = append(types, e.Type)
	}
	require.Equal(t, []string{model.WSEventAlert, model.WSEventAlert, model.WSEventTelemetry}, types)
}

func TestProcessReading_MalformedPayloadRepairedAndIngested(t *testing.T) {
	f := newIngestFixture()

	resp, err := f.svc.ProcessReading(context.Background(), model.IngestPayload{
		HeartRate:   "garbage",
		Temperature: nil,
	})
	require.NoError(t, err)
	require.Equal(t, DefaultPatientID, resp.PatientID)
	require.Len(t, f.readings.readings, 1)
	require.Equal(t, FallbackHeartRate, f.readings.readings[0].HeartRate)
	require.Equal(t, FallbackTemperature, f.readings.readings[0].Temperature)
}
