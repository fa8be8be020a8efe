package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/vitalwatch/api/internal/model"
	"gorm.io/gorm"
)

// ErrInvalidDeviceKey aborts the pipeline before anything is persisted
var ErrInvalidDeviceKey = errors.New("invalid device key")

// DeviceStore is the registry surface used during ingestion
type DeviceStore interface {
	FindByPatientID(patientID string) (*model.Device, error)
	Upsert(device *model.Device) error
}

// PatientTracker updates the patient's last-active marker
type PatientTracker interface {
	TouchLastActive(patientID string, at time.Time) error
}

// IngestService runs the pipeline for every reading a device sends:
// normalize, authenticate, persist, resolve live state, predict, evaluate
// rules, fan out alerts, broadcast telemetry. Invocations are independent
// and may run concurrently; ordering between near-simultaneous readings is
// decided by stored timestamps, not call order.
type IngestService struct {
	devices   DeviceStore
	readings  ReadingStore
	patients  PatientTracker
	vitals    *VitalsService
	predictor Predictor
	alerts    *AlertService
	publisher EventPublisher
}

func NewIngestService(
	devices DeviceStore,
	readings ReadingStore,
	patients PatientTracker,
	vitals *VitalsService,
	predictor Predictor,
	alerts *AlertService,
	publisher EventPublisher,
) *IngestService {
	return &IngestService{
		devices:   devices,
		readings:  readings,
		patients:  patients,
		vitals:    vitals,
		predictor: predictor,
		alerts:    alerts,
		publisher: publisher,
	}
}

// ProcessReading runs one pipeline invocation. Only a device-key mismatch
// aborts it (ErrInvalidDeviceKey); every other step degrades: prediction
// failure yields the sentinel, auxiliary write failures are logged and
// skipped. A failure persisting the reading itself is returned, since
// later queries depend on that row.
func (s *IngestService) ProcessReading(ctx context.Context, payload model.IngestPayload) (*model.IngestResponse, error) {
	normalized := NormalizeReading(payload, time.Now())

	if err := s.registerDevice(normalized); err != nil {
		return nil, err
	}

	reading := &model.SensorReading{
		PatientID:   normalized.PatientID,
		HeartRate:   normalized.HeartRate,
		Temperature: normalized.Temperature,
		Spo2:        normalized.Spo2,
		EcgMean:     normalized.EcgMean,
		RecordedAt:  normalized.RecordedAt,
	}
	if err := s.readings.Create(reading); err != nil {
		return nil, fmt.Errorf("failed to persist reading: %w", err)
	}

	if err := s.patients.TouchLastActive(normalized.PatientID, normalized.RecordedAt); err != nil {
		log.Printf("⚠️  Failed to update last-active for %s: %v", normalized.PatientID, err)
	}

	live := s.vitals.liveFromReading(reading)
	prediction := s.predictor.Predict(ctx, live)

	candidates := EvaluateRules(live, prediction)
	alertCount := s.alerts.Dispatch(ctx, normalized.PatientID, candidates, live, prediction, time.Now())

	// Telemetry goes out for every reading, whether or not a rule fired
	s.publisher.Broadcast(&model.WSEvent{
		Type: model.WSEventTelemetry,
		Payload: model.TelemetryEvent{
			PatientID:  normalized.PatientID,
			LiveData:   live,
			Prediction: prediction,
		},
	})

	lastUpdatedAt := normalized.RecordedAt
	return &model.IngestResponse{
		Message:       "Reading received",
		PatientID:     normalized.PatientID,
		AlertCount:    alertCount,
		Prediction:    prediction,
		LastUpdatedAt: &lastUpdatedAt,
	}, nil
}

// registerDevice authenticates the sender and upserts the registry entry.
// A stored device rejects payloads presenting a different key; payloads
// without a key are treated as trusted legacy updates. Unseen patients are
// provisioned from the payload, key or not.
func (s *IngestService) registerDevice(normalized model.NormalizedReading) error {
	recordedAt := normalized.RecordedAt

	device, err := s.devices.FindByPatientID(normalized.PatientID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		// Registry unreadable: ingest anyway, the reading log is what
		// downstream queries depend on
		log.Printf("⚠️  Device registry lookup failed for %s: %v", normalized.PatientID, err)
		return nil
	}

	if device != nil && normalized.DeviceKey != "" && device.DeviceKey != normalized.DeviceKey {
		return ErrInvalidDeviceKey
	}

	entry := &model.Device{
		PatientID:  normalized.PatientID,
		DeviceID:   normalized.DeviceID,
		DeviceKey:  normalized.DeviceKey,
		WifiSSID:   normalized.WifiSSID,
		LastSeenAt: &recordedAt,
	}
	if device != nil {
		// Refresh metadata only; the stored key is never overwritten
		entry.DeviceKey = device.DeviceKey
	}

	if err := s.devices.Upsert(entry); err != nil {
		log.Printf("⚠️  Device registry update failed for %s: %v", normalized.PatientID, err)
	}
	return nil
}
