package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitalwatch/api/internal/model"
	"gorm.io/gorm"
)

// ReadingStore is the persistence surface the vitals pipeline needs
type ReadingStore interface {
	Create(reading *model.SensorReading) error
	FindLatest(patientID string) (*model.SensorReading, error)
	FindRecent(patientID string, limit int) ([]model.SensorReading, error)
}

// Predictor delegates vitals to the external risk model. Implementations
// never fail: they return the Unavailable sentinel instead.
type Predictor interface {
	Predict(ctx context.Context, vitals model.LiveVitals) model.Prediction
}

// VitalsService resolves the current displayable state for a patient from
// persisted history. Live state is always derived from the newest stored
// reading; there is deliberately no in-process latest-reading cache.
type VitalsService struct {
	readings       ReadingStore
	predictor      Predictor
	staleThreshold time.Duration
}

func NewVitalsService(readings ReadingStore, predictor Predictor, staleThreshold time.Duration) *VitalsService {
	return &VitalsService{
		readings:       readings,
		predictor:      predictor,
		staleThreshold: staleThreshold,
	}
}

// GetLive returns the patient's current vitals with staleness. When no
// reading was ever persisted the fallback constants are returned with a
// nil timestamp.
func (s *VitalsService) GetLive(patientID string) (model.LiveVitals, error) {
	reading, err := s.readings.FindLatest(patientID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.LiveVitals{
			PatientID:   patientID,
			HeartRate:   FallbackHeartRate,
			Temperature: FallbackTemperature,
			Spo2:        FallbackSpo2,
			EcgMean:     FallbackEcgMean,
			IsStale:     true,
		}, nil
	}
	if err != nil {
		return model.LiveVitals{}, fmt.Errorf("failed to load latest reading: %w", err)
	}
	return s.liveFromReading(reading), nil
}

// GetPrediction resolves the live state and asks the risk model about it
func (s *VitalsService) GetPrediction(ctx context.Context, patientID string) (model.PredictionResponse, error) {
	live, err := s.GetLive(patientID)
	if err != nil {
		return model.PredictionResponse{}, err
	}

	return model.PredictionResponse{
		Prediction:    s.predictor.Predict(ctx, live),
		LastUpdatedAt: live.LastUpdatedAt,
		IsStale:       live.IsStale,
	}, nil
}

// liveFromReading builds the displayable state for one persisted reading
func (s *VitalsService) liveFromReading(reading *model.SensorReading) model.LiveVitals {
	recordedAt := reading.RecordedAt
	return model.LiveVitals{
		PatientID:     reading.PatientID,
		HeartRate:     reading.HeartRate,
		Temperature:   reading.Temperature,
		Spo2:          reading.Spo2,
		EcgMean:       reading.EcgMean,
		LastUpdatedAt: &recordedAt,
		IsStale:       s.isStale(&recordedAt, time.Now()),
	}
}

// isStale reports whether the reading timestamp is absent or older than
// the staleness threshold relative to now
func (s *VitalsService) isStale(recordedAt *time.Time, now time.Time) bool {
	if recordedAt == nil || recordedAt.IsZero() {
		return true
	}
	return now.Sub(*recordedAt) > s.staleThreshold
}
