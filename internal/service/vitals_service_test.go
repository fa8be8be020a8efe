package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vitalwatch/api/internal/model"
)

func TestVitalsService_GetLive_NoReadingsReturnsFallbacks(t *testing.T) {
	svc := NewVitalsService(&fakeReadingStore{}, &stubPredictor{}, 10*time.Minute)

	live, err := svc.GetLive("PT009")
	require.NoError(t, err)
	require.Equal(t, "PT009", live.PatientID)
	require.Equal(t, FallbackHeartRate, live.HeartRate)
	require.Equal(t, FallbackTemperature, live.Temperature)
	require.Equal(t, FallbackSpo2, live.Spo2)
	require.Equal(t, FallbackEcgMean, live.EcgMean)
	require.Nil(t, live.LastUpdatedAt)
	require.True(t, live.IsStale)
}

func TestVitalsService_GetLive_FreshReading(t *testing.T) {
	store := &fakeReadingStore{}
	recordedAt := time.Now().Add(-2 * time.Minute)
	require.NoError(t, store.Create(&model.SensorReading{
		PatientID: "PT001", HeartRate: 72, Temperature: 98.1, Spo2: 98, EcgMean: 1.1,
		RecordedAt: recordedAt,
	}))

	svc := NewVitalsService(store, &stubPredictor{}, 10*time.Minute)

	live, err := svc.GetLive("PT001")
	require.NoError(t, err)
	require.Equal(t, 72.0, live.HeartRate)
	require.NotNil(t, live.LastUpdatedAt)
	require.True(t, live.LastUpdatedAt.Equal(recordedAt))
	require.False(t, live.IsStale)
}

func TestVitalsService_GetLive_OldReadingIsStale(t *testing.T) {
	store := &fakeReadingStore{}
	require.NoError(t, store.Create(&model.SensorReading{
		PatientID: "PT001", HeartRate: 72,
		RecordedAt: time.Now().Add(-11 * time.Minute),
	}))

	svc := NewVitalsService(store, &stubPredictor{}, 10*time.Minute)

	live, err := svc.GetLive("PT001")
	require.NoError(t, err)
	require.True(t, live.IsStale)
	// Stale values are still served, never blanked
	require.Equal(t, 72.0, live.HeartRate)
}

func TestVitalsService_GetLive_NewestReadingWins(t *testing.T) {
	store := &fakeReadingStore{}
	now := time.Now()
	require.NoError(t, store.Create(&model.SensorReading{
		PatientID: "PT001", HeartRate: 70, RecordedAt: now.Add(-5 * time.Minute),
	}))
	require.NoError(t, store.Create(&model.SensorReading{
		PatientID: "PT001", HeartRate: 95, RecordedAt: now.Add(-1 * time.Minute),
	}))
	require.NoError(t, store.Create(&model.SensorReading{
		PatientID: "PT002", HeartRate: 120, RecordedAt: now,
	}))

	svc := NewVitalsService(store, &stubPredictor{}, 10*time.Minute)

	live, err := svc.GetLive("PT001")
	require.NoError(t, err)
	require.Equal(t, 95.0, live.HeartRate)
}

func TestVitalsService_StalenessThresholdBoundary(t *testing.T) {
	svc := NewVitalsService(&fakeReadingStore{}, &stubPredictor{}, 10*time.Minute)
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	// A reading aged exactly the threshold is still fresh
	atThreshold := now.Add(-10 * time.Minute)
	require.False(t, svc.isStale(&atThreshold, now))

	// Anything older tips over
	justPast := now.Add(-10*time.Minute - time.Nanosecond)
	require.True(t, svc.isStale(&justPast, now))

	require.True(t, svc.isStale(nil, now))
	zero := time.Time{}
	require.True(t, svc.isStale(&zero, now))
}

func TestVitalsService_GetPrediction_CarriesFreshness(t *testing.T) {
	store := &fakeReadingStore{}
	recordedAt := time.Now().Add(-20 * time.Minute)
	require.NoError(t, store.Create(&model.SensorReading{
		PatientID: "PT001", HeartRate: 80, RecordedAt: recordedAt,
	}))

	predictor := &stubPredictor{prediction: model.Prediction{RiskLevel: "medium", Confidence: 55}}
	svc := NewVitalsService(store, predictor, 10*time.Minute)

	resp, err := svc.GetPrediction(context.Background(), "PT001")
	require.NoError(t, err)
	require.Equal(t, "medium", resp.RiskLevel)
	require.Equal(t, 55.0, resp.Confidence)
	require.True(t, resp.IsStale)
	require.NotNil(t, resp.LastUpdatedAt)

	// The model was asked about the stored vitals
	require.Len(t, predictor.calls, 1)
	require.Equal(t, 80.0, predictor.calls[0].HeartRate)
}
