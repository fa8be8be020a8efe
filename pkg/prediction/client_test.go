package prediction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vitalwatch/api/internal/model"
)

func TestPredict_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var body map[string]float64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, 150.0, body["heartRate"])

		json.NewEncoder(w).Encode(map[string]any{
			"riskLevel":  "high",
			"confidence": 91.5,
			"systolic":   128.0,
			"diastolic":  84.0,
		})
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	got := client.Predict(context.Background(), model.LiveVitals{HeartRate: 150, Temperature: 98.6, Spo2: 97, EcgMean: 1.0})

	require.Equal(t, "high", got.RiskLevel)
	require.Equal(t, 91.5, got.Confidence)
	require.NotNil(t, got.Systolic)
	require.Equal(t, 128.0, *got.Systolic)
	require.NotNil(t, got.Diastolic)
	require.Equal(t, 84.0, *got.Diastolic)
}

func TestPredict_UnreachableServiceReturnsSentinel(t *testing.T) {
	// Nothing is listening here
	client := New("http://127.0.0.1:1/predict", 200*time.Millisecond)

	got := client.Predict(context.Background(), model.LiveVitals{})

	require.Equal(t, RiskLevelUnavailable, got.RiskLevel)
	require.Equal(t, 0.0, got.Confidence)
	require.Nil(t, got.Systolic)
	require.Nil(t, got.Diastolic)
}

func TestPredict_ErrorStatusReturnsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	got := New(srv.URL, time.Second).Predict(context.Background(), model.LiveVitals{})
	require.Equal(t, RiskLevelUnavailable, got.RiskLevel)
}

func TestPredict_MalformedBodyReturnsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("riskLevel: high"))
	}))
	defer srv.Close()

	got := New(srv.URL, time.Second).Predict(context.Background(), model.LiveVitals{})
	require.Equal(t, RiskLevelUnavailable, got.RiskLevel)
}

func TestPredict_LooselyTypedFieldsAreCoerced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Numbers as strings, pressure fields missing
		w.Write([]byte(`{"riskLevel": "medium", "confidence": "62.5"}`))
	}))
	defer srv.Close()

	got := New(srv.URL, time.Second).Predict(context.Background(), model.LiveVitals{})
	require.Equal(t, "medium", got.RiskLevel)
	require.Equal(t, 62.5, got.Confidence)
	require.Nil(t, got.Systolic)
	require.Nil(t, got.Diastolic)
}

func TestPredict_MissingRiskLevelBecomesUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"confidence": 40}`))
	}))
	defer srv.Close()

	got := New(srv.URL, time.Second).Predict(context.Background(), model.LiveVitals{})
	require.Equal(t, "Unknown", got.RiskLevel)
	require.Equal(t, 40.0, got.Confidence)
}

func TestPredict_TimeoutReturnsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"riskLevel": "low"}`))
	}))
	defer srv.Close()

	got := New(srv.URL, 50*time.Millisecond).Predict(context.Background(), model.LiveVitals{})
	require.Equal(t, RiskLevelUnavailable, got.RiskLevel)
}
