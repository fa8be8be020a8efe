package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/vitalwatch/api/internal/model"
)

// RiskLevelUnavailable is the sentinel returned when the risk model cannot
// be reached or answers with garbage
const RiskLevelUnavailable = "Unavailable"

// Unavailable returns the sentinel prediction
func Unavailable() model.Prediction {
	return model.Prediction{
		RiskLevel:  RiskLevelUnavailable,
		Confidence: 0,
		Systolic:   nil,
		Diastolic:  nil,
	}
}

// Client calls the external risk-prediction service. Predict never returns
// an error: any transport failure, timeout or malformed response degrades
// to the sentinel so ingestion is never blocked by the model.
type Client struct {
	url        string
	httpClient *http.Client
}

// New creates a prediction client. The timeout bounds every request so a
// stalled model cannot hold up the ingestion pipeline.
func New(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type requestBody struct {
	HeartRate   float64 `json:"heartRate"`
	Temperature float64 `json:"temperature"`
	Spo2        float64 `json:"spo2"`
	EcgMean     float64 `json:"ecgMean"`
}

// responseBody tolerates loosely-typed fields from the model service
type responseBody struct {
	RiskLevel  any `json:"riskLevel"`
	Confidence any `json:"confidence"`
	Systolic   any `json:"systolic"`
	Diastolic  any `json:"diastolic"`
}

// Predict sends the four vitals to the model and returns its risk estimate,
// or the Unavailable sentinel on any failure
func (c *Client) Predict(ctx context.Context, vitals model.LiveVitals) model.Prediction {
	payload, err := json.Marshal(requestBody{
		HeartRate:   vitals.HeartRate,
		Temperature: vitals.Temperature,
		Spo2:        vitals.Spo2,
		EcgMean:     vitals.EcgMean,
	})
	if err != nil {
		return Unavailable()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return Unavailable()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("⚠️  Prediction service unreachable: %v", err)
		return Unavailable()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("⚠️  Prediction service returned status %d", resp.StatusCode)
		return Unavailable()
	}

	var body responseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("⚠️  Prediction service sent malformed response: %v", err)
		return Unavailable()
	}

	riskLevel, _ := body.RiskLevel.(string)
	if riskLevel == "" {
		riskLevel = "Unknown"
	}

	return model.Prediction{
		RiskLevel:  riskLevel,
		Confidence: finiteOrZero(body.Confidence),
		Systolic:   finiteOrNil(body.Systolic),
		Diastolic:  finiteOrNil(body.Diastolic),
	}
}

// toFinite coerces a decoded JSON value to a finite float64
func toFinite(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, false
		}
		return parsed, true
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func finiteOrZero(value any) float64 {
	if v, ok := toFinite(value); ok {
		return v
	}
	return 0
}

func finiteOrNil(value any) *float64 {
	if v, ok := toFinite(value); ok {
		return &v
	}
	return nil
}
