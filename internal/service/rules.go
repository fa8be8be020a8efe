package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vitalwatch/api/internal/model"
)

// Fixed alert thresholds
const (
	HeartRateUpper   = 130.0
	HeartRateLower   = 45.0
	Spo2Lower        = 90.0
	TemperatureUpper = 39.0
	TemperatureLower = 35.0

	// highRiskLevel is matched case-insensitively against the model output
	highRiskLevel = "high"
)

// AlertCandidate is one satisfied rule, not yet persisted
type AlertCandidate struct {
	Severity model.Severity
	Type     string
	Message  string
}

// EvaluateRules applies the fixed rule set to a reading and its prediction.
// Rules are independent: a single reading can satisfy several at once, and
// the returned order is the fixed evaluation order.
func EvaluateRules(vitals model.LiveVitals, prediction model.Prediction) []AlertCandidate {
	candidates := []AlertCandidate{}

	if vitals.HeartRate > HeartRateUpper || vitals.HeartRate < HeartRateLower {
		candidates = append(candidates, AlertCandidate{
			Severity: model.SeverityCritical,
			Type:     model.AlertTypeHeartRate,
			Message:  fmt.Sprintf("Abnormal heart rate detected (%s bpm).", formatVital(vitals.HeartRate)),
		})
	}

	if vitals.Spo2 < Spo2Lower {
		candidates = append(candidates, AlertCandidate{
			Severity: model.SeverityCritical,
			Type:     model.AlertTypeSpo2,
			Message:  fmt.Sprintf("Critical SpO2 detected (%s%%).", formatVital(vitals.Spo2)),
		})
	}

	if vitals.Temperature >= TemperatureUpper || vitals.Temperature < TemperatureLower {
		candidates = append(candidates, AlertCandidate{
			Severity: model.SeverityHigh,
			Type:     model.AlertTypeTemperature,
			Message:  fmt.Sprintf("Temperature out of safe range (%s C).", formatVital(vitals.Temperature)),
		})
	}

	if strings.EqualFold(prediction.RiskLevel, highRiskLevel) {
		candidates = append(candidates, AlertCandidate{
			Severity: model.SeverityHigh,
			Type:     model.AlertTypeMLRisk,
			Message:  fmt.Sprintf("Model marked patient as high risk (%s%% confidence).", formatVital(prediction.Confidence)),
		})
	}

	return candidates
}

// formatVital renders a vital without trailing zeros
func formatVital(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
