package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vitalwatch/api/internal/model"
)

func normalVitals() model.LiveVitals {
	return model.LiveVitals{
		PatientID:   "PT001",
		HeartRate:   80,
		Temperature: 98.6,
		Spo2:        97,
		EcgMean:     1.0,
	}
}

func lowRisk() model.Prediction {
	return model.Prediction{RiskLevel: "low", Confidence: 12}
}

func TestEvaluateRules_NormalVitalsNoAlerts(t *testing.T) {
	require.Empty(t, EvaluateRules(normalVitals(), lowRisk()))
}

func TestEvaluateRules_HeartRate(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		fires bool
	}{
		{"above upper bound", 150, true},
		{"below lower bound", 40, true},
		{"at upper bound", 130, false},
		{"at lower bound", 45, false},
		{"normal", 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vitals := normalVitals()
			vitals.HeartRate = tt.value
			got := EvaluateRules(vitals, lowRisk())
			if !tt.fires {
				require.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			require.Equal(t, model.AlertTypeHeartRate, got[0].Type)
			require.Equal(t, model.SeverityCritical, got[0].Severity)
		})
	}
}

func TestEvaluateRules_HeartRateMessage(t *testing.T) {
	vitals := normalVitals()
	vitals.HeartRate = 150
	got := EvaluateRules(vitals, lowRisk())
	require.Len(t, got, 1)
	require.Equal(t, "Abnormal heart rate detected (150 bpm).", got[0].Message)
}

func TestEvaluateRules_Spo2(t *testing.T) {
	vitals := normalVitals()
	vitals.Spo2 = 85
	got := EvaluateRules(vitals, lowRisk())
	require.Len(t, got, 1)
	require.Equal(t, model.AlertTypeSpo2, got[0].Type)
	require.Equal(t, model.SeverityCritical, got[0].Severity)
	require.Equal(t, "Critical SpO2 detected (85%).", got[0].Message)

	// Boundary: exactly 90 does not fire
	vitals.Spo2 = 90
	require.Empty(t, EvaluateRules(vitals, lowRisk()))
}

func TestEvaluateRules_Temperature(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		fires bool
	}{
		{"high fever", 40, true},
		{"at upper bound fires", 39, true},
		{"hypothermia", 34, true},
		{"at lower bound does not fire", 35, false},
		{"normal", 36.8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vitals := normalVitals()
			vitals.Temperature = tt.value
			got := EvaluateRules(vitals, lowRisk())
			if !tt.fires {
				require.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			require.Equal(t, model.AlertTypeTemperature, got[0].Type)
			require.Equal(t, model.SeverityHigh, got[0].Severity)
		})
	}
}

func TestEvaluateRules_MLRiskCaseInsensitive(t *testing.T) {
	for _, level := range []string{"high", "High", "HIGH"} {
		got := EvaluateRules(normalVitals(), model.Prediction{RiskLevel: level, Confidence: 87})
		require.Len(t, got, 1, "riskLevel=%s", level)
		require.Equal(t, model.AlertTypeMLRisk, got[0].Type)
		require.Equal(t, model.SeverityHigh, got[0].Severity)
		require.Equal(t, "Model marked patient as high risk (87% confidence).", got[0].Message)
	}

	for _, level := range []string{"low", "medium", "Unavailable", ""} {
		require.Empty(t, EvaluateRules(normalVitals(), model.Prediction{RiskLevel: level}), "riskLevel=%s", level)
	}
}

func TestEvaluateRules_MultipleRulesIndependent(t *testing.T) {
	vitals := normalVitals()
	vitals.HeartRate = 150
	vitals.Spo2 = 85

	got := EvaluateRules(vitals, lowRisk())
	require.Len(t, got, 2)
	// Fixed evaluation order
	require.Equal(t, model.AlertTypeHeartRate, got[0].Type)
	require.Equal(t, model.AlertTypeSpo2, got[1].Type)
}

func TestEvaluateRules_AllFourRulesFire(t *testing.T) {
	vitals := normalVitals()
	vitals.HeartRate = 30
	vitals.Spo2 = 80
	vitals.Temperature = 41

	got := EvaluateRules(vitals, model.Prediction{RiskLevel: "high", Confidence: 95})
	require.Len(t, got, 4)
	require.Equal(t, model.AlertTypeHeartRate, got[0].Type)
	require.Equal(t, model.AlertTypeSpo2, got[1].Type)
	require.Equal(t, model.AlertTypeTemperature, got[2].Type)
	require.Equal(t, model.AlertTypeMLRisk, got[3].Type)
}
