package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vitalwatch/api/internal/model"
)

// Fallback constants substituted for missing or non-finite vitals.
// Embedded devices send malformed values transiently; a reading is never
// rejected for its shape, it is repaired.
const (
	FallbackHeartRate   = 80.0
	FallbackTemperature = 98.6
	FallbackSpo2        = 97.0
	FallbackEcgMean     = 1.0
)

// Defaults for absent identity fields
const (
	DefaultPatientID = "PT001"
	DefaultDeviceID  = "esp32-default"
	DefaultWifiSSID  = "unknown"
)

// NormalizeReading coerces an arbitrary inbound payload into a canonical
// reading. Every output field is concrete: numbers fall back to the
// documented constants, the timestamp falls back through the alternate
// field to the ingestion instant.
func NormalizeReading(payload model.IngestPayload, ingestedAt time.Time) model.NormalizedReading {
	recordedAt, ok := parseTimestamp(payload.RecordedAt)
	if !ok {
		recordedAt, ok = parseTimestamp(payload.Timestamp)
	}
	if !ok {
		recordedAt = ingestedAt
	}

	return model.NormalizedReading{
		PatientID:   stringOrDefault(payload.PatientID, DefaultPatientID),
		DeviceID:    stringOrDefault(payload.DeviceID, DefaultDeviceID),
		DeviceKey:   stringOrDefault(payload.DeviceKey, ""),
		WifiSSID:    stringOrDefault(payload.WifiSSID, DefaultWifiSSID),
		HeartRate:   numberOrFallback(payload.HeartRate, FallbackHeartRate),
		Temperature: numberOrFallback(payload.Temperature, FallbackTemperature),
		Spo2:        numberOrFallback(payload.Spo2, FallbackSpo2),
		EcgMean:     numberOrFallback(payload.EcgMean, FallbackEcgMean),
		RecordedAt:  recordedAt,
	}
}

// numberOrFallback parses a loosely-typed value as a number and substitutes
// the fallback when the result is not finite
func numberOrFallback(value any, fallback float64) float64 {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fallback
		}
		return v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return fallback
		}
		return parsed
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return fallback
		}
		return parsed
	default:
		return fallback
	}
}

// stringOrDefault renders a scalar as a string, substituting the default
// for nil or empty values
func stringOrDefault(value any, fallback string) string {
	switch v := value.(type) {
	case string:
		if v == "" {
			return fallback
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool, int:
		return fmt.Sprintf("%v", v)
	default:
		return fallback
	}
}

// parseTimestamp accepts an RFC3339 string or a numeric epoch value
// (seconds or milliseconds)
func parseTimestamp(value any) (time.Time, bool) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return time.Time{}, false
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, true
		}
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t, true
		}
		return time.Time{}, false
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return time.Time{}, false
		}
		// Heuristic: values past the year 2286 in seconds are milliseconds
		if v > 1e10 {
			return time.UnixMilli(int64(v)).UTC(), true
		}
		return time.Unix(int64(v), 0).UTC(), true
	default:
		return time.Time{}, false
	}
}
