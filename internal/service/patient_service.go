package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/vitalwatch/api/internal/model"
	"github.com/vitalwatch/api/internal/repository"
	"gorm.io/gorm"
)

const previousRecordsLimit = 20

// PatientService serves patient profiles for the dashboard. Profiles are
// best-effort: devices can stream readings for a patient nobody has
// registered yet, so detail lookups synthesize a placeholder instead of
// failing.
type PatientService struct {
	patientRepo *repository.PatientRepository
	readingRepo *repository.ReadingRepository
	vitals      *VitalsService
	predictor   Predictor
}

func NewPatientService(
	patientRepo *repository.PatientRepository,
	readingRepo *repository.ReadingRepository,
	vitals *VitalsService,
	predictor Predictor,
) *PatientService {
	return &PatientService{
		patientRepo: patientRepo,
		readingRepo: readingRepo,
		vitals:      vitals,
		predictor:   predictor,
	}
}

// ListWithRisk returns every registered patient decorated with the current
// risk level from the prediction model
func (s *PatientService) ListWithRisk(ctx context.Context) ([]model.PatientSummary, error) {
	patients, err := s.patientRepo.List()
	if err != nil {
		return nil, err
	}

	summaries := make([]model.PatientSummary, 0, len(patients))
	for i := range patients {
		p := &patients[i]
		live, err := s.vitals.GetLive(p.PatientID)
		if err != nil {
			return nil, err
		}
		prediction := s.predictor.Predict(ctx, live)

		lastVisit := p.LastActiveAt
		if lastVisit == nil {
			lastVisit = live.LastUpdatedAt
		}

		summaries = append(summaries, model.PatientSummary{
			ID:        p.ID.String(),
			PatientID: p.PatientID,
			Name:      p.Name,
			Age:       p.Age,
			Gender:    titleCase(p.Gender),
			Condition: p.Condition,
			Status:    p.Status,
			RiskLevel: prediction.RiskLevel,
			LastVisit: lastVisit,
		})
	}
	return summaries, nil
}

// GetDetail returns the full profile plus recent readings. Unregistered
// patients that have streamed readings get a synthesized placeholder profile.
func (s *PatientService) GetDetail(patientID string) (*model.PatientDetail, error) {
	patient, err := s.patientRepo.FindByPatientID(patientID)
	complete := true
	if errors.Is(err, gorm.ErrRecordNotFound) {
		patient = placeholderPatient(patientID)
		complete = false
	} else if err != nil {
		return nil, err
	}

	records, err := s.readingRepo.FindRecent(patientID, previousRecordsLimit)
	if err != nil {
		return nil, err
	}

	applyProfileDefaults(patient)

	return &model.PatientDetail{
		Patient:           *patient,
		PreviousRecords:   records,
		IsProfileComplete: complete,
	}, nil
}

// UpdatePhoto stores the uploaded photo URL on the profile
func (s *PatientService) UpdatePhoto(patientID, photoURL string) error {
	return s.patientRepo.UpdatePhotoURL(patientID, photoURL)
}

func placeholderPatient(patientID string) *model.Patient {
	return &model.Patient{
		PatientID: patientID,
		Name:      fmt.Sprintf("Patient %s", patientID),
		Status:    "active",
		Condition: "Unknown",
	}
}

func applyProfileDefaults(p *model.Patient) {
	p.Gender = titleCase(p.Gender)
	if p.PhotoURL == "" {
		p.PhotoURL = fmt.Sprintf(
			"https://ui-avatars.com/api/?name=%s&background=0D8ABC&color=fff",
			url.QueryEscape(p.Name),
		)
	}
	if p.Address == "" {
		p.Address = "Not provided"
	}
	if p.PhoneNumber == "" {
		p.PhoneNumber = "Not provided"
	}
}

func titleCase(value string) string {
	if value == "" {
		return ""
	}
	lower := strings.ToLower(value)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
