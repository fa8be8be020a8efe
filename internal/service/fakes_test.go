package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vitalwatch/api/internal/model"
	"gorm.io/gorm"
)

// In-memory fakes for the narrow store interfaces the services consume.

type fakeReadingStore struct {
	readings  []model.SensorReading
	createErr error
}

func (f *fakeReadingStore) Create(reading *model.SensorReading) error {
	if f.createErr != nil {
		return f.createErr
	}
	reading.ID = uuid.New()
	if reading.CreatedAt.IsZero() {
		reading.CreatedAt = time.Now()
	}
	f.readings = append(f.readings, *reading)
	return nil
}

func (f *fakeReadingStore) FindLatest(patientID string) (*model.SensorReading, error) {
	rows, err := f.FindRecent(patientID, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (f *fakeReadingStore) FindRecent(patientID string, limit int) ([]model.SensorReading, error) {
	rows := []model.SensorReading{}
	for _, r := range f.readings {
		if r.PatientID == patientID {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].RecordedAt.Equal(rows[j].RecordedAt) {
			return rows[i].RecordedAt.After(rows[j].RecordedAt)
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

type stubPredictor struct {
	prediction model.Prediction
	calls      []model.LiveVitals
}

func (s *stubPredictor) Predict(_ context.Context, vitals model.LiveVitals) model.Prediction {
	s.calls = append(s.calls, vitals)
	return s.prediction
}

type fakeDeviceStore struct {
	devices   map[string]model.Device
	findErr   error
	upsertErr error
	upserts   []model.Device
}

func newFakeDeviceStore() *fakeDeviceStore {
	return &fakeDeviceStore{devices: map[string]model.Device{}}
}

func (f *fakeDeviceStore) FindByPatientID(patientID string) (*model.Device, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	device, ok := f.devices[patientID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &device, nil
}

func (f *fakeDeviceStore) Upsert(device *model.Device) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, *device)
	f.devices[device.PatientID] = *device
	return nil
}

type fakePatientTracker struct {
	touched []string
	err     error
}

func (f *fakePatientTracker) TouchLastActive(patientID string, _ time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.touched = append(f.touched, patientID)
	return nil
}

type fakeAlertStore struct {
	created []model.Alert
	err     error
}

func (f *fakeAlertStore) Create(alert *model.Alert) error {
	if f.err != nil {
		return f.err
	}
	alert.ID = uuid.New()
	f.created = append(f.created, *alert)
	return nil
}

type fakeNotificationStore struct {
	created []model.Notification
	err     error
}

func (f *fakeNotificationStore) CreateBatch(notifications []model.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, notifications...)
	return nil
}

type fakeRecipientStore struct {
	users []model.User
	err   error
}

func (f *fakeRecipientStore) FindAlertRecipients(string) ([]model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users, nil
}

type fakePublisher struct {
	broadcasts []model.WSEvent
	perUser    map[uuid.UUID][]model.WSEvent
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{perUser: map[uuid.UUID][]model.WSEvent{}}
}

func (f *fakePublisher) Broadcast(event *model.WSEvent) {
	f.broadcasts = append(f.broadcasts, *event)
}

func (f *fakePublisher) SendToUser(userID uuid.UUID, event *model.WSEvent) {
	f.perUser[userID] = append(f.perUser[userID], *event)
}
