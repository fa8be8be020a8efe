package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vitalwatch/api/internal/model"
	"github.com/vitalwatch/api/internal/repository"
	"github.com/vitalwatch/api/pkg/auth"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Auth errors surfaced to the HTTP boundary
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPatientNotFound    = errors.New("patient not found")
	ErrPhoneNotLinked     = errors.New("phone number is not linked to this patient")
	ErrFamilyExists       = errors.New("family account already exists for this phone number")
)

var nonDigits = regexp.MustCompile(`\D`)

// AuthService handles login and family-account provisioning. Credential
// management is a boundary concern: the ingestion pipeline never touches it.
type AuthService struct {
	userRepo    *repository.UserRepository
	patientRepo *repository.PatientRepository
	jwtManager  *auth.JWTManager
	rdb         *redis.Client
}

func NewAuthService(
	userRepo *repository.UserRepository,
	patientRepo *repository.PatientRepository,
	jwtManager *auth.JWTManager,
	rdb *redis.Client,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		patientRepo: patientRepo,
		jwtManager:  jwtManager,
		rdb:         rdb,
	}
}

// Login authenticates staff by email and password
func (s *AuthService) Login(req model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(strings.ToLower(req.Email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.sessionFor(user)
}

// FamilyRegister creates a family account for a patient. The supplied
// phone number must match one of the patient's registered family members
// or the patient's own phone.
func (s *AuthService) FamilyRegister(req model.FamilyRegisterRequest) (*model.LoginResponse, error) {
	patient, err := s.patientRepo.FindByPatientID(req.PatientID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, err
	}

	phone := normalizePhone(req.PhoneNumber)
	var matched *model.FamilyMember
	for i := range patient.FamilyMembers {
		if normalizePhone(patient.FamilyMembers[i].PhoneNumber) == phone {
			matched = &patient.FamilyMembers[i]
			break
		}
	}
	if matched == nil && normalizePhone(patient.PhoneNumber) != phone {
		return nil, ErrPhoneNotLinked
	}

	existing, err := s.userRepo.FindFamilyByPatient(req.PatientID)
	if err != nil {
		return nil, err
	}
	for _, account := range existing {
		if normalizePhone(account.PhoneNumber) == phone {
			return nil, ErrFamilyExists
		}
	}

	name := req.Name
	if name == "" && matched != nil {
		name = matched.Name
	}
	if name == "" {
		name = fmt.Sprintf("Family %s", req.PatientID)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	last4 := "0000"
	if len(phone) >= 4 {
		last4 = phone[len(phone)-4:]
	}
	linked := req.PatientID
	user := &model.User{
		Name:            name,
		Email:           fmt.Sprintf("family.%s.%s@vitalwatch.local", strings.ToLower(req.PatientID), last4),
		Password:        string(hashedPassword),
		Role:            model.RoleFamily,
		LinkedPatientID: &linked,
		PhoneNumber:     phone,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, errors.New("failed to create family account")
	}

	return s.sessionFor(user)
}

// FamilyLogin authenticates a family account by patient and phone number
func (s *AuthService) FamilyLogin(req model.FamilyLoginRequest) (*model.LoginResponse, error) {
	candidates, err := s.userRepo.FindFamilyByPatient(req.PatientID)
	if err != nil {
		return nil, err
	}

	phone := normalizePhone(req.PhoneNumber)
	for i := range candidates {
		if normalizePhone(candidates[i].PhoneNumber) != phone {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(candidates[i].Password), []byte(req.Password)) == nil {
			return s.sessionFor(&candidates[i])
		}
	}
	return nil, ErrInvalidCredentials
}

// GetProfile returns the safe profile of the given user
func (s *AuthService) GetProfile(userID uuid.UUID) (model.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return model.UserResponse{}, errors.New("user not found")
	}
	return user.ToResponse(), nil
}

// Logout blacklists the token until its natural expiry
func (s *AuthService) Logout(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, "blacklist:"+token, "1", ttl).Err()
}

func (s *AuthService) sessionFor(user *model.User) (*model.LoginResponse, error) {
	linked := ""
	if user.LinkedPatientID != nil {
		linked = *user.LinkedPatientID
	}

	token, expiresAt, err := s.jwtManager.GenerateToken(user.ID, user.Email, user.Name, string(user.Role), linked)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &model.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.ToResponse(),
	}, nil
}

// normalizePhone strips everything but digits so formatting differences
// never break matching
func normalizePhone(value string) string {
	return nonDigits.ReplaceAllString(value, "")
}
