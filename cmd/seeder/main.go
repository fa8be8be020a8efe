package main

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/vitalwatch/api/internal/config"
	"github.com/vitalwatch/api/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const demoPatientCount = 50

var firstNames = []string{
	"Aarav", "Vivaan", "Aditya", "Vihaan", "Arjun", "Sai", "Krishna", "Ishaan", "Rohan", "Kabir",
	"Anaya", "Diya", "Aadhya", "Myra", "Ira", "Saanvi", "Kiara", "Riya", "Meera", "Naina",
}

var lastNames = []string{
	"Sharma", "Verma", "Patel", "Singh", "Gupta", "Kumar", "Das", "Sinha", "Mehta", "Nair",
}

var conditions = []string{
	"Hypertension",
	"Diabetes Type 2",
	"Asthma",
	"Coronary Artery Disease",
	"COPD",
	"Hypothyroidism",
	"Chronic Kidney Disease",
	"Arrhythmia",
	"Migraine",
	"Post-Surgery Recovery",
}

var genders = []string{"Male", "Female"}
var statuses = []string{"active", "follow-up", "discharged"}

func main() {
	cfg := config.Load()

	// Force DB logging off to avoid noise
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to Database")

	seedUsers(db)
	seedPatients(db)

	log.Println("🎉 Seeding completed!")
}

// seedUsers creates the bootstrap staff accounts and one demo family account
func seedUsers(db *gorm.DB) {
	password := "password123"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	linked := "PT001"
	users := []model.User{
		{
			Name:     "Admin",
			Email:    "admin@vitalwatch.local",
			Password: string(hashedPassword),
			Role:     model.RoleAdmin,
		},
		{
			Name:     "Dr. Asha Menon",
			Email:    "doctor@vitalwatch.local",
			Password: string(hashedPassword),
			Role:     model.RoleDoctor,
		},
		{
			Name:            "Family PT001",
			Email:           "family.pt001.2000@vitalwatch.local",
			Password:        string(hashedPassword),
			Role:            model.RoleFamily,
			LinkedPatientID: &linked,
			PhoneNumber:     "15552000",
		},
	}

	log.Printf("🌱 Seeding %d users...", len(users))
	for _, user := range users {
		var existing model.User
		if err := db.Where("email = ?", user.Email).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&user).Error; err != nil {
			log.Printf("❌ Failed to create user %s: %v", user.Email, err)
		} else {
			log.Printf("✅ Created user: %s | Role: %s | Pass: %s", user.Email, user.Role, password)
		}
	}
}

// seedPatients creates 50 demo patients with family members, medical
// history and a few recent readings each. Existing demo rows are replaced.
func seedPatients(db *gorm.DB) {
	log.Printf("🌱 Seeding %d patients...", demoPatientCount)

	now := time.Now()
	created, readings := 0, 0

	for i := 0; i < demoPatientCount; i++ {
		index := i + 1
		patientID := fmt.Sprintf("PT%03d", index)
		name := fmt.Sprintf("%s %s", firstNames[i%len(firstNames)], lastNames[i%len(lastNames)])
		age := 18 + ((i * 3) % 60)
		lastActiveAt := now.Add(-time.Duration((i%12)*30+(i%5)*7) * time.Minute)

		// Replace any previous demo rows for this patient
		db.Where("patient_id = ?", patientID).Delete(&model.FamilyMember{})
		db.Where("patient_id = ?", patientID).Delete(&model.MedicalNote{})
		db.Where("patient_id = ?", patientID).Delete(&model.SensorReading{})
		db.Where("patient_id = ?", patientID).Delete(&model.Patient{})

		patient := model.Patient{
			PatientID:   patientID,
			Name:        name,
			Age:         &age,
			Gender:      genders[i%len(genders)],
			Status:      statuses[i%len(statuses)],
			Condition:   conditions[i%len(conditions)],
			Address:     fmt.Sprintf("%d Health Street, Sector %d, Metro City", 100+i, 1+(i%9)),
			PhoneNumber: fmt.Sprintf("+1-555-%04d", 1000+i),
			PhotoURL: fmt.Sprintf(
				"https://ui-avatars.com/api/?name=%s&background=0f766e&color=ffffff",
				url.QueryEscape(name),
			),
			LastActiveAt: &lastActiveAt,
			FamilyMembers: []model.FamilyMember{
				{
					PatientID:   patientID,
					Name:        fmt.Sprintf("Parent of %s", name),
					Relation:    "Parent",
					PhoneNumber: fmt.Sprintf("+1-555-%04d", 2000+i),
				},
				{
					PatientID:   patientID,
					Name:        fmt.Sprintf("Sibling of %s", name),
					Relation:    "Sibling",
					PhoneNumber: fmt.Sprintf("+1-555-%04d", 3000+i),
				},
			},
			MedicalHistory: []model.MedicalNote{
				{
					PatientID: patientID,
					Date:      lastActiveAt.Add(-30 * 24 * time.Hour),
					Note:      "Routine follow-up visit completed.",
				},
				{
					PatientID: patientID,
					Date:      lastActiveAt.Add(-75 * 24 * time.Hour),
					Note:      "Medication plan adjusted based on vitals trend.",
				},
			},
		}

		if err := db.Create(&patient).Error; err != nil {
			log.Printf("❌ Failed to create patient %s: %v", patientID, err)
			continue
		}
		created++

		for j := 0; j < 3; j++ {
			reading := model.SensorReading{
				PatientID:   patientID,
				HeartRate:   float64(68 + ((i*7 + j*3) % 35)),
				Temperature: 97.0 + float64((i+j)%5)*0.4,
				Spo2:        float64(94 + (i+j)%6),
				EcgMean:     0.7 + float64((i*11+j)%20)/10,
				RecordedAt:  lastActiveAt.Add(-time.Duration(2-j) * 5 * time.Minute),
			}
			if err := db.Create(&reading).Error; err != nil {
				log.Printf("❌ Failed to create reading for %s: %v", patientID, err)
				continue
			}
			readings++
		}
	}

	log.Printf("✅ Seeded %d patients and %d sensor readings", created, readings)
}
