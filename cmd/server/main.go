package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/vitalwatch/api/internal/config"
	"github.com/vitalwatch/api/internal/handler"
	"github.com/vitalwatch/api/internal/middleware"
	"github.com/vitalwatch/api/internal/model"
	"github.com/vitalwatch/api/internal/repository"
	"github.com/vitalwatch/api/internal/service"
	"github.com/vitalwatch/api/internal/ws"
	"github.com/vitalwatch/api/migrations"
	"github.com/vitalwatch/api/pkg/auth"
	"github.com/vitalwatch/api/pkg/mailer"
	"github.com/vitalwatch/api/pkg/notification"
	"github.com/vitalwatch/api/pkg/prediction"
	"github.com/vitalwatch/api/pkg/storage"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// @title           VitalWatch API
// @version         1.0
// @description     Remote patient vital-signs monitoring: device ingestion, risk prediction, alerting, real-time dashboard.

// @contact.name   API Support
// @contact.email  support@vitalwatch.local

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      api.localhost
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// ==================== Load Config ====================
	cfg := config.Load()
	log.Printf("🚀 Starting VitalWatch API Server [env=%s]", cfg.App.Env)

	// ==================== Database (PostgreSQL) ====================
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.App.Env == "production" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to PostgreSQL")

	// ==================== Run Migrations ====================
	if err := migrations.Run(cfg.DB.URL()); err != nil {
		log.Printf("⚠️  Migration warning: %v", err)
		log.Println("📦 Falling back to GORM AutoMigrate...")
		if err := db.AutoMigrate(
			&model.Patient{},
			&model.FamilyMember{},
			&model.MedicalNote{},
			&model.User{},
			&model.Device{},
			&model.SensorReading{},
			&model.Alert{},
			&model.Notification{},
		); err != nil {
			log.Fatalf("❌ Failed to migrate database: %v", err)
		}
	}
	log.Println("✅ Database migrated successfully")

	// ==================== Redis ====================
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	log.Println("✅ Connected to Redis")

	// ==================== Email (SMTP / Mailpit) ====================
	mailClient := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	})
	log.Printf("📧 SMTP configured: %s:%s", cfg.SMTP.Host, cfg.SMTP.Port)

	// ==================== Push Notifications (FCM) ====================
	pushService, err := notification.NewPushService(cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Printf("⚠️  FCM not available: %v (push notifications disabled)", err)
	}
	if pushService != nil {
		log.Println("✅ FCM push notifications enabled")
	}

	// ==================== Risk Prediction Service ====================
	predictor := prediction.New(cfg.ML.URL, cfg.ML.Timeout)
	log.Printf("🧠 Risk model endpoint: %s (timeout %s)", cfg.ML.URL, cfg.ML.Timeout)

	// ==================== Initialize Layers ====================
	// JWT Manager
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	readingRepo := repository.NewReadingRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// WebSocket Hub (with Redis Pub/Sub for horizontal scaling)
	hub := ws.NewHub(rdb)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go hub.Run(hubCtx)

	// Services
	vitalsService := service.NewVitalsService(readingRepo, predictor, cfg.Ingest.StaleThreshold)
	alertService := service.NewAlertService(alertRepo, notificationRepo, userRepo, hub, pushService, mailClient)
	ingestService := service.NewIngestService(deviceRepo, readingRepo, patientRepo, vitalsService, predictor, alertService, hub)
	authService := service.NewAuthService(userRepo, patientRepo, jwtManager, rdb)
	patientService := service.NewPatientService(patientRepo, readingRepo, vitalsService, predictor)

	// MinIO Storage
	minioStorage, err := storage.NewMinIO(storage.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		PublicURL: cfg.MinIO.PublicURL,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		log.Printf("⚠️  MinIO not available: %v (photo upload disabled)", err)
	}
	if minioStorage != nil {
		log.Println("✅ Connected to MinIO")
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	ingestHandler := handler.NewIngestHandler(ingestService, vitalsService)
	patientHandler := handler.NewPatientHandler(patientService, minioStorage)
	alertHandler := handler.NewAlertHandler(alertRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	wsHandler := handler.NewWSHandler(hub, jwtManager)

	// ==================== Gin Router ====================
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Swagger configuration
	// Serve swagger.json at /docs/swagger.json to avoid conflict with /swagger/* wildcard
	router.StaticFile("/docs/swagger.json", "./docs/swagger.json")
	url := ginSwagger.URL("/docs/swagger.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, url))

	// Global middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS.Origins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"service":     "vitalwatch-api",
			"subscribers": hub.SubscriberCount(),
			"time":        time.Now().Format(time.RFC3339),
		})
	})

	// ==================== API Routes ====================
	api := router.Group("/api/v1")
	{
		// Auth routes (public)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/family/register", authHandler.FamilyRegister)
			authGroup.POST("/family/login", authHandler.FamilyLogin)
		}

		// Device ingestion (authenticated by device key, not JWT)
		api.POST("/iot/reading", ingestHandler.Ingest)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(jwtManager, rdb))
		{
			// Auth
			protected.POST("/auth/logout", authHandler.Logout)
			protected.GET("/auth/profile", authHandler.Profile)

			// Patients; family accounts only see their linked patient
			protected.GET("/patients",
				middleware.RequireRoles(string(model.RoleAdmin), string(model.RoleDoctor)),
				patientHandler.List)
			patientScoped := protected.Group("/patients/:patientId")
			patientScoped.Use(middleware.RequirePatientAccess())
			{
				patientScoped.GET("", patientHandler.GetDetail)
				patientScoped.GET("/live", ingestHandler.GetLive)
				patientScoped.GET("/prediction", ingestHandler.GetPrediction)
				patientScoped.GET("/alerts", alertHandler.ListByPatient)
				patientScoped.POST("/photo",
					middleware.RequireRoles(string(model.RoleAdmin), string(model.RoleDoctor)),
					patientHandler.UploadPhoto)
			}

			// Alerts
			protected.GET("/alerts", alertHandler.List)
			protected.POST("/alerts/:id/ack",
				middleware.RequireRoles(string(model.RoleAdmin), string(model.RoleDoctor)),
				alertHandler.Acknowledge)

			// Notifications
			protected.GET("/notifications", notificationHandler.List)
			protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
			protected.POST("/notifications/:id/read", notificationHandler.MarkRead)
		}
	}

	// Legacy firmware still posts here
	router.POST("/api/esp32-data", ingestHandler.Ingest)

	// WebSocket endpoint (auth via query parameter)
	router.GET("/ws", wsHandler.HandleWebSocket)

	// ==================== Start Server ====================
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	log.Printf("🌐 VitalWatch API running on http://0.0.0.0:%s", cfg.App.Port)
	log.Printf("📋 API docs: http://0.0.0.0:%s/swagger/index.html", cfg.App.Port)
	log.Printf("🔌 WebSocket: ws://0.0.0.0:%s/ws?token=<jwt>", cfg.App.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	// Give ongoing requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	hubCancel()
	log.Println("✅ Server exited gracefully")
}
