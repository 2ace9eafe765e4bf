package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"coursefeedback/internal/handlers"
	"coursefeedback/internal/middleware"
	"coursefeedback/internal/models"
	"coursefeedback/internal/repositories"
	"coursefeedback/internal/services"
	"coursefeedback/internal/sessions"
	"coursefeedback/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_URL", "")              // empty -> local SQLite
	viper.SetDefault("SQLITE_PATH", "coursefeedback.db")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 10)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("REDIS_ADDR", "")                // empty -> in-memory sessions
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("SESSION_TTL", "168h")
	viper.SetDefault("SECURE_COOKIES", false)
	viper.SetDefault("RABBITMQ_URL", "")              // empty -> event publishing disabled
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")

	// --- Database ---
	db, err := openDatabase()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Account{}, &models.FeedbackEntry{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Session store ---
	sessionTTL := viper.GetDuration("SESSION_TTL")
	var sessionStore sessions.Store
	if redisAddr := viper.GetString("REDIS_ADDR"); redisAddr != "" {
		redisStore := sessions.NewRedisStore(redisAddr, viper.GetString("REDIS_PASSWORD"), sessionTTL)
		defer redisStore.Close()
		sessionStore = redisStore
		log.Printf("Using Redis session store at %s", redisAddr)
	} else {
		sessionStore = sessions.NewMemoryStore(sessionTTL)
		log.Println("Using in-memory session store")
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if mqURL := viper.GetString("RABBITMQ_URL"); mqURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: mqURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()

		// Log feedback events as they arrive. Downstream consumers
		// (notifications, analytics) would hook in here.
		if consumerErr := mqClient.ConsumeFeedbackEvents(func(msg amqp.Delivery) error {
			log.Printf("Received feedback event (%s): %s", msg.Type, string(msg.Body))
			return nil
		}); consumerErr != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
		}
	} else {
		log.Println("RABBITMQ_URL not set, feedback events disabled")
	}

	// --- Repositories ---
	accountRepo := repositories.NewGORMAccountRepository(db)
	feedbackRepo := repositories.NewGORMFeedbackRepository(db)

	// --- Services ---
	accountService := services.NewAccountService(accountRepo)
	feedbackService := services.NewFeedbackService(feedbackRepo, mqClient)

	// --- Handlers ---
	secureCookies := viper.GetBool("SECURE_COOKIES")
	authHandler := handlers.NewAuthHandler(accountService, sessionStore, secureCookies)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New())

	api := app.Group("/api")
	authHandler.RegisterRoutes(api)

	protected := api.Group("", middleware.SessionRequired(sessionStore, accountService))
	feedbackHandler.RegisterRoutes(protected)

	// --- Health check ---
	app.Get("/healthz", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			log.Printf("Health check failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"ok": false,
			})
		}
		return c.JSON(fiber.Map{"ok": true})
	})

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// openDatabase connects to PostgreSQL when DATABASE_URL is set and falls
// back to a local SQLite file otherwise. TranslateError is required so
// the account repository can detect duplicate-email inserts.
func openDatabase() (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}

	var db *gorm.DB
	var err error
	if dsn := viper.GetString("DATABASE_URL"); dsn != "" {
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
	} else {
		db, err = gorm.Open(sqlite.Open(viper.GetString("SQLITE_PATH")), gormCfg)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(viper.GetInt("DB_MAX_OPEN_CONNS"))
	sqlDB.SetMaxIdleConns(viper.GetInt("DB_MAX_IDLE_CONNS"))
	sqlDB.SetConnMaxLifetime(viper.GetDuration("DB_CONN_MAX_LIFETIME"))

	return db, nil
}
