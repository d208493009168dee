package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"civicfix-be/config"
	"civicfix-be/controllers"
	"civicfix-be/middlewares"
	"civicfix-be/notifier"
	"civicfix-be/routes"
	"civicfix-be/services"
	"civicfix-be/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	if logFile := config.InitLogging(cfg.LogFile); logFile != nil {
		defer logFile.Close()
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	complaints, users, closeStore := openStores(cfg)
	defer closeStore()

	redisClient, err := config.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	transport, err := notifier.NewTransport(cfg.Mail)
	if err != nil {
		log.Fatalf("Failed to configure mail transport: %v", err)
	}
	if !transport.Configured() {
		log.Println("EMAIL_USER or EMAIL_PASS not set, status notifications will not be sent")
	}
	dispatcher := notifier.NewDispatcher(transport,
		notifier.WithMaxConnections(cfg.Mail.MaxConnections),
		notifier.WithRateLimit(cfg.Mail.RateLimit),
		notifier.WithAttemptTimeout(cfg.Mail.AttemptTimeout),
	)

	complaintService := services.NewComplaintService(complaints, users, dispatcher,
		services.WithLocation(cfg.Location()))
	gate := middlewares.NewAuthGate(cfg.JWTSecret, cfg.BootstrapAdmin, users)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.LoggerWithWriter(config.LogWriter))
	r.Use(middlewares.Recovery(config.LogWriter))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.CORSOrigin, ","),
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.HealthRoutes(r)
	routes.AuthRoutes(r, gate)
	routes.ComplaintRoutes(r, gate,
		middlewares.ComplaintRateLimiter(redisClient, cfg.ComplaintLimitPrefix, cfg.ComplaintDailyLimit),
		controllers.NewComplaintController(complaintService))
	routes.AdminRoutes(r, gate, controllers.NewAdminController(complaintService))
	r.NoRoute(middlewares.NotFound)

	log.Printf("Server running on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// openStores connects the configured document store and returns a cleanup func.
func openStores(cfg *config.Config) (store.ComplaintStore, store.UserStore, func()) {
	switch cfg.StoreDriver {
	case "memory":
		log.Println("Using in-memory store, data is lost on restart")
		return store.NewMemoryComplaintStore(), store.NewMemoryUserStore(), func() {}
	case "mongo":
	default:
		log.Fatalf("Unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	db, err := config.ConnectDB(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("MongoDB connection established successfully!")

	complaints := store.NewMongoComplaintStore(db)
	users := store.NewMongoUserStore(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := complaints.EnsureIndexes(ctx); err != nil {
		log.Printf("Warning: failed to create complaint indexes: %v", err)
	}
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Printf("Warning: failed to create user indexes: %v", err)
	}

	return complaints, users, func() { config.DisconnectDB(db) }
}
