package router

import (
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/devhub/backend/internal/handlers"
	"github.com/devhub/backend/internal/middleware"
	"github.com/devhub/backend/internal/models"
	"github.com/devhub/backend/internal/notify"
	"github.com/devhub/backend/internal/realtime"
	"github.com/devhub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client, hub *realtime.Hub) {
	// AutoMigrate PostgreSQL models
	if err := pgdb.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed.")

	// Health check and metrics - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Initialize Repositories ---
	mongoDB := mgClient.Database("devhub")
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	profileRepo := repositories.NewMongoProfileRepository(mongoDB)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	notificationRepo := repositories.NewMongoNotificationRepository(mongoDB)

	// Notification write path: durable record first, live push second
	notifier := notify.NewNotifier(notificationRepo, hub)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// User account routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterUserRoutes(api)
	log.Println("User routes configured.")

	// Profile routes (including follow/unfollow)
	profileHandler := handlers.NewProfileHandler(profileRepo, userRepo, postRepo, notifier)
	profileHandler.RegisterProfileRoutes(api)
	log.Println("Profile routes configured.")

	// Post routes (including likes and comments)
	postHandler := handlers.NewPostHandler(postRepo, userRepo, notifier)
	postHandler.RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Realtime WebSocket endpoint. Authenticates from its own token parameter,
	// so it is registered outside the JWT middleware group.
	realtimeHandler := realtime.NewHandler(hub)
	realtimeHandler.RegisterRealtimeRoutes(e.Group("/api/v1"))
	log.Println("Realtime routes configured.")

	log.Println("All routes configured.")
}
