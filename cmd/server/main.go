package main

import (
	"context"
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/devhub/backend/internal/realtime"
	"github.com/devhub/backend/internal/router"
	"github.com/devhub/backend/pkg/config"
	"github.com/devhub/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase sign-in when credentials are configured
	var firebaseAuthClient *auth.Client
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		firebaseAuthClient = firebaseApp.AuthClient
	} else {
		log.Println("Firebase credentials not configured, Firebase sign-in disabled.")
	}

	// Realtime notification hub, shared by the write path and the
	// WebSocket endpoint
	hub := realtime.NewHub()

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, db.Mongo, firebaseAuthClient, hub)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
