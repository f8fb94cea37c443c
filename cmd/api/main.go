package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/foodshare/foodshare-api/internal/application/expiry"
	"github.com/foodshare/foodshare-api/internal/application/notification"
	"github.com/foodshare/foodshare-api/internal/config"
	"github.com/foodshare/foodshare-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/foodshare/foodshare-api/internal/infrastructure/jwt"
	"github.com/foodshare/foodshare-api/internal/infrastructure/mail"
	s3infra "github.com/foodshare/foodshare-api/internal/infrastructure/s3"
	"github.com/foodshare/foodshare-api/internal/infrastructure/ws"
	transporthttp "github.com/foodshare/foodshare-api/internal/transport/http"
)

// expirySweepInterval matches the daily cadence of the "expires tomorrow"
// reminder copy.
const expirySweepInterval = 24 * time.Hour

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("loading JWT keys: %v", err)
	}

	// S3 image store.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg)

	// SMTP mailer.
	mailer := mail.NewMailer(cfg)

	// Websocket room hub for best-effort live delivery.
	hub := ws.NewHub()

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	foodRepo := dynamo.NewFoodRepo(dynamoClient, cfg.DynamoTables.Foods)
	notificationRepo := dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications)

	deps := &transporthttp.Deps{
		UserRepo:         userRepo,
		FoodRepo:         foodRepo,
		NotificationRepo: notificationRepo,
		S3Store:          s3Store,
		Mailer:           mailer,
		Hub:              hub,
		JWTProvider:      jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	// Daily sweep warning donors about listings that expire tomorrow.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	notifSvc := notification.NewService(notificationRepo, hub, cfg.NotificationTTL)
	sweeper := expiry.NewService(foodRepo, userRepo, notifSvc, mailer)
	go sweeper.Run(sweepCtx, expirySweepInterval)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stopSweep()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
