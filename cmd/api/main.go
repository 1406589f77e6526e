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

	"github.com/go-waitlist-api/internal/config"
	"github.com/go-waitlist-api/internal/infrastructure/dynamo"
	"github.com/go-waitlist-api/internal/infrastructure/recaptcha"
	resendinfra "github.com/go-waitlist-api/internal/infrastructure/resend"
	"github.com/go-waitlist-api/internal/infrastructure/sns"
	"github.com/go-waitlist-api/internal/infrastructure/token"
	transporthttp "github.com/go-waitlist-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap the DynamoDB waitlist table (creates it if it doesn't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.WaitlistTable)

	tokens, err := token.NewProvider(cfg.TokenSigningKey, cfg.VerificationTTL)
	if err != nil {
		log.Fatalf("token provider: %v", err)
	}

	mailer := resendinfra.NewMailer(cfg.ResendAPIKey, cfg.AppEnv == "development")

	deps := &transporthttp.Deps{
		WaitlistRepo: dynamo.NewWaitlistRepo(dynamoClient, cfg.WaitlistTable),
		Tokens:       tokens,
		Mailer:       mailer,
	}

	// Bot gate (optional — disabled when no secret is configured).
	if cfg.RecaptchaSecret != "" {
		deps.Gate = recaptcha.NewVerifier(cfg.RecaptchaSecret)
	} else {
		log.Println("WARN: bot gate disabled (RECAPTCHA_SECRET not set)")
	}

	// SNS owner ping (optional — graceful fallback).
	if cfg.OwnerNotifyPhone != "" {
		if sender, err := sns.NewSender(cfg); err == nil {
			deps.SMSSender = sender
		} else {
			log.Printf("WARN: SNS sender not available: %v", err)
		}
	}

	router := transporthttp.NewRouter(cfg, deps)

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
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
