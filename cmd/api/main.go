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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"meridianwealth/internal/config"
	"meridianwealth/internal/database"
	"meridianwealth/internal/handlers"
	"meridianwealth/internal/metrics"
	"meridianwealth/internal/services"
	"meridianwealth/internal/util"
)

const (
	shutdownTimeout = 30 * time.Second
	readTimeout     = 15 * time.Second
	writeTimeout    = 15 * time.Second
	idleTimeout     = 60 * time.Second
)

func main() {
	log.SetPrefix("[API] ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	log.Printf("Starting %s v%s", cfg.App.Name, cfg.App.Version)
	log.Printf("Environment: debug=%v, port=%s, host=%s", cfg.App.Debug, cfg.App.Port, cfg.App.Host)

	log.Println("Initializing database connection...")
	if err := database.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		log.Println("Closing database connections...")
		if sqlDB, err := database.GetDB().DB(); err == nil {
			if closeErr := sqlDB.Close(); closeErr != nil {
				log.Printf("Error closing database: %v", closeErr)
			}
		}
	}()

	log.Println("Initializing services...")
	db := database.GetDB()
	emailSvc := services.NewEmailService(&cfg.Email)
	smsSvc := services.NewSMSService(&cfg.SMS)
	otpSvc := services.NewOTPService(emailSvc, smsSvc)
	authSvc := services.NewAuthService(db, emailSvc, otpSvc)
	onboardingSvc := services.NewOnboardingService(db, emailSvc)
	articleSvc := services.NewArticleService(db)
	contactSvc := services.NewContactService(db, emailSvc)
	healthSvc := services.NewHealthService()

	storageSvc, err := services.NewStorageService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Expired OTP sessions accumulate otherwise.
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				util.CleanupExpiredSessions()
			case <-cleanupDone:
				return
			}
		}
	}()
	defer close(cleanupDone)

	log.Println("Mounting HTTP handlers...")
	api := handlers.NewRouter(handlers.Deps{
		DB:         db,
		Auth:       handlers.NewAuthHandler(authSvc, otpSvc),
		Onboarding: handlers.NewOnboardingHandler(onboardingSvc),
		Articles:   handlers.NewArticleHandler(articleSvc),
		Contacts:   handlers.NewContactHandler(contactSvc),
		Carousel:   handlers.NewCarouselHandler(),
		Storage:    handlers.NewStorageHandler(storageSvc),
		Health:     handlers.NewHealthHandler(healthSvc),
		UploadsDir: storageSvc.Root(),
	})

	root := chi.NewRouter()
	root.Use(handlers.SecurityHeaders)
	root.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Type", "Authorization", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           cfg.CORS.MaxAge,
	}))
	root.Use(requestLogging)
	root.Use(metrics.PrometheusMiddleware)
	root.Handle("/metrics", promhttp.Handler())
	root.Mount("/", api)

	addr := fmt.Sprintf("%s:%s", cfg.App.Host, cfg.App.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      root,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		ErrorLog:     log.New(os.Stderr, "[HTTP] ", log.LstdFlags),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server error: %w", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatalf("Server failed to start: %v", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v. Starting graceful shutdown...", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Error during graceful shutdown: %v", err)
		if err == context.DeadlineExceeded {
			log.Println("Shutdown timeout exceeded, forcing close...")
			httpServer.Close()
		}
	}

	log.Println("Server shutdown complete")
}

// validateConfig validates critical configuration values
func validateConfig(cfg *config.Config) error {
	if cfg.Auth.SecretKey == "" || cfg.Auth.SecretKey == "your-secret-key-change-in-production" {
		return fmt.Errorf("SECRET_KEY must be set and changed from default value")
	}
	if len(cfg.Auth.SecretKey) < 32 {
		return fmt.Errorf("SECRET_KEY must be at least 32 characters for security")
	}
	if cfg.App.Port == "" {
		return fmt.Errorf("PORT must be set")
	}
	return nil
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestLogging logs all incoming requests and their responses
func requestLogging(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health checks to reduce noise
		if r.URL.Path == "/health" {
			handler.ServeHTTP(w, r)
			return
		}

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		log.Printf("[REQUEST] %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

		handler.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		statusText := "OK"
		if wrapped.statusCode >= 400 {
			statusText = "ERROR"
		}
		log.Printf("[RESPONSE] %s %s -> %d %s (%v)", r.Method, r.URL.Path, wrapped.statusCode, statusText, duration)
	})
}
