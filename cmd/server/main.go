// Package main initializes and starts the JobTracker API server, setting up
// configuration, logging, database connections, repositories, services,
// handlers, and optional TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/JobTracker/internal/assistant"
	"github.com/atinyakov/JobTracker/internal/config"
	"github.com/atinyakov/JobTracker/internal/db"
	"github.com/atinyakov/JobTracker/internal/logger"
	"github.com/atinyakov/JobTracker/internal/metrics"
	"github.com/atinyakov/JobTracker/internal/middleware"
	"github.com/atinyakov/JobTracker/internal/repository"
	"github.com/atinyakov/JobTracker/internal/server/handler/http"
	"github.com/atinyakov/JobTracker/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()

	// Parse command-line, config file and environment configuration.
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	secret, err := config.NewSigningSecret(options)
	if err != nil {
		zapLogger.Fatal("cannot load signing secret", zap.Error(err))
	}

	// Initialize PostgreSQL connection and apply migrations.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()
	if err := metrics.RegisterDB(postgresDB); err != nil {
		zapLogger.Warn("cannot export db stats", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	appRepo := repository.NewPostgresApplicationRepository(postgresDB)
	deliverableRepo := repository.NewPostgresDeliverableRepository(postgresDB)
	writingRepo := repository.NewPostgresWritingRepository(postgresDB)

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo, bcrypt.DefaultCost)
	tokens := service.NewTokenIssuer(secret, options.TokenTTL)
	appService := service.NewApplicationService(appRepo, deliverableRepo, writingRepo)
	analyticsService := service.NewAnalyticsService(appRepo)

	var gen service.Generator = assistant.Disabled{}
	if options.GeminiAPIKey != "" {
		llm, err := assistant.NewGemini(ctx, options.GeminiAPIKey, options.GeminiModel)
		if err != nil {
			zapLogger.Fatal("cannot init assistant", zap.Error(err))
		}
		gen = llm
	} else {
		zapLogger.Warn("GEMINI_API_KEY not set, assistant disabled")
	}
	assistantService := service.NewAssistantService(appRepo, deliverableRepo, writingRepo, gen, options.AssistantTimeout)

	// Create HTTP handlers.
	handlers := http.Handlers{
		Auth:         &http.AuthHandler{AuthService: authService, Tokens: tokens, Logger: zapLogger},
		Applications: &http.ApplicationHandler{Service: appService, Logger: zapLogger},
		Deliverables: &http.DeliverableHandler{Service: appService, Logger: zapLogger},
		Writing:      &http.WritingHandler{Service: appService, Logger: zapLogger},
		Assistant:    &http.AssistantHandler{Assistant: assistantService, Logger: zapLogger},
		Analytics:    &http.AnalyticsHandler{Service: analyticsService, Logger: zapLogger},
	}

	// Build the router with middleware and routes.
	limiter := middleware.NewRateLimiter(options.AssistantRPS, 3)
	router := http.NewRouter(handlers, tokens, limiter, zapLogger)

	go reloadSecretOnHangup(ctx, secret, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSCert != "" && options.TLSKey != "" {
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server failed", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

// reloadSecretOnHangup re-reads the signing secret on every SIGHUP. A
// successful reload invalidates all previously issued tokens.
func reloadSecretOnHangup(ctx context.Context, secret *config.SigningSecret, log *zap.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			changed, err := secret.Reload()
			if err != nil {
				log.Error("signing secret reload failed, keeping previous secret", zap.Error(err))
				continue
			}
			if !changed {
				log.Info("signing secret unchanged")
				continue
			}
			log.Warn("signing secret rotated, outstanding tokens invalidated")
		}
	}
}
