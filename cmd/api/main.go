package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/brightside-counseling/claims-api/internal/config"
	"github.com/brightside-counseling/claims-api/internal/email"
	"github.com/brightside-counseling/claims-api/internal/handler"
	claimsHandler "github.com/brightside-counseling/claims-api/internal/handler/claims"
	"github.com/brightside-counseling/claims-api/internal/middleware"
	"github.com/brightside-counseling/claims-api/internal/repository/postgres"
	"github.com/brightside-counseling/claims-api/internal/router"
	claimsService "github.com/brightside-counseling/claims-api/internal/service/claims"
	"github.com/brightside-counseling/claims-api/internal/service/clearinghouse"
	"github.com/brightside-counseling/claims-api/internal/service/eligibility"
	"github.com/brightside-counseling/claims-api/internal/service/refdata"
	sequenceService "github.com/brightside-counseling/claims-api/internal/service/sequence"
	validationService "github.com/brightside-counseling/claims-api/internal/service/validation"
	"github.com/brightside-counseling/claims-api/pkg/auth"
	"github.com/brightside-counseling/claims-api/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize Redis
	redisOpts, err := goredis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid Redis URL")
	}
	redisClient := goredis.NewClient(redisOpts)
	defer redisClient.Close()

	// Initialize repositories
	sessionRepo := postgres.NewSessionRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	clinicianRepo := postgres.NewClinicianRepository(db)
	referenceRepo := postgres.NewReferenceRepository(db)
	sequenceRepo := postgres.NewSequenceRepository(db, cfg.Claims.SequenceVersion)
	batchRepo := postgres.NewBatchRepository(db)

	// Initialize metrics
	m := metrics.NewMetrics("claims_api")

	// Initialize services
	logger := log.Logger
	allocator := sequenceService.NewService(sequenceRepo, m, logger)
	resolver := refdata.NewResolver(referenceRepo, clinicianRepo, cfg.Claims.TemplateVersion, logger)
	verifier := eligibility.NewClient(eligibility.Config{
		BaseURL:          cfg.Eligibility.BaseURL,
		ClientID:         cfg.Eligibility.ClientID,
		ClientSecret:     cfg.Eligibility.ClientSecret,
		ProviderLastName: cfg.Eligibility.ProviderLastName,
		ProviderNPI:      cfg.Eligibility.ProviderNPI,
		PracticeTypeCode: cfg.Eligibility.PracticeTypeCode,
		Location:         cfg.Eligibility.Location,
		Timeout:          cfg.Eligibility.Timeout,
	}, eligibility.NewRedisCache(redisClient), logger)
	validator := validationService.NewService(sessionRepo, patientRepo, verifier, cfg.Claims.AllowedState, m, logger)
	assembler := claimsService.NewAssembler(sessionRepo, patientRepo, resolver, allocator, logger)
	chClient := clearinghouse.NewClient(clearinghouse.Config{
		TokenURL:     cfg.Clearinghouse.TokenURL,
		UploadURL:    cfg.Clearinghouse.UploadURL,
		ClientID:     cfg.Clearinghouse.ClientID,
		ClientSecret: cfg.Clearinghouse.ClientSecret,
		Username:     cfg.Clearinghouse.Username,
		Password:     cfg.Clearinghouse.Password,
		Timeout:      cfg.Clearinghouse.Timeout,
	}, logger)
	notifier := email.NewService(email.Config{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		From:        cfg.SMTP.From,
		BillingTeam: cfg.SMTP.BillingTeam,
	}, logger)
	claimsSvc := claimsService.NewService(validator, assembler, chClient, sessionRepo, batchRepo, notifier, m, logger)

	// Initialize middleware
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret)
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(db)
	claimsH := claimsHandler.NewHandler(claimsSvc)

	// Setup router
	r := router.NewRouter(authMiddleware, claimsH, healthHandler, m, router.Config{
		RateLimit:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:  cfg.RateLimit.Burst,
		CORSConfig: middleware.DefaultCORSConfig(),
	})
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	// Start server
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
