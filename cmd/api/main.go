package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/sujal-pawar/legacy-note-api/internal/auth"
	"github.com/sujal-pawar/legacy-note-api/internal/config"
	"github.com/sujal-pawar/legacy-note-api/internal/handler"
	"github.com/sujal-pawar/legacy-note-api/internal/mailer"
	"github.com/sujal-pawar/legacy-note-api/internal/provider"
	"github.com/sujal-pawar/legacy-note-api/internal/repository"
	"github.com/sujal-pawar/legacy-note-api/internal/usecase"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg := config.Load(&logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping MongoDB")
	}

	db := client.Database(cfg.Mongo.Database)

	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)
	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Secret, cfg.Token.Issuer, cfg.Token.ExpiresIn)
	smtpMailer := mailer.NewMailer(&logger)
	googleVerifier := provider.NewGoogleOAuthProvider(cfg.Google.ClientID)

	verificationUsecase := usecase.NewVerificationUsecase(userRepo, smtpMailer, jwtAuth, &logger)
	authUsecase := usecase.NewAuthUsecase(userRepo, verificationUsecase, jwtAuth, &logger)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(
		userRepo,
		smtpMailer,
		jwtAuth,
		cfg.Server.FrontendURL,
		&logger,
	)
	googleAuthUsecase := usecase.NewGoogleAuthUsecase(userRepo, googleVerifier, jwtAuth, &logger)

	authHandler := handler.NewAuthHandler(
		authUsecase,
		verificationUsecase,
		passwordResetUsecase,
		googleAuthUsecase,
		&logger,
	)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Server.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, jwtAuth)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("failed to shut down server gracefully")
	}
}
