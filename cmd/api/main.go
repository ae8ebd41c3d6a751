package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/notehub/notehub-go/internal/config"
	"github.com/notehub/notehub-go/internal/handler"
	"github.com/notehub/notehub-go/internal/mailer"
	"github.com/notehub/notehub-go/internal/middleware"
	"github.com/notehub/notehub-go/internal/repository"
	"github.com/notehub/notehub-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom)
	googleOAuth := service.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL)

	authService := service.NewAuthService(userRepo, smtpMailer, cfg.JWTSecret, cfg.JWTExpiry)
	noteService := service.NewNoteService(noteRepo)

	authHandler := handler.NewAuthHandler(authService, googleOAuth, cfg.FrontendURL)
	noteHandler := handler.NewNoteHandler(noteService)

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(5, 10))
		r.Post("/auth/signup", authHandler.HandleSignup)
		r.Post("/auth/verify-otp", authHandler.HandleVerifyOTP)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/resend-otp", authHandler.HandleResendOTP)
		r.Get("/auth/google", authHandler.HandleGoogleLogin)
		r.Get("/auth/google/callback", authHandler.HandleGoogleCallback)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.JWTSecret, userRepo))

		r.Get("/auth/profile", authHandler.HandleProfile)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireVerified)
			r.Post("/notes", noteHandler.HandleCreate)
			r.Get("/notes", noteHandler.HandleList)
			r.Get("/notes/{id}", noteHandler.HandleGet)
			r.Put("/notes/{id}", noteHandler.HandleUpdate)
			r.Delete("/notes/{id}", noteHandler.HandleDelete)
			r.Patch("/notes/{id}/toggle-pin", noteHandler.HandleTogglePin)
		})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
