// Package server assembles the HTTP routes and runs the listener.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"zennote/auth"
	"zennote/config"
	"zennote/db"
	"zennote/handlers"
	appmw "zennote/middleware"
)

type Deps struct {
	DB         *sql.DB
	Tokens     *auth.TokenService
	Users      handlers.UserRepository
	Notes      handlers.NoteRepository
	BcryptCost int
	Log        *slog.Logger
}

// NewDeps wires the stores and token service for an open database.
func NewDeps(conn *sql.DB, cfg *config.Config, log *slog.Logger) Deps {
	return Deps{
		DB:         conn,
		Tokens:     auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL),
		Users:      db.NewUserStore(conn),
		Notes:      db.NewNoteStore(conn),
		BcryptCost: cfg.BcryptCost,
		Log:        log,
	}
}

func Routes(d Deps) http.Handler {
	authHandler := handlers.NewAuthHandler(d.Users, d.Tokens, d.BcryptCost, d.Log)
	notesHandler := handlers.NewNotesHandler(d.Notes, d.Log)
	requireAuth := appmw.RequireAuth(d.Tokens, d.Log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(appmw.RequestLogger(d.Log))
	r.Use(chimw.Recoverer)

	r.Get("/", handlers.Index)
	r.Get("/healthz", handlers.Healthz(d.DB, d.Log))

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/createuser", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.With(requireAuth).Get("/getuser", authHandler.GetUser)
	})

	r.Route("/api/notes", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", notesHandler.GetNotes)
		r.Post("/", notesHandler.CreateNote)
		r.Put("/{id}", notesHandler.UpdateNote)
		r.Delete("/{id}", notesHandler.DeleteNote)
	})

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests for up to
// shutdownTimeout.
func Run(ctx context.Context, addr string, h http.Handler, shutdownTimeout time.Duration, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
