// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"

	"github-activity-service/internal/database"
	apperrors "github-activity-service/internal/errors"
)

// recentEventsLimit caps the events listing.
const recentEventsLimit = 100

// LanguageFetcher is the slice of the GitHub client the languages proxy needs.
type LanguageFetcher interface {
	GetLanguages(ctx context.Context, username, repo string) (map[string]int, error)
}

// SyncTrigger runs one synchronous sync cycle.
type SyncTrigger interface {
	SyncNow(ctx context.Context) error
}

// Handler is the container for API dependencies.
type Handler struct {
	db       database.Querier
	gh       LanguageFetcher
	syncer   SyncTrigger
	username string
	logger   *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(db database.Querier, gh LanguageFetcher, syncer SyncTrigger, username string, logger *slog.Logger) http.Handler {
	h := &Handler{
		db:       db,
		gh:       gh,
		syncer:   syncer,
		username: username,
		logger:   logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/v1/github", func(r chi.Router) {
		r.Get("/profile", h.getProfile)
		r.Get("/repos", h.getRepos)
		r.Get("/repos/{name}/languages", h.getLanguages)
		r.Get("/stats", h.getStats)
		r.Get("/events", h.getEvents)
		r.Post("/sync", h.triggerSync)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getProfile returns the last synced profile snapshot.
// GET /v1/github/profile
func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.db.GetProfile(r.Context())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "No GitHub profile data. Run sync first.")
			return
		}
		h.logger.Error("Failed to get profile", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, envelope{Success: true, Data: profile})
}

// getRepos lists all synced repositories, most recently pushed first.
// GET /v1/github/repos
func (h *Handler) getRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := h.db.ListRepositories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list repositories", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, envelope{Success: true, Count: len(repos), Data: repos})
}

// getLanguages proxies the per-repo language breakdown from GitHub. This is
// the one surface that reads upstream live; results are cached in the client.
// GET /v1/github/repos/{name}/languages
func (h *Handler) getLanguages(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	langs, err := h.gh.GetLanguages(r.Context(), h.username, name)
	if err != nil {
		var fetchErr *apperrors.FetchError
		if errors.As(err, &fetchErr) && fetchErr.StatusCode == http.StatusNotFound {
			respondWithError(w, http.StatusNotFound, "Repository not found")
			return
		}
		h.logger.Error("Failed to fetch languages", "repo", name, "error", err)
		respondWithError(w, http.StatusBadGateway, "GitHub API unavailable")
		return
	}

	respondWithJSON(w, http.StatusOK, envelope{Success: true, Data: langs})
}

// getStats returns the current stats singleton.
// GET /v1/github/stats
func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.GetStats(r.Context())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "No GitHub stats data. Run sync first.")
			return
		}
		h.logger.Error("Failed to get stats", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, envelope{Success: true, Data: stats})
}

// getEvents lists the most recent activity events.
// GET /v1/github/events
func (h *Handler) getEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.db.ListRecentEvents(r.Context(), recentEventsLimit)
	if err != nil {
		h.logger.Error("Failed to list events", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, envelope{Success: true, Count: len(events), Data: events})
}

// triggerSync runs one sync cycle synchronously. This is the only surface
// that reports a sync failure directly to a caller.
// POST /v1/github/sync
func (h *Handler) triggerSync(w http.ResponseWriter, r *http.Request) {
	if err := h.syncer.SyncNow(r.Context()); err != nil {
		h.logger.Error("Manual sync failed", "error", err)

		var fetchErr *apperrors.FetchError
		if errors.As(err, &fetchErr) {
			respondWithError(w, http.StatusBadGateway, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "GitHub data synced successfully",
	})
}

// envelope is the JSON response shape shared by the read endpoints.
type envelope struct {
	Success bool `json:"success"`
	Count   int  `json:"count,omitempty"`
	Data    any  `json:"data"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, map[string]any{"success": false, "message": message})
}
