// Package api provides the local HTTP server the menu-bar front end (and
// the daywatch CLI) talk to: a status snapshot, settings mutation, pause
// control, and the notification history.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/daywatch-app/daywatch/internal/app/tracker"
	"github.com/daywatch-app/daywatch/internal/domain"
	"github.com/daywatch-app/daywatch/internal/infra/sqlite"
	"github.com/daywatch-app/daywatch/internal/notify"
)

// Server is the daywatch HTTP API server.
type Server struct {
	engine         *tracker.Engine
	settings       *tracker.SettingsStore
	db             *sqlite.DB
	flash          *notify.Flash
	overlay        *notify.Overlay
	metricsEnabled bool

	// persist writes accepted settings back to durable config, so a UI
	// change survives a daemon restart. Wired by the daemon.
	persist func(tracker.Settings) error
}

// NewServer creates a new API server.
func NewServer(engine *tracker.Engine, settings *tracker.SettingsStore, db *sqlite.DB,
	flash *notify.Flash, overlay *notify.Overlay) *Server {
	return &Server{
		engine:   engine,
		settings: settings,
		db:       db,
		flash:    flash,
		overlay:  overlay,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// PersistSettings registers the callback that writes accepted settings
// to durable config.
func (s *Server) PersistSettings(fn func(tracker.Settings) error) { s.persist = fn }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/pause", s.handlePause)
		r.Post("/resume", s.handleResume)
		r.Get("/settings", s.handleGetSettings)
		r.Post("/settings", s.handleUpdateSettings)
		r.Get("/notifications", s.handleNotifications)
		r.Post("/overlay/dismiss", s.handleOverlayDismiss)
		r.Post("/overlay/hide", s.handleOverlayHide)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot(time.Now())
	snap.FlashSymbol = s.flash.Current()
	snap.OverlayVisible = s.overlay.Visible()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.engine.SetPaused(true)
	writeJSON(w, http.StatusOK, map[string]bool{"paused": true})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.engine.SetPaused(false)
	writeJSON(w, http.StatusOK, map[string]bool{"paused": false})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings.Current())
}

// handleUpdateSettings replaces the live settings. Validation happens at
// this boundary; the engine never sees out-of-range values.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var set tracker.Settings
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings payload")
		return
	}
	if err := s.settings.Update(set); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// The live store is authoritative; the config write is best-effort
	// like every other persist.
	if s.persist != nil {
		if err := s.persist(set); err != nil {
			log.Printf("[api] persist settings: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, s.settings.Current())
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	notifs, err := s.db.ListRecentNotifications(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if notifs == nil {
		notifs = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, notifs)
}

func (s *Server) handleOverlayDismiss(w http.ResponseWriter, r *http.Request) {
	s.engine.DismissOverlay(time.Now())
	writeJSON(w, http.StatusOK, map[string]bool{"overlay_visible": false})
}

func (s *Server) handleOverlayHide(w http.ResponseWriter, r *http.Request) {
	s.engine.MuteOverlay()
	writeJSON(w, http.StatusOK, map[string]bool{"overlay_visible": false})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
