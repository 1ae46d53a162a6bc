// Package httpserver exposes the analysis engine over a JSON REST API.
package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hollis/phishguard/internal/adapters/storage"
	"github.com/hollis/phishguard/internal/core"
	"github.com/hollis/phishguard/internal/engine"
)

const defaultPageSize = 20

// Router handles the REST API routes
type Router struct {
	svc    *engine.Service
	store  storage.Store
	source core.MailSource
	logger *zap.Logger
}

// NewRouter builds the chi handler for the API
func NewRouter(svc *engine.Service, store storage.Store, source core.MailSource, corsOrigins []string, logger *zap.Logger) http.Handler {
	r := &Router{svc: svc, store: store, source: source, logger: logger}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/health", r.handleHealth)

	mux.Route("/api", func(rt chi.Router) {
		rt.Post("/emails/sync", r.wrap(r.handleSyncEmails))
		rt.Get("/emails", r.wrap(r.handleListEmails))
		rt.Get("/emails/{id}", r.wrap(r.handleGetEmail))

		rt.Post("/analysis/{emailID}", r.wrap(r.handleAnalyze))
		rt.Get("/analysis", r.wrap(r.handleListAnalyses))
		rt.Get("/analysis/recent", r.wrap(r.handleRecentAnalyses))
		rt.Get("/analysis/stats", r.wrap(r.handleStats))
		rt.Get("/analysis/{id}", r.wrap(r.handleGetAnalysis))
		rt.Delete("/analysis/{id}", r.wrap(r.handleDeleteAnalysis))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				writeError(w, http.StatusNotFound, "not found")
				return
			}
			if errors.Is(err, core.ErrMalformedInput) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			r.logger.Error("Request failed",
				zap.String("path", req.URL.Path),
				zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	_ = writeJSON(w, status, map[string]string{"error": msg})
}

// GET /health
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	sourceUp := false
	if r.source != nil {
		sourceUp = r.source.Healthy(req.Context())
	}
	_ = writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"mail_source": sourceUp,
		"time":        time.Now().UTC(),
	})
}

// POST /api/emails/sync
// Pulls every message currently held by the capture service into the store.
func (r *Router) handleSyncEmails(w http.ResponseWriter, req *http.Request) error {
	if r.source == nil {
		return fmt.Errorf("no mail source configured")
	}

	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}

	emails, err := r.source.FetchMessages(req.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to fetch from mail source: %w", err)
	}

	stored := 0
	for i := range emails {
		if _, err := r.store.SaveEmail(req.Context(), &emails[i]); err != nil {
			r.logger.Warn("Failed to store synced email",
				zap.String("source_id", emails[i].SourceID),
				zap.Error(err))
			continue
		}
		stored++
	}

	return writeJSON(w, http.StatusOK, map[string]int{
		"fetched": len(emails),
		"stored":  stored,
	})
}

// GET /api/emails?analyzed=&page=&limit=
func (r *Router) handleListEmails(w http.ResponseWriter, req *http.Request) error {
	var analyzed *bool
	if raw := req.URL.Query().Get("analyzed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: invalid analyzed filter %q", core.ErrMalformedInput, raw)
		}
		analyzed = &v
	}

	page, limit := pagination(req)
	emails, total, err := r.store.ListEmails(req.Context(), analyzed, (page-1)*limit, limit)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, map[string]interface{}{
		"emails": emails,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

// GET /api/emails/{id}
func (r *Router) handleGetEmail(w http.ResponseWriter, req *http.Request) error {
	email, err := r.store.GetEmail(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, email)
}

// POST /api/analysis/{emailID}?force=true
// Runs the full pipeline over a stored email. A second call returns the
// existing analysis unless force is set.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	emailID := chi.URLParam(req, "emailID")

	email, err := r.store.GetEmail(req.Context(), emailID)
	if err != nil {
		return err
	}

	force, _ := strconv.ParseBool(req.URL.Query().Get("force"))
	if email.Analyzed && !force {
		existing, err := r.store.GetAnalysis(req.Context(), email.AnalysisID)
		if err == nil {
			return writeJSON(w, http.StatusOK, existing)
		}
		// Analysis record went missing; re-run.
	}

	record, err := r.svc.Analyze(req.Context(), &email.Email)
	if err != nil {
		return err
	}
	record.EmailID = email.ID

	if err := r.store.SaveAnalysis(req.Context(), record); err != nil {
		return fmt.Errorf("failed to store analysis: %w", err)
	}
	if err := r.store.MarkAnalyzed(req.Context(), email.ID, record.ID); err != nil {
		r.logger.Warn("Failed to mark email analyzed",
			zap.String("email_id", email.ID),
			zap.Error(err))
	}

	return writeJSON(w, http.StatusCreated, record)
}

// GET /api/analysis?riskLevel=&classification=&page=&limit=
func (r *Router) handleListAnalyses(w http.ResponseWriter, req *http.Request) error {
	filter := core.AnalysisFilter{
		RiskLevel:      core.RiskLevel(req.URL.Query().Get("riskLevel")),
		Classification: core.Classification(req.URL.Query().Get("classification")),
	}

	page, limit := pagination(req)
	records, total, err := r.store.ListAnalyses(req.Context(), filter, (page-1)*limit, limit)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, map[string]interface{}{
		"analyses": records,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// GET /api/analysis/recent?limit=10
func (r *Router) handleRecentAnalyses(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 10
	}

	records, err := r.store.RecentAnalyses(req.Context(), limit)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, records)
}

// GET /api/analysis/stats
func (r *Router) handleStats(w http.ResponseWriter, req *http.Request) error {
	stats, err := r.store.Statistics(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, stats)
}

// GET /api/analysis/{id}
func (r *Router) handleGetAnalysis(w http.ResponseWriter, req *http.Request) error {
	record, err := r.store.GetAnalysis(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, record)
}

// DELETE /api/analysis/{id}
// Removes the analysis and flips the owning email back to pending.
func (r *Router) handleDeleteAnalysis(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	record, err := r.store.GetAnalysis(req.Context(), id)
	if err != nil {
		return err
	}
	if err := r.store.DeleteAnalysis(req.Context(), id); err != nil {
		return err
	}
	if record.EmailID != "" {
		if err := r.store.ClearAnalyzed(req.Context(), record.EmailID); err != nil && !errors.Is(err, core.ErrNotFound) {
			r.logger.Warn("Failed to clear analyzed flag",
				zap.String("email_id", record.EmailID),
				zap.Error(err))
		}
	}

	return writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func pagination(req *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(req.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	limit, _ = strconv.Atoi(req.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = defaultPageSize
	}
	return page, limit
}
