package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"azdo-flow/internal/devops"
	"azdo-flow/internal/history"
	"azdo-flow/internal/visuals"
	"azdo-flow/internal/workitem"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// Handler serves work item history analysis over HTTP.
type Handler struct {
	catalog            workitem.Catalog
	queryID            string
	workflow           history.Workflow
	corsAllowedOrigins []string
	requestTimeout     time.Duration
}

// NewHandler creates the HTTP API. queryID is used when a request names no query.
func NewHandler(catalog workitem.Catalog, queryID string, wf history.Workflow, corsAllowedOrigins []string) *Handler {
	if len(corsAllowedOrigins) == 0 {
		corsAllowedOrigins = []string{"*"}
	}
	return &Handler{
		catalog:            catalog,
		queryID:            queryID,
		workflow:           wf.WithDefaults(),
		corsAllowedOrigins: corsAllowedOrigins,
		requestTimeout:     2 * time.Minute,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(h.requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.healthz)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/workitems/{id}/history", h.getWorkItemHistory)
		r.Get("/query/workitems", h.listQueryWorkItems)
		r.Get("/query/workitems/chart", h.getQueryChart)
	})

	return r
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// historyResponse is the body of GET /v1/workitems/{id}/history.
type historyResponse struct {
	workitem.Summary
	Charts map[string]string `json:"charts,omitempty"`
}

func (h *Handler) getWorkItemHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid work item id"})
		return
	}

	item := h.catalog.Items([]int{id}, workitem.WithWorkflow(h.workflow))[0]
	summary, err := item.Summary(r.Context())
	if err != nil {
		writeLookupError(w, err)
		return
	}

	resp := historyResponse{Summary: summary}
	if charts, _ := strconv.ParseBool(r.URL.Query().Get("charts")); charts {
		resp.Charts = map[string]string{
			"timeInState": visuals.GenerateStateDurationChart(summary, h.workflow),
			"timeline":    visuals.GenerateTimelineChart(summary),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listQueryWorkItems(w http.ResponseWriter, r *http.Request) {
	queryID, summaries, ok := h.loadQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"queryId": queryID,
		"count":   len(summaries),
		"items":   summaries,
	})
}

func (h *Handler) getQueryChart(w http.ResponseWriter, r *http.Request) {
	_, summaries, ok := h.loadQuery(w, r)
	if !ok {
		return
	}
	if len(summaries) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "query returned no work items"})
		return
	}

	var buf bytes.Buffer
	if err := visuals.RenderStackedHTML(&buf, summaries, h.workflow); err != nil {
		log.Error().Err(err).Msg("Failed to render stacked chart")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "chart rendering failed"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) loadQuery(w http.ResponseWriter, r *http.Request) (string, []workitem.Summary, bool) {
	queryID := r.URL.Query().Get("query_id")
	if queryID == "" {
		queryID = h.queryID
	}
	if queryID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query_id is required: no default query configured"})
		return "", nil, false
	}

	items, err := h.catalog.QueryItems(r.Context(), queryID, workitem.WithWorkflow(h.workflow))
	if err != nil {
		writeLookupError(w, err)
		return "", nil, false
	}
	summaries, err := workitem.LoadAll(r.Context(), items, 0)
	if err != nil {
		writeLookupError(w, err)
		return "", nil, false
	}
	return queryID, summaries, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeLookupError(w http.ResponseWriter, err error) {
	status, msg := http.StatusBadGateway, "azure devops request failed"
	switch {
	case errors.Is(err, devops.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, devops.ErrUnauthorized):
		status, msg = http.StatusUnauthorized, "azure devops rejected the credentials"
	case errors.Is(err, devops.ErrRateLimited):
		status, msg = http.StatusTooManyRequests, "azure devops rate limit exceeded"
	case errors.Is(err, context.DeadlineExceeded):
		status, msg = http.StatusGatewayTimeout, "request timed out"
	}
	log.Warn().Err(err).Int("status", status).Msg("Lookup failed")
	writeJSON(w, status, map[string]string{"error": msg})
}
