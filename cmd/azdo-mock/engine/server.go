package engine

import (
	"encoding/json"
	"net/http"
	"strconv"

	"azdo-flow/internal/devops"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server answers the subset of the Azure DevOps work item tracking API the
// analyzer uses, from generated items.
type Server struct {
	items   map[int]MockItem
	order   []int
	queryID string
	token   string
}

// NewServer serves items. Every item is returned by the saved query queryID.
// An empty token disables authentication.
func NewServer(items []MockItem, queryID, token string) *Server {
	s := &Server{items: make(map[int]MockItem, len(items)), queryID: queryID, token: token}
	for _, it := range items {
		s.items[it.ID] = it
		s.order = append(s.order, it.ID)
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requireToken)

	r.Route("/{org}/{project}/_apis/wit", func(r chi.Router) {
		r.Get("/workItems/{id}/updates", s.getUpdates)
		r.Get("/workItems/{id}", s.getWorkItem)
		r.Get("/wiql/{queryID}", s.runQuery)
	})
	return r
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			if _, pass, ok := r.BasicAuth(); !ok || pass != s.token {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "TF400813: not authorized"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (MockItem, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid work item id"})
		return MockItem{}, false
	}
	item, ok := s.items[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "TF401232: work item does not exist"})
		return MockItem{}, false
	}
	return item, true
}

func (s *Server) getUpdates(w http.ResponseWriter, r *http.Request) {
	item, ok := s.lookup(w, r)
	if !ok {
		return
	}
	page := item.Updates
	if skip, err := strconv.Atoi(r.URL.Query().Get("$skip")); err == nil && skip > 0 {
		page = page[min(skip, len(page)):]
	}
	if top, err := strconv.Atoi(r.URL.Query().Get("$top")); err == nil && top >= 0 && top < len(page) {
		page = page[:top]
	}
	writeJSON(w, http.StatusOK, devops.UpdatesResponse{Count: len(page), Value: page})
}

func (s *Server) getWorkItem(w http.ResponseWriter, r *http.Request) {
	item, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, item.DTO())
}

func (s *Server) runQuery(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "queryID") != s.queryID {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "TF401243: query does not exist"})
		return
	}
	resp := devops.WiqlResponse{QueryType: "flat"}
	for _, id := range s.order {
		resp.WorkItems = append(resp.WorkItems, devops.WorkItemRefDTO{ID: id})
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
