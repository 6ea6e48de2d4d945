package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"azdo-flow/internal/devops"
	"azdo-flow/internal/history"
	"azdo-flow/internal/workitem"
)

var created = time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

type fakeSource struct {
	err error
}

func (s fakeSource) FetchUpdates(ctx context.Context, id int) ([]history.StateChangeEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	at := func(days int) string { return created.AddDate(0, 0, days).Format(time.RFC3339) }
	return []history.StateChangeEvent{
		{NewState: "New", ChangedDate: at(0)},
		{NewState: "Active", ChangedDate: at(2)},
		{NewState: "Closed", ChangedDate: at(6)},
	}, nil
}

func (s fakeSource) FetchDetails(ctx context.Context, id int) (workitem.Details, error) {
	if s.err != nil {
		return workitem.Details{}, s.err
	}
	return workitem.Details{ID: id, Title: "Item", Type: "Bug", State: "Closed", Created: created}, nil
}

type fakeCatalog struct {
	source  workitem.Source
	queries map[string][]int
}

func (c fakeCatalog) Items(ids []int, opts ...workitem.Option) []*workitem.WorkItem {
	items := make([]*workitem.WorkItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, workitem.New(id, c.source, opts...))
	}
	return items
}

func (c fakeCatalog) QueryItems(ctx context.Context, queryID string, opts ...workitem.Option) ([]*workitem.WorkItem, error) {
	ids, ok := c.queries[queryID]
	if !ok {
		return nil, fmt.Errorf("%w: query %s", devops.ErrNotFound, queryID)
	}
	return c.Items(ids, opts...), nil
}

func newServer(t *testing.T, src workitem.Source, defaultQuery string) *httptest.Server {
	t.Helper()
	catalog := fakeCatalog{source: src, queries: map[string][]int{"q1": {3, 1, 2}, "empty": {}}}
	srv := httptest.NewServer(NewHandler(catalog, defaultQuery, history.DefaultWorkflow(), nil).Router())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("Invalid JSON from %s: %v", url, err)
		}
	}
	return resp, body
}

func TestHealthz(t *testing.T) {
	srv := newServer(t, fakeSource{}, "")
	resp, body := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("Expected ok, got %d %v", resp.StatusCode, body)
	}
}

func TestGetWorkItemHistory(t *testing.T) {
	srv := newServer(t, fakeSource{}, "")

	resp, body := get(t, srv.URL+"/v1/workitems/42/history?charts=true")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%v)", resp.StatusCode, body)
	}
	if body["id"] != float64(42) {
		t.Errorf("Expected id 42, got %v", body["id"])
	}
	if body["cycleTimeDays"] != float64(4) || body["leadTimeDays"] != float64(6) {
		t.Errorf("Expected cycle 4 / lead 6, got %v / %v", body["cycleTimeDays"], body["leadTimeDays"])
	}
	charts, ok := body["charts"].(map[string]any)
	if !ok || !strings.Contains(charts["timeline"].(string), "gantt") {
		t.Errorf("Expected charts in the response, got %v", body["charts"])
	}

	_, body = get(t, srv.URL+"/v1/workitems/42/history")
	if _, ok := body["charts"]; ok {
		t.Error("Expected no charts unless requested")
	}
}

func TestGetWorkItemHistory_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		path string
		want int
	}{
		{"bad id", nil, "/v1/workitems/abc/history", http.StatusBadRequest},
		{"negative id", nil, "/v1/workitems/-3/history", http.StatusBadRequest},
		{"not found", devops.ErrNotFound, "/v1/workitems/9/history", http.StatusNotFound},
		{"unauthorized", devops.ErrUnauthorized, "/v1/workitems/9/history", http.StatusUnauthorized},
		{"rate limited", devops.ErrRateLimited, "/v1/workitems/9/history", http.StatusTooManyRequests},
		{"unavailable", devops.ErrUnavailable, "/v1/workitems/9/history", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, fakeSource{err: tt.err}, "")
			resp, body := get(t, srv.URL+tt.path)
			if resp.StatusCode != tt.want {
				t.Errorf("Expected %d, got %d (%v)", tt.want, resp.StatusCode, body)
			}
			if body["error"] == nil {
				t.Error("Expected an error message")
			}
		})
	}
}

func TestListQueryWorkItems(t *testing.T) {
	srv := newServer(t, fakeSource{}, "q1")

	resp, body := get(t, srv.URL+"/v1/query/workitems")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%v)", resp.StatusCode, body)
	}
	items, _ := body["items"].([]any)
	if body["count"] != float64(3) || len(items) != 3 {
		t.Fatalf("Expected 3 items, got %v", body)
	}
	first := items[0].(map[string]any)
	if first["id"] != float64(3) {
		t.Errorf("Expected query order to be preserved, got first id %v", first["id"])
	}

	resp, _ = get(t, srv.URL+"/v1/query/workitems?query_id=missing")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown query, got %d", resp.StatusCode)
	}
}

func TestListQueryWorkItems_NoDefault(t *testing.T) {
	srv := newServer(t, fakeSource{}, "")
	resp, _ := get(t, srv.URL+"/v1/query/workitems")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 without a query, got %d", resp.StatusCode)
	}
}

func TestGetQueryChart(t *testing.T) {
	srv := newServer(t, fakeSource{}, "q1")

	resp, err := http.Get(srv.URL + "/v1/query/workitems/chart")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("Expected an HTML page, got %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	resp2, _ := get(t, srv.URL+"/v1/query/workitems/chart?query_id=empty")
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for an empty query, got %d", resp2.StatusCode)
	}
}

func TestCORS(t *testing.T) {
	srv := newServer(t, fakeSource{}, "")

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/v1/workitems/1/history", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.Header.Get("Access-Control-Allow-Origin") == "" {
		t.Error("Expected CORS headers on preflight")
	}
}

func TestGetWorkItemHistory_UpstreamTimeout(t *testing.T) {
	release := make(chan struct{})
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		fmt.Fprint(w, `{"count": 0, "value": []}`)
	}))
	t.Cleanup(upstream.Close)
	t.Cleanup(func() { close(release) })

	client := devops.NewClient(devops.Config{
		BaseURL:           upstream.URL,
		Organization:      "contoso",
		Project:           "web",
		RequestsPerSecond: 1000,
		Timeout:           5 * time.Second,
	})
	h := NewHandler(devops.NewSource(client), "", history.DefaultWorkflow(), nil)
	h.requestTimeout = 50 * time.Millisecond
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)

	resp, body := get(t, srv.URL+"/v1/workitems/42/history")
	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Errorf("Expected 504 when Azure DevOps is too slow, got %d (%v)", resp.StatusCode, body)
	}
	if body["error"] != "request timed out" {
		t.Errorf("Expected a timeout message, got %v", body["error"])
	}
}
