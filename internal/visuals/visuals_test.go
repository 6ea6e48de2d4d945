package visuals

import (
	"bytes"
	"encoding/json"
	"regexp"
	"slices"
	"strings"
	"testing"
	"time"

	"azdo-flow/internal/history"
	"azdo-flow/internal/workitem"
)

func ptr(f float64) *float64 { return &f }

func sampleSummary() workitem.Summary {
	start := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	return workitem.Summary{
		ID:    42,
		Title: "Fix login",
		Type:  "Task",
		State: "Closed",
		States: map[string]workitem.StateInfo{
			"Closed":      {Count: 1, TotalDays: 12.1},
			"New":         {Count: 1, TotalDays: 1.2},
			"Active":      {Count: 2, TotalDays: 3.8},
			"Blocked":     {Count: 5, TotalDays: 0.5},
			"Code Review": {Count: 9, TotalDays: 0.25},
		},
		Timeline: []history.Segment{
			{State: "New", Start: start, End: start.Add(29 * time.Hour)},
			{State: "Active", Start: start.Add(29 * time.Hour), End: start.Add(72 * time.Hour)},
		},
		ResolvedCount: 0,
		CycleTimeDays: ptr(7),
	}
}

func TestColourFor(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "Blue"},
		{1, "Blue"},
		{2, "Orange"},
		{4, "Orange"},
		{5, "Red"},
		{8, "Red"},
		{9, "Black"},
		{40, "Black"},
	}

	for _, tt := range tests {
		if got := ColourFor(tt.count).Name; got != tt.want {
			t.Errorf("ColourFor(%d) = %s, want %s", tt.count, got, tt.want)
		}
	}
	if len(Legend()) != 4 {
		t.Errorf("Expected 4 legend entries, got %d", len(Legend()))
	}
}

func TestRenderStateTable(t *testing.T) {
	out := RenderStateTable(sampleSummary(), history.DefaultWorkflow())

	for _, want := range []string{
		"WORK ITEM 42 STATE SUMMARY",
		"Title: Fix login",
		"Current State: Closed",
		"Code Review",
		"TOTAL",
		"17.85",
		"Cycle Time: 7 days",
		"Lead Time: n/a",
		"Colour key: Blue = 1 transition, Orange = 2-4 transitions, Red = 5-8 transitions, Black = 9+ transitions",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q:\n%s", want, out)
		}
	}

	// Workflow states first, then unknown ones.
	body := out[strings.Index(out, "Current State:")+len("Current State: Closed"):]
	order := []string{"New", "Active", "Code Review", "Closed", "Blocked", "TOTAL"}
	last := -1
	for _, state := range order {
		idx := strings.Index(body, state)
		if idx <= last {
			t.Errorf("Expected %s after the previous state in:\n%s", state, body)
		}
		last = idx
	}
}

func TestRenderStateTable_Empty(t *testing.T) {
	out := RenderStateTable(workitem.Summary{ID: 1, Title: "N/A"}, history.DefaultWorkflow())
	if !strings.Contains(out, "TOTAL") || !strings.Contains(out, "0.00") {
		t.Errorf("Expected a zero TOTAL row for an item without history:\n%s", out)
	}
}

func TestFormatDays(t *testing.T) {
	if got := FormatDays(nil); got != "n/a" {
		t.Errorf("Expected n/a, got %s", got)
	}
	if got := FormatDays(ptr(3)); got != "3 days" {
		t.Errorf("Expected 3 days, got %s", got)
	}
}

func TestGenerateStateDurationChart(t *testing.T) {
	out := GenerateStateDurationChart(sampleSummary(), history.DefaultWorkflow())

	if !strings.HasPrefix(out, "```mermaid\nxychart-beta\n") {
		t.Errorf("Expected a mermaid xychart, got:\n%s", out)
	}
	if !strings.Contains(out, `x-axis ["New", "Active", "Code Review", "Closed", "Blocked"]`) {
		t.Errorf("Expected states in workflow order, got:\n%s", out)
	}
	if !strings.Contains(out, "bar [1.20, 3.80, 0.25, 12.10, 0.50]") {
		t.Errorf("Expected durations in the same order, got:\n%s", out)
	}
	if !strings.Contains(out, "0 --> 14") {
		t.Errorf("Expected y-axis headroom above the longest bar, got:\n%s", out)
	}

	if GenerateStateDurationChart(workitem.Summary{}, history.DefaultWorkflow()) != "" {
		t.Error("Expected no chart for an item without states")
	}
}

func TestGenerateTimelineChart(t *testing.T) {
	s := sampleSummary()
	s.Title = `Fix "login": part 2`
	out := GenerateTimelineChart(s)

	if !strings.Contains(out, "gantt\n") {
		t.Fatalf("Expected a gantt chart, got:\n%s", out)
	}
	if !strings.Contains(out, "title Work item 42: Fix 'login'  part 2") {
		t.Errorf("Expected sanitized title, got:\n%s", out)
	}
	if !strings.Contains(out, "section Active\n    1.79d : s1, 2024-05-07T13:00:00, 2024-05-09T08:00:00") {
		t.Errorf("Expected the Active segment, got:\n%s", out)
	}

	if GenerateTimelineChart(workitem.Summary{}) != "" {
		t.Error("Expected no chart for an empty timeline")
	}
}

func TestBuildStackedChart(t *testing.T) {
	a := sampleSummary()
	b := workitem.Summary{ID: 7, States: map[string]workitem.StateInfo{"Resolved": {Count: 1, TotalDays: 2}}}

	chart := BuildStackedChart([]workitem.Summary{a, b}, history.DefaultWorkflow())

	wantLabels := []string{"New", "Active", "Code Review", "Resolved", "Closed", "Blocked"}
	if !slices.Equal(chart.Labels, wantLabels) {
		t.Fatalf("Expected labels %v, got %v", wantLabels, chart.Labels)
	}
	if len(chart.Datasets) != 2 {
		t.Fatalf("Expected one dataset per item, got %d", len(chart.Datasets))
	}
	if !slices.Equal(chart.Datasets[1].Data, []float64{0, 0, 0, 2, 0, 0}) {
		t.Errorf("Expected zeros for states the item never entered, got %v", chart.Datasets[1].Data)
	}
	if chart.Datasets[0].BackgroundColor == chart.Datasets[1].BackgroundColor {
		t.Error("Expected distinct colours per item")
	}
}

func TestRenderStackedHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderStackedHTML(&buf, []workitem.Summary{sampleSummary()}, history.DefaultWorkflow()); err != nil {
		t.Fatalf("RenderStackedHTML failed: %v", err)
	}
	page := buf.String()

	if !strings.Contains(page, ChartJSURL) {
		t.Error("Expected the Chart.js bundle to be referenced")
	}
	if strings.Contains(page, "chartData.datasets },\n") {
		t.Error("Expected the inline script to be minified")
	}

	m := regexp.MustCompile(`(?s)<script type="application/json" id="chart-data">(.*?)</script>`).FindStringSubmatch(page)
	if m == nil {
		t.Fatalf("Expected a chart data island in:\n%s", page)
	}
	var chart StackedChart
	if err := json.Unmarshal([]byte(m[1]), &chart); err != nil {
		t.Fatalf("Expected valid JSON chart data, got %q: %v", m[1], err)
	}
	if len(chart.Datasets) != 1 || chart.Datasets[0].Label != "Work item 42" {
		t.Errorf("Unexpected chart data %+v", chart)
	}

	if err := RenderStackedHTML(&buf, nil, history.DefaultWorkflow()); err == nil {
		t.Error("Expected an error without work items")
	}
}
