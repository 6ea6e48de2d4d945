package visuals

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"
	"sync"

	"azdo-flow/internal/history"
	"azdo-flow/internal/workitem"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
)

// ChartJSURL is the Chart.js bundle the comparison page loads.
const ChartJSURL = "https://cdn.jsdelivr.net/npm/chart.js@4.4.1/dist/chart.umd.min.js"

// StackedDataset is the time one work item spent in each charted state.
type StackedDataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor string    `json:"backgroundColor"`
	BorderColor     string    `json:"borderColor"`
	BorderWidth     float64   `json:"borderWidth"`
}

// StackedChart is the data of a state-wise stacked comparison: one bar per
// state, one stack segment per work item.
type StackedChart struct {
	Title    string           `json:"title"`
	Labels   []string         `json:"labels"`
	Datasets []StackedDataset `json:"datasets"`
}

// BuildStackedChart lays out the comparison data. States run in workflow order
// followed by any other observed state; items missing a state contribute 0.
func BuildStackedChart(summaries []workitem.Summary, wf history.Workflow) StackedChart {
	var seen []string
	for _, s := range summaries {
		for state := range s.States {
			seen = append(seen, state)
		}
	}
	states := wf.SortStates(seen)

	chart := StackedChart{
		Title:    "State-wise Stacked Duration by Work Item",
		Labels:   states,
		Datasets: make([]StackedDataset, 0, len(summaries)),
	}
	for i, s := range summaries {
		data := make([]float64, len(states))
		for j, state := range states {
			data[j] = s.States[state].TotalDays
		}
		chart.Datasets = append(chart.Datasets, StackedDataset{
			Label:           fmt.Sprintf("Work item %d", s.ID),
			Data:            data,
			BackgroundColor: itemColour(i),
			BorderColor:     "#000000",
			BorderWidth:     0.5,
		})
	}
	return chart
}

// Reads the chart data from the JSON island and draws it.
const chartScript = `
(function () {
  const chartData = JSON.parse(document.getElementById("chart-data").textContent);
  const context = document.getElementById("stacked-chart").getContext("2d");
  new Chart(context, {
    type: "bar",
    data: { labels: chartData.labels, datasets: chartData.datasets },
    options: {
      responsive: true,
      plugins: {
        title: { display: true, text: chartData.title, font: { size: 16, weight: "bold" } },
        legend: { position: "right", title: { display: true, text: "Work items" } },
        tooltip: {
          callbacks: {
            label: function (item) {
              return item.dataset.label + ": " + item.parsed.y.toFixed(2) + " days";
            }
          }
        }
      },
      scales: {
        x: { stacked: true, title: { display: true, text: "State" } },
        y: { stacked: true, beginAtZero: true, title: { display: true, text: "Total Duration (Days)" } }
      }
    }
  });
})();
`

var minifiedChartScript = sync.OnceValues(func() (template.JS, error) {
	result := api.Transform(chartScript, api.TransformOptions{
		Loader:            api.LoaderJS,
		Target:            api.ES2017,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
	})
	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, m := range result.Errors {
			msgs = append(msgs, m.Text)
		}
		return "", fmt.Errorf("minify chart script: %s", strings.Join(msgs, "; "))
	}
	return template.JS(result.Code), nil
})

var stackedPage = template.Must(template.New("stacked").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Chart.Title}}</title>
<script src="{{.ChartJSURL}}"></script>
<style>body{font-family:sans-serif;margin:2rem}#wrap{max-width:1200px}</style>
</head>
<body>
<div id="wrap"><canvas id="stacked-chart"></canvas></div>
<script type="application/json" id="chart-data">{{.Chart}}</script>
<script>{{.Script}}</script>
</body>
</html>
`))

// RenderStackedHTML writes a self-contained page with the stacked comparison chart.
func RenderStackedHTML(w io.Writer, summaries []workitem.Summary, wf history.Workflow) error {
	if len(summaries) == 0 {
		return fmt.Errorf("no work items to compare")
	}

	script, err := minifiedChartScript()
	if err != nil {
		return err
	}

	return stackedPage.Execute(w, struct {
		Chart      StackedChart
		ChartJSURL string
		Script     template.JS
	}{
		Chart:      BuildStackedChart(summaries, wf),
		ChartJSURL: ChartJSURL,
		Script:     script,
	})
}

// WriteStackedHTML renders the comparison chart to path and optionally opens it.
func WriteStackedHTML(path string, summaries []workitem.Summary, wf history.Workflow, open bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := RenderStackedHTML(f, summaries, wf); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write chart file: %w", err)
	}
	log.Info().Str("path", path).Int("items", len(summaries)).Msg("Stacked state chart saved")

	if open {
		browser.Stdout = os.Stderr
		if err := browser.OpenFile(path); err != nil {
			return fmt.Errorf("open chart: %w", err)
		}
	}
	return nil
}
