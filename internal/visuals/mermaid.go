package visuals

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"azdo-flow/internal/history"
	"azdo-flow/internal/workitem"
)

// GenerateStateDurationChart creates a Mermaid xychart-beta bar chart of the days
// a work item spent in each state.
func GenerateStateDurationChart(s workitem.Summary, wf history.Workflow) string {
	if len(s.States) == 0 {
		return ""
	}

	states := wf.SortStates(slices.Collect(maps.Keys(s.States)))

	var labels []string
	var values []string
	maxVal := 0.0
	for _, state := range states {
		days := s.States[state].TotalDays
		labels = append(labels, fmt.Sprintf("\"%s\"", mermaidText(state)))
		values = append(values, fmt.Sprintf("%.2f", days))
		maxVal = math.Max(maxVal, days)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Work item %d: Time Spent in Each State\"\n", s.ID))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Duration (Days)\" 0 --> %d\n", int(math.Max(1, math.Ceil(maxVal*1.1)))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateTimelineChart creates a Mermaid Gantt chart of the occupancy segments
// of a work item, one bar per visit to a state.
func GenerateTimelineChart(s workitem.Summary) string {
	if len(s.Timeline) == 0 {
		return ""
	}

	const layout = "2006-01-02T15:04:05"

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("gantt\n")
	sb.WriteString(fmt.Sprintf("    title Work item %d: %s\n", s.ID, mermaidText(s.Title)))
	sb.WriteString("    dateFormat YYYY-MM-DDTHH:mm:ss\n")
	sb.WriteString("    axisFormat %Y-%m-%d\n")

	section := ""
	for i, seg := range s.Timeline {
		if seg.State != section {
			section = seg.State
			sb.WriteString(fmt.Sprintf("    section %s\n", mermaidText(seg.State)))
		}
		sb.WriteString(fmt.Sprintf("    %.2fd : s%d, %s, %s\n",
			seg.Days(), i, seg.Start.UTC().Format(layout), seg.End.UTC().Format(layout)))
	}
	sb.WriteString("```")
	return sb.String()
}

// mermaidText strips characters that terminate Mermaid labels or statements.
func mermaidText(s string) string {
	return strings.NewReplacer(`"`, "'", ":", " ", ";", " ", "#", "", "\n", " ").Replace(s)
}
