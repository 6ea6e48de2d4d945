package visuals

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"azdo-flow/internal/history"
	"azdo-flow/internal/workitem"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	totalStyle  = numberStyle.Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Table columns.
const (
	colState = iota
	colDays
	colHours
	colTrans
	colColour
)

// RenderStateTable renders the per-state summary of one work item followed by
// its cycle and lead time.
func RenderStateTable(s workitem.Summary, wf history.Workflow) string {
	states := wf.SortStates(slices.Collect(maps.Keys(s.States)))

	rows := make([][]string, 0, len(states)+1)
	totalDays := 0.0
	totalTrans := 0
	for _, state := range states {
		info := s.States[state]
		totalDays += info.TotalDays
		totalTrans += info.Count

		colour := ColourFor(info.Count)
		rows = append(rows, []string{
			state,
			fmt.Sprintf("%.2f", info.TotalDays),
			fmt.Sprintf("%.1f", info.TotalDays*24),
			strconv.Itoa(info.Count),
			lipgloss.NewStyle().Foreground(lipgloss.Color(colour.Hex)).Render(colour.Name),
		})
	}
	rows = append(rows, []string{
		"TOTAL",
		fmt.Sprintf("%.2f", totalDays),
		fmt.Sprintf("%.1f", totalDays*24),
		strconv.Itoa(totalTrans),
		"",
	})
	lastRow := len(rows) - 1

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		BorderRow(false).
		Headers("State", "Days", "Hours", "Trans", "Colour").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == lastRow && col != colState:
				return totalStyle
			case row == lastRow:
				return cellStyle.Bold(true)
			case col == colDays || col == colHours || col == colTrans:
				return numberStyle
			default:
				return cellStyle
			}
		})

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("WORK ITEM %d STATE SUMMARY", s.ID)))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Title: %s\n", s.Title)
	fmt.Fprintf(&sb, "Type: %s\n", s.Type)
	fmt.Fprintf(&sb, "Current State: %s\n", s.State)
	sb.WriteString(t.Render())
	sb.WriteString("\n")
	sb.WriteString(legendLine())
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Cycle Time: %s\n", FormatDays(s.CycleTimeDays))
	fmt.Fprintf(&sb, "Lead Time: %s\n", FormatDays(s.LeadTimeDays))
	fmt.Fprintf(&sb, "Resolved: %d times\n", s.ResolvedCount)
	return sb.String()
}

// FormatDays renders an optional day count, "n/a" when absent.
func FormatDays(days *float64) string {
	if days == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*days, 'f', -1, 64) + " days"
}

func legendLine() string {
	parts := make([]string, 0, 4)
	for _, e := range Legend() {
		parts = append(parts, e.Colour.Name+" = "+e.Label)
	}
	return "Colour key: " + strings.Join(parts, ", ")
}
