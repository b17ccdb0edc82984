package views

import (
	"fmt"
	"strings"
)

type TimelineRow struct {
	Date      string
	Created   int
	Completed int
}

type ReportPanelData struct {
	Range             string
	Total             int
	Completed         int
	InProgress        int
	Todo              int
	Blocked           int
	CompletionRate    int
	Overdue           int
	RecentlyCompleted int
	RecentDays        int
	DurationsKnown    bool
	MinDays           int
	MaxDays           int
	AvgDays           float64
	Timeline          []TimelineRow
}

func RenderReportPanel(data ReportPanelData) string {
	var b strings.Builder
	b.WriteString("report:\n")
	if data.Range != "" {
		b.WriteString(data.Range + "\n")
	}
	b.WriteString(fmt.Sprintf("total: %d | done: %d | in progress: %d | todo: %d | blocked: %d\n",
		data.Total, data.Completed, data.InProgress, data.Todo, data.Blocked))
	b.WriteString(fmt.Sprintf("completion rate: %d%%\n", data.CompletionRate))
	b.WriteString(fmt.Sprintf("overdue: %d | completed in last %d days: %d\n", data.Overdue, data.RecentDays, data.RecentlyCompleted))
	if data.DurationsKnown {
		b.WriteString(fmt.Sprintf("duration (days): min %d | max %d | avg %.1f\n", data.MinDays, data.MaxDays, data.AvgDays))
	} else {
		b.WriteString("duration: no completed tasks with an assigned date\n")
	}
	if len(data.Timeline) > 0 {
		b.WriteString("\ntimeline:\n")
		for _, row := range data.Timeline {
			b.WriteString(fmt.Sprintf("%s  +%d created  %d done\n", row.Date, row.Created, row.Completed))
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
