package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/sandeepkv93/taskplan/internal/model"
)

const (
	DefaultRangeDays  = 30
	DefaultRecentDays = 7
)

// Filter narrows the task list a report is built from. Empty status and
// priority match everything; zero dates leave the range open.
type Filter struct {
	Start      model.Date     `json:"start"`
	End        model.Date     `json:"end"`
	Field      DateField      `json:"dateField"`
	Status     model.Status   `json:"status,omitempty"`
	Priority   model.Priority `json:"priority,omitempty"`
	RecentDays int            `json:"recentDays"`
}

// DefaultFilter covers the last thirty days by creation date.
func DefaultFilter(now time.Time) Filter {
	today := model.DateOf(now.UTC())
	return Filter{
		Start:      model.DateOf(now.UTC().AddDate(0, 0, -DefaultRangeDays)),
		End:        today,
		Field:      FieldCreatedAt,
		RecentDays: DefaultRecentDays,
	}
}

func (f Filter) Apply(tasks []model.Task) []model.Task {
	field := f.Field
	if field == "" {
		field = FieldCreatedAt
	}
	out := ByDateRange(tasks, f.Start, f.End, field)
	out = ByStatus(out, f.Status)
	return ByPriority(out, f.Priority)
}

type Metrics struct {
	Productivity      ProductivityMetrics `json:"productivity"`
	Overdue           int                 `json:"overdue"`
	RecentlyCompleted int                 `json:"recentlyCompleted"`
	Durations         DurationStats       `json:"durationStats"`
}

type Row struct {
	Title        string         `json:"title"`
	Status       model.Status   `json:"status"`
	Priority     model.Priority `json:"priority"`
	AssignedDate *model.Date    `json:"assignedDate"`
	StartDate    *model.Date    `json:"startDate"`
	DueDate      *model.Date    `json:"dueDate"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	IsOverdue    bool           `json:"isOverdue"`
}

type Report struct {
	GeneratedAt time.Time     `json:"generatedAt"`
	Filter      Filter        `json:"filters"`
	Metrics     Metrics       `json:"metrics"`
	Summary     Summary       `json:"summary"`
	Timeline    []TimelineDay `json:"timeline"`
	Tasks       []Row         `json:"tasks"`
}

func Build(tasks []model.Task, filter Filter, now time.Time) Report {
	if filter.Field == "" {
		filter.Field = FieldCreatedAt
	}
	if filter.RecentDays <= 0 {
		filter.RecentDays = DefaultRecentDays
	}
	filtered := filter.Apply(tasks)

	rows := make([]Row, 0, len(filtered))
	for _, task := range filtered {
		rows = append(rows, Row{
			Title:        task.Title,
			Status:       task.Status,
			Priority:     task.Priority,
			AssignedDate: task.AssignedDate,
			StartDate:    task.StartDate,
			DueDate:      task.DueDate,
			CreatedAt:    task.CreatedAt,
			UpdatedAt:    task.UpdatedAt,
			IsOverdue:    IsOverdue(task, now),
		})
	}

	return Report{
		GeneratedAt: now.UTC(),
		Filter:      filter,
		Metrics: Metrics{
			Productivity:      Productivity(filtered),
			Overdue:           len(Overdue(filtered, now)),
			RecentlyCompleted: len(CompletedInPeriod(filtered, filter.RecentDays, now)),
			Durations:         Durations(filtered),
		},
		Summary:  Summarize(filtered, now),
		Timeline: Timeline(filtered, filter.Field),
		Tasks:    rows,
	}
}

func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("report: encode: %w", err)
	}
	return nil
}

func FileName(now time.Time) string {
	return "task-report-" + now.Format(model.DateLayout) + ".json"
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders bytes with up to two decimals, trailing zeros
// dropped: 1536 -> "1.5 KB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	const k = 1024
	value := float64(bytes)
	i := 0
	for value >= k && i < len(sizeUnits)-1 {
		value /= k
		i++
	}
	value = math.Round(value*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeUnits[i]
}
