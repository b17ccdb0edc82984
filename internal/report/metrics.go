package report

import (
	"math"
	"sort"
	"time"

	"github.com/sandeepkv93/taskplan/internal/model"
)

type ProductivityMetrics struct {
	Total             int `json:"total"`
	Completed         int `json:"completed"`
	InProgress        int `json:"inProgress"`
	Todo              int `json:"todo"`
	Blocked           int `json:"blocked"`
	CompletionRate    int `json:"completionRate"`
	InProgressPercent int `json:"inProgressRate"`
}

// Productivity counts only the tasks it is given, so a filtered list yields
// metrics consistent with that filter.
func Productivity(tasks []model.Task) ProductivityMetrics {
	var m ProductivityMetrics
	m.Total = len(tasks)
	for _, task := range tasks {
		switch task.Status {
		case model.StatusDone:
			m.Completed++
		case model.StatusInProgress:
			m.InProgress++
		case model.StatusBlocked:
			m.Blocked++
		default:
			m.Todo++
		}
	}
	m.CompletionRate = percent(m.Completed, m.Total)
	m.InProgressPercent = percent(m.InProgress, m.Total)
	return m
}

type DurationStats struct {
	Available bool    `json:"available"`
	Count     int     `json:"count"`
	MinDays   int     `json:"minDays"`
	MaxDays   int     `json:"maxDays"`
	AvgDays   float64 `json:"avgDays"`
}

// TaskDuration is the whole days from assignment to completion, rounded up.
// Only DONE tasks with an assigned date qualify.
func TaskDuration(task model.Task) (int, bool) {
	if task.Status != model.StatusDone || task.AssignedDate == nil || task.AssignedDate.IsZero() {
		return 0, false
	}
	diff := task.UpdatedAt.Sub(task.AssignedDate.Time())
	return int(math.Ceil(diff.Hours() / 24)), true
}

func Durations(tasks []model.Task) DurationStats {
	var stats DurationStats
	total := 0
	for _, task := range tasks {
		days, ok := TaskDuration(task)
		if !ok {
			continue
		}
		if stats.Count == 0 || days < stats.MinDays {
			stats.MinDays = days
		}
		if stats.Count == 0 || days > stats.MaxDays {
			stats.MaxDays = days
		}
		stats.Count++
		total += days
	}
	if stats.Count == 0 {
		return DurationStats{}
	}
	stats.Available = true
	stats.AvgDays = math.Round(float64(total)/float64(stats.Count)*10) / 10
	return stats
}

type Summary struct {
	Total            int                    `json:"total"`
	Completed        int                    `json:"completed"`
	CompletionRate   int                    `json:"completionRate"`
	Blocked          int                    `json:"blocked"`
	Overdue          int                    `json:"overdue"`
	TotalAttachments int                    `json:"totalAttachments"`
	AvgAttachments   float64                `json:"avgAttachments"`
	PriorityCounts   map[model.Priority]int `json:"priorityCounts"`
	RootTasks        int                    `json:"rootTasks"`
	SubTasks         int                    `json:"subTasks"`
}

func Summarize(tasks []model.Task, now time.Time) Summary {
	s := Summary{
		Total:          len(tasks),
		PriorityCounts: make(map[model.Priority]int, len(model.Priorities)),
	}
	for _, p := range model.Priorities {
		s.PriorityCounts[p] = 0
	}
	for _, task := range tasks {
		if task.Status == model.StatusDone {
			s.Completed++
		}
		if task.Status == model.StatusBlocked {
			s.Blocked++
		}
		if IsOverdue(task, now) {
			s.Overdue++
		}
		if task.IsRoot() {
			s.RootTasks++
		} else {
			s.SubTasks++
		}
		s.TotalAttachments += len(task.Links) + len(task.Documents)
		s.PriorityCounts[task.Priority]++
	}
	s.CompletionRate = percent(s.Completed, s.Total)
	if s.Total > 0 {
		s.AvgAttachments = math.Round(float64(s.TotalAttachments)/float64(s.Total)*10) / 10
	}
	return s
}

type SubtaskProgress struct {
	Completed int
	Total     int
}

func (p SubtaskProgress) Ratio() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total)
}

// Progress counts done subtasks of task, resolving ids against all.
// Tasks without subtasks have no progress.
func Progress(all []model.Task, task model.Task) (SubtaskProgress, bool) {
	if len(task.SubTasks) == 0 {
		return SubtaskProgress{}, false
	}
	byID := make(map[string]model.Task, len(all))
	for _, t := range all {
		byID[t.ID] = t
	}
	var p SubtaskProgress
	for _, id := range task.SubTasks {
		sub, ok := byID[id]
		if !ok {
			continue
		}
		p.Total++
		if sub.Status == model.StatusDone {
			p.Completed++
		}
	}
	return p, true
}

// TimelineDays caps the timeline to the most recent buckets.
const TimelineDays = 14

type TimelineDay struct {
	Date      string `json:"date"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}

// Timeline buckets tasks per day of field. Completions are counted on the
// day of updatedAt for DONE tasks.
func Timeline(tasks []model.Task, field DateField) []TimelineDay {
	days := make(map[string]*TimelineDay)
	bucket := func(key string) *TimelineDay {
		d, ok := days[key]
		if !ok {
			d = &TimelineDay{Date: key}
			days[key] = d
		}
		return d
	}
	for _, task := range tasks {
		if day, ok := FieldDate(task, field); ok {
			d := bucket(day.String())
			if field == FieldCreatedAt {
				d.Created++
			}
		}
		if task.Status == model.StatusDone && !task.UpdatedAt.IsZero() {
			bucket(model.DateOf(task.UpdatedAt.UTC()).String()).Completed++
		}
	}
	out := make([]TimelineDay, 0, len(days))
	for _, d := range days {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	if len(out) > TimelineDays {
		out = out[len(out)-TimelineDays:]
	}
	return out
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
