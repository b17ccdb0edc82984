package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/taskplan/internal/model"
)

type DateField string

const (
	FieldCreatedAt    DateField = "createdAt"
	FieldAssignedDate DateField = "assignedDate"
	FieldStartDate    DateField = "startDate"
	FieldDueDate      DateField = "dueDate"
	FieldUpdatedAt    DateField = "updatedAt"
)

func (f DateField) IsValid() bool {
	switch f {
	case FieldCreatedAt, FieldAssignedDate, FieldStartDate, FieldDueDate, FieldUpdatedAt:
		return true
	default:
		return false
	}
}

func ParseDateField(raw string) (DateField, error) {
	if strings.TrimSpace(raw) == "" {
		return FieldCreatedAt, nil
	}
	for _, f := range []DateField{FieldCreatedAt, FieldAssignedDate, FieldStartDate, FieldDueDate, FieldUpdatedAt} {
		if strings.EqualFold(string(f), strings.TrimSpace(raw)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("report: unknown date field %q", raw)
}

// FieldDate returns the calendar day the task carries for field.
func FieldDate(task model.Task, field DateField) (model.Date, bool) {
	switch field {
	case FieldCreatedAt:
		return dayOf(task.CreatedAt)
	case FieldUpdatedAt:
		return dayOf(task.UpdatedAt)
	case FieldAssignedDate:
		return deref(task.AssignedDate)
	case FieldStartDate:
		return deref(task.StartDate)
	case FieldDueDate:
		return deref(task.DueDate)
	default:
		return model.Date{}, false
	}
}

// ByDateRange keeps tasks whose field falls within [start, end] by calendar
// day. A zero bound is open; tasks without the field are dropped.
func ByDateRange(tasks []model.Task, start, end model.Date, field DateField) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		day, ok := FieldDate(task, field)
		if !ok {
			continue
		}
		if !start.IsZero() && day.Before(start) {
			continue
		}
		if !end.IsZero() && day.After(end) {
			continue
		}
		out = append(out, task)
	}
	return out
}

// ByStatus keeps tasks with the given status. An empty status keeps all.
func ByStatus(tasks []model.Task, status model.Status) []model.Task {
	if status == "" {
		return tasks
	}
	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Status == status {
			out = append(out, task)
		}
	}
	return out
}

func ByPriority(tasks []model.Task, priority model.Priority) []model.Task {
	if priority == "" {
		return tasks
	}
	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Priority == priority {
			out = append(out, task)
		}
	}
	return out
}

// IsOverdue is true for a task with a due date in the past that is not done.
func IsOverdue(task model.Task, now time.Time) bool {
	if task.DueDate == nil || task.DueDate.IsZero() || task.Status == model.StatusDone {
		return false
	}
	return task.DueDate.Time().Before(now)
}

func Overdue(tasks []model.Task, now time.Time) []model.Task {
	out := make([]model.Task, 0)
	for _, task := range tasks {
		if IsOverdue(task, now) {
			out = append(out, task)
		}
	}
	return out
}

// CompletedInPeriod returns DONE tasks last updated within the past days.
func CompletedInPeriod(tasks []model.Task, days int, now time.Time) []model.Task {
	cutoff := now.AddDate(0, 0, -days)
	out := make([]model.Task, 0)
	for _, task := range tasks {
		if task.Status == model.StatusDone && !task.UpdatedAt.Before(cutoff) {
			out = append(out, task)
		}
	}
	return out
}

func dayOf(tm time.Time) (model.Date, bool) {
	if tm.IsZero() {
		return model.Date{}, false
	}
	return model.DateOf(tm.UTC()), true
}

func deref(d *model.Date) (model.Date, bool) {
	if d == nil || d.IsZero() {
		return model.Date{}, false
	}
	return *d, true
}
