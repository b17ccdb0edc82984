package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidStatus   = errors.New("model: invalid task status")
	ErrInvalidPriority = errors.New("model: invalid task priority")
)

type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusBlocked    Status = "BLOCKED"
)

var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone, StatusBlocked}

func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusBlocked:
		return true
	default:
		return false
	}
}

func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	case StatusBlocked:
		return "Blocked"
	default:
		return string(s)
	}
}

// Next cycles through the statuses in display order.
func (s Status) Next() Status {
	for i, candidate := range Statuses {
		if candidate == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusTodo
}

func ParseStatus(raw string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	if normalized == "DOING" || normalized == "PROGRESS" {
		normalized = string(StatusInProgress)
	}
	s := Status(normalized)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	default:
		return string(p)
	}
}

func (p Priority) Next() Priority {
	for i, candidate := range Priorities {
		if candidate == p {
			return Priorities[(i+1)%len(Priorities)]
		}
	}
	return PriorityMedium
}

// ParsePriority is case-insensitive; an empty value means MEDIUM.
func ParsePriority(raw string) (Priority, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if trimmed == "" {
		return PriorityMedium, nil
	}
	p := Priority(trimmed)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
	return p, nil
}

type Link struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	URL     string    `json:"url"`
	AddedAt time.Time `json:"addedAt"`
}

// Document holds an attached file. FileContent is raw text when IsText is
// set, otherwise a base64 data URI.
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	FileName    string    `json:"fileName"`
	Size        int64     `json:"size"`
	Type        string    `json:"type"`
	AddedAt     time.Time `json:"addedAt"`
	FileContent string    `json:"fileContent"`
	IsText      bool      `json:"isText"`
}

type LinkPreview struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Domain      string `json:"domain,omitempty"`
	URL         string `json:"url,omitempty"`
	Loading     bool   `json:"loading,omitempty"`
	Error       bool   `json:"error,omitempty"`
}

type Task struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       Status     `json:"status"`
	Priority     Priority   `json:"priority"`
	ParentID     string     `json:"parentId,omitempty"`
	SubTasks     []string   `json:"subTasks"`
	StartDate    *Date      `json:"startDate"`
	DueDate      *Date      `json:"dueDate"`
	AssignedDate *Date      `json:"assignedDate,omitempty"`
	Links        []Link     `json:"links"`
	Documents    []Document `json:"documents"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (t Task) IsRoot() bool {
	return t.ParentID == ""
}

// Clone returns a deep copy so snapshots never alias store internals.
func (t Task) Clone() Task {
	out := t
	out.SubTasks = append(make([]string, 0, len(t.SubTasks)), t.SubTasks...)
	out.Links = append(make([]Link, 0, len(t.Links)), t.Links...)
	out.Documents = append(make([]Document, 0, len(t.Documents)), t.Documents...)
	out.StartDate = t.StartDate.clone()
	out.DueDate = t.DueDate.clone()
	out.AssignedDate = t.AssignedDate.clone()
	return out
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task createdAt is required")
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return errors.New("model: task updatedAt precedes createdAt")
	}
	if t.ParentID == t.ID {
		return errors.New("model: task cannot be its own parent")
	}
	return nil
}
