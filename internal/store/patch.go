package store

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/taskplan/internal/model"
)

// Patch is a partial update. Nil fields are left alone; the Clear flags
// unset optional dates. Identity, timestamps and tree links are not
// patchable.
type Patch struct {
	Title        *string
	Description  *string
	Status       *model.Status
	Priority     *model.Priority
	StartDate    *model.Date
	DueDate      *model.Date
	AssignedDate *model.Date
	Links        *[]model.Link
	Documents    *[]model.Document

	ClearStartDate    bool
	ClearDueDate      bool
	ClearAssignedDate bool
}

func (p Patch) validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrEmptyTitle
	}
	if p.Status != nil && !p.Status.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidStatus, *p.Status)
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidPriority, *p.Priority)
	}
	return nil
}

func (p Patch) apply(task *model.Task) {
	if p.Title != nil {
		task.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Status != nil {
		task.Status = *p.Status
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
	}
	if p.ClearStartDate {
		task.StartDate = nil
	} else if p.StartDate != nil {
		task.StartDate = cloneDate(p.StartDate)
	}
	if p.ClearDueDate {
		task.DueDate = nil
	} else if p.DueDate != nil {
		task.DueDate = cloneDate(p.DueDate)
	}
	if p.ClearAssignedDate {
		task.AssignedDate = nil
	} else if p.AssignedDate != nil {
		task.AssignedDate = cloneDate(p.AssignedDate)
	}
	if p.Links != nil {
		task.Links = append([]model.Link{}, (*p.Links)...)
	}
	if p.Documents != nil {
		task.Documents = append([]model.Document{}, (*p.Documents)...)
	}
}

func SetTitle(v string) Patch { return Patch{Title: &v} }

func SetStatus(v model.Status) Patch { return Patch{Status: &v} }

func SetPriority(v model.Priority) Patch { return Patch{Priority: &v} }
