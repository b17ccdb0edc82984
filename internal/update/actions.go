package update

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskplan/internal/model"
	"github.com/sandeepkv93/taskplan/internal/persist"
	"github.com/sandeepkv93/taskplan/internal/store"
)

func (m *Model) setError(err error) {
	m.LastError = err
	m.Status = StatusBar{Text: err.Error(), IsError: true}
	m.log.Warn().Err(err).Msg("action failed")
}

func (m *Model) startInput(purpose inputPurpose, parentID string) {
	m.Mode = ModeInput
	m.Input = InputState{Purpose: purpose, ParentID: parentID}
	m.titleInput.SetValue("")
	m.titleInput.Focus()
}

func (m *Model) cancelInput() {
	m.Mode = ModeBrowse
	m.Input = InputState{}
	m.titleInput.SetValue("")
	m.titleInput.Blur()
}

// startSubtask targets the selected root, or the parent of a selected
// subtask since the tree is one level deep.
func (m *Model) startSubtask() {
	task, ok := m.selectedTask()
	if !ok {
		m.Status = StatusBar{Text: "select a task first", IsError: true}
		return
	}
	parentID := task.ID
	if !task.IsRoot() {
		parentID = task.ParentID
	}
	m.startInput(inputSubtask, parentID)
}

func (m *Model) submitInput() {
	title := strings.TrimSpace(m.titleInput.Value())
	if title == "" {
		m.Status = StatusBar{Text: "title is required", IsError: true}
		return
	}
	in := m.Input
	id, err := m.createTask(title, in.ParentID)
	m.cancelInput()
	if err != nil {
		m.setError(err)
		return
	}
	m.SelectedTaskID = id
	m.Status = StatusBar{Text: fmt.Sprintf("created task: %s", title)}
}

func (m *Model) createTask(title, parentID string) (string, error) {
	id, err := m.Store.CreateTask(store.NewTask{Title: title, ParentID: parentID})
	if err != nil {
		return "", err
	}
	if parentID != "" && !m.Store.IsExpanded(parentID) {
		m.Store.ToggleExpanded(parentID)
	}
	return id, nil
}

func (m *Model) toggleExpanded() {
	task, ok := m.selectedTask()
	if !ok {
		return
	}
	if !task.IsRoot() {
		m.SelectedTaskID = task.ParentID
		task, _ = m.Store.Get(task.ParentID)
	}
	if len(task.SubTasks) == 0 {
		m.Status = StatusBar{Text: "task has no subtasks"}
		return
	}
	m.Store.ToggleExpanded(task.ID)
}

func (m *Model) cycleStatus() {
	task, ok := m.selectedTask()
	if !ok {
		return
	}
	next := task.Status.Next()
	if err := m.Store.UpdateTask(task.ID, store.SetStatus(next)); err != nil {
		m.setError(err)
		return
	}
	m.Status = StatusBar{Text: fmt.Sprintf("%s: %s", task.Title, next.Label())}
}

func (m *Model) cyclePriority() {
	task, ok := m.selectedTask()
	if !ok {
		return
	}
	next := task.Priority.Next()
	if err := m.Store.UpdateTask(task.ID, store.SetPriority(next)); err != nil {
		m.setError(err)
		return
	}
	m.Status = StatusBar{Text: fmt.Sprintf("%s: %s priority", task.Title, next.Label())}
}

func (m *Model) requestDelete() {
	task, ok := m.selectedTask()
	if !ok {
		return
	}
	m.askDelete(task)
}

func (m *Model) askDelete(task model.Task) {
	c := &Confirmation{
		Action:   confirmDelete,
		TaskID:   task.ID,
		Title:    "Delete Task",
		Message:  "Are you sure you want to delete this task? This will also delete all its subtasks, links, and documents.",
		ItemName: task.Title,
	}
	if !task.IsRoot() {
		c.Title = "Delete Subtask"
		c.Message = "Are you sure you want to delete this subtask?"
	}
	m.Confirm = c
	m.Mode = ModeConfirm
}

func (m *Model) requestClearAll() {
	m.Confirm = &Confirmation{
		Action:  confirmClearAll,
		Title:   "Clear All Tasks",
		Message: "Are you sure you want to clear all tasks? This will remove all your tasks, subtasks, links, and documents.",
	}
	m.Mode = ModeConfirm
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) Model {
	c := m.Confirm
	m.Confirm = nil
	m.Mode = ModeBrowse
	if c == nil {
		return m
	}
	if msg.String() != "y" && msg.String() != "Y" {
		m.Status = StatusBar{Text: "cancelled"}
		return m
	}
	switch c.Action {
	case confirmDelete:
		if err := m.Store.DeleteTask(c.TaskID); err != nil {
			m.setError(err)
			return m
		}
		m.Status = StatusBar{Text: fmt.Sprintf("deleted: %s", c.ItemName)}
	case confirmClearAll:
		if m.Persist != nil {
			if err := m.Persist.ClearAll(context.Background(), persist.Confirm(persist.ActionClearAll)); err != nil {
				m.setError(err)
				return m
			}
		} else {
			m.Store.Clear()
		}
		m.SelectedTaskID = ""
		m.Status = StatusBar{Text: "all tasks cleared"}
	}
	return m
}

func (m *Model) exportBackup() {
	if m.Persist == nil {
		m.setError(errors.New("export is not available"))
		return
	}
	path, err := m.Persist.ExportManual()
	if err != nil {
		m.setError(fmt.Errorf("export failed: %w", err))
		return
	}
	m.Status = StatusBar{Text: fmt.Sprintf("Tasks saved successfully: %s", path)}
}

func (m *Model) toggleAutoSave() {
	enabled := !m.Store.AutoSaveEnabled()
	m.Store.SetAutoSaveEnabled(enabled)
	state := "off"
	if enabled {
		state = "on"
	}
	m.Status = StatusBar{Text: "auto-save to file " + state}
}
