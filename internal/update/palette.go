package update

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskplan/internal/attach"
	"github.com/sandeepkv93/taskplan/internal/commands"
	"github.com/sandeepkv93/taskplan/internal/model"
	"github.com/sandeepkv93/taskplan/internal/persist"
	"github.com/sandeepkv93/taskplan/internal/store"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m = m.executePaletteCommand(m.commandInput.Value())
	default:
		editInput(&m.commandInput, msg)
	}
	return m
}

func (m *Model) closePalette() {
	if m.Mode == ModePalette {
		m.Mode = ModeBrowse
	}
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

// resolveTarget accepts a task id, a 1-based row number in the visible
// tree, or "." for the selected task.
func (m Model) resolveTarget(ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "." || strings.EqualFold(ref, "selected") {
		if task, ok := m.selectedTask(); ok {
			return task, nil
		}
		return model.Task{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no task selected"}
	}
	if task, ok := m.Store.Get(ref); ok {
		return task, nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(m.rows) {
		return m.rows[n-1].Task, nil
	}
	return model.Task{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task matches %q", ref)}
}

func (m Model) executePaletteCommand(raw string) Model {
	m.closePalette()
	cmd, err := commands.Parse(strings.TrimSpace(raw))
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}

	res, err := commands.Execute(cmd, m.paletteHandlers())
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.log.Warn().Err(err).Str("command", string(cmd.Type)).Msg("command failed")
		return m
	}
	if res.Message != "" {
		m.Status = StatusBar{Text: res.Message}
	}
	return m
}

// paletteHandlers closes over m so handlers can move the selection or open
// a confirmation.
func (m *Model) paletteHandlers() commands.Handlers {
	return commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			id, err := m.createTask(a.Title, "")
			if err != nil {
				return commands.Result{}, err
			}
			m.SelectedTaskID = id
			return commands.Result{Message: fmt.Sprintf("created task: %s", a.Title)}, nil
		},
		Sub: func(a commands.SubArgs) (commands.Result, error) {
			parent, err := m.resolveTarget(a.Parent)
			if err != nil {
				return commands.Result{}, err
			}
			id, err := m.createTask(a.Title, parent.ID)
			if err != nil {
				return commands.Result{}, err
			}
			m.SelectedTaskID = id
			return commands.Result{Message: fmt.Sprintf("added subtask to %s: %s", parent.Title, a.Title)}, nil
		},
		Status: func(a commands.StatusArgs) (commands.Result, error) {
			task, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.Store.UpdateTask(task.ID, store.SetStatus(a.Status)); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("%s: %s", task.Title, a.Status.Label())}, nil
		},
		Priority: func(a commands.PriorityArgs) (commands.Result, error) {
			task, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.Store.UpdateTask(task.ID, store.SetPriority(a.Priority)); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("%s: %s priority", task.Title, a.Priority.Label())}, nil
		},
		Due: func(a commands.DateArgs) (commands.Result, error) {
			return m.setDate(a, "due", func(p *store.Patch, d *model.Date) {
				if d == nil {
					p.ClearDueDate = true
				} else {
					p.DueDate = d
				}
			})
		},
		Assign: func(a commands.DateArgs) (commands.Result, error) {
			return m.setDate(a, "assigned", func(p *store.Patch, d *model.Date) {
				if d == nil {
					p.ClearAssignedDate = true
				} else {
					p.AssignedDate = d
				}
			})
		},
		Link: func(a commands.LinkArgs) (commands.Result, error) {
			task, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			link, err := attach.NewLink(a.Title, a.URL)
			if err != nil {
				return commands.Result{}, err
			}
			id, err := m.Store.AddLink(task.ID, link.Title, link.URL)
			if err != nil {
				return commands.Result{}, err
			}
			m.Store.SetLinkPreview(id, attach.Preview(link.URL))
			return commands.Result{Message: fmt.Sprintf("link added to %s", task.Title)}, nil
		},
		Attach: func(a commands.AttachArgs) (commands.Result, error) {
			task, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			doc, err := attach.ReadDocument(a.Path)
			if err != nil {
				return commands.Result{}, err
			}
			if _, err := m.Store.AddDocument(task.ID, doc); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("attached %s to %s", doc.Name, task.Title)}, nil
		},
		Delete: func(a commands.DeleteArgs) (commands.Result, error) {
			task, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			m.askDelete(task)
			return commands.Result{Message: "press y to confirm"}, nil
		},
		Export: func() (commands.Result, error) {
			m.exportBackup()
			if m.Status.IsError {
				return commands.Result{}, m.LastError
			}
			return commands.Result{Message: m.Status.Text}, nil
		},
		Import: func(a commands.ImportArgs) (commands.Result, error) {
			if m.Persist == nil {
				return commands.Result{}, errors.New("import is not available")
			}
			res, err := m.Persist.ImportFile(a.Path)
			if err != nil {
				var ie *persist.ImportError
				if errors.As(err, &ie) {
					return commands.Result{}, errors.New(ie.Message)
				}
				return commands.Result{}, err
			}
			msg := firstLine(res.Message())
			if res.Repaired > 0 {
				msg += fmt.Sprintf(" (repaired %d references)", res.Repaired)
			}
			return commands.Result{Message: msg}, nil
		},
		AutoSave: func(a commands.AutoSaveArgs) (commands.Result, error) {
			m.Store.SetAutoSaveEnabled(a.Enabled)
			if a.Enabled {
				return commands.Result{Message: "auto-save to file on"}, nil
			}
			return commands.Result{Message: "auto-save to file off"}, nil
		},
		Clear: func() (commands.Result, error) {
			m.requestClearAll()
			return commands.Result{Message: "press y to confirm"}, nil
		},
		Report: func(a commands.ReportArgs) (commands.Result, error) {
			if a.Days > 0 {
				m.ReportDays = a.Days
			}
			m.ReportVisible = true
			return commands.Result{Message: fmt.Sprintf("report: completions over the last %d days", m.ReportDays)}, nil
		},
	}
}

func (m *Model) setDate(a commands.DateArgs, label string, set func(*store.Patch, *model.Date)) (commands.Result, error) {
	task, err := m.resolveTarget(a.Target)
	if err != nil {
		return commands.Result{}, err
	}
	var patch store.Patch
	set(&patch, a.Date)
	if err := m.Store.UpdateTask(task.ID, patch); err != nil {
		return commands.Result{}, err
	}
	if a.Date == nil {
		return commands.Result{Message: fmt.Sprintf("%s: %s date cleared", task.Title, label)}, nil
	}
	return commands.Result{Message: fmt.Sprintf("%s: %s %s", task.Title, label, a.Date)}, nil
}
