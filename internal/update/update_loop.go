package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskplan/internal/views"
)

func (m Model) Init() tea.Cmd {
	return waitForChangeCmd(m.changes)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.refresh()
	if tick := next.ensureSpinner(); tick != nil {
		cmd = tea.Batch(cmd, tick)
	}
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.Mode {
		case ModeConfirm:
			return m.handleConfirmKey(typed), nil
		case ModeInput:
			return m.handleInputKey(typed), nil
		case ModePalette:
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed), nil
		}
		return m.handleBrowseKey(typed)
	case StoreChangedMsg:
		return m, waitForChangeCmd(m.changes)
	case spinner.TickMsg:
		if !m.spinnerActive {
			return m, nil
		}
		if !m.persistBusy() {
			m.spinnerActive = false
			return m, nil
		}
		var cmd tea.Cmd
		m.saveSpinner, cmd = m.saveSpinner.Update(typed)
		return m, cmd
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.log.Error().Err(typed.Err).Msg("ui error")
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case m.Keys.Quit:
		return m.quit()
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case m.Keys.Palette:
		m.Mode = ModePalette
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
	case m.Keys.NewTask:
		m.startInput(inputNewTask, "")
	case m.Keys.AddSubtask:
		m.startSubtask()
	case m.Keys.Expand:
		m.toggleExpanded()
	case m.Keys.Status:
		m.cycleStatus()
	case m.Keys.Priority:
		m.cyclePriority()
	case m.Keys.Delete:
		m.requestDelete()
	case m.Keys.ClearAll:
		m.requestClearAll()
	case m.Keys.Export:
		m.exportBackup()
	case m.Keys.AutoSave:
		m.toggleAutoSave()
	case m.Keys.Report:
		m.ReportVisible = !m.ReportVisible
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.cancelInput()
		m.Status = StatusBar{Text: "cancelled"}
	case "enter":
		m.submitInput()
	default:
		editInput(&m.titleInput, msg)
	}
	return m
}

func (m Model) quit() (Model, tea.Cmd) {
	if m.Persist != nil {
		m.Persist.Flush()
	}
	m.Quitting = true
	return m, tea.Quit
}

func (m Model) persistBusy() bool {
	return m.Persist != nil && (m.Persist.Pending() || m.Persist.Saving())
}

func (m *Model) ensureSpinner() tea.Cmd {
	if m.spinnerActive || !m.persistBusy() {
		return nil
	}
	m.spinnerActive = true
	return m.saveSpinner.Tick
}

// editInput appends typed text directly so unfocused inputs still capture it.
func editInput(in *textinput.Model, msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyRunes:
		in.SetValue(in.Value() + string(msg.Runes))
		in.CursorEnd()
	case tea.KeySpace:
		in.SetValue(in.Value() + " ")
		in.CursorEnd()
	default:
		*in, _ = in.Update(msg)
	}
}

func (m Model) View() string {
	left := m.renderTree()
	if summary := m.renderSummary(); summary != "" {
		left += "\n" + summary
	}
	right := m.detailView.View()
	if m.ReportVisible {
		right = m.renderReport()
	}
	if m.HelpVisible {
		right += "\n\n" + m.renderHelpView()
	}

	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	taskCount := 0
	if m.Store != nil {
		taskCount = m.Store.Len()
	}
	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("Task Planner | tasks: %d | mode: %s | selected: %s", taskCount, m.Mode, m.SelectedTaskID),
		SaveLine:   m.renderSaveIndicator(),
		LeftPane:   left,
		RightPane:  strings.TrimSpace(right),
		Overlay:    m.renderOverlay(),
		StatusLine: status,
		IsError:    m.Status.IsError,
		Footer:     "keys: n new | a subtask | space expand | s status | p priority | d delete | X clear | w export | A autosave | r report | / cmd | ? help | q quit",
	})
}
