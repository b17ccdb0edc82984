package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/taskplan/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.globalBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings[:4],
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: "j/k", Action: "move selection"},
		{Key: m.Keys.NewTask, Action: "new task"},
		{Key: m.Keys.AddSubtask, Action: "add subtask to selected task"},
		{Key: "space", Action: "expand/collapse subtasks"},
		{Key: m.Keys.Status, Action: "cycle status"},
		{Key: m.Keys.Priority, Action: "cycle priority"},
		{Key: m.Keys.Delete, Action: "delete task (asks first)"},
		{Key: m.Keys.ClearAll, Action: "clear all tasks (asks first)"},
		{Key: m.Keys.Export, Action: "export backup file"},
		{Key: m.Keys.AutoSave, Action: "toggle auto-save to file"},
		{Key: m.Keys.Report, Action: "toggle report panel"},
		{Key: m.Keys.Palette, Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "save and quit"},
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
