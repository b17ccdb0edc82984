package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type TaskRowData struct {
	ID        string
	Title     string
	Status    string
	Priority  string
	Depth     int
	Expanded  bool
	HasChild  bool
	Progress  string
	DueLabel  string
	Overdue   bool
	Selected  bool
	LinkCount int
	DocCount  int
}

type TreeData struct {
	Rows  []TaskRowData
	Empty string
}

type LinkData struct {
	Title  string
	URL    string
	Domain string
}

type DocumentData struct {
	Name string
	Size string
	Type string
}

type DetailData struct {
	ID           string
	Title        string
	Status       string
	Priority     string
	StartDate    string
	DueDate      string
	AssignedDate string
	DueLabel     string
	Overdue      bool
	Progress     string
	Description  string
	Links        []LinkData
	Documents    []DocumentData
}

type SummaryData struct {
	Total          int
	CompletionRate int
	Blocked        int
	Overdue        int
	Attachments    int
	AvgAttachments float64
	Priorities     []string
}

type SaveData struct {
	Saving       bool
	SpinnerView  string
	LastSaved    string
	Unsaved      bool
	Welcome      bool
	AutoSaveNote bool
	AutoSaveOff  bool
}

type ConfirmData struct {
	Title    string
	Message  string
	ItemName string
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

var (
	statusColors = map[string]lipgloss.Color{
		"TODO":        lipgloss.Color("7"),
		"IN_PROGRESS": lipgloss.Color("12"),
		"DONE":        lipgloss.Color("10"),
		"BLOCKED":     lipgloss.Color("9"),
	}
	priorityColors = map[string]lipgloss.Color{
		"LOW":      lipgloss.Color("8"),
		"MEDIUM":   lipgloss.Color("11"),
		"HIGH":     lipgloss.Color("208"),
		"CRITICAL": lipgloss.Color("9"),
	}
	selectedStyle = lipgloss.NewStyle().Bold(true)
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	savedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	unsavedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	welcomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dangerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

func StatusBadge(status string) string {
	return lipgloss.NewStyle().Foreground(statusColors[status]).Render("[" + status + "]")
}

func PriorityBadge(priority string) string {
	return lipgloss.NewStyle().Foreground(priorityColors[priority]).Render(priority)
}

func RenderTaskTree(data TreeData) string {
	if len(data.Rows) == 0 {
		return "tasks:\n" + dimStyle.Render(data.Empty)
	}
	var b strings.Builder
	b.WriteString("tasks:\n")
	for _, row := range data.Rows {
		cursor := " "
		if row.Selected {
			cursor = ">"
		}
		marker := " "
		if row.HasChild {
			marker = "▸"
			if row.Expanded {
				marker = "▾"
			}
		}
		indent := strings.Repeat("  ", row.Depth)
		title := row.Title
		if row.Selected {
			title = selectedStyle.Render(title)
		}
		line := fmt.Sprintf("%s %s%s %s %s %s", cursor, indent, marker, StatusBadge(row.Status), title, PriorityBadge(row.Priority))
		if row.Progress != "" {
			line += " " + row.Progress
		}
		if row.LinkCount+row.DocCount > 0 {
			line += dimStyle.Render(fmt.Sprintf(" +%d", row.LinkCount+row.DocCount))
		}
		if row.Overdue {
			line += " " + overdueStyle.Render("OVERDUE")
		} else if row.DueLabel != "" {
			line += dimStyle.Render(" " + row.DueLabel)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderTaskDetail(data DetailData) string {
	if data.ID == "" {
		return "details:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("details:\n")
	b.WriteString(selectedStyle.Render(data.Title) + "\n")
	b.WriteString(fmt.Sprintf("id: %s\n", data.ID))
	b.WriteString(fmt.Sprintf("status: %s  priority: %s\n", StatusBadge(data.Status), PriorityBadge(data.Priority)))
	writeField(&b, "assigned", data.AssignedDate)
	writeField(&b, "start", data.StartDate)
	if data.DueDate != "" {
		due := data.DueDate
		if data.DueLabel != "" {
			due += " (" + data.DueLabel + ")"
		}
		if data.Overdue {
			due += " " + overdueStyle.Render("OVERDUE")
		}
		b.WriteString("due: " + due + "\n")
	}
	writeField(&b, "subtasks", data.Progress)
	if len(data.Links) > 0 {
		b.WriteString("\nlinks:\n")
		for _, l := range data.Links {
			b.WriteString(fmt.Sprintf("- %s <%s>", l.Title, l.URL))
			if l.Domain != "" {
				b.WriteString(dimStyle.Render(" " + l.Domain))
			}
			b.WriteString("\n")
		}
	}
	if len(data.Documents) > 0 {
		b.WriteString("\ndocuments:\n")
		for _, d := range data.Documents {
			b.WriteString(fmt.Sprintf("- %s (%s, %s)\n", d.Name, d.Size, d.Type))
		}
	}
	if strings.TrimSpace(data.Description) != "" {
		b.WriteString("\n" + data.Description + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func writeField(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString(name + ": " + value + "\n")
}

func RenderSummary(data SummaryData) string {
	if data.Total == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nsummary:\n")
	b.WriteString(fmt.Sprintf("tasks: %d | done: %d%% | blocked: %d | overdue: %d\n", data.Total, data.CompletionRate, data.Blocked, data.Overdue))
	b.WriteString(fmt.Sprintf("attachments: %d (avg %.1f per task)\n", data.Attachments, data.AvgAttachments))
	if len(data.Priorities) > 0 {
		b.WriteString("priority: " + strings.Join(data.Priorities, " "))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderSaveIndicator(data SaveData) string {
	parts := make([]string, 0, 3)
	if data.Saving {
		parts = append(parts, welcomeStyle.Render(data.SpinnerView+" Saving..."))
	}
	if !data.Saving && data.LastSaved != "" {
		parts = append(parts, savedStyle.Render("✓ Saved: "+data.LastSaved))
	}
	if !data.Saving && data.Unsaved {
		parts = append(parts, unsavedStyle.Render("● Unsaved changes"))
	}
	if data.Welcome {
		parts = append(parts, welcomeStyle.Render("Welcome! Start by creating your first task."))
	}
	if data.AutoSaveNote {
		parts = append(parts, dimStyle.Render("Data automatically saves to local storage"))
	}
	if data.AutoSaveOff {
		parts = append(parts, dimStyle.Render("auto-save to file: off"))
	}
	return strings.Join(parts, "  ")
}

func RenderConfirm(data ConfirmData) string {
	var b strings.Builder
	b.WriteString(dangerStyle.Render(data.Title) + "\n")
	b.WriteString(data.Message + "\n")
	if data.ItemName != "" {
		b.WriteString(fmt.Sprintf("%q\n", data.ItemName))
	}
	b.WriteString("[y] confirm  [any other key] cancel")
	return b.String()
}

func RenderInput(prompt, inputView string) string {
	return prompt + "\n" + inputView + "\n" + dimStyle.Render("[enter] save  [esc] cancel")
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return "command: " + inputView
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s\n%s", strings.Join(data.Bindings, "\n"), data.HelpView)
}
