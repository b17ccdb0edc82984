package update

import (
	"fmt"

	"github.com/sandeepkv93/taskplan/internal/report"
	"github.com/sandeepkv93/taskplan/internal/views"
)

const savedTimeLayout = "2006-01-02 15:04:05"

func (m Model) renderSaveIndicator() string {
	if m.Persist == nil || m.Store == nil {
		return ""
	}
	loaded := m.Persist.LoadState().Done()
	last := m.Persist.LastSaved()
	data := views.SaveData{
		Saving:      m.Persist.Saving(),
		SpinnerView: m.saveSpinner.View(),
		Unsaved:     m.Persist.HasUnsavedChanges(),
		AutoSaveOff: !m.Store.AutoSaveEnabled(),
	}
	if !last.IsZero() {
		data.LastSaved = last.Local().Format(savedTimeLayout)
	}
	tasks := m.Store.Len()
	data.Welcome = loaded && tasks == 0 && last.IsZero()
	data.AutoSaveNote = loaded && tasks > 0 && !last.IsZero()
	return views.RenderSaveIndicator(data)
}

func (m Model) renderReport() string {
	now := m.now()
	filter := report.DefaultFilter(now)
	filter.RecentDays = m.ReportDays
	r := report.Build(m.allTasks(), filter, now)

	timeline := make([]views.TimelineRow, 0, len(r.Timeline))
	for _, day := range r.Timeline {
		timeline = append(timeline, views.TimelineRow{Date: day.Date, Created: day.Created, Completed: day.Completed})
	}
	p := r.Metrics.Productivity
	d := r.Metrics.Durations
	return views.RenderReportPanel(views.ReportPanelData{
		Range:             fmt.Sprintf("created %s to %s", filter.Start, filter.End),
		Total:             p.Total,
		Completed:         p.Completed,
		InProgress:        p.InProgress,
		Todo:              p.Todo,
		Blocked:           p.Blocked,
		CompletionRate:    p.CompletionRate,
		Overdue:           r.Metrics.Overdue,
		RecentlyCompleted: r.Metrics.RecentlyCompleted,
		RecentDays:        filter.RecentDays,
		DurationsKnown:    d.Available,
		MinDays:           d.MinDays,
		MaxDays:           d.MaxDays,
		AvgDays:           d.AvgDays,
		Timeline:          timeline,
	})
}

func (m Model) renderOverlay() string {
	switch m.Mode {
	case ModeConfirm:
		if m.Confirm == nil {
			return ""
		}
		return views.RenderConfirm(views.ConfirmData{
			Title:    m.Confirm.Title,
			Message:  m.Confirm.Message,
			ItemName: m.Confirm.ItemName,
		})
	case ModeInput:
		prompt := "new task"
		if m.Input.Purpose == inputSubtask {
			prompt = "new subtask"
			if parent, ok := m.Store.Get(m.Input.ParentID); ok {
				prompt += " for " + parent.Title
			}
		}
		return views.RenderInput(prompt, m.titleInput.View())
	case ModePalette:
		return views.RenderCommandPalette(true, m.commandInput.View())
	default:
		return ""
	}
}
