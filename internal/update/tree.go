package update

import (
	"fmt"

	"github.com/sandeepkv93/taskplan/internal/model"
	"github.com/sandeepkv93/taskplan/internal/report"
	"github.com/sandeepkv93/taskplan/internal/views"
)

// refresh rebuilds the visible rows from the store and keeps the selection
// on the same task when it still exists.
func (m *Model) refresh() {
	m.rows = make([]treeRow, 0, len(m.rows))
	if m.Store != nil {
		for _, root := range m.Store.Roots() {
			m.rows = append(m.rows, treeRow{Task: root})
			if !m.Store.IsExpanded(root.ID) {
				continue
			}
			for _, child := range m.Store.Children(root.ID) {
				m.rows = append(m.rows, treeRow{Task: child, Depth: 1})
			}
		}
	}
	if len(m.rows) == 0 {
		m.cursor = 0
		m.SelectedTaskID = ""
		m.syncDetail()
		return
	}
	for i, row := range m.rows {
		if row.Task.ID == m.SelectedTaskID {
			m.cursor = i
			m.syncDetail()
			return
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.SelectedTaskID = m.rows[m.cursor].Task.ID
	m.syncDetail()
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	m.SelectedTaskID = m.rows[m.cursor].Task.ID
	m.syncDetail()
}

func (m Model) selectedTask() (model.Task, bool) {
	if m.Store == nil || m.SelectedTaskID == "" {
		return model.Task{}, false
	}
	return m.Store.Get(m.SelectedTaskID)
}

func (m *Model) syncDetail() {
	task, ok := m.selectedTask()
	if !ok {
		m.detailView.SetContent("")
		return
	}
	m.detailView.SetContent(views.RenderTaskDetail(m.detailData(task)))
	m.detailView.GotoTop()
}

func (m Model) dueLabel(task model.Task) string {
	if task.DueDate == nil || task.DueDate.IsZero() || task.Status == model.StatusDone {
		return ""
	}
	days := task.DueDate.DaysUntil(m.now())
	switch {
	case days < 0:
		return fmt.Sprintf("%d days overdue", -days)
	case days == 0:
		return "due today"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}

func (m Model) progressLabel(all []model.Task, task model.Task) string {
	p, ok := report.Progress(all, task)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s %d/%d", m.progressBar.ViewAs(p.Ratio()), p.Completed, p.Total)
}

func (m Model) renderTree() string {
	all := m.allTasks()
	now := m.now()
	rows := make([]views.TaskRowData, 0, len(m.rows))
	for i, row := range m.rows {
		t := row.Task
		rows = append(rows, views.TaskRowData{
			ID:        t.ID,
			Title:     t.Title,
			Status:    string(t.Status),
			Priority:  string(t.Priority),
			Depth:     row.Depth,
			Expanded:  m.Store.IsExpanded(t.ID),
			HasChild:  len(t.SubTasks) > 0,
			Progress:  m.progressLabel(all, t),
			DueLabel:  m.dueLabel(t),
			Overdue:   report.IsOverdue(t, now),
			Selected:  i == m.cursor,
			LinkCount: len(t.Links),
			DocCount:  len(t.Documents),
		})
	}
	return views.RenderTaskTree(views.TreeData{
		Rows:  rows,
		Empty: "no tasks yet: press n to create one",
	})
}

func (m Model) detailData(task model.Task) views.DetailData {
	data := views.DetailData{
		ID:          task.ID,
		Title:       task.Title,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueLabel:    m.dueLabel(task),
		Overdue:     report.IsOverdue(task, m.now()),
		Progress:    m.progressLabel(m.allTasks(), task),
		Description: views.RenderMarkdown(task.Description),
	}
	if task.StartDate != nil {
		data.StartDate = task.StartDate.String()
	}
	if task.DueDate != nil {
		data.DueDate = task.DueDate.String()
	}
	if task.AssignedDate != nil {
		data.AssignedDate = task.AssignedDate.String()
	}
	previews := m.Store.LinkPreviews()
	for _, l := range task.Links {
		ld := views.LinkData{Title: l.Title, URL: l.URL}
		if p, ok := previews[l.ID]; ok && !p.Error {
			ld.Domain = p.Domain
		}
		data.Links = append(data.Links, ld)
	}
	for _, d := range task.Documents {
		data.Documents = append(data.Documents, views.DocumentData{
			Name: d.Name,
			Size: report.FormatFileSize(d.Size),
			Type: d.Type,
		})
	}
	return data
}

func (m Model) renderSummary() string {
	tasks := m.allTasks()
	s := report.Summarize(tasks, m.now())
	priorities := make([]string, 0, len(s.PriorityCounts))
	for _, p := range model.Priorities {
		if n := s.PriorityCounts[p]; n > 0 {
			priorities = append(priorities, fmt.Sprintf("%s:%d", p.Label(), n))
		}
	}
	return views.RenderSummary(views.SummaryData{
		Total:          s.Total,
		CompletionRate: s.CompletionRate,
		Blocked:        s.Blocked,
		Overdue:        s.Overdue,
		Attachments:    s.TotalAttachments,
		AvgAttachments: s.AvgAttachments,
		Priorities:     priorities,
	})
}

func (m Model) allTasks() []model.Task {
	if m.Store == nil {
		return nil
	}
	return m.Store.Tasks()
}
