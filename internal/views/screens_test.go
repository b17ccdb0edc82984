package views

import (
	"strings"
	"testing"
)

func TestRenderTaskTreeShowsMarkersAndLabels(t *testing.T) {
	out := RenderTaskTree(TreeData{Rows: []TaskRowData{
		{ID: "a", Title: "Plan launch", Status: "IN_PROGRESS", Priority: "HIGH", HasChild: true, Expanded: true, Selected: true, Progress: "1/2"},
		{ID: "b", Title: "Draft copy", Status: "DONE", Priority: "LOW", Depth: 1, DueLabel: "due today"},
		{ID: "c", Title: "Book venue", Status: "TODO", Priority: "CRITICAL", Depth: 1, Overdue: true, DueLabel: "2 days overdue"},
	}})

	for _, want := range []string{"> ▾ [IN_PROGRESS] Plan launch HIGH 1/2", "[DONE] Draft copy", "due today", "OVERDUE"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in tree:\n%s", want, out)
		}
	}
	if strings.Contains(out, "2 days overdue") {
		t.Fatalf("overdue rows should show the marker instead of the label:\n%s", out)
	}
}

func TestRenderTaskTreeEmpty(t *testing.T) {
	out := RenderTaskTree(TreeData{Empty: "no tasks yet"})
	if !strings.Contains(out, "no tasks yet") {
		t.Fatalf("expected empty message, got %q", out)
	}
}

func TestRenderSaveIndicatorStates(t *testing.T) {
	saving := RenderSaveIndicator(SaveData{Saving: true, SpinnerView: "*", LastSaved: "14:30:15", Unsaved: true})
	if !strings.Contains(saving, "Saving...") || strings.Contains(saving, "Saved:") || strings.Contains(saving, "Unsaved") {
		t.Fatalf("saving should hide the other states: %q", saving)
	}

	idle := RenderSaveIndicator(SaveData{LastSaved: "14:30:15", Unsaved: true, AutoSaveOff: true})
	for _, want := range []string{"✓ Saved: 14:30:15", "● Unsaved changes", "auto-save to file: off"} {
		if !strings.Contains(idle, want) {
			t.Fatalf("expected %q in %q", want, idle)
		}
	}

	welcome := RenderSaveIndicator(SaveData{Welcome: true, AutoSaveNote: true})
	if !strings.Contains(welcome, "Welcome! Start by creating your first task.") || !strings.Contains(welcome, "local storage") {
		t.Fatalf("unexpected welcome line: %q", welcome)
	}
}

func TestRenderTaskDetail(t *testing.T) {
	if out := RenderTaskDetail(DetailData{}); !strings.Contains(out, "(no selection)") {
		t.Fatalf("expected placeholder, got %q", out)
	}
	out := RenderTaskDetail(DetailData{
		ID:        "t1",
		Title:     "Write report",
		Status:    "TODO",
		Priority:  "MEDIUM",
		DueDate:   "2026-02-12",
		DueLabel:  "3 days left",
		Links:     []LinkData{{Title: "Docs", URL: "https://example.com", Domain: "example.com"}},
		Documents: []DocumentData{{Name: "notes.md", Size: "1.5 KB", Type: "text/markdown"}},
	})
	for _, want := range []string{"id: t1", "due: 2026-02-12 (3 days left)", "- Docs <https://example.com>", "- notes.md (1.5 KB, text/markdown)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in detail:\n%s", want, out)
		}
	}
}

func TestRenderConfirmAndReport(t *testing.T) {
	confirm := RenderConfirm(ConfirmData{Title: "Delete Task", Message: "This cannot be undone.", ItemName: "Plan"})
	if !strings.Contains(confirm, "Delete Task") || !strings.Contains(confirm, `"Plan"`) || !strings.HasSuffix(confirm, "[y] confirm  [any other key] cancel") {
		t.Fatalf("unexpected confirm panel:\n%s", confirm)
	}

	rep := RenderReportPanel(ReportPanelData{Total: 4, Completed: 2, CompletionRate: 50, RecentDays: 7, Timeline: []TimelineRow{{Date: "2026-02-09", Created: 3, Completed: 1}}})
	for _, want := range []string{"completion rate: 50%", "completed in last 7 days: 0", "duration: no completed tasks", "2026-02-09  +3 created  1 done"} {
		if !strings.Contains(rep, want) {
			t.Fatalf("expected %q in report:\n%s", want, rep)
		}
	}
}
