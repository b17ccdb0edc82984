package persist

import (
	"errors"
	"testing"

	"github.com/sandeepkv93/taskplan/internal/model"
)

func decodeKind(t *testing.T, raw string) DecodeErrorKind {
	t.Helper()
	_, err := Decode([]byte(raw))
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError for %s, got %v", raw, err)
	}
	return decodeErr.Kind
}

func TestDecodeRejectsBadShapes(t *testing.T) {
	cases := map[string]DecodeErrorKind{
		`{"tasks": "not-an-array"}`:                 KindTasksNotArray,
		`{"tasks": null}`:                           KindTasksNotArray,
		`{"expandedTasks": []}`:                     KindMissingTasks,
		`[1,2,3]`:                                   KindNotObject,
		`{"tasks": [`:                               KindSyntax,
		`{"tasks": [{"title": "no id"}]}`:           KindInvalidTask,
		`{"tasks": [{"id": "a", "status": "NOPE"}]}`: KindInvalidTask,
		`{"tasks": [{"id": "a"}, {"id": "a"}]}`:     KindInvalidTask,
		`{"tasks": [], "expandedTasks": "a"}`:       KindInvalidField,
		`{"tasks": [], "autoSaveEnabled": "yes"}`:   KindInvalidField,
	}
	for raw, want := range cases {
		if got := decodeKind(t, raw); got != want {
			t.Fatalf("%s: expected %s, got %s", raw, want, got)
		}
	}
}

func TestDecodeDefaultsOptionalFields(t *testing.T) {
	env, err := Decode([]byte(`{"tasks": [{"id": "a", "title": "minimal", "dueDate": ""}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Version != Version || env.AutoSaveEnabled != nil || env.SaveType != "" {
		t.Fatalf("unexpected defaults: %+v", env)
	}
	if len(env.ExpandedTasks) != 0 || env.ExpandedTasks == nil {
		t.Fatalf("expected empty expanded list, got %#v", env.ExpandedTasks)
	}
	task := env.Tasks[0]
	if task.Status != model.StatusTodo || task.Priority != model.PriorityMedium {
		t.Fatalf("unexpected enum defaults: %+v", task)
	}
	if task.SubTasks == nil || task.Links == nil || task.Documents == nil || task.DueDate != nil {
		t.Fatalf("unexpected list/date defaults: %+v", task)
	}

	state := env.StoreState(false)
	if state.AutoSaveEnabled {
		t.Fatal("expected fallback auto-save setting when field is absent")
	}
}

func TestDecodeReadsOriginalFormat(t *testing.T) {
	raw := `{
  "tasks": [
    {"id": "k3j9x0a1b", "title": "Plan", "description": "", "status": "IN_PROGRESS", "priority": "HIGH",
     "parentId": null, "subTasks": ["p0q9r8s7t"], "startDate": null, "dueDate": "2024-02-01",
     "links": [{"id": "l1", "title": "Spec", "url": "https://example.com", "addedAt": "2024-01-01T10:00:00.000Z"}],
     "documents": [], "createdAt": "2024-01-01T09:00:00.000Z", "updatedAt": "2024-01-02T09:00:00.000Z"},
    {"id": "p0q9r8s7t", "title": "Child", "description": "", "status": "DONE", "priority": "LOW",
     "parentId": "k3j9x0a1b", "subTasks": [], "startDate": null, "dueDate": null, "links": [], "documents": [],
     "createdAt": "2024-01-01T09:05:00.000Z", "updatedAt": "2024-01-03T09:00:00.000Z"}
  ],
  "expandedTasks": ["k3j9x0a1b"],
  "autoSaveEnabled": false,
  "savedAt": "2024-01-03T10:00:00.000Z",
  "version": "1.0",
  "saveType": "manual"
}`
	env, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Tasks) != 2 || env.Tasks[1].ParentID != "k3j9x0a1b" || env.Tasks[0].ParentID != "" {
		t.Fatalf("unexpected tasks: %+v", env.Tasks)
	}
	if env.Tasks[0].DueDate.String() != "2024-02-01" || env.Tasks[0].Links[0].URL != "https://example.com" {
		t.Fatalf("unexpected task fields: %+v", env.Tasks[0])
	}
	if env.AutoSaveEnabled == nil || *env.AutoSaveEnabled || env.SaveType != SaveTypeManual {
		t.Fatalf("unexpected envelope metadata: %+v", env)
	}
	if env.SavedAt.Year() != 2024 {
		t.Fatalf("unexpected savedAt: %v", env.SavedAt)
	}
}

func TestIsSyntax(t *testing.T) {
	_, err := Decode([]byte("not json"))
	if !IsSyntax(err) {
		t.Fatalf("expected syntax error, got %v", err)
	}
	_, err = Decode([]byte(`{"tasks": 1}`))
	if IsSyntax(err) {
		t.Fatalf("shape error reported as syntax: %v", err)
	}
}
