package store

import (
	"fmt"
	"testing"

	"github.com/sandeepkv93/taskplan/internal/model"
)

func TestCheckIntegrityFindsBothDirections(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", SubTasks: []string{"b", "ghost"}},
		{ID: "b", ParentID: "c"},
		{ID: "c"},
		{ID: "d", ParentID: "missing"},
	}
	problems := CheckIntegrity(tasks)
	// a->ghost missing, a->b wrong parent, c does not list b, d missing parent
	if len(problems) != 4 {
		t.Fatalf("expected 4 problems, got %d: %v", len(problems), problems)
	}
}

func TestRepairMakesTreeConsistent(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", SubTasks: []string{"b", "ghost", "b"}},
		{ID: "b", ParentID: "a"},
		{ID: "c", ParentID: "a"},
		{ID: "d", ParentID: "missing"},
	}
	repaired, fixed := Repair(tasks)
	if problems := CheckIntegrity(repaired); len(problems) != 0 {
		t.Fatalf("expected consistent tree, got %v", problems)
	}
	if fixed != 4 {
		t.Fatalf("expected 4 fixes, got %d", fixed)
	}
	if got := fmt.Sprint(repaired[0].SubTasks); got != "[b c]" {
		t.Fatalf("unexpected subtasks: %s", got)
	}
	if repaired[3].ParentID != "" {
		t.Fatalf("expected orphan promoted to root, got parent %q", repaired[3].ParentID)
	}
	if len(tasks[0].SubTasks) != 3 {
		t.Fatal("repair must not modify its input")
	}
}

func TestRepairLeavesConsistentTreeAlone(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", SubTasks: []string{"b"}},
		{ID: "b", ParentID: "a", SubTasks: []string{}},
	}
	_, fixed := Repair(tasks)
	if fixed != 0 {
		t.Fatalf("expected no fixes, got %d", fixed)
	}
}
