package store

import (
	"fmt"

	"github.com/sandeepkv93/taskplan/internal/model"
)

// CheckIntegrity reports every break in the parent/child invariant: each
// subTasks entry must name an existing task whose parentId points back, and
// each parentId must name a task listing the child.
func CheckIntegrity(tasks []model.Task) []error {
	byID := make(map[string]model.Task, len(tasks))
	var problems []error
	for _, task := range tasks {
		if _, dup := byID[task.ID]; dup {
			problems = append(problems, fmt.Errorf("duplicate task id %s", task.ID))
		}
		byID[task.ID] = task
	}
	for _, task := range tasks {
		for _, childID := range task.SubTasks {
			child, ok := byID[childID]
			if !ok {
				problems = append(problems, fmt.Errorf("task %s lists missing subtask %s", task.ID, childID))
				continue
			}
			if child.ParentID != task.ID {
				problems = append(problems, fmt.Errorf("task %s lists subtask %s whose parent is %q", task.ID, childID, child.ParentID))
			}
		}
		if task.ParentID == "" {
			continue
		}
		parent, ok := byID[task.ParentID]
		if !ok {
			problems = append(problems, fmt.Errorf("task %s has missing parent %s", task.ID, task.ParentID))
			continue
		}
		if !contains(parent.SubTasks, task.ID) {
			problems = append(problems, fmt.Errorf("parent %s does not list subtask %s", parent.ID, task.ID))
		}
	}
	return problems
}

func (s *Store) CheckIntegrity() []error {
	return CheckIntegrity(s.Tasks())
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

// Repair returns a copy of tasks with the parent/child links made
// consistent: subTasks entries that do not point back are dropped, children
// missing from their parent's list are appended, and a parentId naming a
// missing task is cleared. The count reports how many links were fixed.
func Repair(tasks []model.Task) ([]model.Task, int) {
	out := cloneTasks(tasks)
	byID := make(map[string]int, len(out))
	for i, task := range out {
		byID[task.ID] = i
	}
	fixed := 0
	for i := range out {
		task := &out[i]
		if task.ParentID == "" {
			continue
		}
		if _, ok := byID[task.ParentID]; !ok || task.ParentID == task.ID {
			task.ParentID = ""
			fixed++
		}
	}
	for i := range out {
		task := &out[i]
		kept := make([]string, 0, len(task.SubTasks))
		seen := make(map[string]bool, len(task.SubTasks))
		for _, childID := range task.SubTasks {
			idx, ok := byID[childID]
			if !ok || seen[childID] || out[idx].ParentID != task.ID {
				fixed++
				continue
			}
			seen[childID] = true
			kept = append(kept, childID)
		}
		task.SubTasks = kept
	}
	for _, child := range out {
		if child.ParentID == "" {
			continue
		}
		parent := &out[byID[child.ParentID]]
		if !contains(parent.SubTasks, child.ID) {
			parent.SubTasks = append(parent.SubTasks, child.ID)
			fixed++
		}
	}
	return out, fixed
}
