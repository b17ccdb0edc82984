package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sandeepkv93/taskplan/internal/model"
)

var (
	ErrNotFound        = errors.New("store: task not found")
	ErrEmptyTitle      = errors.New("store: task title is required")
	ErrParentNotFound  = errors.New("store: parent task not found")
	ErrNestingTooDeep  = errors.New("store: subtasks cannot have subtasks")
	ErrAttachmentMatch = errors.New("store: attachment not found")
)

type ChangeKind string

const (
	ChangeCreate   ChangeKind = "create"
	ChangeUpdate   ChangeKind = "update"
	ChangeDelete   ChangeKind = "delete"
	ChangeExpand   ChangeKind = "expand"
	ChangeSettings ChangeKind = "settings"
	ChangePreview  ChangeKind = "preview"
	ChangeReplace  ChangeKind = "replace"
	ChangeClear    ChangeKind = "clear"
)

type Change struct {
	Kind     ChangeKind
	TaskIDs  []string
	Revision uint64
}

// State is everything the store persists: the tasks plus the auxiliary
// presentation state saved next to them.
type State struct {
	Tasks           []model.Task
	Expanded        []string
	AutoSaveEnabled bool
	LinkPreviews    map[string]model.LinkPreview
}

type NewTask struct {
	Title        string
	Description  string
	Priority     model.Priority
	ParentID     string
	StartDate    *model.Date
	DueDate      *model.Date
	AssignedDate *model.Date
	Links        []model.Link
	Documents    []model.Document
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// Store owns the task collection. Tasks keep insertion order; index maps an
// id to its slot in tasks and is rebuilt after any removal.
type Store struct {
	mu          sync.Mutex
	tasks       []model.Task
	index       map[string]int
	expanded    map[string]bool
	autoSave    bool
	previews    map[string]model.LinkPreview
	revision    uint64
	subscribers []func(Change)
	now         func() time.Time
	newID       func() string
}

func New(opts ...Option) *Store {
	s := &Store{
		index:    make(map[string]int),
		expanded: make(map[string]bool),
		previews: make(map[string]model.LinkPreview),
		autoSave: true,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    model.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn for every subsequent change. Callbacks run after
// the store lock is released, in registration order.
func (s *Store) Subscribe(fn func(Change)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

func (s *Store) CreateTask(in NewTask) (string, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.IsValid() {
		return "", fmt.Errorf("%w: %q", model.ErrInvalidPriority, priority)
	}

	s.mu.Lock()
	parentIdx := -1
	if in.ParentID != "" {
		idx, ok := s.index[in.ParentID]
		if !ok {
			s.mu.Unlock()
			return "", fmt.Errorf("%w: %s", ErrParentNotFound, in.ParentID)
		}
		if !s.tasks[idx].IsRoot() {
			s.mu.Unlock()
			return "", fmt.Errorf("%w: %s", ErrNestingTooDeep, in.ParentID)
		}
		parentIdx = idx
	}

	id := s.uniqueIDLocked()
	now := s.now()
	task := model.Task{
		ID:           id,
		Title:        title,
		Description:  in.Description,
		Status:       model.StatusTodo,
		Priority:     priority,
		ParentID:     in.ParentID,
		SubTasks:     []string{},
		StartDate:    cloneDate(in.StartDate),
		DueDate:      cloneDate(in.DueDate),
		AssignedDate: cloneDate(in.AssignedDate),
		Links:        append([]model.Link{}, in.Links...),
		Documents:    append([]model.Document{}, in.Documents...),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.tasks = append(s.tasks, task)
	s.index[id] = len(s.tasks) - 1

	changed := []string{id}
	if parentIdx >= 0 {
		parent := &s.tasks[parentIdx]
		parent.SubTasks = append(parent.SubTasks, id)
		touch(parent, now)
		changed = append(changed, parent.ID)
	}
	s.unlockAndNotify(ChangeCreate, changed)
	return id, nil
}

func (s *Store) UpdateTask(id string, patch Patch) error {
	if err := patch.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	idx, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	task := &s.tasks[idx]
	patch.apply(task)
	touch(task, s.now())
	s.unlockAndNotify(ChangeUpdate, []string{id})
	return nil
}

// DeleteTask removes id and every descendant, then prunes references to the
// removed ids from the survivors' subTasks.
func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	if _, ok := s.index[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	removed := make(map[string]bool)
	s.collectSubtreeLocked(id, removed)

	now := s.now()
	kept := make([]model.Task, 0, len(s.tasks)-len(removed))
	for _, task := range s.tasks {
		if removed[task.ID] {
			continue
		}
		pruned := task.SubTasks[:0:0]
		for _, childID := range task.SubTasks {
			if !removed[childID] {
				pruned = append(pruned, childID)
			}
		}
		if len(pruned) != len(task.SubTasks) {
			task.SubTasks = pruned
			touch(&task, now)
		}
		kept = append(kept, task)
	}
	s.tasks = kept
	s.reindexLocked()

	ids := make([]string, 0, len(removed))
	for removedID := range removed {
		delete(s.expanded, removedID)
		ids = append(ids, removedID)
	}
	sort.Strings(ids)
	s.unlockAndNotify(ChangeDelete, ids)
	return nil
}

// collectSubtreeLocked walks subTasks depth-first, and also follows parentId
// back-references so a child missing from its parent's list is still removed.
func (s *Store) collectSubtreeLocked(root string, into map[string]bool) {
	children := make(map[string][]string)
	for _, task := range s.tasks {
		if task.ParentID != "" {
			children[task.ParentID] = append(children[task.ParentID], task.ID)
		}
	}
	stack := []string{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if into[id] {
			continue
		}
		idx, ok := s.index[id]
		if !ok {
			continue
		}
		into[id] = true
		stack = append(stack, s.tasks[idx].SubTasks...)
		stack = append(stack, children[id]...)
	}
}

func (s *Store) ToggleExpanded(id string) {
	s.mu.Lock()
	if s.expanded[id] {
		delete(s.expanded, id)
	} else {
		s.expanded[id] = true
	}
	s.unlockAndNotify(ChangeExpand, []string{id})
}

func (s *Store) IsExpanded(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded[id]
}

func (s *Store) ExpandedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expandedLocked()
}

func (s *Store) AutoSaveEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoSave
}

func (s *Store) SetAutoSaveEnabled(enabled bool) {
	s.mu.Lock()
	if s.autoSave == enabled {
		s.mu.Unlock()
		return
	}
	s.autoSave = enabled
	s.unlockAndNotify(ChangeSettings, nil)
}

func (s *Store) LinkPreviews() map[string]model.LinkPreview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyPreviews(s.previews)
}

func (s *Store) SetLinkPreview(linkID string, preview model.LinkPreview) {
	s.mu.Lock()
	s.previews[linkID] = preview
	s.unlockAndNotify(ChangePreview, nil)
}

func (s *Store) Get(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.index[id]
	if !ok {
		return model.Task{}, false
	}
	return s.tasks[idx].Clone(), true
}

// Tasks returns a deep copy of the collection in insertion order.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

func (s *Store) Roots() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, 0)
	for _, task := range s.tasks {
		if task.IsRoot() {
			out = append(out, task.Clone())
		}
	}
	return out
}

// Children resolves id's subTasks in order, skipping ids that no longer exist.
func (s *Store) Children(id string) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.index[id]
	if !ok {
		return nil
	}
	out := make([]model.Task, 0, len(s.tasks[idx].SubTasks))
	for _, childID := range s.tasks[idx].SubTasks {
		if childIdx, found := s.index[childID]; found {
			out = append(out, s.tasks[childIdx].Clone())
		}
	}
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Tasks:           cloneTasks(s.tasks),
		Expanded:        s.expandedLocked(),
		AutoSaveEnabled: s.autoSave,
		LinkPreviews:    copyPreviews(s.previews),
	}
}

// Replace swaps in a whole new state. Used for hydration and imports; the
// incoming tasks are taken as-is, including their timestamps.
func (s *Store) Replace(state State) {
	s.mu.Lock()
	s.tasks = cloneTasks(state.Tasks)
	s.reindexLocked()
	s.expanded = make(map[string]bool, len(state.Expanded))
	for _, id := range state.Expanded {
		s.expanded[id] = true
	}
	s.autoSave = state.AutoSaveEnabled
	s.previews = copyPreviews(state.LinkPreviews)
	s.unlockAndNotify(ChangeReplace, nil)
}

// Clear empties tasks and auxiliary state. Auto-save goes back to its
// default of enabled.
func (s *Store) Clear() {
	s.mu.Lock()
	s.tasks = nil
	s.index = make(map[string]int)
	s.expanded = make(map[string]bool)
	s.previews = make(map[string]model.LinkPreview)
	s.autoSave = true
	s.unlockAndNotify(ChangeClear, nil)
}

func (s *Store) unlockAndNotify(kind ChangeKind, ids []string) {
	s.revision++
	change := Change{Kind: kind, TaskIDs: ids, Revision: s.revision}
	subscribers := append([]func(Change){}, s.subscribers...)
	s.mu.Unlock()
	for _, fn := range subscribers {
		fn(change)
	}
}

func (s *Store) uniqueIDLocked() string {
	for {
		id := s.newID()
		if _, exists := s.index[id]; !exists && id != "" {
			return id
		}
	}
}

func (s *Store) reindexLocked() {
	s.index = make(map[string]int, len(s.tasks))
	for i, task := range s.tasks {
		s.index[task.ID] = i
	}
}

func (s *Store) expandedLocked() []string {
	out := make([]string, 0, len(s.expanded))
	for id := range s.expanded {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func touch(task *model.Task, now time.Time) {
	if now.Before(task.CreatedAt) {
		now = task.CreatedAt
	}
	task.UpdatedAt = now
}

func cloneTasks(in []model.Task) []model.Task {
	out := make([]model.Task, len(in))
	for i, task := range in {
		out[i] = task.Clone()
	}
	return out
}

func copyPreviews(in map[string]model.LinkPreview) map[string]model.LinkPreview {
	out := make(map[string]model.LinkPreview, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneDate(d *model.Date) *model.Date {
	if d == nil {
		return nil
	}
	out := *d
	return &out
}
