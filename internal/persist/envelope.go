package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/taskplan/internal/model"
	"github.com/sandeepkv93/taskplan/internal/store"
)

const Version = "1.0"

type SaveType string

const (
	SaveTypeAuto   SaveType = "auto-save"
	SaveTypeManual SaveType = "manual"
)

// Envelope is the unit written to storage and to backup files.
type Envelope struct {
	Tasks           []model.Task                 `json:"tasks"`
	ExpandedTasks   []string                     `json:"expandedTasks"`
	AutoSaveEnabled *bool                        `json:"autoSaveEnabled,omitempty"`
	LinkPreviews    map[string]model.LinkPreview `json:"linkPreviews,omitempty"`
	SavedAt         time.Time                    `json:"savedAt"`
	Version         string                       `json:"version"`
	SaveType        SaveType                     `json:"saveType,omitempty"`
}

func NewEnvelope(state store.State, savedAt time.Time, saveType SaveType) Envelope {
	autoSave := state.AutoSaveEnabled
	env := Envelope{
		Tasks:           state.Tasks,
		ExpandedTasks:   state.Expanded,
		AutoSaveEnabled: &autoSave,
		LinkPreviews:    state.LinkPreviews,
		SavedAt:         savedAt.UTC(),
		Version:         Version,
		SaveType:        saveType,
	}
	if env.Tasks == nil {
		env.Tasks = []model.Task{}
	}
	if env.ExpandedTasks == nil {
		env.ExpandedTasks = []string{}
	}
	if len(env.LinkPreviews) == 0 {
		env.LinkPreviews = nil
	}
	return env
}

// StoreState converts the envelope into store state. Fields the envelope
// does not carry fall back to the given auto-save setting and empty values.
func (e Envelope) StoreState(autoSaveFallback bool) store.State {
	autoSave := autoSaveFallback
	if e.AutoSaveEnabled != nil {
		autoSave = *e.AutoSaveEnabled
	}
	return store.State{
		Tasks:           e.Tasks,
		Expanded:        e.ExpandedTasks,
		AutoSaveEnabled: autoSave,
		LinkPreviews:    e.LinkPreviews,
	}
}

func Encode(env Envelope, indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(env, "", "  ")
	}
	return json.Marshal(env)
}

type DecodeErrorKind string

const (
	KindSyntax        DecodeErrorKind = "syntax"
	KindNotObject     DecodeErrorKind = "not_object"
	KindMissingTasks  DecodeErrorKind = "missing_tasks"
	KindTasksNotArray DecodeErrorKind = "tasks_not_array"
	KindInvalidTask   DecodeErrorKind = "invalid_task"
	KindInvalidField  DecodeErrorKind = "invalid_field"
)

type DecodeError struct {
	Kind  DecodeErrorKind
	Field string
	Index int
	Err   error
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("persist: ")
	b.WriteString(string(e.Kind))
	if e.Field != "" {
		b.WriteString(" ")
		b.WriteString(e.Field)
	}
	if e.Kind == KindInvalidTask {
		fmt.Fprintf(&b, " at index %d", e.Index)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsSyntax distinguishes unreadable JSON from a well-formed file of the
// wrong shape.
func IsSyntax(err error) bool {
	var decodeErr *DecodeError
	return errors.As(err, &decodeErr) && decodeErr.Kind == KindSyntax
}

// Decode validates raw into an Envelope. Only "tasks" is required and it
// must be an array; every other field is defaulted when absent. Tasks get
// the creation defaults for missing status, priority and lists.
func Decode(raw []byte) (Envelope, error) {
	trimmed := bytes.TrimSpace(raw)
	if !json.Valid(trimmed) {
		var probe any
		err := json.Unmarshal(trimmed, &probe)
		if err == nil {
			err = errors.New("invalid json")
		}
		return Envelope{}, &DecodeError{Kind: KindSyntax, Err: err}
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Envelope{}, &DecodeError{Kind: KindNotObject}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return Envelope{}, &DecodeError{Kind: KindNotObject, Err: err}
	}
	rawTasks, ok := fields["tasks"]
	if !ok {
		return Envelope{}, &DecodeError{Kind: KindMissingTasks, Field: "tasks"}
	}
	rawTasks = bytes.TrimSpace(rawTasks)
	if len(rawTasks) == 0 || rawTasks[0] != '[' {
		return Envelope{}, &DecodeError{Kind: KindTasksNotArray, Field: "tasks"}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(rawTasks, &items); err != nil {
		return Envelope{}, &DecodeError{Kind: KindTasksNotArray, Field: "tasks", Err: err}
	}
	env := Envelope{Tasks: make([]model.Task, 0, len(items)), ExpandedTasks: []string{}}
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		task, err := decodeTask(item)
		if err != nil {
			return Envelope{}, &DecodeError{Kind: KindInvalidTask, Index: i, Err: err}
		}
		if seen[task.ID] {
			return Envelope{}, &DecodeError{Kind: KindInvalidTask, Index: i, Err: fmt.Errorf("duplicate id %q", task.ID)}
		}
		seen[task.ID] = true
		env.Tasks = append(env.Tasks, task)
	}

	if err := decodeOptional(fields, "expandedTasks", &env.ExpandedTasks); err != nil {
		return Envelope{}, err
	}
	if env.ExpandedTasks == nil {
		env.ExpandedTasks = []string{}
	}
	var autoSave *bool
	if err := decodeOptional(fields, "autoSaveEnabled", &autoSave); err != nil {
		return Envelope{}, err
	}
	env.AutoSaveEnabled = autoSave
	if err := decodeOptional(fields, "linkPreviews", &env.LinkPreviews); err != nil {
		return Envelope{}, err
	}
	if err := decodeOptional(fields, "savedAt", &env.SavedAt); err != nil {
		return Envelope{}, err
	}
	if err := decodeOptional(fields, "version", &env.Version); err != nil {
		return Envelope{}, err
	}
	if env.Version == "" {
		env.Version = Version
	}
	if err := decodeOptional(fields, "saveType", &env.SaveType); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

func decodeOptional(fields map[string]json.RawMessage, name string, dst any) error {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &DecodeError{Kind: KindInvalidField, Field: name, Err: err}
	}
	return nil
}

func decodeTask(raw json.RawMessage) (model.Task, error) {
	var task model.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return model.Task{}, err
	}
	if strings.TrimSpace(task.ID) == "" {
		return model.Task{}, errors.New("task id is required")
	}
	if task.Status == "" {
		task.Status = model.StatusTodo
	}
	if !task.Status.IsValid() {
		return model.Task{}, fmt.Errorf("%w: %q", model.ErrInvalidStatus, task.Status)
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if !task.Priority.IsValid() {
		return model.Task{}, fmt.Errorf("%w: %q", model.ErrInvalidPriority, task.Priority)
	}
	if task.SubTasks == nil {
		task.SubTasks = []string{}
	}
	if task.Links == nil {
		task.Links = []model.Link{}
	}
	if task.Documents == nil {
		task.Documents = []model.Document{}
	}
	task.StartDate = dropZero(task.StartDate)
	task.DueDate = dropZero(task.DueDate)
	task.AssignedDate = dropZero(task.AssignedDate)
	if task.UpdatedAt.Before(task.CreatedAt) {
		task.UpdatedAt = task.CreatedAt
	}
	return task, nil
}

func dropZero(d *model.Date) *model.Date {
	if d == nil || d.IsZero() {
		return nil
	}
	return d
}
