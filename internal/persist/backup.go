package persist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sandeepkv93/taskplan/internal/storage"
	"github.com/sandeepkv93/taskplan/internal/store"
)

const (
	msgInvalidFormat = "Invalid file format. Please select a valid task planner backup file."
	msgUnreadable    = "Error reading file. Please make sure it's a valid JSON file."
)

var ErrNotConfirmed = errors.New("persist: destructive action requires confirmation")

// ImportError carries the message shown to the user alongside the cause.
type ImportError struct {
	Message string
	Err     error
}

func (e *ImportError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s (%v)", e.Message, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

type ImportResult struct {
	Tasks    int
	SaveType SaveType
	SavedAt  time.Time
	Repaired int
}

func (r ImportResult) Message() string {
	suffix := ""
	if r.SaveType != "" {
		suffix = fmt.Sprintf(" (%s)", r.SaveType)
	}
	from := "unknown time"
	if !r.SavedAt.IsZero() {
		from = r.SavedAt.Local().Format("2006-01-02 15:04:05")
	}
	return fmt.Sprintf("Successfully loaded %d tasks%s\nFrom: %s", r.Tasks, suffix, from)
}

// ManualBackupName embeds the date and a colon-free time of day.
func ManualBackupName(at time.Time) string {
	return fmt.Sprintf("manual-backup-%s-%s.json", at.Format("2006-01-02"), at.Format("15-04-05"))
}

// BackupFolder is where exports and the auto-save file are written.
func (c *Coordinator) BackupFolder() string {
	return filepath.Join(c.cfg.BackupDir, BackupFolderName)
}

// ExportManual writes a timestamped backup and returns its path.
func (c *Coordinator) ExportManual() (string, error) {
	now := c.cfg.Now()
	env := NewEnvelope(c.store.State(), now, SaveTypeManual)
	path, err := c.writeBackup(ManualBackupName(now), env)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.lastSaved = now
	c.unsaved = false
	c.mu.Unlock()
	c.log.Info().Str("path", path).Int("tasks", len(env.Tasks)).Msg("manual backup written")
	return path, nil
}

// ExportTo writes the current envelope to w.
func (c *Coordinator) ExportTo(w io.Writer, saveType SaveType) error {
	payload, err := Encode(NewEnvelope(c.store.State(), c.cfg.Now(), saveType), true)
	if err != nil {
		return err
	}
	_, err = w.Write(append(payload, '\n'))
	return err
}

func (c *Coordinator) writeBackup(name string, env Envelope) (string, error) {
	payload, err := Encode(env, true)
	if err != nil {
		return "", err
	}
	dir := c.BackupFolder()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return path, nil
}

// Import replaces the whole store state with the backup read from r. On any
// failure the current state is left untouched.
func (c *Coordinator) Import(r io.Reader) (ImportResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return ImportResult{}, &ImportError{Message: msgUnreadable, Err: err}
	}
	env, err := Decode(raw)
	if err != nil {
		msg := msgInvalidFormat
		if IsSyntax(err) {
			msg = msgUnreadable
		}
		c.log.Warn().Err(err).Msg("import rejected")
		return ImportResult{}, &ImportError{Message: msg, Err: err}
	}
	tasks, fixed := store.Repair(env.Tasks)
	env.Tasks = tasks
	c.store.Replace(env.StoreState(c.store.AutoSaveEnabled()))

	c.mu.Lock()
	c.lastSaved = env.SavedAt
	c.unsaved = false
	c.mu.Unlock()

	result := ImportResult{Tasks: len(env.Tasks), SaveType: env.SaveType, SavedAt: env.SavedAt, Repaired: fixed}
	c.log.Info().Int("tasks", result.Tasks).Str("save_type", string(result.SaveType)).Msg("backup imported")
	return result, nil
}

func (c *Coordinator) ImportFile(path string) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, &ImportError{Message: msgUnreadable, Err: err}
	}
	defer f.Close()
	return c.Import(f)
}

// Confirmation is proof that the user agreed to a destructive action.
type Confirmation struct {
	action string
}

const ActionClearAll = "clear-all"

func Confirm(action string) Confirmation {
	return Confirmation{action: action}
}

// ClearAll empties the store, its auxiliary state and the storage slot in
// one call. Pending writes are dropped so the slot stays deleted.
func (c *Coordinator) ClearAll(ctx context.Context, confirmation Confirmation) error {
	if confirmation.action != ActionClearAll {
		return ErrNotConfirmed
	}
	c.mu.Lock()
	c.suppress = true
	c.mu.Unlock()

	c.storageSave.Cancel()
	c.fileSave.Cancel()
	c.store.Clear()
	err := c.kv.Delete(ctx, c.cfg.StorageKey)

	c.mu.Lock()
	c.suppress = false
	c.lastSaved = time.Time{}
	c.unsaved = false
	c.mu.Unlock()

	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		c.log.Warn().Err(err).Msg("could not clear storage")
	} else {
		c.log.Info().Msg("storage cleared")
	}
	return nil
}
