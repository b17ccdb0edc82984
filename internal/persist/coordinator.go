package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sandeepkv93/taskplan/internal/scheduler"
	"github.com/sandeepkv93/taskplan/internal/storage"
	"github.com/sandeepkv93/taskplan/internal/store"
)

const (
	DefaultSaveDelay     = 500 * time.Millisecond
	DefaultFileSaveDelay = 3 * time.Second
	BackupFolderName     = "TaskPlannerBackups"
	AutoSaveFileName     = "auto-save-backup.json"
)

type LoadState int

const (
	LoadNotAttempted LoadState = iota
	LoadLoading
	LoadHydrated
	LoadFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadNotAttempted:
		return "not-attempted"
	case LoadLoading:
		return "loading"
	case LoadHydrated:
		return "hydrated"
	case LoadFailed:
		return "load-failed"
	default:
		return "unknown"
	}
}

// Done reports whether auto-load has finished, successfully or not.
func (s LoadState) Done() bool {
	return s == LoadHydrated || s == LoadFailed
}

type Config struct {
	StorageKey    string
	SaveDelay     time.Duration
	FileSaveDelay time.Duration
	// BackupDir is the parent of the TaskPlannerBackups folder. Empty
	// disables the file auto-save channel.
	BackupDir string
	Now       func() time.Time
	AfterFunc scheduler.AfterFunc
}

func (c Config) withDefaults() Config {
	if c.StorageKey == "" {
		c.StorageKey = storage.StorageKey
	}
	if c.SaveDelay <= 0 {
		c.SaveDelay = DefaultSaveDelay
	}
	if c.FileSaveDelay <= 0 {
		c.FileSaveDelay = DefaultFileSaveDelay
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Coordinator keeps the key-value slot and the backup folder in step with
// the store. The storage channel and the file channel each have their own
// debouncer.
type Coordinator struct {
	store *store.Store
	kv    storage.KV
	cfg   Config
	log   zerolog.Logger

	storageSave *scheduler.Debouncer
	fileSave    *scheduler.Debouncer

	mu        sync.Mutex
	loadState LoadState
	lastSaved time.Time
	unsaved   bool
	saving    bool
	changeSeq uint64
	suppress  bool
	closed    bool
}

func NewCoordinator(s *store.Store, kv storage.KV, cfg Config, logger zerolog.Logger) (*Coordinator, error) {
	if s == nil || kv == nil {
		return nil, errors.New("persist: store and storage are required")
	}
	cfg = cfg.withDefaults()
	c := &Coordinator{
		store: s,
		kv:    kv,
		cfg:   cfg,
		log:   logger.With().Str("component", "persist").Logger(),
	}
	var opts []scheduler.Option
	if cfg.AfterFunc != nil {
		opts = append(opts, scheduler.WithAfterFunc(cfg.AfterFunc))
	}
	var err error
	if c.storageSave, err = scheduler.NewDebouncer(cfg.SaveDelay, c.saveToStorage, opts...); err != nil {
		return nil, err
	}
	if c.fileSave, err = scheduler.NewDebouncer(cfg.FileSaveDelay, c.saveToAutoFile, opts...); err != nil {
		return nil, err
	}
	s.Subscribe(c.onChange)
	return c, nil
}

// AutoLoad hydrates the store from the storage slot. It runs once; later
// calls return the final state. An empty, unreadable or malformed slot all
// mean "start fresh" and are only logged.
func (c *Coordinator) AutoLoad(ctx context.Context) LoadState {
	c.mu.Lock()
	if c.loadState != LoadNotAttempted {
		state := c.loadState
		c.mu.Unlock()
		return state
	}
	c.loadState = LoadLoading
	c.mu.Unlock()

	result := LoadFailed
	var savedAt time.Time
	raw, err := c.kv.Get(ctx, c.cfg.StorageKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.log.Info().Msg("no stored data, starting fresh")
	case err != nil:
		c.log.Warn().Err(err).Msg("could not auto-load data from storage")
	default:
		env, decodeErr := Decode(raw)
		if decodeErr != nil {
			c.log.Warn().Err(decodeErr).Msg("could not auto-load data from storage")
			break
		}
		tasks, fixed := store.Repair(env.Tasks)
		if fixed > 0 {
			c.log.Warn().Int("fixed", fixed).Msg("repaired inconsistent subtask links in stored data")
		}
		env.Tasks = tasks
		c.store.Replace(env.StoreState(c.store.AutoSaveEnabled()))
		savedAt = env.SavedAt
		result = LoadHydrated
		c.log.Info().Int("tasks", len(env.Tasks)).Msg("auto-loaded tasks from storage")
	}
	if result == LoadFailed && c.store.Len() > 0 {
		c.store.Clear()
	}

	c.mu.Lock()
	c.loadState = result
	c.lastSaved = savedAt
	c.unsaved = false
	c.mu.Unlock()
	return result
}

func (c *Coordinator) onChange(store.Change) {
	c.mu.Lock()
	if c.closed || c.suppress || !c.loadState.Done() {
		c.mu.Unlock()
		return
	}
	c.changeSeq++
	c.unsaved = true
	c.mu.Unlock()

	c.storageSave.Trigger()
	if c.store.AutoSaveEnabled() && c.store.Len() > 0 && c.cfg.BackupDir != "" {
		c.fileSave.Trigger()
	}
}

// saveToStorage writes whatever the store holds when the timer fires, not
// what it held when the write was scheduled.
func (c *Coordinator) saveToStorage() {
	c.mu.Lock()
	seq := c.changeSeq
	c.saving = true
	c.mu.Unlock()

	now := c.cfg.Now()
	env := NewEnvelope(c.store.State(), now, "")
	payload, err := Encode(env, false)
	if err == nil {
		err = c.kv.Put(context.Background(), c.cfg.StorageKey, payload)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.saving = false
	if err != nil {
		c.log.Warn().Err(err).Msg("could not save to storage")
		return
	}
	c.lastSaved = now
	if seq == c.changeSeq {
		c.unsaved = false
	}
	c.log.Debug().Int("tasks", len(env.Tasks)).Int("bytes", len(payload)).Msg("data auto-saved to storage")
}

func (c *Coordinator) saveToAutoFile() {
	if !c.store.AutoSaveEnabled() || c.store.Len() == 0 {
		return
	}
	c.mu.Lock()
	seq := c.changeSeq
	c.mu.Unlock()

	now := c.cfg.Now()
	path, err := c.writeBackup(AutoSaveFileName, NewEnvelope(c.store.State(), now, SaveTypeAuto))
	if err != nil {
		c.log.Warn().Err(err).Msg("auto-save to file failed")
		return
	}
	c.mu.Lock()
	c.lastSaved = now
	if seq == c.changeSeq {
		c.unsaved = false
	}
	c.mu.Unlock()
	c.log.Debug().Str("path", path).Msg("auto-save written to file")
}

func (c *Coordinator) LoadState() LoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadState
}

func (c *Coordinator) LastSaved() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSaved
}

func (c *Coordinator) HasUnsavedChanges() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unsaved
}

func (c *Coordinator) Saving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving
}

// Pending reports whether a storage write is scheduled.
func (c *Coordinator) Pending() bool {
	return c.storageSave.Pending()
}

// Flush performs any scheduled writes now. Call it before shutdown.
func (c *Coordinator) Flush() {
	c.storageSave.Flush()
	c.fileSave.Flush()
}

// Close cancels pending writes without running them.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.storageSave.Stop()
	c.fileSave.Stop()
}
