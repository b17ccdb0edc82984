package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sandeepkv93/taskplan/internal/config"
	"github.com/sandeepkv93/taskplan/internal/persist"
	"github.com/sandeepkv93/taskplan/internal/storage"
	"github.com/sandeepkv93/taskplan/internal/store"
)

// runtime bundles everything a command needs once configuration is settled.
type runtime struct {
	cfg     config.RuntimeConfig
	log     zerolog.Logger
	store   *store.Store
	kv      *storage.SQLiteKV
	persist *persist.Coordinator
	logFile io.Closer
}

// loadConfig layers defaults, the YAML file, TASKPLAN_* variables and the
// persistent flags, in that order.
func loadConfig() (config.RuntimeConfig, error) {
	cfg := config.DefaultRuntimeConfig()
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}
	path := configFlag
	if path == "" {
		path = config.DefaultPath(cfg.DataDir)
	}
	cfg, err := config.LoadFile(path, cfg)
	if err != nil {
		return cfg, err
	}
	cfg = config.FromEnv(cfg)
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}
	return cfg.Resolved(), nil
}

func newLogger(cfg config.RuntimeConfig) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.LogFile == "" {
		return zerolog.Nop(), nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	logger := zerolog.New(f).Level(level).With().Timestamp().Str("app", "taskplan").Logger()
	return logger, f, nil
}

// openRuntime opens storage and hydrates the store from it.
func openRuntime(ctx context.Context, cfg config.RuntimeConfig) (*runtime, error) {
	logger, logFile, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	kv, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		closeQuietly(logFile)
		return nil, fmt.Errorf("open storage: %w", err)
	}
	s := store.New()
	coord, err := persist.NewCoordinator(s, kv, persist.Config{
		SaveDelay:     cfg.SaveDelay,
		FileSaveDelay: cfg.FileSaveDelay,
		BackupDir:     cfg.BackupDir,
	}, logger)
	if err != nil {
		_ = kv.Close()
		closeQuietly(logFile)
		return nil, err
	}
	state := coord.AutoLoad(ctx)
	logger.Info().Str("db", cfg.DBPath).Str("load", state.String()).Int("tasks", s.Len()).Msg("runtime ready")
	return &runtime{
		cfg:     cfg,
		log:     logger,
		store:   s,
		kv:      kv,
		persist: coord,
		logFile: logFile,
	}, nil
}

// Close writes anything still scheduled, then releases storage.
func (rt *runtime) Close() error {
	rt.persist.Flush()
	rt.persist.Close()
	err := rt.kv.Close()
	closeQuietly(rt.logFile)
	return err
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
