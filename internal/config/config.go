package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/taskplan/internal/persist"
)

const (
	DefaultDirName  = ".taskplan"
	DefaultDBName   = "taskplan.db"
	DefaultLogName  = "taskplan.log"
	DefaultLogLevel = "info"
	FileName        = "config.yaml"
)

// RuntimeConfig is layered: defaults, then the YAML file, then TASKPLAN_*
// variables, then command-line flags. Empty paths derive from DataDir.
// BackupDir is the parent of the backup folder, not the folder itself.
type RuntimeConfig struct {
	DataDir       string
	DBPath        string
	BackupDir     string
	SaveDelay     time.Duration
	FileSaveDelay time.Duration
	LogLevel      string
	LogFile       string
}

func DefaultRuntimeConfig() RuntimeConfig {
	dataDir := DefaultDirName
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dataDir = filepath.Join(home, DefaultDirName)
	}
	return RuntimeConfig{
		DataDir:       dataDir,
		SaveDelay:     persist.DefaultSaveDelay,
		FileSaveDelay: persist.DefaultFileSaveDelay,
		LogLevel:      DefaultLogLevel,
	}
}

// Resolved fills the derived paths.
func (c RuntimeConfig) Resolved() RuntimeConfig {
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, DefaultDBName)
	}
	if c.BackupDir == "" {
		c.BackupDir = c.DataDir
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, DefaultLogName)
	}
	return c
}

// DefaultPath is where the config file is looked up when --config is not set.
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

type fileConfig struct {
	DataDir       string `yaml:"data_dir"`
	DBPath        string `yaml:"db_path"`
	BackupDir     string `yaml:"backup_dir"`
	SaveDelay     string `yaml:"save_delay"`
	FileSaveDelay string `yaml:"file_save_delay"`
	LogLevel      string `yaml:"log_level"`
	LogFile       string `yaml:"log_file"`
}

// LoadFile overlays the YAML file at path onto base. A missing file leaves
// base untouched.
func LoadFile(path string, base RuntimeConfig) (RuntimeConfig, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return base, nil
	}
	if err != nil {
		return base, fmt.Errorf("config: read %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return base, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg := base
	setString(&cfg.DataDir, fc.DataDir)
	setString(&cfg.DBPath, fc.DBPath)
	setString(&cfg.BackupDir, fc.BackupDir)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFile, fc.LogFile)
	if fc.SaveDelay != "" {
		d, err := parseDelay(fc.SaveDelay)
		if err != nil {
			return base, fmt.Errorf("config: save_delay: %w", err)
		}
		cfg.SaveDelay = d
	}
	if fc.FileSaveDelay != "" {
		d, err := parseDelay(fc.FileSaveDelay)
		if err != nil {
			return base, fmt.Errorf("config: file_save_delay: %w", err)
		}
		cfg.FileSaveDelay = d
	}
	return cfg, nil
}

// FromEnv applies TASKPLAN_* overrides. Malformed values are ignored.
func FromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvString("TASKPLAN_DATA_DIR"); ok {
		cfg.DataDir = v
	}
	if v, ok := getEnvString("TASKPLAN_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := getEnvString("TASKPLAN_BACKUP_DIR"); ok {
		cfg.BackupDir = v
	}
	if v, ok := getEnvDuration("TASKPLAN_SAVE_DELAY"); ok {
		cfg.SaveDelay = v
	}
	if v, ok := getEnvDuration("TASKPLAN_FILE_SAVE_DELAY"); ok {
		cfg.FileSaveDelay = v
	}
	if v, ok := getEnvString("TASKPLAN_LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := getEnvString("TASKPLAN_LOG_FILE"); ok {
		cfg.LogFile = v
	}
	return cfg
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// parseDelay accepts a Go duration ("750ms") or bare milliseconds ("750").
func parseDelay(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if ms, err := strconv.Atoi(raw); err == nil {
		if ms <= 0 {
			return 0, fmt.Errorf("delay must be positive: %q", raw)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("delay must be positive: %q", raw)
	}
	return d, nil
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvDuration(name string) (time.Duration, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	d, err := parseDelay(raw)
	if err != nil {
		return 0, false
	}
	return d, true
}
