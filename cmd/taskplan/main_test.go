package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/taskplan/internal/model"
	"github.com/sandeepkv93/taskplan/internal/report"
)

func resetFlags() {
	configFlag = ""
	dataDirFlag = ""
	exportOutFlag = ""
	reportStatusFlag = ""
	reportPriorityFlag = ""
	reportFromFlag = ""
	reportToFlag = ""
	reportFieldFlag = ""
	reportDaysFlag = report.DefaultRecentDays
	reportSaveFlag = false
	clearYesFlag = false
	addParentFlag = ""
	addPriorityFlag = ""
	addDueFlag = ""
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLoadConfigLayersFileEnvAndFlags(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(cfgPath, []byte("log_level: debug\nsave_delay: 900\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TASKPLAN_SAVE_DELAY", "250ms")
	configFlag = cfgPath
	dataDirFlag = dir

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log level from file, got %q", cfg.LogLevel)
	}
	if cfg.SaveDelay != 250*time.Millisecond {
		t.Fatalf("expected env to win over file, got %s", cfg.SaveDelay)
	}
	if cfg.DBPath != filepath.Join(dir, "taskplan.db") {
		t.Fatalf("unexpected db path %q", cfg.DBPath)
	}
	if cfg.BackupDir != dir {
		t.Fatalf("unexpected backup dir %q", cfg.BackupDir)
	}
}

func TestLoadConfigFlagBeatsFileDataDir(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("data_dir: /somewhere/else\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	dataDirFlag = dir

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.DataDir != dir {
		t.Fatalf("expected --data-dir to win, got %q", cfg.DataDir)
	}
}

func TestAddListAndClear(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "--data-dir", dir, "add", "Write", "report", "--priority", "high", "--due", "2026-03-01")
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	parentID := strings.TrimSpace(out)
	if parentID == "" {
		t.Fatal("expected add to print the new id")
	}

	if _, err := execute(t, "--data-dir", dir, "add", "Outline", "--parent", parentID); err != nil {
		t.Fatalf("add subtask error: %v", err)
	}

	out, err = execute(t, "--data-dir", dir, "list")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if !strings.Contains(out, parentID+" [TODO] Write report (HIGH) due 2026-03-01") {
		t.Fatalf("expected parent row, got:\n%s", out)
	}
	if !strings.Contains(out, "\n  ") || !strings.Contains(out, "Outline (MEDIUM)") {
		t.Fatalf("expected indented subtask, got:\n%s", out)
	}

	if _, err := execute(t, "--data-dir", dir, "clear"); err == nil {
		t.Fatal("expected clear without --yes to fail")
	}
	if _, err := execute(t, "--data-dir", dir, "clear", "--yes"); err != nil {
		t.Fatalf("clear error: %v", err)
	}
	out, err = execute(t, "--data-dir", dir, "list")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if strings.TrimSpace(out) != "no tasks" {
		t.Fatalf("expected empty list after clear, got:\n%s", out)
	}
}

func TestAddRejectsUnknownParent(t *testing.T) {
	if _, err := execute(t, "--data-dir", t.TempDir(), "add", "Orphan", "--parent", "missing"); err == nil {
		t.Fatal("expected unknown parent to fail")
	}
}

func TestExportAndImportRoundTrip(t *testing.T) {
	src := t.TempDir()
	if _, err := execute(t, "--data-dir", src, "add", "Ship it"); err != nil {
		t.Fatalf("add error: %v", err)
	}

	out, err := execute(t, "--data-dir", src, "export", "--out", "-")
	if err != nil {
		t.Fatalf("export error: %v", err)
	}
	var env struct {
		Version  string       `json:"version"`
		SaveType string       `json:"saveType"`
		Tasks    []model.Task `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("export is not JSON: %v\n%s", err, out)
	}
	if env.Version != "1.0" || env.SaveType != "manual" || len(env.Tasks) != 1 {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	backup := filepath.Join(t.TempDir(), "backup.json")
	if _, err := execute(t, "--data-dir", src, "export", "--out", backup); err != nil {
		t.Fatalf("export to file error: %v", err)
	}

	dst := t.TempDir()
	out, err = execute(t, "--data-dir", dst, "import", backup)
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if !strings.Contains(out, "Successfully loaded 1 tasks (manual)") {
		t.Fatalf("unexpected import output: %q", out)
	}
	out, err = execute(t, "--data-dir", dst, "list")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if !strings.Contains(out, "Ship it") {
		t.Fatalf("expected imported task, got:\n%s", out)
	}
}

func TestImportRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"foo": 1}`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	_, err := execute(t, "--data-dir", dir, "import", bad)
	if err == nil || !strings.Contains(err.Error(), "Invalid file format") {
		t.Fatalf("expected invalid format error, got %v", err)
	}
}

func TestExportManualWritesIntoBackupFolder(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "--data-dir", dir, "export")
	if err != nil {
		t.Fatalf("export error: %v", err)
	}
	if !strings.Contains(out, filepath.Join(dir, "TaskPlannerBackups", "manual-backup-")) {
		t.Fatalf("unexpected export output: %q", out)
	}
}

func TestReportCommandWritesJSON(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, "--data-dir", dir, "add", "Fresh task"); err != nil {
		t.Fatalf("add error: %v", err)
	}
	out, err := execute(t, "--data-dir", dir, "report", "--status", "todo")
	if err != nil {
		t.Fatalf("report error: %v", err)
	}
	var r report.Report
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("report is not JSON: %v\n%s", err, out)
	}
	if len(r.Tasks) != 1 || r.Tasks[0].Title != "Fresh task" {
		t.Fatalf("unexpected report tasks: %+v", r.Tasks)
	}
	if r.Filter.Status != model.StatusTodo {
		t.Fatalf("expected status filter echoed, got %q", r.Filter.Status)
	}
}

func TestReportSaveWritesDatedFile(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "--data-dir", dir, "report", "--save")
	if err != nil {
		t.Fatalf("report error: %v", err)
	}
	want := filepath.Join(dir, "TaskPlannerBackups", report.FileName(time.Now()))
	if !strings.Contains(out, want) {
		t.Fatalf("expected %s in output, got %q", want, out)
	}
	raw, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(raw), `"generatedAt"`) {
		t.Fatalf("unexpected report file:\n%s", raw)
	}
}

func TestReportFilterFromFlags(t *testing.T) {
	resetFlags()
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	reportFromFlag = "2026-01-01"
	reportFieldFlag = "dueDate"
	reportPriorityFlag = "critical"
	reportDaysFlag = 14

	f, err := reportFilter(now)
	if err != nil {
		t.Fatalf("reportFilter error: %v", err)
	}
	if f.Start.String() != "2026-01-01" || f.End.String() != "2026-02-09" {
		t.Fatalf("unexpected range %s..%s", f.Start, f.End)
	}
	if f.Field != report.FieldDueDate || f.Priority != model.PriorityCritical || f.RecentDays != 14 {
		t.Fatalf("unexpected filter %+v", f)
	}

	reportFieldFlag = "bogus"
	if _, err := reportFilter(now); err == nil {
		t.Fatal("expected unknown field to fail")
	}
}
