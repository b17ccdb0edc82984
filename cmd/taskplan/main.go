package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/taskplan/internal/model"
	"github.com/sandeepkv93/taskplan/internal/persist"
	"github.com/sandeepkv93/taskplan/internal/report"
	"github.com/sandeepkv93/taskplan/internal/store"
	"github.com/sandeepkv93/taskplan/internal/update"
)

var (
	configFlag  string
	dataDirFlag string

	exportOutFlag string

	reportStatusFlag   string
	reportPriorityFlag string
	reportFromFlag     string
	reportToFlag       string
	reportFieldFlag    string
	reportDaysFlag     int
	reportSaveFlag     bool

	clearYesFlag bool

	addParentFlag   string
	addPriorityFlag string
	addDueFlag      string
)

var rootCmd = &cobra.Command{
	Use:           "taskplan",
	Short:         "taskplan - hierarchical task planner",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a backup of all tasks",
	Long:  "Writes a manual backup into the backup folder, to --out, or to stdout with --out -.",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all tasks with a backup file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a JSON report for a filtered task set",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every task and the stored state",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task or subtask",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the task tree",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default <data-dir>/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Data directory (default ~/.taskplan)")

	exportCmd.Flags().StringVarP(&exportOutFlag, "out", "o", "", "Output path, or - for stdout")

	reportCmd.Flags().StringVar(&reportStatusFlag, "status", "", "Only tasks with this status")
	reportCmd.Flags().StringVar(&reportPriorityFlag, "priority", "", "Only tasks with this priority")
	reportCmd.Flags().StringVar(&reportFromFlag, "from", "", "Range start (YYYY-MM-DD, default 30 days ago)")
	reportCmd.Flags().StringVar(&reportToFlag, "to", "", "Range end (YYYY-MM-DD, default today)")
	reportCmd.Flags().StringVar(&reportFieldFlag, "field", "", "Date field the range applies to")
	reportCmd.Flags().IntVar(&reportDaysFlag, "days", report.DefaultRecentDays, "Window for recently completed tasks")
	reportCmd.Flags().BoolVar(&reportSaveFlag, "save", false, "Write task-report-YYYY-MM-DD.json into the backup folder")

	clearCmd.Flags().BoolVar(&clearYesFlag, "yes", false, "Confirm deleting all tasks")

	addCmd.Flags().StringVar(&addParentFlag, "parent", "", "Parent task id")
	addCmd.Flags().StringVar(&addPriorityFlag, "priority", "", "LOW, MEDIUM, HIGH or CRITICAL")
	addCmd.Flags().StringVar(&addDueFlag, "due", "", "Due date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd, importCmd, reportCmd, clearCmd, addCmd, listCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "taskplan failed: %v\n", err)
		os.Exit(1)
	}
}

// withRuntime opens the runtime for one command and always closes it.
func withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *runtime) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := openRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	runErr := fn(ctx, rt)
	if err := rt.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("close storage: %w", err)
	}
	return runErr
}

func runTUI(cmd *cobra.Command, args []string) error {
	return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
		program := tea.NewProgram(update.NewModel(update.Options{
			Store:   rt.store,
			Persist: rt.persist,
			Logger:  rt.log,
		}), tea.WithContext(ctx))
		if _, err := program.Run(); err != nil {
			return err
		}
		return nil
	})
}

func runExport(cmd *cobra.Command, args []string) error {
	return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
		return exportTasks(rt, exportOutFlag, cmd.OutOrStdout())
	})
}

func exportTasks(rt *runtime, out string, stdout io.Writer) error {
	switch out {
	case "":
		path, err := rt.persist.ExportManual()
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Fprintf(stdout, "Tasks saved successfully: %s\n", path)
		return nil
	case "-":
		return rt.persist.ExportTo(stdout, persist.SaveTypeManual)
	default:
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := rt.persist.ExportTo(f, persist.SaveTypeManual); err != nil {
			_ = f.Close()
			return fmt.Errorf("export: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Fprintf(stdout, "Tasks saved successfully: %s\n", out)
		return nil
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
		res, err := rt.persist.ImportFile(args[0])
		if err != nil {
			var ie *persist.ImportError
			if errors.As(err, &ie) {
				return errors.New(ie.Message)
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message())
		if res.Repaired > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Repaired %d inconsistencies\n", res.Repaired)
		}
		return nil
	})
}

func runReport(cmd *cobra.Command, args []string) error {
	return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
		now := time.Now()
		filter, err := reportFilter(now)
		if err != nil {
			return err
		}
		r := report.Build(rt.store.Tasks(), filter, now)
		if !reportSaveFlag {
			return report.WriteJSON(cmd.OutOrStdout(), r)
		}
		path, err := saveReport(rt.persist.BackupFolder(), r, now)
		if err != nil {
			return fmt.Errorf("report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report saved: %s\n", path)
		return nil
	})
}

func saveReport(dir string, r report.Report, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, report.FileName(now))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := report.WriteJSON(f, r); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

// reportFilter overlays the report flags onto the default thirty-day filter.
func reportFilter(now time.Time) (report.Filter, error) {
	filter := report.DefaultFilter(now)
	if reportFromFlag != "" {
		d, err := model.ParseDate(reportFromFlag)
		if err != nil {
			return filter, fmt.Errorf("--from: %w", err)
		}
		filter.Start = d
	}
	if reportToFlag != "" {
		d, err := model.ParseDate(reportToFlag)
		if err != nil {
			return filter, fmt.Errorf("--to: %w", err)
		}
		filter.End = d
	}
	field, err := report.ParseDateField(reportFieldFlag)
	if err != nil {
		return filter, fmt.Errorf("--field: %w", err)
	}
	filter.Field = field
	if reportStatusFlag != "" {
		s, err := model.ParseStatus(reportStatusFlag)
		if err != nil {
			return filter, fmt.Errorf("--status: %w", err)
		}
		filter.Status = s
	}
	if reportPriorityFlag != "" {
		p, err := model.ParsePriority(reportPriorityFlag)
		if err != nil {
			return filter, fmt.Errorf("--priority: %w", err)
		}
		filter.Priority = p
	}
	if reportDaysFlag > 0 {
		filter.RecentDays = reportDaysFlag
	}
	return filter, nil
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearYesFlag {
		return errors.New("refusing to delete all tasks without --yes")
	}
	return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
		if err := rt.persist.ClearAll(ctx, persist.Confirm(persist.ActionClearAll)); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All tasks cleared")
		return nil
	})
}

func runAdd(cmd *cobra.Command, args []string) error {
	in, err := newTaskFromFlags(strings.Join(args, " "))
	if err != nil {
		return err
	}
	return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
		id, err := rt.store.CreateTask(in)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	})
}

func newTaskFromFlags(title string) (store.NewTask, error) {
	in := store.NewTask{Title: title, ParentID: addParentFlag}
	p, err := model.ParsePriority(addPriorityFlag)
	if err != nil {
		return in, err
	}
	in.Priority = p
	if addDueFlag != "" {
		d, err := model.ParseDate(addDueFlag)
		if err != nil {
			return in, fmt.Errorf("--due: %w", err)
		}
		in.DueDate = &d
	}
	return in, nil
}

func runList(cmd *cobra.Command, args []string) error {
	return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
		writeTree(cmd.OutOrStdout(), rt.store)
		return nil
	})
}

func writeTree(w io.Writer, s *store.Store) {
	roots := s.Roots()
	if len(roots) == 0 {
		fmt.Fprintln(w, "no tasks")
		return
	}
	var walk func(task model.Task, depth int)
	walk = func(task model.Task, depth int) {
		line := fmt.Sprintf("%s%s [%s] %s (%s)", strings.Repeat("  ", depth), task.ID, task.Status, task.Title, task.Priority)
		if task.DueDate != nil {
			line += " due " + task.DueDate.String()
		}
		fmt.Fprintln(w, line)
		for _, child := range s.Children(task.ID) {
			walk(child, depth+1)
		}
	}
	for _, root := range roots {
		walk(root, 0)
	}
}
