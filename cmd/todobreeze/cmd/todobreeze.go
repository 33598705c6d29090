package cmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"todobreeze/internal/config"
	"todobreeze/internal/ics"
	"todobreeze/internal/manager"
	"todobreeze/internal/tui"
	"todobreeze/internal/utils"
	"todobreeze/task"
)

// Version is set at build time
var Version = "dev"

// Config holds application configuration
type Config struct {
	Verbose    bool
	ConfigPath string
	FilePath   string // Path to the task file (for testing)
	KVPath     string // Path to the fallback store (for testing)
}

// Execute runs the CLI with the given arguments and IO writers
func Execute(args []string, stdout, stderr io.Writer, cfg *Config) int {
	rootCmd := NewTodoBreeze(stdout, stderr, cfg)

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// NewTodoBreeze creates the root command with injectable IO
func NewTodoBreeze(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	if cfg == nil {
		cfg = &Config{}
	}

	cmd := &cobra.Command{
		Use:     "todobreeze",
		Short:   "A local-first task manager",
		Long:    "todobreeze keeps your tasks on this device: a JSON task file as the primary store with a SQLite fallback mirror, plus JSON and iCalendar export.",
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose || cfg.Verbose {
				utils.SetVerboseMode(true)
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "V", false, "Enable verbose/debug output")
	cmd.PersistentFlags().String("config", "", "Path to config file")

	cmd.AddCommand(newAddCmd(stdout, cfg))
	cmd.AddCommand(newListCmd(stdout, cfg))
	cmd.AddCommand(newDoneCmd(stdout, cfg))
	cmd.AddCommand(newEditCmd(stdout, cfg))
	cmd.AddCommand(newRemoveCmd(stdout, cfg))
	cmd.AddCommand(newMoveCmd(stdout, cfg))
	cmd.AddCommand(newSubCmd(stdout, cfg))
	cmd.AddCommand(newImportCmd(stdout, cfg))
	cmd.AddCommand(newExportCmd(stdout, cfg))
	cmd.AddCommand(newICSCmd(stdout, cfg))
	cmd.AddCommand(newSeedCmd(stdout, cfg))
	cmd.AddCommand(newTagsCmd(stdout, cfg))
	cmd.AddCommand(newTUICmd(cfg))

	return cmd
}

// loadConfig resolves the effective configuration, applying test overrides.
func loadConfig(cmd *cobra.Command, cfg *Config) (*config.Config, error) {
	path := cfg.ConfigPath
	if flagPath, _ := cmd.Flags().GetString("config"); flagPath != "" {
		path = flagPath
	}
	appCfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cfg.FilePath != "" {
		appCfg.Storage.File = cfg.FilePath
	}
	if cfg.KVPath != "" {
		appCfg.Storage.KV = cfg.KVPath
	}
	if err := appCfg.Validate(); err != nil {
		return nil, err
	}
	return appCfg, nil
}

// withManager opens the store, loads the collection, runs fn, and closes.
func withManager(cmd *cobra.Command, cfg *Config, fn func(ctx context.Context, appCfg *config.Config, mgr *manager.Manager) error) error {
	appCfg, err := loadConfig(cmd, cfg)
	if err != nil {
		return err
	}

	st, err := manager.Open(appCfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	mgr := manager.New(st)
	if err := mgr.Load(ctx); err != nil {
		return err
	}
	return fn(ctx, appCfg, mgr)
}

// =============================================================================
// Task Commands
// =============================================================================

func newAddCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a new task",
		Long:  "Add a new task. Hashtags in the title (e.g. #errand) become tags.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, cfg, func(ctx context.Context, _ *config.Config, mgr *manager.Manager) error {
				due, _ := cmd.Flags().GetString("due")
				if due != "" && task.ParseDate(due) == "" {
					return utils.ErrInvalidDate(due)
				}
				priority, _ := cmd.Flags().GetString("priority")
				tags, _ := cmd.Flags().GetString("tags")
				notes, _ := cmd.Flags().GetString("notes")
				subtasks, _ := cmd.Flags().GetString("subtasks")
				recurrence, _ := cmd.Flags().GetString("recurrence")
				attach, _ := cmd.Flags().GetString("attach")

				var attachment *task.Attachment
				if attach != "" {
					att, err := readAttachment(attach)
					if err != nil {
						return err
					}
					attachment = att
				}

				created, err := mgr.Add(ctx, manager.Draft{
					Title:        strings.Join(args, " "),
					Notes:        notes,
					Due:          due,
					Priority:     priority,
					Tags:         tags,
					SubtaskLines: subtasks,
					Recurrence:   recurrence,
					Attachment:   attachment,
				})
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(stdout, "Added: %s (%s)\n", created.Title, shortID(created.ID))
				return nil
			})
		},
	}

	cmd.Flags().StringP("due", "d", "", "Due date in YYYY-MM-DD format")
	cmd.Flags().StringP("priority", "p", "", "Priority (none, low, medium, high)")
	cmd.Flags().StringP("tags", "t", "", "Comma-separated tags")
	cmd.Flags().StringP("notes", "n", "", "Free-form notes")
	cmd.Flags().StringP("subtasks", "s", "", "Subtask lines, one per line (new subtasks start incomplete)")
	cmd.Flags().StringP("recurrence", "r", "", "Recurrence (daily, weekly, monthly)")
	cmd.Flags().String("attach", "", "Path to an image attachment to embed")
	return cmd
}

func newListCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, cfg, func(ctx context.Context, appCfg *config.Config, mgr *manager.Manager) error {
				search, _ := cmd.Flags().GetString("search")
				tag, _ := cmd.Flags().GetString("tag")
				when, _ := cmd.Flags().GetString("when")
				sortFlag, _ := cmd.Flags().GetString("sort")
				if sortFlag == "" {
					sortFlag = appCfg.DefaultSort
				}

				filter := task.Filter{
					Search: search,
					Tag:    tag,
					When:   task.ParseWhen(when),
				}
				tasks := task.Sort(filter.Apply(mgr.Tasks()), task.ParseSortMode(sortFlag))
				renderTaskTable(stdout, tasks)
				return nil
			})
		},
	}

	cmd.Flags().StringP("search", "q", "", "Free-text search over title, notes, tags, and subtasks")
	cmd.Flags().StringP("tag", "t", "", "Only tasks carrying this exact tag")
	cmd.Flags().StringP("when", "w", "", "Temporal bucket (completed, active, today, overdue, upcoming)")
	cmd.Flags().StringP("sort", "s", "", "Sort mode (manual, priority, due, created, title)")
	return cmd
}

func newDoneCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "done <task>",
		Short: "Toggle a task's completion",
		Long:  "Toggle a task's completion. Completing a recurring task with a due date schedules its next occurrence.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, cfg, func(ctx context.Context, _ *config.Config, mgr *manager.Manager) error {
				t, err := mgr.Find(args[0])
				if err != nil {
					return err
				}
				toggled, clone, err := mgr.Toggle(ctx, t.ID)
				if err != nil {
					return err
				}
				if toggled.Completed {
					_, _ = fmt.Fprintf(stdout, "Completed: %s\n", toggled.Title)
				} else {
					_, _ = fmt.Fprintf(stdout, "Reopened: %s\n", toggled.Title)
				}
				if clone != nil {
					_, _ = fmt.Fprintf(stdout, "Next occurrence scheduled for %s\n", clone.Due)
				}
				return nil
			})
		},
	}
}

func newEditCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <task>",
		Short: "Edit a task's fields",
		Long:  "Edit a task. Only the fields you pass change; subtask lines reconcile completion and identity against the current subtasks by title.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, cfg, func(ctx context.Context, _ *config.Config, mgr *manager.Manager) error {
				t, err := mgr.Find(args[0])
				if err != nil {
					return err
				}

				req := manager.EditRequest{KeepSubtaskState: true}
				if keep, _ := cmd.Flags().GetBool("reset-subtasks"); keep {
					req.KeepSubtaskState = false
				}
				if cmd.Flags().Changed("title") {
					v, _ := cmd.Flags().GetString("title")
					req.Title = &v
				}
				if cmd.Flags().Changed("notes") {
					v, _ := cmd.Flags().GetString("notes")
					req.Notes = &v
				}
				if cmd.Flags().Changed("due") {
					v, _ := cmd.Flags().GetString("due")
					if v != "" && task.ParseDate(v) == "" {
						return utils.ErrInvalidDate(v)
					}
					req.Due = &v
				}
				if cmd.Flags().Changed("priority") {
					v, _ := cmd.Flags().GetString("priority")
					req.Priority = &v
				}
				if cmd.Flags().Changed("tags") {
					v, _ := cmd.Flags().GetString("tags")
					req.Tags = &v
				}
				if cmd.Flags().Changed("recurrence") {
					v, _ := cmd.Flags().GetString("recurrence")
					req.Recurrence = &v
				}
				if cmd.Flags().Changed("subtasks") {
					v, _ := cmd.Flags().GetString("subtasks")
					req.SubtaskLines = &v
				}

				updated, err := mgr.Edit(ctx, t.ID, req)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(stdout, "Updated: %s\n", updated.Title)
				return nil
			})
		},
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().StringP("notes", "n", "", "New notes")
	cmd.Flags().StringP("due", "d", "", "New due date (YYYY-MM-DD, empty to clear)")
	cmd.Flags().StringP("priority", "p", "", "New priority")
	cmd.Flags().StringP("tags", "t", "", "New comma-separated tags")
	cmd.Flags().StringP("recurrence", "r", "", "New recurrence (daily, weekly, monthly, none)")
	cmd.Flags().StringP("subtasks", "s", "", "Replacement subtask lines, one per line")
	cmd.Flags().Bool("reset-subtasks", false, "Start all parsed subtasks incomplete instead of keeping state")
	return cmd
}

func newRemoveCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, cfg, func(ctx context.Context, _ *config.Config, mgr *manager.Manager) error {
				t, err := mgr.Find(args[0])
				if err != nil {
					return err
				}
				if err := mgr.Delete(ctx, t.ID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(stdout, "Deleted: %s\n", t.Title)
				return nil
			})
		},
	}
}

func newMoveCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "move <task>...",
		Short: "Reorder tasks",
		Long:  "Move the named tasks to the front of the manual order, in the given sequence. Unnamed tasks keep their relative order after them.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, cfg, func(ctx context.Context, _ *config.Config, mgr *manager.Manager) error {
				order := make([]string, 0, len(args))
				for _, ref := range args {
					t, err := mgr.Find(ref)
					if err != nil {
						return err
					}
					order = append(order, t.ID)
				}
				if err := mgr.Reorder(ctx, order); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(stdout, "Reordered %d task(s)\n", len(order))
				return nil
			})
		},
	}
}

func newSubCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	subCmd := &cobra.Command{
		Use:   "sub",
		Short: "Manage subtasks",
	}

	subCmd.AddCommand(&cobra.Command{
		Use:   "add <task> <title>",
		Short: "Add a subtask to a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, cfg, func(ctx context.Context, _ *config.Config, mgr *manager.Manager) error {
				t, err := mgr.Find(args[0])
				if err != nil {
					return err
				}
				updated, err := mgr.AddSubtask(ctx, t.ID, strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(stdout, "Added subtask to: %s\n", updated.Title)
				return nil
			})
		},
	})

	subCmd.AddCommand(&cobra.Command{
		Use:   "done <task> <n>",
		Short: "Toggle the n-th subtask of a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, cfg, func(ctx context.Context, _ *config.Config, mgr *manager.Manager) error {
				t, err := mgr.Find(args[0])
				if err != nil {
					return err
				}
				n := 0
				if _, err := fmt.Sscanf(args[1], "%d", &n); err != nil {
					return fmt.Errorf("subtask number must be an integer, got %q", args[1])
				}
				updated, err := mgr.ToggleSubtask(ctx, t.ID, n)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(stdout, "Toggled subtask %d of: %s\n", n, updated.Title)
				return nil
			})
		},
	})

	return subCmd
}

// =============================================================================
// Import / Export / Seed
// =============================================================================

func newImportCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge tasks from a JSON export",
		Long:  "Merge a JSON array of tasks into the collection. Matching identities are updated (creation time preserved); everything else is added. Nothing is deleted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, cfg, func(ctx context.Context, _ *config.Config, mgr *manager.Manager) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read import file: %w", err)
				}
				n, err := mgr.Import(ctx, data)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(stdout, "Imported %d entr%s\n", n, pluralY(n))
				return nil
			})
		},
	}
}

func newExportCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export tasks as pretty-printed JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, cfg, func(ctx context.Context, _ *config.Config, mgr *manager.Manager) error {
				data, err := mgr.ExportJSON()
				if err != nil {
					return err
				}
				if len(args) == 0 {
					_, _ = stdout.Write(data)
					return nil
				}
				if err := os.WriteFile(args[0], data, 0644); err != nil {
					return fmt.Errorf("failed to write export file: %w", err)
				}
				_, _ = fmt.Fprintf(stdout, "Exported to %s\n", args[0])
				return nil
			})
		},
	}
}

func newICSCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ics [file]",
		Short: "Export tasks as an iCalendar to-do list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, cfg, func(ctx context.Context, _ *config.Config, mgr *manager.Manager) error {
				doc := ics.Build(mgr.Tasks(), time.Now())
				if len(args) == 0 {
					_, _ = io.WriteString(stdout, doc)
					return nil
				}
				if err := os.WriteFile(args[0], []byte(doc), 0644); err != nil {
					return fmt.Errorf("failed to write calendar file: %w", err)
				}
				_, _ = fmt.Fprintf(stdout, "Exported to %s\n", args[0])
				return nil
			})
		},
	}
}

func newSeedCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Replace all tasks with sample data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, cfg, func(ctx context.Context, _ *config.Config, mgr *manager.Manager) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read seed file: %w", err)
				}
				n, err := mgr.Seed(ctx, data)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(stdout, "Seeded %d task(s)\n", n)
				return nil
			})
		},
	}
}

func newTagsCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List all tags in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, cfg, func(ctx context.Context, _ *config.Config, mgr *manager.Manager) error {
				for _, tag := range task.DistinctTags(mgr.Tasks()) {
					_, _ = fmt.Fprintln(stdout, tag)
				}
				return nil
			})
		},
	}
}

func newTUICmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, cfg, func(ctx context.Context, _ *config.Config, mgr *manager.Manager) error {
				p := tea.NewProgram(tui.New(mgr), tea.WithAltScreen())
				_, err := p.Run()
				return err
			})
		},
	}
}

// =============================================================================
// Rendering
// =============================================================================

var (
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	dueTodayStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	tagListStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
)

// renderTaskTable prints the tasks, one line each plus subtask lines,
// truncated to the terminal width when attached to one.
func renderTaskTable(w io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(w, "No tasks")
		return
	}

	width := terminalWidth()
	today := time.Now().Format(task.DateFormat)

	for i := range tasks {
		t := &tasks[i]

		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}

		line := fmt.Sprintf("%-9s %s %s", shortID(t.ID), mark, t.Title)
		if t.Priority != task.PriorityNone {
			line += "  !" + string(t.Priority)
		}
		if t.Due != "" {
			due := "due " + t.Due
			switch {
			case t.Completed:
			case t.Due < today:
				due = overdueStyle.Render(due)
			case t.Due == today:
				due = dueTodayStyle.Render(due)
			}
			line += "  " + due
		}
		if t.Recurrence != task.RecurrenceNone {
			line += "  ↻" + string(t.Recurrence)
		}
		if len(t.Tags) > 0 {
			line += "  " + tagListStyle.Render("#"+strings.Join(t.Tags, " #"))
		}
		if t.Completed {
			line = doneStyle.Render(line)
		}
		_, _ = fmt.Fprintln(w, truncate(line, width))

		for _, sub := range t.Subtasks {
			subMark := "[ ]"
			if sub.Completed {
				subMark = "[x]"
			}
			_, _ = fmt.Fprintln(w, truncate("          └─"+subMark+" "+sub.Title, width))
		}
	}
}

// terminalWidth returns the attached terminal's width, or 0 when output is
// not a terminal (no truncation).
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 0
}

// truncate shortens a line to the terminal width. Lines carry lipgloss
// styling, so the cut has to be escape-sequence aware.
func truncate(s string, width int) string {
	if width <= 3 {
		return s
	}
	return ansi.Truncate(s, width, "...")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

// readAttachment loads a file into an embedded data-URL attachment.
func readAttachment(path string) (*task.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.ErrAttachmentUnreadable(path, err)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return &task.Attachment{
		Name: filepath.Base(path),
		Type: mimeType,
		Size: int64(len(data)),
		Data: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}
