// Package cmd implements the CLI command structure for todo.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/storage"
	"github.com/nibzard/todo-go/internal/task"
	"github.com/nibzard/todo-go/internal/ui"
	"github.com/nibzard/todo-go/internal/view"
)

// Version is set via ldflags at build time.
var Version = "dev"

// now is the clock used for due dates and urgency.
var now = time.Now

// Run executes the todo CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

// app carries what every subcommand needs.
type app struct {
	cws    *config.ConfigWithSources
	cfg    *config.Config
	logger *log.Logger
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a := &app{
		cws:    cws,
		cfg:    cws.Config,
		logger: cws.Config.Logger(stderr),
		stdout: stdout,
		stderr: stderr,
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return a.versionCommand()
	}

	// Determine the subcommand
	// If no args or first arg is a flag, use "ls" as default
	subcommand := "ls"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "add":
		return a.addCommand(remainingArgs)
	case "ls", "list":
		return a.lsCommand(remainingArgs)
	case "toggle", "done":
		return a.toggleCommand(remainingArgs)
	case "rm", "delete":
		return a.rmCommand(remainingArgs)
	case "clear":
		return a.clearCommand(remainingArgs)
	case "stats":
		return a.statsCommand(remainingArgs)
	case "tui":
		return a.tuiCommand(ctx, remainingArgs)
	case "doctor":
		return a.doctorCommand(remainingArgs)
	case "config":
		return a.configCommand(remainingArgs)
	case "version":
		return a.versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// openStore opens the configured backend and loads the task list. The
// returned func closes the backend.
func (a *app) openStore() (*task.Store, func(), error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	kv, err := storage.Open(a.cfg.Storage, a.cfg.DataDir, storage.WithLogger(a.logger))
	if err != nil {
		return nil, nil, fmt.Errorf("opening storage: %w", err)
	}
	closeKV := func() {
		if err := kv.Close(); err != nil {
			a.logger.Warn("closing storage", "err", err)
		}
	}
	store, err := task.Open(kv, task.WithKey(a.cfg.Key()), task.WithLogger(a.logger))
	if err != nil {
		closeKV()
		return nil, nil, fmt.Errorf("loading tasks: %w", err)
	}
	return store, closeKV, nil
}

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("todo "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// addCommand adds one task built from the remaining words.
func (a *app) addCommand(args []string) error {
	fs := a.newFlagSet("add")
	due := fs.String("due", "", "Due date YYYY-MM-DD (default today, earlier dates become today, other text is kept as is)")
	priority := fs.String("priority", string(task.PriorityMedium), "Priority (high, medium, low)")
	fs.StringVar(priority, "p", string(task.PriorityMedium), "Priority (shorthand)")
	tags := fs.String("tags", "", "Comma-separated tags")
	fs.StringVar(tags, "t", "", "Comma-separated tags (shorthand)")

	words, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}

	p, err := task.ParsePriority(*priority)
	if err != nil {
		return err
	}

	store, closeKV, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeKV()

	t, err := store.Add(task.Input{
		Text:     strings.Join(words, " "),
		DueDate:  task.ClampDueDate(*due, task.Today(now())),
		Priority: string(p),
		Tags:     *tags,
	})
	if errors.Is(err, task.ErrEmptyText) {
		fmt.Fprintln(a.stderr, "Please enter a task!")
		return err
	}
	if err != nil {
		return fmt.Errorf("adding task: %w", err)
	}
	fmt.Fprintf(a.stdout, "Added %s %s\n", view.ShortID(t.ID), t.Text)
	return nil
}

// parseInterspersed parses flags placed anywhere among the words. Everything
// after "--" is a word.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var words []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return words, nil
		}
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(words, rest...), nil
		}
		words = append(words, rest[0])
		args = rest[1:]
	}
}

// lsCommand prints the current view of the task list.
func (a *app) lsCommand(args []string) error {
	fs := a.newFlagSet("ls")
	statusFilter := fs.String("status", string(a.cfg.Status()), "Filter by status (all, active, completed)")
	sortKey := fs.String("sort", string(a.cfg.Sort()), "Sort by (dueDate, priority, added; empty keeps insertion order)")
	tags := fs.String("tags", "", "Only tasks carrying any of these comma-separated tags")
	format := fs.String("format", string(a.cfg.Format()), "Output format (text, json, yaml)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	if len(remaining) == 1 {
		*statusFilter = remaining[0]
	}

	status, err := task.ParseStatus(*statusFilter)
	if err != nil {
		return err
	}
	key, err := task.ParseSortKey(*sortKey)
	if err != nil {
		return err
	}
	f, err := view.ParseFormat(*format)
	if err != nil {
		return err
	}

	store, closeKV, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeKV()

	tasks := store.FilterAndSort(task.Query{Status: status, Sort: key, Tags: *tags})
	return view.Write(a.stdout, view.Project(tasks, now(), a.cfg.UrgentDays), f)
}

// resolveArg checks for exactly one task reference.
func resolveArg(verb string, args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%s: missing task id", verb)
	}
	if len(args) > 1 {
		return "", fmt.Errorf("%s: unexpected arguments: %v", verb, args[1:])
	}
	return args[0], nil
}

// toggleCommand flips a task between pending and completed.
func (a *app) toggleCommand(args []string) error {
	ref, err := resolveArg("toggle", args)
	if err != nil {
		return err
	}
	store, closeKV, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeKV()

	target, err := store.Resolve(ref)
	if err != nil {
		return err
	}
	t, err := store.Toggle(target.ID)
	if err != nil {
		return fmt.Errorf("toggling task: %w", err)
	}
	state := "Reopened"
	if t.Completed {
		state = "Completed"
	}
	fmt.Fprintf(a.stdout, "%s %s %s\n", state, view.ShortID(t.ID), t.Text)
	return nil
}

// rmCommand deletes one task.
func (a *app) rmCommand(args []string) error {
	ref, err := resolveArg("rm", args)
	if err != nil {
		return err
	}
	store, closeKV, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeKV()

	target, err := store.Resolve(ref)
	if err != nil {
		return err
	}
	if err := store.Delete(target.ID); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	fmt.Fprintf(a.stdout, "Deleted %s %s\n", view.ShortID(target.ID), target.Text)
	return nil
}

// clearCommand removes every completed task.
func (a *app) clearCommand(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	store, closeKV, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeKV()

	removed, err := store.ClearCompleted()
	if err != nil {
		return fmt.Errorf("clearing completed tasks: %w", err)
	}
	fmt.Fprintf(a.stdout, "Cleared %d completed task(s)\n", removed)
	return nil
}

// statsCommand prints total, completed and pending counts.
func (a *app) statsCommand(args []string) error {
	fs := a.newFlagSet("stats")
	format := fs.String("format", string(a.cfg.Format()), "Output format (text, json, yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := view.ParseFormat(*format)
	if err != nil {
		return err
	}

	store, closeKV, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeKV()

	return view.WriteStats(a.stdout, store.Stats(), f)
}

// tuiCommand launches the interactive interface.
func (a *app) tuiCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("tui")
	statusFilter := fs.String("status", string(a.cfg.Status()), "Initial status filter")
	sortKey := fs.String("sort", string(a.cfg.Sort()), "Initial sort key")
	tags := fs.String("tags", "", "Initial tag filter")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	status, err := task.ParseStatus(*statusFilter)
	if err != nil {
		return err
	}
	key, err := task.ParseSortKey(*sortKey)
	if err != nil {
		return err
	}

	store, closeKV, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeKV()

	return ui.RunTUI(ctx, store, ui.Options{
		Status:     status,
		Sort:       key,
		Tags:       *tags,
		UrgentDays: a.cfg.UrgentDays,
	})
}

// doctorCommand checks the config, the storage backend and the saved tasks.
func (a *app) doctorCommand(args []string) error {
	fs := a.newFlagSet("doctor")
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	w := a.stdout
	fmt.Fprintln(w, "Todo Doctor")
	fmt.Fprintln(w, "===========")
	fmt.Fprintln(w)

	allOK := true

	// Check config
	fmt.Fprintln(w, "Config:")
	if len(a.cws.Files) == 0 {
		fmt.Fprintln(w, "  Files: (defaults only)")
	}
	for _, f := range a.cws.Files {
		fmt.Fprintf(w, "  File: %s\n", f)
	}
	configErr := a.cfg.Validate()
	if configErr != nil {
		for _, line := range strings.Split(configErr.Error(), "\n") {
			fmt.Fprintf(w, "  ❌ %s\n", line)
		}
		allOK = false
	} else {
		fmt.Fprintln(w, "  ✅ OK")
	}
	for _, key := range a.cws.Unknown {
		fmt.Fprintf(w, "  ⚠️  Unknown key: %s\n", key)
	}
	fmt.Fprintln(w)

	if configErr != nil {
		fmt.Fprintln(w, "Skipping storage checks until the config is fixed.")
		return errors.New("doctor found problems")
	}

	// Check storage
	fmt.Fprintln(w, "Storage:")
	fmt.Fprintf(w, "  Backend: %s\n", a.cfg.Storage)
	if loc := storage.Location(a.cfg.Storage, a.cfg.DataDir); loc != "" {
		fmt.Fprintf(w, "  Location: %s\n", loc)
	}
	kv, err := storage.Open(a.cfg.Storage, a.cfg.DataDir, storage.WithLogger(a.logger))
	if err != nil {
		fmt.Fprintf(w, "  ❌ Error: %v\n\n", err)
		return errors.New("doctor found problems")
	}
	defer func() {
		if err := kv.Close(); err != nil {
			a.logger.Warn("closing storage", "err", err)
		}
	}()
	if f, ok := kv.(*storage.FileKV); ok && f.Backup() != "" {
		fmt.Fprintf(w, "  ⚠️  Unreadable store file moved to %s, starting empty\n", f.Backup())
	} else {
		fmt.Fprintln(w, "  ✅ OK")
	}
	fmt.Fprintln(w)

	// Check saved tasks
	key := a.cfg.Key()
	fmt.Fprintf(w, "Tasks (key %q):\n", key)
	raw, ok, err := kv.Get(key)
	switch {
	case err != nil:
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	case !ok:
		fmt.Fprintln(w, "  ✅ Nothing saved yet")
	default:
		result := task.Validate([]byte(raw), task.ValidationOptions{SchemaPath: a.cfg.SchemaFile})
		if *verbose {
			schema := "minimal checks"
			if result.UsedSchema {
				schema = "built-in schema"
				if a.cfg.SchemaFile != "" {
					schema = a.cfg.SchemaFile
				}
			}
			fmt.Fprintf(w, "  Validated with: %s\n", schema)
			fmt.Fprintf(w, "  Size: %d bytes\n", len(raw))
			if db, ok := kv.(*storage.SQLiteKV); ok {
				if at, found, err := db.UpdatedAt(key); err != nil {
					fmt.Fprintf(w, "  ⚠️  Last saved: %v\n", err)
				} else if found {
					fmt.Fprintf(w, "  Last saved: %s\n", at.Local().Format(time.DateTime))
				}
			}
		}
		if result.Valid {
			fmt.Fprintf(w, "  ✅ %d task(s) valid\n", result.Count)
		} else {
			allOK = false
			for _, e := range result.Errors {
				fmt.Fprintf(w, "  ❌ %v\n", e)
			}
			fmt.Fprintln(w, "  Unreadable tasks load as an empty list and are overwritten by the next change.")
		}
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  ⚠️  %s\n", warning)
		}
	}
	fmt.Fprintln(w)

	if !allOK {
		return errors.New("doctor found problems")
	}
	fmt.Fprintln(w, "All checks passed.")
	return nil
}

// configCommand prints the effective settings and where each came from.
func (a *app) configCommand(args []string) error {
	fs := a.newFlagSet("config")
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(a.stdout, config.ExampleConfig())
		return nil
	}

	for _, e := range a.cws.Entries() {
		fmt.Fprintf(a.stdout, "%-15s = %-30v (%s)\n", e.Key, formatValue(e.Value), e.Source)
	}
	if file := a.cws.GetConfigFile(); file != "" {
		fmt.Fprintf(a.stdout, "\nConfig file: %s\n", file)
	}
	return nil
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(v)
}

// versionCommand prints version information.
func (a *app) versionCommand() error {
	fmt.Fprintf(a.stdout, "todo version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "todo - a small task list for the terminal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  todo [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  ls [status]         List tasks (default command)")
	fmt.Fprintln(w, "  add [options] text  Add a task (options may go before or after the text; \"--\" ends options)")
	fmt.Fprintln(w, "  toggle <id>         Mark a task completed or pending (id prefix is enough)")
	fmt.Fprintln(w, "  rm <id>             Delete a task")
	fmt.Fprintln(w, "  clear               Delete every completed task")
	fmt.Fprintln(w, "  stats               Show total, completed and pending counts")
	fmt.Fprintln(w, "  tui                 Launch terminal UI")
	fmt.Fprintln(w, "  doctor [-v]         Check config, storage and saved tasks")
	fmt.Fprintln(w, "  config [-example]   Show effective settings and their sources")
	fmt.Fprintln(w, "  version             Show version information")
	fmt.Fprintln(w, "  help                Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options:")
	fmt.Fprintln(w, "  -due string")
	fmt.Fprintln(w, "        Due date YYYY-MM-DD (default today; earlier dates become today, other text is kept as is)")
	fmt.Fprintln(w, "  -p, -priority string")
	fmt.Fprintln(w, "        Priority: high, medium, low (default medium)")
	fmt.Fprintln(w, "  -t, -tags string")
	fmt.Fprintln(w, "        Comma-separated tags")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -status string")
	fmt.Fprintln(w, "        all, active, completed")
	fmt.Fprintln(w, "  -sort string")
	fmt.Fprintln(w, "        dueDate, priority, added")
	fmt.Fprintln(w, "  -tags string")
	fmt.Fprintln(w, "        Show tasks carrying any of these tags")
	fmt.Fprintln(w, "  -format string")
	fmt.Fprintln(w, "        text, json, yaml")
}
