package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abatilo/taskflow/internal/board"
	"github.com/abatilo/taskflow/internal/config"
	tferrors "github.com/abatilo/taskflow/internal/errors"
	"github.com/abatilo/taskflow/internal/lifecycle"
	"github.com/abatilo/taskflow/internal/output"
	"github.com/abatilo/taskflow/internal/pending"
	"github.com/abatilo/taskflow/internal/storage"
	"github.com/abatilo/taskflow/internal/task"
)

//nolint:gochecknoglobals // CLI flags, formatter and logger are package-level by design
var (
	jsonOutput bool
	verbose    bool
	formatter  output.Formatter
	logger     *slog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskflow",
		Short: "A file-based task tracker with a date-aware status lifecycle",
		Long: "taskflow - A file-based task tracker whose statuses follow start and due dates,\n" +
			"and which asks before transitions that need a decision.",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if jsonOutput {
				formatter = output.NewJSONFormatter()
			} else {
				formatter = output.NewHumanFormatter()
			}
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log lifecycle decisions to stderr")

	rootCmd.AddCommand(
		initCmd(),
		addCmd(),
		listCmd(),
		showCmd(),
		deriveCmd(),
		boardCmd(),
		suggestCmd(),
		statusCmd(),
		confirmCmd(),
		cancelCmd(),
		subtaskCmd(),
		scheduleCmd(),
		rmCmd(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func getStore() (*storage.Store, error) {
	return storage.NewStore()
}

// openStore returns the project store with its configuration.
func openStore() (*storage.Store, *config.Config) {
	store, err := getStore()
	if err != nil {
		printError(err)
	}
	cfg, err := config.Load(store.BasePath())
	if err != nil {
		printError(fmt.Errorf("load config: %w", err))
	}
	return store, cfg
}

func printOutput(s string) {
	os.Stdout.WriteString(s) //nolint:gosec // stdout write errors are unrecoverable
}

func printError(err error) {
	os.Stdout.WriteString(formatter.FormatError(err)) //nolint:gosec // stdout write errors are unrecoverable
	os.Exit(1)
}

func parseStatusArg(s string) task.Status {
	st, err := task.ParseStatus(s)
	if err != nil {
		printError(tferrors.InvalidStatusError{Value: s})
	}
	return st
}

// initCmd implements 'taskflow init'.
func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize taskflow task directory",
		Run: func(_ *cobra.Command, _ []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}
			if err = store.Init(force); err != nil {
				printError(err)
			}
			if err = config.WriteDefault(store.BasePath()); err != nil {
				printError(err)
			}
			printOutput(formatter.FormatMessage(fmt.Sprintf("Initialized taskflow at %s", store.BasePath())))
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Reinitialize even if already exists")
	return cmd
}

// addCmd implements 'taskflow add'.
func addCmd() *cobra.Command {
	var description, status string
	var sched scheduleFlags
	var choices map[string]string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a new task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			store, cfg := openStore()
			if !store.IsInitialized() {
				printError(tferrors.NotInitializedError{})
			}
			if args[0] == "" {
				printError(EmptyTitleError{})
			}

			now := time.Now()
			draft := &task.Task{Title: args[0], Description: description}
			if _, err := sched.apply(draft, now); err != nil {
				printError(err)
			}
			draft.Status = lifecycle.Derive(draft, now)

			to := draft.Status
			if status != "" {
				to = parseStatusArg(status)
			}
			if to == draft.Status {
				created, err := store.Create(draft)
				if err != nil {
					printError(err)
				}
				printOutput(formatter.FormatTask(created))
				return
			}

			run := newStatusRun(store, cfg, draft, true)
			if err := run.orch.HandleStatusChange(cmd.Context(), to); err != nil {
				printError(err)
			}
			outstanding, err := run.resolve(cmd.Context(), choices, canPrompt(cfg))
			if err != nil {
				printError(err)
			}
			if outstanding {
				tr, _ := run.orch.Pending()
				printOutput(formatter.FormatScenarios("new", tr))
				printError(DecisionsRequiredError{From: tr.From, To: tr.To})
			}
			if run.current.ID == "" {
				printOutput(formatter.FormatMessage("Task creation cancelled"))
				return
			}
			printOutput(formatter.FormatTask(run.current))
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Initial status (defaults to the status implied by dates)")
	cmd.Flags().StringToStringVarP(&choices, "choose", "c", nil, "Scenario decisions as key=value")
	sched.register(cmd)
	return cmd
}

// listCmd implements 'taskflow list'.
func listCmd() *cobra.Command {
	var statuses []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Run: func(_ *cobra.Command, _ []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}

			var filter storage.StatusFilter
			for _, s := range statuses {
				filter.Statuses = append(filter.Statuses, parseStatusArg(s))
			}

			tasks, err := store.List(filter)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTaskList(tasks))
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Show only tasks with these statuses")
	return cmd
}

// showCmd implements 'taskflow show'.
func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}

			t, err := store.Load(args[0])
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(t))
		},
	}
}

// deriveCmd implements 'taskflow derive'.
func deriveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "derive <id>",
		Short: "Show the status a task's dates imply right now",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}

			t, err := store.Load(args[0])
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatDerived(t, lifecycle.Derive(t, time.Now())))
		},
	}
}

// boardCmd implements 'taskflow board'.
func boardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Show tasks grouped by status",
		Run: func(_ *cobra.Command, _ []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}

			tasks, err := store.List(storage.StatusFilter{})
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatBoard(board.New(tasks, time.Now()).Columns()))
		},
	}
}

// suggestCmd implements 'taskflow suggest'.
func suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "List tasks whose stored status disagrees with their dates",
		Run: func(_ *cobra.Command, _ []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}

			tasks, err := store.List(storage.StatusFilter{})
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatSuggestions(board.New(tasks, time.Now()).Suggestions()))
		},
	}
}

// rmCmd implements 'taskflow rm'.
func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a task",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}

			taskID := args[0]
			if err = store.Delete(taskID); err != nil {
				printError(err)
			}

			// Drop a pending transition that pointed at the removed task
			if p, loadErr := pending.Load(store.BasePath()); loadErr == nil && p.TaskID == taskID {
				if err = pending.Delete(store.BasePath()); err != nil {
					printError(err)
				}
			}
			printOutput(formatter.FormatMessage(fmt.Sprintf("Removed task %s", taskID)))
		},
	}
}
