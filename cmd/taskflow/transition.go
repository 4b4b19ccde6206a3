package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/abatilo/taskflow/internal/config"
	tferrors "github.com/abatilo/taskflow/internal/errors"
	"github.com/abatilo/taskflow/internal/lifecycle"
	"github.com/abatilo/taskflow/internal/pending"
	"github.com/abatilo/taskflow/internal/storage"
	"github.com/abatilo/taskflow/internal/task"
)

// statusRun wires one orchestrator to the store for a single command.
type statusRun struct {
	current *task.Task
	// copied is set when a done task was copied instead of reopened.
	copied *task.Task
	orch   *lifecycle.Orchestrator
}

func newStatusRun(store *storage.Store, cfg *config.Config, t *task.Task, createMode bool) *statusRun {
	r := &statusRun{current: t}
	r.orch = lifecycle.NewOrchestrator(lifecycle.Config{
		Task:    func() *task.Task { return r.current },
		SetTask: func(updated *task.Task) { r.current = updated },
		OnSave: func(_ context.Context, updated *task.Task) error {
			if !createMode {
				return store.Save(updated)
			}
			created, err := store.Create(updated)
			if err != nil {
				return err
			}
			r.current = created
			return nil
		},
		CreateTask: func(_ context.Context, tmpl *task.Task) (*task.Task, error) {
			created, err := store.Create(tmpl)
			if err != nil {
				return nil, err
			}
			r.copied = created
			return created, nil
		},
		Executor:   lifecycle.NewExecutor(&lifecycle.Catalog{DoneRevertible: cfg.RevertDone}, cfg.Actor),
		CreateMode: createMode,
		Logger:     logger,
	})
	return r
}

// resolve answers a pending transition from choices, or by prompting when
// allowed. It reports whether decisions are still outstanding.
func (r *statusRun) resolve(ctx context.Context, choices map[string]string, interactive bool) (bool, error) {
	tr, ok := r.orch.Pending()
	if !ok {
		return false, nil
	}

	res := lifecycle.Resolution(choices)
	if len(res) == 0 {
		if !interactive {
			return true, nil
		}
		var err error
		if res, err = promptResolution(tr); err != nil {
			return true, err
		}
	}

	if err := r.orch.Confirm(ctx, res); err != nil {
		return true, err
	}
	_, stillPending := r.orch.Pending()
	return stillPending, nil
}

func canPrompt(cfg *config.Config) bool {
	return cfg.Interactive && !jsonOutput && term.IsTerminal(int(os.Stdin.Fd()))
}

// promptResolution asks for every decision of tr in a terminal form.
// Aborting the form cancels the transition.
func promptResolution(tr lifecycle.Transition) (lifecycle.Resolution, error) {
	values := make([]string, len(tr.Scenarios))
	fields := make([]huh.Field, len(tr.Scenarios))
	for i, s := range tr.Scenarios {
		opts := make([]huh.Option[string], len(s.Options))
		for j, o := range s.Options {
			label := o.Label
			if o.Description != "" {
				label += " - " + o.Description
			}
			opts[j] = huh.NewOption(label, o.Value)
		}
		fields[i] = huh.NewSelect[string]().
			Title(s.Title).
			Options(opts...).
			Value(&values[i])
	}

	form := huh.NewForm(huh.NewGroup(fields...))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return lifecycle.Resolution{tr.Scenarios[0].Key: lifecycle.OptionCancel}, nil
		}
		return nil, fmt.Errorf("prompt: %w", err)
	}

	res := make(lifecycle.Resolution, len(values))
	for i, s := range tr.Scenarios {
		res[s.Key] = values[i]
	}

	if res[lifecycle.KeyDateStrategy] == lifecycle.OptionCustom {
		var expr string
		input := huh.NewInput().
			Title("Start date").
			Description("A date like 2026-11-02, +3d, or next friday").
			Value(&expr).
			Validate(func(s string) error {
				if s == "" {
					return errors.New("a date is required")
				}
				return nil
			})
		if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return lifecycle.Resolution{lifecycle.KeyDateStrategy: lifecycle.OptionCancel}, nil
			}
			return nil, fmt.Errorf("prompt: %w", err)
		}
		res[lifecycle.KeyCustomDate] = expr
	}
	return res, nil
}

// printOutcome reports what a finished run did to the task.
func (r *statusRun) printOutcome(before *task.Task) {
	switch {
	case r.copied != nil:
		printOutput(formatter.FormatMessage(fmt.Sprintf("Task %s stays done; created copy %s", before.ID, r.copied.ID)))
		printOutput(formatter.FormatTask(r.copied))
	case r.current == before:
		printOutput(formatter.FormatMessage(fmt.Sprintf("Task %s unchanged", before.ID)))
	default:
		printOutput(formatter.FormatTask(r.current))
	}
}

// clearPendingFor removes the saved transition when it belongs to taskID.
func clearPendingFor(basePath, taskID string) error {
	p, err := pending.Load(basePath)
	if err != nil || p.TaskID != taskID {
		return nil //nolint:nilerr // Nothing of ours to clear
	}
	return pending.Delete(basePath)
}

// requestStatus asks for a move of taskID to to. Unresolved transitions are
// saved so a later confirm or cancel can finish them.
func requestStatus(
	ctx context.Context, store *storage.Store, cfg *config.Config,
	taskID string, to task.Status, choices map[string]string, interactive bool,
) (*statusRun, *task.Task, bool, error) {
	t, err := store.Load(taskID)
	if err != nil {
		return nil, nil, false, err
	}

	run := newStatusRun(store, cfg, t, false)
	if err = run.orch.HandleStatusChange(ctx, to); err != nil {
		return nil, nil, false, err
	}

	outstanding, err := run.resolve(ctx, choices, interactive)
	if err != nil {
		return nil, nil, false, err
	}
	if outstanding {
		tr, _ := run.orch.Pending()
		if err = pending.Save(store.BasePath(), pending.FromTransition(t.ID, tr, time.Now())); err != nil {
			return nil, nil, false, err
		}
		return run, t, true, nil
	}

	// This request replaces any transition saved earlier for the task
	if err = clearPendingFor(store.BasePath(), t.ID); err != nil {
		return nil, nil, false, err
	}
	return run, t, false, nil
}

// loadPending returns the saved transition for taskID.
func loadPending(basePath, taskID string) (*pending.Pending, error) {
	if !pending.Exists(basePath) {
		return nil, tferrors.NoPendingTransitionError{}
	}
	p, err := pending.Load(basePath)
	if err != nil {
		return nil, err
	}
	if p.TaskID != taskID {
		return nil, tferrors.PendingMismatchError{ID: taskID, PendingID: p.TaskID}
	}
	return p, nil
}

// confirmPending resolves the saved transition of taskID. The saved
// transition is kept when decisions are missing or rejected.
func confirmPending(
	ctx context.Context, store *storage.Store, cfg *config.Config,
	taskID string, choices map[string]string, interactive bool,
) (*statusRun, *task.Task, error) {
	p, err := loadPending(store.BasePath(), taskID)
	if err != nil {
		return nil, nil, err
	}
	tr, err := p.Transition()
	if err != nil {
		return nil, nil, err
	}
	t, err := store.Load(p.TaskID)
	if err != nil {
		return nil, nil, err
	}

	run := newStatusRun(store, cfg, t, false)
	run.orch.Resume(tr)

	outstanding, err := run.resolve(ctx, choices, interactive)
	if err != nil {
		return nil, nil, err
	}
	if outstanding {
		return nil, nil, DecisionsRequiredError{From: tr.From, To: tr.To}
	}

	if err = pending.Delete(store.BasePath()); err != nil {
		return nil, nil, err
	}
	return run, t, nil
}

// cancelPending discards the saved transition of taskID.
func cancelPending(basePath, taskID string) (*pending.Pending, error) {
	p, err := loadPending(basePath, taskID)
	if err != nil {
		return nil, err
	}
	if err = pending.Delete(basePath); err != nil {
		return nil, err
	}
	return p, nil
}

// statusCmd implements 'taskflow status'.
func statusCmd() *cobra.Command {
	var choices map[string]string
	cmd := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move a task to a new status",
		Long: "Move a task to a new status. Transitions that need a decision prompt in a terminal,\n" +
			"take answers from --choose, or are saved until 'taskflow confirm'.",
		Args: cobra.ExactArgs(2), //nolint:mnd // CLI takes 2 positional args
		Run: func(cmd *cobra.Command, args []string) {
			store, cfg := openStore()
			to := parseStatusArg(args[1])

			run, before, outstanding, err := requestStatus(cmd.Context(), store, cfg, args[0], to, choices, canPrompt(cfg))
			if err != nil {
				printError(err)
			}
			if outstanding {
				tr, _ := run.orch.Pending()
				printOutput(formatter.FormatScenarios(before.ID, tr))
				if !jsonOutput {
					printOutput(formatter.FormatMessage(fmt.Sprintf(
						"Saved; finish with 'taskflow confirm %s' or 'taskflow cancel %s'", before.ID, before.ID)))
				}
				return
			}
			run.printOutcome(before)
		},
	}
	cmd.Flags().StringToStringVarP(&choices, "choose", "c", nil, "Scenario decisions as key=value")
	return cmd
}

// confirmCmd implements 'taskflow confirm'.
func confirmCmd() *cobra.Command {
	var choices map[string]string
	cmd := &cobra.Command{
		Use:   "confirm <id>",
		Short: "Resolve the pending transition of a task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			store, cfg := openStore()

			run, before, err := confirmPending(cmd.Context(), store, cfg, args[0], choices, canPrompt(cfg))
			var missing DecisionsRequiredError
			if errors.As(err, &missing) {
				if p, loadErr := pending.Load(store.BasePath()); loadErr == nil {
					if tr, trErr := p.Transition(); trErr == nil {
						printOutput(formatter.FormatScenarios(p.TaskID, tr))
					}
				}
			}
			if err != nil {
				printError(err)
			}
			run.printOutcome(before)
		},
	}
	cmd.Flags().StringToStringVarP(&choices, "choose", "c", nil, "Scenario decisions as key=value")
	return cmd
}

// cancelCmd implements 'taskflow cancel'.
func cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Discard the pending transition of a task",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}

			p, err := cancelPending(store.BasePath(), args[0])
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatMessage(fmt.Sprintf("Cancelled %s -> %s for task %s", p.From, p.To, p.TaskID)))
		},
	}
}
