package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/abatilo/taskflow/internal/lifecycle"
	"github.com/abatilo/taskflow/internal/task"
	"github.com/abatilo/taskflow/internal/timeparsing"
)

// scheduleFlags holds the date flags shared by add and schedule.
type scheduleFlags struct {
	start, due         string
	startTime, dueTime string
	clearStart         bool
	clearDue           bool
}

func (f *scheduleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "Start date (2026-11-02, +3d, tomorrow, next monday)")
	cmd.Flags().StringVar(&f.due, "due", "", "Due date (2026-11-02, +3d, tomorrow, next monday)")
	cmd.Flags().StringVar(&f.startTime, "start-time", "", "Start time of day (HH:MM)")
	cmd.Flags().StringVar(&f.dueTime, "due-time", "", "Due time of day (HH:MM)")
}

func (f *scheduleFlags) registerClear(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.clearStart, "clear-start", false, "Remove the start date and time")
	cmd.Flags().BoolVar(&f.clearDue, "clear-due", false, "Remove the due date and time")
}

// apply sets the requested dates on t and describes each change.
func (f *scheduleFlags) apply(t *task.Task, now time.Time) ([]string, error) {
	var changes []string

	if f.clearStart {
		t.StartDate, t.StartTime = nil, ""
		changes = append(changes, "start cleared")
	}
	if f.clearDue {
		t.DueDate, t.DueTime = nil, ""
		changes = append(changes, "due cleared")
	}

	if f.start != "" {
		d, err := timeparsing.ParseDate(f.start, now)
		if err != nil {
			return nil, InvalidDateError{Flag: "start", Value: f.start, Err: err}
		}
		t.StartDate = &d
		changes = append(changes, "start "+d.Format("2006-01-02"))
	}
	if f.due != "" {
		d, err := timeparsing.ParseDate(f.due, now)
		if err != nil {
			return nil, InvalidDateError{Flag: "due", Value: f.due, Err: err}
		}
		t.DueDate = &d
		changes = append(changes, "due "+d.Format("2006-01-02"))
	}

	if f.startTime != "" {
		clock, err := timeparsing.NormalizeClock(f.startTime)
		if err != nil {
			return nil, InvalidDateError{Flag: "start-time", Value: f.startTime, Err: err}
		}
		t.StartTime = clock
		changes = append(changes, "start time "+clock)
	}
	if f.dueTime != "" {
		clock, err := timeparsing.NormalizeClock(f.dueTime)
		if err != nil {
			return nil, InvalidDateError{Flag: "due-time", Value: f.dueTime, Err: err}
		}
		t.DueTime = clock
		changes = append(changes, "due time "+clock)
	}

	if t.StartDate != nil && t.DueDate != nil && t.DueDate.Before(*t.StartDate) {
		return nil, fmt.Errorf("due date %s is before start date %s",
			t.DueDate.Format("2006-01-02"), t.StartDate.Format("2006-01-02"))
	}
	return changes, nil
}

// scheduleCmd implements 'taskflow schedule'.
func scheduleCmd() *cobra.Command {
	var sched scheduleFlags
	cmd := &cobra.Command{
		Use:   "schedule <id>",
		Short: "Set or clear a task's start and due dates",
		Long: "Set or clear a task's start and due dates. The stored status is left alone;\n" +
			"use 'taskflow suggest' to see tasks whose dates now imply another status.",
		Args: cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			store, cfg := openStore()

			t, err := store.Load(args[0])
			if err != nil {
				printError(err)
			}

			now := time.Now()
			changes, err := sched.apply(t, now)
			if err != nil {
				printError(err)
			}
			if len(changes) == 0 {
				printOutput(formatter.FormatMessage("Nothing to change"))
				return
			}

			t.ActivityLog = append(t.ActivityLog, task.Activity{
				ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
				Action:    "schedule",
				Details:   strings.Join(changes, "; "),
				UserID:    cfg.Actor,
				Timestamp: now,
			})
			if err = store.Save(t); err != nil {
				printError(err)
			}

			if effective := lifecycle.Derive(t, now); effective != t.Status {
				logger.Info("dates imply a different status",
					"task", t.ID, "stored", t.Status.String(), "effective", effective.String())
			}
			printOutput(formatter.FormatTask(t))
		},
	}
	sched.register(cmd)
	sched.registerClear(cmd)
	return cmd
}
