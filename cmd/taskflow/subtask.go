package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	tferrors "github.com/abatilo/taskflow/internal/errors"
	"github.com/abatilo/taskflow/internal/task"
)

// subtaskCmd implements 'taskflow subtask'.
func subtaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtask",
		Short: "Manage a task's checklist",
	}
	cmd.AddCommand(subtaskAddCmd(), subtaskSetCmd("done", true), subtaskSetCmd("reopen", false))
	return cmd
}

func subtaskAddCmd() *cobra.Command {
	var required bool
	cmd := &cobra.Command{
		Use:   "add <id> <title>",
		Short: "Add a subtask",
		Args:  cobra.ExactArgs(2), //nolint:mnd // CLI takes 2 positional args
		Run: func(_ *cobra.Command, args []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}

			t, err := store.Load(args[0])
			if err != nil {
				printError(err)
			}
			if args[1] == "" {
				printError(EmptyTitleError{})
			}

			id := task.GenerateID(args[1], time.Now(), func(candidate string) bool {
				return t.FindSubtask(candidate) >= 0
			})
			t.Subtasks = append(t.Subtasks, task.Subtask{ID: id, Title: args[1], RequiredCompleted: required})
			if err = store.Save(t); err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(t))
		},
	}
	cmd.Flags().BoolVarP(&required, "required", "r", false, "Require this subtask before the task can be done")
	return cmd
}

func subtaskSetCmd(name string, completed bool) *cobra.Command {
	short := "Mark a subtask complete"
	if !completed {
		short = "Mark a subtask incomplete"
	}
	return &cobra.Command{
		Use:   fmt.Sprintf("%s <id> <subtask-id>", name),
		Short: short,
		Args:  cobra.ExactArgs(2), //nolint:mnd // CLI takes 2 positional args
		Run: func(_ *cobra.Command, args []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}

			t, err := store.Load(args[0])
			if err != nil {
				printError(err)
			}

			i := t.FindSubtask(args[1])
			if i < 0 {
				printError(tferrors.SubtaskNotFoundError{TaskID: t.ID, SubtaskID: args[1]})
			}
			t.Subtasks[i].Completed = completed
			if err = store.Save(t); err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(t))
		},
	}
}
