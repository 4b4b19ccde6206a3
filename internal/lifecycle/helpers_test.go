package lifecycle

import (
	"fmt"
	"time"

	"github.com/abatilo/taskflow/internal/task"
)

// fixedNow is Sunday, October 18, 2026, 12:00 UTC.
var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func day(offset int) *time.Time {
	d := task.DateOnly(fixedNow).AddDate(0, 0, offset)
	return &d
}

func newTestExecutor(revertible bool) *Executor {
	n := 0
	return &Executor{
		Catalog: &Catalog{DoneRevertible: revertible},
		Actor:   "tester",
		Now:     clock,
		NewID: func(time.Time) string {
			n++
			return fmt.Sprintf("act-%d", n)
		},
	}
}

func gatedTask() *task.Task {
	return &task.Task{
		ID:      "gated",
		Status:  task.StatusTodo,
		DueDate: day(3),
		Subtasks: []task.Subtask{
			{ID: "s1", Title: "Write tests", RequiredCompleted: true},
			{ID: "s2", Title: "Nice to have"},
		},
	}
}
