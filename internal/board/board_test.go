//nolint:testpackage // Tests require internal access for thorough testing
package board

import (
	"testing"
	"time"

	"github.com/abatilo/taskflow/internal/task"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func day(offset int) *time.Time {
	d := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	return &d
}

func makeTask(id string, status task.Status, due *time.Time) *task.Task {
	return &task.Task{
		ID:        id,
		Title:     "Task " + id,
		Status:    status,
		DueDate:   due,
		CreatedAt: now.Add(-time.Hour),
	}
}

func ids(tasks []*task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestColumnOrder(t *testing.T) {
	b := New([]*task.Task{
		makeTask("undated", task.StatusTodo, nil),
		makeTask("later", task.StatusTodo, day(5)),
		makeTask("sooner", task.StatusTodo, day(1)),
		makeTask("other", task.StatusBacklog, day(0)),
	}, now)

	got := ids(b.Column(task.StatusTodo))
	want := []string{"sooner", "later", "undated"}
	if len(got) != len(want) {
		t.Fatalf("Column(todo) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestColumnsIncludesEveryStatus(t *testing.T) {
	b := New([]*task.Task{makeTask("a", task.StatusDone, nil)}, now)

	cols := b.Columns()
	if len(cols) != len(task.AllStatuses()) {
		t.Fatalf("Columns length = %d, want %d", len(cols), len(task.AllStatuses()))
	}
	for _, c := range cols {
		wantLen := 0
		if c.Status == task.StatusDone {
			wantLen = 1
		}
		if len(c.Tasks) != wantLen {
			t.Errorf("column %s has %d tasks, want %d", c.Status, len(c.Tasks), wantLen)
		}
	}
}

func TestSuggestions(t *testing.T) {
	late := makeTask("late", task.StatusTodo, day(-1))
	future := makeTask("future", task.StatusInProgress, nil)
	future.StartDate = day(3)
	fine := makeTask("fine", task.StatusTodo, day(2))
	archived := makeTask("archived", task.StatusArchive, day(-4))

	b := New([]*task.Task{late, future, fine, archived}, now)
	got := b.Suggestions()

	if len(got) != 2 {
		t.Fatalf("Suggestions length = %d, want 2: %+v", len(got), got)
	}
	if got[0].Task.ID != "late" || got[0].Suggested != task.StatusOverdue {
		t.Errorf("first suggestion = %s -> %s, want late -> overdue", got[0].Task.ID, got[0].Suggested)
	}
	if got[1].Task.ID != "future" || got[1].Suggested != task.StatusBacklog || got[1].Stored != task.StatusInProgress {
		t.Errorf("second suggestion = %+v, want future in-progress -> backlog", got[1])
	}
}

func TestGet(t *testing.T) {
	b := New([]*task.Task{makeTask("a", task.StatusTodo, nil)}, now)
	if b.Get("a") == nil {
		t.Error("Get(a) should find the task")
	}
	if b.Get("zz") != nil {
		t.Error("Get(zz) should be nil")
	}
}
