package output

import (
	"encoding/json"
	"time"

	"github.com/abatilo/taskflow/internal/board"
	"github.com/abatilo/taskflow/internal/lifecycle"
	"github.com/abatilo/taskflow/internal/task"
)

// JSONFormatter formats output as JSON.
type JSONFormatter struct{}

// marshalJSON marshals a value to indented JSON with a trailing newline.
func marshalJSON(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data) + "\n"
}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

type subtaskJSON struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Required  bool   `json:"required"`
}

type activityJSON struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	Details   string `json:"details,omitempty"`
	UserID    string `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

// taskJSON is the JSON representation of a task.
type taskJSON struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Status      string         `json:"status"`
	StartDate   *string        `json:"start_date,omitempty"`
	StartTime   string         `json:"start_time,omitempty"`
	DueDate     *string        `json:"due_date,omitempty"`
	DueTime     string         `json:"due_time,omitempty"`
	Completed   bool           `json:"completed"`
	CreatedAt   string         `json:"created_at"`
	Subtasks    []subtaskJSON  `json:"subtasks,omitempty"`
	Activity    []activityJSON `json:"activity,omitempty"`
	Description string         `json:"description,omitempty"`
}

func formatDate(d *time.Time) *string {
	if d == nil {
		return nil
	}
	s := d.Format("2006-01-02")
	return &s
}

func toTaskJSON(t *task.Task) taskJSON {
	tj := taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Status:      t.Status.String(),
		StartDate:   formatDate(t.StartDate),
		StartTime:   t.StartTime,
		DueDate:     formatDate(t.DueDate),
		DueTime:     t.DueTime,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		Description: t.Description,
	}
	for _, s := range t.Subtasks {
		tj.Subtasks = append(tj.Subtasks, subtaskJSON{
			ID:        s.ID,
			Title:     s.Title,
			Completed: s.Completed,
			Required:  s.RequiredCompleted,
		})
	}
	for _, a := range t.ActivityLog {
		tj.Activity = append(tj.Activity, activityJSON{
			ID:        a.ID,
			Action:    a.Action,
			Details:   a.Details,
			UserID:    a.UserID,
			Timestamp: a.Timestamp.Format(time.RFC3339),
		})
	}
	return tj
}

// FormatTask formats a single task as JSON.
func (f *JSONFormatter) FormatTask(t *task.Task) string {
	return marshalJSON(toTaskJSON(t))
}

// FormatTaskList formats a list of tasks as JSON.
func (f *JSONFormatter) FormatTaskList(tasks []*task.Task) string {
	jsonTasks := make([]taskJSON, len(tasks))
	for i, t := range tasks {
		jsonTasks[i] = toTaskJSON(t)
	}
	return marshalJSON(jsonTasks)
}

type derivedJSON struct {
	ID        string `json:"id"`
	Stored    string `json:"stored"`
	Effective string `json:"effective"`
}

// FormatDerived formats stored and effective statuses as JSON.
func (f *JSONFormatter) FormatDerived(t *task.Task, effective task.Status) string {
	return marshalJSON(derivedJSON{ID: t.ID, Stored: t.Status.String(), Effective: effective.String()})
}

type pendingJSON struct {
	TaskID    string               `json:"task_id"`
	From      string               `json:"from"`
	To        string               `json:"to"`
	Scenarios []lifecycle.Scenario `json:"scenarios"`
}

// FormatScenarios formats a pending transition as JSON.
func (f *JSONFormatter) FormatScenarios(taskID string, tr lifecycle.Transition) string {
	return marshalJSON(pendingJSON{
		TaskID:    taskID,
		From:      tr.From.String(),
		To:        tr.To.String(),
		Scenarios: tr.Scenarios,
	})
}

type columnJSON struct {
	Status string     `json:"status"`
	Tasks  []taskJSON `json:"tasks"`
}

// FormatBoard formats the board columns as JSON.
func (f *JSONFormatter) FormatBoard(cols []board.Column) string {
	out := make([]columnJSON, len(cols))
	for i, c := range cols {
		tasks := make([]taskJSON, len(c.Tasks))
		for j, t := range c.Tasks {
			tasks[j] = toTaskJSON(t)
		}
		out[i] = columnJSON{Status: c.Status.String(), Tasks: tasks}
	}
	return marshalJSON(out)
}

type suggestionJSON struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Stored    string `json:"stored"`
	Suggested string `json:"suggested"`
}

// FormatSuggestions formats status suggestions as JSON.
func (f *JSONFormatter) FormatSuggestions(suggestions []board.Suggestion) string {
	out := make([]suggestionJSON, len(suggestions))
	for i, s := range suggestions {
		out[i] = suggestionJSON{
			ID:        s.Task.ID,
			Title:     s.Task.Title,
			Stored:    s.Stored.String(),
			Suggested: s.Suggested.String(),
		}
	}
	return marshalJSON(out)
}

// errorJSON is the JSON representation of an error.
type errorJSON struct {
	Error string `json:"error"`
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(err error) string {
	return marshalJSON(errorJSON{Error: err.Error()})
}

// messageJSON is the JSON representation of a message.
type messageJSON struct {
	Message string `json:"message"`
}

// FormatMessage formats a simple message as JSON.
func (f *JSONFormatter) FormatMessage(msg string) string {
	return marshalJSON(messageJSON{Message: msg})
}
