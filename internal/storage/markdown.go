package storage

import (
	"bytes"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abatilo/taskflow/internal/task"
)

const (
	frontmatterDelimiter = "---"
	dateLayout           = "2006-01-02"
)

// taskFrontmatter is the YAML-serializable portion of a task.
type taskFrontmatter struct {
	ID        string                `yaml:"id"`
	Title     string                `yaml:"title"`
	Status    string                `yaml:"status"`
	StartDate string                `yaml:"start_date,omitempty"`
	StartTime string                `yaml:"start_time,omitempty"`
	DueDate   string                `yaml:"due_date,omitempty"`
	DueTime   string                `yaml:"due_time,omitempty"`
	Completed bool                  `yaml:"completed,omitempty"`
	CreatedAt string                `yaml:"created_at"`
	Subtasks  []subtaskFrontmatter  `yaml:"subtasks,omitempty"`
	Activity  []activityFrontmatter `yaml:"activity,omitempty"`
}

type subtaskFrontmatter struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Completed bool   `yaml:"completed,omitempty"`
	Required  bool   `yaml:"required,omitempty"`
}

type activityFrontmatter struct {
	ID        string `yaml:"id"`
	Action    string `yaml:"action"`
	Details   string `yaml:"details,omitempty"`
	UserID    string `yaml:"user_id,omitempty"`
	Timestamp string `yaml:"timestamp"`
}

// ParseMarkdown parses a markdown file with YAML frontmatter into a Task.
func ParseMarkdown(content []byte) (*task.Task, error) {
	lines := strings.Split(string(content), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != frontmatterDelimiter {
		return nil, &parseError{"missing YAML frontmatter"}
	}

	var frontmatterEnd int
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterDelimiter {
			frontmatterEnd = i
			break
		}
	}
	if frontmatterEnd == 0 {
		return nil, &parseError{"unclosed YAML frontmatter"}
	}

	var fm taskFrontmatter
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:frontmatterEnd], "\n")), &fm); err != nil {
		return nil, &parseError{"invalid YAML: " + err.Error()}
	}

	status, err := task.ParseStatus(fm.Status)
	if err != nil {
		return nil, &parseError{err.Error()}
	}
	createdAt, err := parseTime(fm.CreatedAt)
	if err != nil {
		return nil, &parseError{"invalid created_at: " + err.Error()}
	}
	startDate, err := parseDate(fm.StartDate)
	if err != nil {
		return nil, &parseError{"invalid start_date: " + err.Error()}
	}
	dueDate, err := parseDate(fm.DueDate)
	if err != nil {
		return nil, &parseError{"invalid due_date: " + err.Error()}
	}

	t := &task.Task{
		ID:        fm.ID,
		Title:     fm.Title,
		Status:    status,
		StartDate: startDate,
		StartTime: fm.StartTime,
		DueDate:   dueDate,
		DueTime:   fm.DueTime,
		Completed: fm.Completed,
		CreatedAt: createdAt,
	}
	for _, st := range fm.Subtasks {
		t.Subtasks = append(t.Subtasks, task.Subtask{
			ID:                st.ID,
			Title:             st.Title,
			Completed:         st.Completed,
			RequiredCompleted: st.Required,
		})
	}
	for _, a := range fm.Activity {
		ts, tsErr := parseTime(a.Timestamp)
		if tsErr != nil {
			return nil, &parseError{"invalid activity timestamp: " + tsErr.Error()}
		}
		t.ActivityLog = append(t.ActivityLog, task.Activity{
			ID:        a.ID,
			Action:    a.Action,
			Details:   a.Details,
			UserID:    a.UserID,
			Timestamp: ts,
		})
	}

	if frontmatterEnd+1 < len(lines) {
		t.Description = strings.TrimSpace(strings.Join(lines[frontmatterEnd+1:], "\n"))
	}
	return t, nil
}

// SerializeMarkdown converts a Task to markdown with YAML frontmatter.
func SerializeMarkdown(t *task.Task) ([]byte, error) {
	fm := taskFrontmatter{
		ID:        t.ID,
		Title:     t.Title,
		Status:    t.Status.String(),
		StartDate: formatDate(t.StartDate),
		StartTime: t.StartTime,
		DueDate:   formatDate(t.DueDate),
		DueTime:   t.DueTime,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
	for _, st := range t.Subtasks {
		fm.Subtasks = append(fm.Subtasks, subtaskFrontmatter{
			ID:        st.ID,
			Title:     st.Title,
			Completed: st.Completed,
			Required:  st.RequiredCompleted,
		})
	}
	for _, a := range t.ActivityLog {
		fm.Activity = append(fm.Activity, activityFrontmatter{
			ID:        a.ID,
			Action:    a.Action,
			Details:   a.Details,
			UserID:    a.UserID,
			Timestamp: a.Timestamp.Format(time.RFC3339),
		})
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterDelimiter + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	buf.WriteString(frontmatterDelimiter + "\n")

	if t.Description != "" {
		buf.WriteString("\n")
		buf.WriteString(t.Description)
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// parseError represents a parsing error.
type parseError struct {
	msg string
}

func (e *parseError) Error() string {
	return e.msg
}

// parseTime tries to parse a time string in common formats.
func parseTime(s string) (time.Time, error) {
	for _, f := range []string{time.RFC3339, time.RFC3339Nano, dateLayout} {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &parseError{"unrecognized time format"}
}

// parseDate reads an optional calendar date.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil //nolint:nilnil // Absent dates are valid
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func formatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(dateLayout)
}
