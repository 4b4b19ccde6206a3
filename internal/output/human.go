package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abatilo/taskflow/internal/board"
	"github.com/abatilo/taskflow/internal/lifecycle"
	"github.com/abatilo/taskflow/internal/task"
)

var (
	colorPass   = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	colorWarn   = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	colorFail   = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
	colorAccent = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	failStyle   = lipgloss.NewStyle().Foreground(colorFail)
)

func statusStyle(s task.Status) lipgloss.Style {
	switch s {
	case task.StatusOverdue:
		return lipgloss.NewStyle().Foreground(colorFail)
	case task.StatusInProgress:
		return lipgloss.NewStyle().Foreground(colorWarn)
	case task.StatusDone:
		return lipgloss.NewStyle().Foreground(colorPass)
	case task.StatusBacklog, task.StatusArchive:
		return lipgloss.NewStyle().Foreground(colorMuted)
	default:
		return lipgloss.NewStyle()
	}
}

// HumanFormatter formats output for human-readable terminal display.
type HumanFormatter struct{}

// NewHumanFormatter creates a new HumanFormatter.
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

func formatSchedule(date, clock string) string {
	if clock == "" {
		return date
	}
	return date + " " + clock
}

// FormatTask formats a single task for display.
func (f *HumanFormatter) FormatTask(t *task.Task) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[%s] %s\n", t.ID, t.Title)
	fmt.Fprintf(&sb, "  Status:   %s\n", statusStyle(t.Status).Render(t.Status.String()))
	if t.StartDate != nil {
		fmt.Fprintf(&sb, "  Start:    %s\n", formatSchedule(t.StartDate.Format("2006-01-02"), t.StartTime))
	}
	if t.DueDate != nil {
		fmt.Fprintf(&sb, "  Due:      %s\n", formatSchedule(t.DueDate.Format("2006-01-02"), t.DueTime))
	}
	fmt.Fprintf(&sb, "  Created:  %s\n", t.CreatedAt.Format("2006-01-02 15:04"))

	if len(t.Subtasks) > 0 {
		sb.WriteString("  Subtasks:\n")
		for _, s := range t.Subtasks {
			mark := "[ ]"
			if s.Completed {
				mark = "[X]"
			}
			req := ""
			if s.RequiredCompleted {
				req = mutedStyle.Render(" (required)")
			}
			fmt.Fprintf(&sb, "    %s %s %s%s\n", mark, s.ID, s.Title, req)
		}
	}
	if len(t.ActivityLog) > 0 {
		sb.WriteString("  Activity:\n")
		for _, a := range t.ActivityLog {
			line := fmt.Sprintf("%s %s by %s", a.Timestamp.Format("2006-01-02 15:04"), a.Action, a.UserID)
			if a.Details != "" {
				line += " (" + a.Details + ")"
			}
			fmt.Fprintf(&sb, "    %s\n", line)
		}
	}
	if t.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(t.Description)
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatTaskList formats a list of tasks for display.
func (f *HumanFormatter) FormatTaskList(tasks []*task.Task) string {
	if len(tasks) == 0 {
		return "No tasks found.\n"
	}

	var sb strings.Builder
	for _, t := range tasks {
		sb.WriteString(f.formatTaskLine(t))
	}
	return sb.String()
}

// formatTaskLine formats a single task as a compact one-liner.
func (f *HumanFormatter) formatTaskLine(t *task.Task) string {
	status := statusStyle(t.Status).Render(fmt.Sprintf("%-11s", t.Status))
	due := ""
	if t.DueDate != nil {
		due = mutedStyle.Render(" due " + formatSchedule(t.DueDate.Format("2006-01-02"), t.DueTime))
	}
	return fmt.Sprintf("%s [%s] %s%s\n", status, t.ID, t.Title, due)
}

// FormatDerived shows a task's stored and effective statuses.
func (f *HumanFormatter) FormatDerived(t *task.Task, effective task.Status) string {
	if effective == t.Status {
		return fmt.Sprintf("[%s] %s\n", t.ID, statusStyle(effective).Render(effective.String()))
	}
	return fmt.Sprintf("[%s] %s (stored: %s)\n",
		t.ID, statusStyle(effective).Render(effective.String()), mutedStyle.Render(t.Status.String()))
}

// FormatScenarios describes a pending transition and how to resolve it.
func (f *HumanFormatter) FormatScenarios(taskID string, tr lifecycle.Transition) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s -> %s needs confirmation:\n",
		headerStyle.Render("["+taskID+"]"), tr.From, tr.To)
	for _, s := range tr.Scenarios {
		fmt.Fprintf(&sb, "\n  %s (%s)\n", s.Title, s.Key)
		for _, o := range s.Options {
			line := fmt.Sprintf("    %s=%s  %s", s.Key, o.Value, o.Label)
			if o.Description != "" {
				line += mutedStyle.Render("  " + o.Description)
			}
			sb.WriteString(line + "\n")
		}
	}
	sb.WriteString("\nAnswer each decision with --choose key=value\n")
	return sb.String()
}

// FormatBoard renders every status column in order.
func (f *HumanFormatter) FormatBoard(cols []board.Column) string {
	var sb strings.Builder
	for i, c := range cols {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s (%d)\n", headerStyle.Render(strings.ToUpper(c.Status.String())), len(c.Tasks))
		if len(c.Tasks) == 0 {
			sb.WriteString(mutedStyle.Render("  (empty)") + "\n")
			continue
		}
		for _, t := range c.Tasks {
			fmt.Fprintf(&sb, "  [%s] %s\n", t.ID, t.Title)
		}
	}
	return sb.String()
}

// FormatSuggestions lists tasks whose dates imply a different status.
func (f *HumanFormatter) FormatSuggestions(suggestions []board.Suggestion) string {
	if len(suggestions) == 0 {
		return "All statuses match their dates.\n"
	}

	var sb strings.Builder
	for _, s := range suggestions {
		fmt.Fprintf(&sb, "[%s] %s: %s -> %s\n",
			s.Task.ID, s.Task.Title, mutedStyle.Render(s.Stored.String()),
			statusStyle(s.Suggested).Render(s.Suggested.String()))
	}
	return sb.String()
}

// FormatError formats an error for display.
func (f *HumanFormatter) FormatError(err error) string {
	return failStyle.Render("Error:") + " " + err.Error() + "\n"
}

// FormatMessage formats a simple message.
func (f *HumanFormatter) FormatMessage(msg string) string {
	return msg + "\n"
}
