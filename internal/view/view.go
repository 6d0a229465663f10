// Package view projects tasks into display rows and renders them as text,
// JSON, or YAML. Rows are rebuilt from the task collection on every render;
// nothing is ever read back from rendered output.
package view

import (
	"fmt"
	"time"

	"github.com/nibzard/todo-go/internal/task"
)

const shortIDLen = 8

// Row is one rendered task.
type Row struct {
	ID        string        `json:"id" yaml:"id"`
	ShortID   string        `json:"shortId" yaml:"shortId"`
	Text      string        `json:"text" yaml:"text"`
	Completed bool          `json:"completed" yaml:"completed"`
	Priority  task.Priority `json:"priority" yaml:"priority"`
	DueDate   string        `json:"dueDate" yaml:"dueDate"`
	DueLabel  string        `json:"dueLabel" yaml:"dueLabel"`
	Urgent    bool          `json:"urgent" yaml:"urgent"`
	Tags      []string      `json:"tags" yaml:"tags"`
}

// Project builds one row per task, keeping order. A task is urgent when it
// is not completed and due within urgentDays calendar days, overdue included.
// A negative urgentDays disables urgency.
func Project(tasks []task.Task, now time.Time, urgentDays int) []Row {
	rows := make([]Row, 0, len(tasks))
	for _, t := range tasks {
		days, ok := task.DaysUntil(t.DueDate, now)
		tags := make([]string, len(t.Tags))
		copy(tags, t.Tags)
		rows = append(rows, Row{
			ID:        t.ID,
			ShortID:   ShortID(t.ID),
			Text:      t.Text,
			Completed: t.Completed,
			Priority:  t.Priority,
			DueDate:   t.DueDate,
			DueLabel:  dueLabel(t.DueDate, days, ok),
			Urgent:    ok && !t.Completed && urgentDays >= 0 && days <= urgentDays,
			Tags:      tags,
		})
	}
	return rows
}

// ShortID abbreviates an id for display. Any unique prefix resolves back.
func ShortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

func dueLabel(due string, days int, ok bool) string {
	if due == "" {
		return ""
	}
	if !ok {
		return "Due: " + due
	}
	var rel string
	switch {
	case days == 0:
		rel = "today"
	case days == 1:
		rel = "tomorrow"
	case days == -1:
		rel = "1 day overdue"
	case days < 0:
		rel = fmt.Sprintf("%d days overdue", -days)
	default:
		rel = fmt.Sprintf("in %d days", days)
	}
	return fmt.Sprintf("Due: %s (%s)", due, rel)
}

// StatsLine is the total/completed/pending readout.
func StatsLine(st task.Stats) string {
	return fmt.Sprintf("Total: %d | Completed: %d | Pending: %d", st.Total, st.Completed, st.Pending)
}
