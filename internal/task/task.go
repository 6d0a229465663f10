package task

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/nibzard/todo-go/internal/utils"
)

// DefaultKey is the storage key holding the task snapshot.
const DefaultKey = "tasks"

// Date layouts used in persisted records.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Priority is a task's importance.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities for sorting: high 3, medium 2, low 1.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ParsePriority parses user input. Empty input means medium.
func ParsePriority(s string) (Priority, error) {
	switch utils.NormalizeName(s) {
	case "":
		return PriorityMedium, nil
	case "high", "h":
		return PriorityHigh, nil
	case "medium", "med", "m":
		return PriorityMedium, nil
	case "low", "l":
		return PriorityLow, nil
	default:
		return "", fmt.Errorf("invalid priority %q, must be one of: high, medium, low", s)
	}
}

func normalizePriority(s string) Priority {
	p, err := ParsePriority(s)
	if err != nil {
		return PriorityMedium
	}
	return p
}

// Status selects tasks by completion state.
type Status string

const (
	StatusAll       Status = "all"
	StatusCompleted Status = "completed"
	StatusActive    Status = "active"
)

// ParseStatus parses a status filter. Empty input means all.
func ParseStatus(s string) (Status, error) {
	switch utils.NormalizeName(s) {
	case "", "all":
		return StatusAll, nil
	case "completed", "done":
		return StatusCompleted, nil
	case "active", "pending":
		return StatusActive, nil
	default:
		return "", fmt.Errorf("invalid status %q, must be one of: all, completed, active", s)
	}
}

// SortKey selects the view ordering.
type SortKey string

const (
	SortNone     SortKey = ""
	SortDueDate  SortKey = "dueDate"
	SortPriority SortKey = "priority"
	SortAdded    SortKey = "added"
)

// ParseSortKey parses a sort key. Empty input keeps insertion order.
func ParseSortKey(s string) (SortKey, error) {
	switch utils.NormalizeName(s) {
	case "", "none":
		return SortNone, nil
	case "duedate", "due-date", "due_date", "due":
		return SortDueDate, nil
	case "priority":
		return SortPriority, nil
	case "added", "addeddate":
		return SortAdded, nil
	default:
		return "", fmt.Errorf("invalid sort key %q, must be one of: dueDate, priority, added", s)
	}
}

// Task is a single to-do item.
type Task struct {
	ID        string   `json:"id" yaml:"id"`
	Text      string   `json:"text" yaml:"text"`
	Completed bool     `json:"completed" yaml:"completed"`
	DueDate   string   `json:"dueDate" yaml:"dueDate"`
	Priority  Priority `json:"priority" yaml:"priority"`
	Tags      []string `json:"tags" yaml:"tags"`
	AddedDate string   `json:"addedDate" yaml:"addedDate"`
}

// Input carries the raw values a user typed to create a task.
type Input struct {
	Text     string
	DueDate  string // YYYY-MM-DD; empty means today
	Priority string // empty means medium
	Tags     string // comma-separated
}

// HasTag reports whether the task carries tag, ignoring case.
func (t *Task) HasTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, have := range t.Tags {
		if strings.EqualFold(strings.TrimSpace(have), tag) {
			return true
		}
	}
	return false
}

func (t Task) clone() Task {
	t.Tags = slices.Clone(t.Tags)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t
}

// ParseTags splits comma-separated input into tags, dropping blank entries.
// Order and duplicates are kept.
func ParseTags(raw string) []string {
	return utils.SplitAndTrim(raw, ",")
}

// Today returns the calendar date of now in its own location.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// Timestamp formats a creation time the way addedDate is stored.
func Timestamp(now time.Time) string {
	return now.UTC().Format(TimestampLayout)
}

// ClampDueDate floors a due date to today. Empty input becomes today;
// input that is not a date is returned unchanged.
func ClampDueDate(date, today string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return today
	}
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	t, err := time.Parse(DateLayout, today)
	if err != nil {
		return date
	}
	if d.Before(t) {
		return today
	}
	return date
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
