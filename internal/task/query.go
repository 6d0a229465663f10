package task

import (
	"sort"
	"time"

	"github.com/nibzard/todo-go/internal/utils"
)

// Query describes a view over the collection.
type Query struct {
	Status Status
	Sort   SortKey
	// Tags is a comma-separated, case-insensitive filter. A task matches when
	// any listed tag equals one of its tags. Empty matches everything.
	Tags string
}

// FilterAndSort returns copies of the tasks matching q, ordered by q.Sort.
// Ties keep the input order.
func FilterAndSort(tasks []Task, q Query) []Task {
	want := utils.NormalizeList(q.Tags)

	out := make([]Task, 0, len(tasks))
	for i := range tasks {
		if !matchesStatus(&tasks[i], q.Status) || !matchesTags(&tasks[i], want) {
			continue
		}
		out = append(out, tasks[i].clone())
	}

	sortTasks(out, q.Sort)
	return out
}

func matchesStatus(t *Task, status Status) bool {
	switch status {
	case StatusCompleted:
		return t.Completed
	case StatusActive:
		return !t.Completed
	default:
		// unknown => treat as "all"
		return true
	}
}

func matchesTags(t *Task, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, tag := range want {
		if t.HasTag(tag) {
			return true
		}
	}
	return false
}

func sortTasks(tasks []Task, key SortKey) {
	var less func(a, b *Task) bool
	switch key {
	case SortDueDate:
		less = func(a, b *Task) bool {
			return timeLess(parseDate(a.DueDate), parseDate(b.DueDate))
		}
	case SortPriority:
		less = func(a, b *Task) bool {
			return a.Priority.Rank() > b.Priority.Rank()
		}
	case SortAdded:
		less = func(a, b *Task) bool {
			return timeLess(parseTimestamp(a.AddedDate), parseTimestamp(b.AddedDate))
		}
	default:
		return
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return less(&tasks[i], &tasks[j])
	})
}

// timeLess orders parsed times ascending with unparseable values last.
func timeLess(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}

func parseDate(s string) *time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func parseTimestamp(s string) *time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}

// DaysUntil returns the number of calendar days from today until the due
// date, negative when overdue. ok is false when due is not a date.
func DaysUntil(due string, now time.Time) (days int, ok bool) {
	d := parseDate(due)
	if d == nil {
		return 0, false
	}
	today, err := time.Parse(DateLayout, Today(now))
	if err != nil {
		return 0, false
	}
	return int(d.Sub(today).Hours() / 24), true
}
