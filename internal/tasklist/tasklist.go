// Package tasklist derives the ordered task sequence a list view displays.
package tasklist

import (
	"cmp"
	"fmt"
	"time"

	"golang.org/x/exp/slices"

	"github.com/protomem/taskdesk/internal/model"
)

var _dueDateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// Date is a calendar date without time-of-day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) Compare(other Date) int {
	if c := cmp.Compare(d.Year, other.Year); c != 0 {
		return c
	}
	if c := cmp.Compare(d.Month, other.Month); c != 0 {
		return c
	}
	return cmp.Compare(d.Day, other.Day)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Human renders the date for display, e.g. "May 1, 2024".
func (d Date) Human() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format("Jan 2, 2006")
}

// ParseDueDate reads the calendar date as written, ignoring time-of-day and zone.
func ParseDueDate(s string) (Date, error) {
	for _, layout := range _dueDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			y, m, d := t.Date()
			return Date{Year: y, Month: m, Day: d}, nil
		}
	}
	return Date{}, fmt.Errorf("due date %q: %w", s, model.ErrMalformedRecord)
}

type sortKey struct {
	completed bool
	due       Date
	rank      int
}

type keyedTask struct {
	key  sortKey
	task model.Task
}

// Derive filters tasks by the selector and orders the survivors by completion
// (pending first), due date (earliest first) and priority (high first).
// The sort is stable. The input is left untouched.
func Derive(tasks []model.Task, sel Selector) ([]model.Task, error) {
	keyed := make([]keyedTask, 0, len(tasks))
	for _, task := range tasks {
		if !sel.Match(task) {
			continue
		}

		key, err := keyOf(task)
		if err != nil {
			return nil, err
		}
		keyed = append(keyed, keyedTask{key: key, task: task})
	}

	slices.SortStableFunc(keyed, func(a, b keyedTask) int {
		return compareKeys(a.key, b.key)
	})

	out := make([]model.Task, len(keyed))
	for i := range keyed {
		out[i] = keyed[i].task
	}
	return out, nil
}

func keyOf(task model.Task) (sortKey, error) {
	due, err := ParseDueDate(task.DueDate)
	if err != nil {
		return sortKey{}, model.NewError(fmt.Sprintf("task %d", task.ID), err)
	}

	rank, ok := task.Priority.Rank()
	if !ok {
		return sortKey{}, model.NewError(
			fmt.Sprintf("task %d", task.ID),
			fmt.Errorf("priority %q: %w", task.Priority, model.ErrMalformedRecord),
		)
	}

	return sortKey{completed: task.Completed, due: due, rank: rank}, nil
}

func compareKeys(a, b sortKey) int {
	if a.completed != b.completed {
		if a.completed {
			return 1
		}
		return -1
	}
	if c := a.due.Compare(b.due); c != 0 {
		return c
	}
	return cmp.Compare(a.rank, b.rank)
}
