package tasklist

import (
	"fmt"

	"github.com/protomem/taskdesk/internal/model"
)

type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusCompleted StatusFilter = "completed"
	StatusPending   StatusFilter = "pending"
)

type PriorityFilter string

const (
	PriorityAll    PriorityFilter = "all"
	PriorityLow    PriorityFilter = PriorityFilter(model.PriorityLow)
	PriorityMedium PriorityFilter = PriorityFilter(model.PriorityMedium)
	PriorityHigh   PriorityFilter = PriorityFilter(model.PriorityHigh)
)

// Selector is the (status, priority) pair a list view filters by.
// The zero value selects everything.
type Selector struct {
	Status   StatusFilter
	Priority PriorityFilter
}

func DefaultSelector() Selector {
	return Selector{Status: StatusAll, Priority: PriorityAll}
}

// ParseStatusFilter accepts "", "all", "completed" and "pending".
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(s) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusCompleted, StatusPending:
		return StatusFilter(s), nil
	default:
		return "", fmt.Errorf("status filter %q: %w", s, model.ErrValidation)
	}
}

// ParsePriorityFilter accepts "", "all" and any task priority.
func ParsePriorityFilter(s string) (PriorityFilter, error) {
	switch PriorityFilter(s) {
	case "", PriorityAll:
		return PriorityAll, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return PriorityFilter(s), nil
	default:
		return "", fmt.Errorf("priority filter %q: %w", s, model.ErrValidation)
	}
}

func ParseSelector(status, priority string) (Selector, error) {
	st, err := ParseStatusFilter(status)
	if err != nil {
		return Selector{}, err
	}
	pr, err := ParsePriorityFilter(priority)
	if err != nil {
		return Selector{}, err
	}
	return Selector{Status: st, Priority: pr}, nil
}

func (s Selector) normalized() Selector {
	if s.Status == "" {
		s.Status = StatusAll
	}
	if s.Priority == "" {
		s.Priority = PriorityAll
	}
	return s
}

// Match reports whether the task passes both predicates.
func (s Selector) Match(task model.Task) bool {
	s = s.normalized()

	switch s.Status {
	case StatusCompleted:
		if !task.Completed {
			return false
		}
	case StatusPending:
		if task.Completed {
			return false
		}
	}

	if s.Priority != PriorityAll && model.Priority(s.Priority) != task.Priority {
		return false
	}

	return true
}
