package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParseStatus maps free-form input to a Status. Unknown values report false
// so callers can decide whether that means "no filter" or a field error.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, true
	case StatusInProgress:
		return StatusInProgress, true
	case StatusCompleted:
		return StatusCompleted, true
	}
	return "", false
}

func ParsePriority(s string) (Priority, bool) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow, true
	case PriorityMedium:
		return PriorityMedium, true
	case PriorityHigh:
		return PriorityHigh, true
	}
	return "", false
}

// Due dates are calendar dates with no time component, carried as
// "YYYY-MM-DD" strings. Lexicographic comparison matches chronological order.
const dateLayout = "2006-01-02"

// ParseDate validates a calendar date string.
func ParseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", false
	}
	return s, true
}

// Today formats the current date for validation and filtering.
func Today(now time.Time) string {
	return now.Format(dateLayout)
}

type Task struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	DueDate     *string   `json:"dueDate,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// newID returns a time-ordered UUID so that id order tracks creation order
// within a CreatedAt tie.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IsOverdue reports whether the task's due date has passed without the task
// being completed.
func (t *Task) IsOverdue(today string) bool {
	if t.DueDate == nil || t.Status == StatusCompleted {
		return false
	}
	return *t.DueDate < today
}
