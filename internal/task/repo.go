package task

import (
	"context"
	"errors"
)

var (
	// ErrNotFound covers both "no such task" and "task owned by someone
	// else". Callers must not be able to tell the two apart.
	ErrNotFound = errors.New("task not found")

	// ErrStorage marks infrastructure failures from the persistence layer.
	// The repository never retries; the enclosing application decides.
	ErrStorage = errors.New("task storage failure")
)

// Patch is a partial update. nil pointer => "no change". An empty string in
// DueDate clears the date.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

// Repo is the persistence seam. Every operation is scoped to ownerID: a task
// owned by a different identity behaves exactly like a missing one. This is
// the sole authorization mechanism; there is no separate permission model.
type Repo interface {
	Create(ctx context.Context, ownerID string, v Validated) (Task, error)
	Get(ctx context.Context, ownerID, id string) (Task, error)
	Update(ctx context.Context, ownerID, id string, v Validated) (Task, error)
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, ownerID string, f Filter, req PageRequest) (Page, error)
	Count(ctx context.Context, ownerID string, f Filter) (int, error)
	Titles(ctx context.Context, ownerID string) ([]string, error)
	Recent(ctx context.Context, ownerID string, n int) ([]Task, error)
}
