package task

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo keeps tasks in process memory, bucketed per owner. It backs
// tests and dev runs; GormRepo is the durable implementation.
type MemoryRepo struct {
	mu    sync.RWMutex
	tasks map[string]map[string]Task // ownerID -> taskID -> Task
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{tasks: map[string]map[string]Task{}}
}

func (r *MemoryRepo) ownedLocked(ownerID string) map[string]Task {
	owned, ok := r.tasks[ownerID]
	if !ok {
		owned = map[string]Task{}
		r.tasks[ownerID] = owned
	}
	return owned
}

func (r *MemoryRepo) Create(ctx context.Context, ownerID string, v Validated) (Task, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	t := Task{
		ID:          newID(),
		OwnerID:     ownerID,
		Title:       v.Title,
		Description: v.Description,
		Priority:    v.Priority,
		Status:      v.Status,
		DueDate:     v.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.ownedLocked(ownerID)[t.ID] = t
	return t, nil
}

func (r *MemoryRepo) Get(ctx context.Context, ownerID, id string) (Task, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[ownerID][id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepo) Update(ctx context.Context, ownerID, id string, v Validated) (Task, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[ownerID][id]
	if !ok {
		return Task{}, ErrNotFound
	}

	t.Title = v.Title
	t.Description = v.Description
	t.Priority = v.Priority
	t.Status = v.Status
	t.DueDate = v.DueDate
	t.UpdatedAt = time.Now()

	r.tasks[ownerID][id] = t
	return t, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, ownerID, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[ownerID][id]; !ok {
		return ErrNotFound
	}
	delete(r.tasks[ownerID], id)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, ownerID string, f Filter, req PageRequest) (Page, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Task, 0, len(r.tasks[ownerID]))
	for _, t := range r.tasks[ownerID] {
		if f.matches(t) {
			out = append(out, t)
		}
	}
	sortDefault(out)
	return paginate(out, req), nil
}

func (r *MemoryRepo) Count(ctx context.Context, ownerID string, f Filter) (int, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, t := range r.tasks[ownerID] {
		if f.matches(t) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) Titles(ctx context.Context, ownerID string) ([]string, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	titles := make([]string, 0, len(r.tasks[ownerID]))
	for _, t := range r.tasks[ownerID] {
		titles = append(titles, t.Title)
	}
	return titles, nil
}

func (r *MemoryRepo) Recent(ctx context.Context, ownerID string, n int) ([]Task, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Task, 0, len(r.tasks[ownerID]))
	for _, t := range r.tasks[ownerID] {
		out = append(out, t)
	}
	sortDefault(out)
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}
