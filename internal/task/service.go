package task

import (
	"context"
	"strings"
)

// Service runs the create/update flows: it gathers the inputs the pure
// validator needs, gates writes on the blocking failure set, and passes
// advisories through alongside successful results.
type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// WriteResult is a successful write plus any advisories attached to it.
type WriteResult struct {
	Task       Task       `json:"task"`
	Advisories []Advisory `json:"advisories,omitempty"`
}

// Create validates and persists a new task for ownerID. today is the
// caller's current date ("YYYY-MM-DD"). A non-empty FieldError set means the
// payload was rejected and nothing was written.
//
// The duplicate-title check runs against a snapshot of the owner's titles;
// two racing creates with the same title can both pass it. The storage layer
// does not enforce title uniqueness, so that race is accepted.
func (s *Service) Create(ctx context.Context, ownerID string, in Input, today string) (WriteResult, []FieldError, error) {
	titles, err := s.repo.Titles(ctx, ownerID)
	if err != nil {
		return WriteResult{}, nil, err
	}

	v, errs, advs := Validate(in, Creating, today, titles)
	if len(errs) > 0 {
		return WriteResult{}, errs, nil
	}

	t, err := s.repo.Create(ctx, ownerID, v)
	if err != nil {
		return WriteResult{}, nil, err
	}
	return WriteResult{Task: t, Advisories: advs}, nil, nil
}

// Get fetches one task, ownership-gated by the repository.
func (s *Service) Get(ctx context.Context, ownerID, id string) (Task, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// Update merges a patch over the task's current state, re-validates the
// merged payload in Updating mode, and persists it. The duplicate-title and
// past-due-date checks do not apply here (see Mode).
func (s *Service) Update(ctx context.Context, ownerID, id string, p Patch, today string) (WriteResult, []FieldError, error) {
	cur, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return WriteResult{}, nil, err
	}

	v, errs, advs := Validate(mergePatch(cur, p), Updating, today, nil)
	if len(errs) > 0 {
		return WriteResult{}, errs, nil
	}

	t, err := s.repo.Update(ctx, ownerID, id, v)
	if err != nil {
		return WriteResult{}, nil, err
	}
	return WriteResult{Task: t, Advisories: advs}, nil, nil
}

// Delete permanently removes a task. No soft delete.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// List returns one page of the owner's tasks under the given filter.
func (s *Service) List(ctx context.Context, ownerID string, f Filter, req PageRequest) (Page, error) {
	return s.repo.List(ctx, ownerID, f, req)
}

// mergePatch layers a partial update over the current task, producing the
// full candidate payload the validator evaluates.
func mergePatch(cur Task, p Patch) Input {
	in := Input{
		Title:       cur.Title,
		Description: cur.Description,
		Priority:    string(cur.Priority),
		Status:      string(cur.Status),
		DueDate:     cur.DueDate,
	}
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Priority != nil {
		in.Priority = *p.Priority
	}
	if p.Status != nil {
		in.Status = *p.Status
	}
	if p.DueDate != nil {
		if strings.TrimSpace(*p.DueDate) == "" {
			in.DueDate = nil
		} else {
			in.DueDate = p.DueDate
		}
	}
	return in
}
