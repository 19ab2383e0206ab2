package task

import "context"

// RecentLimit is how many tasks the dashboard shows from the top of the
// default ordering.
const RecentLimit = 5

// Summary is the dashboard payload for one owner.
type Summary struct {
	TotalTasks        int    `json:"totalTasks"`
	CompletedTasks    int    `json:"completedTasks"`
	PendingTasks      int    `json:"pendingTasks"`
	InProgressTasks   int    `json:"inProgressTasks"`
	HighPriorityTasks int    `json:"highPriorityTasks"`
	RecentTasks       []Task `json:"recentTasks"`
}

// Dashboard aggregates summary counts over the owner's tasks. Each count is
// its own repository query; consistency across them is whatever the storage
// layer gives per call. Issues no writes.
func (s *Service) Dashboard(ctx context.Context, ownerID string) (Summary, error) {
	var (
		sum Summary
		err error
	)

	if sum.TotalTasks, err = s.repo.Count(ctx, ownerID, Filter{}); err != nil {
		return Summary{}, err
	}
	if sum.CompletedTasks, err = s.repo.Count(ctx, ownerID, Filter{}.WithStatus(StatusCompleted)); err != nil {
		return Summary{}, err
	}
	if sum.PendingTasks, err = s.repo.Count(ctx, ownerID, Filter{}.WithStatus(StatusPending)); err != nil {
		return Summary{}, err
	}
	if sum.InProgressTasks, err = s.repo.Count(ctx, ownerID, Filter{}.WithStatus(StatusInProgress)); err != nil {
		return Summary{}, err
	}
	if sum.HighPriorityTasks, err = s.repo.Count(ctx, ownerID, Filter{}.WithPriority(PriorityHigh)); err != nil {
		return Summary{}, err
	}
	if sum.RecentTasks, err = s.repo.Recent(ctx, ownerID, RecentLimit); err != nil {
		return Summary{}, err
	}
	return sum, nil
}
