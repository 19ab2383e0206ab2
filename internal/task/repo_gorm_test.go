package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestGormRepo_CreateGetRoundTrip(t *testing.T) {
	repo := NewGormRepo(setupTestDB(t))
	ctx := context.Background()

	due := "2026-04-01"
	created := mustCreate(t, repo, "owner1", Validated{
		Title:       "Water plants",
		Description: "front porch",
		Priority:    PriorityHigh,
		Status:      StatusPending,
		DueDate:     &due,
	})
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "owner1", created.OwnerID)

	got, err := repo.Get(ctx, "owner1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Water plants", got.Title)
	assert.Equal(t, PriorityHigh, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, due, *got.DueDate)
}

func TestGormRepo_OwnershipGate(t *testing.T) {
	repo := NewGormRepo(setupTestDB(t))
	ctx := context.Background()

	created := mustCreate(t, repo, "owner1", Validated{Title: "Private task"})

	_, err := repo.Get(ctx, "owner2", created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Update(ctx, "owner2", created.ID, Validated{Title: "Hijacked", Priority: PriorityLow, Status: StatusPending})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "owner2", created.ID), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "owner1", "no-such-id"), ErrNotFound)

	got, err := repo.Get(ctx, "owner1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Private task", got.Title)
}

func TestGormRepo_UpdateAndDelete(t *testing.T) {
	repo := NewGormRepo(setupTestDB(t))
	ctx := context.Background()

	created := mustCreate(t, repo, "owner1", Validated{Title: "Draft notes"})

	updated, err := repo.Update(ctx, "owner1", created.ID, Validated{
		Title:    "Final notes",
		Priority: PriorityMedium,
		Status:   StatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, "Final notes", updated.Title)
	assert.Equal(t, StatusCompleted, updated.Status)
	assert.Nil(t, updated.DueDate)

	require.NoError(t, repo.Delete(ctx, "owner1", created.ID))
	_, err = repo.Get(ctx, "owner1", created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormRepo_ListSearchAndPaging(t *testing.T) {
	repo := NewGormRepo(setupTestDB(t))
	ctx := context.Background()

	mustCreate(t, repo, "owner1", Validated{Title: "Urgent report", Description: "", Priority: PriorityHigh, Status: StatusPending})
	mustCreate(t, repo, "owner1", Validated{Title: "Chores", Description: "nothing URGENT here", Priority: PriorityLow, Status: StatusPending})
	mustCreate(t, repo, "owner1", Validated{Title: "Urgent call", Priority: PriorityHigh, Status: StatusCompleted})
	mustCreate(t, repo, "owner2", Validated{Title: "Urgent elsewhere", Priority: PriorityHigh, Status: StatusPending})

	// Case-insensitive substring search spans title and description.
	page, err := repo.List(ctx, "owner1", ParseFilter("", "", "urgent"), PageRequest{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)

	page, err = repo.List(ctx, "owner1", ParseFilter("pending", "high", "urgent"), PageRequest{Page: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Urgent report", page.Items[0].Title)

	// Out-of-range page clamps to the last valid page.
	page, err = repo.List(ctx, "owner1", Filter{}, PageRequest{Page: 99})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Len(t, page.Items, 3)
	assert.False(t, page.HasNext)
}

func TestGormRepo_ListOrdering(t *testing.T) {
	repo := NewGormRepo(setupTestDB(t))
	ctx := context.Background()

	titles := []string{"First thing", "Second thing", "Third thing"}
	for _, title := range titles {
		mustCreate(t, repo, "owner1", Validated{Title: title})
	}

	page, err := repo.List(ctx, "owner1", Filter{}, PageRequest{Page: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "Third thing", page.Items[0].Title)
	assert.Equal(t, "First thing", page.Items[2].Title)

	recent, err := repo.Recent(ctx, "owner1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Third thing", recent[0].Title)
}

func TestGormRepo_TitlesAndCount(t *testing.T) {
	repo := NewGormRepo(setupTestDB(t))
	ctx := context.Background()

	mustCreate(t, repo, "owner1", Validated{Title: "Alpha task", Status: StatusPending})
	mustCreate(t, repo, "owner1", Validated{Title: "Beta task", Status: StatusCompleted})
	mustCreate(t, repo, "owner2", Validated{Title: "Gamma task", Status: StatusPending})

	titles, err := repo.Titles(ctx, "owner1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Alpha task", "Beta task"}, titles)

	n, err := repo.Count(ctx, "owner1", Filter{}.WithStatus(StatusCompleted))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
