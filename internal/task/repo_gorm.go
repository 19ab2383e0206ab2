package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// taskRecord is the storage shape of a Task.
type taskRecord struct {
	ID          string    `gorm:"primaryKey;size:36"`
	OwnerID     string    `gorm:"size:36;not null;index:idx_tasks_owner_created,priority:1"`
	Title       string    `gorm:"size:200;not null"`
	Description string    `gorm:"type:text"`
	Priority    string    `gorm:"size:10;not null"`
	Status      string    `gorm:"size:20;not null;index"`
	DueDate     *string   `gorm:"size:10"`
	CreatedAt   time.Time `gorm:"index:idx_tasks_owner_created,priority:2"`
	UpdatedAt   time.Time
}

func (taskRecord) TableName() string { return "tasks" }

func (rec taskRecord) toTask() Task {
	return Task{
		ID:          rec.ID,
		OwnerID:     rec.OwnerID,
		Title:       rec.Title,
		Description: rec.Description,
		Priority:    Priority(rec.Priority),
		Status:      Status(rec.Status),
		DueDate:     rec.DueDate,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

// GormRepo is the durable Repo implementation. Ordering and ownership
// semantics are identical to MemoryRepo's; the filter predicates compile to
// SQL instead of running over a snapshot.
type GormRepo struct {
	db *gorm.DB
}

func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

// Migrate creates or updates the tasks table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		return fmt.Errorf("migrate tasks: %w", err)
	}
	return nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

func (r *GormRepo) owned(ctx context.Context, ownerID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&taskRecord{}).Where("owner_id = ?", ownerID)
}

func applyFilter(q *gorm.DB, f Filter) *gorm.DB {
	if f.Status != nil {
		q = q.Where("status = ?", string(*f.Status))
	}
	if f.Priority != nil {
		q = q.Where("priority = ?", string(*f.Priority))
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	return q
}

const defaultOrder = "created_at DESC, id DESC"

func (r *GormRepo) Create(ctx context.Context, ownerID string, v Validated) (Task, error) {
	now := time.Now()
	rec := taskRecord{
		ID:          newID(),
		OwnerID:     ownerID,
		Title:       v.Title,
		Description: v.Description,
		Priority:    string(v.Priority),
		Status:      string(v.Status),
		DueDate:     v.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return Task{}, storageErr("create task", err)
	}
	return rec.toTask(), nil
}

func (r *GormRepo) Get(ctx context.Context, ownerID, id string) (Task, error) {
	var rec taskRecord
	err := r.owned(ctx, ownerID).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, storageErr("get task", err)
	}
	return rec.toTask(), nil
}

func (r *GormRepo) Update(ctx context.Context, ownerID, id string, v Validated) (Task, error) {
	res := r.owned(ctx, ownerID).Where("id = ?", id).Updates(map[string]any{
		"title":       v.Title,
		"description": v.Description,
		"priority":    string(v.Priority),
		"status":      string(v.Status),
		"due_date":    v.DueDate,
		"updated_at":  time.Now(),
	})
	if res.Error != nil {
		return Task{}, storageErr("update task", res.Error)
	}
	if res.RowsAffected == 0 {
		return Task{}, ErrNotFound
	}
	return r.Get(ctx, ownerID, id)
}

func (r *GormRepo) Delete(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&taskRecord{})
	if res.Error != nil {
		return storageErr("delete task", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) List(ctx context.Context, ownerID string, f Filter, req PageRequest) (Page, error) {
	var total int64
	if err := applyFilter(r.owned(ctx, ownerID), f).Count(&total).Error; err != nil {
		return Page{}, storageErr("count tasks", err)
	}

	number := clampPage(req.Page, pageCount(int(total)))

	var recs []taskRecord
	err := applyFilter(r.owned(ctx, ownerID), f).
		Order(defaultOrder).
		Offset((number - 1) * PageSize).
		Limit(PageSize).
		Find(&recs).Error
	if err != nil {
		return Page{}, storageErr("list tasks", err)
	}

	items := make([]Task, len(recs))
	for i, rec := range recs {
		items[i] = rec.toTask()
	}
	return pageMeta(items, int(total), number), nil
}

func (r *GormRepo) Count(ctx context.Context, ownerID string, f Filter) (int, error) {
	var total int64
	if err := applyFilter(r.owned(ctx, ownerID), f).Count(&total).Error; err != nil {
		return 0, storageErr("count tasks", err)
	}
	return int(total), nil
}

func (r *GormRepo) Titles(ctx context.Context, ownerID string) ([]string, error) {
	var titles []string
	if err := r.owned(ctx, ownerID).Pluck("title", &titles).Error; err != nil {
		return nil, storageErr("list titles", err)
	}
	return titles, nil
}

func (r *GormRepo) Recent(ctx context.Context, ownerID string, n int) ([]Task, error) {
	var recs []taskRecord
	err := r.owned(ctx, ownerID).Order(defaultOrder).Limit(n).Find(&recs).Error
	if err != nil {
		return nil, storageErr("recent tasks", err)
	}
	out := make([]Task, len(recs))
	for i, rec := range recs {
		out[i] = rec.toTask()
	}
	return out, nil
}
