package baskets

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/basket-activity/internal/repo"
	"github.com/angelmondragon/basket-activity/pkg/db"
	"github.com/angelmondragon/basket-activity/pkg/db/models"
	"gorm.io/gorm"
)

// ErrVersionConflict is returned when the stored basket changed since it was read.
var ErrVersionConflict = errors.New("basket version conflict")

// Repository persists baskets with optimistic concurrency on the version column.
type Repository struct {
	repo.Base
}

// NewRepository constructs a basket repository bound to the provided DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// FindByIdentity loads the basket owned by id or returns gorm.ErrRecordNotFound.
func (r *Repository) FindByIdentity(ctx context.Context, id Identity) (*models.Basket, error) {
	q := r.DB(ctx)
	switch {
	case id.UserID != nil:
		q = q.Where("user_id = ?", *id.UserID)
	case id.SessionID != nil:
		q = q.Where("session_id = ?", *id.SessionID)
	default:
		return nil, gorm.ErrRecordNotFound
	}

	var basket models.Basket
	if err := q.First(&basket).Error; err != nil {
		return nil, err
	}
	return &basket, nil
}

// Save inserts a new basket (ID zero) or swaps in b when the stored version still
// equals b.Version. The returned copy carries the new version.
func (r *Repository) Save(ctx context.Context, b *models.Basket, now time.Time) (*models.Basket, error) {
	if b.ID == 0 {
		created := *b
		created.Version = 1
		created.CreatedAt = now
		created.UpdatedAt = now
		if err := r.DB(ctx).Create(&created).Error; err != nil {
			if db.IsUniqueViolation(err, "") {
				return nil, ErrVersionConflict
			}
			return nil, err
		}
		return &created, nil
	}

	next := *b
	next.Version = b.Version + 1
	next.UpdatedAt = now

	res := r.DB(ctx).
		Model(&models.Basket{}).
		Where("id = ? AND version = ?", b.ID, b.Version).
		Select("items", "removed_items", "version", "updated_at").
		Updates(&models.Basket{
			Items:        next.Items,
			RemovedItems: next.RemovedItems,
			Version:      next.Version,
			UpdatedAt:    next.UpdatedAt,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrVersionConflict
	}
	return &next, nil
}
