package removeditems

import (
	"context"
	"time"

	"github.com/angelmondragon/basket-activity/internal/repo"
	"github.com/angelmondragon/basket-activity/pkg/db/models"
	"gorm.io/gorm"
)

// Window bounds the basket updated_at timestamps, both ends inclusive.
type Window struct {
	From time.Time
	To   time.Time
}

// Repository scans baskets that carry removal history.
type Repository struct {
	repo.Base
}

// NewRepository constructs a removed-items repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// EachBatch walks baskets with a removal history in primary key order, batchSize
// rows per query. A nil window scans every basket.
func (r *Repository) EachBatch(ctx context.Context, window *Window, batchSize int, fn func([]models.Basket) error) error {
	q := r.DB(ctx).
		Model(&models.Basket{}).
		Select("id", "user_id", "session_id", "removed_items", "updated_at").
		Where("removed_items IS NOT NULL")
	if window != nil {
		// sqlite compares timestamps as text, so bounds must share the zone rows are written in
		q = q.Where("updated_at BETWEEN ? AND ?", window.From.In(time.Local), window.To.In(time.Local))
	}

	var batch []models.Basket
	return q.FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
		return fn(batch)
	}).Error
}
