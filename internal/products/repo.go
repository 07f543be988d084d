package products

import (
	"context"
	"errors"

	"github.com/angelmondragon/basket-activity/internal/repo"
	"github.com/angelmondragon/basket-activity/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads the product catalogue.
type Repository struct {
	repo.Base
}

// NewRepository constructs a product repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// List returns the full catalogue ordered by id.
func (r *Repository) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.DB(ctx).Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindByID loads a product by primary key.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Exists reports whether the product id is known.
func (r *Repository) Exists(ctx context.Context, id uint) (bool, error) {
	return r.ExistsByID(ctx, &models.Product{}, id)
}

// FirstOrCreateByName returns the product named like p, inserting p when missing.
func (r *Repository) FirstOrCreateByName(ctx context.Context, p *models.Product) (*models.Product, bool, error) {
	var existing models.Product
	err := r.DB(ctx).Where("name = ?", p.Name).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	if err := r.DB(ctx).Create(p).Error; err != nil {
		return nil, false, err
	}
	return p, true, nil
}
