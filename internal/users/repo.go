package users

import (
	"context"
	"errors"

	"github.com/angelmondragon/basket-activity/internal/repo"
	"github.com/angelmondragon/basket-activity/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// List returns every user ordered by id.
func (r *Repository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindByID loads a user by primary key.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Exists reports whether the user id is known.
func (r *Repository) Exists(ctx context.Context, id uint) (bool, error) {
	return r.ExistsByID(ctx, &models.User{}, id)
}

// FirstOrCreate returns the user matching dto.Email, inserting it when missing.
func (r *Repository) FirstOrCreate(ctx context.Context, dto CreateUserDTO) (*models.User, bool, error) {
	var existing models.User
	err := r.DB(ctx).Where("email = ?", dto.Email).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, false, err
	}
	return user, true, nil
}
