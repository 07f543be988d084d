package users

import (
	"context"
	"errors"

	"github.com/angelmondragon/basket-activity/pkg/db/models"
	pkgerrors "github.com/angelmondragon/basket-activity/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context) ([]models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

// Service exposes the read-only user directory.
type Service interface {
	List(ctx context.Context) ([]UserDTO, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

type service struct {
	repo userRepository
}

// NewService builds the user directory service.
func NewService(repo userRepository) (Service, error) {
	if repo == nil {
		return nil, errors.New("user repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]UserDTO, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return FromModels(list), nil
}

func (s *service) Exists(ctx context.Context, id uint) (bool, error) {
	ok, err := s.repo.Exists(ctx, id)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	return ok, nil
}
