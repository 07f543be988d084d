package baskets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/basket-activity/pkg/config"
	"github.com/angelmondragon/basket-activity/pkg/db/models"
	pkgerrors "github.com/angelmondragon/basket-activity/pkg/errors"
	"github.com/angelmondragon/basket-activity/pkg/logger"
	"github.com/angelmondragon/basket-activity/pkg/metrics"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"
)

const (
	opAdd    = "add"
	opRemove = "remove"

	defaultMaxAttempts = 10
	defaultBackoff     = 5 * time.Millisecond
)

type basketRepository interface {
	FindByIdentity(ctx context.Context, id Identity) (*models.Basket, error)
	Save(ctx context.Context, b *models.Basket, now time.Time) (*models.Basket, error)
}

type productLoader interface {
	Get(ctx context.Context, id uint) (*models.Product, error)
}

type mutationRecorder interface {
	IncMutation(op, outcome string)
	IncConflict(op string)
}

// Service exposes basket reads and mutations.
type Service interface {
	Get(ctx context.Context, id Identity) (*BasketState, error)
	Add(ctx context.Context, id Identity, productID uint) (*BasketState, error)
	Remove(ctx context.Context, id Identity, productID uint) (*RemovedState, error)
	RemovedItems(ctx context.Context, id Identity) (*RemovedState, error)
}

type service struct {
	repo        basketRepository
	products    productLoader
	metrics     mutationRecorder
	logg        *logger.Logger
	maxAttempts int
	backoff     time.Duration
	now         func() time.Time
}

// NewService builds a basket service. A nil recorder disables metrics.
func NewService(repo basketRepository, products productLoader, cfg config.BasketConfig, recorder *metrics.BasketMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("basket repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	svc := &service{
		repo:        repo,
		products:    products,
		metrics:     recorder,
		logg:        logg,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		now:         time.Now,
	}
	if svc.maxAttempts <= 0 {
		svc.maxAttempts = defaultMaxAttempts
	}
	if svc.backoff <= 0 {
		svc.backoff = defaultBackoff
	}
	return svc, nil
}

// Get returns the basket items; a missing basket reads as empty and is not created.
func (s *service) Get(ctx context.Context, id Identity) (*BasketState, error) {
	basket, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return stateFromModel(basket), nil
}

// RemovedItems returns the identity's own removal history.
func (s *service) RemovedItems(ctx context.Context, id Identity) (*RemovedState, error) {
	basket, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return removedFromModel(basket), nil
}

// Add appends productID to the basket, creating the basket on first use.
func (s *service) Add(ctx context.Context, id Identity, productID uint) (*BasketState, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		s.record(opAdd, metrics.OutcomeFailure)
		return nil, err
	}

	saved, err := s.mutate(ctx, opAdd, id, true, func(b *models.Basket) *models.Basket {
		return appendItem(b, productID)
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithField(ctx, "product_id", productID)
	s.logg.Info(s.withOwner(ctx, id), "basket.item_added")
	return stateFromModel(saved), nil
}

// Remove drops every item for productID and appends one history entry carrying the
// product's current name. The basket must already exist.
func (s *service) Remove(ctx context.Context, id Identity, productID uint) (*RemovedState, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		s.record(opRemove, metrics.OutcomeFailure)
		return nil, err
	}

	saved, err := s.mutate(ctx, opRemove, id, false, func(b *models.Basket) *models.Basket {
		return removeProduct(b, product.ID, product.Name)
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithField(ctx, "product_id", productID)
	s.logg.Info(s.withOwner(ctx, id), "basket.item_removed")
	return removedFromModel(saved), nil
}

// mutate runs load, apply, save and repeats the cycle when another writer won the race.
func (s *service) mutate(ctx context.Context, op string, id Identity, create bool, apply func(*models.Basket) *models.Basket) (*models.Basket, error) {
	var saved *models.Basket
	backoff := retry.WithMaxRetries(uint64(s.maxAttempts-1), retry.NewConstant(s.backoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		current, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			if !create {
				return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
			}
			current = newBasket(id)
		}

		next, err := s.repo.Save(ctx, apply(current), s.now())
		if err != nil {
			if errors.Is(err, ErrVersionConflict) {
				s.recordConflict(op)
				s.logg.Debug(s.withOwner(ctx, id), "basket.save_conflict_retry")
				return retry.RetryableError(err)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save basket")
		}
		saved = next
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			s.record(op, metrics.OutcomeConflict)
			s.logg.Warn(s.withOwner(ctx, id), "basket.save_conflict_exhausted")
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "basket was modified concurrently, try again")
		}
		s.record(op, metrics.OutcomeFailure)
		return nil, err
	}

	s.record(op, metrics.OutcomeSuccess)
	return saved, nil
}

// find loads the basket for id, returning nil without error when none exists.
func (s *service) find(ctx context.Context, id Identity) (*models.Basket, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	basket, err := s.repo.FindByIdentity(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
	}
	return basket, nil
}

func (s *service) withOwner(ctx context.Context, id Identity) context.Context {
	key, value := id.LogField()
	return s.logg.WithBasketOwner(ctx, key, value)
}

func (s *service) record(op, outcome string) {
	if s.metrics != nil {
		s.metrics.IncMutation(op, outcome)
	}
}

func (s *service) recordConflict(op string) {
	if s.metrics != nil {
		s.metrics.IncConflict(op)
	}
}
