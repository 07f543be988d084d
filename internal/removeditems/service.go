package removeditems

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
)

const (
	reportName = "removed_items"

	defaultBatchSize  = 100
	defaultWindowDays = 7
)

type basketScanner interface {
	EachBatch(ctx context.Context, window *Window, batchSize int, fn func([]models.Basket) error) error
}

type reportRecorder interface {
	ObserveReport(report string, duration time.Duration, rows int)
}

// Service builds the removed-items report.
type Service interface {
	// List returns removals for baskets updated inside [from, to]. Nil bounds
	// default to the start of the day a week ago and the end of today.
	List(ctx context.Context, from, to *time.Time) ([]Record, error)
	// ListAll returns removals across every basket.
	ListAll(ctx context.Context) ([]Record, error)
	// Stream resolves the window like List and hands records to fn one batch at a time.
	Stream(ctx context.Context, from, to *time.Time, fn func([]Record) error) (int, error)
}

type service struct {
	repo       basketScanner
	metrics    reportRecorder
	logg       *logger.Logger
	batchSize  int
	windowDays int
	now        func() time.Time
}

// NewService builds a report service. A nil recorder disables metrics.
func NewService(repo basketScanner, cfg config.ReportConfig, recorder *metrics.BasketMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("basket scanner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	svc := &service{
		repo:       repo,
		metrics:    recorder,
		logg:       logg,
		batchSize:  cfg.BatchSize,
		windowDays: cfg.DefaultWindowDays,
		now:        time.Now,
	}
	if svc.batchSize <= 0 {
		svc.batchSize = defaultBatchSize
	}
	if svc.windowDays <= 0 {
		svc.windowDays = defaultWindowDays
	}
	return svc, nil
}

func (s *service) List(ctx context.Context, from, to *time.Time) ([]Record, error) {
	out := []Record{}
	_, err := s.Stream(ctx, from, to, func(batch []Record) error {
		out = append(out, batch...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) ListAll(ctx context.Context) ([]Record, error) {
	out := []Record{}
	if _, err := s.scan(ctx, nil, func(batch []Record) error {
		out = append(out, batch...)
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Stream(ctx context.Context, from, to *time.Time, fn func([]Record) error) (int, error) {
	window, err := s.resolveWindow(from, to)
	if err != nil {
		return 0, err
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"from": window.From.Format(time.RFC3339),
		"to":   window.To.Format(time.RFC3339),
	})
	return s.scan(ctx, &window, fn)
}

func (s *service) scan(ctx context.Context, window *Window, fn func([]Record) error) (int, error) {
	started := s.now()
	rows := 0
	var sinkErr error

	err := s.repo.EachBatch(ctx, window, s.batchSize, func(baskets []models.Basket) error {
		records := Flatten(baskets)
		if len(records) == 0 {
			return nil
		}
		if err := fn(records); err != nil {
			sinkErr = err
			return err
		}
		rows += len(records)
		return nil
	})
	if err != nil {
		if sinkErr != nil && errors.Is(err, sinkErr) {
			return rows, sinkErr
		}
		return rows, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan removed items")
	}

	if s.metrics != nil {
		s.metrics.ObserveReport(reportName, s.now().Sub(started), rows)
	}
	s.logg.Info(s.logg.WithField(ctx, "rows", rows), "report.removed_items.generated")
	return rows, nil
}

func (s *service) resolveWindow(from, to *time.Time) (Window, error) {
	now := s.now()
	window := Window{
		From: StartOfDay(now.AddDate(0, 0, -s.windowDays)),
		To:   EndOfDay(now),
	}
	if from != nil {
		window.From = *from
	}
	if to != nil {
		window.To = *to
	}
	if window.From.After(window.To) {
		return Window{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid date range").
			WithDetails(map[string]string{"from": "must not be after to"})
	}
	return window, nil
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
