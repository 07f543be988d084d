package removeditems

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/angelmondragon/basket-activity/pkg/config"
	"github.com/angelmondragon/basket-activity/pkg/db/dbtest"
	"github.com/angelmondragon/basket-activity/pkg/db/models"
	pkgerrors "github.com/angelmondragon/basket-activity/pkg/errors"
	"github.com/angelmondragon/basket-activity/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local)

func uptr(v uint) *uint     { return &v }
func sptr(v string) *string { return &v }

func newTestService(t *testing.T, conn *gorm.DB, batchSize int) *service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(NewRepository(conn), config.ReportConfig{BatchSize: batchSize}, nil, logg)
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time { return fixedNow }
	return impl
}

func createBasket(t *testing.T, conn *gorm.DB, b models.Basket) models.Basket {
	t.Helper()
	b.CreatedAt = b.UpdatedAt
	require.NoError(t, conn.Create(&b).Error)
	return b
}

func TestListDefaultWindow(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()

	createBasket(t, conn, models.Basket{
		UserID:       uptr(1),
		RemovedItems: []models.RemovedLineItem{{ProductID: 1, Name: "Pioneer DJ Mixer"}},
		UpdatedAt:    fixedNow.AddDate(0, 0, -10),
	})
	createBasket(t, conn, models.Basket{
		UserID:       uptr(2),
		Items:        []models.LineItem{{ProductID: 4}},
		RemovedItems: []models.RemovedLineItem{{ProductID: 2, Name: "Roland Wave Sampler"}, {ProductID: 3, Name: "Reloop Headphone"}},
		UpdatedAt:    fixedNow.AddDate(0, 0, -3),
	})
	createBasket(t, conn, models.Basket{
		UserID:    uptr(3),
		Items:     []models.LineItem{{ProductID: 1}},
		UpdatedAt: fixedNow.AddDate(0, 0, -1),
	})
	createBasket(t, conn, models.Basket{
		SessionID:    sptr("sess-1"),
		RemovedItems: []models.RemovedLineItem{},
		UpdatedAt:    fixedNow.AddDate(0, 0, -1),
	})

	svc := newTestService(t, conn, 100)
	records, err := svc.List(ctx, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []Record{
		{UserID: uptr(2), ProductID: 2, Name: "Roland Wave Sampler"},
		{UserID: uptr(2), ProductID: 3, Name: "Reloop Headphone"},
	}, records)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, uint(1), all[0].ProductID)
}

func TestListExplicitWindowIsInclusive(t *testing.T) {
	conn := dbtest.Open(t)
	edge := fixedNow.AddDate(0, 0, -20)
	createBasket(t, conn, models.Basket{
		SessionID:    sptr("sess-edge"),
		RemovedItems: []models.RemovedLineItem{{ProductID: 5, Name: "Fisherprice Baby Mixer"}},
		UpdatedAt:    edge,
	})

	svc := newTestService(t, conn, 100)
	to := edge
	records, err := svc.List(context.Background(), &edge, &to)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].UserID)
	assert.Equal(t, "sess-edge", *records[0].SessionID)
}

func TestListWindowBoundsInOtherZone(t *testing.T) {
	conn := dbtest.Open(t)
	edge := fixedNow.AddDate(0, 0, -20)
	createBasket(t, conn, models.Basket{
		UserID:       uptr(1),
		RemovedItems: []models.RemovedLineItem{{ProductID: 1, Name: "Pioneer DJ Mixer"}},
		UpdatedAt:    edge,
	})
	createBasket(t, conn, models.Basket{
		UserID:       uptr(2),
		RemovedItems: []models.RemovedLineItem{{ProductID: 2, Name: "Roland Wave Sampler"}},
		UpdatedAt:    edge.Add(time.Second),
	})

	svc := newTestService(t, conn, 100)
	for _, zone := range []*time.Location{time.UTC, time.FixedZone("UTC-03:30", -(3*3600 + 1800)), time.FixedZone("UTC+09", 9*3600)} {
		t.Run(zone.String(), func(t *testing.T) {
			from := edge.In(zone)
			to := edge.In(zone)
			records, err := svc.List(context.Background(), &from, &to)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, uint(1), records[0].ProductID)

			to = edge.Add(time.Second).In(zone)
			records, err = svc.List(context.Background(), &from, &to)
			require.NoError(t, err)
			assert.Len(t, records, 2)
		})
	}
}

func TestListRejectsInvertedWindow(t *testing.T) {
	svc := newTestService(t, dbtest.Open(t), 100)
	from := fixedNow
	to := fixedNow.AddDate(0, 0, -1)

	_, err := svc.List(context.Background(), &from, &to)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestStreamWalksBatchesInIDOrder(t *testing.T) {
	conn := dbtest.Open(t)
	for i := 1; i <= 5; i++ {
		createBasket(t, conn, models.Basket{
			UserID:       uptr(uint(i)),
			RemovedItems: []models.RemovedLineItem{{ProductID: uint(i), Name: "p"}},
			UpdatedAt:    fixedNow.Add(-time.Hour),
		})
	}

	svc := newTestService(t, conn, 2)
	var batches [][]Record
	rows, err := svc.Stream(context.Background(), nil, nil, func(batch []Record) error {
		batches = append(batches, batch)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, rows)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[2], 1)
	assert.Equal(t, uint(1), batches[0][0].ProductID)
	assert.Equal(t, uint(5), batches[2][0].ProductID)
}

func TestStreamStopsOnSinkError(t *testing.T) {
	conn := dbtest.Open(t)
	for i := 1; i <= 3; i++ {
		createBasket(t, conn, models.Basket{
			UserID:       uptr(uint(i)),
			RemovedItems: []models.RemovedLineItem{{ProductID: uint(i)}},
			UpdatedAt:    fixedNow.Add(-time.Hour),
		})
	}
	svc := newTestService(t, conn, 1)
	sinkErr := errors.New("client went away")

	calls := 0
	_, err := svc.Stream(context.Background(), nil, nil, func([]Record) error {
		calls++
		return sinkErr
	})
	require.ErrorIs(t, err, sinkErr)
	assert.Equal(t, 1, calls)
}

func TestListToleratesLegacyEntriesWithoutName(t *testing.T) {
	conn := dbtest.Open(t)
	b := createBasket(t, conn, models.Basket{UserID: uptr(9), UpdatedAt: fixedNow.Add(-time.Hour)})
	require.NoError(t, conn.Exec(`UPDATE baskets SET removed_items = ? WHERE id = ?`, `[{"product_id":3}]`, b.ID).Error)

	svc := newTestService(t, conn, 100)
	records, err := svc.List(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []Record{{UserID: uptr(9), ProductID: 3, Name: ""}}, records)
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	_, err := NewService(nil, config.ReportConfig{}, nil, logg)
	require.Error(t, err)
	_, err = NewService(NewRepository(dbtest.Open(t)), config.ReportConfig{}, nil, nil)
	require.Error(t, err)
}

func TestDayBounds(t *testing.T) {
	ts := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
	assert.Equal(t, time.Date(2026, 3, 4, 23, 59, 59, 999999999, time.UTC), EndOfDay(ts))
}
