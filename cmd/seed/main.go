package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/angelmondragon/basket-activity/internal/products"
	"github.com/angelmondragon/basket-activity/internal/users"
	"github.com/angelmondragon/basket-activity/pkg/config"
	"github.com/angelmondragon/basket-activity/pkg/db"
	"github.com/angelmondragon/basket-activity/pkg/db/models"
	"github.com/angelmondragon/basket-activity/pkg/logger"
	"github.com/angelmondragon/basket-activity/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	userCount := flag.Int("users", 10, "number of demo users to ensure")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	requireResource(ctx, logg, "migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	var createdUsers, createdProducts int
	err = dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		createdUsers, err = seedUsers(ctx, users.NewRepository(tx), DemoUsers(*userCount))
		if err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
		createdProducts, err = seedProducts(ctx, products.NewRepository(tx), products.DefaultCatalogue())
		if err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
		return nil
	})
	requireResource(ctx, logg, "seed", err)

	logg.Info(logg.WithFields(ctx, map[string]any{
		"users_created":    createdUsers,
		"products_created": createdProducts,
	}), "seed complete")
}

// DemoUsers returns n deterministic shoppers so reseeding stays idempotent.
func DemoUsers(n int) []users.CreateUserDTO {
	out := make([]users.CreateUserDTO, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, users.CreateUserDTO{
			Name:  fmt.Sprintf("Demo User %d", i),
			Email: fmt.Sprintf("user%d@example.com", i),
		})
	}
	return out
}

type userSeeder interface {
	FirstOrCreate(ctx context.Context, dto users.CreateUserDTO) (*models.User, bool, error)
}

type productSeeder interface {
	FirstOrCreateByName(ctx context.Context, p *models.Product) (*models.Product, bool, error)
}

func seedUsers(ctx context.Context, repo userSeeder, demo []users.CreateUserDTO) (int, error) {
	created := 0
	for _, dto := range demo {
		_, isNew, err := repo.FirstOrCreate(ctx, dto)
		if err != nil {
			return created, err
		}
		if isNew {
			created++
		}
	}
	return created, nil
}

func seedProducts(ctx context.Context, repo productSeeder, catalogue []models.Product) (int, error) {
	created := 0
	for i := range catalogue {
		_, isNew, err := repo.FirstOrCreateByName(ctx, &catalogue[i])
		if err != nil {
			return created, err
		}
		if isNew {
			created++
		}
	}
	return created, nil
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
