package products

import (
	"github.com/angelmondragon/basket-activity/pkg/db/models"
	"github.com/shopspring/decimal"
)

// DefaultCatalogue is the demo product set loaded by the seeder.
func DefaultCatalogue() []models.Product {
	return []models.Product{
		{Name: "Pioneer DJ Mixer", Price: decimal.RequireFromString("699")},
		{Name: "Roland Wave Sampler", Price: decimal.RequireFromString("485")},
		{Name: "Reloop Headphone", Price: decimal.RequireFromString("159")},
		{Name: "Rokit Monitor", Price: decimal.RequireFromString("189.90")},
		{Name: "Fisherprice Baby Mixer", Price: decimal.RequireFromString("120")},
	}
}
