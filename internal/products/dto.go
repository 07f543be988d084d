package products

import "github.com/angelmondragon/basket-activity/pkg/db/models"

// ProductDTO is the catalogue listing shape. Price is rendered with two decimals.
type ProductDTO struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price.StringFixed(2),
	}
}

func FromModels(list []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}
