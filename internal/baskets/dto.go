package baskets

import "github.com/angelmondragon/basket-activity/pkg/db/models"

// BasketState is the current content of a basket.
type BasketState struct {
	Items []models.LineItem `json:"items"`
}

// RemovedState is the removal history of a basket.
type RemovedState struct {
	RemovedItems []models.RemovedLineItem `json:"removed_items"`
}

func stateFromModel(b *models.Basket) *BasketState {
	items := []models.LineItem{}
	if b != nil {
		items = append(items, b.Items...)
	}
	return &BasketState{Items: items}
}

func removedFromModel(b *models.Basket) *RemovedState {
	removed := []models.RemovedLineItem{}
	if b != nil {
		removed = append(removed, b.RemovedItems...)
	}
	return &RemovedState{RemovedItems: removed}
}
