package removeditems

import "github.com/angelmondragon/basket-activity/pkg/db/models"

// Record is one removal flattened out of a basket's history. UserID is nil for
// session-owned baskets.
type Record struct {
	UserID    *uint   `json:"user_id"`
	SessionID *string `json:"session_id,omitempty"`
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
}

// Flatten expands each basket's removal history in basket order then array order.
func Flatten(baskets []models.Basket) []Record {
	out := []Record{}
	for i := range baskets {
		b := &baskets[i]
		for _, removed := range b.RemovedItems {
			out = append(out, Record{
				UserID:    b.UserID,
				SessionID: b.SessionID,
				ProductID: removed.ProductID,
				Name:      removed.Name,
			})
		}
	}
	return out
}
