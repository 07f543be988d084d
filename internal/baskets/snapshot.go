package baskets

import "github.com/angelmondragon/basket-activity/pkg/db/models"

// The helpers below never modify their input; each returns a new basket value
// that the repository can compare-and-swap against the stored version.

func cloneBasket(b *models.Basket) *models.Basket {
	out := *b
	out.Items = append([]models.LineItem(nil), b.Items...)
	out.RemovedItems = append([]models.RemovedLineItem(nil), b.RemovedItems...)
	return &out
}

// appendItem adds productID at the end of the items, keeping duplicates.
func appendItem(b *models.Basket, productID uint) *models.Basket {
	out := cloneBasket(b)
	out.Items = append(out.Items, models.LineItem{ProductID: productID})
	return out
}

// removeProduct drops every item for productID and records one history entry,
// whether or not the product was present.
func removeProduct(b *models.Basket, productID uint, name string) *models.Basket {
	out := cloneBasket(b)
	kept := make([]models.LineItem, 0, len(out.Items))
	for _, item := range out.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	out.Items = kept
	out.RemovedItems = append(out.RemovedItems, models.RemovedLineItem{ProductID: productID, Name: name})
	return out
}

func newBasket(id Identity) *models.Basket {
	b := &models.Basket{}
	if id.UserID != nil {
		uid := *id.UserID
		b.UserID = &uid
	}
	if id.SessionID != nil {
		sid := *id.SessionID
		b.SessionID = &sid
	}
	return b
}
