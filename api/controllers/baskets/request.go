package baskets

import (
	"net/http"

	"github.com/angelmondragon/basket-activity/api/validators"
	basketsvc "github.com/angelmondragon/basket-activity/internal/baskets"
)

const maxSessionIDLength = 255

// AddItemRequest is the body of POST /v1/baskets. Exactly one of UserID or
// SessionID names the basket.
type AddItemRequest struct {
	UserID    *uint   `json:"user_id" validate:"omitempty,gt=0"`
	SessionID *string `json:"session_id" validate:"omitempty,min=1,max=255"`
	ProductID uint    `json:"product_id" validate:"required,gt=0"`
}

func (r AddItemRequest) identity() basketsvc.Identity {
	var id basketsvc.Identity
	if r.UserID != nil {
		uid := *r.UserID
		id.UserID = &uid
	}
	if r.SessionID != nil {
		sid := validators.SanitizeString(*r.SessionID, maxSessionIDLength)
		id.SessionID = &sid
	}
	return id
}

// identityFromQuery reads ?user_id= or ?session_id=.
func identityFromQuery(r *http.Request) (basketsvc.Identity, error) {
	var id basketsvc.Identity
	userID, err := validators.ParseQueryUint(r, "user_id")
	if err != nil {
		return id, err
	}
	id.UserID = userID
	if raw := r.URL.Query().Get("session_id"); raw != "" {
		sid := validators.SanitizeString(raw, maxSessionIDLength)
		id.SessionID = &sid
	}
	if err := id.Validate(); err != nil {
		return basketsvc.Identity{}, err
	}
	return id, nil
}
