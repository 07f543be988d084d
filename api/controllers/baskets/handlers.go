package baskets

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/basket-activity/api/responses"
	"github.com/angelmondragon/basket-activity/api/validators"
	basketsvc "github.com/angelmondragon/basket-activity/internal/baskets"
	pkgerrors "github.com/angelmondragon/basket-activity/pkg/errors"
	"github.com/angelmondragon/basket-activity/pkg/logger"
)

// BasketFetch returns the items of the basket named by the query string.
func BasketFetch(svc basketsvc.Service, userDir validators.ExistenceChecker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		id, err := identityFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := requireKnownUser(r.Context(), userDir, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// BasketAdd appends a product to the basket, creating it on first use.
func BasketAdd(svc basketsvc.Service, userDir, catalogue validators.ExistenceChecker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		var payload AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id := payload.identity()
		if err := id.Validate(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := validators.RequireExisting(r.Context(), catalogue, "product_id", payload.ProductID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := requireKnownUser(r.Context(), userDir, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.Add(r.Context(), id, payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// BasketRemoveForUser handles PATCH /v1/baskets/{user_id}/products/{product_id}.
func BasketRemoveForUser(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParseUint(chi.URLParam(r, "user_id"), "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		removeItem(w, r, svc, logg, basketsvc.ForUser(userID))
	}
}

// BasketRemoveForSession handles PATCH /v1/sessions/{session_id}/basket/products/{product_id}.
func BasketRemoveForSession(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := validators.SanitizeString(chi.URLParam(r, "session_id"), maxSessionIDLength)
		removeItem(w, r, svc, logg, basketsvc.ForSession(sessionID))
	}
}

// BasketRemovedItems returns one basket's removal history.
func BasketRemovedItems(svc basketsvc.Service, userDir validators.ExistenceChecker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		id, err := identityFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := requireKnownUser(r.Context(), userDir, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.RemovedItems(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

func removeItem(w http.ResponseWriter, r *http.Request, svc basketsvc.Service, logg *logger.Logger, id basketsvc.Identity) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
		return
	}
	productID, err := validators.ParseUint(chi.URLParam(r, "product_id"), "product_id")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	state, err := svc.Remove(r.Context(), id, productID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, state)
}

func requireKnownUser(ctx context.Context, userDir validators.ExistenceChecker, id basketsvc.Identity) error {
	if !id.IsUser() || userDir == nil {
		return nil
	}
	return validators.RequireExisting(ctx, userDir, "user_id", *id.UserID)
}
