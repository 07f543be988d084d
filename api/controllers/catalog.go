package controllers

import (
	"net/http"

	"github.com/angelmondragon/basket-activity/api/responses"
	"github.com/angelmondragon/basket-activity/internal/products"
	"github.com/angelmondragon/basket-activity/internal/users"
	pkgerrors "github.com/angelmondragon/basket-activity/pkg/errors"
	"github.com/angelmondragon/basket-activity/pkg/logger"
)

// UsersList returns every user as {id, name}.
func UsersList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ProductsList returns the full catalogue.
func ProductsList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
