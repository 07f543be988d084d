package baskets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	basketsvc "github.com/angelmondragon/basket-activity/internal/baskets"
	"github.com/angelmondragon/basket-activity/pkg/db/models"
	pkgerrors "github.com/angelmondragon/basket-activity/pkg/errors"
	"github.com/angelmondragon/basket-activity/pkg/types"
)

type stubBasketService struct {
	state     *basketsvc.BasketState
	removed   *basketsvc.RemovedState
	err       error
	lastID    basketsvc.Identity
	lastProd  uint
	addCalled bool
}

func (s *stubBasketService) Get(_ context.Context, id basketsvc.Identity) (*basketsvc.BasketState, error) {
	s.lastID = id
	return s.state, s.err
}

func (s *stubBasketService) Add(_ context.Context, id basketsvc.Identity, productID uint) (*basketsvc.BasketState, error) {
	s.addCalled = true
	s.lastID = id
	s.lastProd = productID
	return s.state, s.err
}

func (s *stubBasketService) Remove(_ context.Context, id basketsvc.Identity, productID uint) (*basketsvc.RemovedState, error) {
	s.lastID = id
	s.lastProd = productID
	return s.removed, s.err
}

func (s *stubBasketService) RemovedItems(_ context.Context, id basketsvc.Identity) (*basketsvc.RemovedState, error) {
	s.lastID = id
	return s.removed, s.err
}

type knownIDs map[uint]bool

func (k knownIDs) Exists(_ context.Context, id uint) (bool, error) {
	return k[id], nil
}

func newRouter(svc basketsvc.Service) http.Handler {
	r := chi.NewRouter()
	userDir := knownIDs{1: true, 2: true}
	catalogue := knownIDs{1: true, 2: true, 3: true}
	r.Get("/v1/baskets", BasketFetch(svc, userDir, nil))
	r.Post("/v1/baskets", BasketAdd(svc, userDir, catalogue, nil))
	r.Get("/v1/baskets/removed-items", BasketRemovedItems(svc, userDir, nil))
	r.Patch("/v1/baskets/{user_id}/products/{product_id}", BasketRemoveForUser(svc, nil))
	r.Patch("/v1/sessions/{session_id}/basket/products/{product_id}", BasketRemoveForSession(svc, nil))
	return r
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error
}

func TestBasketFetchForUser(t *testing.T) {
	svc := &stubBasketService{state: &basketsvc.BasketState{Items: []models.LineItem{{ProductID: 2}}}}
	rec := serve(newRouter(svc), http.MethodGet, "/v1/baskets?user_id=1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastID.UserID == nil || *svc.lastID.UserID != 1 {
		t.Fatalf("expected user identity, got %+v", svc.lastID)
	}
	if !strings.Contains(rec.Body.String(), `{"data":{"items":[{"product_id":2}]}}`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestBasketFetchUnknownUserIsValidationError(t *testing.T) {
	svc := &stubBasketService{}
	rec := serve(newRouter(svc), http.MethodGet, "/v1/baskets?user_id=99", "")

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
	apiErr := decodeError(t, rec)
	if apiErr.Details.(map[string]any)["user_id"] != "does not exist" {
		t.Fatalf("unexpected details %v", apiErr.Details)
	}
}

func TestBasketFetchRequiresIdentity(t *testing.T) {
	rec := serve(newRouter(&stubBasketService{}), http.MethodGet, "/v1/baskets", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}

	rec = serve(newRouter(&stubBasketService{}), http.MethodGet, "/v1/baskets?user_id=1&session_id=abc", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for both identities got %d", rec.Code)
	}

	rec = serve(newRouter(&stubBasketService{}), http.MethodGet, "/v1/baskets?user_id=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric user got %d", rec.Code)
	}
}

func TestBasketAddForSession(t *testing.T) {
	svc := &stubBasketService{state: &basketsvc.BasketState{Items: []models.LineItem{{ProductID: 3}}}}
	rec := serve(newRouter(svc), http.MethodPost, "/v1/baskets", `{"session_id":" sess-1 ","product_id":3}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastID.SessionID == nil || *svc.lastID.SessionID != "sess-1" {
		t.Fatalf("expected trimmed session identity, got %+v", svc.lastID)
	}
	if svc.lastProd != 3 {
		t.Fatalf("expected product 3, got %d", svc.lastProd)
	}
}

func TestBasketAddValidation(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{name: "unknown product", body: `{"user_id":1,"product_id":42}`, status: http.StatusUnprocessableEntity, field: "product_id"},
		{name: "unknown user", body: `{"user_id":77,"product_id":1}`, status: http.StatusUnprocessableEntity, field: "user_id"},
		{name: "missing product", body: `{"user_id":1}`, status: http.StatusUnprocessableEntity, field: "product_id"},
		{name: "no identity", body: `{"product_id":1}`, status: http.StatusUnprocessableEntity, field: "user_id"},
		{name: "both identities", body: `{"user_id":1,"session_id":"s","product_id":1}`, status: http.StatusUnprocessableEntity, field: "user_id"},
		{name: "malformed json", body: `{"user_id":`, status: http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubBasketService{}
			rec := serve(newRouter(svc), http.MethodPost, "/v1/baskets", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if svc.addCalled {
				t.Fatal("service must not be called for invalid input")
			}
			if tc.field == "" {
				return
			}
			apiErr := decodeError(t, rec)
			details, ok := apiErr.Details.(map[string]any)
			if !ok {
				t.Fatalf("expected field details, got %v", apiErr.Details)
			}
			if _, ok := details[tc.field]; !ok {
				t.Fatalf("expected details for %s, got %v", tc.field, details)
			}
		})
	}
}

func TestBasketRemoveForUser(t *testing.T) {
	svc := &stubBasketService{removed: &basketsvc.RemovedState{RemovedItems: []models.RemovedLineItem{{ProductID: 2, Name: "Roland Wave Sampler"}}}}
	rec := serve(newRouter(svc), http.MethodPatch, "/v1/baskets/1/products/2", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastID.UserID == nil || *svc.lastID.UserID != 1 || svc.lastProd != 2 {
		t.Fatalf("unexpected call identity=%+v product=%d", svc.lastID, svc.lastProd)
	}
	if !strings.Contains(rec.Body.String(), `"removed_items":[{"product_id":2,"name":"Roland Wave Sampler"}]`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestBasketRemoveMissingBasket(t *testing.T) {
	svc := &stubBasketService{err: pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")}
	rec := serve(newRouter(svc), http.MethodPatch, "/v1/sessions/sess-9/basket/products/1", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	if svc.lastID.SessionID == nil || *svc.lastID.SessionID != "sess-9" {
		t.Fatalf("expected session identity, got %+v", svc.lastID)
	}
}

func TestBasketRemoveBadProductParam(t *testing.T) {
	rec := serve(newRouter(&stubBasketService{}), http.MethodPatch, "/v1/baskets/1/products/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestBasketRemovedItems(t *testing.T) {
	svc := &stubBasketService{removed: &basketsvc.RemovedState{RemovedItems: []models.RemovedLineItem{}}}
	rec := serve(newRouter(svc), http.MethodGet, "/v1/baskets/removed-items?session_id=abc", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `{"data":{"removed_items":[]}}`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
