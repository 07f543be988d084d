package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/basket-activity/internal/products"
	"github.com/angelmondragon/basket-activity/internal/users"
	"github.com/angelmondragon/basket-activity/pkg/config"
	"github.com/angelmondragon/basket-activity/pkg/db/models"
	pkgerrors "github.com/angelmondragon/basket-activity/pkg/errors"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubUsers struct {
	list []users.UserDTO
	err  error
}

func (s stubUsers) List(context.Context) ([]users.UserDTO, error) { return s.list, s.err }
func (s stubUsers) Exists(context.Context, uint) (bool, error)   { return true, s.err }

type stubProducts struct {
	list []products.ProductDTO
	err  error
}

func (s stubProducts) List(context.Context) ([]products.ProductDTO, error) { return s.list, s.err }
func (s stubProducts) Get(context.Context, uint) (*models.Product, error) { return nil, s.err }
func (s stubProducts) Exists(context.Context, uint) (bool, error)         { return true, s.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	ok := HealthReady(cfg, nil, map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{}})
	rec := httptest.NewRecorder()
	ok.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	failing := HealthReady(cfg, nil, map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{err: errors.New("refused")}})
	rec = httptest.NewRecorder()
	failing.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	rec := httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Basket-Env"); got != "test" {
		t.Fatalf("expected env header, got %q", got)
	}
}

func TestUsersList(t *testing.T) {
	handler := UsersList(stubUsers{list: []users.UserDTO{{ID: 1, Name: "Ada"}}}, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/users", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data []users.UserDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Name != "Ada" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestProductsListError(t *testing.T) {
	handler := ProductsList(stubProducts{err: pkgerrors.New(pkgerrors.CodeDependency, "db down")}, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/products", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}

func TestProductsList(t *testing.T) {
	handler := ProductsList(stubProducts{list: []products.ProductDTO{{ID: 1, Name: "Pioneer DJ Mixer", Price: "699.00"}}}, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/products", nil))

	var envelope struct {
		Data []products.ProductDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data[0].Price != "699.00" {
		t.Fatalf("unexpected price %q", envelope.Data[0].Price)
	}
}
