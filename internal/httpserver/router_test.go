package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var secret = []byte("router-test-secret")

type testServer struct {
	e    *echo.Echo
	repo *repo.GormRepo
}

func newTestServer(t *testing.T, guest bool) *testServer {
	t.Helper()

	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	e := echo.New()
	Register(e, &Deps{
		AuthHandler:        &AuthHTTP{Svc: &service.AuthService{Repo: r, Secret: secret, Events: events.Nop{}}},
		CatalogHandler:     &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Events: events.Nop{}}},
		OrderHandler:       &OrderHTTP{Svc: &service.OrderService{Repo: r, Events: events.Nop{}}},
		JWTSecret:          secret,
		AllowGuestCheckout: guest,
		Ready:              r.Ping,
	})
	return &testServer{e: e, repo: r}
}

func tokenFor(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	tok, _, err := tokens.NewAccessToken(secret, userID.String(), role, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func (s *testServer) product(t *testing.T, name string, price float64, created time.Time, active bool) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:      name,
		SKU:       uuid.NewString(),
		Price:     price,
		IsActive:  active,
		Images:    []string{},
		Tags:      []string{},
		CreatedAt: created,
	}
	_, err := s.repo.CreateProduct(context.Background(), p)
	require.NoError(t, err)
	return p
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, false)

	code, body := s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["time"])

	code, _ = s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestReady_Unavailable(t *testing.T) {
	t.Parallel()

	e := echo.New()
	Register(e, &Deps{
		AuthHandler:    &AuthHTTP{},
		CatalogHandler: &CatalogHTTP{},
		OrderHandler:   &OrderHTTP{},
		JWTSecret:      secret,
		Ready:          func(context.Context) error { return errors.New("down") },
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, false)

	code, body := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"firstName": "Asha", "lastName": "Rao", "email": "asha@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	user := body["user"].(map[string]any)
	assert.Equal(t, "customer", user["role"])
	assert.NotContains(t, user, "passwordHash")

	code, body = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"firstName": "Asha", "lastName": "Rao", "email": "asha@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Email already in use", body["message"])

	code, body = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "asha@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["token"])

	code, wrong := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "asha@example.com", "password": "bad-password"})
	assert.Equal(t, http.StatusUnauthorized, code)
	code2, unknown := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "ghost@example.com", "password": "bad-password"})
	assert.Equal(t, code, code2)
	assert.Equal(t, wrong, unknown)

	code, body = s.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "asha@example.com", body["user"].(map[string]any)["email"])

	code, body = s.do(t, http.MethodPut, "/api/auth/profile", token, map[string]any{"phone": "12345"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "12345", body["user"].(map[string]any)["phone"])

	code, body = s.do(t, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Logged out", body["message"])
}

func TestProfile_RequiresToken(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, false)

	code, body := s.do(t, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized", body["message"])

	code, body = s.do(t, http.MethodGet, "/api/auth/profile", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid or expired token", body["message"])
}

func TestListProducts_PriceRange(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, false)
	base := time.Now().Add(-time.Hour)

	s.product(t, "cheap", 50000, base, true)
	older := s.product(t, "older", 100000, base.Add(time.Minute), true)
	newer := s.product(t, "newer", 300000, base.Add(2*time.Minute), true)
	s.product(t, "hidden", 200000, base.Add(3*time.Minute), false)
	s.product(t, "pricey", 400000, base.Add(4*time.Minute), true)

	code, body := s.do(t, http.MethodGet, "/api/products?minPrice=100000&maxPrice=300000", "", nil)
	require.Equal(t, http.StatusOK, code)

	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID.String(), items[0].(map[string]any)["id"])
	assert.Equal(t, older.ID.String(), items[1].(map[string]any)["id"])
	assert.EqualValues(t, 2, body["total"])
	assert.EqualValues(t, 1, body["page"])
	assert.EqualValues(t, 1, body["pages"])

	code, _ = s.do(t, http.MethodGet, "/api/products?minPrice=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodGet, "/api/products?minPrice=5&maxPrice=1", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListProducts_IncludeInactiveAdminOnly(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, false)
	s.product(t, "on", 1, time.Now(), true)
	s.product(t, "off", 1, time.Now(), false)

	_, body := s.do(t, http.MethodGet, "/api/products?includeInactive=true", tokenFor(t, uuid.New(), models.RoleCustomer), nil)
	assert.EqualValues(t, 1, body["total"])

	_, body = s.do(t, http.MethodGet, "/api/products?includeInactive=true", "", nil)
	assert.EqualValues(t, 1, body["total"])

	_, body = s.do(t, http.MethodGet, "/api/products?includeInactive=true", tokenFor(t, uuid.New(), models.RoleAdmin), nil)
	assert.EqualValues(t, 2, body["total"])
}

func TestProductAdmin(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, false)
	admin := tokenFor(t, uuid.New(), models.RoleAdmin)
	customer := tokenFor(t, uuid.New(), models.RoleCustomer)

	code, body := s.do(t, http.MethodPost, "/api/products", admin, map[string]any{"name": "Cutter", "sku": "CUT-9", "price": 1000, "stock": 2})
	require.Equal(t, http.StatusCreated, code)
	created := body["product"].(map[string]any)
	id := created["id"].(string)
	assert.Equal(t, true, created["isActive"])

	code, body = s.do(t, http.MethodPut, "/api/products/"+id, customer, map[string]any{"price": 1})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Forbidden", body["message"])

	_, body = s.do(t, http.MethodGet, "/api/products/"+id, "", nil)
	assert.EqualValues(t, 1000, body["product"].(map[string]any)["price"])

	code, _ = s.do(t, http.MethodPut, "/api/products/"+id, "", map[string]any{"price": 1})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = s.do(t, http.MethodPut, "/api/products/"+id, admin, map[string]any{"price": 900})
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 900, body["product"].(map[string]any)["price"])

	code, _ = s.do(t, http.MethodPost, "/api/products", admin, map[string]any{"name": "Dup", "sku": "CUT-9", "price": 1})
	assert.Equal(t, http.StatusConflict, code)

	code, body = s.do(t, http.MethodDelete, "/api/products/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	code, body = s.do(t, http.MethodGet, "/api/products/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Product not found", body["message"])

	code, _ = s.do(t, http.MethodGet, "/api/products/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestOrders(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, false)
	p := s.product(t, "Drill", 1000, time.Now(), true)
	p.DiscountPrice = testutil.Ptr(900.0)
	require.NoError(t, s.repo.DB.Save(p).Error)

	owner := tokenFor(t, uuid.New(), models.RoleCustomer)
	stranger := tokenFor(t, uuid.New(), models.RoleCustomer)
	admin := tokenFor(t, uuid.New(), models.RoleAdmin)

	orderBody := map[string]any{
		"items":           []map[string]any{{"productId": p.ID.String(), "quantity": 2}},
		"shippingAddress": map[string]any{"street": "1 Main St", "city": "Pune"},
	}

	code, _ := s.do(t, http.MethodPost, "/api/orders", "", orderBody)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := s.do(t, http.MethodPost, "/api/orders", owner, orderBody)
	require.Equal(t, http.StatusCreated, code)
	order := body["order"].(map[string]any)
	id := order["id"].(string)
	assert.EqualValues(t, 1800, order["totalAmount"])
	assert.Equal(t, "Pending", order["orderStatus"])

	code, body = s.do(t, http.MethodPost, "/api/orders", owner, map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "items is required", body["message"])

	code, _ = s.do(t, http.MethodPost, "/api/orders", owner, map[string]any{
		"items": []map[string]any{{"productId": uuid.NewString(), "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, code)

	_, body = s.do(t, http.MethodGet, "/api/orders", owner, nil)
	assert.Len(t, body["orders"].([]any), 1)
	_, body = s.do(t, http.MethodGet, "/api/orders", stranger, nil)
	assert.Empty(t, body["orders"].([]any))

	code, _ = s.do(t, http.MethodGet, "/api/orders/"+id, owner, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodGet, "/api/orders/"+id, stranger, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(t, http.MethodGet, "/api/orders/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodGet, "/api/orders/admin/all", owner, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, body = s.do(t, http.MethodGet, "/api/orders/admin/all?status=Pending", admin, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["orders"].([]any), 1)
	code, _ = s.do(t, http.MethodGet, "/api/orders/admin/all?from=yesterday", admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPut, "/api/orders/"+id, owner, map[string]any{"orderStatus": "Processing"})
	assert.Equal(t, http.StatusForbidden, code)
	code, body = s.do(t, http.MethodPut, "/api/orders/"+id, admin, map[string]any{"orderStatus": "Processing", "paymentStatus": "paid"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Processing", body["order"].(map[string]any)["orderStatus"])
	assert.Equal(t, "paid", body["order"].(map[string]any)["paymentStatus"])
	code, _ = s.do(t, http.MethodPut, "/api/orders/"+id, admin, map[string]any{"orderStatus": "Pending"})
	assert.Equal(t, http.StatusConflict, code)
}

func TestOrders_GuestCheckout(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, true)
	p := s.product(t, "Drill", 1000, time.Now(), true)

	code, body := s.do(t, http.MethodPost, "/api/orders", "", map[string]any{
		"items": []map[string]any{{"productId": p.ID.String(), "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, code)
	assert.NotContains(t, body["order"].(map[string]any), "userId")

	code, _ = s.do(t, http.MethodPost, "/api/orders", "garbage", map[string]any{
		"items": []map[string]any{{"productId": p.ID.String(), "quantity": 1}},
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}
