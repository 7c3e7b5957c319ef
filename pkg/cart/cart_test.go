package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/storage"
)

type mockPlacer struct {
	mock.Mock
}

func (m *mockPlacer) CreateOrder(ctx context.Context, req transport.CreateOrderRequest) (*models.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func product(name string, price float64, discount *float64, images ...string) *models.Product {
	return &models.Product{ID: uuid.New(), Name: name, Price: price, DiscountPrice: discount, Images: images}
}

func ptr(v float64) *float64 { return &v }

func TestAdd_MergesLines(t *testing.T) {
	t.Parallel()

	store := storage.NewMemory()
	c := New(store)
	p := product("Drill", 1000, ptr(900), "a.jpg", "b.jpg")

	require.NoError(t, c.Add(p, 2))
	require.NoError(t, c.Add(p, 3))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 900.0, items[0].Price)
	assert.Equal(t, "a.jpg", items[0].Image)
	assert.Equal(t, 5, c.Count())

	reloaded := New(store)
	assert.Equal(t, items, reloaded.Items())
}

func TestAdd_SnapshotsPrice(t *testing.T) {
	t.Parallel()

	c := New(storage.NewMemory())
	p := product("Cutter", 100, nil)
	require.NoError(t, c.Add(p, 1))

	p.Price = 500
	require.NoError(t, c.Add(p, 1))

	assert.Equal(t, 100.0, c.Items()[0].Price)
}

func TestAdd_Rejects(t *testing.T) {
	t.Parallel()

	c := New(storage.NewMemory())
	assert.Error(t, c.Add(nil, 1))
	assert.Error(t, c.Add(product("x", 1, nil), 0))
	assert.Empty(t, c.Items())
}

func TestNew_CorruptStorage(t *testing.T) {
	t.Parallel()

	store := storage.NewMemory()
	require.NoError(t, store.Set(StorageKey, []byte("{not json")))

	c := New(store)
	assert.Empty(t, c.Items())
	assert.Zero(t, c.Count())

	require.NoError(t, c.Add(product("Drill", 10, nil), 1))
	assert.Len(t, New(store).Items(), 1)
}

func TestNew_DropsInvalidLines(t *testing.T) {
	t.Parallel()

	store := storage.NewMemory()
	raw, err := json.Marshal([]Item{{ProductID: "a", Quantity: 1}, {ProductID: "", Quantity: 2}, {ProductID: "c", Quantity: 0}})
	require.NoError(t, err)
	require.NoError(t, store.Set(StorageKey, raw))

	items := New(store).Items()
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ProductID)
}

func TestUpdateQuantityAndRemove(t *testing.T) {
	t.Parallel()

	c := New(storage.NewMemory())
	a, b := product("A", 10, nil), product("B", 20, nil)
	require.NoError(t, c.Add(a, 1))
	require.NoError(t, c.Add(b, 1))

	require.NoError(t, c.UpdateQuantity(a.ID.String(), 4))
	assert.Equal(t, 5, c.Count())

	require.NoError(t, c.UpdateQuantity(a.ID.String(), 0))
	require.Len(t, c.Items(), 1)
	assert.Equal(t, b.ID.String(), c.Items()[0].ProductID)

	require.NoError(t, c.Remove(b.ID.String()))
	assert.Empty(t, c.Items())

	require.NoError(t, c.Add(a, 1))
	require.NoError(t, c.Clear())
	assert.Empty(t, c.Items())
}

func TestTotals(t *testing.T) {
	t.Parallel()

	c := New(storage.NewMemory())
	require.NoError(t, c.Add(product("A", 1000, nil), 2))

	got := c.Totals()
	assert.Equal(t, 2000.0, got.Subtotal)
	assert.InDelta(t, 360.0, got.Tax, 1e-9)
	assert.Equal(t, ShippingFee, got.Shipping)
	assert.InDelta(t, 2860.0, got.Total, 1e-9)

	require.NoError(t, c.Add(product("B", 9000, nil), 1))
	got = c.Totals()
	assert.Equal(t, 11000.0, got.Subtotal)
	assert.Zero(t, got.Shipping)

	require.NoError(t, c.Clear())
	c2 := New(storage.NewMemory())
	require.NoError(t, c2.Add(product("C", 10000, nil), 1))
	assert.Equal(t, ShippingFee, c2.Totals().Shipping)
}

func TestCheckout_ClearsOnSuccess(t *testing.T) {
	t.Parallel()

	c := New(storage.NewMemory())
	p := product("A", 10, nil)
	require.NoError(t, c.Add(p, 3))

	api := &mockPlacer{}
	want := &models.Order{OrderNumber: "PST-1-ABCDEF"}
	api.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req transport.CreateOrderRequest) bool {
		return len(req.Items) == 1 &&
			req.Items[0].ProductID == p.ID.String() &&
			req.Items[0].Quantity == 3 &&
			req.PaymentMethod == models.PaymentMethodCOD &&
			req.ShippingAddress.City == "Pune"
	})).Return(want, nil).Once()

	order, err := c.Checkout(context.Background(), api, CheckoutDetails{ShippingAddress: models.Address{City: "Pune"}})
	require.NoError(t, err)
	assert.Equal(t, want, order)
	assert.Empty(t, c.Items())
	api.AssertExpectations(t)
}

func TestCheckout_KeepsCartOnFailure(t *testing.T) {
	t.Parallel()

	c := New(storage.NewMemory())
	require.NoError(t, c.Add(product("A", 10, nil), 1))

	api := &mockPlacer{}
	api.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, errors.New("Invalid product")).Once()

	_, err := c.Checkout(context.Background(), api, CheckoutDetails{})
	assert.Error(t, err)
	assert.Len(t, c.Items(), 1)

	_, err = New(storage.NewMemory()).Checkout(context.Background(), api, CheckoutDetails{})
	assert.Error(t, err)
	api.AssertExpectations(t)
}
