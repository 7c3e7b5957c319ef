package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/mocks"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type orderFixture struct {
	catalog *CatalogService
	orders  *OrderService
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	return &orderFixture{
		catalog: &CatalogService{Repo: r, Events: events.Nop{}},
		orders:  &OrderService{Repo: r, Events: events.Nop{}},
	}
}

func (f *orderFixture) product(t *testing.T, name string, price float64, discount *float64, stock int) *models.Product {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), transport.CreateProductRequest{
		Name:          name,
		SKU:           uuid.NewString(),
		Price:         price,
		DiscountPrice: discount,
		Stock:         stock,
	})
	require.NoError(t, err)
	return p
}

func customer() *Caller {
	return &Caller{UserID: uuid.New(), Role: models.RoleCustomer}
}

func orderOf(lines ...transport.OrderItemRequest) transport.CreateOrderRequest {
	return transport.CreateOrderRequest{
		Items:           lines,
		ShippingAddress: models.Address{Street: "1 Main St", City: "Pune"},
	}
}

func line(p *models.Product, qty int) transport.OrderItemRequest {
	return transport.OrderItemRequest{ProductID: p.ID.String(), Quantity: qty}
}

func TestCreateOrder_UsesDiscountPrice(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	p := f.product(t, "Drill", 1000, testutil.Ptr(900.0), 5)
	c := customer()

	order, err := f.orders.CreateOrder(ctx, c, orderOf(line(p, 2)))
	require.NoError(t, err)

	assert.Equal(t, 1800.0, order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 900.0, order.Items[0].Price)
	assert.Equal(t, "Drill", order.Items[0].Name)
	assert.Equal(t, models.OrderStatusPending, order.OrderStatus)
	assert.Equal(t, models.PaymentStatusUnpaid, order.PaymentStatus)
	assert.Equal(t, models.PaymentMethodCOD, order.PaymentMethod)
	require.NotNil(t, order.UserID)
	assert.Equal(t, c.UserID, *order.UserID)
	assert.Regexp(t, regexp.MustCompile(`^PST-\d+-[0-9A-F]{6}$`), order.OrderNumber)

	after, err := f.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, after.Stock)
}

func TestCreateOrder_IgnoresClientPrices(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	a := f.product(t, "A", 100, nil, 1)
	b := f.product(t, "B", 250, testutil.Ptr(0.0), 1)

	order, err := f.orders.CreateOrder(context.Background(), customer(), orderOf(line(a, 3), line(b, 1), line(a, 1)))
	require.NoError(t, err)

	assert.Equal(t, 650.0, order.TotalAmount)
	require.Len(t, order.Items, 3)
	assert.Equal(t, a.ID, order.Items[0].ProductID)
	assert.Equal(t, b.ID, order.Items[1].ProductID)
	assert.Equal(t, 250.0, order.Items[1].Price)
}

func TestCreateOrder_FrozenAfterProductChanges(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	p := f.product(t, "Polisher", 500, nil, 2)
	c := customer()

	order, err := f.orders.CreateOrder(ctx, c, orderOf(line(p, 1)))
	require.NoError(t, err)

	_, err = f.catalog.UpdateProduct(ctx, p.ID, transport.PatchProductRequest{
		Name:  testutil.Ptr("Polisher v2"),
		Price: testutil.Ptr(999.0),
	})
	require.NoError(t, err)

	got, err := f.orders.GetOrder(ctx, c, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Polisher", got.Items[0].Name)
	assert.Equal(t, 500.0, got.Items[0].Price)

	require.NoError(t, f.catalog.DeleteProduct(ctx, p.ID))

	got, err = f.orders.GetOrder(ctx, c, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, got.TotalAmount)
	assert.Equal(t, p.ID, got.Items[0].ProductID)
}

func TestCreateOrder_Rejects(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	p := f.product(t, "A", 100, nil, 1)

	_, err := f.orders.CreateOrder(ctx, customer(), orderOf())
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "items is required", Message(err, ""))

	_, err = f.orders.CreateOrder(ctx, customer(), orderOf(line(p, 0)))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.orders.CreateOrder(ctx, customer(), orderOf(transport.OrderItemRequest{ProductID: "nope", Quantity: 1}))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.orders.CreateOrder(ctx, customer(), orderOf(line(p, 1), transport.OrderItemRequest{ProductID: uuid.NewString(), Quantity: 1}))
	assert.ErrorIs(t, err, ErrInvalidReference)

	req := orderOf(line(p, 1))
	req.PaymentMethod = "card"
	_, err = f.orders.CreateOrder(ctx, customer(), req)
	assert.ErrorIs(t, err, ErrValidation)

	all, err := f.orders.ListAllOrders(ctx, transport.OrderQuery{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateOrder_Guest(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	p := f.product(t, "A", 100, nil, 1)

	order, err := f.orders.CreateOrder(context.Background(), nil, orderOf(line(p, 1)))
	require.NoError(t, err)
	assert.Nil(t, order.UserID)
}

func TestCreateOrder_EmitsEvent(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	p := f.product(t, "A", 100, nil, 1)

	pub := &mocks.MockPublisher{}
	pub.On("PublishEvent", mock.Anything, events.TopicOrders, mock.Anything,
		mock.MatchedBy(func(e events.OrderEvent) bool { return e.Type == "order_created" && e.TotalAmount == 200 })).
		Return(nil).Once()
	f.orders.Events = pub

	_, err := f.orders.CreateOrder(context.Background(), customer(), orderOf(line(p, 2)))
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestGetOrder_Ownership(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	p := f.product(t, "A", 100, nil, 1)
	owner := customer()

	order, err := f.orders.CreateOrder(ctx, owner, orderOf(line(p, 1)))
	require.NoError(t, err)

	_, err = f.orders.GetOrder(ctx, owner, order.ID)
	assert.NoError(t, err)

	_, err = f.orders.GetOrder(ctx, customer(), order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.orders.GetOrder(ctx, nil, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	admin := &Caller{UserID: uuid.New(), Role: models.RoleAdmin}
	_, err = f.orders.GetOrder(ctx, admin, order.ID)
	assert.NoError(t, err)

	_, err = f.orders.GetOrder(ctx, admin, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrders(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	p := f.product(t, "A", 100, nil, 1)
	alice, bob := customer(), customer()

	first, err := f.orders.CreateOrder(ctx, alice, orderOf(line(p, 1)))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := f.orders.CreateOrder(ctx, alice, orderOf(line(p, 2)))
	require.NoError(t, err)
	_, err = f.orders.CreateOrder(ctx, bob, orderOf(line(p, 3)))
	require.NoError(t, err)

	mine, err := f.orders.ListMyOrders(ctx, alice.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	all, err := f.orders.ListAllOrders(ctx, transport.OrderQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.orders.UpdateOrderStatus(ctx, first.ID, transport.UpdateOrderStatusRequest{OrderStatus: testutil.Ptr(models.OrderStatusProcessing)})
	require.NoError(t, err)

	processing, err := f.orders.ListAllOrders(ctx, transport.OrderQuery{Status: models.OrderStatusProcessing})
	require.NoError(t, err)
	require.Len(t, processing, 1)
	assert.Equal(t, first.ID, processing[0].ID)

	byNumber, err := f.orders.ListAllOrders(ctx, transport.OrderQuery{Query: second.OrderNumber})
	require.NoError(t, err)
	require.Len(t, byNumber, 1)
	assert.Equal(t, second.ID, byNumber[0].ID)

	_, err = f.orders.ListAllOrders(ctx, transport.OrderQuery{Status: "Lost"})
	assert.ErrorIs(t, err, ErrValidation)

	from, to := time.Now().Add(time.Hour), time.Now()
	_, err = f.orders.ListAllOrders(ctx, transport.OrderQuery{From: &from, To: &to})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateOrderStatus_Transitions(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	p := f.product(t, "A", 100, nil, 1)

	order, err := f.orders.CreateOrder(ctx, customer(), orderOf(line(p, 1)))
	require.NoError(t, err)

	status := func(s string) transport.UpdateOrderStatusRequest {
		return transport.UpdateOrderStatusRequest{OrderStatus: testutil.Ptr(s)}
	}

	_, err = f.orders.UpdateOrderStatus(ctx, order.ID, status(models.OrderStatusShipped))
	assert.ErrorIs(t, err, ErrConflict)

	for _, s := range []string{models.OrderStatusProcessing, models.OrderStatusShipped, models.OrderStatusDelivered} {
		got, err := f.orders.UpdateOrderStatus(ctx, order.ID, status(s))
		require.NoError(t, err)
		assert.Equal(t, s, got.OrderStatus)
	}

	_, err = f.orders.UpdateOrderStatus(ctx, order.ID, status(models.OrderStatusCancelled))
	assert.ErrorIs(t, err, ErrConflict)

	same, err := f.orders.UpdateOrderStatus(ctx, order.ID, status(models.OrderStatusDelivered))
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, same.OrderStatus)

	_, err = f.orders.UpdateOrderStatus(ctx, order.ID, status("Lost"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.orders.UpdateOrderStatus(ctx, order.ID, transport.UpdateOrderStatusRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.orders.UpdateOrderStatus(ctx, uuid.New(), status(models.OrderStatusProcessing))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateOrderStatus_Payment(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	p := f.product(t, "A", 100, nil, 1)

	order, err := f.orders.CreateOrder(ctx, customer(), orderOf(line(p, 1)))
	require.NoError(t, err)

	paid, err := f.orders.UpdateOrderStatus(ctx, order.ID, transport.UpdateOrderStatusRequest{PaymentStatus: testutil.Ptr(models.PaymentStatusPaid)})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, models.OrderStatusPending, paid.OrderStatus)

	_, err = f.orders.UpdateOrderStatus(ctx, order.ID, transport.UpdateOrderStatusRequest{PaymentStatus: testutil.Ptr(models.PaymentStatusUnpaid)})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := f.orders.GetOrder(ctx, &Caller{Role: models.RoleAdmin}, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, got.PaymentStatus)
	assert.Equal(t, 100.0, got.TotalAmount)
}

func TestCanMove(t *testing.T) {
	t.Parallel()

	assert.True(t, canMove(orderTransitions, models.OrderStatusPending, models.OrderStatusCancelled))
	assert.True(t, canMove(orderTransitions, models.OrderStatusShipped, models.OrderStatusShipped))
	assert.False(t, canMove(orderTransitions, models.OrderStatusCancelled, models.OrderStatusPending))
	assert.False(t, canMove(orderTransitions, models.OrderStatusDelivered, models.OrderStatusProcessing))
	assert.False(t, canMove(paymentTransitions, models.PaymentStatusPaid, models.PaymentStatusUnpaid))
}
