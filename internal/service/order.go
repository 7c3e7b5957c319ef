package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

var orderTransitions = map[string][]string{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusDelivered:  nil,
	models.OrderStatusCancelled:  nil,
}

var paymentTransitions = map[string][]string{
	models.PaymentStatusUnpaid: {models.PaymentStatusPaid},
	models.PaymentStatusPaid:   nil,
}

func canMove(table map[string][]string, from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

type OrderService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Now    func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func newOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("PST-%d-%s", at.UnixMilli(), suffix)
}

// CreateOrder prices every line from the catalog, never from the request, and
// stores the order with frozen copies of name and price. Stock is not touched.
func (s *OrderService) CreateOrder(ctx context.Context, caller *Caller, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create_order")

	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if err := transport.Validate(req); err != nil {
		return nil, newError(ErrValidation, "%s", err.Error())
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	seen := make(map[uuid.UUID]bool, len(req.Items))
	lineIDs := make([]uuid.UUID, len(req.Items))
	for i, item := range req.Items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, newError(ErrValidation, "productId must be a valid id")
		}
		lineIDs[i] = id
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	products, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		l.Error("create_order_error", "status", 500, "reason", "cannot load products", "error", err)
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	total := 0.0
	for i, item := range req.Items {
		p, ok := byID[lineIDs[i]]
		if !ok {
			l.Warn("create_order_failed", "status", 400, "reason", "unknown product", "product_id", lineIDs[i])
			return nil, newError(ErrInvalidReference, "Invalid product %s", lineIDs[i])
		}
		price := p.EffectivePrice()
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     price,
			Quantity:  item.Quantity,
		})
		total += price * float64(item.Quantity)
	}

	now := s.now()
	order := &models.Order{
		OrderNumber:     newOrderNumber(now),
		Items:           items,
		TotalAmount:     total,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentStatus:   models.PaymentStatusUnpaid,
		OrderStatus:     models.OrderStatusPending,
		PaymentMethod:   models.PaymentMethodCOD,
		Notes:           strings.TrimSpace(req.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if caller != nil && caller.UserID != uuid.Nil {
		uid := caller.UserID
		order.UserID = &uid
	}

	created, err := s.Repo.CreateOrder(ctx, order)
	if err != nil {
		l.Error("create_order_error", "status", 500, "reason", "cannot save order", "error", err)
		return nil, err
	}

	s.emit(ctx, "order_created", created)
	l.Info("create_order_success", "order_id", created.ID, "order_number", created.OrderNumber)
	return created, nil
}

func (s *OrderService) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.Repo.ListOrdersByUser(ctx, userID)
}

func (s *OrderService) ListAllOrders(ctx context.Context, q transport.OrderQuery) ([]models.Order, error) {
	q.Status = strings.TrimSpace(q.Status)
	if q.Status != "" {
		if _, ok := orderTransitions[q.Status]; !ok {
			return nil, newError(ErrValidation, "unknown order status %q", q.Status)
		}
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return nil, newError(ErrValidation, "from must not be after to")
	}
	q.Query = strings.TrimSpace(q.Query)
	return s.Repo.ListOrders(ctx, q)
}

// GetOrder hides orders the caller may not see behind the same not found
// error as a missing order.
func (s *OrderService) GetOrder(ctx context.Context, caller *Caller, id uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "Order not found")
		}
		return nil, err
	}
	if caller.IsAdmin() {
		return order, nil
	}
	if caller == nil || !order.OwnedBy(caller.UserID) {
		return nil, newError(ErrNotFound, "Order not found")
	}
	return order, nil
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, req transport.UpdateOrderStatusRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.update_status")

	if req.OrderStatus == nil && req.PaymentStatus == nil {
		return nil, newError(ErrValidation, "orderStatus or paymentStatus is required")
	}
	if err := transport.Validate(req); err != nil {
		return nil, newError(ErrValidation, "%s", err.Error())
	}

	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "Order not found")
		}
		return nil, err
	}

	fromOrder, fromPayment := order.OrderStatus, order.PaymentStatus
	if req.OrderStatus != nil {
		if !canMove(orderTransitions, fromOrder, *req.OrderStatus) {
			return nil, newError(ErrConflict, "cannot change order status from %s to %s", fromOrder, *req.OrderStatus)
		}
		order.OrderStatus = *req.OrderStatus
	}
	if req.PaymentStatus != nil {
		if !canMove(paymentTransitions, fromPayment, *req.PaymentStatus) {
			return nil, newError(ErrConflict, "cannot change payment status from %s to %s", fromPayment, *req.PaymentStatus)
		}
		order.PaymentStatus = *req.PaymentStatus
	}

	if order.OrderStatus == fromOrder && order.PaymentStatus == fromPayment {
		return order, nil
	}

	if err := s.Repo.UpdateOrderStatus(ctx, order, fromOrder, fromPayment); err != nil {
		if errors.Is(err, repo.ErrStale) {
			return nil, newError(ErrConflict, "order was modified concurrently, retry")
		}
		l.Error("update_status_error", "status", 500, "reason", "cannot save order", "error", err)
		return nil, err
	}

	s.emit(ctx, "order_status_updated", order)
	l.Info("update_status_success", "order_id", order.ID, "order_status", order.OrderStatus, "payment_status", order.PaymentStatus)
	return order, nil
}

func (s *OrderService) emit(ctx context.Context, typ string, o *models.Order) {
	evt := events.OrderEvent{
		Type:          typ,
		OrderID:       o.ID.String(),
		OrderNumber:   o.OrderNumber,
		TotalAmount:   o.TotalAmount,
		OrderStatus:   o.OrderStatus,
		PaymentStatus: o.PaymentStatus,
		At:            time.Now().UTC(),
	}
	if o.UserID != nil {
		evt.UserID = o.UserID.String()
	}
	events.Emit(ctx, s.Events, events.TopicOrders, o.ID.String(), evt)
}
