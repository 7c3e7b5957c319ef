// Package cart is the client-side shopping cart. It lives entirely in local
// storage until checkout.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/storage"
)

const (
	StorageKey = "cart"

	TaxRate               = 0.18
	ShippingFee           = 500.0
	FreeShippingThreshold = 10000.0
)

// Item is a cart line. Name, price and image are copied from the product when
// it is added and never refreshed.
type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

type CheckoutDetails struct {
	ShippingAddress models.Address
	BillingAddress  models.Address
	Notes           string
}

type OrderPlacer interface {
	CreateOrder(ctx context.Context, req transport.CreateOrderRequest) (*models.Order, error)
}

type Cart struct {
	store storage.Store

	mu    sync.Mutex
	items []Item
}

// New loads the persisted cart. Missing or unreadable data yields an empty cart.
func New(store storage.Store) *Cart {
	c := &Cart{store: store, items: []Item{}}

	raw, err := store.Get(StorageKey)
	if err != nil {
		return c
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return c
	}
	for _, it := range items {
		if it.ProductID != "" && it.Quantity > 0 {
			c.items = append(c.items, it)
		}
	}
	return c
}

func (c *Cart) persistLocked() error {
	data, err := json.Marshal(c.items)
	if err != nil {
		return fmt.Errorf("cart: encode: %w", err)
	}
	if err := c.store.Set(StorageKey, data); err != nil {
		return fmt.Errorf("cart: persist: %w", err)
	}
	return nil
}

// Add merges quantities for a product already in the cart.
func (c *Cart) Add(p *models.Product, qty int) error {
	if p == nil || p.ID == uuid.Nil {
		return fmt.Errorf("cart: product is required")
	}
	if qty < 1 {
		return fmt.Errorf("cart: quantity must be >= 1")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := p.ID.String()
	for i := range c.items {
		if c.items[i].ProductID == id {
			c.items[i].Quantity += qty
			return c.persistLocked()
		}
	}

	item := Item{ProductID: id, Name: p.Name, Price: p.EffectivePrice(), Quantity: qty}
	if len(p.Images) > 0 {
		item.Image = p.Images[0]
	}
	c.items = append(c.items, item)
	return c.persistLocked()
}

func (c *Cart) Remove(productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.items[:0]
	for _, it := range c.items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	c.items = out
	return c.persistLocked()
}

// UpdateQuantity sets the quantity of a line; zero or less removes it.
func (c *Cart) UpdateQuantity(productID string, qty int) error {
	if qty <= 0 {
		return c.Remove(productID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity = qty
			return c.persistLocked()
		}
	}
	return nil
}

func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = []Item{}
	return c.persistLocked()
}

func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Item{}, c.items...)
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Totals() Totals {
	c.mu.Lock()
	defer c.mu.Unlock()

	var t Totals
	for _, it := range c.items {
		t.Subtotal += it.Price * float64(it.Quantity)
	}
	t.Tax = t.Subtotal * TaxRate
	if t.Subtotal <= FreeShippingThreshold {
		t.Shipping = ShippingFee
	}
	t.Total = t.Subtotal + t.Tax + t.Shipping
	return t
}

// Checkout places an order for the cart contents. The server prices the
// order; the cart is cleared only when the order was accepted.
func (c *Cart) Checkout(ctx context.Context, api OrderPlacer, d CheckoutDetails) (*models.Order, error) {
	items := c.Items()
	if len(items) == 0 {
		return nil, fmt.Errorf("cart: cart is empty")
	}

	req := transport.CreateOrderRequest{
		Items:           make([]transport.OrderItemRequest, 0, len(items)),
		ShippingAddress: d.ShippingAddress,
		BillingAddress:  d.BillingAddress,
		Notes:           d.Notes,
		PaymentMethod:   models.PaymentMethodCOD,
	}
	for _, it := range items {
		req.Items = append(req.Items, transport.OrderItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := api.CreateOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := c.Clear(); err != nil {
		return order, err
	}
	return order, nil
}
