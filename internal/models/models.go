package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"                    json:"id"`
	FirstName    string    `gorm:"not null"                                json:"firstName"`
	LastName     string    `gorm:"not null"                                json:"lastName"`
	Email        string    `gorm:"uniqueIndex;not null"                    json:"email"`
	PasswordHash string    `gorm:"not null"                                json:"-"`
	Role         string    `gorm:"not null"                                json:"role"`
	Phone        string    `                                               json:"phone,omitempty"`
	Address      Address   `gorm:"embedded;embeddedPrefix:address_"        json:"address"`
	CreatedAt    time.Time `                                               json:"createdAt"`
	UpdatedAt    time.Time `                                               json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Specifications struct {
	Dimensions string   `json:"dimensions,omitempty"`
	Weight     string   `json:"weight,omitempty"`
	Material   string   `json:"material,omitempty"`
	Features   []string `json:"features,omitempty"`
}

type Product struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"      json:"id"`
	Name           string          `gorm:"not null"                  json:"name"`
	Description    string          `                                 json:"description"`
	Category       string          `gorm:"index"                     json:"category"`
	Subcategory    string          `                                 json:"subcategory,omitempty"`
	Price          float64         `gorm:"not null;index"            json:"price"`
	DiscountPrice  *float64        `                                 json:"discountPrice,omitempty"`
	Images         []string        `gorm:"serializer:json;type:text" json:"images"`
	Specifications *Specifications `gorm:"serializer:json;type:text" json:"specifications,omitempty"`
	Stock          int             `gorm:"not null"                  json:"stock"`
	SKU            string          `gorm:"uniqueIndex;not null"      json:"sku"`
	IsActive       bool            `gorm:"not null;index"            json:"isActive"`
	Tags           []string        `gorm:"serializer:json;type:text" json:"tags"`
	CreatedAt      time.Time       `gorm:"index"                     json:"createdAt"`
	UpdatedAt      time.Time       `                                 json:"updatedAt"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// EffectivePrice is the discount price when one is set and non-zero.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil && *p.DiscountPrice > 0 {
		return *p.DiscountPrice
	}
	return p.Price
}

const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"

	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"

	PaymentMethodCOD = "cod"
)

// OrderItem is a frozen copy of the product at checkout time; it has no
// foreign key to products.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"       json:"-"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null"   json:"-"`
	Position  int       `gorm:"not null"                   json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"         json:"productId"`
	Name      string    `gorm:"not null"                   json:"name"`
	Price     float64   `gorm:"not null"                   json:"price"`
	Quantity  int       `gorm:"not null"                   json:"quantity"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type Order struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey"                          json:"id"`
	OrderNumber     string      `gorm:"uniqueIndex;not null"                          json:"orderNumber"`
	UserID          *uuid.UUID  `gorm:"type:uuid;index"                               json:"userId,omitempty"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount     float64     `gorm:"not null"                                      json:"totalAmount"`
	ShippingAddress Address     `gorm:"embedded;embeddedPrefix:shipping_"             json:"shippingAddress"`
	BillingAddress  Address     `gorm:"embedded;embeddedPrefix:billing_"              json:"billingAddress"`
	PaymentStatus   string      `gorm:"not null"                                      json:"paymentStatus"`
	OrderStatus     string      `gorm:"not null;index"                                json:"orderStatus"`
	PaymentMethod   string      `gorm:"not null"                                      json:"paymentMethod"`
	Notes           string      `                                                     json:"notes,omitempty"`
	CreatedAt       time.Time   `gorm:"index"                                         json:"createdAt"`
	UpdatedAt       time.Time   `                                                     json:"updatedAt"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OwnedBy reports whether the order belongs to the given user. Guest orders
// belong to nobody.
func (o *Order) OwnedBy(userID uuid.UUID) bool {
	return o.UserID != nil && *o.UserID == userID
}

func All() []any {
	return []any{&User{}, &Product{}, &Order{}, &OrderItem{}}
}
