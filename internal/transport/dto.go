package transport

import (
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
)

type RegisterRequest struct {
	FirstName string          `json:"firstName" validate:"required"`
	LastName  string          `json:"lastName"  validate:"required"`
	Email     string          `json:"email"     validate:"required,email"`
	Password  string          `json:"password"  validate:"required,min=6"`
	Phone     string          `json:"phone"`
	Address   *models.Address `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// ProfilePatch lists the only fields a user may change on their own record.
type ProfilePatch struct {
	FirstName *string         `json:"firstName" validate:"omitnil,min=1"`
	LastName  *string         `json:"lastName"  validate:"omitnil,min=1"`
	Phone     *string         `json:"phone"`
	Address   *models.Address `json:"address"`
	Password  *string         `json:"password"  validate:"omitnil,min=6"`
}

type CreateProductRequest struct {
	Name           string                 `json:"name"           validate:"required"`
	Description    string                 `json:"description"`
	Category       string                 `json:"category"`
	Subcategory    string                 `json:"subcategory"`
	Price          float64                `json:"price"          validate:"gte=0"`
	DiscountPrice  *float64               `json:"discountPrice"  validate:"omitnil,gte=0"`
	Images         []string               `json:"images"`
	Specifications *models.Specifications `json:"specifications"`
	Stock          int                    `json:"stock"          validate:"gte=0"`
	SKU            string                 `json:"sku"            validate:"required"`
	IsActive       *bool                  `json:"isActive"`
	Tags           []string               `json:"tags"`
}

type PatchProductRequest struct {
	Name           *string                `json:"name"           validate:"omitnil,min=1"`
	Description    *string                `json:"description"`
	Category       *string                `json:"category"`
	Subcategory    *string                `json:"subcategory"`
	Price          *float64               `json:"price"          validate:"omitnil,gte=0"`
	DiscountPrice  *float64               `json:"discountPrice"  validate:"omitnil,gte=0"`
	Images         *[]string              `json:"images"`
	Specifications *models.Specifications `json:"specifications"`
	Stock          *int                   `json:"stock"          validate:"omitnil,gte=0"`
	SKU            *string                `json:"sku"            validate:"omitnil,min=1"`
	IsActive       *bool                  `json:"isActive"`
	Tags           *[]string              `json:"tags"`
}

type ProductQuery struct {
	Query           string
	Category        string
	MinPrice        *float64
	MaxPrice        *float64
	Page            int
	Limit           int
	IncludeInactive bool
}

type ProductPage struct {
	Items []models.Product `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Pages int              `json:"pages"`
}

type OrderItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity"  validate:"gte=1"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items"           validate:"required,min=1,dive"`
	ShippingAddress models.Address     `json:"shippingAddress"`
	BillingAddress  models.Address     `json:"billingAddress"`
	Notes           string             `json:"notes"`
	PaymentMethod   string             `json:"paymentMethod"   validate:"omitempty,oneof=cod"`
}

type UpdateOrderStatusRequest struct {
	OrderStatus   *string `json:"orderStatus"   validate:"omitnil,oneof=Pending Processing Shipped Delivered Cancelled"`
	PaymentStatus *string `json:"paymentStatus" validate:"omitnil,oneof=unpaid paid"`
}

type OrderQuery struct {
	Status string
	Query  string
	From   *time.Time
	To     *time.Time
}
