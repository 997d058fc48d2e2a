package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// --- Auth ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=8,max=30"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
}

// --- Admin: users ---

// SaveUserRequest is the admin create/edit payload. An empty password on
// edit keeps the current one.
type SaveUserRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"max=100"`
	Active   bool   `json:"active"`
}

// --- Categories ---

type SaveCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=30"`
	Description string `json:"description" binding:"required,max=1000"`
	Active      bool   `json:"active"`
}

type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

// --- Units of measure ---

type SaveUnitRequest struct {
	Code        string `json:"code" binding:"required,max=10"`
	Description string `json:"description" binding:"required,max=50"`
}

type UnitResponse struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Products ---

type SaveProductRequest struct {
	Name            string           `json:"name" binding:"required,max=100"`
	CategoryID      int64            `json:"category_id" binding:"required"`
	UnitID          int64            `json:"uom_id" binding:"required"`
	Description     string           `json:"description" binding:"required,max=1000"`
	RegularPrice    decimal.Decimal  `json:"regular_price" binding:"required"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price"`
	QtyInStock      int              `json:"qty_in_stock" binding:"min=0,max=999999"`
	Image           string           `json:"image"`
	Active          bool             `json:"active"`
}

type ProductResponse struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	CategoryID      int64            `json:"category_id"`
	UnitID          int64            `json:"uom_id"`
	UnitCode        string           `json:"uom_code"`
	Description     string           `json:"description"`
	RegularPrice    decimal.Decimal  `json:"regular_price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price,omitempty"`
	EffectivePrice  decimal.Decimal  `json:"effective_price"`
	QtyInStock      int              `json:"qty_in_stock"`
	Image           string           `json:"image"`
	Active          bool             `json:"active"`
}

// CatalogResponse is the storefront landing payload: each active category
// with its active products, plus the caller's cart line count for the
// navigation bar.
type CatalogResponse struct {
	Categories    []CatalogCategory `json:"categories"`
	CartLineCount int               `json:"cart_line_count"`
}

type CatalogCategory struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Products    []ProductResponse `json:"products"`
}

// --- Cart ---

type AddCartLineRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1,max=999999"`
}

type UpdateCartLineRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=999999"`
}

type CartLineResponse struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	UnitCode     string          `json:"uom_code"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineAmount   decimal.Decimal `json:"line_amount"`
	PriceUpdated bool            `json:"price_updated"`
}

type CartResponse struct {
	Lines    []CartLineResponse `json:"lines"`
	Subtotal decimal.Decimal    `json:"subtotal"`
	Tax      decimal.Decimal    `json:"tax"`
	Shipping decimal.Decimal    `json:"shipping"`
	Total    decimal.Decimal    `json:"total"`
}

// --- Checkout ---

type CheckoutResponse struct {
	// PaymentURL is the hosted payment page the client must redirect to.
	PaymentURL string `json:"payment_url"`
}

type CheckoutResultResponse struct {
	OrderID int64  `json:"order_id,omitempty"`
	Message string `json:"message"`
}

// --- Orders ---

type OrderLineResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitCode    string          `json:"uom_code"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineAmount  decimal.Decimal `json:"line_amount"`
}

type OrderResponse struct {
	ID             int64               `json:"id"`
	UserID         int64               `json:"user_id"`
	DateOrdered    time.Time           `json:"date_ordered"`
	DatePaid       *time.Time          `json:"date_paid,omitempty"`
	DateShipped    *time.Time          `json:"date_shipped,omitempty"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	TaxAmount      decimal.Decimal     `json:"tax_amount"`
	ShippingAmount decimal.Decimal     `json:"shipping_amount"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	Notes          string              `json:"notes,omitempty"`
	Lines          []OrderLineResponse `json:"lines,omitempty"`
}

type EditOrderRequest struct {
	DatePaid    *time.Time `json:"date_paid"`
	DateShipped *time.Time `json:"date_shipped"`
	Notes       string     `json:"notes" binding:"max=1000"`
}

// --- Contact ---

type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=50"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}
