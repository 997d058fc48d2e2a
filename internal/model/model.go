package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EachUnitCode is the implicit unit of measure. Stock messages leave it out
// because "3 each" reads worse than "3".
const EachUnitCode = "EA"

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Category struct {
	ID          int64
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Unit struct {
	ID          int64
	Code        string
	Description string
}

type Product struct {
	ID              int64
	Name            string
	CategoryID      int64
	UnitID          int64
	Description     string
	RegularPrice    decimal.Decimal
	DiscountedPrice *decimal.Decimal
	QtyInStock      int
	Image           string
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined display fields, populated by detail queries.
	UnitCode string
	UnitDesc string
}

// EffectivePrice is the discounted price when one is set, otherwise the
// regular price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountedPrice != nil {
		return *p.DiscountedPrice
	}
	return p.RegularPrice
}

// CartLine is one product entry in a user's cart. UnitPrice and LineAmount
// are snapshots taken when the line was last written; PriceUpdated marks
// lines whose snapshot was repriced by a later product edit.
type CartLine struct {
	ID           int64
	UserID       int64
	ProductID    int64
	UnitID       int64
	Quantity     int
	UnitPrice    decimal.Decimal
	LineAmount   decimal.Decimal
	PriceUpdated bool

	ProductName string
	UnitCode    string
	UnitDesc    string
}

type Order struct {
	ID             int64
	UserID         int64
	DateOrdered    time.Time
	DatePaid       *time.Time
	DateShipped    *time.Time
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	ShippingAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	Notes          string
	Lines          []OrderLine
}

// OrderLine is the immutable copy of a cart line made at checkout.
type OrderLine struct {
	ID         int64
	OrderID    int64
	ProductID  int64
	UnitID     int64
	Quantity   int
	UnitPrice  decimal.Decimal
	LineAmount decimal.Decimal

	ProductName string
	UnitCode    string
}

// EmailJob is the message published to the mail queue.
type EmailJob struct {
	ID      string `json:"id"`
	To      string `json:"to"`
	ReplyTo string `json:"reply_to,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
