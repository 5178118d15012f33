package domain

import (
	"strings"
	"time"
)

// OrderStatus enumerates the order lifecycle. Cancelled is reachable from any
// non-terminal status; delivered and cancelled are terminal.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// ValidStatus reports whether s is one of the enumerated lifecycle states.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status change is allowed.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type OrderItem struct {
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	Color       string  `json:"color"`
	Size        string  `json:"size"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
}

// ReservationLine converts an order line into its stock-ledger shape.
func (i OrderItem) ReservationLine() ReservationLine {
	return ReservationLine{
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		Color:       i.Color,
		Size:        i.Size,
		Quantity:    i.Quantity,
	}
}

type ShippingAddress struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
}

// Order is owned exclusively by the order lifecycle. Once delivered it is
// immutable except for notes and tracking metadata.
type Order struct {
	ID                  string
	OrderNumber         string
	Items               []OrderItem
	Shipping            ShippingAddress
	Subtotal            float64
	Discount            float64
	DiscountDescription string
	ShippingCost        float64
	Total               float64
	Status              OrderStatus
	TrackingNumber      string
	Carrier             string
	EstimatedDelivery   string
	LabelURL            string
	Notes               string
	// CreditsAwarded is the one-time delivery award; non-zero means the award
	// side effect already ran and must not run again.
	CreditsAwarded   int
	PaymentSessionID string
	ShippedAt        *time.Time
	DeliveredAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ShippingEmail is the lower-cased email used for credit award and tracking
// verification matches.
func (o Order) ShippingEmail() string {
	return strings.ToLower(strings.TrimSpace(o.Shipping.Email))
}

// ReservationLines maps all order items to stock-ledger lines.
func (o Order) ReservationLines() []ReservationLine {
	lines := make([]ReservationLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, item.ReservationLine())
	}
	return lines
}

// PendingOrder stages a full checkout payload under the payment session id
// until the payment provider confirms. Deleted once the real order exists.
type PendingOrder struct {
	SessionID           string
	Items               []OrderItem
	Shipping            ShippingAddress
	Subtotal            float64
	Discount            float64
	DiscountCode        string
	DiscountDescription string
	ShippingCost        float64
	Total               float64
	CreatedAt           time.Time
}

// PaymentTransaction records the provider-side lifecycle of one checkout
// session for audit and webhook reconciliation.
type PaymentTransaction struct {
	ID            string
	SessionID     string
	OrderID       string
	Amount        float64
	Currency      string
	Status        string
	PaymentStatus string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
