package ports

import (
	"context"

	"github.com/wdvjq5v655-netizen/gym/internal/domain"
)

// CheckoutSessionParams captures what the payment gateway needs to open
// a hosted checkout session.
type CheckoutSessionParams struct {
	Items      []domain.OrderItem
	Subtotal   float64
	Discount   float64
	Shipping   float64
	Total      float64
	Email      string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// CheckoutSession is the gateway's view of a hosted checkout.
type CheckoutSession struct {
	ID            string
	URL           string
	Status        string
	PaymentStatus string
	PaymentID     string
	AmountTotal   float64
	Email         string
}

// PaymentGateway abstracts the hosted-checkout provider. Status is
// polled rather than trusted from the client.
type PaymentGateway interface {
	CreateSession(ctx context.Context, params CheckoutSessionParams) (CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (CheckoutSession, error)
	VerifyWebhook(payload []byte, signature string) error
}

// ShippingLabel is the carrier's purchased-label result.
type ShippingLabel struct {
	TrackingNumber    string
	Carrier           string
	LabelURL          string
	EstimatedDelivery string
}

// ShippingRate is one quoted service level.
type ShippingRate struct {
	ID       string
	Carrier  string
	Service  string
	Amount   float64
	Currency string
	Days     int
}

// ShippingCarrier abstracts the label-purchase provider. A label
// failure must never roll back the order it was requested for.
type ShippingCarrier interface {
	QuoteRates(ctx context.Context, addr domain.ShippingAddress, items []domain.OrderItem) ([]ShippingRate, error)
	PurchaseLabel(ctx context.Context, rateID string) (ShippingLabel, error)
	TrackShipment(ctx context.Context, carrier, trackingNumber string) (string, error)
}
