package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wdvjq5v655-netizen/gym/internal/domain"
	"github.com/wdvjq5v655-netizen/gym/internal/ports"
)

// QuoteShippingRates fetches carrier rates for a cart and address.
func (s *Service) QuoteShippingRates(ctx context.Context, req ShippingRatesRequest) ([]ports.ShippingRate, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: items are required", domain.ErrInvalidInput)
	}
	rates, err := s.carrier.QuoteRates(ctx, req.Address, req.Items)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	return rates, nil
}

// PurchaseShippingLabel buys a label for an order and stores the
// tracking details. A carrier failure surfaces as an upstream error
// and leaves the order record untouched.
func (s *Service) PurchaseShippingLabel(ctx context.Context, req PurchaseLabelRequest) (domain.Order, error) {
	if req.OrderID == "" || req.RateID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id and rate id are required", domain.ErrInvalidInput)
	}

	order, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.Status.Terminal() {
		return domain.Order{}, fmt.Errorf("%w: order is %s", domain.ErrInvalidStatus, order.Status)
	}

	label, err := s.carrier.PurchaseLabel(ctx, req.RateID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	order.TrackingNumber = label.TrackingNumber
	order.Carrier = label.Carrier
	order.LabelURL = label.LabelURL
	if label.EstimatedDelivery != "" {
		order.EstimatedDelivery = label.EstimatedDelivery
	}
	order.UpdatedAt = s.nowFn()
	if err := s.orders.Update(ctx, order); err != nil {
		return domain.Order{}, err
	}

	slog.Default().InfoContext(ctx, "shipping label purchased",
		"layer", "application",
		"operation", "purchase_label",
		"order_id", order.ID,
		"carrier", label.Carrier,
		"tracking_number", label.TrackingNumber,
	)
	return order, nil
}

// TrackShipment proxies a live carrier status lookup for an order.
func (s *Service) TrackShipment(ctx context.Context, orderID string) (string, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.TrackingNumber == "" {
		return "", fmt.Errorf("%w: order has no tracking number", domain.ErrNotFound)
	}
	status, err := s.carrier.TrackShipment(ctx, order.Carrier, order.TrackingNumber)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	return status, nil
}
