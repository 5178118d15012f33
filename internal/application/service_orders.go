package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/wdvjq5v655-netizen/gym/internal/domain"
	"github.com/wdvjq5v655-netizen/gym/internal/ports"
)

// newOrderNumber mints a human-friendly order reference.
func (s *Service) newOrderNumber() string {
	return fmt.Sprintf("GYM-%s-%s", s.nowFn().Format("20060102"), randomUpper(6))
}

// CreateOrder records an order directly, bypassing hosted checkout.
// Used by the admin console for phone and replacement orders.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (domain.Order, error) {
	if len(req.Items) == 0 {
		return domain.Order{}, fmt.Errorf("%w: items are required", domain.ErrInvalidInput)
	}
	if _, err := normalizeEmail(req.Shipping.Email); err != nil {
		return domain.Order{}, err
	}

	if req.PaymentSessionID != "" {
		if existing, err := s.orders.GetByPaymentSession(ctx, req.PaymentSessionID); err == nil {
			return existing, nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			return domain.Order{}, err
		}
	}

	now := s.nowFn()
	order := domain.Order{
		ID:                  uuid.NewString(),
		OrderNumber:         s.newOrderNumber(),
		Items:               req.Items,
		Shipping:            req.Shipping,
		Subtotal:            roundCents(req.Subtotal),
		Discount:            roundCents(req.Discount),
		DiscountDescription: req.DiscountCode,
		ShippingCost:        roundCents(req.ShippingCost),
		Total:               roundCents(req.Total),
		Status:              domain.StatusPending,
		Notes:               req.Notes,
		PaymentSessionID:    req.PaymentSessionID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.orders.Insert(ctx, order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// UpdateOrder applies admin edits and drives the status machine.
// Terminal orders reject further status changes, shipped/delivered
// timestamps are set once, and delivery triggers the one-time credit
// award.
func (s *Service) UpdateOrder(ctx context.Context, orderID string, req UpdateOrderRequest) (domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	now := s.nowFn()
	newStatus := domain.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	statusChanged := newStatus != "" && newStatus != order.Status

	if statusChanged {
		if !domain.ValidStatus(newStatus) {
			return domain.Order{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidStatus, req.Status)
		}
		if order.Status.Terminal() {
			return domain.Order{}, fmt.Errorf("%w: order is %s", domain.ErrInvalidStatus, order.Status)
		}
		order.Status = newStatus
		if newStatus == domain.StatusShipped && order.ShippedAt == nil {
			order.ShippedAt = &now
		}
		if newStatus == domain.StatusDelivered && order.DeliveredAt == nil {
			order.DeliveredAt = &now
		}
	}

	if req.TrackingNumber != "" {
		order.TrackingNumber = req.TrackingNumber
	}
	if req.Carrier != "" {
		order.Carrier = req.Carrier
	}
	if req.EstimatedDelivery != "" {
		order.EstimatedDelivery = req.EstimatedDelivery
	}
	if req.Notes != "" {
		order.Notes = req.Notes
	}
	order.UpdatedAt = now

	if err := s.orders.Update(ctx, order); err != nil {
		return domain.Order{}, err
	}

	if statusChanged {
		s.emitStatusEvent(ctx, order, newStatus)
	}
	if statusChanged && newStatus == domain.StatusDelivered {
		s.awardOrderCredits(ctx, order)
	}

	return order, nil
}

func (s *Service) emitStatusEvent(ctx context.Context, order domain.Order, status domain.OrderStatus) {
	var eventType string
	switch status {
	case domain.StatusShipped:
		eventType = eventTypeOrderShipped
	case domain.StatusDelivered:
		eventType = eventTypeOrderDelivered
	default:
		return
	}
	payload, _ := json.Marshal(map[string]any{
		"order_id":        order.ID,
		"order_number":    order.OrderNumber,
		"email":           order.ShippingEmail(),
		"status":          string(status),
		"tracking_number": order.TrackingNumber,
		"carrier":         order.Carrier,
	})
	if err := s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventType,
		PartitionKey: order.ID,
		Payload:      payload,
		OccurredAt:   s.nowFn(),
	}); err != nil {
		slog.Default().WarnContext(ctx, "failed to enqueue order status event",
			"layer", "application",
			"operation", "update_order",
			"order_id", order.ID,
			"event_type", eventType,
			"error", err,
		)
	}
}

// awardOrderCredits posts whole-dollar credits for a delivered order,
// at most once per order. Customers without an account earn nothing.
func (s *Service) awardOrderCredits(ctx context.Context, order domain.Order) {
	credits := int(order.Total)
	if credits <= 0 {
		return
	}
	user, err := s.users.GetByEmail(ctx, order.ShippingEmail())
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Default().WarnContext(ctx, "credit award user lookup failed",
				"layer", "application",
				"operation", "award_credits",
				"order_id", order.ID,
				"error", err,
			)
		}
		return
	}

	payload, _ := json.Marshal(map[string]any{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      user.ID,
		"credits":      credits,
	})
	event := ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventTypeCreditsAwarded,
		PartitionKey: user.ID,
		Payload:      payload,
		OccurredAt:   s.nowFn(),
	}

	awarded, err := s.orders.AwardCreditsTx(ctx, order.ID, user.ID, credits, []ports.OutboxEvent{event})
	if err != nil {
		slog.Default().ErrorContext(ctx, "credit award failed",
			"layer", "application",
			"operation", "award_credits",
			"order_id", order.ID,
			"user_id", user.ID,
			"error", err,
		)
		return
	}
	if !awarded {
		slog.Default().InfoContext(ctx, "credits already awarded for order",
			"layer", "application",
			"operation", "award_credits",
			"order_id", order.ID,
		)
	}
}

// GetOrder returns one order by id.
func (s *Service) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

// ListOrders returns orders for the admin console, optionally filtered
// by status.
func (s *Service) ListOrders(ctx context.Context, status string, limit, offset int) ([]domain.Order, error) {
	if status != "" && !domain.ValidStatus(domain.OrderStatus(status)) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidStatus, status)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.orders.List(ctx, status, limit, offset)
}

var trackingLabels = []struct {
	status domain.OrderStatus
	label  string
}{
	{domain.StatusConfirmed, "Order confirmed"},
	{domain.StatusProcessing, "Preparing your order"},
	{domain.StatusShipped, "Shipped"},
	{domain.StatusDelivered, "Delivered"},
}

// TrackOrder returns the customer-facing tracking view. Email is
// optional; when supplied it must match the order's shipping email
// (case-insensitively), and a mismatch is indistinguishable from an
// unknown order number.
func (s *Service) TrackOrder(ctx context.Context, req TrackOrderRequest) (TrackOrderResponse, error) {
	number := strings.ToUpper(strings.TrimSpace(req.OrderNumber))
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if number == "" {
		return TrackOrderResponse{}, fmt.Errorf("%w: order number is required", domain.ErrInvalidInput)
	}

	order, err := s.orders.GetByNumber(ctx, number)
	if err != nil {
		return TrackOrderResponse{}, err
	}
	if email != "" && order.ShippingEmail() != email {
		return TrackOrderResponse{}, domain.ErrNotFound
	}

	resp := TrackOrderResponse{
		OrderNumber:       order.OrderNumber,
		Status:            string(order.Status),
		Items:             order.Items,
		Total:             order.Total,
		TrackingNumber:    order.TrackingNumber,
		Carrier:           order.Carrier,
		EstimatedDelivery: order.EstimatedDelivery,
		CreatedAt:         order.CreatedAt,
	}

	if order.Status == domain.StatusCancelled {
		resp.Timeline = []TrackingStep{{Status: string(domain.StatusCancelled), Label: "Cancelled", Completed: true, Current: true}}
		return resp, nil
	}

	reached := statusRank(order.Status)
	for i, step := range trackingLabels {
		ts := TrackingStep{
			Status:    string(step.status),
			Label:     step.label,
			Completed: i <= reached,
			Current:   i == reached,
		}
		if step.status == domain.StatusShipped {
			ts.At = order.ShippedAt
		}
		if step.status == domain.StatusDelivered {
			ts.At = order.DeliveredAt
		}
		resp.Timeline = append(resp.Timeline, ts)
	}
	return resp, nil
}

func statusRank(status domain.OrderStatus) int {
	for i, step := range trackingLabels {
		if step.status == status {
			return i
		}
	}
	return -1
}

// OrderStatsReport aggregates order counts and revenue.
func (s *Service) OrderStatsReport(ctx context.Context) (OrderStats, error) {
	byStatus, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return OrderStats{}, err
	}
	count, revenue, err := s.orders.RevenueTotals(ctx)
	if err != nil {
		return OrderStats{}, err
	}
	return OrderStats{TotalOrders: count, TotalRevenue: roundCents(revenue), ByStatus: byStatus}, nil
}
