package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/wdvjq5v655-netizen/gym/internal/domain"
	"github.com/wdvjq5v655-netizen/gym/internal/ports"
)

// CreateCheckoutSession reserves stock for the cart, prices it, and
// opens a hosted checkout session. The reservation is taken before the
// gateway call and rolled back if the gateway fails, so an unpaid
// session never strands inventory without a matching hold.
func (s *Service) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutResponse, error) {
	if len(req.Items) == 0 {
		return CheckoutResponse{}, fmt.Errorf("%w: items are required", domain.ErrInvalidInput)
	}
	email, err := normalizeEmail(req.Shipping.Email)
	if err != nil {
		return CheckoutResponse{}, err
	}

	var subtotal float64
	lines := make([]domain.ReservationLine, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return CheckoutResponse{}, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
		}
		subtotal += item.Price * float64(item.Quantity)
		lines = append(lines, item.ReservationLine())
	}
	subtotal = roundCents(subtotal)

	var discount float64
	var discountCode, discountDesc string
	code := req.DiscountCode
	if code == "" {
		code = req.CreditsCode
	}
	if code != "" {
		quote, err := s.ValidatePromo(ctx, ValidatePromoRequest{Code: code, Subtotal: subtotal})
		if err != nil {
			return CheckoutResponse{}, err
		}
		discount = quote.Discount
		discountCode = quote.Code
		discountDesc = quote.Description
	}

	shipping := s.cfg.FlatShippingRate
	if subtotal-discount >= s.cfg.FreeShippingMin {
		shipping = 0
	}
	total := roundCents(subtotal - discount + shipping)
	if total < 0 {
		total = 0
	}

	if _, err := s.Reserve(ctx, ReserveRequest{Items: lines}); err != nil {
		return CheckoutResponse{}, err
	}

	session, err := s.gateway.CreateSession(ctx, ports.CheckoutSessionParams{
		Items:      req.Items,
		Subtotal:   subtotal,
		Discount:   discount,
		Shipping:   shipping,
		Total:      total,
		Email:      email,
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
		Metadata:   map[string]string{"discount_code": discountCode},
	})
	if err != nil {
		if _, rerr := s.Release(ctx, ReserveRequest{Items: lines}); rerr != nil {
			slog.Default().ErrorContext(ctx, "failed to release holds after gateway error",
				"layer", "application",
				"operation", "create_checkout",
				"error", rerr,
			)
		}
		return CheckoutResponse{}, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	now := s.nowFn()
	pendingOrder := domain.PendingOrder{
		SessionID:           session.ID,
		Items:               req.Items,
		Shipping:            req.Shipping,
		Subtotal:            subtotal,
		Discount:            discount,
		DiscountCode:        discountCode,
		DiscountDescription: discountDesc,
		ShippingCost:        shipping,
		Total:               total,
		CreatedAt:           now,
	}
	if err := s.pending.Insert(ctx, pendingOrder); err != nil {
		return CheckoutResponse{}, err
	}
	if err := s.payments.Insert(ctx, domain.PaymentTransaction{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Amount:    total,
		Currency:  "usd",
		Status:    "open",
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		slog.Default().WarnContext(ctx, "failed to record payment transaction",
			"layer", "application",
			"operation", "create_checkout",
			"session_id", session.ID,
			"error", err,
		)
	}

	if cartErr := s.TouchCart(ctx, CartActivityRequest{Email: email, Items: req.Items, Subtotal: subtotal}); cartErr != nil {
		slog.Default().WarnContext(ctx, "failed to track checkout cart",
			"layer", "application",
			"operation", "create_checkout",
			"error", cartErr,
		)
	}

	return CheckoutResponse{
		SessionID:   session.ID,
		CheckoutURL: session.URL,
		Subtotal:    subtotal,
		Discount:    discount,
		Shipping:    shipping,
		Total:       total,
	}, nil
}

// CheckoutStatus polls the gateway for a session and finalizes the
// order once payment settles. Finalization is idempotent: a session
// that already produced an order returns that order unchanged.
func (s *Service) CheckoutStatus(ctx context.Context, sessionID string) (CheckoutStatusResponse, error) {
	if sessionID == "" {
		return CheckoutStatusResponse{}, fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}

	if existing, err := s.orders.GetByPaymentSession(ctx, sessionID); err == nil {
		return CheckoutStatusResponse{Status: "complete", OrderNumber: existing.OrderNumber, OrderID: existing.ID}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return CheckoutStatusResponse{}, err
	}

	session, err := s.gateway.GetSession(ctx, sessionID)
	if err != nil {
		return CheckoutStatusResponse{}, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	if session.PaymentStatus != "paid" {
		return CheckoutStatusResponse{Status: session.Status}, nil
	}

	order, err := s.finalizeCheckout(ctx, sessionID)
	if err != nil {
		return CheckoutStatusResponse{}, err
	}
	return CheckoutStatusResponse{Status: "complete", OrderNumber: order.OrderNumber, OrderID: order.ID}, nil
}

// HandlePaymentWebhook processes asynchronous gateway notifications.
// Signature verification happens in the transport layer; this method
// is safe to replay. The session is re-fetched and finalization only
// happens on payment_status "paid": checkout.session.completed fires
// with payment_status "unpaid" for delayed payment methods, and those
// sessions must not commit stock until the payment settles.
func (s *Service) HandlePaymentWebhook(ctx context.Context, eventType, sessionID string) error {
	switch eventType {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		if _, err := s.orders.GetByPaymentSession(ctx, sessionID); err == nil {
			return nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		session, err := s.gateway.GetSession(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
		}
		if session.PaymentStatus != "paid" {
			return nil
		}
		_, err = s.finalizeCheckout(ctx, sessionID)
		return err
	case "checkout.session.expired":
		return s.cancelPendingCheckout(ctx, sessionID)
	default:
		return nil
	}
}

// finalizeCheckout turns a paid session into a confirmed order. The
// order insert, stock commit, pending-order delete and outbox enqueue
// run in one transaction keyed by a unique payment session constraint,
// so concurrent poll and webhook finalizers produce exactly one order.
func (s *Service) finalizeCheckout(ctx context.Context, sessionID string) (domain.Order, error) {
	pendingOrder, err := s.pending.GetBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if existing, gerr := s.orders.GetByPaymentSession(ctx, sessionID); gerr == nil {
				return existing, nil
			}
		}
		return domain.Order{}, err
	}

	now := s.nowFn()
	order := domain.Order{
		ID:                  uuid.NewString(),
		OrderNumber:         s.newOrderNumber(),
		Items:               pendingOrder.Items,
		Shipping:            pendingOrder.Shipping,
		Subtotal:            pendingOrder.Subtotal,
		Discount:            pendingOrder.Discount,
		DiscountDescription: pendingOrder.DiscountDescription,
		ShippingCost:        pendingOrder.ShippingCost,
		Total:               pendingOrder.Total,
		Status:              domain.StatusConfirmed,
		PaymentSessionID:    sessionID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	payload, _ := json.Marshal(map[string]any{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"email":        order.ShippingEmail(),
		"total":        order.Total,
	})
	events := []ports.OutboxEvent{{
		EventID:      uuid.New(),
		EventType:    eventTypeOrderConfirmed,
		PartitionKey: order.ID,
		Payload:      payload,
		OccurredAt:   now,
	}}

	if err := s.orders.FinalizeCheckoutTx(ctx, order, sessionID, events); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			if existing, gerr := s.orders.GetByPaymentSession(ctx, sessionID); gerr == nil {
				return existing, nil
			}
		}
		return domain.Order{}, err
	}

	if err := s.payments.UpdateStatus(ctx, sessionID, "complete", now); err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.Default().WarnContext(ctx, "failed to update payment transaction",
			"layer", "application",
			"operation", "finalize_checkout",
			"session_id", sessionID,
			"error", err,
		)
	}

	s.consumeCheckoutPromo(ctx, pendingOrder.DiscountCode)
	s.markWaitlistPurchased(ctx, order)

	if err := s.carts.MarkRecovered(ctx, order.ShippingEmail(), now); err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.Default().WarnContext(ctx, "failed to mark cart recovered",
			"layer", "application",
			"operation", "finalize_checkout",
			"error", err,
		)
	}

	return order, nil
}

// consumeCheckoutPromo burns one use of the code attached to a paid
// checkout. A concurrently exhausted code is honored anyway: the
// customer already paid the quoted price.
func (s *Service) consumeCheckoutPromo(ctx context.Context, code string) {
	if code == "" {
		return
	}
	ok, err := s.promos.IncrementUses(ctx, code)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.Default().WarnContext(ctx, "failed to increment promo uses",
			"layer", "application",
			"operation", "finalize_checkout",
			"code", code,
			"error", err,
		)
		return
	}
	if err == nil && !ok {
		slog.Default().WarnContext(ctx, "promo exhausted during checkout",
			"layer", "application",
			"operation", "finalize_checkout",
			"code", code,
		)
	}
}

func (s *Service) markWaitlistPurchased(ctx context.Context, order domain.Order) {
	type productVariant struct {
		productID int
		variant   string
	}
	seen := make(map[productVariant]bool)
	for _, item := range order.Items {
		key := productVariant{item.ProductID, item.Color}
		if seen[key] {
			continue
		}
		seen[key] = true
		entry, err := s.waitlist.GetByEmailProduct(ctx, order.ShippingEmail(), item.ProductID, item.Color)
		if errors.Is(err, domain.ErrNotFound) {
			// No variant-exact entry; fall back to any entry for
			// the product, covering joins that omitted the variant.
			entry, err = s.waitlist.GetByEmailProduct(ctx, order.ShippingEmail(), item.ProductID, "")
		}
		if err != nil {
			continue
		}
		if err := s.waitlist.MarkPurchased(ctx, entry.ID, s.nowFn()); err != nil {
			slog.Default().WarnContext(ctx, "failed to mark waitlist purchase",
				"layer", "application",
				"operation", "finalize_checkout",
				"entry_id", entry.ID,
				"error", err,
			)
		}
	}
}

// cancelPendingCheckout releases holds for a session the gateway
// expired. Missing pending state means the session already finalized
// or was cancelled before.
func (s *Service) cancelPendingCheckout(ctx context.Context, sessionID string) error {
	pendingOrder, err := s.pending.GetBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	lines := make([]domain.ReservationLine, 0, len(pendingOrder.Items))
	for _, item := range pendingOrder.Items {
		lines = append(lines, item.ReservationLine())
	}
	if _, err := s.Release(ctx, ReserveRequest{Items: lines}); err != nil {
		return err
	}
	if err := s.pending.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err := s.payments.UpdateStatus(ctx, sessionID, "expired", s.nowFn()); err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.Default().WarnContext(ctx, "failed to update payment transaction",
			"layer", "application",
			"operation", "cancel_checkout",
			"session_id", sessionID,
			"error", err,
		)
	}
	return nil
}

// SweepStaleCheckouts releases holds for pending sessions the gateway
// never completed. Run by the worker on an interval.
func (s *Service) SweepStaleCheckouts(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	cutoff := s.nowFn().Add(-olderThan)
	stale, err := s.pending.ListStale(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}
	released := 0
	for _, p := range stale {
		session, err := s.gateway.GetSession(ctx, p.SessionID)
		if err == nil && session.PaymentStatus == "paid" {
			if _, ferr := s.finalizeCheckout(ctx, p.SessionID); ferr != nil {
				slog.Default().ErrorContext(ctx, "late finalize failed",
					"layer", "application",
					"operation", "sweep_checkouts",
					"session_id", p.SessionID,
					"error", ferr,
				)
			}
			continue
		}
		if err := s.cancelPendingCheckout(ctx, p.SessionID); err != nil {
			slog.Default().ErrorContext(ctx, "stale checkout cancel failed",
				"layer", "application",
				"operation", "sweep_checkouts",
				"session_id", p.SessionID,
				"error", err,
			)
			continue
		}
		released++
	}
	return released, nil
}
