package unit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/wdvjq5v655-netizen/gym/internal/application"
	"github.com/wdvjq5v655-netizen/gym/internal/domain"
)

func checkoutCart() []domain.OrderItem {
	return []domain.OrderItem{
		{ProductID: 1, ProductName: "Performance Tee", Color: "black", Size: "M", Quantity: 2, Price: 30},
	}
}

func checkoutAddress(email string) domain.ShippingAddress {
	return domain.ShippingAddress{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        email,
		AddressLine1: "1 Analytical Way",
		City:         "Austin",
		State:        "TX",
		PostalCode:   "78701",
		Country:      "US",
	}
}

func TestCheckoutReservesAndPrices(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.seedStock(1, "black", "M", 10, 0)

	res, err := f.service.CreateCheckoutSession(ctx, application.CheckoutRequest{
		Items:    checkoutCart(),
		Shipping: checkoutAddress("buyer@example.com"),
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if res.SessionID == "" || res.CheckoutURL == "" {
		t.Fatalf("expected session id and url, got %+v", res)
	}
	if res.Subtotal != 60 || res.Shipping != 5.95 || res.Total != 65.95 {
		t.Fatalf("unexpected pricing: %+v", res)
	}

	entry := f.stockEntry(1, "black", "M")
	if entry.Reserved != 2 {
		t.Fatalf("expected 2 units held, got %d", entry.Reserved)
	}
	if _, err := f.pending.GetBySession(ctx, res.SessionID); err != nil {
		t.Fatalf("expected pending order for session: %v", err)
	}
}

func TestCheckoutFreeShippingOverThreshold(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.seedStock(1, "black", "M", 10, 0)

	res, err := f.service.CreateCheckoutSession(ctx, application.CheckoutRequest{
		Items: []domain.OrderItem{
			{ProductID: 1, ProductName: "Performance Tee", Color: "black", Size: "M", Quantity: 3, Price: 30},
		},
		Shipping: checkoutAddress("buyer@example.com"),
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if res.Shipping != 0 || res.Total != 90 {
		t.Fatalf("expected free shipping over threshold, got %+v", res)
	}
}

func TestCheckoutGatewayFailureReleasesHolds(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.seedStock(1, "black", "M", 10, 0)
	f.gateway.createErr = fmt.Errorf("stripe is down")

	_, err := f.service.CreateCheckoutSession(ctx, application.CheckoutRequest{
		Items:    checkoutCart(),
		Shipping: checkoutAddress("buyer@example.com"),
	})
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	entry := f.stockEntry(1, "black", "M")
	if entry.Reserved != 0 {
		t.Fatalf("gateway failure stranded %d held units", entry.Reserved)
	}
}

func TestCheckoutStatusFinalizesPaidSession(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.seedStock(1, "black", "M", 10, 0)

	res, err := f.service.CreateCheckoutSession(ctx, application.CheckoutRequest{
		Items:    checkoutCart(),
		Shipping: checkoutAddress("buyer@example.com"),
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	status, err := f.service.CheckoutStatus(ctx, res.SessionID)
	if err != nil {
		t.Fatalf("status poll failed: %v", err)
	}
	if status.Status != "open" {
		t.Fatalf("expected open before payment, got %q", status.Status)
	}

	f.gateway.setStatus(res.SessionID, "complete", "paid")
	status, err = f.service.CheckoutStatus(ctx, res.SessionID)
	if err != nil {
		t.Fatalf("status poll after payment failed: %v", err)
	}
	if status.Status != "complete" || status.OrderNumber == "" {
		t.Fatalf("expected finalized order, got %+v", status)
	}

	order, err := f.orders.GetByPaymentSession(ctx, res.SessionID)
	if err != nil {
		t.Fatalf("expected order for session: %v", err)
	}
	if order.Status != domain.StatusConfirmed {
		t.Fatalf("expected confirmed order, got %s", order.Status)
	}
	entry := f.stockEntry(1, "black", "M")
	if entry.Quantity != 8 || entry.Reserved != 0 {
		t.Fatalf("expected stock committed to 8/0, got %d/%d", entry.Quantity, entry.Reserved)
	}
	if _, err := f.pending.GetBySession(ctx, res.SessionID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected pending order deleted, got %v", err)
	}
	if len(f.outbox.byType("order.confirmed")) != 1 {
		t.Fatalf("expected one order.confirmed event")
	}
}

func TestWebhookFinalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.seedStock(1, "black", "M", 10, 0)

	res, err := f.service.CreateCheckoutSession(ctx, application.CheckoutRequest{
		Items:    checkoutCart(),
		Shipping: checkoutAddress("buyer@example.com"),
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	f.gateway.setStatus(res.SessionID, "complete", "paid")

	if err := f.service.HandlePaymentWebhook(ctx, "checkout.session.completed", res.SessionID); err != nil {
		t.Fatalf("first webhook failed: %v", err)
	}
	if err := f.service.HandlePaymentWebhook(ctx, "checkout.session.completed", res.SessionID); err != nil {
		t.Fatalf("replayed webhook failed: %v", err)
	}

	orders, _ := f.orders.List(ctx, "", 0, 0)
	if len(orders) != 1 {
		t.Fatalf("replay created %d orders, want 1", len(orders))
	}
	entry := f.stockEntry(1, "black", "M")
	if entry.Quantity != 8 || entry.Reserved != 0 {
		t.Fatalf("replay double-committed stock: %d/%d", entry.Quantity, entry.Reserved)
	}
	if len(f.outbox.byType("order.confirmed")) != 1 {
		t.Fatalf("replay duplicated order.confirmed events")
	}
}

func TestCompletedUnpaidSessionDoesNotFinalize(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.seedStock(1, "black", "M", 10, 0)

	res, err := f.service.CreateCheckoutSession(ctx, application.CheckoutRequest{
		Items:    checkoutCart(),
		Shipping: checkoutAddress("buyer@example.com"),
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	// Delayed payment methods complete the session before the payment
	// settles. Neither the poll nor the webhook may create an order yet.
	f.gateway.setStatus(res.SessionID, "complete", "unpaid")

	status, err := f.service.CheckoutStatus(ctx, res.SessionID)
	if err != nil {
		t.Fatalf("status poll failed: %v", err)
	}
	if status.OrderNumber != "" {
		t.Fatalf("unpaid session produced an order: %+v", status)
	}
	if err := f.service.HandlePaymentWebhook(ctx, "checkout.session.completed", res.SessionID); err != nil {
		t.Fatalf("webhook failed: %v", err)
	}
	if _, err := f.orders.GetByPaymentSession(ctx, res.SessionID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unpaid session must not finalize, got %v", err)
	}
	entry := f.stockEntry(1, "black", "M")
	if entry.Quantity != 10 || entry.Reserved != 2 {
		t.Fatalf("unpaid session touched the ledger: %d/%d", entry.Quantity, entry.Reserved)
	}

	// Once the payment settles the async event finalizes as usual.
	f.gateway.setStatus(res.SessionID, "complete", "paid")
	if err := f.service.HandlePaymentWebhook(ctx, "checkout.session.async_payment_succeeded", res.SessionID); err != nil {
		t.Fatalf("async settle webhook failed: %v", err)
	}
	order, err := f.orders.GetByPaymentSession(ctx, res.SessionID)
	if err != nil {
		t.Fatalf("settled session should finalize: %v", err)
	}
	if order.Status != domain.StatusConfirmed {
		t.Fatalf("expected confirmed order, got %s", order.Status)
	}
}

func TestExpiredSessionReleasesHolds(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.seedStock(1, "black", "M", 10, 0)

	res, err := f.service.CreateCheckoutSession(ctx, application.CheckoutRequest{
		Items:    checkoutCart(),
		Shipping: checkoutAddress("buyer@example.com"),
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if err := f.service.HandlePaymentWebhook(ctx, "checkout.session.expired", res.SessionID); err != nil {
		t.Fatalf("expired webhook failed: %v", err)
	}

	entry := f.stockEntry(1, "black", "M")
	if entry.Quantity != 10 || entry.Reserved != 0 {
		t.Fatalf("expected holds released to 10/0, got %d/%d", entry.Quantity, entry.Reserved)
	}
	if _, err := f.pending.GetBySession(ctx, res.SessionID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected pending order removed, got %v", err)
	}

	// Replaying the expiry for an already-cancelled session is a no-op.
	if err := f.service.HandlePaymentWebhook(ctx, "checkout.session.expired", res.SessionID); err != nil {
		t.Fatalf("replayed expiry failed: %v", err)
	}
}

func TestCheckoutConsumesPromoUseOnFinalize(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.seedStock(1, "black", "M", 10, 0)
	maxUses := 5
	if err := f.promos.Insert(ctx, domain.PromoCode{
		Code:          "WELCOME10",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
		MaxUses:       &maxUses,
		Active:        true,
	}); err != nil {
		t.Fatalf("seed promo: %v", err)
	}

	res, err := f.service.CreateCheckoutSession(ctx, application.CheckoutRequest{
		Items:        checkoutCart(),
		Shipping:     checkoutAddress("buyer@example.com"),
		DiscountCode: "welcome10",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if res.Discount != 6 {
		t.Fatalf("expected 10%% of 60 = 6.00 discount, got %v", res.Discount)
	}

	promo, _ := f.promos.GetByCode(ctx, "WELCOME10")
	if promo.Uses != 0 {
		t.Fatalf("validation must not consume a use, got %d", promo.Uses)
	}

	f.gateway.setStatus(res.SessionID, "complete", "paid")
	if _, err := f.service.CheckoutStatus(ctx, res.SessionID); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	promo, _ = f.promos.GetByCode(ctx, "WELCOME10")
	if promo.Uses != 1 {
		t.Fatalf("finalize should consume exactly one use, got %d", promo.Uses)
	}
}

func TestSweepStaleCheckoutsCancelsUnpaid(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.seedStock(1, "black", "M", 10, 0)

	res, err := f.service.CreateCheckoutSession(ctx, application.CheckoutRequest{
		Items:    checkoutCart(),
		Shipping: checkoutAddress("buyer@example.com"),
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	// Age the pending record past the staleness cutoff.
	pending, _ := f.pending.GetBySession(ctx, res.SessionID)
	pending.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	_ = f.pending.Insert(ctx, pending)

	released, err := f.service.SweepStaleCheckouts(ctx, time.Hour, 10)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if released != 1 {
		t.Fatalf("expected 1 stale checkout released, got %d", released)
	}
	entry := f.stockEntry(1, "black", "M")
	if entry.Quantity != 10 || entry.Reserved != 0 {
		t.Fatalf("sweep left ledger at %d/%d", entry.Quantity, entry.Reserved)
	}
}

func TestSweepFinalizesLatePaidSession(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.seedStock(1, "black", "M", 10, 0)

	res, err := f.service.CreateCheckoutSession(ctx, application.CheckoutRequest{
		Items:    checkoutCart(),
		Shipping: checkoutAddress("buyer@example.com"),
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	pending, _ := f.pending.GetBySession(ctx, res.SessionID)
	pending.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	_ = f.pending.Insert(ctx, pending)
	f.gateway.setStatus(res.SessionID, "complete", "paid")

	if _, err := f.service.SweepStaleCheckouts(ctx, time.Hour, 10); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	order, err := f.orders.GetByPaymentSession(ctx, res.SessionID)
	if err != nil {
		t.Fatalf("late paid session should finalize: %v", err)
	}
	if order.Status != domain.StatusConfirmed {
		t.Fatalf("expected confirmed order, got %s", order.Status)
	}
}
