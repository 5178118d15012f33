package application

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/wdvjq5v655-netizen/gym/internal/domain"
	"github.com/wdvjq5v655-netizen/gym/internal/ports"
)

// TouchCart records cart activity for the abandoned-cart sweep. Each
// email keeps one live cart; new activity resets the reminder clock.
func (s *Service) TouchCart(ctx context.Context, req CartActivityRequest) error {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return err
	}
	now := s.nowFn()

	existing, err := s.carts.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	cart := domain.AbandonedCart{
		ID:             uuid.NewString(),
		Email:          email,
		Items:          req.Items,
		Subtotal:       roundCents(req.Subtotal),
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err == nil {
		cart.ID = existing.ID
		cart.CreatedAt = existing.CreatedAt
	}
	return s.carts.Upsert(ctx, cart)
}

var cartStageDelays = map[int]time.Duration{
	domain.CartStageFirst:  time.Hour,
	domain.CartStageSecond: 24 * time.Hour,
	domain.CartStageThird:  72 * time.Hour,
}

// SweepAbandonedCarts fires due reminder stages. The per-stage sent
// flag is flipped in the same transaction that enqueues the reminder,
// so overlapping sweeps never double-send.
func (s *Service) SweepAbandonedCarts(ctx context.Context) (int, error) {
	now := s.nowFn()
	sent := 0
	for stage, delay := range cartStageDelays {
		carts, err := s.carts.ListDue(ctx, stage, now.Add(-delay), 100)
		if err != nil {
			return sent, err
		}
		for _, cart := range carts {
			payload, _ := json.Marshal(map[string]any{
				"cart_id":  cart.ID,
				"email":    cart.Email,
				"stage":    stage,
				"subtotal": cart.Subtotal,
				"items":    cart.Items,
			})
			event := ports.OutboxEvent{
				EventID:      uuid.New(),
				EventType:    eventTypeCartReminder,
				PartitionKey: cart.ID,
				Payload:      payload,
				OccurredAt:   now,
			}
			ok, err := s.carts.MarkStageSentTx(ctx, cart.ID, stage, now, event)
			if err != nil {
				slog.Default().ErrorContext(ctx, "cart reminder failed",
					"layer", "application",
					"operation", "sweep_carts",
					"cart_id", cart.ID,
					"stage", stage,
					"error", err,
				)
				continue
			}
			if ok {
				sent++
			}
		}
	}
	return sent, nil
}

// Subscribe adds an email to the marketing list. Re-subscribing an
// existing address reactivates it.
func (s *Service) Subscribe(ctx context.Context, req SubscribeRequest) error {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return err
	}
	source := req.Source
	if source == "" {
		source = "storefront"
	}
	return s.subscribers.Upsert(ctx, domain.Subscriber{
		ID:           uuid.NewString(),
		Email:        email,
		Source:       source,
		Active:       true,
		SubscribedAt: s.nowFn(),
	})
}

// Unsubscribe deactivates a marketing list entry.
func (s *Service) Unsubscribe(ctx context.Context, email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	return s.subscribers.Deactivate(ctx, normalized)
}

// ListSubscribers returns the marketing list for the admin console.
func (s *Service) ListSubscribers(ctx context.Context, activeOnly bool) ([]domain.Subscriber, error) {
	return s.subscribers.List(ctx, activeOnly)
}
