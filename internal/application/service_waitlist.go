package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/wdvjq5v655-netizen/gym/internal/domain"
	"github.com/wdvjq5v655-netizen/gym/internal/ports"
)

// JoinWaitlist registers interest in an out-of-stock variant. A repeat
// join returns the existing entry untouched unless force_add is set,
// in which case the requested sizes merge into it without changing its
// position or access code. The registry-wide capacity limit applies
// only to new entries, so a member can always update their sizes even
// on a full list.
func (s *Service) JoinWaitlist(ctx context.Context, req JoinWaitlistRequest) (JoinWaitlistResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return JoinWaitlistResponse{}, err
	}
	if req.ProductID <= 0 {
		return JoinWaitlistResponse{}, fmt.Errorf("%w: product id is required", domain.ErrInvalidInput)
	}

	var sizes map[string]int
	if len(req.Sizes) > 0 {
		sizes = domain.ParseSizeSelections(req.Sizes)
	} else {
		sizes = domain.ParseLegacySizeString(req.Size)
	}
	if len(sizes) == 0 {
		return JoinWaitlistResponse{}, fmt.Errorf("%w: at least one size is required", domain.ErrInvalidInput)
	}

	existing, err := s.waitlist.GetByEmailProduct(ctx, email, req.ProductID, req.Variant)
	switch {
	case err == nil:
		if !req.ForceAdd {
			return JoinWaitlistResponse{
				Position:      existing.Position,
				AccessCode:    existing.AccessCode,
				Sizes:         existing.Sizes,
				AlreadyJoined: true,
			}, nil
		}
		merged := domain.MergeSizes(existing.Sizes, sizes)
		display := domain.SizesDisplay(merged)
		payload, _ := json.Marshal(map[string]any{
			"entry_id":   existing.ID,
			"email":      email,
			"product_id": req.ProductID,
			"sizes":      merged,
		})
		event := ports.OutboxEvent{
			EventID:      uuid.New(),
			EventType:    eventTypeWaitlistUpdated,
			PartitionKey: existing.ID,
			Payload:      payload,
			OccurredAt:   s.nowFn(),
		}
		if err := s.waitlist.UpdateSizesTx(ctx, existing.ID, merged, display, []ports.OutboxEvent{event}); err != nil {
			return JoinWaitlistResponse{}, err
		}
		return JoinWaitlistResponse{
			Position:   existing.Position,
			AccessCode: existing.AccessCode,
			Sizes:      merged,
			Merged:     true,
		}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return JoinWaitlistResponse{}, err
	}

	count, err := s.waitlist.Count(ctx)
	if err != nil {
		return JoinWaitlistResponse{}, err
	}
	if count >= s.cfg.WaitlistLimit {
		return JoinWaitlistResponse{}, domain.ErrWaitlistFull
	}

	position, err := s.waitlist.NextPosition(ctx)
	if err != nil {
		return JoinWaitlistResponse{}, err
	}

	now := s.nowFn()
	entry := domain.WaitlistEntry{
		ID:          uuid.NewString(),
		Email:       email,
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Variant:     req.Variant,
		Sizes:       sizes,
		SizeDisplay: domain.SizesDisplay(sizes),
		Image:       req.Image,
		Position:    position,
		AccessCode:  "GYM-" + randomUpper(8),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	payload, _ := json.Marshal(map[string]any{
		"entry_id":   entry.ID,
		"email":      email,
		"product_id": req.ProductID,
		"position":   position,
		"sizes":      sizes,
	})
	event := ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventTypeWaitlistJoined,
		PartitionKey: entry.ID,
		Payload:      payload,
		OccurredAt:   now,
	}
	if err := s.waitlist.InsertTx(ctx, entry, []ports.OutboxEvent{event}); err != nil {
		return JoinWaitlistResponse{}, err
	}

	return JoinWaitlistResponse{
		Position:   entry.Position,
		AccessCode: entry.AccessCode,
		Sizes:      entry.Sizes,
	}, nil
}

// WaitlistStatus reports membership for an email and product. An empty
// variant matches any entry for the product.
func (s *Service) WaitlistStatus(ctx context.Context, email string, productID int, variant string) (WaitlistStatusResponse, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return WaitlistStatusResponse{}, err
	}
	entry, err := s.waitlist.GetByEmailProduct(ctx, normalized, productID, variant)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return WaitlistStatusResponse{OnWaitlist: false}, nil
		}
		return WaitlistStatusResponse{}, err
	}
	return WaitlistStatusResponse{
		OnWaitlist: true,
		Position:   entry.Position,
		Sizes:      entry.Sizes,
		Notified:   entry.Notified,
	}, nil
}

// VerifyAccessCode resolves an early-access code to its waitlist entry.
// A code burned by a purchase no longer verifies. Codes are advisory:
// they gate the storefront reveal, not checkout.
func (s *Service) VerifyAccessCode(ctx context.Context, code string) (domain.WaitlistEntry, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if trimmed == "" {
		return domain.WaitlistEntry{}, fmt.Errorf("%w: access code is required", domain.ErrInvalidInput)
	}
	entry, err := s.waitlist.GetByAccessCode(ctx, trimmed)
	if err != nil {
		return domain.WaitlistEntry{}, err
	}
	if entry.Purchased {
		return domain.WaitlistEntry{}, fmt.Errorf("%w: access code has already been used", domain.ErrConflict)
	}
	return entry, nil
}

// NotifyWaitlistEntry marks an entry notified after a restock alert.
func (s *Service) NotifyWaitlistEntry(ctx context.Context, entryID string) error {
	return s.waitlist.MarkNotified(ctx, entryID, s.nowFn())
}

// ListWaitlist returns entries for one product, in position order.
func (s *Service) ListWaitlist(ctx context.Context, productID int, limit, offset int) ([]domain.WaitlistEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.waitlist.List(ctx, productID, limit, offset)
}

// WaitlistStatsReport returns per-product membership counts.
func (s *Service) WaitlistStatsReport(ctx context.Context) (map[int]int, error) {
	return s.waitlist.Stats(ctx)
}
