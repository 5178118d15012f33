package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/wdvjq5v655-netizen/gym/internal/domain"
	"github.com/wdvjq5v655-netizen/gym/internal/ports"
)

// CreditTiers exposes the redemption table for the storefront.
func (s *Service) CreditTiers() []domain.CreditTier {
	return domain.CreditTiers
}

// RedeemCredits exchanges an exact tier of credits for a freshly
// minted single-use discount code. The balance check and decrement run
// as one conditional update so concurrent redemptions cannot spend the
// same credits twice.
func (s *Service) RedeemCredits(ctx context.Context, userID string, credits int) (RedeemCreditsResponse, error) {
	tier, ok := domain.FindCreditTier(credits)
	if !ok {
		return RedeemCreditsResponse{}, fmt.Errorf("%w: no tier for %d credits", domain.ErrInvalidTier, credits)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return RedeemCreditsResponse{}, err
	}
	if user.Credits < tier.Credits {
		return RedeemCreditsResponse{}, fmt.Errorf("%w: balance %d, need %d", domain.ErrInsufficientCredits, user.Credits, tier.Credits)
	}

	now := s.nowFn()
	expires := now.Add(mintedPromoExpiry)
	maxUses := 1
	promo := domain.PromoCode{
		Code:          "CREDIT-" + randomUpper(8),
		DiscountType:  domain.DiscountFixed,
		DiscountValue: tier.Discount,
		MinOrder:      tier.Discount + 1,
		MaxUses:       &maxUses,
		Active:        true,
		ExpiresAt:     &expires,
		Description:   fmt.Sprintf("%s (credit redemption)", tier.Label),
		CreatedAt:     now,
	}

	payload, _ := json.Marshal(map[string]any{
		"user_id":  userID,
		"credits":  tier.Credits,
		"discount": tier.Discount,
		"code":     promo.Code,
	})
	event := ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventTypeCreditsRedeemed,
		PartitionKey: userID,
		Payload:      payload,
		OccurredAt:   now,
	}

	ok, err = s.users.RedeemCreditsTx(ctx, userID, tier.Credits, promo, []ports.OutboxEvent{event})
	if err != nil {
		return RedeemCreditsResponse{}, err
	}
	if !ok {
		return RedeemCreditsResponse{}, fmt.Errorf("%w: balance changed, retry", domain.ErrInsufficientCredits)
	}

	return RedeemCreditsResponse{
		Code:             promo.Code,
		Discount:         tier.Discount,
		RemainingCredits: user.Credits - tier.Credits,
	}, nil
}

// CreditBalance returns the current ledger view for an account.
func (s *Service) CreditBalance(ctx context.Context, userID string) (domain.PublicProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.PublicProfile{}, err
	}
	return user.Public(), nil
}
