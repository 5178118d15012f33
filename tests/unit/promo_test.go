package unit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wdvjq5v655-netizen/gym/internal/application"
	"github.com/wdvjq5v655-netizen/gym/internal/domain"
)

func TestValidatePromoPercentage(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if _, err := f.service.CreatePromo(ctx, application.CreatePromoRequest{
		Code:          "welcome10",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
	}); err != nil {
		t.Fatalf("create promo failed: %v", err)
	}

	res, err := f.service.ValidatePromo(ctx, application.ValidatePromoRequest{Code: "WELCOME10", Subtotal: 100})
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !res.Valid || res.Discount != 10 {
		t.Fatalf("expected $10 off $100, got %+v", res)
	}
}

func TestValidatePromoRejections(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	past := time.Now().UTC().Add(-time.Hour)
	maxUses := 1

	seed := []domain.PromoCode{
		{Code: "INACTIVE", DiscountType: domain.DiscountFixed, DiscountValue: 5, Active: false},
		{Code: "EXPIRED", DiscountType: domain.DiscountFixed, DiscountValue: 5, Active: true, ExpiresAt: &past},
		{Code: "SPENT", DiscountType: domain.DiscountFixed, DiscountValue: 5, Active: true, MaxUses: &maxUses, Uses: 1},
		{Code: "BIGSPEND", DiscountType: domain.DiscountFixed, DiscountValue: 20, Active: true, MinOrder: 100},
	}
	for _, promo := range seed {
		if err := f.promos.Insert(ctx, promo); err != nil {
			t.Fatalf("seed %s: %v", promo.Code, err)
		}
	}

	cases := []struct {
		code     string
		subtotal float64
	}{
		{"MISSING", 50},
		{"INACTIVE", 50},
		{"EXPIRED", 50},
		{"SPENT", 50},
		{"BIGSPEND", 50},
	}
	for _, tc := range cases {
		_, err := f.service.ValidatePromo(ctx, application.ValidatePromoRequest{Code: tc.code, Subtotal: tc.subtotal})
		if !errors.Is(err, domain.ErrPromoRejected) {
			t.Fatalf("%s: expected promo rejection, got %v", tc.code, err)
		}
	}

	// Rejections never mutate usage counters.
	spent, _ := f.promos.GetByCode(ctx, "SPENT")
	if spent.Uses != 1 {
		t.Fatalf("rejection changed uses: %d", spent.Uses)
	}
}

func TestFixedPromoNeverExceedsSubtotal(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if err := f.promos.Insert(ctx, domain.PromoCode{
		Code:          "TWENTY",
		DiscountType:  domain.DiscountFixed,
		DiscountValue: 20,
		Active:        true,
	}); err != nil {
		t.Fatalf("seed promo: %v", err)
	}

	res, err := f.service.ValidatePromo(ctx, application.ValidatePromoRequest{Code: "TWENTY", Subtotal: 12.50})
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if res.Discount != 12.50 {
		t.Fatalf("fixed discount should cap at subtotal, got %v", res.Discount)
	}
}

func TestCreatePromoValidation(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if _, err := f.service.CreatePromo(ctx, application.CreatePromoRequest{
		Code:          "OVER",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 150,
	}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected rejection of >100%%, got %v", err)
	}

	if _, err := f.service.CreatePromo(ctx, application.CreatePromoRequest{
		Code:          "DUP",
		DiscountType:  domain.DiscountFixed,
		DiscountValue: 5,
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.service.CreatePromo(ctx, application.CreatePromoRequest{
		Code:          "dup",
		DiscountType:  domain.DiscountFixed,
		DiscountValue: 5,
	}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected duplicate conflict, got %v", err)
	}
}

func TestRedeemCreditsMintsSingleUseCode(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	auth, err := f.service.Signup(ctx, application.SignupRequest{
		Email:    "saver@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if err := f.users.addCredits(auth.User.ID, 250); err != nil {
		t.Fatalf("seed credits: %v", err)
	}

	res, err := f.service.RedeemCredits(ctx, auth.User.ID, 200)
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if !strings.HasPrefix(res.Code, "CREDIT-") || res.Discount != 15 {
		t.Fatalf("unexpected redemption: %+v", res)
	}
	if res.RemainingCredits != auth.User.Credits+250-200 {
		t.Fatalf("expected remaining %d, got %d", auth.User.Credits+50, res.RemainingCredits)
	}

	promo, err := f.promos.GetByCode(ctx, res.Code)
	if err != nil {
		t.Fatalf("minted promo missing: %v", err)
	}
	if promo.MaxUses == nil || *promo.MaxUses != 1 {
		t.Fatalf("minted promo must be single use: %+v", promo)
	}
	if promo.MinOrder != 16 {
		t.Fatalf("minted promo min order should be discount+1, got %v", promo.MinOrder)
	}
	if promo.ExpiresAt == nil {
		t.Fatalf("minted promo should expire")
	}

	user, _ := f.users.GetByID(ctx, auth.User.ID)
	if user.Credits != user.TotalCreditsEarned-user.TotalCreditsRedeemed {
		t.Fatalf("ledger identity broken after redemption: %+v", user)
	}
	if len(f.outbox.byType("credits.redeemed")) != 1 {
		t.Fatalf("expected one credits.redeemed event")
	}
}

func TestRedeemCreditsRejections(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	auth, err := f.service.Signup(ctx, application.SignupRequest{
		Email:    "broke@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	if _, err := f.service.RedeemCredits(ctx, auth.User.ID, 150); !errors.Is(err, domain.ErrInvalidTier) {
		t.Fatalf("expected invalid tier for 150, got %v", err)
	}
	if _, err := f.service.RedeemCredits(ctx, auth.User.ID, 100); !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("expected insufficient credits, got %v", err)
	}

	user, _ := f.users.GetByID(ctx, auth.User.ID)
	if user.Credits != domain.SignupBonusCredits {
		t.Fatalf("failed redemption must not touch the balance, got %d", user.Credits)
	}
}

func TestCreditTiersTable(t *testing.T) {
	t.Parallel()

	f := newFixture()
	tiers := f.service.CreditTiers()
	if len(tiers) != 3 {
		t.Fatalf("expected 3 tiers, got %d", len(tiers))
	}
	if tiers[0].Credits != 100 || tiers[0].Discount != 5 ||
		tiers[1].Credits != 200 || tiers[1].Discount != 15 ||
		tiers[2].Credits != 300 || tiers[2].Discount != 25 {
		t.Fatalf("unexpected tier table: %+v", tiers)
	}
}
