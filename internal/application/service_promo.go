package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wdvjq5v655-netizen/gym/internal/domain"
)

// ValidatePromo prices a code against a subtotal without consuming a
// use. Validation is read-only so an abandoned checkout never burns a
// limited code.
func (s *Service) ValidatePromo(ctx context.Context, req ValidatePromoRequest) (ValidatePromoResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return ValidatePromoResponse{}, fmt.Errorf("%w: code is required", domain.ErrInvalidInput)
	}
	if req.Subtotal < 0 {
		return ValidatePromoResponse{}, fmt.Errorf("%w: subtotal cannot be negative", domain.ErrInvalidInput)
	}

	promo, err := s.promos.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ValidatePromoResponse{}, fmt.Errorf("%w: unknown code", domain.ErrPromoRejected)
		}
		return ValidatePromoResponse{}, err
	}

	now := s.nowFn()
	switch {
	case !promo.Active:
		return ValidatePromoResponse{}, fmt.Errorf("%w: code is inactive", domain.ErrPromoRejected)
	case promo.Expired(now):
		return ValidatePromoResponse{}, fmt.Errorf("%w: code has expired", domain.ErrPromoRejected)
	case promo.Exhausted():
		return ValidatePromoResponse{}, fmt.Errorf("%w: code has been fully redeemed", domain.ErrPromoRejected)
	case req.Subtotal < promo.MinOrder:
		return ValidatePromoResponse{}, fmt.Errorf("%w: order minimum of $%.2f not met", domain.ErrPromoRejected, promo.MinOrder)
	}

	return ValidatePromoResponse{
		Valid:       true,
		Code:        promo.Code,
		Discount:    promo.DiscountAmount(req.Subtotal),
		Description: promo.Description,
	}, nil
}

// CreatePromo registers a new admin-issued code.
func (s *Service) CreatePromo(ctx context.Context, req CreatePromoRequest) (domain.PromoCode, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return domain.PromoCode{}, fmt.Errorf("%w: code is required", domain.ErrInvalidInput)
	}
	if req.DiscountType != domain.DiscountPercentage && req.DiscountType != domain.DiscountFixed {
		return domain.PromoCode{}, fmt.Errorf("%w: discount type must be percentage or fixed", domain.ErrInvalidInput)
	}
	if req.DiscountValue <= 0 {
		return domain.PromoCode{}, fmt.Errorf("%w: discount value must be positive", domain.ErrInvalidInput)
	}
	if req.DiscountType == domain.DiscountPercentage && req.DiscountValue > 100 {
		return domain.PromoCode{}, fmt.Errorf("%w: percentage cannot exceed 100", domain.ErrInvalidInput)
	}

	if _, err := s.promos.GetByCode(ctx, code); err == nil {
		return domain.PromoCode{}, fmt.Errorf("%w: code already exists", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.PromoCode{}, err
	}

	promo := domain.PromoCode{
		Code:          code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MinOrder:      req.MinOrder,
		MaxUses:       req.MaxUses,
		Active:        true,
		ExpiresAt:     req.ExpiresAt,
		Description:   req.Description,
		CreatedAt:     s.nowFn(),
	}
	if err := s.promos.Insert(ctx, promo); err != nil {
		return domain.PromoCode{}, err
	}
	return promo, nil
}

// DeactivatePromo retires a code without deleting its usage history.
func (s *Service) DeactivatePromo(ctx context.Context, code string) error {
	return s.promos.Deactivate(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// ListPromos returns every code for the admin console.
func (s *Service) ListPromos(ctx context.Context) ([]domain.PromoCode, error) {
	return s.promos.List(ctx)
}

// mintedPromoExpiry is how long a credit-redemption code stays valid.
const mintedPromoExpiry = 30 * 24 * time.Hour
