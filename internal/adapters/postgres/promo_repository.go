package postgres

import (
	"context"
	"errors"

	"github.com/wdvjq5v655-netizen/gym/internal/domain"
	"gorm.io/gorm"
)

type promoRepository struct {
	db *gorm.DB
}

func toPromoModel(p domain.PromoCode) promoModel {
	return promoModel{
		Code:          p.Code,
		DiscountType:  p.DiscountType,
		DiscountValue: p.DiscountValue,
		MinOrder:      p.MinOrder,
		MaxUses:       p.MaxUses,
		Uses:          p.Uses,
		Active:        p.Active,
		ExpiresAt:     p.ExpiresAt,
		Description:   p.Description,
		CreatedAt:     p.CreatedAt,
	}
}

func toDomainPromo(m promoModel) domain.PromoCode {
	return domain.PromoCode{
		Code:          m.Code,
		DiscountType:  m.DiscountType,
		DiscountValue: m.DiscountValue,
		MinOrder:      m.MinOrder,
		MaxUses:       m.MaxUses,
		Uses:          m.Uses,
		Active:        m.Active,
		ExpiresAt:     m.ExpiresAt,
		Description:   m.Description,
		CreatedAt:     m.CreatedAt,
	}
}

func (r *promoRepository) GetByCode(ctx context.Context, code string) (domain.PromoCode, error) {
	var rec promoModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PromoCode{}, domain.ErrNotFound
		}
		return domain.PromoCode{}, err
	}
	return toDomainPromo(rec), nil
}

func (r *promoRepository) Insert(ctx context.Context, promo domain.PromoCode) error {
	rec := toPromoModel(promo)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

// IncrementUses bumps the counter only while under the usage limit, so
// a limited code can never be over-consumed by concurrent checkouts.
func (r *promoRepository) IncrementUses(ctx context.Context, code string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&promoModel{}).
		Where("code = ?", code).
		Where("max_uses IS NULL OR uses < max_uses").
		Update("uses", gorm.Expr("uses + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&promoModel{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, domain.ErrNotFound
	}
	return false, nil
}

func (r *promoRepository) Deactivate(ctx context.Context, code string) error {
	res := r.db.WithContext(ctx).
		Model(&promoModel{}).
		Where("code = ?", code).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *promoRepository) List(ctx context.Context) ([]domain.PromoCode, error) {
	var rows []promoModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.PromoCode, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainPromo(row))
	}
	return out, nil
}
