package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/wdvjq5v655-netizen/gym/internal/domain"
	"github.com/wdvjq5v655-netizen/gym/internal/ports"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func toDomainUser(m userModel) domain.User {
	return domain.User{
		ID:                   m.UserID,
		Email:                m.Email,
		PasswordHash:         m.PasswordHash,
		FirstName:            m.FirstName,
		LastName:             m.LastName,
		Credits:              m.Credits,
		TotalCreditsEarned:   m.TotalCreditsEarned,
		TotalCreditsRedeemed: m.TotalCreditsRedeemed,
		FirstOrderDiscount:   m.FirstOrderDiscount,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func (r *userRepository) Insert(ctx context.Context, user domain.User) error {
	rec := userModel{
		UserID:               user.ID,
		Email:                user.Email,
		PasswordHash:         user.PasswordHash,
		FirstName:            user.FirstName,
		LastName:             user.LastName,
		Credits:              user.Credits,
		TotalCreditsEarned:   user.TotalCreditsEarned,
		TotalCreditsRedeemed: user.TotalCreditsRedeemed,
		FirstOrderDiscount:   user.FirstOrderDiscount,
		CreatedAt:            user.CreatedAt,
		UpdatedAt:            user.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var rec userModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return toDomainUser(rec), nil
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (domain.User, error) {
	var rec userModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return toDomainUser(rec), nil
}

func (r *userRepository) Update(ctx context.Context, user domain.User) error {
	res := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", user.ID).
		Updates(map[string]any{
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RedeemCreditsTx spends credits and mints the discount code in one
// transaction. The conditional decrement is the double-spend guard.
func (r *userRepository) RedeemCreditsTx(ctx context.Context, userID string, cost int, promo domain.PromoCode, events []ports.OutboxEvent) (bool, error) {
	redeemed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userModel{}).
			Where("user_id = ? AND credits >= ?", userID, cost).
			Updates(map[string]any{
				"credits":                gorm.Expr("credits - ?", cost),
				"total_credits_redeemed": gorm.Expr("total_credits_redeemed + ?", cost),
				"updated_at":             time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		rec := toPromoModel(promo)
		if err := tx.Create(&rec).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}

		redeemed = true
		return enqueueOutboxTx(tx, events)
	})
	if err != nil {
		return false, err
	}
	return redeemed, nil
}
