package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wdvjq5v655-netizen/gym/internal/domain"
	"github.com/wdvjq5v655-netizen/gym/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type subscriberRepository struct {
	db *gorm.DB
}

func (r *subscriberRepository) Upsert(ctx context.Context, sub domain.Subscriber) error {
	rec := subscriberModel{
		SubscriberID: sub.ID,
		Email:        sub.Email,
		Source:       sub.Source,
		Active:       sub.Active,
		SubscribedAt: sub.SubscribedAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(map[string]any{
				"active": true,
				"source": sub.Source,
			}),
		}).
		Create(&rec).Error
}

func (r *subscriberRepository) Deactivate(ctx context.Context, email string) error {
	res := r.db.WithContext(ctx).
		Model(&subscriberModel{}).
		Where("email = ?", email).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriberRepository) List(ctx context.Context, activeOnly bool) ([]domain.Subscriber, error) {
	q := r.db.WithContext(ctx).Model(&subscriberModel{})
	if activeOnly {
		q = q.Where("active")
	}
	var rows []subscriberModel
	if err := q.Order("subscribed_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Subscriber, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Subscriber{
			ID:           row.SubscriberID,
			Email:        row.Email,
			Source:       row.Source,
			Active:       row.Active,
			SubscribedAt: row.SubscribedAt,
		})
	}
	return out, nil
}

func (r *subscriberRepository) Count(ctx context.Context, activeOnly bool) (int, error) {
	q := r.db.WithContext(ctx).Model(&subscriberModel{})
	if activeOnly {
		q = q.Where("active")
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

type cartRepository struct {
	db *gorm.DB
}

func toDomainCart(m cartModel) domain.AbandonedCart {
	var items []domain.OrderItem
	_ = json.Unmarshal([]byte(m.Items), &items)
	return domain.AbandonedCart{
		ID:             m.CartID,
		Email:          m.Email,
		Items:          items,
		Subtotal:       m.Subtotal,
		Recovered:      m.Recovered,
		Email1Sent:     m.Email1Sent,
		Email1SentAt:   m.Email1SentAt,
		Email2Sent:     m.Email2Sent,
		Email2SentAt:   m.Email2SentAt,
		Email3Sent:     m.Email3Sent,
		Email3SentAt:   m.Email3SentAt,
		LastActivityAt: m.LastActivityAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// Upsert resets the reminder cycle on fresh activity. A previously
// recovered or reminded cart starts over with clean stage flags.
func (r *cartRepository) Upsert(ctx context.Context, cart domain.AbandonedCart) error {
	items, _ := json.Marshal(cart.Items)
	rec := cartModel{
		CartID:         cart.ID,
		Email:          cart.Email,
		Items:          string(items),
		Subtotal:       cart.Subtotal,
		LastActivityAt: cart.LastActivityAt,
		CreatedAt:      cart.CreatedAt,
		UpdatedAt:      cart.UpdatedAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(map[string]any{
				"items":            string(items),
				"subtotal":         cart.Subtotal,
				"recovered":        false,
				"email_1_sent":     false,
				"email_1_sent_at":  nil,
				"email_2_sent":     false,
				"email_2_sent_at":  nil,
				"email_3_sent":     false,
				"email_3_sent_at":  nil,
				"last_activity_at": cart.LastActivityAt,
				"updated_at":       cart.UpdatedAt,
			}),
		}).
		Create(&rec).Error
}

func (r *cartRepository) GetByEmail(ctx context.Context, email string) (domain.AbandonedCart, error) {
	var rec cartModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AbandonedCart{}, domain.ErrNotFound
		}
		return domain.AbandonedCart{}, err
	}
	return toDomainCart(rec), nil
}

func (r *cartRepository) MarkRecovered(ctx context.Context, email string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&cartModel{}).
		Where("email = ? AND NOT recovered", email).
		Updates(map[string]any{
			"recovered":  true,
			"updated_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func stageColumns(stage int) (string, string, error) {
	switch stage {
	case domain.CartStageFirst:
		return "email_1_sent", "email_1_sent_at", nil
	case domain.CartStageSecond:
		return "email_2_sent", "email_2_sent_at", nil
	case domain.CartStageThird:
		return "email_3_sent", "email_3_sent_at", nil
	}
	return "", "", fmt.Errorf("unknown cart stage %d", stage)
}

func (r *cartRepository) ListDue(ctx context.Context, stage int, cutoff time.Time, limit int) ([]domain.AbandonedCart, error) {
	sentCol, _, err := stageColumns(stage)
	if err != nil {
		return nil, err
	}
	var rows []cartModel
	if err := r.db.WithContext(ctx).
		Where("NOT recovered").
		Where("NOT "+sentCol).
		Where("last_activity_at < ?", cutoff).
		Order("last_activity_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.AbandonedCart, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainCart(row))
	}
	return out, nil
}

// MarkStageSentTx flips the stage flag and enqueues the reminder in
// one transaction. The conditional update makes concurrent sweeps
// send each stage at most once.
func (r *cartRepository) MarkStageSentTx(ctx context.Context, cartID string, stage int, at time.Time, event ports.OutboxEvent) (bool, error) {
	sentCol, sentAtCol, err := stageColumns(stage)
	if err != nil {
		return false, err
	}
	sent := false
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&cartModel{}).
			Where("cart_id = ? AND NOT "+sentCol, cartID).
			Updates(map[string]any{
				sentCol:      true,
				sentAtCol:    at,
				"updated_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		sent = true
		return enqueueOutboxTx(tx, []ports.OutboxEvent{event})
	})
	if err != nil {
		return false, err
	}
	return sent, nil
}
