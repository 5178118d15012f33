package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/wdvjq5v655-netizen/gym/internal/domain"
	"gorm.io/gorm"
)

type pendingOrderRepository struct {
	db *gorm.DB
}

func toDomainPending(m pendingOrderModel) domain.PendingOrder {
	var items []domain.OrderItem
	_ = json.Unmarshal([]byte(m.Items), &items)
	var shipping domain.ShippingAddress
	_ = json.Unmarshal([]byte(m.Shipping), &shipping)
	return domain.PendingOrder{
		SessionID:           m.SessionID,
		Items:               items,
		Shipping:            shipping,
		Subtotal:            m.Subtotal,
		Discount:            m.Discount,
		DiscountCode:        m.DiscountCode,
		DiscountDescription: m.DiscountDescription,
		ShippingCost:        m.ShippingCost,
		Total:               m.Total,
		CreatedAt:           m.CreatedAt,
	}
}

func (r *pendingOrderRepository) Insert(ctx context.Context, pending domain.PendingOrder) error {
	items, _ := json.Marshal(pending.Items)
	shipping, _ := json.Marshal(pending.Shipping)
	rec := pendingOrderModel{
		SessionID:           pending.SessionID,
		Items:               string(items),
		Shipping:            string(shipping),
		Subtotal:            pending.Subtotal,
		Discount:            pending.Discount,
		DiscountCode:        pending.DiscountCode,
		DiscountDescription: pending.DiscountDescription,
		ShippingCost:        pending.ShippingCost,
		Total:               pending.Total,
		CreatedAt:           pending.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *pendingOrderRepository) GetBySession(ctx context.Context, sessionID string) (domain.PendingOrder, error) {
	var rec pendingOrderModel
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PendingOrder{}, domain.ErrNotFound
		}
		return domain.PendingOrder{}, err
	}
	return toDomainPending(rec), nil
}

func (r *pendingOrderRepository) Delete(ctx context.Context, sessionID string) error {
	res := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&pendingOrderModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pendingOrderRepository) ListStale(ctx context.Context, olderThan time.Time, limit int) ([]domain.PendingOrder, error) {
	var rows []pendingOrderModel
	if err := r.db.WithContext(ctx).
		Where("created_at < ?", olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.PendingOrder, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainPending(row))
	}
	return out, nil
}

type paymentTransactionRepository struct {
	db *gorm.DB
}

func (r *paymentTransactionRepository) Insert(ctx context.Context, tx domain.PaymentTransaction) error {
	var orderID *string
	if tx.OrderID != "" {
		o := tx.OrderID
		orderID = &o
	}
	rec := paymentTransactionModel{
		TransactionID: tx.ID,
		SessionID:     tx.SessionID,
		OrderID:       orderID,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		Status:        tx.Status,
		PaymentStatus: tx.PaymentStatus,
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *paymentTransactionRepository) UpdateStatus(ctx context.Context, sessionID, status string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&paymentTransactionModel{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]any{
			"status":     status,
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

func (r *paymentTransactionRepository) GetBySession(ctx context.Context, sessionID string) (domain.PaymentTransaction, error) {
	var rec paymentTransactionModel
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PaymentTransaction{}, domain.ErrNotFound
		}
		return domain.PaymentTransaction{}, err
	}
	var orderID string
	if rec.OrderID != nil {
		orderID = *rec.OrderID
	}
	return domain.PaymentTransaction{
		ID:            rec.TransactionID,
		SessionID:     rec.SessionID,
		OrderID:       orderID,
		Amount:        rec.Amount,
		Currency:      rec.Currency,
		Status:        rec.Status,
		PaymentStatus: rec.PaymentStatus,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}, nil
}
