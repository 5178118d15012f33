package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/wdvjq5v655-netizen/gym/internal/domain"
	"github.com/wdvjq5v655-netizen/gym/internal/ports"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

func toOrderModel(o domain.Order) orderModel {
	items, _ := json.Marshal(o.Items)
	shipping, _ := json.Marshal(o.Shipping)
	var sessionID *string
	if o.PaymentSessionID != "" {
		s := o.PaymentSessionID
		sessionID = &s
	}
	return orderModel{
		OrderID:             o.ID,
		OrderNumber:         o.OrderNumber,
		Items:               string(items),
		Shipping:            string(shipping),
		Subtotal:            o.Subtotal,
		Discount:            o.Discount,
		DiscountDescription: o.DiscountDescription,
		ShippingCost:        o.ShippingCost,
		Total:               o.Total,
		Status:              string(o.Status),
		TrackingNumber:      o.TrackingNumber,
		Carrier:             o.Carrier,
		EstimatedDelivery:   o.EstimatedDelivery,
		LabelURL:            o.LabelURL,
		Notes:               o.Notes,
		CreditsAwarded:      o.CreditsAwarded,
		PaymentSessionID:    sessionID,
		ShippedAt:           o.ShippedAt,
		DeliveredAt:         o.DeliveredAt,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

func toDomainOrder(m orderModel) domain.Order {
	var items []domain.OrderItem
	_ = json.Unmarshal([]byte(m.Items), &items)
	var shipping domain.ShippingAddress
	_ = json.Unmarshal([]byte(m.Shipping), &shipping)
	var sessionID string
	if m.PaymentSessionID != nil {
		sessionID = *m.PaymentSessionID
	}
	return domain.Order{
		ID:                  m.OrderID,
		OrderNumber:         m.OrderNumber,
		Items:               items,
		Shipping:            shipping,
		Subtotal:            m.Subtotal,
		Discount:            m.Discount,
		DiscountDescription: m.DiscountDescription,
		ShippingCost:        m.ShippingCost,
		Total:               m.Total,
		Status:              domain.OrderStatus(m.Status),
		TrackingNumber:      m.TrackingNumber,
		Carrier:             m.Carrier,
		EstimatedDelivery:   m.EstimatedDelivery,
		LabelURL:            m.LabelURL,
		Notes:               m.Notes,
		CreditsAwarded:      m.CreditsAwarded,
		PaymentSessionID:    sessionID,
		ShippedAt:           m.ShippedAt,
		DeliveredAt:         m.DeliveredAt,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func enqueueOutboxTx(tx *gorm.DB, events []ports.OutboxEvent) error {
	for _, event := range events {
		rec := outboxModel{
			OutboxID:     event.EventID,
			EventType:    event.EventType,
			PartitionKey: event.PartitionKey,
			Payload:      string(event.Payload),
			CreatedAt:    event.OccurredAt,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
	}
	return nil
}

func commitStockTx(tx *gorm.DB, line domain.ReservationLine) error {
	res := tx.Model(&stockModel{}).
		Where("product_id = ? AND color = ? AND size = ?", line.ProductID, line.Color, line.Size).
		Where("reserved >= ? AND quantity >= ?", line.Quantity, line.Quantity).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", line.Quantity),
			"reserved":   gorm.Expr("reserved - ?", line.Quantity),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

func (r *orderRepository) Insert(ctx context.Context, order domain.Order) error {
	rec := toOrderModel(order)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, orderID string) (domain.Order, error) {
	var rec orderModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, domain.ErrNotFound
		}
		return domain.Order{}, err
	}
	return toDomainOrder(rec), nil
}

func (r *orderRepository) GetByNumber(ctx context.Context, orderNumber string) (domain.Order, error) {
	var rec orderModel
	if err := r.db.WithContext(ctx).Where("order_number = ?", orderNumber).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, domain.ErrNotFound
		}
		return domain.Order{}, err
	}
	return toDomainOrder(rec), nil
}

func (r *orderRepository) GetByPaymentSession(ctx context.Context, sessionID string) (domain.Order, error) {
	var rec orderModel
	if err := r.db.WithContext(ctx).Where("payment_session_id = ?", sessionID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, domain.ErrNotFound
		}
		return domain.Order{}, err
	}
	return toDomainOrder(rec), nil
}

func (r *orderRepository) List(ctx context.Context, status string, limit, offset int) ([]domain.Order, error) {
	q := r.db.WithContext(ctx).Model(&orderModel{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []orderModel
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainOrder(row))
	}
	return out, nil
}

func (r *orderRepository) Update(ctx context.Context, order domain.Order) error {
	rec := toOrderModel(order)
	res := r.db.WithContext(ctx).
		Model(&orderModel{}).
		Where("order_id = ?", order.ID).
		Updates(map[string]any{
			"status":             rec.Status,
			"tracking_number":    rec.TrackingNumber,
			"carrier":            rec.Carrier,
			"estimated_delivery": rec.EstimatedDelivery,
			"label_url":          rec.LabelURL,
			"notes":              rec.Notes,
			"shipped_at":         rec.ShippedAt,
			"delivered_at":       rec.DeliveredAt,
			"updated_at":         rec.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FinalizeCheckoutTx converts a paid pending order into a confirmed
// order. The unique payment_session_id index makes the insert the
// arbiter when the poll and webhook paths race.
func (r *orderRepository) FinalizeCheckoutTx(ctx context.Context, order domain.Order, pendingSessionID string, events []ports.OutboxEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := toOrderModel(order)
		if err := tx.Create(&rec).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}
		for _, line := range order.ReservationLines() {
			if err := commitStockTx(tx, line); err != nil {
				return err
			}
		}
		if err := tx.Where("session_id = ?", pendingSessionID).
			Delete(&pendingOrderModel{}).Error; err != nil {
			return err
		}
		return enqueueOutboxTx(tx, events)
	})
}

// AwardCreditsTx posts the delivery credit award at most once per
// order. The conditional update on credits_awarded = 0 is the guard.
func (r *orderRepository) AwardCreditsTx(ctx context.Context, orderID string, userID string, credits int, events []ports.OutboxEvent) (bool, error) {
	awarded := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&orderModel{}).
			Where("order_id = ? AND credits_awarded = 0", orderID).
			Update("credits_awarded", credits)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		userRes := tx.Model(&userModel{}).
			Where("user_id = ?", userID).
			Updates(map[string]any{
				"credits":              gorm.Expr("credits + ?", credits),
				"total_credits_earned": gorm.Expr("total_credits_earned + ?", credits),
				"updated_at":           time.Now().UTC(),
			})
		if userRes.Error != nil {
			return userRes.Error
		}
		if userRes.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		awarded = true
		return enqueueOutboxTx(tx, events)
	})
	if err != nil {
		return false, err
	}
	return awarded, nil
}

func (r *orderRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	type row struct {
		Status string
		Count  int
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&orderModel{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

func (r *orderRepository) RevenueTotals(ctx context.Context) (int, float64, error) {
	type row struct {
		Orders  int
		Revenue float64
	}
	var result row
	if err := r.db.WithContext(ctx).
		Model(&orderModel{}).
		Select("count(*) as orders, coalesce(sum(total), 0) as revenue").
		Where("status <> ?", string(domain.StatusCancelled)).
		Scan(&result).Error; err != nil {
		return 0, 0, err
	}
	return result.Orders, result.Revenue, nil
}
