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

type waitlistRepository struct {
	db *gorm.DB
}

func toDomainWaitlist(m waitlistModel) domain.WaitlistEntry {
	sizes := make(map[string]int)
	_ = json.Unmarshal([]byte(m.Sizes), &sizes)
	return domain.WaitlistEntry{
		ID:          m.EntryID,
		Email:       m.Email,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Variant:     m.Variant,
		Sizes:       sizes,
		SizeDisplay: m.SizeDisplay,
		Image:       m.Image,
		Position:    m.Position,
		AccessCode:  m.AccessCode,
		Notified:    m.Notified,
		Purchased:   m.Purchased,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *waitlistRepository) GetByEmailProduct(ctx context.Context, email string, productID int, variant string) (domain.WaitlistEntry, error) {
	q := r.db.WithContext(ctx).Where("email = ? AND product_id = ?", email, productID)
	if variant != "" {
		q = q.Where("variant = ?", variant)
	}
	var rec waitlistModel
	if err := q.Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.WaitlistEntry{}, domain.ErrNotFound
		}
		return domain.WaitlistEntry{}, err
	}
	return toDomainWaitlist(rec), nil
}

func (r *waitlistRepository) GetByAccessCode(ctx context.Context, code string) (domain.WaitlistEntry, error) {
	var rec waitlistModel
	if err := r.db.WithContext(ctx).Where("access_code = ?", code).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.WaitlistEntry{}, domain.ErrNotFound
		}
		return domain.WaitlistEntry{}, err
	}
	return toDomainWaitlist(rec), nil
}

func (r *waitlistRepository) Count(ctx context.Context) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&waitlistModel{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *waitlistRepository) NextPosition(ctx context.Context) (int, error) {
	var max int
	if err := r.db.WithContext(ctx).
		Model(&waitlistModel{}).
		Select("coalesce(max(position), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *waitlistRepository) InsertTx(ctx context.Context, entry domain.WaitlistEntry, events []ports.OutboxEvent) error {
	sizes, _ := json.Marshal(entry.Sizes)
	rec := waitlistModel{
		EntryID:     entry.ID,
		Email:       entry.Email,
		ProductID:   entry.ProductID,
		ProductName: entry.ProductName,
		Variant:     entry.Variant,
		Sizes:       string(sizes),
		SizeDisplay: entry.SizeDisplay,
		Image:       entry.Image,
		Position:    entry.Position,
		AccessCode:  entry.AccessCode,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}
		return enqueueOutboxTx(tx, events)
	})
}

func (r *waitlistRepository) UpdateSizesTx(ctx context.Context, entryID string, sizes map[string]int, sizeDisplay string, events []ports.OutboxEvent) error {
	raw, _ := json.Marshal(sizes)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&waitlistModel{}).
			Where("entry_id = ?", entryID).
			Updates(map[string]any{
				"sizes":        string(raw),
				"size_display": sizeDisplay,
				"updated_at":   time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return enqueueOutboxTx(tx, events)
	})
}

func (r *waitlistRepository) MarkNotified(ctx context.Context, entryID string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&waitlistModel{}).
		Where("entry_id = ?", entryID).
		Updates(map[string]any{
			"notified":    true,
			"notified_at": at,
			"updated_at":  at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *waitlistRepository) MarkPurchased(ctx context.Context, entryID string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&waitlistModel{}).
		Where("entry_id = ?", entryID).
		Updates(map[string]any{
			"purchased":    true,
			"purchased_at": at,
			"updated_at":   at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *waitlistRepository) List(ctx context.Context, productID int, limit, offset int) ([]domain.WaitlistEntry, error) {
	q := r.db.WithContext(ctx).Model(&waitlistModel{})
	if productID > 0 {
		q = q.Where("product_id = ?", productID)
	}
	var rows []waitlistModel
	if err := q.Order("position ASC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.WaitlistEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainWaitlist(row))
	}
	return out, nil
}

func (r *waitlistRepository) Stats(ctx context.Context) (map[int]int, error) {
	type row struct {
		ProductID int
		Count     int
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&waitlistModel{}).
		Select("product_id, count(*) as count").
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[int]int, len(rows))
	for _, r := range rows {
		out[r.ProductID] = r.Count
	}
	return out, nil
}
