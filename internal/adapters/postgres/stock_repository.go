package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/wdvjq5v655-netizen/gym/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type stockRepository struct {
	db *gorm.DB
}

func toDomainStock(m stockModel) domain.StockEntry {
	return domain.StockEntry{
		ProductID:         m.ProductID,
		ProductName:       m.ProductName,
		Color:             m.Color,
		Size:              m.Size,
		Quantity:          m.Quantity,
		Reserved:          m.Reserved,
		LowStockThreshold: m.LowStockThreshold,
		UpdatedAt:         m.UpdatedAt,
	}
}

func variantScope(db *gorm.DB, v domain.Variant) *gorm.DB {
	return db.Where("product_id = ? AND color = ? AND size = ?", v.ProductID, v.Color, v.Size)
}

func (r *stockRepository) Get(ctx context.Context, v domain.Variant) (domain.StockEntry, error) {
	var rec stockModel
	if err := variantScope(r.db.WithContext(ctx), v).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.StockEntry{}, domain.ErrNotFound
		}
		return domain.StockEntry{}, err
	}
	return toDomainStock(rec), nil
}

func (r *stockRepository) List(ctx context.Context) ([]domain.StockEntry, error) {
	var rows []stockModel
	if err := r.db.WithContext(ctx).
		Order("product_id ASC, color ASC, size ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.StockEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainStock(row))
	}
	return out, nil
}

func (r *stockRepository) ListByProduct(ctx context.Context, productID int) ([]domain.StockEntry, error) {
	var rows []stockModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("color ASC, size ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.StockEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainStock(row))
	}
	return out, nil
}

// Reserve is a single conditional update. The availability check and
// the reserved increment happen in one statement, so two concurrent
// reservations for the last unit can never both succeed.
func (r *stockRepository) Reserve(ctx context.Context, v domain.Variant, qty int) error {
	res := variantScope(r.db.WithContext(ctx).Model(&stockModel{}), v).
		Where("quantity - reserved >= ?", qty).
		Updates(map[string]any{
			"reserved":   gorm.Expr("reserved + ?", qty),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var rec stockModel
		if err := variantScope(r.db.WithContext(ctx), v).Take(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		return domain.ErrInsufficientStock
	}
	return nil
}

// Release decrements reserved by qty when the full amount is held,
// otherwise clamps reserved to zero and reports the short release.
func (r *stockRepository) Release(ctx context.Context, v domain.Variant, qty int) (bool, error) {
	res := variantScope(r.db.WithContext(ctx).Model(&stockModel{}), v).
		Where("reserved >= ?", qty).
		Updates(map[string]any{
			"reserved":   gorm.Expr("reserved - ?", qty),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	clamp := variantScope(r.db.WithContext(ctx).Model(&stockModel{}), v).
		Updates(map[string]any{
			"reserved":   0,
			"updated_at": time.Now().UTC(),
		})
	if clamp.Error != nil {
		return false, clamp.Error
	}
	if clamp.RowsAffected == 0 {
		return false, domain.ErrNotFound
	}
	return false, nil
}

// Commit converts a hold into a sale. Requires the reservation to
// still exist so a double commit cannot drive quantities negative.
func (r *stockRepository) Commit(ctx context.Context, v domain.Variant, qty int) error {
	res := variantScope(r.db.WithContext(ctx).Model(&stockModel{}), v).
		Where("reserved >= ? AND quantity >= ?", qty, qty).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"reserved":   gorm.Expr("reserved - ?", qty),
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

func (r *stockRepository) Adjust(ctx context.Context, v domain.Variant, productName string, quantity int) (domain.StockEntry, error) {
	now := time.Now().UTC()
	rec := stockModel{
		ProductID:   v.ProductID,
		Color:       v.Color,
		Size:        v.Size,
		ProductName: productName,
		Quantity:    quantity,
		UpdatedAt:   now,
	}
	assignments := map[string]any{
		"quantity":   quantity,
		"updated_at": now,
	}
	if productName != "" {
		assignments["product_name"] = productName
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "color"}, {Name: "size"}},
			DoUpdates: clause.Assignments(assignments),
		}).
		Create(&rec).Error; err != nil {
		return domain.StockEntry{}, err
	}
	return r.Get(ctx, v)
}

func (r *stockRepository) SetThreshold(ctx context.Context, v domain.Variant, threshold int) error {
	res := variantScope(r.db.WithContext(ctx).Model(&stockModel{}), v).
		Updates(map[string]any{
			"low_stock_threshold": threshold,
			"updated_at":          time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
