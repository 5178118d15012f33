package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/wdvjq5v655-netizen/gym/internal/domain"
	"github.com/wdvjq5v655-netizen/gym/internal/ports"
)

// Reserve places holds on every line of a cart, or none of them. On a
// failed line the holds already taken are rolled back in reverse order
// so a losing checkout leaves the ledger exactly as it found it.
func (s *Service) Reserve(ctx context.Context, req ReserveRequest) (ReserveResponse, error) {
	if err := validateLines(req.Items); err != nil {
		return ReserveResponse{}, err
	}

	for i, line := range req.Items {
		if err := s.stock.Reserve(ctx, line.Variant(), line.Quantity); err != nil {
			for j := i - 1; j >= 0; j-- {
				undo := req.Items[j]
				if _, rerr := s.stock.Release(ctx, undo.Variant(), undo.Quantity); rerr != nil {
					slog.Default().ErrorContext(ctx, "reservation rollback failed",
						"layer", "application",
						"operation", "reserve",
						"product_id", undo.ProductID,
						"color", undo.Color,
						"size", undo.Size,
						"error", rerr,
					)
				}
			}
			if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrNotFound) {
				return ReserveResponse{}, fmt.Errorf("%w: %d/%s/%s", domain.ErrInsufficientStock, line.ProductID, line.Color, line.Size)
			}
			return ReserveResponse{}, err
		}
	}

	return ReserveResponse{Reserved: true, Items: req.Items}, nil
}

// Release gives back reservation holds. Over-release is clamped at
// zero and logged rather than failed, since a duplicate release is a
// caller retry, not a ledger error.
func (s *Service) Release(ctx context.Context, req ReserveRequest) (ReleaseResponse, error) {
	if err := validateLines(req.Items); err != nil {
		return ReleaseResponse{}, err
	}

	for _, line := range req.Items {
		full, err := s.stock.Release(ctx, line.Variant(), line.Quantity)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return ReleaseResponse{}, err
		}
		if !full {
			slog.Default().WarnContext(ctx, "release clamped to reserved balance",
				"layer", "application",
				"operation", "release",
				"product_id", line.ProductID,
				"color", line.Color,
				"size", line.Size,
				"quantity", line.Quantity,
			)
		}
	}

	return ReleaseResponse{Released: true}, nil
}

// CommitReservation converts holds into sales after payment settles.
func (s *Service) CommitReservation(ctx context.Context, items []domain.ReservationLine) error {
	if err := validateLines(items); err != nil {
		return err
	}
	for _, line := range items {
		if err := s.stock.Commit(ctx, line.Variant(), line.Quantity); err != nil {
			return fmt.Errorf("commit %d/%s/%s: %w", line.ProductID, line.Color, line.Size, err)
		}
		s.warnLowStock(ctx, line.Variant())
	}
	return nil
}

func (s *Service) warnLowStock(ctx context.Context, v domain.Variant) {
	entry, err := s.stock.Get(ctx, v)
	if err != nil || !entry.LowStock() {
		return
	}
	slog.Default().WarnContext(ctx, "variant at or below low-stock threshold",
		"layer", "application",
		"operation", "commit",
		"product_id", entry.ProductID,
		"color", entry.Color,
		"size", entry.Size,
		"available", entry.Available(),
		"threshold", entry.LowStockThreshold,
	)

	payload, _ := json.Marshal(map[string]any{
		"product_id": entry.ProductID,
		"color":      entry.Color,
		"size":       entry.Size,
		"available":  entry.Available(),
		"threshold":  entry.LowStockThreshold,
	})
	if err := s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventTypeLowStock,
		PartitionKey: fmt.Sprintf("%d/%s/%s", entry.ProductID, entry.Color, entry.Size),
		Payload:      payload,
		OccurredAt:   s.nowFn(),
	}); err != nil {
		slog.Default().WarnContext(ctx, "failed to enqueue low-stock event",
			"layer", "application",
			"operation", "commit",
			"error", err,
		)
	}
}

// CheckVariant reports availability for a single variant.
func (s *Service) CheckVariant(ctx context.Context, v domain.Variant) (StockAvailability, error) {
	entry, err := s.stock.Get(ctx, v)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return StockAvailability{Available: false, Quantity: 0}, nil
		}
		return StockAvailability{}, err
	}
	avail := entry.Available()
	if avail < 0 {
		avail = 0
	}
	return StockAvailability{Available: avail > 0, Quantity: avail}, nil
}

// ProductAvailability returns the color/size availability map for one
// product, shaped for the storefront's variant picker.
func (s *Service) ProductAvailability(ctx context.Context, productID int) (map[string]map[string]int, error) {
	entries, err := s.stock.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]map[string]int)
	for _, e := range entries {
		sizes, ok := out[e.Color]
		if !ok {
			sizes = make(map[string]int)
			out[e.Color] = sizes
		}
		avail := e.Available()
		if avail < 0 {
			avail = 0
		}
		sizes[e.Size] = avail
	}
	return out, nil
}

// ListStock returns the full ledger for the admin console.
func (s *Service) ListStock(ctx context.Context) ([]domain.StockEntry, error) {
	return s.stock.List(ctx)
}

// AdjustStock sets the absolute on-hand quantity for a variant.
func (s *Service) AdjustStock(ctx context.Context, req AdjustStockRequest) (domain.StockEntry, error) {
	if req.Quantity < 0 {
		return domain.StockEntry{}, fmt.Errorf("%w: quantity cannot be negative", domain.ErrInvalidInput)
	}
	if req.Color == "" || req.Size == "" {
		return domain.StockEntry{}, fmt.Errorf("%w: color and size are required", domain.ErrInvalidInput)
	}
	v := domain.Variant{ProductID: req.ProductID, Color: req.Color, Size: req.Size}
	return s.stock.Adjust(ctx, v, req.ProductName, req.Quantity)
}

// BulkAdjustStock applies a batch of absolute quantity updates,
// reporting per-line failures without aborting the batch.
func (s *Service) BulkAdjustStock(ctx context.Context, reqs []AdjustStockRequest) ([]domain.StockEntry, []error) {
	var entries []domain.StockEntry
	var errs []error
	for _, req := range reqs {
		entry, err := s.AdjustStock(ctx, req)
		if err != nil {
			errs = append(errs, fmt.Errorf("%d/%s/%s: %w", req.ProductID, req.Color, req.Size, err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, errs
}

// InventoryStatsReport aggregates ledger totals for the dashboard.
func (s *Service) InventoryStatsReport(ctx context.Context) (InventoryStats, error) {
	entries, err := s.stock.List(ctx)
	if err != nil {
		return InventoryStats{}, err
	}
	stats := InventoryStats{TotalVariants: len(entries)}
	for _, e := range entries {
		stats.TotalUnits += e.Quantity
		stats.TotalReserved += e.Reserved
		if e.Available() <= 0 {
			stats.OutOfStock = append(stats.OutOfStock, e)
		} else if e.LowStock() {
			stats.LowStock = append(stats.LowStock, e)
		}
	}
	return stats, nil
}
