package unit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/wdvjq5v655-netizen/gym/internal/application"
	"github.com/wdvjq5v655-netizen/gym/internal/domain"
)

func TestReserveReleaseRestoresLedger(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.seedStock(1, "black", "M", 25, 0)

	line := domain.ReservationLine{ProductID: 1, Color: "black", Size: "M", Quantity: 5}
	if _, err := f.service.Reserve(ctx, application.ReserveRequest{Items: []domain.ReservationLine{line}}); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	entry := f.stockEntry(1, "black", "M")
	if entry.Quantity != 25 || entry.Reserved != 5 {
		t.Fatalf("after reserve: quantity=%d reserved=%d", entry.Quantity, entry.Reserved)
	}

	if _, err := f.service.Release(ctx, application.ReserveRequest{Items: []domain.ReservationLine{line}}); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	entry = f.stockEntry(1, "black", "M")
	if entry.Quantity != 25 || entry.Reserved != 0 {
		t.Fatalf("after release: quantity=%d reserved=%d", entry.Quantity, entry.Reserved)
	}
}

func TestReserveCommitDecrementsBoth(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.seedStock(1, "black", "M", 25, 0)

	line := domain.ReservationLine{ProductID: 1, Color: "black", Size: "M", Quantity: 5}
	if _, err := f.service.Reserve(ctx, application.ReserveRequest{Items: []domain.ReservationLine{line}}); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if err := f.service.CommitReservation(ctx, []domain.ReservationLine{line}); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	entry := f.stockEntry(1, "black", "M")
	if entry.Quantity != 20 || entry.Reserved != 0 {
		t.Fatalf("after commit: quantity=%d reserved=%d, want 20/0", entry.Quantity, entry.Reserved)
	}
}

func TestCommitUnderThresholdEmitsLowStockEvent(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.seedStock(1, "black", "M", 10, 0)
	f.stock.mu.Lock()
	f.stock.entries[domain.Variant{ProductID: 1, Color: "black", Size: "M"}].LowStockThreshold = 3
	f.stock.mu.Unlock()

	// 10 available minus 5 leaves 5, still above the threshold of 3.
	line := domain.ReservationLine{ProductID: 1, Color: "black", Size: "M", Quantity: 5}
	if _, err := f.service.Reserve(ctx, application.ReserveRequest{Items: []domain.ReservationLine{line}}); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if err := f.service.CommitReservation(ctx, []domain.ReservationLine{line}); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if got := len(f.outbox.byType("stock.low")); got != 0 {
		t.Fatalf("commit above threshold emitted %d low-stock events", got)
	}

	// The next commit takes the variant to 2 available.
	line.Quantity = 3
	if _, err := f.service.Reserve(ctx, application.ReserveRequest{Items: []domain.ReservationLine{line}}); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if err := f.service.CommitReservation(ctx, []domain.ReservationLine{line}); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if got := len(f.outbox.byType("stock.low")); got != 1 {
		t.Fatalf("expected one low-stock event, got %d", got)
	}
}

func TestConcurrentReservesNeverOversell(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.seedStock(1, "black", "M", 10, 0)

	const attempts = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Reserve(ctx, application.ReserveRequest{Items: []domain.ReservationLine{
				{ProductID: 1, Color: "black", Size: "M", Quantity: 1},
			}})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrInsufficientStock) {
				t.Errorf("unexpected reserve error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Fatalf("expected exactly 10 successful reserves, got %d", succeeded)
	}
	entry := f.stockEntry(1, "black", "M")
	if entry.Reserved != 10 || entry.Quantity != 10 {
		t.Fatalf("ledger oversold: quantity=%d reserved=%d", entry.Quantity, entry.Reserved)
	}
}

func TestMultiLineReserveRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.seedStock(1, "black", "M", 10, 0)
	f.seedStock(1, "black", "L", 2, 0)

	_, err := f.service.Reserve(ctx, application.ReserveRequest{Items: []domain.ReservationLine{
		{ProductID: 1, Color: "black", Size: "M", Quantity: 3},
		{ProductID: 1, Color: "black", Size: "L", Quantity: 5},
	}})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	m := f.stockEntry(1, "black", "M")
	l := f.stockEntry(1, "black", "L")
	if m.Reserved != 0 || l.Reserved != 0 {
		t.Fatalf("rollback left holds: M reserved=%d, L reserved=%d", m.Reserved, l.Reserved)
	}
}

func TestReserveUnknownVariantFails(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	_, err := f.service.Reserve(ctx, application.ReserveRequest{Items: []domain.ReservationLine{
		{ProductID: 99, Color: "red", Size: "S", Quantity: 1},
	}})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock for unknown variant, got %v", err)
	}
}

func TestCheckVariantAndAvailability(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.seedStock(2, "white", "S", 4, 1)

	avail, err := f.service.CheckVariant(ctx, domain.Variant{ProductID: 2, Color: "white", Size: "S"})
	if err != nil {
		t.Fatalf("check variant failed: %v", err)
	}
	if !avail.Available || avail.Quantity != 3 {
		t.Fatalf("expected available/3, got %+v", avail)
	}

	missing, err := f.service.CheckVariant(ctx, domain.Variant{ProductID: 2, Color: "white", Size: "XL"})
	if err != nil {
		t.Fatalf("check missing variant failed: %v", err)
	}
	if missing.Available {
		t.Fatalf("missing variant should report unavailable")
	}

	byColor, err := f.service.ProductAvailability(ctx, 2)
	if err != nil {
		t.Fatalf("product availability failed: %v", err)
	}
	if byColor["white"]["S"] != 3 {
		t.Fatalf("expected white/S availability 3, got %+v", byColor)
	}
}

func TestAdjustStockCreatesEntry(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	entry, err := f.service.AdjustStock(ctx, application.AdjustStockRequest{
		ProductID:   3,
		ProductName: "Hoodie",
		Color:       "grey",
		Size:        "L",
		Quantity:    12,
	})
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if entry.Quantity != 12 || entry.ProductName != "Hoodie" {
		t.Fatalf("unexpected entry after adjust: %+v", entry)
	}
}
