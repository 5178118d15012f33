package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wdvjq5v655-netizen/gym/internal/domain"
)

// StockRepository owns the per-variant inventory ledger.
// Reserve/Release/Commit are single conditional updates so concurrent
// checkouts can never drive available quantity negative.
type StockRepository interface {
	Get(ctx context.Context, v domain.Variant) (domain.StockEntry, error)
	List(ctx context.Context) ([]domain.StockEntry, error)
	ListByProduct(ctx context.Context, productID int) ([]domain.StockEntry, error)
	// Reserve atomically increments the reserved count iff
	// quantity - reserved >= qty. Returns ErrInsufficientStock otherwise.
	Reserve(ctx context.Context, v domain.Variant, qty int) error
	// Release decrements reserved by qty, clamping at zero. The returned
	// bool is false when the ledger held fewer than qty reserved units.
	Release(ctx context.Context, v domain.Variant, qty int) (bool, error)
	// Commit converts a reservation into a sale, decrementing both
	// quantity and reserved.
	Commit(ctx context.Context, v domain.Variant, qty int) error
	// Adjust sets the absolute quantity for a variant, creating the
	// entry when absent.
	Adjust(ctx context.Context, v domain.Variant, productName string, quantity int) (domain.StockEntry, error)
	SetThreshold(ctx context.Context, v domain.Variant, threshold int) error
}

// OrderRepository persists confirmed orders.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	GetByID(ctx context.Context, orderID string) (domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (domain.Order, error)
	GetByPaymentSession(ctx context.Context, sessionID string) (domain.Order, error)
	List(ctx context.Context, status string, limit, offset int) ([]domain.Order, error)
	Update(ctx context.Context, order domain.Order) error
	// FinalizeCheckoutTx inserts the order, commits its stock
	// reservations, deletes the pending-order record and enqueues the
	// outbox events in one transaction.
	FinalizeCheckoutTx(ctx context.Context, order domain.Order, pendingSessionID string, events []OutboxEvent) error
	// AwardCreditsTx marks the order's credits as awarded iff they were
	// not already, and applies the user ledger increments in the same
	// transaction. Returns false when another caller won the race.
	AwardCreditsTx(ctx context.Context, orderID string, userID string, credits int, events []OutboxEvent) (bool, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
	RevenueTotals(ctx context.Context) (orders int, revenue float64, err error)
}

// PendingOrderRepository holds carts awaiting payment, keyed by the
// gateway checkout session id.
type PendingOrderRepository interface {
	Insert(ctx context.Context, pending domain.PendingOrder) error
	GetBySession(ctx context.Context, sessionID string) (domain.PendingOrder, error)
	Delete(ctx context.Context, sessionID string) error
	ListStale(ctx context.Context, olderThan time.Time, limit int) ([]domain.PendingOrder, error)
}

// PaymentTransactionRepository records gateway session outcomes for
// reconciliation.
type PaymentTransactionRepository interface {
	Insert(ctx context.Context, tx domain.PaymentTransaction) error
	UpdateStatus(ctx context.Context, sessionID, status string, at time.Time) error
	GetBySession(ctx context.Context, sessionID string) (domain.PaymentTransaction, error)
}

// WaitlistRepository owns waitlist membership. Entries are keyed by
// (email, product, variant); position is assigned at insert and never
// reshuffled by later merges. Count and NextPosition span the whole
// registry, not one product.
type WaitlistRepository interface {
	// GetByEmailProduct resolves an entry. An empty variant matches
	// any variant of the product.
	GetByEmailProduct(ctx context.Context, email string, productID int, variant string) (domain.WaitlistEntry, error)
	GetByAccessCode(ctx context.Context, code string) (domain.WaitlistEntry, error)
	Count(ctx context.Context) (int, error)
	NextPosition(ctx context.Context) (int, error)
	// InsertTx creates the entry and enqueues events atomically.
	InsertTx(ctx context.Context, entry domain.WaitlistEntry, events []OutboxEvent) error
	// UpdateSizesTx rewrites the merged size map on an existing entry,
	// leaving position and access code untouched.
	UpdateSizesTx(ctx context.Context, entryID string, sizes map[string]int, sizeDisplay string, events []OutboxEvent) error
	MarkNotified(ctx context.Context, entryID string, at time.Time) error
	MarkPurchased(ctx context.Context, entryID string, at time.Time) error
	List(ctx context.Context, productID int, limit, offset int) ([]domain.WaitlistEntry, error)
	Stats(ctx context.Context) (map[int]int, error)
}

// PromoRepository owns promo codes, including codes minted by credit
// redemption.
type PromoRepository interface {
	GetByCode(ctx context.Context, code string) (domain.PromoCode, error)
	Insert(ctx context.Context, promo domain.PromoCode) error
	// IncrementUses bumps the usage counter iff the limit is not yet
	// reached. Returns false when the code was exhausted concurrently.
	IncrementUses(ctx context.Context, code string) (bool, error)
	Deactivate(ctx context.Context, code string) error
	List(ctx context.Context) ([]domain.PromoCode, error)
}

// UserRepository persists storefront accounts and their credit ledger.
type UserRepository interface {
	Insert(ctx context.Context, user domain.User) error
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, userID string) (domain.User, error)
	Update(ctx context.Context, user domain.User) error
	// RedeemCreditsTx decrements the balance iff credits >= cost, bumps
	// total_credits_redeemed, inserts the minted promo code and
	// enqueues events in one transaction. Returns false on
	// insufficient balance.
	RedeemCreditsTx(ctx context.Context, userID string, cost int, promo domain.PromoCode, events []OutboxEvent) (bool, error)
}

// SubscriberRepository stores the marketing list.
type SubscriberRepository interface {
	Upsert(ctx context.Context, sub domain.Subscriber) error
	Deactivate(ctx context.Context, email string) error
	List(ctx context.Context, activeOnly bool) ([]domain.Subscriber, error)
	Count(ctx context.Context, activeOnly bool) (int, error)
}

// CartRepository tracks abandoned checkouts for the reminder sweep.
type CartRepository interface {
	Upsert(ctx context.Context, cart domain.AbandonedCart) error
	GetByEmail(ctx context.Context, email string) (domain.AbandonedCart, error)
	MarkRecovered(ctx context.Context, email string, at time.Time) error
	// ListDue returns unrecovered carts whose given reminder stage has
	// not been sent and whose age qualifies.
	ListDue(ctx context.Context, stage int, cutoff time.Time, limit int) ([]domain.AbandonedCart, error)
	// MarkStageSentTx flips the stage's sent flag iff it was unset and
	// enqueues the reminder event in the same transaction. Returns
	// false when another sweep already sent it.
	MarkStageSentTx(ctx context.Context, cartID string, stage int, at time.Time, event OutboxEvent) (bool, error)
}

// OutboxEvent is the write-side event payload prior to storage.
// It is adapter-neutral to keep application code independent of
// delivery specifics.
type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

// OutboxRecord represents durable outbox state, including retry/error
// metadata.
type OutboxRecord struct {
	OutboxID       uuid.UUID
	EventType      string
	PartitionKey   string
	Payload        []byte
	RetryCount     int
	LastError      *string
	CreatedAt      time.Time
	PublishedAt    *time.Time
	LastErrorAt    *time.Time
	ClaimToken     *string
	ClaimUntil     *time.Time
	DeadLetteredAt *time.Time
}

// OutboxRepository controls the publish-retry workflow for domain
// events. The explicit claim contract lets multiple workers drain the
// table without double delivery.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
}
