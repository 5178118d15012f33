package unit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wdvjq5v655-netizen/gym/internal/application"
	"github.com/wdvjq5v655-netizen/gym/internal/domain"
	"github.com/wdvjq5v655-netizen/gym/internal/ports"
)

type fixture struct {
	service     *application.Service
	stock       *fakeStock
	orders      *fakeOrders
	pending     *fakePending
	payments    *fakePayments
	waitlist    *fakeWaitlist
	promos      *fakePromos
	users       *fakeUsers
	subscribers *fakeSubscribers
	carts       *fakeCarts
	outbox      *fakeOutbox
	sessions    *fakeSessions
	gateway     *fakeGateway
	carrier     *fakeCarrier
}

func defaultTestConfig() application.Config {
	return application.Config{
		SessionTTL:       30 * 24 * time.Hour,
		AdminSessionTTL:  12 * time.Hour,
		AdminPassword:    "admin-test-password",
		WaitlistLimit:    3,
		VisitorWindow:    5 * time.Minute,
		FreeShippingMin:  75,
		FlatShippingRate: 5.95,
		SuccessURL:       "https://store.test/success",
		CancelURL:        "https://store.test/cancel",
	}
}

func newFixture() *fixture {
	return newFixtureWithConfig(defaultTestConfig())
}

func newFixtureWithConfig(cfg application.Config) *fixture {
	stock := &fakeStock{entries: map[domain.Variant]*domain.StockEntry{}}
	outbox := &fakeOutbox{}
	users := &fakeUsers{byEmail: map[string]domain.User{}, byID: map[string]domain.User{}}
	promos := &fakePromos{byCode: map[string]domain.PromoCode{}}
	users.promos = promos
	users.outbox = outbox
	pending := &fakePending{bySession: map[string]domain.PendingOrder{}}
	orders := &fakeOrders{
		byID:    map[string]domain.Order{},
		stock:   stock,
		pending: pending,
		users:   users,
		outbox:  outbox,
	}
	payments := &fakePayments{bySession: map[string]domain.PaymentTransaction{}}
	waitlist := &fakeWaitlist{entries: map[string]*domain.WaitlistEntry{}, outbox: outbox}
	subscribers := &fakeSubscribers{byEmail: map[string]domain.Subscriber{}}
	carts := &fakeCarts{byEmail: map[string]*domain.AbandonedCart{}, outbox: outbox}
	sessions := &fakeSessions{byToken: map[string]ports.SessionData{}}
	adminTokens := &fakeAdminSessions{tokens: map[string]bool{}}
	visitors := &fakeVisitors{seen: map[string]time.Time{}}
	gateway := &fakeGateway{sessions: map[string]ports.CheckoutSession{}}
	carrier := &fakeCarrier{}

	svc := application.NewService(application.Dependencies{
		Config:      cfg,
		Stock:       stock,
		Orders:      orders,
		Pending:     pending,
		Payments:    payments,
		Waitlist:    waitlist,
		Promos:      promos,
		Users:       users,
		Subscribers: subscribers,
		Carts:       carts,
		Outbox:      outbox,
		Sessions:    sessions,
		AdminTokens: adminTokens,
		Visitors:    visitors,
		Gateway:     gateway,
		Carrier:     carrier,
		Hasher:      &fakeHasher{},
	})

	return &fixture{
		service:     svc,
		stock:       stock,
		orders:      orders,
		pending:     pending,
		payments:    payments,
		waitlist:    waitlist,
		promos:      promos,
		users:       users,
		subscribers: subscribers,
		carts:       carts,
		outbox:      outbox,
		sessions:    sessions,
		gateway:     gateway,
		carrier:     carrier,
	}
}

// seedStock installs a variant ledger row directly.
func (f *fixture) seedStock(productID int, color, size string, quantity, reserved int) {
	f.stock.mu.Lock()
	defer f.stock.mu.Unlock()
	v := domain.Variant{ProductID: productID, Color: color, Size: size}
	f.stock.entries[v] = &domain.StockEntry{
		ProductID:   productID,
		ProductName: fmt.Sprintf("Product %d", productID),
		Color:       color,
		Size:        size,
		Quantity:    quantity,
		Reserved:    reserved,
	}
}

func (f *fixture) stockEntry(productID int, color, size string) domain.StockEntry {
	f.stock.mu.Lock()
	defer f.stock.mu.Unlock()
	entry := f.stock.entries[domain.Variant{ProductID: productID, Color: color, Size: size}]
	if entry == nil {
		return domain.StockEntry{}
	}
	return *entry
}

type fakeStock struct {
	mu      sync.Mutex
	entries map[domain.Variant]*domain.StockEntry
}

func (f *fakeStock) Get(_ context.Context, v domain.Variant) (domain.StockEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[v]
	if !ok {
		return domain.StockEntry{}, domain.ErrNotFound
	}
	return *entry, nil
}

func (f *fakeStock) List(_ context.Context) ([]domain.StockEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.StockEntry, 0, len(f.entries))
	for _, entry := range f.entries {
		out = append(out, *entry)
	}
	return out, nil
}

func (f *fakeStock) ListByProduct(_ context.Context, productID int) ([]domain.StockEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.StockEntry
	for _, entry := range f.entries {
		if entry.ProductID == productID {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (f *fakeStock) Reserve(_ context.Context, v domain.Variant, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[v]
	if !ok {
		return domain.ErrNotFound
	}
	if entry.Quantity-entry.Reserved < qty {
		return domain.ErrInsufficientStock
	}
	entry.Reserved += qty
	return nil
}

func (f *fakeStock) Release(_ context.Context, v domain.Variant, qty int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[v]
	if !ok {
		return false, domain.ErrNotFound
	}
	if entry.Reserved >= qty {
		entry.Reserved -= qty
		return true, nil
	}
	entry.Reserved = 0
	return false, nil
}

func (f *fakeStock) Commit(_ context.Context, v domain.Variant, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[v]
	if !ok {
		return domain.ErrNotFound
	}
	if entry.Reserved < qty || entry.Quantity < qty {
		return domain.ErrInsufficientStock
	}
	entry.Reserved -= qty
	entry.Quantity -= qty
	return nil
}

func (f *fakeStock) Adjust(_ context.Context, v domain.Variant, productName string, quantity int) (domain.StockEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[v]
	if !ok {
		entry = &domain.StockEntry{ProductID: v.ProductID, Color: v.Color, Size: v.Size}
		f.entries[v] = entry
	}
	if productName != "" {
		entry.ProductName = productName
	}
	entry.Quantity = quantity
	return *entry, nil
}

func (f *fakeStock) SetThreshold(_ context.Context, v domain.Variant, threshold int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[v]
	if !ok {
		return domain.ErrNotFound
	}
	entry.LowStockThreshold = threshold
	return nil
}

type fakeOrders struct {
	mu      sync.Mutex
	byID    map[string]domain.Order
	stock   *fakeStock
	pending *fakePending
	users   *fakeUsers
	outbox  *fakeOutbox
}

func (f *fakeOrders) Insert(_ context.Context, order domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[order.ID] = order
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, orderID string) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.byID[orderID]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	return order, nil
}

func (f *fakeOrders) GetByNumber(_ context.Context, orderNumber string) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.byID {
		if order.OrderNumber == orderNumber {
			return order, nil
		}
	}
	return domain.Order{}, domain.ErrNotFound
}

func (f *fakeOrders) GetByPaymentSession(_ context.Context, sessionID string) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bySessionLocked(sessionID)
}

func (f *fakeOrders) bySessionLocked(sessionID string) (domain.Order, error) {
	for _, order := range f.byID {
		if order.PaymentSessionID == sessionID && sessionID != "" {
			return order, nil
		}
	}
	return domain.Order{}, domain.ErrNotFound
}

func (f *fakeOrders) List(_ context.Context, status string, limit, offset int) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, order := range f.byID {
		if status == "" || string(order.Status) == status {
			out = append(out, order)
		}
	}
	return out, nil
}

func (f *fakeOrders) Update(_ context.Context, order domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[order.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[order.ID] = order
	return nil
}

func (f *fakeOrders) FinalizeCheckoutTx(ctx context.Context, order domain.Order, pendingSessionID string, events []ports.OutboxEvent) error {
	f.mu.Lock()
	if _, err := f.bySessionLocked(order.PaymentSessionID); err == nil {
		f.mu.Unlock()
		return domain.ErrConflict
	}
	f.byID[order.ID] = order
	f.mu.Unlock()

	for _, line := range order.ReservationLines() {
		if err := f.stock.Commit(ctx, line.Variant(), line.Quantity); err != nil {
			return err
		}
	}
	_ = f.pending.Delete(ctx, pendingSessionID)
	for _, event := range events {
		_ = f.outbox.Enqueue(ctx, event)
	}
	return nil
}

func (f *fakeOrders) AwardCreditsTx(ctx context.Context, orderID, userID string, credits int, events []ports.OutboxEvent) (bool, error) {
	f.mu.Lock()
	order, ok := f.byID[orderID]
	if !ok {
		f.mu.Unlock()
		return false, domain.ErrNotFound
	}
	if order.CreditsAwarded != 0 {
		f.mu.Unlock()
		return false, nil
	}
	order.CreditsAwarded = credits
	f.byID[orderID] = order
	f.mu.Unlock()

	if err := f.users.addCredits(userID, credits); err != nil {
		return false, err
	}
	for _, event := range events {
		_ = f.outbox.Enqueue(ctx, event)
	}
	return true, nil
}

func (f *fakeOrders) CountByStatus(_ context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int{}
	for _, order := range f.byID {
		out[string(order.Status)]++
	}
	return out, nil
}

func (f *fakeOrders) RevenueTotals(_ context.Context) (int, float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	revenue := 0.0
	for _, order := range f.byID {
		if order.Status == domain.StatusCancelled {
			continue
		}
		count++
		revenue += order.Total
	}
	return count, revenue, nil
}

type fakePending struct {
	mu        sync.Mutex
	bySession map[string]domain.PendingOrder
}

func (f *fakePending) Insert(_ context.Context, pending domain.PendingOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bySession[pending.SessionID] = pending
	return nil
}

func (f *fakePending) GetBySession(_ context.Context, sessionID string) (domain.PendingOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pending, ok := f.bySession[sessionID]
	if !ok {
		return domain.PendingOrder{}, domain.ErrNotFound
	}
	return pending, nil
}

func (f *fakePending) Delete(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bySession[sessionID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.bySession, sessionID)
	return nil
}

func (f *fakePending) ListStale(_ context.Context, olderThan time.Time, limit int) ([]domain.PendingOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.PendingOrder
	for _, pending := range f.bySession {
		if pending.CreatedAt.Before(olderThan) {
			out = append(out, pending)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fakePayments struct {
	mu        sync.Mutex
	bySession map[string]domain.PaymentTransaction
}

func (f *fakePayments) Insert(_ context.Context, tx domain.PaymentTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bySession[tx.SessionID] = tx
	return nil
}

func (f *fakePayments) UpdateStatus(_ context.Context, sessionID, status string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.bySession[sessionID]
	if !ok {
		return domain.ErrNotFound
	}
	tx.Status = status
	tx.UpdatedAt = at
	f.bySession[sessionID] = tx
	return nil
}

func (f *fakePayments) GetBySession(_ context.Context, sessionID string) (domain.PaymentTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.bySession[sessionID]
	if !ok {
		return domain.PaymentTransaction{}, domain.ErrNotFound
	}
	return tx, nil
}

type fakeWaitlist struct {
	mu      sync.Mutex
	entries map[string]*domain.WaitlistEntry
	outbox  *fakeOutbox
}

func waitlistKey(email string, productID int, variant string) string {
	return fmt.Sprintf("%s|%d|%s", strings.ToLower(email), productID, variant)
}

func (f *fakeWaitlist) GetByEmailProduct(_ context.Context, email string, productID int, variant string) (domain.WaitlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if variant != "" {
		entry, ok := f.entries[waitlistKey(email, productID, variant)]
		if !ok {
			return domain.WaitlistEntry{}, domain.ErrNotFound
		}
		return *entry, nil
	}
	for _, entry := range f.entries {
		if strings.EqualFold(entry.Email, email) && entry.ProductID == productID {
			return *entry, nil
		}
	}
	return domain.WaitlistEntry{}, domain.ErrNotFound
}

func (f *fakeWaitlist) GetByAccessCode(_ context.Context, code string) (domain.WaitlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, entry := range f.entries {
		if entry.AccessCode == code {
			return *entry, nil
		}
	}
	return domain.WaitlistEntry{}, domain.ErrNotFound
}

func (f *fakeWaitlist) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries), nil
}

func (f *fakeWaitlist) NextPosition(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, entry := range f.entries {
		if entry.Position > max {
			max = entry.Position
		}
	}
	return max + 1, nil
}

func (f *fakeWaitlist) InsertTx(ctx context.Context, entry domain.WaitlistEntry, events []ports.OutboxEvent) error {
	f.mu.Lock()
	key := waitlistKey(entry.Email, entry.ProductID, entry.Variant)
	if _, ok := f.entries[key]; ok {
		f.mu.Unlock()
		return domain.ErrConflict
	}
	stored := entry
	f.entries[key] = &stored
	f.mu.Unlock()
	for _, event := range events {
		_ = f.outbox.Enqueue(ctx, event)
	}
	return nil
}

func (f *fakeWaitlist) UpdateSizesTx(ctx context.Context, entryID string, sizes map[string]int, sizeDisplay string, events []ports.OutboxEvent) error {
	f.mu.Lock()
	var found *domain.WaitlistEntry
	for _, entry := range f.entries {
		if entry.ID == entryID {
			found = entry
			break
		}
	}
	if found == nil {
		f.mu.Unlock()
		return domain.ErrNotFound
	}
	found.Sizes = sizes
	found.SizeDisplay = sizeDisplay
	f.mu.Unlock()
	for _, event := range events {
		_ = f.outbox.Enqueue(ctx, event)
	}
	return nil
}

func (f *fakeWaitlist) MarkNotified(_ context.Context, entryID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, entry := range f.entries {
		if entry.ID == entryID {
			entry.Notified = true
			entry.UpdatedAt = at
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeWaitlist) MarkPurchased(_ context.Context, entryID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, entry := range f.entries {
		if entry.ID == entryID {
			entry.Purchased = true
			entry.UpdatedAt = at
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeWaitlist) List(_ context.Context, productID int, limit, offset int) ([]domain.WaitlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.WaitlistEntry
	for _, entry := range f.entries {
		if productID == 0 || entry.ProductID == productID {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (f *fakeWaitlist) Stats(_ context.Context) (map[int]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[int]int{}
	for _, entry := range f.entries {
		out[entry.ProductID]++
	}
	return out, nil
}

type fakePromos struct {
	mu     sync.Mutex
	byCode map[string]domain.PromoCode
}

func (f *fakePromos) GetByCode(_ context.Context, code string) (domain.PromoCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	promo, ok := f.byCode[strings.ToUpper(code)]
	if !ok {
		return domain.PromoCode{}, domain.ErrNotFound
	}
	return promo, nil
}

func (f *fakePromos) Insert(_ context.Context, promo domain.PromoCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToUpper(promo.Code)
	if _, ok := f.byCode[key]; ok {
		return domain.ErrConflict
	}
	f.byCode[key] = promo
	return nil
}

func (f *fakePromos) IncrementUses(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToUpper(code)
	promo, ok := f.byCode[key]
	if !ok {
		return false, domain.ErrNotFound
	}
	if promo.Exhausted() {
		return false, nil
	}
	promo.Uses++
	f.byCode[key] = promo
	return true, nil
}

func (f *fakePromos) Deactivate(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToUpper(code)
	promo, ok := f.byCode[key]
	if !ok {
		return domain.ErrNotFound
	}
	promo.Active = false
	f.byCode[key] = promo
	return nil
}

func (f *fakePromos) List(_ context.Context) ([]domain.PromoCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.PromoCode, 0, len(f.byCode))
	for _, promo := range f.byCode {
		out = append(out, promo)
	}
	return out, nil
}

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]domain.User
	byID    map[string]domain.User
	promos  *fakePromos
	outbox  *fakeOutbox
}

func (f *fakeUsers) Insert(_ context.Context, user domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[user.Email]; ok {
		return domain.ErrConflict
	}
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (f *fakeUsers) GetByID(_ context.Context, userID string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (f *fakeUsers) Update(_ context.Context, user domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[user.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUsers) addCredits(userID string, credits int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	user.Credits += credits
	user.TotalCreditsEarned += credits
	f.byID[userID] = user
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUsers) RedeemCreditsTx(ctx context.Context, userID string, cost int, promo domain.PromoCode, events []ports.OutboxEvent) (bool, error) {
	f.mu.Lock()
	user, ok := f.byID[userID]
	if !ok {
		f.mu.Unlock()
		return false, domain.ErrNotFound
	}
	if user.Credits < cost {
		f.mu.Unlock()
		return false, nil
	}
	user.Credits -= cost
	user.TotalCreditsRedeemed += cost
	f.byID[userID] = user
	f.byEmail[user.Email] = user
	f.mu.Unlock()

	if err := f.promos.Insert(ctx, promo); err != nil {
		return false, err
	}
	for _, event := range events {
		_ = f.outbox.Enqueue(ctx, event)
	}
	return true, nil
}

type fakeSubscribers struct {
	mu      sync.Mutex
	byEmail map[string]domain.Subscriber
}

func (f *fakeSubscribers) Upsert(_ context.Context, sub domain.Subscriber) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.byEmail[sub.Email]; ok {
		existing.Active = true
		existing.Source = sub.Source
		f.byEmail[sub.Email] = existing
		return nil
	}
	f.byEmail[sub.Email] = sub
	return nil
}

func (f *fakeSubscribers) Deactivate(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return domain.ErrNotFound
	}
	sub.Active = false
	f.byEmail[sub.Email] = sub
	return nil
}

func (f *fakeSubscribers) List(_ context.Context, activeOnly bool) ([]domain.Subscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Subscriber
	for _, sub := range f.byEmail {
		if !activeOnly || sub.Active {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (f *fakeSubscribers) Count(ctx context.Context, activeOnly bool) (int, error) {
	subs, err := f.List(ctx, activeOnly)
	return len(subs), err
}

type fakeCarts struct {
	mu      sync.Mutex
	byEmail map[string]*domain.AbandonedCart
	outbox  *fakeOutbox
}

func (f *fakeCarts) Upsert(_ context.Context, cart domain.AbandonedCart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := cart
	f.byEmail[cart.Email] = &stored
	return nil
}

func (f *fakeCarts) GetByEmail(_ context.Context, email string) (domain.AbandonedCart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return domain.AbandonedCart{}, domain.ErrNotFound
	}
	return *cart, nil
}

func (f *fakeCarts) MarkRecovered(_ context.Context, email string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return domain.ErrNotFound
	}
	cart.Recovered = true
	cart.UpdatedAt = at
	return nil
}

func (f *fakeCarts) ListDue(_ context.Context, stage int, cutoff time.Time, limit int) ([]domain.AbandonedCart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.AbandonedCart
	for _, cart := range f.byEmail {
		if cart.Recovered || cart.StageSent(stage) {
			continue
		}
		if cart.LastActivityAt.Before(cutoff) {
			out = append(out, *cart)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeCarts) MarkStageSentTx(ctx context.Context, cartID string, stage int, at time.Time, event ports.OutboxEvent) (bool, error) {
	f.mu.Lock()
	var found *domain.AbandonedCart
	for _, cart := range f.byEmail {
		if cart.ID == cartID {
			found = cart
			break
		}
	}
	if found == nil {
		f.mu.Unlock()
		return false, domain.ErrNotFound
	}
	if found.StageSent(stage) {
		f.mu.Unlock()
		return false, nil
	}
	switch stage {
	case domain.CartStageFirst:
		found.Email1Sent = true
		found.Email1SentAt = &at
	case domain.CartStageSecond:
		found.Email2Sent = true
		found.Email2SentAt = &at
	case domain.CartStageThird:
		found.Email3Sent = true
		found.Email3SentAt = &at
	}
	f.mu.Unlock()
	_ = f.outbox.Enqueue(ctx, event)
	return true, nil
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []ports.OutboxEvent
}

func (f *fakeOutbox) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutbox) ClaimUnpublished(_ context.Context, limit int, claimToken string, claimUntil time.Time) ([]ports.OutboxRecord, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error {
	return nil
}

func (f *fakeOutbox) MarkFailed(_ context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	return nil
}

func (f *fakeOutbox) MarkDeadLettered(_ context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	return nil
}

func (f *fakeOutbox) byType(eventType string) []ports.OutboxEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ports.OutboxEvent
	for _, event := range f.events {
		if event.EventType == eventType {
			out = append(out, event)
		}
	}
	return out
}

type fakeSessions struct {
	mu      sync.Mutex
	byToken map[string]ports.SessionData
}

func (f *fakeSessions) Put(_ context.Context, token string, data ports.SessionData, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byToken[token] = data
	return nil
}

func (f *fakeSessions) Get(_ context.Context, token string) (*ports.SessionData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.byToken[token]
	if !ok {
		return nil, nil
	}
	return &data, nil
}

func (f *fakeSessions) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byToken, token)
	return nil
}

type fakeAdminSessions struct {
	mu     sync.Mutex
	tokens map[string]bool
}

func (f *fakeAdminSessions) Put(_ context.Context, token string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = true
	return nil
}

func (f *fakeAdminSessions) Exists(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokens[token], nil
}

func (f *fakeAdminSessions) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

type fakeVisitors struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func (f *fakeVisitors) Touch(_ context.Context, visitorID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[visitorID] = at
	return nil
}

func (f *fakeVisitors) ActiveCount(_ context.Context, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, at := range f.seen {
		if !at.Before(since) {
			count++
		}
	}
	return count, nil
}

type fakeGateway struct {
	mu        sync.Mutex
	sessions  map[string]ports.CheckoutSession
	createErr error
	nextID    int
}

func (f *fakeGateway) CreateSession(_ context.Context, params ports.CheckoutSessionParams) (ports.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return ports.CheckoutSession{}, f.createErr
	}
	f.nextID++
	session := ports.CheckoutSession{
		ID:            fmt.Sprintf("cs_test_%d", f.nextID),
		URL:           fmt.Sprintf("https://checkout.test/cs_test_%d", f.nextID),
		Status:        "open",
		PaymentStatus: "unpaid",
		AmountTotal:   params.Total,
		Email:         params.Email,
	}
	f.sessions[session.ID] = session
	return session, nil
}

func (f *fakeGateway) GetSession(_ context.Context, sessionID string) (ports.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return ports.CheckoutSession{}, fmt.Errorf("unknown session %s", sessionID)
	}
	return session, nil
}

func (f *fakeGateway) VerifyWebhook(payload []byte, signature string) error {
	if signature == "" {
		return fmt.Errorf("missing signature")
	}
	return nil
}

func (f *fakeGateway) setStatus(sessionID, status, paymentStatus string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session := f.sessions[sessionID]
	session.ID = sessionID
	session.Status = status
	session.PaymentStatus = paymentStatus
	f.sessions[sessionID] = session
}

type fakeCarrier struct {
	mu       sync.Mutex
	labelErr error
	rates    []ports.ShippingRate
}

func (f *fakeCarrier) QuoteRates(_ context.Context, addr domain.ShippingAddress, items []domain.OrderItem) ([]ports.ShippingRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.rates) > 0 {
		return f.rates, nil
	}
	return []ports.ShippingRate{{ID: "rate_1", Carrier: "USPS", Service: "Priority", Amount: 8.95, Currency: "USD", Days: 3}}, nil
}

func (f *fakeCarrier) PurchaseLabel(_ context.Context, rateID string) (ports.ShippingLabel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.labelErr != nil {
		return ports.ShippingLabel{}, f.labelErr
	}
	return ports.ShippingLabel{
		TrackingNumber: "9400100000000000000000",
		Carrier:        "USPS",
		LabelURL:       "https://labels.test/label.pdf",
	}, nil
}

func (f *fakeCarrier) TrackShipment(_ context.Context, carrier, trackingNumber string) (string, error) {
	return "IN_TRANSIT", nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return fmt.Errorf("password mismatch")
	}
	return nil
}
