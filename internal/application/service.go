package application

import (
	"time"

	"github.com/wdvjq5v655-netizen/gym/internal/ports"
)

type Service struct {
	cfg          Config
	stock        ports.StockRepository
	orders       ports.OrderRepository
	pending      ports.PendingOrderRepository
	payments     ports.PaymentTransactionRepository
	waitlist     ports.WaitlistRepository
	promos       ports.PromoRepository
	users        ports.UserRepository
	subscribers  ports.SubscriberRepository
	carts        ports.CartRepository
	outbox       ports.OutboxRepository
	sessions     ports.SessionStore
	adminTokens  ports.AdminSessionStore
	visitors     ports.VisitorStore
	gateway      ports.PaymentGateway
	carrier      ports.ShippingCarrier
	hasher       ports.PasswordHasher
	nowFn        func() time.Time
}

type Dependencies struct {
	Config      Config
	Stock       ports.StockRepository
	Orders      ports.OrderRepository
	Pending     ports.PendingOrderRepository
	Payments    ports.PaymentTransactionRepository
	Waitlist    ports.WaitlistRepository
	Promos      ports.PromoRepository
	Users       ports.UserRepository
	Subscribers ports.SubscriberRepository
	Carts       ports.CartRepository
	Outbox      ports.OutboxRepository
	Sessions    ports.SessionStore
	AdminTokens ports.AdminSessionStore
	Visitors    ports.VisitorStore
	Gateway     ports.PaymentGateway
	Carrier     ports.ShippingCarrier
	Hasher      ports.PasswordHasher
}

func NewService(deps Dependencies) *Service {
	return &Service{
		cfg:         deps.Config,
		stock:       deps.Stock,
		orders:      deps.Orders,
		pending:     deps.Pending,
		payments:    deps.Payments,
		waitlist:    deps.Waitlist,
		promos:      deps.Promos,
		users:       deps.Users,
		subscribers: deps.Subscribers,
		carts:       deps.Carts,
		outbox:      deps.Outbox,
		sessions:    deps.Sessions,
		adminTokens: deps.AdminTokens,
		visitors:    deps.Visitors,
		gateway:     deps.Gateway,
		carrier:     deps.Carrier,
		hasher:      deps.Hasher,
		nowFn:       func() time.Time { return time.Now().UTC() },
	}
}
