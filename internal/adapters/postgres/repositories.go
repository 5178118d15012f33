package postgres

import (
	"github.com/wdvjq5v655-netizen/gym/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
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
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Stock:       &stockRepository{db: db},
		Orders:      &orderRepository{db: db},
		Pending:     &pendingOrderRepository{db: db},
		Payments:    &paymentTransactionRepository{db: db},
		Waitlist:    &waitlistRepository{db: db},
		Promos:      &promoRepository{db: db},
		Users:       &userRepository{db: db},
		Subscribers: &subscriberRepository{db: db},
		Carts:       &cartRepository{db: db},
		Outbox:      &outboxRepository{db: db},
	}
}
