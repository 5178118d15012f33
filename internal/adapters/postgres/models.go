package postgres

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stockModel struct {
	ProductID         int       `gorm:"column:product_id;primaryKey"`
	Color             string    `gorm:"column:color;primaryKey"`
	Size              string    `gorm:"column:size;primaryKey"`
	ProductName       string    `gorm:"column:product_name"`
	Quantity          int       `gorm:"column:quantity"`
	Reserved          int       `gorm:"column:reserved"`
	LowStockThreshold int       `gorm:"column:low_stock_threshold"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (stockModel) TableName() string { return "stock_entries" }

type orderModel struct {
	OrderID             string     `gorm:"column:order_id;primaryKey"`
	OrderNumber         string     `gorm:"column:order_number"`
	Items               string     `gorm:"column:items;type:jsonb"`
	Shipping            string     `gorm:"column:shipping;type:jsonb"`
	Subtotal            float64    `gorm:"column:subtotal"`
	Discount            float64    `gorm:"column:discount"`
	DiscountDescription string     `gorm:"column:discount_description"`
	ShippingCost        float64    `gorm:"column:shipping_cost"`
	Total               float64    `gorm:"column:total"`
	Status              string     `gorm:"column:status"`
	TrackingNumber      string     `gorm:"column:tracking_number"`
	Carrier             string     `gorm:"column:carrier"`
	EstimatedDelivery   string     `gorm:"column:estimated_delivery"`
	LabelURL            string     `gorm:"column:label_url"`
	Notes               string     `gorm:"column:notes"`
	CreditsAwarded      int        `gorm:"column:credits_awarded"`
	PaymentSessionID    *string    `gorm:"column:payment_session_id"`
	ShippedAt           *time.Time `gorm:"column:shipped_at"`
	DeliveredAt         *time.Time `gorm:"column:delivered_at"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at"`
}

func (orderModel) TableName() string { return "orders" }

type pendingOrderModel struct {
	SessionID           string    `gorm:"column:session_id;primaryKey"`
	Items               string    `gorm:"column:items;type:jsonb"`
	Shipping            string    `gorm:"column:shipping;type:jsonb"`
	Subtotal            float64   `gorm:"column:subtotal"`
	Discount            float64   `gorm:"column:discount"`
	DiscountCode        string    `gorm:"column:discount_code"`
	DiscountDescription string    `gorm:"column:discount_description"`
	ShippingCost        float64   `gorm:"column:shipping_cost"`
	Total               float64   `gorm:"column:total"`
	CreatedAt           time.Time `gorm:"column:created_at"`
}

func (pendingOrderModel) TableName() string { return "pending_orders" }

type paymentTransactionModel struct {
	TransactionID string    `gorm:"column:transaction_id;primaryKey"`
	SessionID     string    `gorm:"column:session_id"`
	OrderID       *string   `gorm:"column:order_id"`
	Amount        float64   `gorm:"column:amount"`
	Currency      string    `gorm:"column:currency"`
	Status        string    `gorm:"column:status"`
	PaymentStatus string    `gorm:"column:payment_status"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (paymentTransactionModel) TableName() string { return "payment_transactions" }

type waitlistModel struct {
	EntryID     string     `gorm:"column:entry_id;primaryKey"`
	Email       string     `gorm:"column:email"`
	ProductID   int        `gorm:"column:product_id"`
	ProductName string     `gorm:"column:product_name"`
	Variant     string     `gorm:"column:variant"`
	Sizes       string     `gorm:"column:sizes;type:jsonb"`
	SizeDisplay string     `gorm:"column:size_display"`
	Image       string     `gorm:"column:image"`
	Position    int        `gorm:"column:position"`
	AccessCode  string     `gorm:"column:access_code"`
	Notified    bool       `gorm:"column:notified"`
	NotifiedAt  *time.Time `gorm:"column:notified_at"`
	Purchased   bool       `gorm:"column:purchased"`
	PurchasedAt *time.Time `gorm:"column:purchased_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (waitlistModel) TableName() string { return "waitlist_entries" }

type promoModel struct {
	Code          string     `gorm:"column:code;primaryKey"`
	DiscountType  string     `gorm:"column:discount_type"`
	DiscountValue float64    `gorm:"column:discount_value"`
	MinOrder      float64    `gorm:"column:min_order"`
	MaxUses       *int       `gorm:"column:max_uses"`
	Uses          int        `gorm:"column:uses"`
	Active        bool       `gorm:"column:active"`
	ExpiresAt     *time.Time `gorm:"column:expires_at"`
	Description   string     `gorm:"column:description"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
}

func (promoModel) TableName() string { return "promo_codes" }

type userModel struct {
	UserID               string    `gorm:"column:user_id;primaryKey"`
	Email                string    `gorm:"column:email"`
	PasswordHash         string    `gorm:"column:password_hash"`
	FirstName            string    `gorm:"column:first_name"`
	LastName             string    `gorm:"column:last_name"`
	Credits              int       `gorm:"column:credits"`
	TotalCreditsEarned   int       `gorm:"column:total_credits_earned"`
	TotalCreditsRedeemed int       `gorm:"column:total_credits_redeemed"`
	FirstOrderDiscount   string    `gorm:"column:first_order_discount"`
	CreatedAt            time.Time `gorm:"column:created_at"`
	UpdatedAt            time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type subscriberModel struct {
	SubscriberID string    `gorm:"column:subscriber_id;primaryKey"`
	Email        string    `gorm:"column:email"`
	Source       string    `gorm:"column:source"`
	Active       bool      `gorm:"column:active"`
	SubscribedAt time.Time `gorm:"column:subscribed_at"`
}

func (subscriberModel) TableName() string { return "subscribers" }

type cartModel struct {
	CartID         string     `gorm:"column:cart_id;primaryKey"`
	Email          string     `gorm:"column:email"`
	Items          string     `gorm:"column:items;type:jsonb"`
	Subtotal       float64    `gorm:"column:subtotal"`
	Recovered      bool       `gorm:"column:recovered"`
	Email1Sent     bool       `gorm:"column:email_1_sent"`
	Email1SentAt   *time.Time `gorm:"column:email_1_sent_at"`
	Email2Sent     bool       `gorm:"column:email_2_sent"`
	Email2SentAt   *time.Time `gorm:"column:email_2_sent_at"`
	Email3Sent     bool       `gorm:"column:email_3_sent"`
	Email3SentAt   *time.Time `gorm:"column:email_3_sent_at"`
	LastActivityAt time.Time  `gorm:"column:last_activity_at"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (cartModel) TableName() string { return "abandoned_carts" }

type outboxModel struct {
	OutboxID       uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType      string     `gorm:"column:event_type"`
	PartitionKey   string     `gorm:"column:partition_key"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	PublishedAt    *time.Time `gorm:"column:published_at"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (outboxModel) TableName() string { return "store_outbox" }

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
