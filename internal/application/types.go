package application

import (
	"time"

	"github.com/wdvjq5v655-netizen/gym/internal/domain"
)

type Config struct {
	SessionTTL       time.Duration
	AdminSessionTTL  time.Duration
	AdminPassword    string
	WaitlistLimit    int
	VisitorWindow    time.Duration
	FreeShippingMin  float64
	FlatShippingRate float64
	SuccessURL       string
	CancelURL        string
}

type ReserveRequest struct {
	Items []domain.ReservationLine `json:"items"`
}

type ReserveResponse struct {
	Reserved bool                     `json:"reserved"`
	Items    []domain.ReservationLine `json:"items"`
}

type ReleaseResponse struct {
	Released bool `json:"released"`
}

type AdjustStockRequest struct {
	ProductID   int    `json:"product_id"`
	ProductName string `json:"product_name"`
	Color       string `json:"color"`
	Size        string `json:"size"`
	Quantity    int    `json:"quantity"`
}

type StockAvailability struct {
	Available bool `json:"available"`
	Quantity  int  `json:"quantity"`
}

type InventoryStats struct {
	TotalVariants int                `json:"total_variants"`
	TotalUnits    int                `json:"total_units"`
	TotalReserved int                `json:"total_reserved"`
	LowStock      []domain.StockEntry `json:"low_stock"`
	OutOfStock    []domain.StockEntry `json:"out_of_stock"`
}

type CreateOrderRequest struct {
	Items            []domain.OrderItem     `json:"items"`
	Shipping         domain.ShippingAddress `json:"shipping"`
	Subtotal         float64                `json:"subtotal"`
	Discount         float64                `json:"discount"`
	DiscountCode     string                 `json:"discount_code"`
	ShippingCost     float64                `json:"shipping_cost"`
	Total            float64                `json:"total"`
	PaymentSessionID string                 `json:"payment_session_id"`
	Notes            string                 `json:"notes"`
}

type UpdateOrderRequest struct {
	Status            string `json:"status"`
	TrackingNumber    string `json:"tracking_number"`
	Carrier           string `json:"carrier"`
	EstimatedDelivery string `json:"estimated_delivery"`
	Notes             string `json:"notes"`
}

type TrackOrderRequest struct {
	OrderNumber string `json:"order_number"`
	Email       string `json:"email"`
}

type TrackingStep struct {
	Status    string     `json:"status"`
	Label     string     `json:"label"`
	Completed bool       `json:"completed"`
	Current   bool       `json:"current"`
	At        *time.Time `json:"at,omitempty"`
}

type TrackOrderResponse struct {
	OrderNumber       string             `json:"order_number"`
	Status            string             `json:"status"`
	Items             []domain.OrderItem `json:"items"`
	Total             float64            `json:"total"`
	TrackingNumber    string             `json:"tracking_number,omitempty"`
	Carrier           string             `json:"carrier,omitempty"`
	EstimatedDelivery string             `json:"estimated_delivery,omitempty"`
	Timeline          []TrackingStep     `json:"timeline"`
	CreatedAt         time.Time          `json:"created_at"`
}

type OrderStats struct {
	TotalOrders  int            `json:"total_orders"`
	TotalRevenue float64        `json:"total_revenue"`
	ByStatus     map[string]int `json:"by_status"`
}

type CheckoutRequest struct {
	Items        []domain.OrderItem     `json:"items"`
	Shipping     domain.ShippingAddress `json:"shipping"`
	DiscountCode string                 `json:"discount_code"`
	CreditsCode  string                 `json:"credits_code"`
}

type CheckoutResponse struct {
	SessionID   string  `json:"session_id"`
	CheckoutURL string  `json:"checkout_url"`
	Subtotal    float64 `json:"subtotal"`
	Discount    float64 `json:"discount"`
	Shipping    float64 `json:"shipping"`
	Total       float64 `json:"total"`
}

type CheckoutStatusResponse struct {
	Status      string `json:"status"`
	OrderNumber string `json:"order_number,omitempty"`
	OrderID     string `json:"order_id,omitempty"`
}

type JoinWaitlistRequest struct {
	Email       string                 `json:"email"`
	ProductID   int                    `json:"product_id"`
	ProductName string                 `json:"product_name"`
	Variant     string                 `json:"variant"`
	Sizes       []domain.SizeSelection `json:"sizes"`
	Size        string                 `json:"size"`
	Image       string                 `json:"image"`
	ForceAdd    bool                   `json:"force_add"`
}

type JoinWaitlistResponse struct {
	Position      int            `json:"position"`
	AccessCode    string         `json:"access_code"`
	Sizes         map[string]int `json:"sizes"`
	Merged        bool           `json:"merged"`
	AlreadyJoined bool           `json:"already_joined,omitempty"`
}

type WaitlistStatusResponse struct {
	OnWaitlist bool           `json:"on_waitlist"`
	Position   int            `json:"position,omitempty"`
	Sizes      map[string]int `json:"sizes,omitempty"`
	Notified   bool           `json:"notified,omitempty"`
}

type ValidatePromoRequest struct {
	Code     string  `json:"code"`
	Subtotal float64 `json:"subtotal"`
}

type ValidatePromoResponse struct {
	Valid       bool    `json:"valid"`
	Code        string  `json:"code"`
	Discount    float64 `json:"discount"`
	Description string  `json:"description,omitempty"`
}

type CreatePromoRequest struct {
	Code          string     `json:"code"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue float64    `json:"discount_value"`
	MinOrder      float64    `json:"min_order"`
	MaxUses       *int       `json:"max_uses"`
	ExpiresAt     *time.Time `json:"expires_at"`
	Description   string     `json:"description"`
}

type RedeemCreditsResponse struct {
	Code             string  `json:"code"`
	Discount         float64 `json:"discount"`
	RemainingCredits int     `json:"remaining_credits"`
}

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token   string               `json:"token"`
	User    domain.PublicProfile `json:"user"`
	Expires time.Time            `json:"expires"`
}

type ShippingRatesRequest struct {
	Address domain.ShippingAddress `json:"address"`
	Items   []domain.OrderItem     `json:"items"`
}

type PurchaseLabelRequest struct {
	OrderID string `json:"order_id"`
	RateID  string `json:"rate_id"`
}

type SubscribeRequest struct {
	Email  string `json:"email"`
	Source string `json:"source"`
}

type CartActivityRequest struct {
	Email    string             `json:"email"`
	Items    []domain.OrderItem `json:"items"`
	Subtotal float64            `json:"subtotal"`
}

type AdminLoginRequest struct {
	Password string `json:"password"`
}

type AdminLoginResponse struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type DashboardStats struct {
	Orders      OrderStats     `json:"orders"`
	Inventory   InventoryStats `json:"inventory"`
	Waitlist    map[int]int    `json:"waitlist"`
	Subscribers int            `json:"subscribers"`
	Visitors    int            `json:"visitors"`
}
