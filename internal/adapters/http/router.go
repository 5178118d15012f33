package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wdvjq5v655-netizen/gym/internal/application"
	"github.com/wdvjq5v655-netizen/gym/internal/ports"
)

// Handler exposes the storefront service over HTTP.
type Handler struct {
	service *application.Service
	gateway ports.PaymentGateway
}

func NewHandler(service *application.Service, gateway ports.PaymentGateway) *Handler {
	return &Handler{service: service, gateway: gateway}
}

// NewRouter builds the storefront API router.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)

	r.Route("/store/v1", func(r chi.Router) {
		r.Post("/stock/reserve", h.reserveStock)
		r.Post("/stock/release", h.releaseStock)
		r.Get("/stock/{product_id}/check", h.checkVariant)
		r.Get("/stock/{product_id}/availability", h.productAvailability)

		r.Post("/checkout", h.createCheckout)
		r.Get("/checkout/{session_id}/status", h.checkoutStatus)
		r.Post("/orders/track", h.trackOrder)

		r.Post("/waitlist", h.joinWaitlist)
		r.Get("/waitlist/status", h.waitlistStatus)
		r.Post("/waitlist/verify", h.verifyAccessCode)

		r.Post("/promo/validate", h.validatePromo)
		r.Get("/credits/tiers", h.creditTiers)

		r.Post("/shipping/rates", h.shippingRates)

		r.Post("/subscribe", h.subscribe)
		r.Post("/unsubscribe", h.unsubscribe)
		r.Post("/cart/activity", h.cartActivity)
		r.Post("/visitors/heartbeat", h.visitorHeartbeat)

		r.Post("/webhooks/stripe", h.paymentWebhook)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.signup)
			r.Post("/login", h.login)

			r.Group(func(r chi.Router) {
				r.Use(h.authMiddleware)
				r.Post("/logout", h.logout)
				r.Get("/me", h.me)
				r.Get("/credits", h.creditBalance)
				r.Post("/credits/redeem", h.redeemCredits)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.adminLogin)

			r.Group(func(r chi.Router) {
				r.Use(h.adminMiddleware)
				r.Post("/logout", h.adminLogout)
				r.Get("/dashboard", h.dashboard)

				r.Get("/orders", h.listOrders)
				r.Post("/orders", h.createOrder)
				r.Get("/orders/stats", h.orderStats)
				r.Get("/orders/{order_id}", h.getOrder)
				r.Patch("/orders/{order_id}", h.updateOrder)
				r.Post("/orders/{order_id}/label", h.purchaseLabel)
				r.Get("/orders/{order_id}/shipment", h.trackShipment)

				r.Get("/stock", h.listStock)
				r.Post("/stock/adjust", h.adjustStock)
				r.Post("/stock/bulk-adjust", h.bulkAdjustStock)
				r.Get("/stock/stats", h.inventoryStats)

				r.Get("/waitlist", h.listWaitlist)
				r.Post("/waitlist/{entry_id}/notify", h.notifyWaitlistEntry)

				r.Get("/promos", h.listPromos)
				r.Post("/promos", h.createPromo)
				r.Delete("/promos/{code}", h.deactivatePromo)

				r.Get("/subscribers", h.listSubscribers)
				r.Get("/visitors", h.activeVisitors)
			})
		})
	})

	return r
}
