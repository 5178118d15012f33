package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wdvjq5v655-netizen/gym/internal/application"
	"github.com/wdvjq5v655-netizen/gym/internal/domain"
)

func (h *Handler) reserveStock(w http.ResponseWriter, r *http.Request) {
	var req application.ReserveRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "reserve_stock", err)
		return
	}
	res, err := h.service.Reserve(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "reserve_stock", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) releaseStock(w http.ResponseWriter, r *http.Request) {
	var req application.ReserveRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "release_stock", err)
		return
	}
	res, err := h.service.Release(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "release_stock", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) checkVariant(w http.ResponseWriter, r *http.Request) {
	productID := parseIntDefault(chi.URLParam(r, "product_id"), 0)
	v := domain.Variant{
		ProductID: productID,
		Color:     r.URL.Query().Get("color"),
		Size:      r.URL.Query().Get("size"),
	}
	if productID <= 0 || v.Color == "" || v.Size == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "product_id, color and size are required")
		return
	}
	res, err := h.service.CheckVariant(r.Context(), v)
	if err != nil {
		writeMappedError(r.Context(), w, "check_variant", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) productAvailability(w http.ResponseWriter, r *http.Request) {
	productID := parseIntDefault(chi.URLParam(r, "product_id"), 0)
	if productID <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "product_id is required")
		return
	}
	res, err := h.service.ProductAvailability(r.Context(), productID)
	if err != nil {
		writeMappedError(r.Context(), w, "product_availability", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) createCheckout(w http.ResponseWriter, r *http.Request) {
	var req application.CheckoutRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_checkout", err)
		return
	}
	res, err := h.service.CreateCheckoutSession(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_checkout", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) checkoutStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	res, err := h.service.CheckoutStatus(r.Context(), sessionID)
	if err != nil {
		writeMappedError(r.Context(), w, "checkout_status", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) trackOrder(w http.ResponseWriter, r *http.Request) {
	var req application.TrackOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "track_order", err)
		return
	}
	res, err := h.service.TrackOrder(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "track_order", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) joinWaitlist(w http.ResponseWriter, r *http.Request) {
	var req application.JoinWaitlistRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "join_waitlist", err)
		return
	}
	res, err := h.service.JoinWaitlist(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "join_waitlist", err)
		return
	}
	status := http.StatusCreated
	if res.Merged || res.AlreadyJoined {
		status = http.StatusOK
	}
	writeSuccess(w, status, res)
}

func (h *Handler) waitlistStatus(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	productID := parseIntDefault(r.URL.Query().Get("product_id"), 0)
	variant := r.URL.Query().Get("variant")
	res, err := h.service.WaitlistStatus(r.Context(), email, productID, variant)
	if err != nil {
		writeMappedError(r.Context(), w, "waitlist_status", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) verifyAccessCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "verify_access_code", err)
		return
	}
	entry, err := h.service.VerifyAccessCode(r.Context(), req.Code)
	if err != nil {
		writeMappedError(r.Context(), w, "verify_access_code", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"valid":      true,
		"product_id": entry.ProductID,
		"position":   entry.Position,
	})
}

func (h *Handler) validatePromo(w http.ResponseWriter, r *http.Request) {
	var req application.ValidatePromoRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "validate_promo", err)
		return
	}
	res, err := h.service.ValidatePromo(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "validate_promo", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	var req application.SubscribeRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "subscribe", err)
		return
	}
	if err := h.service.Subscribe(r.Context(), req); err != nil {
		writeMappedError(r.Context(), w, "subscribe", err)
		return
	}
	writeMessage(w, http.StatusCreated, "subscribed")
}

func (h *Handler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "unsubscribe", err)
		return
	}
	if err := h.service.Unsubscribe(r.Context(), req.Email); err != nil {
		writeMappedError(r.Context(), w, "unsubscribe", err)
		return
	}
	writeMessage(w, http.StatusOK, "unsubscribed")
}

func (h *Handler) cartActivity(w http.ResponseWriter, r *http.Request) {
	var req application.CartActivityRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "cart_activity", err)
		return
	}
	if err := h.service.TouchCart(r.Context(), req); err != nil {
		writeMappedError(r.Context(), w, "cart_activity", err)
		return
	}
	writeMessage(w, http.StatusOK, "recorded")
}

func (h *Handler) visitorHeartbeat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VisitorID string `json:"visitor_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "visitor_heartbeat", err)
		return
	}
	if err := h.service.RecordVisitor(r.Context(), req.VisitorID); err != nil {
		writeMappedError(r.Context(), w, "visitor_heartbeat", err)
		return
	}
	writeMessage(w, http.StatusOK, "recorded")
}

func (h *Handler) creditTiers(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.service.CreditTiers())
}

func (h *Handler) shippingRates(w http.ResponseWriter, r *http.Request) {
	var req application.ShippingRatesRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "shipping_rates", err)
		return
	}
	rates, err := h.service.QuoteShippingRates(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "shipping_rates", err)
		return
	}
	writeSuccess(w, http.StatusOK, rates)
}
