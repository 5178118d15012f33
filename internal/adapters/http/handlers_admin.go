package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wdvjq5v655-netizen/gym/internal/application"
)

func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req application.AdminLoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "admin_login", err)
		return
	}
	res, err := h.service.AdminLogin(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "admin_login", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) adminLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := tokenFromContext(r)
	if err := h.service.AdminLogout(r.Context(), token); err != nil {
		writeMappedError(r.Context(), w, "admin_logout", err)
		return
	}
	writeMessage(w, http.StatusOK, "logged out")
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Dashboard(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "dashboard", err)
		return
	}
	writeSuccess(w, http.StatusOK, stats)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
	offset := parseIntDefault(r.URL.Query().Get("offset"), 0)
	orders, err := h.service.ListOrders(r.Context(), status, limit, offset)
	if err != nil {
		writeMappedError(r.Context(), w, "list_orders", err)
		return
	}
	writeSuccess(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "order_id"))
	if err != nil {
		writeMappedError(r.Context(), w, "get_order", err)
		return
	}
	writeSuccess(w, http.StatusOK, order)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req application.CreateOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_order", err)
		return
	}
	order, err := h.service.CreateOrder(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_order", err)
		return
	}
	writeSuccess(w, http.StatusCreated, order)
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req application.UpdateOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "update_order", err)
		return
	}
	order, err := h.service.UpdateOrder(r.Context(), chi.URLParam(r, "order_id"), req)
	if err != nil {
		writeMappedError(r.Context(), w, "update_order", err)
		return
	}
	writeSuccess(w, http.StatusOK, order)
}

func (h *Handler) orderStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.OrderStatsReport(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "order_stats", err)
		return
	}
	writeSuccess(w, http.StatusOK, stats)
}

func (h *Handler) listStock(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListStock(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "list_stock", err)
		return
	}
	writeSuccess(w, http.StatusOK, entries)
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req application.AdjustStockRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "adjust_stock", err)
		return
	}
	entry, err := h.service.AdjustStock(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "adjust_stock", err)
		return
	}
	writeSuccess(w, http.StatusOK, entry)
}

func (h *Handler) bulkAdjustStock(w http.ResponseWriter, r *http.Request) {
	var reqs []application.AdjustStockRequest
	if err := decodeBody(r, &reqs); err != nil {
		writeValidationError(r.Context(), w, "bulk_adjust_stock", err)
		return
	}
	entries, errs := h.service.BulkAdjustStock(r.Context(), reqs)
	failures := make([]string, 0, len(errs))
	for _, e := range errs {
		failures = append(failures, e.Error())
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"updated":  entries,
		"failures": failures,
	})
}

func (h *Handler) inventoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.InventoryStatsReport(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "inventory_stats", err)
		return
	}
	writeSuccess(w, http.StatusOK, stats)
}

func (h *Handler) listWaitlist(w http.ResponseWriter, r *http.Request) {
	productID := parseIntDefault(r.URL.Query().Get("product_id"), 0)
	limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
	offset := parseIntDefault(r.URL.Query().Get("offset"), 0)
	entries, err := h.service.ListWaitlist(r.Context(), productID, limit, offset)
	if err != nil {
		writeMappedError(r.Context(), w, "list_waitlist", err)
		return
	}
	writeSuccess(w, http.StatusOK, entries)
}

func (h *Handler) notifyWaitlistEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.service.NotifyWaitlistEntry(r.Context(), chi.URLParam(r, "entry_id")); err != nil {
		writeMappedError(r.Context(), w, "notify_waitlist", err)
		return
	}
	writeMessage(w, http.StatusOK, "notified")
}

func (h *Handler) listPromos(w http.ResponseWriter, r *http.Request) {
	promos, err := h.service.ListPromos(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "list_promos", err)
		return
	}
	writeSuccess(w, http.StatusOK, promos)
}

func (h *Handler) createPromo(w http.ResponseWriter, r *http.Request) {
	var req application.CreatePromoRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_promo", err)
		return
	}
	promo, err := h.service.CreatePromo(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_promo", err)
		return
	}
	writeSuccess(w, http.StatusCreated, promo)
}

func (h *Handler) deactivatePromo(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeactivatePromo(r.Context(), chi.URLParam(r, "code")); err != nil {
		writeMappedError(r.Context(), w, "deactivate_promo", err)
		return
	}
	writeMessage(w, http.StatusOK, "deactivated")
}

func (h *Handler) purchaseLabel(w http.ResponseWriter, r *http.Request) {
	var req application.PurchaseLabelRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "purchase_label", err)
		return
	}
	order, err := h.service.PurchaseShippingLabel(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "purchase_label", err)
		return
	}
	writeSuccess(w, http.StatusOK, order)
}

func (h *Handler) trackShipment(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.TrackShipment(r.Context(), chi.URLParam(r, "order_id"))
	if err != nil {
		writeMappedError(r.Context(), w, "track_shipment", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"status": status})
}

func (h *Handler) listSubscribers(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") != "false"
	subs, err := h.service.ListSubscribers(r.Context(), activeOnly)
	if err != nil {
		writeMappedError(r.Context(), w, "list_subscribers", err)
		return
	}
	writeSuccess(w, http.StatusOK, subs)
}

func (h *Handler) activeVisitors(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.ActiveVisitors(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "active_visitors", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]int{"active": count})
}
