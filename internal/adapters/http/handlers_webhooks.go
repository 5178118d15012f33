package http

import (
	"encoding/json"
	"io"
	"net/http"
)

// paymentWebhook verifies the gateway signature before dispatching the
// event. Responds 200 on replays so the gateway stops retrying.
func (h *Handler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unreadable payload")
		return
	}
	if err := h.gateway.VerifyWebhook(payload, r.Header.Get("Stripe-Signature")); err != nil {
		logHTTPOperationError(r.Context(), "payment_webhook", http.StatusUnauthorized, "INVALID_SIGNATURE", "webhook signature rejected", err)
		writeError(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "invalid signature")
		return
	}

	var event struct {
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID string `json:"id"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "malformed event")
		return
	}

	if err := h.service.HandlePaymentWebhook(r.Context(), event.Type, event.Data.Object.ID); err != nil {
		writeMappedError(r.Context(), w, "payment_webhook", err)
		return
	}
	writeMessage(w, http.StatusOK, "received")
}
