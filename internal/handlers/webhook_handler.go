package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"paylinkBack/internal/models"
	"paylinkBack/internal/services"
)

// WebhookHandler receives provider-side completion callbacks.
type WebhookHandler struct {
	Service *services.PaymentService
}

func (h *WebhookHandler) MarkPaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.PaymentID) == "" {
		http.Error(w, "missing paymentId", http.StatusBadRequest)
		return
	}
	completePayment(w, r, h.Service, req.PaymentID, req.Status)
}
