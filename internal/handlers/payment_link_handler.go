package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"paylinkBack/internal/models"
	"paylinkBack/internal/services"
)

type PaymentLinkHandler struct {
	Service *services.PaymentLinkService
}

func (h *PaymentLinkHandler) CreatePaymentLink(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := r.Context().Value("merchant_id").(string)
	if !ok || merchantID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CreatePaymentLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}

	link, err := h.Service.CreatePaymentLink(r.Context(), merchantID, req.ProductID)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			http.Error(w, "Product not found or does not belong to merchant", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to create payment link", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(link)
}

func (h *PaymentLinkHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get(":slug")
	view, err := h.Service.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, models.ErrLinkNotFound) {
			http.Error(w, "Payment link not found or inactive", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch payment link", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(view)
}
