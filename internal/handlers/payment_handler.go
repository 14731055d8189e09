package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"paylinkBack/internal/models"
	"paylinkBack/internal/services"
)

type PaymentHandler struct {
	Service *services.PaymentService
}

func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")

	payment, replayed, err := h.Service.CreatePayment(r.Context(), req, idempotencyKey)
	if err != nil {
		http.Error(w, err.Error(), paymentErrorStatus(err))
		return
	}

	if replayed {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusCreated)
	}
	json.NewEncoder(w).Encode(payment)
}

func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get(":id")
	payment, err := h.Service.GetPaymentByID(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), paymentErrorStatus(err))
		return
	}
	json.NewEncoder(w).Encode(payment)
}

// UpdatePaymentStatus is the manual/mock completion trigger; the provider
// webhook drives the same path through WebhookHandler.
func (h *PaymentHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get(":id")
	var req models.CompletePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}
	completePayment(w, r, h.Service, id, req.Status)
}

func (h *PaymentHandler) DownloadReceipt(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get(":id")
	receipt, err := h.Service.GetReceipt(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), paymentErrorStatus(err))
		return
	}
	json.NewEncoder(w).Encode(receipt)
}

// completePayment runs the completion path and writes the response. A
// payment that was already finalized is reported as a success with the
// current record so duplicate callbacks stay harmless.
func completePayment(w http.ResponseWriter, r *http.Request, svc *services.PaymentService, id string, status models.PaymentStatus) {
	payment, err := svc.CompletePayment(r.Context(), id, status)
	if errors.Is(err, models.ErrAlreadyFinalized) {
		json.NewEncoder(w).Encode(payment)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), paymentErrorStatus(err))
		return
	}
	json.NewEncoder(w).Encode(payment)
}

func paymentErrorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidRequest),
		errors.Is(err, models.ErrLinkNotFound),
		errors.Is(err, models.ErrLinkInactive):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrPaymentNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrOutOfStock),
		errors.Is(err, models.ErrRequestInProgress),
		errors.Is(err, models.ErrReceiptNotReady):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
