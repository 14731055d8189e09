package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"paylinkBack/internal/models"
	"paylinkBack/internal/services"
)

type MerchantHandler struct {
	Service *services.AuthService
}

// SaveDeviceToken registers an FCM token for payment notifications.
func (h *MerchantHandler) SaveDeviceToken(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := r.Context().Value("merchant_id").(string)
	if !ok || merchantID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.DeviceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}

	if err := h.Service.SaveDeviceToken(r.Context(), merchantID, req.Token); err != nil {
		if errors.Is(err, models.ErrInvalidRequest) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to save device token", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
