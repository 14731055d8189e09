package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"paylinkBack/internal/models"
	"paylinkBack/internal/services"
	"paylinkBack/utils"
)

const maxImageSize = 10 << 20 // 10 MB

type ProductHandler struct {
	Service *services.ProductService
	Storage *utils.Storage
}

// CreateProduct accepts multipart form data so the product image can be
// uploaded in the same request. The image is optional.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := r.Context().Value("merchant_id").(string)
	if !ok || merchantID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	req, err := parseProductForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var imageURL string
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
		if err != nil {
			http.Error(w, "Failed to read image", http.StatusBadRequest)
			return
		}
		if h.Storage == nil {
			http.Error(w, "Image storage not configured", http.StatusInternalServerError)
			return
		}
		fileName := uuid.NewString() + filepath.Ext(header.Filename)
		imageURL, err = h.Storage.UploadFile(data, fileName, "products", header.Header.Get("Content-Type"))
		if err != nil {
			http.Error(w, "Failed to upload image", http.StatusInternalServerError)
			return
		}
	}

	product, err := h.Service.CreateProduct(r.Context(), merchantID, req, imageURL)
	if err != nil {
		if errors.Is(err, models.ErrInvalidRequest) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to create product", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(product)
}

func parseProductForm(r *http.Request) (models.CreateProductRequest, error) {
	req := models.CreateProductRequest{
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		SupportEmail: r.FormValue("support_email"),
		SupportPhone: r.FormValue("support_phone"),
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		return models.CreateProductRequest{}, errors.New("invalid price")
	}
	req.Price = price

	// empty quantity means unlimited stock
	if q := r.FormValue("quantity"); q != "" {
		quantity, err := strconv.Atoi(q)
		if err != nil {
			return models.CreateProductRequest{}, errors.New("invalid quantity")
		}
		req.Quantity = &quantity
	}
	return req, nil
}
