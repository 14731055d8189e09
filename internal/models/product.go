package models

import "time"

type Product struct {
	ID          string  `json:"id"`
	MerchantID  string  `json:"merchantId"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Price       float64 `json:"price"`
	// Quantity is nil when stock is not tracked (unlimited).
	Quantity     *int      `json:"quantity"`
	SupportEmail string    `json:"supportEmail"`
	SupportPhone string    `json:"supportPhone"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CreateProductRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Quantity     *int    `json:"quantity"`
	SupportEmail string  `json:"supportEmail"`
	SupportPhone string  `json:"supportPhone"`
}
