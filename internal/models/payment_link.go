package models

import "time"

type PaymentLink struct {
	ID         string    `json:"id"`
	MerchantID string    `json:"merchantId"`
	ProductID  string    `json:"productId"`
	Slug       string    `json:"slug"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PublicPaymentLink is the public-safe view served on slug lookup:
// no merchant identity, no stock counters.
type PublicPaymentLink struct {
	ID      string             `json:"id"`
	Slug    string             `json:"slug"`
	Product PublicProductView  `json:"product"`
}

type PublicProductView struct {
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `json:"price"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	SupportEmail string  `json:"supportEmail"`
	SupportPhone string  `json:"supportPhone"`
}

type CreatePaymentLinkRequest struct {
	ProductID string `json:"productId"`
}
