package models

import "time"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Terminal reports whether no further transitions are allowed.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentSuccess || s == PaymentFailed
}

type Payment struct {
	ID                string        `json:"id"`
	PaymentLinkID     string        `json:"paymentLinkId"`
	CustomerName      string        `json:"customerName"`
	CustomerEmail     string        `json:"customerEmail"`
	MomoNumber        string        `json:"momoNumber"`
	Amount            float64       `json:"amount"`
	Status            PaymentStatus `json:"status"`
	ExternalReference string        `json:"externalReference,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
}

// Supported payment providers (payment modes on the Mansa side).
const (
	ProviderMomo = "MOMO"
	ProviderOM   = "OM"
)

type CreatePaymentRequest struct {
	PaymentLinkID string  `json:"paymentLinkId"`
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	MomoNumber    string  `json:"momoNumber"`
	Amount        float64 `json:"amount"`
	Provider      string  `json:"provider"`
}

type CompletePaymentRequest struct {
	Status PaymentStatus `json:"status"`
}

type PaymentWebhookRequest struct {
	PaymentID string        `json:"paymentId"`
	Status    PaymentStatus `json:"status"`
}

type PaymentReceipt struct {
	ReceiptNo     string        `json:"receiptNo"`
	PaymentID     string        `json:"paymentId"`
	PaymentLinkID string        `json:"paymentLinkId"`
	CustomerName  string        `json:"customerName"`
	CustomerEmail string        `json:"customerEmail"`
	Amount        float64       `json:"amount"`
	Status        PaymentStatus `json:"status"`
	PaidAt        time.Time     `json:"paidAt"`
	IssuedAt      time.Time     `json:"issuedAt"`
}
