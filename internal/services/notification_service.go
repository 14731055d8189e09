package services

import (
	"context"
	"fmt"
	"log/slog"

	"firebase.google.com/go/messaging"

	"paylinkBack/internal/models"
	"paylinkBack/internal/repositories"
)

// NotificationService pushes a payment's terminal state to the merchant's
// registered devices. Everything in here is best-effort: a failed push
// never affects the completion outcome.
type NotificationService struct {
	Client       *messaging.Client
	LinkRepo     *repositories.PaymentLinkRepository
	MerchantRepo *repositories.MerchantRepository
	Logger       *slog.Logger
}

func (s *NotificationService) PaymentCompleted(ctx context.Context, payment models.Payment) {
	if s == nil || s.Client == nil {
		return
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	link, err := s.LinkRepo.GetLinkByID(ctx, payment.PaymentLinkID)
	if err != nil {
		logger.Warn("notify: resolve payment link", "paymentId", payment.ID, "err", err)
		return
	}
	tokens, err := s.MerchantRepo.GetDeviceTokens(ctx, link.MerchantID)
	if err != nil {
		logger.Warn("notify: load device tokens", "merchantId", link.MerchantID, "err", err)
		return
	}

	title := "Payment failed"
	if payment.Status == models.PaymentSuccess {
		title = "Payment received"
	}
	body := fmt.Sprintf("%.0f XAF from %s", payment.Amount, payment.CustomerName)

	for _, token := range tokens {
		_, err := s.Client.Send(ctx, &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: map[string]string{
				"paymentId": payment.ID,
				"status":    string(payment.Status),
			},
		})
		if err != nil {
			logger.Warn("notify: send push", "merchantId", link.MerchantID, "err", err)
		}
	}
}
