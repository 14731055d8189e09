package services

import (
	"context"

	"paylinkBack/internal/models"
	"paylinkBack/internal/repositories"
)

type PaymentLinkService struct {
	LinkRepo    *repositories.PaymentLinkRepository
	ProductRepo *repositories.ProductRepository
}

func (s *PaymentLinkService) CreatePaymentLink(ctx context.Context, merchantID, productID string) (models.PaymentLink, error) {
	// the product must exist and belong to the calling merchant
	product, err := s.ProductRepo.GetProductForMerchant(ctx, productID, merchantID)
	if err != nil {
		return models.PaymentLink{}, err
	}

	return s.LinkRepo.CreatePaymentLink(ctx, models.PaymentLink{
		MerchantID: merchantID,
		ProductID:  product.ID,
		Slug:       repositories.NewSlug(),
	})
}

func (s *PaymentLinkService) GetBySlug(ctx context.Context, slug string) (models.PublicPaymentLink, error) {
	return s.LinkRepo.GetLinkBySlug(ctx, slug)
}
