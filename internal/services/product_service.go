package services

import (
	"context"
	"fmt"
	"strings"

	"paylinkBack/internal/models"
	"paylinkBack/internal/repositories"
)

type ProductService struct {
	ProductRepo *repositories.ProductRepository
}

func (s *ProductService) CreateProduct(ctx context.Context, merchantID string, req models.CreateProductRequest, imageURL string) (models.Product, error) {
	if strings.TrimSpace(req.Title) == "" {
		return models.Product{}, fmt.Errorf("%w: title is required", models.ErrInvalidRequest)
	}
	if req.Price <= 0 {
		return models.Product{}, fmt.Errorf("%w: price must be positive", models.ErrInvalidRequest)
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return models.Product{}, fmt.Errorf("%w: quantity cannot be negative", models.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.SupportEmail) == "" || strings.TrimSpace(req.SupportPhone) == "" {
		return models.Product{}, fmt.Errorf("%w: support contacts are required", models.ErrInvalidRequest)
	}

	return s.ProductRepo.CreateProduct(ctx, models.Product{
		MerchantID:   merchantID,
		Title:        req.Title,
		Description:  req.Description,
		ImageURL:     imageURL,
		Price:        req.Price,
		Quantity:     req.Quantity,
		SupportEmail: req.SupportEmail,
		SupportPhone: req.SupportPhone,
	})
}
