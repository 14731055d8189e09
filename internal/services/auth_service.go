package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"paylinkBack/internal/models"
	"paylinkBack/utils"
)

const accessTokenTTL = 24 * time.Hour

type MerchantStore interface {
	CreateMerchant(ctx context.Context, merchant models.Merchant) (models.Merchant, error)
	GetMerchantByEmail(ctx context.Context, email string) (models.Merchant, error)
	SaveDeviceToken(ctx context.Context, merchantID, token string) error
}

type AuthService struct {
	MerchantRepo MerchantStore
	Tokens       *utils.Manager
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (models.Merchant, error) {
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return models.Merchant{}, fmt.Errorf("%w: first and last name are required", models.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Email) == "" || !strings.Contains(req.Email, "@") {
		return models.Merchant{}, fmt.Errorf("%w: a valid email is required", models.ErrInvalidRequest)
	}
	if len(req.Password) < 6 {
		return models.Merchant{}, fmt.Errorf("%w: password must be at least 6 characters", models.ErrInvalidRequest)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.Merchant{}, err
	}

	return s.MerchantRepo.CreateMerchant(ctx, models.Merchant{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  string(hashedPassword),
	})
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	merchant, err := s.MerchantRepo.GetMerchantByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(merchant.Password), []byte(password)); err != nil {
		return "", models.ErrInvalidCredentials
	}
	return s.Tokens.NewJWT(merchant.ID, merchant.Email, accessTokenTTL)
}

func (s *AuthService) SaveDeviceToken(ctx context.Context, merchantID, token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: token is required", models.ErrInvalidRequest)
	}
	return s.MerchantRepo.SaveDeviceToken(ctx, merchantID, token)
}
