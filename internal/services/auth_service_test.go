package services

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"paylinkBack/internal/models"
	"paylinkBack/utils"
)

type fakeMerchantStore struct {
	byEmail map[string]models.Merchant
	nextID  int
	tokens  map[string][]string
}

func newFakeMerchantStore() *fakeMerchantStore {
	return &fakeMerchantStore{
		byEmail: make(map[string]models.Merchant),
		tokens:  make(map[string][]string),
	}
}

func (f *fakeMerchantStore) CreateMerchant(ctx context.Context, m models.Merchant) (models.Merchant, error) {
	if _, exists := f.byEmail[m.Email]; exists {
		return models.Merchant{}, models.ErrDuplicateEmail
	}
	f.nextID++
	m.ID = "m-" + string(rune('0'+f.nextID))
	f.byEmail[m.Email] = m
	return m, nil
}

func (f *fakeMerchantStore) GetMerchantByEmail(ctx context.Context, email string) (models.Merchant, error) {
	m, ok := f.byEmail[email]
	if !ok {
		return models.Merchant{}, models.ErrNoRecord
	}
	return m, nil
}

func (f *fakeMerchantStore) SaveDeviceToken(ctx context.Context, merchantID, token string) error {
	f.tokens[merchantID] = append(f.tokens[merchantID], token)
	return nil
}

func newTestAuthService(t *testing.T) (*AuthService, *fakeMerchantStore) {
	t.Helper()
	tokens, err := utils.NewManager("test-signing-key")
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	store := newFakeMerchantStore()
	return &AuthService{MerchantRepo: store, Tokens: tokens}, store
}

func TestRegister(t *testing.T) {
	svc, _ := newTestAuthService(t)

	merchant, err := svc.Register(context.Background(), models.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Seller",
		Email:     " Ada@Example.com ",
		Password:  "s3cret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if merchant.ID == "" {
		t.Error("expected an assigned id")
	}
	if merchant.Email != "ada@example.com" {
		t.Errorf("email not normalized: %q", merchant.Email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(merchant.Password), []byte("s3cret1")); err != nil {
		t.Error("stored password is not a hash of the submitted one")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t)

	cases := []struct {
		name string
		req  models.RegisterRequest
	}{
		{"missing name", models.RegisterRequest{Email: "a@b.c", Password: "secret1"}},
		{"bad email", models.RegisterRequest{FirstName: "A", LastName: "B", Email: "not-an-email", Password: "secret1"}},
		{"short password", models.RegisterRequest{FirstName: "A", LastName: "B", Email: "a@b.c", Password: "ab"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.req); !errors.Is(err, models.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)

	req := models.RegisterRequest{FirstName: "Ada", LastName: "Seller", Email: "ada@example.com", Password: "s3cret1"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), req); !errors.Is(err, models.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)

	merchant, err := svc.Register(context.Background(), models.RegisterRequest{
		FirstName: "Ada", LastName: "Seller", Email: "ada@example.com", Password: "s3cret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		token, err := svc.Login(context.Background(), "Ada@Example.com", "s3cret1")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		claims, err := svc.Tokens.Parse(token)
		if err != nil {
			t.Fatalf("parse issued token: %v", err)
		}
		if claims.Subject != merchant.ID {
			t.Errorf("token subject %q does not match merchant %q", claims.Subject, merchant.ID)
		}
		if claims.Email != merchant.Email {
			t.Errorf("token email %q does not match merchant %q", claims.Email, merchant.Email)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := svc.Login(context.Background(), "ada@example.com", "wrong"); !errors.Is(err, models.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		if _, err := svc.Login(context.Background(), "nobody@example.com", "s3cret1"); !errors.Is(err, models.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestSaveDeviceToken(t *testing.T) {
	svc, store := newTestAuthService(t)

	if err := svc.SaveDeviceToken(context.Background(), "m-1", "fcm-token-1"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	if len(store.tokens["m-1"]) != 1 {
		t.Errorf("token not stored")
	}

	if err := svc.SaveDeviceToken(context.Background(), "m-1", "  "); !errors.Is(err, models.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for blank token, got %v", err)
	}
}
