package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"paylinkBack/internal/cache"
	"paylinkBack/internal/models"
)

// initiateTimeout bounds the best-effort provider call during creation; a
// timed-out initiate is treated like any other provider failure.
const initiateTimeout = 10 * time.Second

// The orchestrator depends on small interfaces so its state-machine and
// idempotency logic can be exercised without MySQL or redis behind it.

type PaymentStore interface {
	CreatePayment(ctx context.Context, payment models.Payment) (models.Payment, error)
	GetPaymentByID(ctx context.Context, id string) (models.Payment, error)
	UpdateExternalReference(ctx context.Context, id, reference string) error
	FinalizePayment(ctx context.Context, id string, status models.PaymentStatus) (models.Payment, error)
}

type LinkStore interface {
	GetLinkByID(ctx context.Context, id string) (models.PaymentLink, error)
}

type ProviderClient interface {
	InitiatePayment(ctx context.Context, req MansaInitiateRequest) (*MansaInitiateResponse, error)
}

type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) ([]byte, bool, error)
	StoreResult(ctx context.Context, key string, result []byte) error
	Release(ctx context.Context, key string) error
}

type StatusCache interface {
	Get(ctx context.Context, id string) (models.Payment, bool, error)
	Set(ctx context.Context, payment models.Payment, ttl time.Duration) error
}

type Notifier interface {
	PaymentCompleted(ctx context.Context, payment models.Payment)
}

type PaymentService struct {
	Payments PaymentStore
	Links    LinkStore
	Provider ProviderClient
	Idem     IdempotencyStore
	Cache    StatusCache
	Notifier Notifier
	Logger   *slog.Logger
}

func (s *PaymentService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// CreatePayment handles the creation path. The returned bool is true when
// the result was replayed from the idempotency store rather than created.
//
// A provider failure during initiation never fails the creation: the
// authoritative outcome is the internal PENDING record, and the external
// reference is synthesized from the payment id when the provider returned
// none.
func (s *PaymentService) CreatePayment(ctx context.Context, req models.CreatePaymentRequest, idempotencyKey string) (models.Payment, bool, error) {
	if err := validateCreateRequest(req); err != nil {
		return models.Payment{}, false, err
	}

	reserved := false
	if idempotencyKey != "" {
		cached, won, err := s.Idem.Reserve(ctx, idempotencyKey)
		if err != nil {
			return models.Payment{}, false, err
		}
		if !won {
			var payment models.Payment
			if err := json.Unmarshal(cached, &payment); err != nil {
				return models.Payment{}, false, fmt.Errorf("decode cached result: %w", err)
			}
			return payment, true, nil
		}
		reserved = true
	}

	payment, err := s.createPayment(ctx, req)
	if err != nil {
		if reserved {
			if relErr := s.Idem.Release(ctx, idempotencyKey); relErr != nil {
				s.logger().Error("release idempotency key", "key", idempotencyKey, "err", relErr)
			}
		}
		return models.Payment{}, false, err
	}

	if reserved {
		result, err := json.Marshal(payment)
		if err == nil {
			err = s.Idem.StoreResult(ctx, idempotencyKey, result)
		}
		if err != nil {
			// replay protection degraded; the payment itself is fine
			s.logger().Error("store idempotency result", "key", idempotencyKey, "err", err)
		}
	}
	return payment, false, nil
}

func (s *PaymentService) createPayment(ctx context.Context, req models.CreatePaymentRequest) (models.Payment, error) {
	link, err := s.Links.GetLinkByID(ctx, req.PaymentLinkID)
	if err != nil {
		return models.Payment{}, err
	}
	if !link.IsActive {
		return models.Payment{}, models.ErrLinkInactive
	}

	payment, err := s.Payments.CreatePayment(ctx, models.Payment{
		PaymentLinkID: link.ID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		MomoNumber:    req.MomoNumber,
		Amount:        req.Amount,
	})
	if err != nil {
		return models.Payment{}, err
	}

	extRef := "PAY-" + payment.ID
	initiateCtx, cancel := context.WithTimeout(ctx, initiateTimeout)
	defer cancel()
	res, err := s.Provider.InitiatePayment(initiateCtx, MansaInitiateRequest{
		PhoneNumber:       req.MomoNumber,
		Amount:            req.Amount,
		FullName:          req.CustomerName,
		EmailAddress:      req.CustomerEmail,
		Provider:          req.Provider,
		ExternalReference: extRef,
	})
	if err != nil {
		s.logger().Warn("mansa initiate failed, payment stays pending",
			"paymentId", payment.ID, "err", err)
	} else if strings.TrimSpace(res.TransactionReference) != "" {
		extRef = res.TransactionReference
	}

	if err := s.Payments.UpdateExternalReference(ctx, payment.ID, extRef); err != nil {
		// the reference is recoverable from the payment id; do not fail
		// the creation over it
		s.logger().Error("update external reference", "paymentId", payment.ID, "err", err)
	}
	payment.ExternalReference = extRef
	return payment, nil
}

// GetPaymentByID serves polling clients through the read-through cache.
func (s *PaymentService) GetPaymentByID(ctx context.Context, id string) (models.Payment, error) {
	if cached, ok, err := s.Cache.Get(ctx, id); err != nil {
		s.logger().Warn("payment cache read", "paymentId", id, "err", err)
	} else if ok {
		return cached, nil
	}

	payment, err := s.Payments.GetPaymentByID(ctx, id)
	if err != nil {
		return models.Payment{}, err
	}
	if err := s.Cache.Set(ctx, payment, cache.StatusReadTTL); err != nil {
		s.logger().Warn("payment cache fill", "paymentId", id, "err", err)
	}
	return payment, nil
}

// CompletePayment finalizes a PENDING payment. Duplicate deliveries surface
// as models.ErrAlreadyFinalized together with the current record; the store
// enforces the transition atomically.
func (s *PaymentService) CompletePayment(ctx context.Context, id string, status models.PaymentStatus) (models.Payment, error) {
	if !status.Terminal() {
		return models.Payment{}, fmt.Errorf("%w: status must be SUCCESS or FAILED", models.ErrInvalidRequest)
	}

	payment, err := s.Payments.FinalizePayment(ctx, id, status)
	if err != nil {
		return payment, err
	}

	// terminal state is stable: refresh pollers with a longer TTL
	if err := s.Cache.Set(ctx, payment, cache.StatusFinalTTL); err != nil {
		s.logger().Warn("payment cache refresh", "paymentId", id, "err", err)
	}
	if s.Notifier != nil {
		s.Notifier.PaymentCompleted(ctx, payment)
	}
	return payment, nil
}

// GetReceipt builds the receipt view for a finalized payment.
func (s *PaymentService) GetReceipt(ctx context.Context, id string) (models.PaymentReceipt, error) {
	payment, err := s.GetPaymentByID(ctx, id)
	if err != nil {
		return models.PaymentReceipt{}, err
	}
	if !payment.Status.Terminal() {
		return models.PaymentReceipt{}, models.ErrReceiptNotReady
	}
	return models.PaymentReceipt{
		ReceiptNo:     payment.ExternalReference,
		PaymentID:     payment.ID,
		PaymentLinkID: payment.PaymentLinkID,
		CustomerName:  payment.CustomerName,
		CustomerEmail: payment.CustomerEmail,
		Amount:        payment.Amount,
		Status:        payment.Status,
		PaidAt:        payment.CreatedAt,
		IssuedAt:      time.Now().UTC(),
	}, nil
}

func validateCreateRequest(req models.CreatePaymentRequest) error {
	switch {
	case strings.TrimSpace(req.PaymentLinkID) == "":
		return fmt.Errorf("%w: paymentLinkId is required", models.ErrInvalidRequest)
	case strings.TrimSpace(req.CustomerName) == "":
		return fmt.Errorf("%w: customerName is required", models.ErrInvalidRequest)
	case strings.TrimSpace(req.CustomerEmail) == "":
		return fmt.Errorf("%w: customerEmail is required", models.ErrInvalidRequest)
	case strings.TrimSpace(req.MomoNumber) == "":
		return fmt.Errorf("%w: momoNumber is required", models.ErrInvalidRequest)
	case req.Amount <= 0:
		return fmt.Errorf("%w: amount must be positive", models.ErrInvalidRequest)
	case req.Provider != models.ProviderMomo && req.Provider != models.ProviderOM:
		return fmt.Errorf("%w: provider must be MOMO or OM", models.ErrInvalidRequest)
	}
	return nil
}
