package models

import "errors"

var (
	ErrNoRecord           = errors.New("models: no matching record found")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrDuplicateEmail     = errors.New("models: duplicate email")

	ErrPaymentNotFound = errors.New("payment not found")
	ErrLinkNotFound    = errors.New("payment link not found")
	ErrLinkInactive    = errors.New("payment link is not active")
	ErrProductNotFound = errors.New("product not found")

	// ErrAlreadyFinalized marks a completion call on a payment that is no
	// longer PENDING. Duplicate webhook deliveries land here; callers treat
	// it as a no-op, not a failure.
	ErrAlreadyFinalized = errors.New("payment already finalized")

	// ErrOutOfStock blocks a SUCCESS transition when the linked product
	// tracks quantity and none is left. The payment stays PENDING.
	ErrOutOfStock = errors.New("product out of stock")

	// ErrRequestInProgress is returned to the loser of an idempotency-key
	// race when the winner has not published a result yet.
	ErrRequestInProgress = errors.New("request with this idempotency key is already in progress")

	ErrReceiptNotReady = errors.New("receipt available only for finalized payments")
)
