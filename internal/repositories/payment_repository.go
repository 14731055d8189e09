package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"paylinkBack/internal/models"
)

type PaymentRepository struct {
	DB *sql.DB
}

func (r *PaymentRepository) CreatePayment(ctx context.Context, payment models.Payment) (models.Payment, error) {
	payment.ID = uuid.NewString()
	payment.Status = models.PaymentPending
	payment.CreatedAt = time.Now().UTC().Truncate(time.Second)

	query := `INSERT INTO payments (id, payment_link_id, customer_name, customer_email, momo_number, amount, status, external_reference, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?)`
	_, err := r.DB.ExecContext(ctx, query,
		payment.ID, payment.PaymentLinkID, payment.CustomerName, payment.CustomerEmail,
		payment.MomoNumber, payment.Amount, payment.Status, payment.CreatedAt)
	if err != nil {
		return models.Payment{}, err
	}
	return payment, nil
}

func (r *PaymentRepository) GetPaymentByID(ctx context.Context, id string) (models.Payment, error) {
	var (
		payment models.Payment
		extRef  sql.NullString
	)
	query := `SELECT id, payment_link_id, customer_name, customer_email, momo_number, amount, status, external_reference, created_at
	          FROM payments WHERE id = ?`
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&payment.ID, &payment.PaymentLinkID, &payment.CustomerName, &payment.CustomerEmail,
		&payment.MomoNumber, &payment.Amount, &payment.Status, &extRef, &payment.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Payment{}, models.ErrPaymentNotFound
	}
	if err != nil {
		return models.Payment{}, err
	}
	payment.ExternalReference = extRef.String
	return payment, nil
}

func (r *PaymentRepository) UpdateExternalReference(ctx context.Context, id, reference string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE payments SET external_reference = ? WHERE id = ?`, reference, id)
	return err
}

// FinalizePayment moves a PENDING payment into a terminal state. The
// transition and the stock decrement run in one transaction so duplicate
// webhook deliveries and concurrent completions cannot double-apply either.
//
// The conditional UPDATE on status = 'PENDING' succeeds for exactly one
// caller; everyone else gets the current record back with
// models.ErrAlreadyFinalized. A SUCCESS transition for a product that
// tracks stock additionally requires a decrement-if-positive to go through;
// if it does not, the whole transaction rolls back and the payment stays
// PENDING (models.ErrOutOfStock).
func (r *PaymentRepository) FinalizePayment(ctx context.Context, id string, status models.PaymentStatus) (models.Payment, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Payment{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE payments SET status = ? WHERE id = ? AND status = 'PENDING'`, status, id)
	if err != nil {
		return models.Payment{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Payment{}, err
	}
	if affected == 0 {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			return models.Payment{}, err
		}
		current, err := r.GetPaymentByID(ctx, id)
		if err != nil {
			return models.Payment{}, err
		}
		return current, models.ErrAlreadyFinalized
	}

	if status == models.PaymentSuccess {
		var (
			productID string
			quantity  sql.NullInt64
		)
		err = tx.QueryRowContext(ctx, `
SELECT pr.id, pr.quantity
FROM payments p
JOIN payment_links l ON l.id = p.payment_link_id
JOIN products pr ON pr.id = l.product_id
WHERE p.id = ?`, id).Scan(&productID, &quantity)
		if err != nil {
			return models.Payment{}, err
		}
		if quantity.Valid {
			res, err := tx.ExecContext(ctx,
				`UPDATE products SET quantity = quantity - 1 WHERE id = ? AND quantity > 0`, productID)
			if err != nil {
				return models.Payment{}, err
			}
			decremented, err := res.RowsAffected()
			if err != nil {
				return models.Payment{}, err
			}
			if decremented == 0 {
				// rollback via defer: payment stays PENDING
				return models.Payment{}, models.ErrOutOfStock
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Payment{}, err
	}
	return r.GetPaymentByID(ctx, id)
}
