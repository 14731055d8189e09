package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"paylinkBack/internal/models"
)

type MerchantRepository struct {
	DB *sql.DB
}

func (r *MerchantRepository) CreateMerchant(ctx context.Context, merchant models.Merchant) (models.Merchant, error) {
	merchant.ID = uuid.NewString()
	merchant.CreatedAt = time.Now().UTC().Truncate(time.Second)

	query := `INSERT INTO merchants (id, first_name, last_name, email, password, created_at)
	          VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, query,
		merchant.ID, merchant.FirstName, merchant.LastName, merchant.Email, merchant.Password, merchant.CreatedAt)
	if isDuplicateKeyError(err) {
		return models.Merchant{}, models.ErrDuplicateEmail
	}
	if err != nil {
		return models.Merchant{}, err
	}
	return merchant, nil
}

func (r *MerchantRepository) GetMerchantByEmail(ctx context.Context, email string) (models.Merchant, error) {
	var merchant models.Merchant
	query := `SELECT id, first_name, last_name, email, password, created_at FROM merchants WHERE email = ?`
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&merchant.ID, &merchant.FirstName, &merchant.LastName, &merchant.Email, &merchant.Password, &merchant.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Merchant{}, models.ErrNoRecord
	}
	if err != nil {
		return models.Merchant{}, err
	}
	return merchant, nil
}

// SaveDeviceToken is safe to call repeatedly with the same token.
func (r *MerchantRepository) SaveDeviceToken(ctx context.Context, merchantID, token string) error {
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO merchant_device_tokens (merchant_id, token, created_at)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE token = token`, merchantID, token, time.Now().UTC())
	return err
}

func (r *MerchantRepository) GetDeviceTokens(ctx context.Context, merchantID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT token FROM merchant_device_tokens WHERE merchant_id = ?`, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// isDuplicateKeyError checks for a MySQL/MariaDB unique constraint failure
// so it can be translated into a clear client-facing validation response
// instead of a generic 500.
func isDuplicateKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
