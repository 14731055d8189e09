package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"paylinkBack/internal/models"
)

type ProductRepository struct {
	DB *sql.DB
}

func (r *ProductRepository) CreateProduct(ctx context.Context, product models.Product) (models.Product, error) {
	product.ID = uuid.NewString()
	product.CreatedAt = time.Now().UTC().Truncate(time.Second)

	var quantity sql.NullInt64
	if product.Quantity != nil {
		quantity = sql.NullInt64{Int64: int64(*product.Quantity), Valid: true}
	}

	query := `INSERT INTO products (id, merchant_id, title, description, image_url, price, quantity, support_email, support_phone, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, query,
		product.ID, product.MerchantID, product.Title, product.Description, product.ImageURL,
		product.Price, quantity, product.SupportEmail, product.SupportPhone, product.CreatedAt)
	if err != nil {
		return models.Product{}, err
	}
	return product, nil
}

func (r *ProductRepository) GetProductByID(ctx context.Context, id string) (models.Product, error) {
	row := r.DB.QueryRowContext(ctx, `
SELECT id, merchant_id, title, description, image_url, price, quantity, support_email, support_phone, created_at
FROM products WHERE id = ?`, id)
	return scanProduct(row)
}

// GetProductForMerchant fetches a product only when it belongs to the given
// merchant, so link creation cannot reference someone else's catalog.
func (r *ProductRepository) GetProductForMerchant(ctx context.Context, id, merchantID string) (models.Product, error) {
	row := r.DB.QueryRowContext(ctx, `
SELECT id, merchant_id, title, description, image_url, price, quantity, support_email, support_phone, created_at
FROM products WHERE id = ? AND merchant_id = ?`, id, merchantID)
	return scanProduct(row)
}

func scanProduct(row *sql.Row) (models.Product, error) {
	var (
		product  models.Product
		quantity sql.NullInt64
		desc     sql.NullString
		imageURL sql.NullString
	)
	err := row.Scan(&product.ID, &product.MerchantID, &product.Title, &desc, &imageURL,
		&product.Price, &quantity, &product.SupportEmail, &product.SupportPhone, &product.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, models.ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, err
	}
	product.Description = desc.String
	product.ImageURL = imageURL.String
	if quantity.Valid {
		q := int(quantity.Int64)
		product.Quantity = &q
	}
	return product, nil
}
