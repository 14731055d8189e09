package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"paylinkBack/internal/models"
)

type PaymentLinkRepository struct {
	DB *sql.DB
}

func (r *PaymentLinkRepository) CreatePaymentLink(ctx context.Context, link models.PaymentLink) (models.PaymentLink, error) {
	link.ID = uuid.NewString()
	link.IsActive = true
	link.CreatedAt = time.Now().UTC().Truncate(time.Second)

	query := `INSERT INTO payment_links (id, merchant_id, product_id, slug, is_active, created_at)
	          VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, query,
		link.ID, link.MerchantID, link.ProductID, link.Slug, link.IsActive, link.CreatedAt)
	if err != nil {
		return models.PaymentLink{}, err
	}
	return link, nil
}

func (r *PaymentLinkRepository) GetLinkByID(ctx context.Context, id string) (models.PaymentLink, error) {
	var link models.PaymentLink
	query := `SELECT id, merchant_id, product_id, slug, is_active, created_at FROM payment_links WHERE id = ?`
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&link.ID, &link.MerchantID, &link.ProductID, &link.Slug, &link.IsActive, &link.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PaymentLink{}, models.ErrLinkNotFound
	}
	if err != nil {
		return models.PaymentLink{}, err
	}
	return link, nil
}

// GetLinkBySlug resolves a public slug to the view served to buyers.
// Inactive links are indistinguishable from missing ones on purpose.
func (r *PaymentLinkRepository) GetLinkBySlug(ctx context.Context, slug string) (models.PublicPaymentLink, error) {
	var (
		view     models.PublicPaymentLink
		active   bool
		desc     sql.NullString
		imageURL sql.NullString
	)
	query := `
SELECT l.id, l.slug, l.is_active, pr.title, pr.description, pr.price, pr.image_url, pr.support_email, pr.support_phone
FROM payment_links l
JOIN products pr ON pr.id = l.product_id
WHERE l.slug = ?`
	err := r.DB.QueryRowContext(ctx, query, slug).Scan(
		&view.ID, &view.Slug, &active,
		&view.Product.Title, &desc, &view.Product.Price, &imageURL,
		&view.Product.SupportEmail, &view.Product.SupportPhone)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PublicPaymentLink{}, models.ErrLinkNotFound
	}
	if err != nil {
		return models.PublicPaymentLink{}, err
	}
	if !active {
		return models.PublicPaymentLink{}, models.ErrLinkNotFound
	}
	view.Product.Description = desc.String
	view.Product.ImageURL = imageURL.String
	return view, nil
}

// NewSlug returns the short public identifier for a link.
func NewSlug() string {
	return uuid.NewString()[:8]
}
