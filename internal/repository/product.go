package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/storefront-labs/shop-wallet/internal/models"
)

// FindProductByID retrieves a product by id
func (r *Repository) FindProductByID(ctx context.Context, id int64) (*models.Product, error) {
	product := &models.Product{}
	var description, imageURL sql.NullString
	query := `
		SELECT id, name, description, price, image_url, created_at
		FROM wallet.products
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&product.ID, &product.Name, &description, &product.Price, &imageURL, &product.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	product.Description = description.String
	product.ImageURL = imageURL.String
	return product, nil
}

// ListProducts returns the product catalog, newest first
func (r *Repository) ListProducts(ctx context.Context, limit, offset int) ([]models.Product, error) {
	query := `
		SELECT id, name, description, price, image_url, created_at
		FROM wallet.products
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var description, imageURL sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &description, &p.Price, &imageURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.Description = description.String
		p.ImageURL = imageURL.String
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}
