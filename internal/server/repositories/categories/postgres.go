// Package categories provides the PostgreSQL-backed repository for entry
// categories.
package categories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/mweller/jotter/internal/dbx"
	"github.com/mweller/jotter/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.Category, error) {
	query := `
		SELECT id, user_id, name, color, is_custom, created_at
		FROM categories
		WHERE user_id = $1
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}
	defer rows.Close()

	var result []*models.Category
	for rows.Next() {
		var item models.Category
		var color sql.NullString
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &color, &item.IsCustom, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Color = color.String
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}

	var color any
	if category.Color != "" {
		color = category.Color
	}

	query := `
		INSERT INTO categories (id, user_id, name, color, is_custom)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		category.ID, category.UserID, category.Name, color, category.IsCustom).
		Scan(&category.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return category, nil
}
