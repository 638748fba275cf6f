package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mweller/jotter/internal/common"
	"github.com/mweller/jotter/internal/server/models"
	"github.com/mweller/jotter/internal/server/repositories/repomanager"
)

// TaxonomyService serves entry categories and the read-only pattern surface.
type TaxonomyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewTaxonomyService constructs a TaxonomyService.
func NewTaxonomyService(db *sql.DB, m repomanager.RepositoryManager) *TaxonomyService {
	return &TaxonomyService{db: db, repomanager: m}
}

// ListCategories returns the user's categories ordered by name.
func (s *TaxonomyService) ListCategories(ctx context.Context, userID string) ([]*models.Category, error) {
	return s.repomanager.Categories(s.db).List(ctx, userID)
}

// CreateCategory adds a custom category.
func (s *TaxonomyService) CreateCategory(ctx context.Context, userID, name, color string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is empty", common.ErrValidation)
	}
	return s.repomanager.Categories(s.db).Create(ctx, &models.Category{
		UserID:   userID,
		Name:     name,
		Color:    color,
		IsCustom: true,
	})
}

// ListPatterns returns stored cross-entry patterns, newest first. Pattern
// generation happens offline; this surface only reads.
func (s *TaxonomyService) ListPatterns(ctx context.Context, userID string) ([]*models.Pattern, error) {
	return s.repomanager.Patterns(s.db).List(ctx, userID)
}
