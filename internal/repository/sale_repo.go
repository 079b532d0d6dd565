package repository

import (
	"context"

	"catering-operations-backend/internal/models"

	"gorm.io/gorm"
)

type SaleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

// Append inserts a new sale row. Sales have no identity key, so every valid
// import row becomes a new record.
func (r *SaleRepository) Append(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

// ListByBranch returns sales for one branch (or all when branchID is empty),
// newest first. Read-only surface for the analytics collaborators.
func (r *SaleRepository) ListByBranch(ctx context.Context, branchID string, limit int) ([]models.Sale, error) {
	var sales []models.Sale
	query := r.db.WithContext(ctx).Order("sale_date DESC").Limit(limit)
	if branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	err := query.Find(&sales).Error
	return sales, err
}
