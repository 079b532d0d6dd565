package repository

import (
	"context"

	"catering-operations-backend/internal/models"

	"gorm.io/gorm"
)

type DataImportRepository struct {
	db *gorm.DB
}

func NewDataImportRepository(db *gorm.DB) *DataImportRepository {
	return &DataImportRepository{db: db}
}

// Create appends one ledger entry. Entries are never updated or deleted.
func (r *DataImportRepository) Create(ctx context.Context, imp *models.DataImport) error {
	return r.db.WithContext(ctx).Create(imp).Error
}

// History lists ledger entries newest first, optionally filtered by source.
func (r *DataImportRepository) History(ctx context.Context, source string, limit int) ([]models.DataImport, error) {
	var imports []models.DataImport
	query := r.db.WithContext(ctx).Order("imported_at DESC").Limit(limit)
	if source != "" {
		query = query.Where("source = ?", source)
	}
	err := query.Find(&imports).Error
	return imports, err
}
