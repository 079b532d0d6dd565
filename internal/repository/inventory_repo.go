package repository

import (
	"context"
	"strings"
	"time"

	"catering-operations-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Upsert writes one inventory record keyed on (branch_id, item_name) in a
// single conditional statement. Concurrent imports of the same key race on
// the database, not on a client-side read-then-write, so no update is lost.
//
// On conflict the stored threshold survives unless the incoming row carries
// one (sheets that omit the column normalize to 0), and the status is
// recomputed against the merged quantity and min_stock so it stays a pure
// function of the two.
func (r *InventoryRepository) Upsert(ctx context.Context, item *models.InventoryItem) error {
	const mergedMinStock = "CASE WHEN excluded.min_stock > 0 THEN excluded.min_stock ELSE inventory_items.min_stock END"
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "branch_id"}, {Name: "item_name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":  item.Quantity,
			"min_stock": gorm.Expr(mergedMinStock),
			"status": gorm.Expr(
				"CASE WHEN excluded.quantity = 0 THEN ? WHEN excluded.quantity < ("+mergedMinStock+") THEN ? ELSE ? END",
				models.StockStatusOut, models.StockStatusLow, models.StockStatusIn,
			),
			"last_updated": item.LastUpdated,
		}),
	}).Create(item).Error
}

// List filters by branch, status and a case-insensitive item-name search,
// most recently updated first.
func (r *InventoryRepository) List(ctx context.Context, branchID, status, search string) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	query := r.db.WithContext(ctx).Order("last_updated DESC")
	if branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		query = query.Where("LOWER(item_name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	err := query.Find(&items).Error
	return items, err
}

func (r *InventoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *InventoryRepository) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update applies the given fields, refreshes last_updated and recomputes the
// stock status, then returns the stored record.
func (r *InventoryRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.InventoryItem, error) {
	updates["last_updated"] = time.Now()
	result := r.db.WithContext(ctx).Model(&models.InventoryItem{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	item, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := models.ClassifyStockStatus(item.Quantity, item.MinStock)
	if status != item.Status {
		if err := r.db.WithContext(ctx).Model(item).Update("status", status).Error; err != nil {
			return nil, err
		}
		item.Status = status
	}
	return item, nil
}

func (r *InventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.InventoryItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LowStock lists everything the next stocktake should worry about.
func (r *InventoryRepository) LowStock(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{models.StockStatusLow, models.StockStatusOut}).
		Order("last_updated DESC").
		Find(&items).Error
	return items, err
}
