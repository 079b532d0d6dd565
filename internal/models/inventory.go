package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StockStatusIn  = "IN_STOCK"
	StockStatusLow = "LOW_STOCK"
	StockStatusOut = "OUT_OF_STOCK"
)

// InventoryItem is identified by (branch_id, item_name); imports upsert on
// that key, so at most one live record exists per branch and item.
type InventoryItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ItemName    string    `gorm:"uniqueIndex:idx_inventory_branch_item" json:"itemName"`
	BranchID    string    `gorm:"uniqueIndex:idx_inventory_branch_item" json:"branchId"`
	Quantity    float64   `json:"quantity"`
	Unit        string    `json:"unit"`
	Location    string    `json:"location"`
	Status      string    `gorm:"index" json:"status"`
	MinStock    float64   `json:"minStock"`
	MaxStock    float64   `json:"maxStock"`
	LastUpdated time.Time `gorm:"index" json:"lastUpdated"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ClassifyStockStatus derives the stock status from quantity and threshold.
func ClassifyStockStatus(quantity, minStock float64) string {
	switch {
	case quantity == 0:
		return StockStatusOut
	case quantity < minStock:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}
