package models

import (
	"time"

	"github.com/google/uuid"
)

// Sale is append-only: every imported row becomes a new record and is never
// updated afterwards. There is no dedup key, so re-importing the same file
// duplicates rows.
type Sale struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BranchID  string    `gorm:"index" json:"branchId"`
	SaleDate  time.Time `gorm:"column:sale_date;index" json:"saleDate"`
	Amount    float64   `gorm:"index" json:"amount"`
	Items     int       `json:"items"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}
