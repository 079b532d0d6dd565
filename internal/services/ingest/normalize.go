package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"catering-operations-backend/internal/models"

	"github.com/google/uuid"
)

// RecordType declares which normalization table an import run uses.
type RecordType string

const (
	RecordTypeSales     RecordType = "sales"
	RecordTypeInventory RecordType = "inventory"
)

// ParseRecordType validates the data-type field of an upload or sync request.
func ParseRecordType(s string) (RecordType, bool) {
	switch RecordType(strings.ToLower(strings.TrimSpace(s))) {
	case RecordTypeSales:
		return RecordTypeSales, true
	case RecordTypeInventory:
		return RecordTypeInventory, true
	default:
		return "", false
	}
}

// CanonicalRecord is the tagged result of normalizing one raw row. Exactly
// one of Sale/Inventory is set, matching Type.
type CanonicalRecord struct {
	Type      RecordType
	Sale      *models.Sale
	Inventory *models.InventoryItem
}

// Each canonical field accepts an ordered list of raw column names; the first
// alias present in the row wins.
var fieldAliases = map[string][]string{
	"branchId": {"branchId", "branch_id"},
	"date":     {"date", "saleDate", "sale_date"},
	"amount":   {"amount"},
	"items":    {"items", "itemCount", "item_count"},
	"category": {"category"},
	"itemName": {"itemName", "item_name"},
	"quantity": {"quantity", "qty"},
	"unit":     {"unit"},
	"location": {"location"},
	"status":   {"status"},
	"minStock": {"minStock", "min_stock"},
	"maxStock": {"maxStock", "max_stock"},
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Canonicalize maps one raw row to a typed record, or to a row-scoped error.
// It is pure: all I/O belongs to the caller.
func Canonicalize(row RawRow, recordType RecordType) (*CanonicalRecord, *RowError) {
	switch recordType {
	case RecordTypeSales:
		return canonicalizeSale(row)
	case RecordTypeInventory:
		return canonicalizeInventory(row)
	default:
		return nil, &RowError{Row: row, Reason: "unsupported data type " + string(recordType)}
	}
}

func canonicalizeSale(row RawRow) (*CanonicalRecord, *RowError) {
	branchID, ok := lookupField(row, "branchId")
	if !ok {
		return nil, missingFieldError(row, "branchId")
	}

	dateRaw, ok := lookupField(row, "date")
	if !ok {
		return nil, missingFieldError(row, "date")
	}
	saleDate, ok := parseDate(dateRaw)
	if !ok {
		return nil, parseFieldError(row, "date", dateRaw)
	}

	amountRaw, ok := lookupField(row, "amount")
	if !ok {
		return nil, missingFieldError(row, "amount")
	}
	amount, ok := parseFloat(amountRaw)
	if !ok {
		return nil, parseFieldError(row, "amount", amountRaw)
	}

	items := 0
	if itemsRaw, ok := lookupField(row, "items"); ok {
		parsed, ok := parseInt(itemsRaw)
		if !ok {
			return nil, parseFieldError(row, "items", itemsRaw)
		}
		items = parsed
	}

	category, ok := lookupField(row, "category")
	if !ok {
		category = "General"
	}

	return &CanonicalRecord{
		Type: RecordTypeSales,
		Sale: &models.Sale{
			ID:        uuid.New(),
			BranchID:  branchID,
			SaleDate:  saleDate,
			Amount:    amount,
			Items:     items,
			Category:  category,
			CreatedAt: time.Now(),
		},
	}, nil
}

func canonicalizeInventory(row RawRow) (*CanonicalRecord, *RowError) {
	branchID, ok := lookupField(row, "branchId")
	if !ok {
		return nil, missingFieldError(row, "branchId")
	}

	itemName, ok := lookupField(row, "itemName")
	if !ok {
		return nil, missingFieldError(row, "itemName")
	}

	quantityRaw, ok := lookupField(row, "quantity")
	if !ok {
		return nil, missingFieldError(row, "quantity")
	}
	quantity, ok := parseFloat(quantityRaw)
	if !ok {
		return nil, parseFieldError(row, "quantity", quantityRaw)
	}

	minStock := 0.0
	if minRaw, ok := lookupField(row, "minStock"); ok {
		parsed, ok := parseFloat(minRaw)
		if !ok {
			return nil, parseFieldError(row, "minStock", minRaw)
		}
		minStock = parsed
	}

	maxStock := 0.0
	if maxRaw, ok := lookupField(row, "maxStock"); ok {
		parsed, ok := parseFloat(maxRaw)
		if !ok {
			return nil, parseFieldError(row, "maxStock", maxRaw)
		}
		maxStock = parsed
	}

	location, ok := lookupField(row, "location")
	if !ok {
		location = "Main Storage"
	}

	status, ok := lookupField(row, "status")
	if !ok {
		status = models.ClassifyStockStatus(quantity, minStock)
	}

	unit, _ := lookupField(row, "unit")

	return &CanonicalRecord{
		Type: RecordTypeInventory,
		Inventory: &models.InventoryItem{
			ID:          uuid.New(),
			ItemName:    itemName,
			BranchID:    branchID,
			Quantity:    quantity,
			Unit:        unit,
			Location:    location,
			Status:      status,
			MinStock:    minStock,
			MaxStock:    maxStock,
			LastUpdated: time.Now(),
			CreatedAt:   time.Now(),
		},
	}, nil
}

func lookupField(row RawRow, field string) (string, bool) {
	for _, alias := range fieldAliases[field] {
		if value, ok := row[alias]; ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}

func parseFloat(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseInt accepts integral values only; "12.0" passes, "12.7" does not.
func parseInt(s string) (int, bool) {
	f, ok := parseFloat(s)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
