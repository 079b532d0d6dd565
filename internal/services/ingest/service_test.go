package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"catering-operations-backend/internal/models"

	"github.com/sirupsen/logrus"
)

type fakeSaleStore struct {
	sales []models.Sale
	err   error
}

func (f *fakeSaleStore) Append(_ context.Context, sale *models.Sale) error {
	if f.err != nil {
		return f.err
	}
	f.sales = append(f.sales, *sale)
	return nil
}

type inventoryKey struct {
	branchID string
	itemName string
}

// fakeInventoryStore mirrors the keyed-upsert contract of the real store.
type fakeInventoryStore struct {
	items map[inventoryKey]models.InventoryItem
	err   error
}

func (f *fakeInventoryStore) Upsert(_ context.Context, item *models.InventoryItem) error {
	if f.err != nil {
		return f.err
	}
	if f.items == nil {
		f.items = make(map[inventoryKey]models.InventoryItem)
	}
	key := inventoryKey{branchID: item.BranchID, itemName: item.ItemName}
	if existing, ok := f.items[key]; ok {
		minStock := item.MinStock
		if minStock <= 0 {
			minStock = existing.MinStock
		}
		existing.Quantity = item.Quantity
		existing.MinStock = minStock
		existing.Status = models.ClassifyStockStatus(item.Quantity, minStock)
		existing.LastUpdated = item.LastUpdated
		f.items[key] = existing
		return nil
	}
	f.items[key] = *item
	return nil
}

type fakeImportStore struct {
	batches []models.DataImport
}

func (f *fakeImportStore) Create(_ context.Context, imp *models.DataImport) error {
	f.batches = append(f.batches, *imp)
	return nil
}

func (f *fakeImportStore) History(_ context.Context, source string, limit int) ([]models.DataImport, error) {
	var out []models.DataImport
	for i := len(f.batches) - 1; i >= 0 && len(out) < limit; i-- {
		if source == "" || f.batches[i].Source == source {
			out = append(out, f.batches[i])
		}
	}
	return out, nil
}

func newTestService(sales *fakeSaleStore, inventory *fakeInventoryStore, imports *fakeImportStore) *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewService(sales, inventory, imports, logger)
}

func TestImportRowsPartialBatch(t *testing.T) {
	sales := &fakeSaleStore{}
	inventory := &fakeInventoryStore{}
	imports := &fakeImportStore{}
	svc := newTestService(sales, inventory, imports)

	rows := []RawRow{
		{"branchId": "b1", "itemName": "Rice", "quantity": "10"},
		{"branchId": "b1", "quantity": "5"}, // no itemName
		{"branchId": "b2", "itemName": "Oil", "quantity": "2"},
	}

	summary, err := svc.ImportRows(context.Background(), models.ImportSourceManualUpload, "inventory.csv", RecordTypeInventory, rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Imported != 2 || summary.Errors != 1 || summary.TotalRows != 3 {
		t.Errorf("summary = %d imported, %d errors, %d total; want 2, 1, 3",
			summary.Imported, summary.Errors, summary.TotalRows)
	}
	if summary.Imported+summary.Errors != summary.TotalRows {
		t.Error("accounting identity violated")
	}
	if summary.ImportRecord.Status != models.ImportStatusPartial {
		t.Errorf("status = %q, want PARTIAL", summary.ImportRecord.Status)
	}
	if len(inventory.items) != 2 {
		t.Errorf("expected 2 stored items, got %d", len(inventory.items))
	}

	var rowErrors []RowError
	if err := json.Unmarshal(summary.ImportRecord.Errors, &rowErrors); err != nil {
		t.Fatalf("batch errors not decodable: %v", err)
	}
	if len(rowErrors) != 1 || rowErrors[0].Row["quantity"] != "5" {
		t.Errorf("batch should carry the original failed row: %v", rowErrors)
	}
}

func TestImportRowsEmptySheet(t *testing.T) {
	imports := &fakeImportStore{}
	svc := newTestService(&fakeSaleStore{}, &fakeInventoryStore{}, imports)

	summary, err := svc.ImportRows(context.Background(), models.ImportSourceSharePoint, "Sales.xlsx", RecordTypeSales, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Imported != 0 || summary.Errors != 0 {
		t.Errorf("summary = %d imported, %d errors; want 0, 0", summary.Imported, summary.Errors)
	}
	if summary.ImportRecord.Status != models.ImportStatusSuccess {
		t.Errorf("empty sheet status = %q, want SUCCESS", summary.ImportRecord.Status)
	}
}

func TestImportRowsStorageFailureIsRowScoped(t *testing.T) {
	sales := &fakeSaleStore{err: errors.New("storage unavailable")}
	imports := &fakeImportStore{}
	svc := newTestService(sales, &fakeInventoryStore{}, imports)

	rows := []RawRow{
		{"branchId": "b1", "date": "2025-01-01", "amount": "10"},
		{"branchId": "b1", "date": "2025-01-02", "amount": "20"},
	}

	summary, err := svc.ImportRows(context.Background(), models.ImportSourceManualUpload, "sales.csv", RecordTypeSales, rows)
	if err != nil {
		t.Fatalf("a storage failure must not abort the batch: %v", err)
	}
	if summary.Imported != 0 || summary.Errors != 2 {
		t.Errorf("summary = %d imported, %d errors; want 0, 2", summary.Imported, summary.Errors)
	}
	if summary.ImportRecord.Status != models.ImportStatusFailure {
		t.Errorf("status = %q, want FAILURE", summary.ImportRecord.Status)
	}
}

func TestInventoryReimportIsIdempotent(t *testing.T) {
	inventory := &fakeInventoryStore{}
	svc := newTestService(&fakeSaleStore{}, inventory, &fakeImportStore{})

	rows := []RawRow{
		{"branchId": "b1", "itemName": "Rice", "quantity": "10", "minStock": "4"},
		{"branchId": "b1", "itemName": "Oil", "quantity": "0"},
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.ImportRows(context.Background(), models.ImportSourceSharePoint, "Inventory.xlsx", RecordTypeInventory, rows); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}

	if len(inventory.items) != 2 {
		t.Fatalf("expected 2 records after re-import, got %d", len(inventory.items))
	}
	rice := inventory.items[inventoryKey{branchID: "b1", itemName: "Rice"}]
	if rice.Quantity != 10 || rice.Status != models.StockStatusIn {
		t.Errorf("rice after second run: qty=%v status=%q", rice.Quantity, rice.Status)
	}
	oil := inventory.items[inventoryKey{branchID: "b1", itemName: "Oil"}]
	if oil.Status != models.StockStatusOut {
		t.Errorf("oil status = %q, want OUT_OF_STOCK", oil.Status)
	}
}

func TestInventoryReimportKeepsStoredThreshold(t *testing.T) {
	inventory := &fakeInventoryStore{}
	svc := newTestService(&fakeSaleStore{}, inventory, &fakeImportStore{})

	ctx := context.Background()
	first := []RawRow{
		{"branchId": "b1", "itemName": "Rice", "quantity": "20", "minStock": "10"},
	}
	if _, err := svc.ImportRows(ctx, models.ImportSourceSharePoint, "Inventory.xlsx", RecordTypeInventory, first); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Second sheet has no minStock column; the stored threshold must still
	// govern the status of the merged record.
	second := []RawRow{
		{"branchId": "b1", "itemName": "Rice", "quantity": "5"},
	}
	if _, err := svc.ImportRows(ctx, models.ImportSourceSharePoint, "Inventory.xlsx", RecordTypeInventory, second); err != nil {
		t.Fatalf("second run: %v", err)
	}

	rice := inventory.items[inventoryKey{branchID: "b1", itemName: "Rice"}]
	if rice.MinStock != 10 {
		t.Errorf("minStock = %v, want the stored threshold 10", rice.MinStock)
	}
	if rice.Quantity != 5 || rice.Status != models.StockStatusLow {
		t.Errorf("merged record qty=%v status=%q, want qty=5 LOW_STOCK", rice.Quantity, rice.Status)
	}

	// A sheet that does carry the column replaces the threshold.
	third := []RawRow{
		{"branchId": "b1", "itemName": "Rice", "quantity": "5", "minStock": "3"},
	}
	if _, err := svc.ImportRows(ctx, models.ImportSourceSharePoint, "Inventory.xlsx", RecordTypeInventory, third); err != nil {
		t.Fatalf("third run: %v", err)
	}
	rice = inventory.items[inventoryKey{branchID: "b1", itemName: "Rice"}]
	if rice.MinStock != 3 || rice.Status != models.StockStatusIn {
		t.Errorf("after explicit threshold: minStock=%v status=%q, want 3 IN_STOCK", rice.MinStock, rice.Status)
	}
}

func TestSalesReimportAppends(t *testing.T) {
	sales := &fakeSaleStore{}
	svc := newTestService(sales, &fakeInventoryStore{}, &fakeImportStore{})

	rows := []RawRow{
		{"branchId": "b1", "date": "2025-01-01", "amount": "10"},
	}
	for i := 0; i < 2; i++ {
		if _, err := svc.ImportRows(context.Background(), models.ImportSourceSharePoint, "Sales.xlsx", RecordTypeSales, rows); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}

	// Append-only by design: there is no dedup key for sales.
	if len(sales.sales) != 2 {
		t.Errorf("expected 2 appended sales, got %d", len(sales.sales))
	}
}

func TestRecordFailure(t *testing.T) {
	imports := &fakeImportStore{}
	svc := newTestService(&fakeSaleStore{}, &fakeInventoryStore{}, imports)

	batch, err := svc.RecordFailure(context.Background(), models.ImportSourceSharePoint, "/Data/Inventory.xlsx", "failed to fetch: 404")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.Status != models.ImportStatusFailure {
		t.Errorf("status = %q, want FAILURE", batch.Status)
	}
	if batch.Records != 0 || batch.TotalRows != 0 {
		t.Errorf("pre-batch failure must carry zero rows, got %d/%d", batch.Records, batch.TotalRows)
	}

	var rowErrors []RowError
	if err := json.Unmarshal(batch.Errors, &rowErrors); err != nil {
		t.Fatalf("errors not decodable: %v", err)
	}
	if len(rowErrors) != 1 || rowErrors[0].Reason != "failed to fetch: 404" {
		t.Errorf("expected single top-level error, got %v", rowErrors)
	}
}

func TestLatestStatusBySource(t *testing.T) {
	imports := &fakeImportStore{}
	svc := newTestService(&fakeSaleStore{}, &fakeInventoryStore{}, imports)

	ctx := context.Background()
	// Oldest first; History returns newest first.
	_, _ = svc.ImportRows(ctx, models.ImportSourceSharePoint, "/Data/Sales.xlsx", RecordTypeSales, nil)
	_, _ = svc.RecordFailure(ctx, models.ImportSourceSharePoint, "/Data/Inventory.xlsx", "fetch failed")
	latestSales, _ := svc.ImportRows(ctx, models.ImportSourceSharePoint, "/Data/Sales.xlsx", RecordTypeSales, []RawRow{
		{"branchId": "b1", "date": "2025-01-01", "amount": "5"},
	})
	_, _ = svc.ImportRows(ctx, models.ImportSourceManualUpload, "Sales.xlsx", RecordTypeSales, nil)

	status, err := svc.LatestStatusBySource(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(status) != 2 {
		t.Fatalf("expected 2 logical sources, got %d: %v", len(status), status)
	}
	if status["Sales"].ID != latestSales.ImportRecord.ID {
		t.Error("Sales entry is not the most recent batch")
	}
	if status["Inventory"].Status != models.ImportStatusFailure {
		t.Errorf("Inventory status = %q, want FAILURE", status["Inventory"].Status)
	}
}
