package ingest

import (
	"context"
	"encoding/json"
	"time"

	"catering-operations-backend/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SaleStore appends sales records; there is no conflict resolution.
type SaleStore interface {
	Append(ctx context.Context, sale *models.Sale) error
}

// InventoryStore must upsert atomically on (branch_id, item_name) so that
// concurrent imports of the same key cannot lose updates. On an existing key
// the store keeps its stored min_stock unless the incoming record carries a
// positive one, and recomputes the status against the merged quantity and
// threshold.
type InventoryStore interface {
	Upsert(ctx context.Context, item *models.InventoryItem) error
}

// ImportStore is the append-only import ledger.
type ImportStore interface {
	Create(ctx context.Context, imp *models.DataImport) error
	History(ctx context.Context, source string, limit int) ([]models.DataImport, error)
}

// Service runs import batches: normalize each raw row, apply it under the
// record type's persistence policy, and record one ledger entry per run.
type Service struct {
	sales     SaleStore
	inventory InventoryStore
	imports   ImportStore
	logger    *logrus.Logger
}

func NewService(sales SaleStore, inventory InventoryStore, imports ImportStore, logger *logrus.Logger) *Service {
	return &Service{
		sales:     sales,
		inventory: inventory,
		imports:   imports,
		logger:    logger,
	}
}

// ImportSummary reports one completed run back to the caller.
type ImportSummary struct {
	Imported     int                `json:"imported"`
	TotalRows    int                `json:"totalRows"`
	Errors       int                `json:"errors"`
	ImportRecord *models.DataImport `json:"importRecord"`
}

// ImportFile parses the document and runs the rows. Parse failures propagate
// to the caller without creating a ledger entry; the caller decides whether
// the failed run is recorded (scheduled sync) or surfaced directly (upload).
func (s *Service) ImportFile(ctx context.Context, source, fileName string, recordType RecordType, data []byte, format string) (*ImportSummary, error) {
	rows, err := ParseTable(data, format)
	if err != nil {
		return nil, err
	}
	return s.ImportRows(ctx, source, fileName, recordType, rows)
}

// ImportRows processes rows sequentially so counts are deterministic and the
// error list preserves input order. A row failure is recorded and the loop
// continues; only a ledger write failure aborts.
func (s *Service) ImportRows(ctx context.Context, source, fileName string, recordType RecordType, rows []RawRow) (*ImportSummary, error) {
	s.logger.WithFields(logrus.Fields{
		"source":    source,
		"file_name": fileName,
		"data_type": recordType,
		"rows":      len(rows),
	}).Info("[import.start]")

	imported := 0
	var rowErrors []RowError

	for _, row := range rows {
		record, rowErr := Canonicalize(row, recordType)
		if rowErr == nil {
			rowErr = s.apply(ctx, record)
		}
		if rowErr != nil {
			if rowErr.Row == nil {
				rowErr.Row = row
			}
			rowErrors = append(rowErrors, *rowErr)
			continue
		}
		imported++
	}

	batch, err := s.recordBatch(ctx, source, fileName, imported, len(rows), rowErrors)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"source":   source,
		"imported": imported,
		"errors":   len(rowErrors),
		"status":   batch.Status,
	}).Info("[import.complete]")

	return &ImportSummary{
		Imported:     imported,
		TotalRows:    len(rows),
		Errors:       len(rowErrors),
		ImportRecord: batch,
	}, nil
}

// apply persists one canonical record under its type's policy. Persistence
// failures come back as row errors so the batch keeps going.
func (s *Service) apply(ctx context.Context, record *CanonicalRecord) *RowError {
	switch record.Type {
	case RecordTypeSales:
		if err := s.sales.Append(ctx, record.Sale); err != nil {
			return &RowError{Reason: "failed to store sale: " + err.Error()}
		}
	case RecordTypeInventory:
		if err := s.inventory.Upsert(ctx, record.Inventory); err != nil {
			return &RowError{Reason: "failed to store inventory item: " + err.Error()}
		}
	}
	return nil
}

func (s *Service) recordBatch(ctx context.Context, source, fileName string, imported, totalRows int, rowErrors []RowError) (*models.DataImport, error) {
	batch := &models.DataImport{
		ID:         uuid.New(),
		Source:     source,
		FileName:   fileName,
		Records:    imported,
		TotalRows:  totalRows,
		Status:     models.DeriveImportStatus(imported, len(rowErrors)),
		ImportedAt: time.Now(),
	}
	if len(rowErrors) > 0 {
		encoded, err := json.Marshal(rowErrors)
		if err != nil {
			return nil, err
		}
		batch.Errors = encoded
	}
	if err := s.imports.Create(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// RecordFailure writes the zero-row FAILURE entry for a run that died before
// any row was read (fetch or format error).
func (s *Service) RecordFailure(ctx context.Context, source, fileName, reason string) (*models.DataImport, error) {
	encoded, err := json.Marshal([]RowError{{Reason: reason}})
	if err != nil {
		return nil, err
	}
	batch := &models.DataImport{
		ID:         uuid.New(),
		Source:     source,
		FileName:   fileName,
		Status:     models.ImportStatusFailure,
		Errors:     encoded,
		ImportedAt: time.Now(),
	}
	if err := s.imports.Create(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// History lists ledger entries, newest first, optionally filtered by source.
func (s *Service) History(ctx context.Context, source string, limit int) ([]models.DataImport, error) {
	return s.imports.History(ctx, source, limit)
}

// LatestStatusBySource reduces recent remote-sync batches to the most recent
// entry per logical source name.
func (s *Service) LatestStatusBySource(ctx context.Context) (map[string]models.DataImport, error) {
	recent, err := s.imports.History(ctx, models.ImportSourceSharePoint, 20)
	if err != nil {
		return nil, err
	}

	statusBySource := make(map[string]models.DataImport, len(recent))
	for _, imp := range recent {
		name := models.LogicalSourceName(imp.FileName)
		if _, ok := statusBySource[name]; !ok {
			statusBySource[name] = imp
		}
	}
	return statusBySource, nil
}
