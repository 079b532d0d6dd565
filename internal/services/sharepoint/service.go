package sharepoint

import (
	"context"
	"os"
	"strings"
	"sync"

	"catering-operations-backend/internal/models"
	"catering-operations-backend/internal/services/ingest"

	"github.com/sirupsen/logrus"
)

// DocumentFetcher is the remote document store boundary.
type DocumentFetcher interface {
	DownloadFile(ctx context.Context, path string) ([]byte, error)
}

// Source is one configured remote document to sync.
type Source struct {
	Key        string
	Path       string
	RecordType ingest.RecordType
}

// Service drives sync runs against the remote document store. One run per
// source; a failed source never affects its siblings.
type Service struct {
	fetcher DocumentFetcher
	ingest  *ingest.Service
	logger  *logrus.Logger
	sources []Source
}

// NewService wires the orchestrator. A nil fetcher disables syncing; the
// check happens here once, not inside every call.
func NewService(fetcher DocumentFetcher, ingestService *ingest.Service, logger *logrus.Logger) *Service {
	if fetcher == nil {
		logger.Warn("SharePoint credentials not configured, sync features will be disabled")
	}
	return &Service{
		fetcher: fetcher,
		ingest:  ingestService,
		logger:  logger,
		sources: []Source{
			{
				Key:        "sales",
				Path:       envOr("SHAREPOINT_SALES_PATH", "/Shared Documents/Data/Sales.xlsx"),
				RecordType: ingest.RecordTypeSales,
			},
			{
				Key:        "inventory",
				Path:       envOr("SHAREPOINT_INVENTORY_PATH", "/Shared Documents/Data/Inventory.xlsx"),
				RecordType: ingest.RecordTypeInventory,
			},
		},
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (s *Service) Enabled() bool {
	return s.fetcher != nil
}

// SourceResult is the per-source outcome of a sync run.
type SourceResult struct {
	Source  string             `json:"source"`
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Batch   *models.DataImport `json:"importRecord,omitempty"`
}

// SyncReport aggregates one SyncAll invocation.
type SyncReport struct {
	Success bool           `json:"success"`
	Results []SourceResult `json:"results"`
}

// HasSource reports whether key names a configured source.
func (s *Service) HasSource(key string) bool {
	for _, src := range s.sources {
		if src.Key == key {
			return true
		}
	}
	return false
}

// SyncOne fetches, parses and imports one source, recording exactly one
// ledger entry. Fetch and format errors short-circuit before row processing
// and are recorded as zero-row FAILURE batches; row errors never do.
func (s *Service) SyncOne(ctx context.Context, key string) SourceResult {
	for _, src := range s.sources {
		if src.Key == key {
			return s.syncSource(ctx, src)
		}
	}
	return SourceResult{Source: key, Message: "unsupported data source"}
}

// SyncAll runs every configured source concurrently with an all-settled join:
// one source's failure neither cancels nor blocks the others, and every
// started run is joined before returning.
func (s *Service) SyncAll(ctx context.Context) SyncReport {
	s.logger.Info("starting full data sync from SharePoint")

	results := make([]SourceResult, len(s.sources))
	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			results[i] = s.syncSource(ctx, src)
		}(i, src)
	}
	wg.Wait()

	report := SyncReport{Success: true, Results: results}
	for _, result := range results {
		if !result.Success {
			report.Success = false
		}
	}

	s.logger.WithField("success", report.Success).Info("full data sync completed")
	return report
}

func (s *Service) syncSource(ctx context.Context, src Source) SourceResult {
	if !s.Enabled() {
		return SourceResult{Source: src.Key, Message: "SharePoint client not initialized"}
	}

	data, err := s.fetcher.DownloadFile(ctx, src.Path)
	if err != nil {
		return s.failSource(ctx, src, err)
	}

	format, err := ingest.DetectFormat(src.Path, "")
	if err != nil {
		return s.failSource(ctx, src, err)
	}

	summary, err := s.ingest.ImportFile(ctx, models.ImportSourceSharePoint, src.Path, src.RecordType, data, format)
	if err != nil {
		return s.failSource(ctx, src, err)
	}

	return SourceResult{
		Source:  src.Key,
		Success: true,
		Message: src.Key + " data synced",
		Batch:   summary.ImportRecord,
	}
}

// failSource records the run-level failure in the ledger and reports it. A
// ledger write failure is logged but does not mask the original error.
func (s *Service) failSource(ctx context.Context, src Source, cause error) SourceResult {
	s.logger.WithFields(logrus.Fields{
		"source": src.Key,
		"path":   src.Path,
		"error":  cause.Error(),
	}).Error("sync failed")

	batch, err := s.ingest.RecordFailure(ctx, models.ImportSourceSharePoint, src.Path, cause.Error())
	if err != nil {
		s.logger.WithField("source", src.Key).WithError(err).Error("failed to record sync failure")
	}
	return SourceResult{Source: src.Key, Message: cause.Error(), Batch: batch}
}
