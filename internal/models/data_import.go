package models

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ImportStatusSuccess = "SUCCESS"
	ImportStatusPartial = "PARTIAL"
	ImportStatusFailure = "FAILURE"
)

const (
	ImportSourceManualUpload = "Manual Upload"
	ImportSourceSharePoint   = "SharePoint"
)

// DataImport is one ledger entry per ingestion run. It is written once when
// the run finishes and never updated.
type DataImport struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Source     string         `gorm:"index" json:"source"`
	FileName   string         `json:"fileName"`
	Records    int            `json:"records"`
	TotalRows  int            `json:"totalRows"`
	Status     string         `gorm:"index" json:"status"`
	Errors     datatypes.JSON `json:"errors,omitempty"`
	ImportedAt time.Time      `gorm:"index" json:"importedAt"`
}

// DeriveImportStatus maps the row accounting of a completed run to a batch
// status. A run that applied at least one row is PARTIAL even if later rows
// failed; FAILURE means nothing was applied.
func DeriveImportStatus(succeeded, errCount int) string {
	switch {
	case errCount == 0:
		return ImportStatusSuccess
	case succeeded > 0:
		return ImportStatusPartial
	default:
		return ImportStatusFailure
	}
}

// LogicalSourceName reduces a file name or remote path to the name used for
// per-source status grouping: path prefix and extension stripped.
func LogicalSourceName(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
