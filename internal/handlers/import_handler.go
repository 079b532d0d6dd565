package handler

import (
	"io"
	"net/http"
	"strconv"

	"catering-operations-backend/internal/models"
	"catering-operations-backend/internal/services/ingest"
	"catering-operations-backend/internal/services/sharepoint"

	"github.com/gin-gonic/gin"
)

type ImportHandler struct {
	ingest     *ingest.Service
	sharepoint *sharepoint.Service
}

func NewImportHandler(ingestService *ingest.Service, sharepointService *sharepoint.Service) *ImportHandler {
	return &ImportHandler{ingest: ingestService, sharepoint: sharepointService}
}

// Upload ingests one uploaded spreadsheet. Bad files are rejected before any
// ledger entry exists; once row processing starts, the response always
// carries explicit imported/error counts.
func (h *ImportHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	defer file.Close()

	recordType, ok := ingest.ParseRecordType(c.PostForm("dataType"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported data type"})
		return
	}

	if header.Size > ingest.MaxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 50MB limit"})
		return
	}

	format, err := ingest.DetectFormat(header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, ingest.MaxFileSize+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}

	summary, err := h.ingest.ImportFile(c.Request.Context(), models.ImportSourceManualUpload, header.Filename, recordType, data, format)
	if err != nil {
		switch err.(type) {
		case *ingest.FormatError, *ingest.MalformedInputError:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process file"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"imported":     summary.Imported,
		"totalRows":    summary.TotalRows,
		"errors":       summary.Errors,
		"importRecord": summary.ImportRecord,
	})
}

// History returns ledger entries, newest first.
func (h *ImportHandler) History(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	imports, err := h.ingest.History(c.Request.Context(), c.Query("source"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch import history"})
		return
	}
	c.JSON(http.StatusOK, imports)
}

// SyncAll triggers every configured remote source; sources run concurrently
// and settle independently.
func (h *ImportHandler) SyncAll(c *gin.Context) {
	if !h.sharepoint.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "SharePoint client not initialized"})
		return
	}

	report := h.sharepoint.SyncAll(c.Request.Context())
	c.JSON(http.StatusOK, report)
}

// SyncSource triggers one remote source by key.
func (h *ImportHandler) SyncSource(c *gin.Context) {
	source := c.Param("source")
	if !h.sharepoint.HasSource(source) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported data source"})
		return
	}
	if !h.sharepoint.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "SharePoint client not initialized"})
		return
	}

	result := h.sharepoint.SyncOne(c.Request.Context(), source)
	c.JSON(http.StatusOK, result)
}

// SyncStatus maps each logical remote source to its most recent batch.
func (h *ImportHandler) SyncStatus(c *gin.Context) {
	statusBySource, err := h.ingest.LatestStatusBySource(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch sync status"})
		return
	}
	c.JSON(http.StatusOK, statusBySource)
}
