package handler

import (
	"net/http"
	"strconv"

	"catering-operations-backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// SalesHandler is the read-only surface the analytics and forecasting
// collaborators consume; nothing writes sales outside the import pipeline.
type SalesHandler struct {
	repo *repository.SaleRepository
}

func NewSalesHandler(repo *repository.SaleRepository) *SalesHandler {
	return &SalesHandler{repo: repo}
}

func (h *SalesHandler) List(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	sales, err := h.repo.ListByBranch(c.Request.Context(), c.Query("branchId"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch sales"})
		return
	}
	c.JSON(http.StatusOK, sales)
}
