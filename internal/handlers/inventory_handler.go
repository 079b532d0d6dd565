package handler

import (
	"errors"
	"net/http"
	"time"

	"catering-operations-backend/internal/models"
	"catering-operations-backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryHandler struct {
	repo *repository.InventoryRepository
}

func NewInventoryHandler(repo *repository.InventoryRepository) *InventoryHandler {
	return &InventoryHandler{repo: repo}
}

func (h *InventoryHandler) List(c *gin.Context) {
	items, err := h.repo.List(c.Request.Context(), c.Query("branchId"), c.Query("status"), c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch inventory"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *InventoryHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item ID"})
		return
	}

	item, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

type inventoryPayload struct {
	ItemName string  `json:"itemName" binding:"required"`
	BranchID string  `json:"branchId" binding:"required"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Location string  `json:"location"`
	MinStock float64 `json:"minStock"`
	MaxStock float64 `json:"maxStock"`
}

func (h *InventoryHandler) Create(c *gin.Context) {
	var payload inventoryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "itemName and branchId are required"})
		return
	}

	location := payload.Location
	if location == "" {
		location = "Main Storage"
	}

	item := &models.InventoryItem{
		ID:          uuid.New(),
		ItemName:    payload.ItemName,
		BranchID:    payload.BranchID,
		Quantity:    payload.Quantity,
		Unit:        payload.Unit,
		Location:    location,
		Status:      models.ClassifyStockStatus(payload.Quantity, payload.MinStock),
		MinStock:    payload.MinStock,
		MaxStock:    payload.MaxStock,
		LastUpdated: time.Now(),
		CreatedAt:   time.Now(),
	}
	if err := h.repo.Create(c.Request.Context(), item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create item"})
		return
	}
	c.JSON(http.StatusCreated, item)
}

type inventoryUpdatePayload struct {
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
	Location *string  `json:"location"`
	MinStock *float64 `json:"minStock"`
	MaxStock *float64 `json:"maxStock"`
}

func (h *InventoryHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item ID"})
		return
	}

	var payload inventoryUpdatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	updates := map[string]interface{}{}
	if payload.Quantity != nil {
		updates["quantity"] = *payload.Quantity
	}
	if payload.Unit != nil {
		updates["unit"] = *payload.Unit
	}
	if payload.Location != nil {
		updates["location"] = *payload.Location
	}
	if payload.MinStock != nil {
		updates["min_stock"] = *payload.MinStock
	}
	if payload.MaxStock != nil {
		updates["max_stock"] = *payload.MaxStock
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	item, err := h.repo.Update(c.Request.Context(), id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update item"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item ID"})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete item"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.repo.LowStock(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch low stock items"})
		return
	}
	c.JSON(http.StatusOK, items)
}
