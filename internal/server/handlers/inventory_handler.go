package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockkeeper/internal/domain/models"
	"github.com/mamadbah2/stockkeeper/internal/service/inventory"
)

// Inventory is the subset of the inventory service exposed over HTTP.
type Inventory interface {
	ImportFrom(ctx context.Context, src inventory.Source) (models.ImportResult, error)
	LowStock(ctx context.Context, filter models.LowStockFilter) ([]models.Record, error)
	Export(ctx context.Context, sink inventory.Sink, threshold int) (int, error)
}

// InventoryHandler serves the import, low stock and export endpoints.
type InventoryHandler struct {
	svc       Inventory
	source    inventory.Source
	sink      inventory.Sink
	threshold int
	logger    *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter. threshold answers
// requests that do not name one. Import always reads
// source and export always writes sink; clients cannot point them elsewhere.
func NewInventoryHandler(svc Inventory, source inventory.Source, sink inventory.Sink, threshold int, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, source: source, sink: sink, threshold: threshold, logger: logger}
}

// LowStock lists the low stock lines matching the query parameters.
func (h *InventoryHandler) LowStock(c *gin.Context) {
	threshold, ok := h.thresholdParam(c, c.Query("threshold"))
	if !ok {
		return
	}

	filter := models.LowStockFilter{
		Threshold: threshold,
		Type:      c.Query("type"),
		Brand:     c.Query("brand"),
		Category:  c.Query("category"),
	}

	records, err := h.svc.LowStock(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "low stock query failed", err)
		return
	}

	items := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		item := make(map[string]interface{}, len(record))
		for _, elem := range record.Without(models.FieldID) {
			item[elem.Key] = elem.Value
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{"threshold": filter.Threshold, "count": len(items), "items": items})
}

// Import upserts the configured inventory source.
func (h *InventoryHandler) Import(c *gin.Context) {
	res, err := h.svc.ImportFrom(c.Request.Context(), h.source)
	if err != nil {
		h.fail(c, "import failed", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type exportRequest struct {
	Threshold *int `json:"threshold"`
}

// Export writes the low stock lines to the configured target.
func (h *InventoryHandler) Export(c *gin.Context) {
	var req exportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warn("invalid export payload", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	threshold := h.threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	n, err := h.svc.Export(c.Request.Context(), h.sink, threshold)
	if err != nil {
		h.fail(c, "export failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exported": n})
}

func (h *InventoryHandler) thresholdParam(c *gin.Context, raw string) (int, bool) {
	if raw == "" {
		return h.threshold, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "threshold must be an integer"})
		return 0, false
	}
	return n, true
}

func (h *InventoryHandler) fail(c *gin.Context, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrStorage):
		status = http.StatusBadGateway
	case errors.Is(err, models.ErrFileAccess), errors.Is(err, models.ErrFormat):
		status = http.StatusUnprocessableEntity
	}
	h.logger.Error(msg, zap.Error(err), zap.Int("status", status))
	c.JSON(status, gin.H{"error": err.Error()})
}
