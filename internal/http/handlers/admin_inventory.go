package handlers

import (
	"net/http"
	"strings"

	"repairshop/internal/catalog"
	"repairshop/internal/domain"
	"repairshop/internal/domain/models"
	"repairshop/internal/http/middleware"
	"repairshop/internal/services"

	"github.com/gin-gonic/gin"
)

// InventoryHandler serves the back office under /api/admin.
type InventoryHandler struct {
	Inventory      services.InventoryService
	DefaultPerPage int
}

func (h InventoryHandler) svc(c *gin.Context) services.InventoryService {
	s := h.Inventory
	s.RequestID = requestID(c)
	if u, ok := middleware.CurrentUser(c); ok {
		s.Actor = u
	}
	return s
}

type stockRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

// GET /api/admin/inventory?type=parts&lowStockOnly=true
func (h InventoryHandler) List(c *gin.Context) {
	kind, ok := optionalKind(c)
	if !ok {
		return
	}
	q := c.Request.URL.Query()
	res, err := h.svc(c).Browse(c.Request.Context(), kind, catalog.ParseFilterSet(q),
		catalog.ParsePageRequest(q, h.DefaultPerPage),
		catalog.ParseSort(q.Get("sortBy"), q.Get("sortOrder")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/admin/inventory/low-stock
func (h InventoryHandler) LowStock(c *gin.Context) {
	kind, ok := optionalKind(c)
	if !ok {
		return
	}
	views, err := h.svc(c).LowStock(c.Request.Context(), kind)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": views, "total": len(views)})
}

// GET /api/admin/inventory/low-stock/report
func (h InventoryHandler) LowStockReport(c *gin.Context) {
	kind, ok := optionalKind(c)
	if !ok {
		return
	}
	pdf, filename, err := h.svc(c).LowStockReportPDF(c.Request.Context(), kind)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// POST /api/admin/inventory
func (h InventoryHandler) Create(c *gin.Context) {
	var in models.CatalogItemInput
	if !BindJSONOrError(c, &in) {
		return
	}
	it, err := h.svc(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": catalog.NewItemView(it)})
}

// PUT /api/admin/inventory/:id
func (h InventoryHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var in models.CatalogItemInput
	if !BindJSONOrError(c, &in) {
		return
	}
	it, err := h.svc(c).Update(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": catalog.NewItemView(it)})
}

// DELETE /api/admin/inventory/:id
func (h InventoryHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/admin/inventory/:id/stock  {"delta": -2}
func (h InventoryHandler) AdjustStock(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req stockRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	view, err := h.svc(c).AdjustStock(c.Request.Context(), id, req.Delta, req.Reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

// POST /api/admin/cache/invalidate
func (h InventoryHandler) InvalidateCache(c *gin.Context) {
	h.svc(c).InvalidateCache(c.Request.Context(), "manual")

	stats, enabled := h.Inventory.Catalog.CacheStats()
	c.JSON(http.StatusOK, gin.H{"message": "cache invalidated", "cache_enabled": enabled, "stats": stats})
}

func optionalKind(c *gin.Context) (models.Kind, bool) {
	raw := strings.TrimSpace(c.Query("type"))
	if raw == "" || strings.EqualFold(raw, "all") {
		return "", true
	}
	kind, ok := models.ParseKind(raw)
	if !ok {
		RespondDomainError(c, domain.ValidationError{Field: "type", Msg: "must be one of parts, accessories, devices, services"})
		return "", false
	}
	return kind, true
}
