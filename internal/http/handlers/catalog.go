package handlers

import (
	"net/http"
	"strconv"

	"repairshop/internal/catalog"
	"repairshop/internal/domain"
	"repairshop/internal/domain/models"
	"repairshop/internal/services"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the public storefront routes.
type CatalogHandler struct {
	Catalog        services.CatalogService
	DefaultPerPage int
}

func (h CatalogHandler) svc(c *gin.Context) services.CatalogService {
	return h.Catalog.ForRequest(requestID(c))
}

// GET /api/catalog/:kind
func (h CatalogHandler) Browse(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	q := c.Request.URL.Query()
	filters := catalog.ParseFilterSet(q)
	// low-stock is an inventory concern; the storefront never filters on it
	filters.LowStockOnly = false

	res, err := h.svc(c).Browse(c.Request.Context(), kind, filters,
		catalog.ParsePageRequest(q, h.DefaultPerPage),
		catalog.ParseSort(q.Get("sortBy"), q.Get("sortOrder")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/catalog/:kind/facets
func (h CatalogHandler) Facets(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	facets, err := h.svc(c).Facets(c.Request.Context(), kind)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": facets})
}

// GET /api/catalog/:kind/featured?limit=N
func (h CatalogHandler) Featured(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	limit := services.DefaultFeaturedLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			RespondDomainError(c, domain.ValidationError{Field: "limit", Msg: "must be a positive integer"})
			return
		}
		limit = min(n, catalog.MaxPerPage)
	}

	views, err := h.svc(c).Featured(c.Request.Context(), kind, limit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

// GET /api/catalog/items/:id
func (h CatalogHandler) Item(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.svc(c).Item(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

func kindParam(c *gin.Context) (models.Kind, bool) {
	kind, ok := models.ParseKind(c.Param("kind"))
	if !ok {
		respondError(c, http.StatusNotFound, "not_found", "unknown catalog type "+strconv.Quote(c.Param("kind")), nil)
		return "", false
	}
	return kind, true
}
