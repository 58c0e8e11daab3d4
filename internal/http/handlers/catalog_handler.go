package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/homeservice-backend/internal/repository"
)

type CatalogHandler struct {
	catalog *repository.CatalogRepository
}

func NewCatalogHandler(catalog *repository.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListCategories GET /categories — справочник категорий услуг.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
