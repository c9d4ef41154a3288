package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/quiz-api/internal/service"
)

// CatalogHandler обрабатывает запросы к категориям и тегам
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler создает новый обработчик каталога
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// NameRequest - тело запроса для категории или тега
type NameRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// CreateCategory создает категорию
// POST /api/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req NameRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.catalogService.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// ListCategories возвращает все категории
// GET /api/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetCategory возвращает категорию
// GET /api/categories/:id
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	category, err := h.catalogService.GetCategory(c.Request.Context(), c.MustGet("categoryID").(uint))
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// UpdateCategory переименовывает категорию
// PUT /api/categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	var req NameRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.catalogService.UpdateCategory(c.Request.Context(), c.MustGet("categoryID").(uint), req.Name)
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory удаляет категорию
// DELETE /api/categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.catalogService.DeleteCategory(c.Request.Context(), c.MustGet("categoryID").(uint)); err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateTag создает тег
// POST /api/tags
func (h *CatalogHandler) CreateTag(c *gin.Context) {
	var req NameRequest
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.catalogService.CreateTag(c.Request.Context(), req.Name)
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// ListTags возвращает все теги
// GET /api/tags
func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.catalogService.ListTags(c.Request.Context())
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// GetTag возвращает тег
// GET /api/tags/:id
func (h *CatalogHandler) GetTag(c *gin.Context) {
	tag, err := h.catalogService.GetTag(c.Request.Context(), c.MustGet("tagID").(uint))
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// UpdateTag переименовывает тег
// PUT /api/tags/:id
func (h *CatalogHandler) UpdateTag(c *gin.Context) {
	var req NameRequest
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.catalogService.UpdateTag(c.Request.Context(), c.MustGet("tagID").(uint), req.Name)
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// DeleteTag удаляет тег
// DELETE /api/tags/:id
func (h *CatalogHandler) DeleteTag(c *gin.Context) {
	if err := h.catalogService.DeleteTag(c.Request.Context(), c.MustGet("tagID").(uint)); err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}
