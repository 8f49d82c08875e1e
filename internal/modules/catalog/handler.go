package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"locamat/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/catalog/categories", h.ListCategories)
	rg.GET("/catalog/brands", h.ListBrands)
	rg.GET("/catalog/models", h.ListModels)
	rg.GET("/catalog/equipment", h.ListUnits)
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load categories")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) ListBrands(c *gin.Context) {
	brands, err := h.service.ListBrands(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load brands")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"brands": brands})
}

func (h *Handler) ListModels(c *gin.Context) {
	models, err := h.service.ListModels(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load models")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"models": models})
}

func (h *Handler) ListUnits(c *gin.Context) {
	availableOnly := c.Query("available") == "true"

	units, err := h.service.ListUnits(c.Request.Context(), availableOnly)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load equipment")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": units})
}
