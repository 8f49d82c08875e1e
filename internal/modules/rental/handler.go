package rental

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"locamat/internal/pkg/response"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the read-only rental endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/contracts", h.ListContracts)
	rg.GET("/clients/:id/contracts", h.ListClientContracts)
	rg.GET("/rentals/open-lines", h.ListOpenLines)
}

// RegisterProtectedRoutes mounts the mutating endpoints; the caller wraps the
// group with the auth middleware.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/rentals", h.Reserve)
	rg.POST("/rentals/returns", h.Restitute)
}

func (h *Handler) Reserve(c *gin.Context) {
	var req ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid end_date, expected YYYY-MM-DD")
		return
	}

	res, err := h.service.Reserve(c.Request.Context(), req.ClientID, req.UnitIDs, start, end)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, res)
}

func (h *Handler) Restitute(c *gin.Context) {
	var req ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	returned, err := time.Parse(dateLayout, req.ReturnDate)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid return_date, expected YYYY-MM-DD")
		return
	}

	lines, err := h.service.Restitute(c.Request.Context(), req.LineIDs, returned)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"lines": lines})
}

func (h *Handler) ListOpenLines(c *gin.Context) {
	lines, err := h.service.OpenLines(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lines": lines})
}

func (h *Handler) ListContracts(c *gin.Context) {
	summaries, err := h.service.ContractSummaries(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"contracts": summaries})
}

func (h *Handler) ListClientContracts(c *gin.Context) {
	clientID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid client id")
		return
	}

	contracts, err := h.service.ContractsByClient(c.Request.Context(), clientID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"contracts": contracts})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var ve *ValidationError
	var nf *NotFoundError
	var ce *ConflictError

	switch {
	case errors.As(err, &ve):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", ve.Msg)
	case errors.As(err, &nf):
		response.ErrorWithDetails(c, http.StatusNotFound, "NOT_FOUND", nf.Error(), gin.H{
			"resource": nf.Resource,
			"ids":      nf.IDs,
		})
	case errors.As(err, &ce):
		response.ErrorWithDetails(c, http.StatusConflict, "RENTAL_CONFLICT", ce.Error(), gin.H{
			"reason": ce.Reason,
			"ids":    ce.IDs,
		})
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Operation failed")
	}
}
