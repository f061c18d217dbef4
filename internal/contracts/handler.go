package contracts

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crediario/portal-backend/internal/customers"
	"crediario/portal-backend/internal/sales"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sales/:id/contract", h.GetContract)
}

func (h *Handler) GetContract(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var buf bytes.Buffer
	if err := h.service.RenderContract(c.Request.Context(), id, &buf); err != nil {
		switch {
		case errors.Is(err, sales.ErrSaleNotFound), errors.Is(err, customers.ErrCustomerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render contract, try again"})
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="contrato-%s.pdf"`, c.Param("id")))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
