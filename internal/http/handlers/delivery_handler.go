// README: Delivery quote handlers.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kainan/internal/modules/pricing"
)

// QuoteService is implemented by *pricing.Service.
type QuoteService interface {
	Estimate(ctx context.Context, address string) pricing.Quote
	Get(ctx context.Context, quotationID string) (pricing.Quote, error)
}

type DeliveryHandler struct {
	pricing QuoteService
}

func NewDeliveryHandler(svc QuoteService) *DeliveryHandler {
	return &DeliveryHandler{pricing: svc}
}

type quoteReq struct {
	Address string `json:"address" form:"address"`
}

// Quote accepts the address as a JSON body (POST) or query parameter (GET).
func (h *DeliveryHandler) Quote(c *gin.Context) {
	var req quoteReq
	if c.Request.Method == http.MethodGet {
		req.Address = c.Query("address")
	} else if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	address := strings.TrimSpace(req.Address)
	if address == "" {
		writeError(c, http.StatusBadRequest, "address is required")
		return
	}
	writeJSON(c, http.StatusOK, h.pricing.Estimate(c.Request.Context(), address))
}

func (h *DeliveryHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid quotation id")
		return
	}
	q, err := h.pricing.Get(c.Request.Context(), id)
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}
