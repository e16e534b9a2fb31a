// README: Order handlers for checkout submission, status and cancel.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"kainan/internal/modules/order"
	"kainan/internal/types"
)

// OrderService is implemented by *order.Service.
type OrderService interface {
	Submit(ctx context.Context, cmd order.SubmitCommand) (*order.Order, error)
	Get(ctx context.Context, id types.ID) (*order.Order, error)
	Advance(ctx context.Context, cmd order.AdvanceCommand) (*order.Order, error)
	Cancel(ctx context.Context, cmd order.CancelCommand) (*order.Order, error)
}

type OrderHandler struct {
	order OrderService
}

func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{order: svc}
}

type submitOrderReq struct {
	CustomerName    string  `json:"customerName"`
	Phone           string  `json:"phone"`
	DeliveryAddress string  `json:"deliveryAddress"`
	Notes           string  `json:"notes"`
	Subtotal        float64 `json:"subtotal"`
}

type advanceReq struct {
	Status string `json:"status"`
}

type cancelReq struct {
	Reason string `json:"reason"`
}

type orderResp struct {
	*order.Order
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"deliveryFee"`
	Total       float64 `json:"total"`
	Currency    string  `json:"currency"`
}

func toOrderResp(o *order.Order) orderResp {
	return orderResp{
		Order:       o,
		Subtotal:    o.Subtotal.Pesos(),
		DeliveryFee: o.DeliveryFee.Pesos(),
		Total:       o.Total().Pesos(),
		Currency:    o.Subtotal.Currency,
	}
}

func (h *OrderHandler) Submit(c *gin.Context) {
	var req submitOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.order.Submit(c.Request.Context(), order.SubmitCommand{
		CustomerName:    req.CustomerName,
		Phone:           req.Phone,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		SubtotalPesos:   req.Subtotal,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toOrderResp(o))
}

func (h *OrderHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid order id")
		return
	}
	o, err := h.order.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toOrderResp(o))
}

func (h *OrderHandler) Advance(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid order id")
		return
	}
	var req advanceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	to, ok := order.ParseStatus(req.Status)
	if !ok {
		writeError(c, http.StatusBadRequest, "unknown status")
		return
	}
	o, err := h.order.Advance(c.Request.Context(), order.AdvanceCommand{
		OrderID:   types.ID(id),
		To:        to,
		ActorType: "staff",
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toOrderResp(o))
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid order id")
		return
	}
	var req cancelReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	o, err := h.order.Cancel(c.Request.Context(), order.CancelCommand{
		OrderID:   types.ID(id),
		ActorType: "customer",
		Reason:    req.Reason,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toOrderResp(o))
}
