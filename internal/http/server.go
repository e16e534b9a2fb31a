// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kainan/internal/http/handlers"
	"kainan/internal/http/middleware"
)

type ServerDeps struct {
	Pricing handlers.QuoteService
	Order   handlers.OrderService
}

type Server struct {
	delivery *handlers.DeliveryHandler
	order    *handlers.OrderHandler
}

func NewServer(deps ServerDeps) *Server {
	return &Server{
		delivery: handlers.NewDeliveryHandler(deps.Pricing),
		order:    handlers.NewOrderHandler(deps.Order),
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")
	api.POST("/delivery/quote", s.delivery.Quote)
	api.GET("/delivery/quote", s.delivery.Quote)
	api.GET("/delivery/quotes/:id", s.delivery.Get)

	api.POST("/orders", s.order.Submit)
	api.GET("/orders/:id", s.order.Get)
	api.POST("/orders/:id/status", s.order.Advance)
	api.POST("/orders/:id/cancel", s.order.Cancel)
	return r
}
