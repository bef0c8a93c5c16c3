package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/insomnia-fuel/cafe-api/pkg/models"
	"github.com/insomnia-fuel/cafe-api/pkg/repository"
	"go.uber.org/zap"
)

func pageParams(c *gin.Context) (int64, int64) {
	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if err != nil || limit < 1 {
		limit = 20
	}
	return page, limit
}

// GET /api/orders (admin)
func (s *Server) listOrders(c *gin.Context) {
	page, limit := pageParams(c)

	result, err := s.deps.Orders.ListPaginated(c.Request.Context(), page, limit)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load orders"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/orders/my
func (s *Server) myOrders(c *gin.Context) {
	principal := principalFrom(c)

	orders, err := s.deps.Orders.ListByUser(c.Request.Context(), principal.UID)
	if err != nil {
		s.logger.Error("Failed to list user orders",
			zap.String("uid", principal.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Failed to load user orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "orders": orders})
}

// PUT /api/orders/:id (admin): kitchen status
func (s *Server) updateOrderStatus(c *gin.Context) {
	var body struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.BindJSON(&body); err != nil || body.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing status"})
		return
	}

	err := s.deps.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
	case errors.Is(err, repository.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case err != nil:
		s.logger.Error("Failed to update order status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update status"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
	}
}

// PUT /api/orders/:id/payment (admin)
func (s *Server) updateOrderPaymentStatus(c *gin.Context) {
	var body struct {
		PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	}
	if err := c.BindJSON(&body); err != nil || body.PaymentStatus == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing paymentStatus"})
		return
	}
	if !models.ValidPaymentStatus(body.PaymentStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown paymentStatus"})
		return
	}

	err := s.deps.Orders.UpdatePaymentStatus(c.Request.Context(), c.Param("id"), body.PaymentStatus)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
	case err != nil:
		s.logger.Error("Failed to update payment status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update payment status"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Payment status updated"})
	}
}
