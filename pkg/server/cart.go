package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/insomnia-fuel/cafe-api/pkg/models"
	"github.com/insomnia-fuel/cafe-api/pkg/repository"
	"go.uber.org/zap"
)

// buildCartResponse shapes the cart with its computed subtotal.
func buildCartResponse(cart *models.Cart) gin.H {
	if cart == nil {
		return gin.H{"items": []models.CartItem{}, "subtotal": 0}
	}
	return gin.H{
		"uid":       cart.UID,
		"items":     cart.Items,
		"subtotal":  cart.Subtotal(),
		"createdAt": cart.CreatedAt,
		"updatedAt": cart.UpdatedAt,
	}
}

// GET /api/cart
func (s *Server) getCart(c *gin.Context) {
	principal := principalFrom(c)

	cart, err := s.deps.Carts.GetOrCreate(c.Request.Context(), principal.UID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("uid", principal.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load cart"})
		return
	}
	c.JSON(http.StatusOK, buildCartResponse(cart))
}

// POST /api/cart: body {menuItemId, name, price, quantity}; quantity 0 removes.
func (s *Server) upsertCartItem(c *gin.Context) {
	principal := principalFrom(c)

	var body struct {
		MenuItemID string   `json:"menuItemId"`
		Name       string   `json:"name"`
		Price      *float64 `json:"price"`
		Quantity   *int64   `json:"quantity"`
	}
	if err := c.BindJSON(&body); err != nil ||
		body.MenuItemID == "" || body.Name == "" || body.Price == nil || body.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing or invalid cart item data"})
		return
	}

	cart, err := s.deps.Carts.UpsertItem(c.Request.Context(), principal.UID, models.CartItem{
		MenuItemID: body.MenuItemID,
		Name:       body.Name,
		Price:      *body.Price,
		Quantity:   *body.Quantity,
	})
	if err != nil {
		s.logger.Error("Failed to update cart", zap.String("uid", principal.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update cart"})
		return
	}
	c.JSON(http.StatusOK, buildCartResponse(cart))
}

// DELETE /api/cart/:menuItemId
func (s *Server) removeCartItem(c *gin.Context) {
	principal := principalFrom(c)

	cart, err := s.deps.Carts.RemoveItem(c.Request.Context(), principal.UID, c.Param("menuItemId"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusOK, buildCartResponse(nil))
		return
	}
	if err != nil {
		s.logger.Error("Failed to remove cart item", zap.String("uid", principal.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update cart"})
		return
	}
	c.JSON(http.StatusOK, buildCartResponse(cart))
}

// DELETE /api/cart: empty the cart but keep the document.
func (s *Server) clearCart(c *gin.Context) {
	principal := principalFrom(c)

	cart, err := s.deps.Carts.Clear(c.Request.Context(), principal.UID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusOK, buildCartResponse(nil))
		return
	}
	if err != nil {
		s.logger.Error("Failed to clear cart", zap.String("uid", principal.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to clear cart"})
		return
	}
	c.JSON(http.StatusOK, buildCartResponse(cart))
}
