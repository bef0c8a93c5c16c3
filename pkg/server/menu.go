package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/insomnia-fuel/cafe-api/pkg/repository"
	"go.uber.org/zap"
)

// GET /api/menu: public, cache-aside when Redis is wired.
func (s *Server) listMenu(c *gin.Context) {
	ctx := c.Request.Context()

	if s.deps.Cache != nil {
		if items, err := s.deps.Cache.GetMenuCache(ctx); err == nil {
			c.JSON(http.StatusOK, gin.H{"items": items})
			return
		} else if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Warn("Menu cache read failed", zap.Error(err))
		}
	}

	items, err := s.deps.Menu.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list menu items", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch menu items"})
		return
	}

	if s.deps.Cache != nil {
		if err := s.deps.Cache.CacheMenu(ctx, items); err != nil {
			s.logger.Warn("Menu cache write failed", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GET /api/menu/:id
func (s *Server) getMenuItem(c *gin.Context) {
	item, err := s.deps.Menu.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
		return
	}
	if err != nil {
		s.logger.Error("Failed to fetch menu item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch menu item"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// POST /api/menu (admin)
func (s *Server) createMenuItem(c *gin.Context) {
	var input repository.MenuItemInput
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid body"})
		return
	}
	if input.Name == "" || input.Category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}

	item, err := s.deps.Menu.Create(c.Request.Context(), input)
	if err != nil {
		s.logger.Error("Failed to create menu item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create menu item"})
		return
	}

	s.invalidateMenuCache(c)
	c.JSON(http.StatusCreated, item)
}

// PUT /api/menu/:id (admin)
func (s *Server) updateMenuItem(c *gin.Context) {
	var input repository.MenuItemInput
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid body"})
		return
	}

	item, err := s.deps.Menu.Update(c.Request.Context(), c.Param("id"), input)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
		return
	}
	if err != nil {
		s.logger.Error("Failed to update menu item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update menu item"})
		return
	}

	s.invalidateMenuCache(c)
	c.JSON(http.StatusOK, item)
}

// DELETE /api/menu/:id (admin)
func (s *Server) deleteMenuItem(c *gin.Context) {
	err := s.deps.Menu.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
		return
	}
	if err != nil {
		s.logger.Error("Failed to delete menu item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete menu item"})
		return
	}

	s.invalidateMenuCache(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) invalidateMenuCache(c *gin.Context) {
	if s.deps.Cache == nil {
		return
	}
	if err := s.deps.Cache.InvalidateMenu(c.Request.Context()); err != nil {
		s.logger.Warn("Menu cache invalidation failed", zap.Error(err))
	}
}
