package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/insomnia-fuel/cafe-api/pkg/repository"
	"go.uber.org/zap"
)

// POST /api/users/sync: create or refresh the caller's user record from the
// verified token plus optional profile fields.
func (s *Server) syncUser(c *gin.Context) {
	principal := principalFrom(c)

	var body struct {
		DisplayName string `json:"displayName"`
		PhotoURL    string `json:"photoURL"`
		Phone       string `json:"phone"`
	}
	// Body is optional; ignore bind errors for an empty payload.
	_ = c.ShouldBindJSON(&body)

	user, err := s.deps.Users.Create(c.Request.Context(), repository.CreateUserParams{
		UID:         principal.UID,
		Email:       principal.Email,
		DisplayName: body.DisplayName,
		PhotoURL:    body.PhotoURL,
		Phone:       body.Phone,
	})
	if err != nil {
		s.logger.Error("Failed to sync user", zap.String("uid", principal.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// GET /api/users/me
func (s *Server) getMe(c *gin.Context) {
	principal := principalFrom(c)

	user, err := s.deps.Users.GetByUID(c.Request.Context(), principal.UID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		s.logger.Error("Failed to load user", zap.String("uid", principal.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// GET /api/users (admin)
func (s *Server) listUsers(c *gin.Context) {
	page, limit := pageParams(c)

	result, err := s.deps.Users.ListPaginated(c.Request.Context(), page, limit)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load users"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// DELETE /api/users/:uid (admin)
func (s *Server) deleteUser(c *gin.Context) {
	err := s.deps.Users.Delete(c.Request.Context(), c.Param("uid"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		s.logger.Error("Failed to delete user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
