package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/insomnia-fuel/cafe-api/pkg/repository"
	"go.uber.org/zap"
)

// POST /api/contact: public; a valid token attaches the sender's uid.
func (s *Server) createContactMessage(c *gin.Context) {
	var body struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := c.BindJSON(&body); err != nil ||
		strings.TrimSpace(body.Name) == "" ||
		strings.TrimSpace(body.Email) == "" ||
		strings.TrimSpace(body.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name, email and message are required."})
		return
	}

	userID := ""
	if principal := principalFrom(c); principal != nil {
		userID = principal.UID
	}

	msg, err := s.deps.Contact.Create(c.Request.Context(), repository.ContactInput{
		UserID:  userID,
		Name:    body.Name,
		Email:   body.Email,
		Message: body.Message,
	})
	if err != nil {
		s.logger.Error("Failed to save contact message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send message."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "message": "Saved", "contact": msg})
}

// GET /api/contact (admin)
func (s *Server) listContactMessages(c *gin.Context) {
	page, limit := pageParams(c)

	result, err := s.deps.Contact.ListPaginated(c.Request.Context(), page, limit)
	if err != nil {
		s.logger.Error("Failed to list contact messages", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load contact messages."})
		return
	}
	c.JSON(http.StatusOK, result)
}

// PATCH /api/contact/:id (admin): body {handled}
func (s *Server) markContactHandled(c *gin.Context) {
	var body struct {
		Handled *bool `json:"handled"`
	}
	if err := c.BindJSON(&body); err != nil || body.Handled == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing handled flag"})
		return
	}

	err := s.deps.Contact.MarkHandled(c.Request.Context(), c.Param("id"), *body.Handled)
	if err == repository.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
		return
	}
	if err != nil {
		s.logger.Error("Failed to update contact message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update message."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
