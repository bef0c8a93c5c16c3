package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/insomnia-fuel/cafe-api/pkg/repository"
	"go.uber.org/zap"
)

// GET /api/gallery: public, newest first.
func (s *Server) listGallery(c *gin.Context) {
	items, err := s.deps.Gallery.List(c.Request.Context())
	if err != nil {
		s.logger.Error("Failed to list gallery", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch gallery"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// POST /api/gallery/signature (admin): signed payload for a direct upload.
func (s *Server) galleryUploadSignature(c *gin.Context) {
	if s.deps.Media == nil || !s.deps.Media.Configured() {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Media host not configured"})
		return
	}

	sig, err := s.deps.Media.SignUpload()
	if err != nil {
		s.logger.Error("Failed to sign upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create upload signature"})
		return
	}
	c.JSON(http.StatusOK, sig)
}

// POST /api/gallery (admin): record an uploaded asset.
func (s *Server) createGalleryImage(c *gin.Context) {
	var input repository.GalleryInput
	if err := c.BindJSON(&input); err != nil || input.PublicID == "" || input.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "publicId and url are required"})
		return
	}

	img, err := s.deps.Gallery.Create(c.Request.Context(), input)
	if err != nil {
		s.logger.Error("Failed to save gallery image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save gallery image"})
		return
	}
	c.JSON(http.StatusCreated, img)
}

// DELETE /api/gallery/:id (admin): destroy the hosted asset, then the record.
func (s *Server) deleteGalleryImage(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	img, err := s.deps.Gallery.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
		return
	}
	if err != nil {
		s.logger.Error("Failed to load gallery image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete gallery image"})
		return
	}

	if s.deps.Media != nil && s.deps.Media.Configured() {
		if err := s.deps.Media.Destroy(ctx, img.PublicID); err != nil {
			s.logger.Error("Failed to destroy hosted asset",
				zap.String("public_id", img.PublicID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete hosted asset"})
			return
		}
	}

	if err := s.deps.Gallery.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Failed to delete gallery record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete gallery image"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
