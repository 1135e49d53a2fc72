package controllers

import (
	"net/http"
	"strings"
	"time"

	apperrors "github.com/QJQnova/Eps-sub001/internal/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PresignedURLHandler handles presigned URL generation for S3 uploads
type PresignedURLHandler struct {
	images    ImagePresigner
	validator *RequestValidator
}

// NewPresignedURLHandler wires the handler. images may be nil when no
// bucket is configured; requests then get 503.
func NewPresignedURLHandler(images ImagePresigner, validator *RequestValidator) *PresignedURLHandler {
	return &PresignedURLHandler{images: images, validator: validator}
}

type presignRequest struct {
	SKU         string `json:"sku" binding:"required,max=100"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Expires     int64  `json:"expires"`
}

// PresignUpload returns a presigned PUT URL for a product image keyed by SKU.
func (h *PresignedURLHandler) PresignUpload(c *gin.Context) {
	if h.images == nil {
		respondError(c, apperrors.ErrServiceUnavailable)
		return
	}

	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	if strings.TrimSpace(req.Filename) == "" {
		req.Filename = "upload.jpg"
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}
	if !h.validator.IsAllowedImage(req.ContentType, req.Filename) {
		badRequest(c, "Invalid content type. Allowed: image/gif, image/jpeg, image/jpg, image/png, image/webp")
		return
	}
	if req.Expires <= 0 {
		req.Expires = defaultPresignTTL
	}
	// Cap at 1 hour
	if req.Expires > maxPresignTTL {
		req.Expires = maxPresignTTL
	}

	key := h.images.Key(strings.TrimSpace(req.SKU), req.Filename)
	uploadURL, headers, err := h.images.PresignPut(c.Request.Context(), key, req.ContentType, time.Duration(req.Expires)*time.Second)
	if err != nil {
		zap.L().Error("Failed to generate presigned upload", zap.Error(err), zap.String("sku", req.SKU))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate presigned upload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uploadUrl": uploadURL,
		"method":    http.MethodPut,
		"key":       key,
		"publicUrl": h.images.URL(key),
		"headers":   headers,
		"expiresIn": req.Expires,
	})
}
