package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quickgpt/internal/app"
	"quickgpt/internal/transport/http/response"
)

type GalleryHandler struct {
	galleryService *app.GalleryService
}

func NewGalleryHandler(galleryService *app.GalleryService) *GalleryHandler {
	return &GalleryHandler{galleryService: galleryService}
}

func (h *GalleryHandler) List(c *gin.Context) {
	images, err := h.galleryService.PublishedImages(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("load gallery failed")
		response.Fail(c, http.StatusInternalServerError, "load gallery failed")
		return
	}
	response.OK(c, gin.H{"images": images})
}
