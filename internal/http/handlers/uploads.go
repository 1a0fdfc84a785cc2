package handlers

import (
	"net/http"

	"backoffice/internal/services"

	"github.com/gin-gonic/gin"
)

// UploadImage stores one image under :folder and returns {image_name, image_url}.
// Callers persist image_name and use image_url only for preview.
func UploadImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "image file is required", err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "cannot read image", err)
		return
	}
	defer f.Close()

	svc, ok := resourceService(c)
	if !ok {
		return
	}
	media := services.MediaService{Client: svc.Client, Audit: svc.Audit, RequestID: svc.RequestID}
	img, err := media.Upload(c.Request.Context(), c.Param("folder"), services.ImageUpload{Filename: fh.Filename, Content: f})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": img})
}
