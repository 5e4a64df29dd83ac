package handlers

import (
	"io"
	"net/http"

	"church-service/internal/services"
	"church-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	Images *services.ImageService
}

func NewUploadHandler(images *services.ImageService) *UploadHandler {
	return &UploadHandler{Images: images}
}

// Upload accepts one multipart file and persists it durably; mirrors are
// populated in the background.
func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("No file uploaded", nil, http.StatusBadRequest))
		return
	}
	if file.Size > services.MaxUploadSize {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("File exceeds 50MB limit", nil, http.StatusBadRequest))
		return
	}

	src, err := file.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		fail(c, err)
		return
	}

	blob, err := h.Images.Store("file", file.Filename, file.Header.Get("Content-Type"), data)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filePath":     "/uploads/" + blob.Filename,
		"originalName": blob.OriginalName,
		"size":         blob.Size,
		"mimetype":     blob.MimeType,
	})
}

// Serve streams an image by filename, database first, mirrors second.
func (h *UploadHandler) Serve(c *gin.Context) {
	data, mime, err := h.Images.Read(c.Param("filename"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, mime, data)
}

// Restore triggers a full mirror reconciliation pass.
func (h *UploadHandler) Restore(c *gin.Context) {
	report := h.Images.RestoreMirrors()
	c.JSON(http.StatusOK, gin.H{
		"restored": report.Restored,
		"errors":   report.Errors,
		"total":    report.Total,
	})
}

// Purge permanently removes an image and its mirror copies.
func (h *UploadHandler) Purge(c *gin.Context) {
	if err := h.Images.Purge(c.Param("filename")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Image removed"))
}
