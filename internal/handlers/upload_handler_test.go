package handlers

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"church-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Both the plural path the upload response advertises and the singular alias
// must serve stored files.
func TestServeImageOnBothUploadRoutes(t *testing.T) {
	images := services.NewImageService(newTestDB(t), nil, filepath.Join(t.TempDir(), "uploads"))
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x42}

	blob, err := images.Store("file", "banner.jpg", "image/jpeg", payload)
	require.NoError(t, err)

	h := NewUploadHandler(images)
	r := gin.New()
	r.GET("/uploads/:filename", h.Serve)
	r.GET("/upload/:filename", h.Serve)

	for _, prefix := range []string{"/uploads/", "/upload/"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, prefix+blob.Filename, nil))
		assert.Equal(t, http.StatusOK, w.Code, prefix)
		assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"), prefix)
		assert.Equal(t, payload, w.Body.Bytes(), prefix)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/upload/missing.jpg", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
