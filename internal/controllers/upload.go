package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaxUploadSize caps profile picture uploads
const MaxUploadSize = 5 << 20

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var errInvalidUpload = errors.New("invalid upload")

// saveUpload stores the multipart file in field under dir with a random name.
// It returns an empty name when the request carries no such file.
func saveUpload(c *gin.Context, field, dir string) (string, error) {
	file, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", errInvalidUpload, err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		return "", fmt.Errorf("%w: %s files are not accepted", errInvalidUpload, ext)
	}
	if file.Size > MaxUploadSize {
		return "", fmt.Errorf("%w: file exceeds %d MB", errInvalidUpload, MaxUploadSize>>20)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(dir, name)); err != nil {
		return "", err
	}
	return name, nil
}

// discardUpload removes a stored upload whose request failed afterwards
func discardUpload(dir, name string) {
	if name == "" {
		return
	}
	if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).WithField("file", name).Warn("Failed to remove orphaned upload")
	}
}

// isMultipart reports whether the request body is a multipart form
func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}
