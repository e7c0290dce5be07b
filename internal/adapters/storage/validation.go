package storage

import (
	"fmt"
	"strings"

	"leadboard_backend/platform/apperr"
)

// NormalizeContentType drops parameters like charset and lowercases the type.
func NormalizeContentType(contentType string) string {
	normalized := strings.Split(contentType, ";")[0]
	return strings.TrimSpace(strings.ToLower(normalized))
}

// IsImageContentType checks if the content type is an image.
func IsImageContentType(contentType string) bool {
	return strings.HasPrefix(NormalizeContentType(contentType), "image/")
}

// ValidateContentType only accepts images.
func (s *MinIOService) ValidateContentType(contentType string) error {
	return validateContentType(contentType)
}

// ValidateFileSize checks if the file size is within limits.
func (s *MinIOService) ValidateFileSize(sizeBytes int64) error {
	return validateFileSize(sizeBytes, s.maxFileSize)
}

func validateContentType(contentType string) error {
	if !IsImageContentType(contentType) {
		return apperr.InvalidFileType(fmt.Sprintf("only image uploads are allowed, got %q", contentType))
	}
	return nil
}

func validateFileSize(sizeBytes, maxFileSize int64) error {
	if sizeBytes <= 0 {
		return apperr.Validation("file size must be greater than 0")
	}
	if sizeBytes > maxFileSize {
		return apperr.Validation(fmt.Sprintf("file size %d bytes exceeds maximum allowed size of %d bytes", sizeBytes, maxFileSize))
	}
	return nil
}
