package management

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"leadboard_backend/internal/adapters/storage"
	"leadboard_backend/platform/apperr"

	"golang.org/x/sync/errgroup"
)

const (
	sniffLen          = 512
	uploadConcurrency = 4
)

// ImageUpload is one file to store. Reader is consumed once.
type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

// UploadOutcome is the per-file result of UploadImages. Exactly one of URL or
// Err is set.
type UploadOutcome struct {
	FileName string
	URL      string
	Err      error
}

// UploadImage stores one image and returns its public URL. Only images are
// accepted; the declared type and the sniffed content must both agree.
func (s *Service) UploadImage(ctx context.Context, upload ImageUpload) (string, error) {
	url, err := s.uploadImage(ctx, upload)
	s.recordUpload(err)
	return url, err
}

// UploadImages stores several images independently. A failing file never
// aborts the others; results keep input order.
func (s *Service) UploadImages(ctx context.Context, uploads []ImageUpload) []UploadOutcome {
	results := make([]UploadOutcome, len(uploads))

	var g errgroup.Group
	g.SetLimit(uploadConcurrency)
	for i, upload := range uploads {
		g.Go(func() error {
			url, err := s.UploadImage(ctx, upload)
			results[i] = UploadOutcome{FileName: upload.FileName, URL: url, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *Service) uploadImage(ctx context.Context, upload ImageUpload) (string, error) {
	if s.storage == nil {
		return "", apperr.Unavailable("image storage is not configured", nil)
	}

	contentType := storage.NormalizeContentType(upload.ContentType)
	if err := s.storage.ValidateContentType(contentType); err != nil {
		return "", err
	}
	if err := s.storage.ValidateFileSize(upload.Size); err != nil {
		return "", err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(upload.Reader, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", apperr.BadRequest("could not read upload")
	}
	head = head[:n]
	if !looksLikeImage(head) {
		return "", apperr.InvalidFileType("file content is not an image")
	}

	body := io.MultiReader(bytes.NewReader(head), upload.Reader)
	key, err := s.storage.UploadFile(ctx, s.bucket, "", upload.FileName, contentType, body, upload.Size)
	if err != nil {
		s.log.Error("image upload failed", "file", upload.FileName, "error", err)
		return "", apperr.Unavailable("image storage is unavailable, try again", err)
	}
	return s.storage.PublicURL(s.bucket, key), nil
}

// looksLikeImage rejects content the sniffer positively identifies as
// something else. Formats the sniffer does not know (HEIC, AVIF) come back as
// octet-stream and pass.
func looksLikeImage(head []byte) bool {
	sniffed := http.DetectContentType(head)
	return strings.HasPrefix(sniffed, "image/") || sniffed == "application/octet-stream"
}

func (s *Service) recordUpload(err error) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = apperr.GetKind(err).Code()
	}
	s.metrics.ImageUploads.WithLabelValues(result).Inc()
}
