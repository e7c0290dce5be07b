package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"leadboard_backend/internal/leads/management"
	"leadboard_backend/internal/leads/transport"
	"leadboard_backend/platform/apperr"
	"leadboard_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const (
	formFieldFiles     = "files"
	maxFilesPerRequest = 20
)

// UploadHandler accepts multipart image uploads for lead evidence and revamp
// screenshots.
type UploadHandler struct {
	mgmt *management.Service
}

func NewUploadHandler(mgmt *management.Service) *UploadHandler {
	return &UploadHandler{mgmt: mgmt}
}

func (h *UploadHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/images", h.UploadImages)
}

// UploadImages stores every file of the request independently and reports a
// result per file. The response is 200 even when some files failed.
func (h *UploadHandler) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "expected multipart form data", nil)
		return
	}

	files := form.File[formFieldFiles]
	if len(files) == 0 {
		files = form.File[formFieldFiles+"[]"]
	}
	if len(files) == 0 {
		httpkit.Error(c, http.StatusBadRequest, "no files provided", nil)
		return
	}
	if len(files) > maxFilesPerRequest {
		httpkit.Error(c, http.StatusBadRequest, "too many files in one request", nil)
		return
	}

	results := make([]transport.UploadResult, len(files))
	uploads := make([]management.ImageUpload, 0, len(files))
	slots := make([]int, 0, len(files))
	var opened []io.Closer
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()

	for i, fh := range files {
		results[i].FileName = fh.Filename
		f, err := fh.Open()
		if err != nil {
			results[i].Error = "could not read file"
			results[i].Code = apperr.KindBadRequest.Code()
			continue
		}
		opened = append(opened, f)
		uploads = append(uploads, management.ImageUpload{
			Reader:      f,
			Size:        fh.Size,
			FileName:    fh.Filename,
			ContentType: contentType(fh),
		})
		slots = append(slots, i)
	}

	for j, outcome := range h.mgmt.UploadImages(c.Request.Context(), uploads) {
		i := slots[j]
		if outcome.Err != nil {
			results[i].Error, results[i].Code = describe(outcome.Err)
			continue
		}
		results[i].URL = outcome.URL
	}

	httpkit.OK(c, transport.UploadImagesResponse{Results: results})
}

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func describe(err error) (string, string) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Message, appErr.Kind.Code()
	}
	return "upload failed", apperr.KindInternal.Code()
}
