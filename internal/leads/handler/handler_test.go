package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"leadboard_backend/internal/adapters/storage"
	"leadboard_backend/internal/events"
	"leadboard_backend/internal/leads/changefeed"
	"leadboard_backend/internal/leads/domain"
	"leadboard_backend/internal/leads/lifecycle"
	"leadboard_backend/internal/leads/management"
	"leadboard_backend/internal/leads/repository"
	"leadboard_backend/internal/leads/transport"
	"leadboard_backend/platform/apperr"
	"leadboard_backend/platform/httpkit"
	"leadboard_backend/platform/logger"
	"leadboard_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStorage struct{}

func (stubStorage) UploadFile(_ context.Context, _, _, fileName, _ string, reader io.Reader, _ int64) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	return "key-" + fileName, nil
}

func (stubStorage) DeleteObject(context.Context, string, string) error { return nil }
func (stubStorage) EnsureBucketExists(context.Context, string) error   { return nil }
func (stubStorage) ListObjects(context.Context, string) ([]storage.ObjectInfo, error) {
	return nil, nil
}
func (stubStorage) PublicURL(bucket, key string) string {
	return "https://cdn.example.com/" + bucket + "/" + key
}
func (stubStorage) KeyFromPublicURL(string, string) (string, bool) { return "", false }
func (stubStorage) ValidateContentType(ct string) error {
	if !strings.HasPrefix(ct, "image/") {
		return apperr.InvalidFileType("only image files are allowed")
	}
	return nil
}
func (stubStorage) ValidateFileSize(size int64) error {
	if size <= 0 {
		return apperr.Validation("file is empty")
	}
	return nil
}
func (stubStorage) GetMaxFileSize() int64 { return 1 << 20 }

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type testServer struct {
	engine *gin.Engine
	repo   *repository.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewDiscard()
	val := validator.New()
	require.NoError(t, transport.RegisterValidations(val))

	repo := repository.NewMemoryStore()
	hub := changefeed.NewHub()
	bus := events.NewInMemoryBus(log)

	mgmt := management.New(repo, bus, hub, val, log, "Zimbabwe")
	mgmt.SetStorage(stubStorage{}, "evidence")
	engine := lifecycle.New(repo, nil, bus, hub, log)

	r := gin.New()
	protected := r.Group("/api/v1")
	protected.Use(func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, uuid.New())
		c.Next()
	})
	New(mgmt, engine, func(c *gin.Context) { c.Status(http.StatusOK) }, val).RegisterRoutes(protected.Group("/leads"))
	NewUploadHandler(mgmt).RegisterRoutes(protected.Group("/uploads"))

	return &testServer{engine: r, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createLead(t *testing.T, req transport.CreateLeadRequest) transport.LeadResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/leads", req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var lead transport.LeadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	return lead
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httpkit.ErrorResponse {
	t.Helper()
	var body httpkit.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateUsesCountryFromQuery(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/leads?country=Zambia", transport.CreateLeadRequest{
		BusinessName: "Copperbelt Builders",
		Industry:     domain.IndustryConstruction,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var lead transport.LeadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	assert.Equal(t, "Zambia", lead.Country)
	assert.Equal(t, string(domain.StatusNew), lead.Status)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/leads", transport.CreateLeadRequest{
		BusinessName: "Acme",
		Industry:     domain.IndustryOther,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperr.KindValidation.Code(), decodeError(t, rec).Code)
}

func TestListReturnsItemsAndStats(t *testing.T) {
	s := newTestServer(t)
	s.createLead(t, transport.CreateLeadRequest{BusinessName: "Hen House", Industry: domain.IndustryPoultry})
	s.createLead(t, transport.CreateLeadRequest{BusinessName: "Vic Falls Tours", Industry: domain.IndustryTourism})
	s.createLead(t, transport.CreateLeadRequest{BusinessName: "Lusaka Loans", Industry: domain.IndustryFinance, Country: "Zambia"})

	rec := s.do(t, http.MethodGet, "/api/v1/leads?country=Zimbabwe&search=hen", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list transport.LeadListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Hen House", list.Items[0].BusinessName)
	assert.Equal(t, 2, list.Stats.Total)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/leads?status=lost", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRevampedWithoutImagesIsBlocked(t *testing.T) {
	s := newTestServer(t)
	lead := s.createLead(t, transport.CreateLeadRequest{BusinessName: "Acme", Industry: domain.IndustryFood})

	rec := s.do(t, http.MethodPatch, "/api/v1/leads/"+lead.ID.String()+"/status", transport.UpdateStatusRequest{Status: "revamped"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, apperr.KindGuardViolation.Code(), body.Code)
	assert.Equal(t, domain.MsgRevampNeedsImages, body.Error)

	stored, err := s.repo.GetByID(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, stored.Status)
}

func TestStatusChangeIsRecordedInHistory(t *testing.T) {
	s := newTestServer(t)
	lead := s.createLead(t, transport.CreateLeadRequest{BusinessName: "Acme", Industry: domain.IndustryFood})

	rec := s.do(t, http.MethodPatch, "/api/v1/leads/"+lead.ID.String()+"/status", transport.UpdateStatusRequest{Status: "Warm"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/leads/"+lead.ID.String()+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var history transport.StatusHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history.Items, 1)
	assert.Equal(t, "new", history.Items[0].OldStatus)
	assert.Equal(t, "warm", history.Items[0].NewStatus)
	assert.NotNil(t, history.Items[0].ActorID)
}

func TestContactReturnsWhatsAppLink(t *testing.T) {
	s := newTestServer(t)
	lead := s.createLead(t, transport.CreateLeadRequest{
		BusinessName: "Hen House",
		Industry:     domain.IndustryPoultry,
		Contacts:     []transport.ContactDTO{{Type: domain.ContactWhatsApp, Value: "077 123 4567"}},
	})

	rec := s.do(t, http.MethodPost, "/api/v1/leads/"+lead.ID.String()+"/contact", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body transport.ContactResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(domain.StatusContacted), body.Lead.Status)
	assert.True(t, strings.HasPrefix(body.Link, "https://wa.me/263"), body.Link)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestServer(t)
	lead := s.createLead(t, transport.CreateLeadRequest{BusinessName: "Acme", Industry: domain.IndustryFood})

	rec := s.do(t, http.MethodDelete, "/api/v1/leads/"+lead.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/leads/"+lead.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/leads/"+lead.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidLeadID(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/leads/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func addFile(t *testing.T, w *multipart.Writer, name, contentType string, data []byte) {
	t.Helper()
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
}

func TestUploadImagesReportsPerFileResults(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	addFile(t, w, "before.png", "image/png", pngHeader)
	addFile(t, w, "notes.txt", "text/plain", []byte("not an image"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/images", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body transport.UploadImagesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 2)

	assert.Equal(t, "before.png", body.Results[0].FileName)
	assert.Equal(t, "https://cdn.example.com/evidence/key-before.png", body.Results[0].URL)
	assert.Empty(t, body.Results[0].Error)

	assert.Equal(t, "notes.txt", body.Results[1].FileName)
	assert.Empty(t, body.Results[1].URL)
	assert.Equal(t, apperr.KindInvalidFileType.Code(), body.Results[1].Code)
}

func TestUploadWithoutFiles(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("other", "x"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/images", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDescribeHidesUntypedErrors(t *testing.T) {
	msg, code := describe(errors.New("dial tcp: refused"))

	assert.Equal(t, "upload failed", msg)
	assert.Equal(t, apperr.KindInternal.Code(), code)
}
