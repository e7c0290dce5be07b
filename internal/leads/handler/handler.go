package handler

import (
	"net/http"

	"leadboard_backend/internal/leads/board"
	"leadboard_backend/internal/leads/domain"
	"leadboard_backend/internal/leads/lifecycle"
	"leadboard_backend/internal/leads/management"
	"leadboard_backend/internal/leads/transport"
	"leadboard_backend/platform/apperr"
	"leadboard_backend/platform/httpkit"
	"leadboard_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	mgmt      *management.Service
	lifecycle *lifecycle.Engine
	stream    gin.HandlerFunc
	val       *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidLeadID    = "invalid lead id"
)

func New(mgmt *management.Service, engine *lifecycle.Engine, stream gin.HandlerFunc, val *validator.Validator) *Handler {
	return &Handler{mgmt: mgmt, lifecycle: engine, stream: stream, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/events", h.stream)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.POST("/:id/contact", h.MarkContacted)
	rg.GET("/:id/history", h.History)
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		fields, _ := validator.FieldErrors(err)
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, fields)
		return
	}

	// Empty status parses to "" which matches every lead.
	status, _ := domain.ParseStatus(req.Status)

	view, err := h.mgmt.Board(c.Request.Context(), board.Query{
		Country: req.Country,
		Search:  req.Search,
		Status:  status,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadListResponse(view))
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	// The board creates leads inside the country it is filtered to.
	if req.Country == "" {
		req.Country = c.Query("country")
	}

	lead, err := h.mgmt.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToLeadResponse(lead))
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	lead, err := h.mgmt.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	lead, err := h.mgmt.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

// Delete is idempotent: deleting a lead that is already gone is a success.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	err := h.mgmt.Delete(c.Request.Context(), id)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.NoContent(c)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		fields, _ := validator.FieldErrors(err)
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, fields)
		return
	}
	status, _ := domain.ParseStatus(req.Status)

	lead, err := h.lifecycle.Transition(c.Request.Context(), id, status, httpkit.ActorID(c))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) MarkContacted(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	lead, link, err := h.lifecycle.MarkContactedAndOpenExternalLink(c.Request.Context(), id, httpkit.ActorID(c))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ContactResponse{Lead: transport.ToLeadResponse(lead), Link: link})
}

func (h *Handler) History(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	items, err := h.mgmt.StatusHistory(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToStatusHistoryResponse(items))
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return uuid.UUID{}, false
	}
	return id, true
}
