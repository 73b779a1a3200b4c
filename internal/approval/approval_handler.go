package approval

import (
	"context"
	"net/http"
	"strconv"

	"go-institute/internal/audit"
	"go-institute/internal/middleware"
	"go-institute/internal/shared/apperror"
	"go-institute/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HistoryReader serves the recorded audit trail of a request.
type HistoryReader interface {
	History(ctx context.Context, requestID string) ([]audit.EntryResponse, error)
}

type Handler struct {
	service Service
	history HistoryReader
	logger  *zap.Logger
}

func NewHandler(service Service, history HistoryReader, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("approval.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.handler")
	}
	return &Handler{service: service, history: history, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("approval request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Submit(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthenticated)
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http submit request validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), actor, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthenticated)
		return
	}

	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 {
		pageSize = 10
	}

	total := int64(len(resp))
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(resp) {
		start = len(resp)
	}
	if end > len(resp) {
		end = len(resp)
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) GetByID(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthenticated)
		return
	}

	resp, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

// History returns the audit trail once the actor is shown to be able to read
// the request itself.
func (h *Handler) History(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthenticated)
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.service.Get(ctx, actor, id); err != nil {
		h.writeServiceError(c, err)
		return
	}

	entries, err := h.history.History(ctx, id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, entries, nil)
}

func (h *Handler) BranchApprove(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthenticated)
		return
	}

	resp, err := h.service.BranchApprove(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) AdminApprove(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthenticated)
		return
	}

	resp, err := h.service.AdminApprove(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Reject(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthenticated)
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http reject request validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Reject(c.Request.Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
