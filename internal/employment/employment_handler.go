package employment

import (
	"net/http"

	"go-institute/internal/middleware"
	"go-institute/internal/shared/apperror"
	"go-institute/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("employment.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employment.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("employment request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Get(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthenticated)
		return
	}

	resp, err := h.service.View(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Assign(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthenticated)
		return
	}

	var req AssignEmploymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http assign employment validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Assign(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListByBranch(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthenticated)
		return
	}

	resp, err := h.service.ListByBranch(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(int64(len(resp)), 1, len(resp))
	response.Success(c, http.StatusOK, resp, &meta)
}
