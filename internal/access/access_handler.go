package access

import (
	"net/http"

	"go-institute/internal/domain"
	"go-institute/internal/middleware"
	"go-institute/internal/shared/apperror"
	"go-institute/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	guard  Authorizer
	logger *zap.Logger
}

func NewHandler(guard Authorizer, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("access.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("access.handler")
	}
	return &Handler{guard: guard, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("access request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// Check reports the guard's decision for the current actor. UIs use it to
// hide controls; services still enforce every write.
func (h *Handler) Check(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthenticated)
		return
	}

	var req domain.AccessCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http access check validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	d := h.guard.Decide(actor, domain.Action(req.Action), domain.Resource{
		Kind:     domain.ResourceKind(req.Resource),
		BranchID: req.BranchID,
		OwnerID:  req.OwnerID,
	})

	response.Success(c, http.StatusOK, domain.AccessCheckResponse{
		Allowed: d.Allowed,
		Reason:  d.Reason,
	}, nil)
}
