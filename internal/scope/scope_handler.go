package scope

import (
	"context"
	"net/http"

	"go-institute/internal/domain"
	"go-institute/internal/middleware"
	"go-institute/internal/shared/apperror"
	"go-institute/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Viewer decides whether an actor may look at another account.
type Viewer interface {
	AuthorizeView(ctx context.Context, actor domain.Actor, accountID string) error
}

type Handler struct {
	resolver *Resolver
	viewer   Viewer
	logger   *zap.Logger
}

func NewHandler(resolver *Resolver, viewer Viewer, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("scope.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("scope.handler")
	}
	return &Handler{resolver: resolver, viewer: viewer, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("scope request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) GetScope(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthenticated)
		return
	}

	ctx := c.Request.Context()
	accountID := c.Param("id")

	if err := h.viewer.AuthorizeView(ctx, actor, accountID); err != nil {
		h.writeServiceError(c, err)
		return
	}

	s, err := h.resolver.ScopeOf(ctx, accountID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, ScopeResponse{AccountID: accountID, Scope: s}, nil)
}
