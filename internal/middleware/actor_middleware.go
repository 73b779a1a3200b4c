package middleware

import (
	"context"

	"go-institute/internal/domain"
	"go-institute/internal/shared/apperror"
	"go-institute/internal/shared/contextutil"
	"go-institute/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ActorResolver interface {
	ActorOf(ctx context.Context, accountID string) (domain.Actor, error)
}

// ResolveActor loads roles and scope from the store on every request so that
// role or branch edits apply to sessions that are already open.
func ResolveActor(resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := c.GetString(ContextAccountID)
		if accountID == "" {
			response.Error(c, apperror.ErrUnauthenticated.HTTPStatus, apperror.ErrUnauthenticated.Code, apperror.ErrUnauthenticated.Message, nil)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		actor, err := resolver.ActorOf(ctx, accountID)
		if err != nil {
			if apperror.HasCode(err, apperror.CodeNotFound) {
				// Unknown accounts get no access at all.
				err = apperror.ErrUnauthorized
			}
			httpErr := apperror.ToHTTP(err)
			contextutil.GetLogger(ctx, zap.L()).Warn("resolve actor failed",
				zap.String("account_id", accountID),
				zap.Error(err),
			)
			response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
			c.Abort()
			return
		}

		c.Set(ContextActor, actor)
		c.Request = c.Request.WithContext(contextutil.WithActor(ctx, actor))

		c.Next()
	}
}

func ActorFrom(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(ContextActor)
	if !ok {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok
}
