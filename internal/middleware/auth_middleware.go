package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-institute/internal/shared/contextutil"
	"go-institute/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextAccountID = "account_id"
	ContextActor     = "actor"
	ContextRequestID = "request_id"
)

// AuthMiddleware trusts the identity provider's signed token and exposes its
// account id. Credentials are never checked here.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHENTICATED", "Token not found", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			message := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				message = "Token expired"
			}
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", message, nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token claims", nil)
			c.Abort()
			return
		}

		accountID, _ := claims["account_id"].(string)
		if accountID == "" {
			accountID, _ = claims["sub"].(string)
		}
		if accountID == "" {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Account ID not found in token", nil)
			c.Abort()
			return
		}

		c.Set(ContextAccountID, accountID)
		c.Request = c.Request.WithContext(contextutil.WithAccountID(c.Request.Context(), accountID))

		c.Next()
	}
}
