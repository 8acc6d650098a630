package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quickgpt/internal/model"
	"quickgpt/internal/pkg/jwtutil"
	"quickgpt/internal/transport/http/response"
)

const ContextUserKey = "user"

type UserLoader interface {
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
}

// AuthJWT requires a valid bearer token for an existing user and stores the
// loaded user on the context.
func AuthJWT(secret string, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.AbortFail(c, http.StatusUnauthorized, "not authorized, no token provided")
			return
		}

		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, "not authorized, token failed")
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", claims.UserID).Error("load token user failed")
			response.AbortFail(c, http.StatusInternalServerError, "load user failed")
			return
		}
		if user == nil {
			response.AbortFail(c, http.StatusUnauthorized, "not authorized, user not found")
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// OptionalAuthJWT attaches the user when a valid token is sent and lets the
// request through either way.
func OptionalAuthJWT(secret string, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := jwtutil.ParseToken(secret, token); err == nil {
				if user, err := users.GetUserByID(c.Request.Context(), claims.UserID); err == nil && user != nil {
					c.Set(ContextUserKey, user)
				}
			}
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
	return token, token != ""
}
