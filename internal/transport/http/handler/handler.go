package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quickgpt/internal/model"
	"quickgpt/internal/transport/http/middleware"
	"quickgpt/internal/transport/http/response"
)

const invalidPayloadMessage = "invalid request payload"

func requireUser(c *gin.Context) (*model.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "not authorized")
		return nil, false
	}
	return user, true
}
