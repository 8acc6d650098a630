package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quickgpt/internal/app"
	"quickgpt/internal/transport/http/response"
)

type UserHandler struct {
	authService *app.AuthService
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email,max=128"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func NewUserHandler(authService *app.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, invalidPayloadMessage)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), app.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Fail(c, http.StatusOK, "name, email and a password of 8 to 72 characters are required")
		case errors.Is(err, app.ErrEmailExists):
			response.Fail(c, http.StatusOK, err.Error())
		default:
			logrus.WithError(err).Error("register failed")
			response.Fail(c, http.StatusInternalServerError, "register failed")
		}
		return
	}

	response.OK(c, gin.H{"token": result.Token})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, invalidPayloadMessage)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrInvalidCredential):
			response.Fail(c, http.StatusOK, app.ErrInvalidCredential.Error())
		default:
			logrus.WithError(err).Error("login failed")
			response.Fail(c, http.StatusInternalServerError, "login failed")
		}
		return
	}

	response.OK(c, gin.H{"token": result.Token})
}

func (h *UserHandler) Data(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	response.OK(c, gin.H{"user": user})
}
