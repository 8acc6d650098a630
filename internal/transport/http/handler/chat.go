package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quickgpt/internal/app"
	"quickgpt/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type DeleteChatRequest struct {
	ChatID uint `json:"chatId" binding:"required,gt=0"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	if _, err := h.chatService.Create(c.Request.Context(), user); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("create chat failed")
		response.Fail(c, http.StatusInternalServerError, "create chat failed")
		return
	}
	response.OK(c, gin.H{"message": "chat created"})
}

func (h *ChatHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	chats, err := h.chatService.List(c.Request.Context(), user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("list chats failed")
		response.Fail(c, http.StatusInternalServerError, "list chats failed")
		return
	}
	response.OK(c, gin.H{"chats": chats})
}

func (h *ChatHandler) Delete(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req DeleteChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, invalidPayloadMessage)
		return
	}

	if err := h.chatService.Delete(c.Request.Context(), user.ID, req.ChatID); err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		logrus.WithError(err).WithField("chat_id", req.ChatID).Error("delete chat failed")
		response.Fail(c, http.StatusInternalServerError, "delete chat failed")
		return
	}
	response.OK(c, gin.H{"message": "chat deleted"})
}
