package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quickgpt/internal/app"
	"quickgpt/internal/generation"
	"quickgpt/internal/transport/http/response"
)

type MessageHandler struct {
	pipeline *app.MessagePipeline
}

type SendMessageRequest struct {
	ChatID      uint   `json:"chatId" binding:"required,gt=0"`
	Prompt      string `json:"prompt" binding:"required"`
	IsPublished bool   `json:"isPublished"`
}

func NewMessageHandler(pipeline *app.MessagePipeline) *MessageHandler {
	return &MessageHandler{pipeline: pipeline}
}

func (h *MessageHandler) Text(c *gin.Context) {
	h.send(c, generation.ModeText)
}

func (h *MessageHandler) Image(c *gin.Context) {
	h.send(c, generation.ModeImage)
}

// send replies as soon as the generation is recorded and only then commits
// the messages to the chat.
func (h *MessageHandler) send(c *gin.Context, mode generation.Mode) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, invalidPayloadMessage)
		return
	}

	result, err := h.pipeline.Send(c.Request.Context(), app.SendMessageInput{
		UserID:  user.ID,
		ChatID:  req.ChatID,
		Prompt:  req.Prompt,
		Mode:    mode,
		Publish: mode == generation.ModeImage && req.IsPublished,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Fail(c, http.StatusBadRequest, "chatId and a non-empty prompt are required")
		case errors.Is(err, app.ErrChatNotFound):
			response.Fail(c, http.StatusNotFound, "Chat not found")
		case errors.Is(err, app.ErrInsufficientCredits):
			response.Fail(c, http.StatusOK, err.Error())
		case errors.Is(err, app.ErrGenerationFailed):
			response.Fail(c, http.StatusOK, fmt.Sprintf("%s generation failed", mode))
		default:
			logrus.WithError(err).WithField("user_id", user.ID).Error("send message failed")
			response.Fail(c, http.StatusInternalServerError, "send message failed")
		}
		return
	}

	response.OK(c, gin.H{"reply": result.Reply})
	c.Writer.Flush()

	if err := h.pipeline.Commit(context.WithoutCancel(c.Request.Context()), result.CommitID); err != nil {
		logrus.WithError(err).WithField("commit_id", result.CommitID).Error("commit message failed, left for reconciler")
	}
}
