package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quickgpt/internal/app"
	"quickgpt/internal/transport/http/response"
)

const WebhookSecretHeader = "X-Webhook-Secret"

type CreditHandler struct {
	creditService *app.CreditService
	webhookSecret string
}

type PurchaseRequest struct {
	PlanID string `json:"planId" binding:"required"`
}

type PaymentWebhookRequest struct {
	PurchaseID uint `json:"purchaseId" binding:"required,gt=0"`
}

func NewCreditHandler(creditService *app.CreditService, webhookSecret string) *CreditHandler {
	return &CreditHandler{creditService: creditService, webhookSecret: webhookSecret}
}

func (h *CreditHandler) Plans(c *gin.Context) {
	response.OK(c, gin.H{"plans": h.creditService.Plans()})
}

func (h *CreditHandler) Purchase(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, invalidPayloadMessage)
		return
	}

	result, err := h.creditService.Purchase(c.Request.Context(), user.ID, req.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrPlanNotFound), errors.Is(err, app.ErrInvalidInput):
			response.Fail(c, http.StatusOK, app.ErrPlanNotFound.Error())
		default:
			logrus.WithError(err).WithField("user_id", user.ID).Error("create purchase failed")
			response.Fail(c, http.StatusInternalServerError, "create purchase failed")
		}
		return
	}
	response.OK(c, gin.H{"url": result.URL})
}

// Webhook is called by the payment provider once a checkout completes.
func (h *CreditHandler) Webhook(c *gin.Context) {
	given := c.GetHeader(WebhookSecretHeader)
	if h.webhookSecret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(h.webhookSecret)) != 1 {
		response.Fail(c, http.StatusUnauthorized, "invalid webhook secret")
		return
	}

	var req PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, invalidPayloadMessage)
		return
	}

	credited, err := h.creditService.ConfirmPayment(c.Request.Context(), req.PurchaseID)
	if err != nil {
		if errors.Is(err, app.ErrPurchaseNotFound) {
			response.Fail(c, http.StatusNotFound, err.Error())
			return
		}
		logrus.WithError(err).WithField("purchase_id", req.PurchaseID).Error("confirm payment failed")
		response.Fail(c, http.StatusInternalServerError, "confirm payment failed")
		return
	}
	response.OK(c, gin.H{"credited": credited})
}
