package handlers

import (
	"io"
	"net/http"

	"church-service/internal/services"
	"church-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	Payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{Payments: payments}
}

type initiateRequest struct {
	DonationID uint   `json:"donationId" binding:"required"`
	Phone      string `json:"phone"`
}

// Initiate starts a mobile money charge for a pending donation.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req initiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	result, err := h.Payments.InitiatePayment(c.Request.Context(), c.Param("method"), req.DonationID, req.Phone)
	if err != nil {
		fail(c, err)
		return
	}
	if !result.Success {
		// gateway rejections are 400 with the upstream message passed through
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Callback receives gateway webhooks. It must always acknowledge with 200,
// whatever happens internally, or the gateway will retry-storm us.
func (h *PaymentHandler) Callback(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusOK, services.GatewayResult{Success: true, Message: "Accepted"})
		return
	}
	result := h.Payments.HandleCallback(c.Param("method"), raw)
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) Verify(c *gin.Context) {
	status, err := h.Payments.VerifyPayment(c.Param("method"), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(status, "success"))
}

func (h *PaymentHandler) BankDetails(c *gin.Context) {
	details, err := h.Payments.GetBankAccountDetails()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(details, "success"))
}
