package api

import (
	"errors"
	"net/http"

	reqdto "commerce-core/internal/handler/dto/request"
	resdto "commerce-core/internal/handler/dto/response"
	"commerce-core/internal/handler/httperr"
	"commerce-core/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// PaymentHandler terminates the gateway's completion signals. These routes
// are called by the gateway (browser redirect or server-to-server), never by
// the storefront itself, so they bind form payloads.
type PaymentHandler struct {
	paymentCommands commands.PaymentCommands
}

func NewPaymentHandler(paymentCommands commands.PaymentCommands) *PaymentHandler {
	return &PaymentHandler{paymentCommands: paymentCommands}
}

// @Summary Payment success callback
// @Description Handle the gateway's success redirect; the payment counts only after server-side validation
// @Tags payments
// @Accept x-www-form-urlencoded
// @Produce json
// @Param tran_id formData string true "Transaction ID"
// @Param val_id formData string true "Validation ID"
// @Success 200 {object} resdto.ReconcileResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /payment/success [post]
func (h *PaymentHandler) Success(c *gin.Context) {
	var req reqdto.SuccessCallbackRequest
	if err := c.ShouldBind(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			"INVALID_REQUEST", "Invalid callback payload", nil)
		return
	}

	result, err := h.paymentCommands.ConfirmPayment(c.Request.Context(), req.TranID, req.ValID)
	if err != nil {
		h.abortReconcileError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReconcileResult(result))
}

// @Summary Payment failure callback
// @Description Handle the gateway's failure redirect; the signal counts only after the gateway confirms the transaction failed
// @Tags payments
// @Accept x-www-form-urlencoded
// @Produce json
// @Param tran_id formData string true "Transaction ID"
// @Param val_id formData string true "Validation ID"
// @Success 200 {object} resdto.ReconcileResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /payment/fail [post]
func (h *PaymentHandler) Fail(c *gin.Context) {
	var req reqdto.FailCallbackRequest
	if err := c.ShouldBind(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			"INVALID_REQUEST", "Invalid callback payload", nil)
		return
	}

	result, err := h.paymentCommands.FailPayment(c.Request.Context(), req.TranID, req.ValID)
	if err != nil {
		h.abortReconcileError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReconcileResult(result))
}

// @Summary Payment cancel callback
// @Description Handle the gateway's cancel redirect; the signal counts only after the gateway confirms the cancellation
// @Tags payments
// @Accept x-www-form-urlencoded
// @Produce json
// @Param tran_id formData string true "Transaction ID"
// @Param val_id formData string true "Validation ID"
// @Success 200 {object} resdto.ReconcileResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /payment/cancel [post]
func (h *PaymentHandler) Cancel(c *gin.Context) {
	var req reqdto.CancelCallbackRequest
	if err := c.ShouldBind(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			"INVALID_REQUEST", "Invalid callback payload", nil)
		return
	}

	result, err := h.paymentCommands.CancelPayment(c.Request.Context(), req.TranID, req.ValID)
	if err != nil {
		h.abortReconcileError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReconcileResult(result))
}

// @Summary Payment IPN
// @Description Out-of-band instant payment notification; may arrive before, after, or instead of any browser redirect
// @Tags payments
// @Accept x-www-form-urlencoded
// @Produce json
// @Param tran_id formData string true "Transaction ID"
// @Param status formData string true "Gateway status"
// @Param val_id formData string false "Validation ID"
// @Success 200 {object} resdto.ReconcileResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /payment/ipn [post]
func (h *PaymentHandler) IPN(c *gin.Context) {
	var req reqdto.IPNRequest
	if err := c.ShouldBind(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			"INVALID_REQUEST", "Invalid callback payload", nil)
		return
	}

	result, err := h.paymentCommands.HandleIPN(c.Request.Context(), req.TranID, req.ValID, req.Status)
	if err != nil {
		h.abortReconcileError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReconcileResult(result))
}

func (h *PaymentHandler) abortReconcileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrOrderNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err,
			"ORDER_NOT_FOUND", "No order for this transaction", nil)
	case errors.Is(err, commands.ErrReconciliationConflict):
		httperr.AbortWithError(c, http.StatusConflict, err,
			"RECONCILIATION_CONFLICT", "Order already settled with a different outcome", nil)
	case errors.Is(err, commands.ErrGatewayValidationFailed):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
			"GATEWAY_VALIDATION_REJECTED", "Gateway validation rejected the signal", nil)
	case errors.Is(err, commands.ErrGatewayUnavailable):
		httperr.AbortWithError(c, http.StatusBadGateway, err,
			"GATEWAY_UNAVAILABLE", "Payment gateway is unavailable", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err,
			"INTERNAL", "Internal server error", nil)
	}
}
