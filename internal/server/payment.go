package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/vyaparlabs/gstbill/internal/payment/domain"
)

// waitForPaymentTimeout bounds the long-poll variant of the order status
// endpoint so an abandoned checkout does not pin a handler forever.
const waitForPaymentTimeout = 2 * time.Minute

func (s *Server) CreatePaymentOrder(c *gin.Context) {
	var req paymentdomain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.CreateOrder(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreatePaymentLink(c *gin.Context) {
	var req paymentdomain.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.CreateLink(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPaymentOrderStatus(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("order_id"))
	if orderID == "" {
		AbortWithError(c, newValidationError("order_id", "invalid_order_id", "invalid order_id"))
		return
	}

	wait, err := parseOptionalBool(c.Query("wait"))
	if err != nil {
		AbortWithError(c, newValidationError("wait", "invalid_wait", "invalid wait"))
		return
	}

	var status string
	if wait != nil && *wait {
		ctx, cancel := context.WithTimeout(c.Request.Context(), waitForPaymentTimeout)
		defer cancel()
		status, err = s.paymentSvc.WaitForPayment(ctx, orderID)
	} else {
		status, err = s.paymentSvc.OrderStatus(c.Request.Context(), orderID)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"order_id": orderID,
		"status":   status,
	}})
}

// VerifyPayment handles the checkout callback. The gateway posts the
// payment id, order id and signature as form fields; a valid signature
// marks the transaction paid and sends the browser to the success page.
func (s *Server) VerifyPayment(c *gin.Context) {
	var req paymentdomain.VerifyRequest
	if err := c.ShouldBind(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	trx, err := s.paymentSvc.VerifyAndMarkPaid(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	query := url.Values{}
	query.Set("payment_id", req.PaymentID)
	query.Set("order_id", req.OrderID)
	query.Set("transaction_id", trx.ID.String())
	query.Set("invoice_number", trx.InvoiceNumber)

	c.Redirect(http.StatusSeeOther, s.cfg.PublicURL+"/payment/success?"+query.Encode())
}
