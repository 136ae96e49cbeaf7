package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/vyaparlabs/gstbill/internal/catalog/domain"
	"github.com/vyaparlabs/gstbill/internal/gst"
	invoicedomain "github.com/vyaparlabs/gstbill/internal/invoice/domain"
	paymentdomain "github.com/vyaparlabs/gstbill/internal/payment/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type totalsMismatchDetail struct {
	Field    string  `json:"field"`
	Expected float64 `json:"expected"`
	Provided float64 `json:"provided"`
}

type errorPayload struct {
	Type     string                 `json:"type"`
	Message  string                 `json:"message"`
	Errors   []ValidationError      `json:"errors,omitempty"`
	Mismatch []totalsMismatchDetail `json:"mismatches,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrUnauthorized = errors.New("unauthorized")

// ErrorHandlingMiddleware turns errors attached to the gin context into
// JSON responses after the handler chain runs.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var mismatch *gst.TotalsMismatchError
	if errors.As(err, &mismatch) {
		details := make([]totalsMismatchDetail, 0, len(mismatch.Mismatches))
		for _, m := range mismatch.Mismatches {
			details = append(details, totalsMismatchDetail{
				Field:    m.Field,
				Expected: m.Expected,
				Provided: m.Provided,
			})
		}
		return http.StatusBadRequest, errorPayload{
			Type:     "totals_mismatch",
			Message:  "submitted totals do not match computed totals",
			Mismatch: details,
		}
	}

	if isValidationError(err) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{Field: "request", Code: err.Error(), Message: err.Error()},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, paymentdomain.ErrGatewayAuth):
		return http.StatusBadGateway, errorPayload{
			Type:    "gateway_auth_failed",
			Message: "payment gateway rejected the configured credentials",
		}
	case errors.Is(err, paymentdomain.ErrGatewayRejected):
		return http.StatusBadGateway, errorPayload{
			Type:    "gateway_rejected",
			Message: "payment gateway rejected the request",
		}
	case errors.Is(err, paymentdomain.ErrGatewayUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "gateway_unavailable",
			Message: "payment gateway unavailable",
		}
	case errors.Is(err, paymentdomain.ErrConfigMissing):
		return http.StatusInternalServerError, errorPayload{
			Type:    "config_missing",
			Message: "payment gateway is not configured",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, gst.ErrNoLineItems),
		errors.Is(err, gst.ErrInvalidUnitPrice),
		errors.Is(err, gst.ErrInvalidQuantity),
		errors.Is(err, gst.ErrInvalidGSTRate),
		errors.Is(err, gst.ErrInvalidDiscountKind),
		errors.Is(err, gst.ErrInvalidDiscountValue),
		errors.Is(err, gst.ErrDiscountExceedsTotal),
		errors.Is(err, catalogdomain.ErrInvalidID),
		errors.Is(err, catalogdomain.ErrInvalidName),
		errors.Is(err, catalogdomain.ErrInvalidHSNCode),
		errors.Is(err, catalogdomain.ErrInvalidUnitPrice),
		errors.Is(err, catalogdomain.ErrInvalidGSTRate),
		errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidCustomerName),
		errors.Is(err, invoicedomain.ErrInvalidPaymentReference),
		errors.Is(err, invoicedomain.ErrUnknownService),
		errors.Is(err, invoicedomain.ErrServiceInactive),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrAmountBelowMinimum),
		errors.Is(err, paymentdomain.ErrInvalidSignature),
		errors.Is(err, paymentdomain.ErrInvalidRequest):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrServiceInUse),
		errors.Is(err, catalogdomain.ErrDuplicateName),
		errors.Is(err, invoicedomain.ErrAlreadyPaid),
		errors.Is(err, invoicedomain.ErrDeletePaidTransaction),
		errors.Is(err, invoicedomain.ErrTransactionInUse):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrOrderNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// classifyErrorForLog labels errors for the request log without leaking
// message details.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error", payload.Type
	case status >= http.StatusBadRequest:
		return "client_error", payload.Type
	default:
		return "none", payload.Type
	}
}
