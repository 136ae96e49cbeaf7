package domain

import "errors"

var (
	// ErrConfigMissing means gateway credentials were never configured.
	// Endpoints that need the gateway fail fast instead of calling out.
	ErrConfigMissing = errors.New("gateway_config_missing")

	ErrGatewayAuth        = errors.New("gateway_auth_failed")
	ErrGatewayRejected    = errors.New("gateway_rejected")
	ErrGatewayUnavailable = errors.New("gateway_unavailable")

	ErrAmountBelowMinimum = errors.New("amount_below_minimum")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidSignature   = errors.New("invalid_signature")
	ErrOrderNotFound      = errors.New("payment_order_not_found")
	ErrInvalidRequest     = errors.New("invalid_payment_request")
)
