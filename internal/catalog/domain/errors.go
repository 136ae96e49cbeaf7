package domain

import "errors"

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidHSNCode   = errors.New("invalid_hsn_code")
	ErrInvalidUnitPrice = errors.New("invalid_unit_price")
	ErrInvalidGSTRate   = errors.New("invalid_gst_rate")
	ErrNotFound         = errors.New("service_not_found")
	ErrServiceInUse     = errors.New("service_in_use")
	ErrDuplicateName    = errors.New("duplicate_service_name")
)
