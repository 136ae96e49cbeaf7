package domain

import "errors"

var (
	ErrInvalidID               = errors.New("invalid_id")
	ErrInvalidCustomerName     = errors.New("invalid_customer_name")
	ErrNotFound                = errors.New("transaction_not_found")
	ErrUnknownService          = errors.New("unknown_service")
	ErrServiceInactive         = errors.New("service_inactive")
	ErrAlreadyPaid             = errors.New("transaction_already_paid")
	ErrInvalidPaymentReference = errors.New("invalid_payment_reference")
	ErrDeletePaidTransaction   = errors.New("cannot_delete_paid_transaction")
	ErrTransactionInUse        = errors.New("transaction_in_use")
	ErrNumberExhausted         = errors.New("invoice_number_exhausted")
)
