package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/vyaparlabs/gstbill/internal/config"
	invoicedomain "github.com/vyaparlabs/gstbill/internal/invoice/domain"
	"github.com/vyaparlabs/gstbill/internal/observability/metrics"
	paymentdomain "github.com/vyaparlabs/gstbill/internal/payment/domain"
	"github.com/vyaparlabs/gstbill/internal/payment/gateway"
	"github.com/vyaparlabs/gstbill/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// PollInterval is how often WaitForPayment asks the gateway for payment
// attempts.
const PollInterval = 5 * time.Second

type ServiceParam struct {
	fx.In

	Cfg       config.Config
	Log       *zap.Logger
	GenID     *snowflake.Node
	Gateway   *gateway.Client
	Metrics   *metrics.Metrics
	Invoices  invoicedomain.Service
	OrderRepo repository.Repository[paymentdomain.PaymentOrder]
}

type Service struct {
	log       *zap.Logger
	genID     *snowflake.Node
	gateway   *gateway.Client
	metrics   *metrics.Metrics
	invoices  invoicedomain.Service
	orderRepo repository.Repository[paymentdomain.PaymentOrder]

	publicURL    string
	pollInterval time.Duration
}

func NewService(p ServiceParam) paymentdomain.Service {
	return &Service{
		log:          p.Log.Named("payment.service"),
		genID:        p.GenID,
		gateway:      p.Gateway,
		metrics:      p.Metrics,
		invoices:     p.Invoices,
		orderRepo:    p.OrderRepo,
		publicURL:    p.Cfg.PublicURL,
		pollInterval: PollInterval,
	}
}

func (s *Service) CreateOrder(ctx context.Context, req paymentdomain.CreateOrderRequest) (*paymentdomain.OrderResponse, error) {
	amount := req.Amount
	receipt := strings.TrimSpace(req.Receipt)

	var transactionID *snowflake.ID
	if trxID := strings.TrimSpace(req.TransactionID); trxID != "" {
		trx, err := s.invoices.GetByID(ctx, trxID)
		if err != nil {
			return nil, err
		}
		if trx.PaymentStatus == invoicedomain.PaymentStatusPaid {
			return nil, invoicedomain.ErrAlreadyPaid
		}
		amount = trx.TotalAmount
		if receipt == "" {
			receipt = trx.InvoiceNumber
		}
		transactionID = &trx.ID
	}

	if amount <= 0 {
		return nil, paymentdomain.ErrInvalidAmount
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "INR"
	}

	amountMinor := gateway.ToMinorUnits(amount)
	order, err := s.gateway.CreateOrder(ctx, amountMinor, currency, receipt, req.Notes)
	if err != nil {
		s.recordGatewayError(ctx, err)
		return nil, err
	}

	notes := datatypes.JSONMap{}
	for k, v := range req.Notes {
		notes[k] = v
	}

	now := time.Now().UTC()
	record := &paymentdomain.PaymentOrder{
		ID:             s.genID.Generate(),
		TransactionID:  transactionID,
		GatewayOrderID: order.ID,
		Amount:         amount,
		AmountMinor:    amountMinor,
		Currency:       currency,
		Receipt:        receipt,
		Status:         paymentdomain.OrderStatusCreated,
		Notes:          notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.orderRepo.Create(ctx, record); err != nil {
		// The order already exists at the gateway; failing here would push
		// the caller into creating a duplicate.
		s.log.Warn("failed to persist payment order",
			zap.String("gateway_order_id", order.ID),
			zap.Error(err),
		)
	}

	s.metrics.RecordPaymentOrder(ctx)
	s.log.Info("payment order created",
		zap.String("gateway_order_id", order.ID),
		zap.Int64("amount_minor", amountMinor),
	)

	resp := &paymentdomain.OrderResponse{
		OrderID:     order.ID,
		Amount:      amount,
		AmountMinor: amountMinor,
		Currency:    currency,
		Status:      record.Status,
	}
	if transactionID != nil {
		resp.TransactionID = transactionID.String()
	}
	return resp, nil
}

func (s *Service) CreateLink(ctx context.Context, req paymentdomain.CreateLinkRequest) (*paymentdomain.LinkResponse, error) {
	amount := req.Amount
	description := strings.TrimSpace(req.Description)
	name := strings.TrimSpace(req.CustomerName)
	email := strings.TrimSpace(req.CustomerEmail)
	phone := strings.TrimSpace(req.CustomerPhone)

	if trxID := strings.TrimSpace(req.TransactionID); trxID != "" {
		trx, err := s.invoices.GetByID(ctx, trxID)
		if err != nil {
			return nil, err
		}
		if trx.PaymentStatus == invoicedomain.PaymentStatusPaid {
			return nil, invoicedomain.ErrAlreadyPaid
		}
		amount = trx.TotalAmount
		if description == "" {
			description = "Invoice " + trx.InvoiceNumber
		}
		if name == "" {
			name = trx.CustomerName
		}
		if email == "" && trx.CustomerEmail != nil {
			email = *trx.CustomerEmail
		}
		if phone == "" && trx.CustomerPhone != nil {
			phone = *trx.CustomerPhone
		}
	}

	if amount <= 0 {
		return nil, paymentdomain.ErrInvalidAmount
	}

	callback := strings.TrimSpace(req.CallbackURL)
	if callback == "" && s.publicURL != "" {
		callback = s.publicURL + "/api/payments/verify"
	}

	link, err := s.gateway.CreatePaymentLink(ctx, gateway.LinkParams{
		AmountMinor:   gateway.ToMinorUnits(amount),
		Description:   description,
		CustomerName:  name,
		CustomerEmail: email,
		CustomerPhone: phone,
		CallbackURL:   callback,
		ExpireBy:      req.ExpireBy,
	})
	if err != nil {
		s.recordGatewayError(ctx, err)
		return nil, err
	}

	return &paymentdomain.LinkResponse{
		LinkID:   link.ID,
		ShortURL: link.ShortURL,
	}, nil
}

// VerifyAndMarkPaid validates the checkout callback signature and flips
// the transaction to paid. The transaction id may be omitted when the
// order row already links one.
func (s *Service) VerifyAndMarkPaid(ctx context.Context, req paymentdomain.VerifyRequest) (*invoicedomain.Transaction, error) {
	if err := gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature, s.gateway.Secret()); err != nil {
		s.log.Warn("payment verification failed",
			zap.String("order_id", req.OrderID),
			zap.String("payment_id", req.PaymentID),
			zap.Error(err),
		)
		return nil, err
	}

	transactionID := strings.TrimSpace(req.TransactionID)
	if transactionID == "" {
		order, err := s.orderRepo.FindOne(ctx, &paymentdomain.PaymentOrder{GatewayOrderID: req.OrderID})
		if err != nil {
			return nil, err
		}
		if order == nil || order.TransactionID == nil {
			return nil, paymentdomain.ErrOrderNotFound
		}
		transactionID = order.TransactionID.String()
	}

	trx, err := s.invoices.MarkPaid(ctx, transactionID, req.PaymentID)
	if err != nil {
		return nil, err
	}

	s.markOrderStatus(ctx, req.OrderID, paymentdomain.OrderStatusCaptured)
	s.metrics.RecordTransactionPaid(ctx, "verify")

	return trx, nil
}

func (s *Service) OrderStatus(ctx context.Context, gatewayOrderID string) (string, error) {
	order, err := s.gateway.FetchOrder(ctx, gatewayOrderID)
	if err != nil {
		s.recordGatewayError(ctx, err)
		return "", err
	}

	s.markOrderStatus(ctx, gatewayOrderID, order.Status)
	return order.Status, nil
}

// WaitForPayment polls payment attempts until one is captured or
// authorized. It returns ctx.Err() when the caller gives up.
func (s *Service) WaitForPayment(ctx context.Context, gatewayOrderID string) (string, error) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		payments, err := s.gateway.FetchPaymentsForOrder(ctx, gatewayOrderID)
		if err != nil {
			// Caller cancellation is not a gateway failure.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			s.recordGatewayError(ctx, err)
			return "", err
		}

		for _, payment := range payments {
			if payment.Status != paymentdomain.OrderStatusCaptured &&
				payment.Status != paymentdomain.OrderStatusAuthorized {
				continue
			}

			s.markOrderStatus(ctx, gatewayOrderID, payment.Status)
			if err := s.settleTransaction(ctx, gatewayOrderID, payment.ID); err != nil {
				return "", err
			}
			return payment.Status, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// settleTransaction marks the linked transaction paid after a confirmed
// payment. Orders created from raw amounts have nothing to settle.
func (s *Service) settleTransaction(ctx context.Context, gatewayOrderID, paymentID string) error {
	order, err := s.orderRepo.FindOne(ctx, &paymentdomain.PaymentOrder{GatewayOrderID: gatewayOrderID})
	if err != nil {
		return err
	}
	if order == nil || order.TransactionID == nil {
		return nil
	}

	if _, err := s.invoices.MarkPaid(ctx, order.TransactionID.String(), paymentID); err != nil {
		if errors.Is(err, invoicedomain.ErrAlreadyPaid) {
			return nil
		}
		return err
	}

	s.metrics.RecordTransactionPaid(ctx, "poll")
	return nil
}

func (s *Service) markOrderStatus(ctx context.Context, gatewayOrderID, status string) {
	order, err := s.orderRepo.FindOne(ctx, &paymentdomain.PaymentOrder{GatewayOrderID: gatewayOrderID})
	if err != nil || order == nil {
		return
	}
	if order.Status == status {
		return
	}

	update := map[string]any{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if err := s.orderRepo.Update(ctx, order.ID.String(), update); err != nil {
		s.log.Warn("failed to update payment order status",
			zap.String("gateway_order_id", gatewayOrderID),
			zap.String("status", status),
			zap.Error(err),
		)
	}
}

func (s *Service) recordGatewayError(ctx context.Context, err error) {
	category := "unavailable"
	switch {
	case errors.Is(err, paymentdomain.ErrConfigMissing):
		category = "config_missing"
	case errors.Is(err, paymentdomain.ErrGatewayAuth):
		category = "auth"
	case errors.Is(err, paymentdomain.ErrGatewayRejected):
		category = "rejected"
	case errors.Is(err, paymentdomain.ErrAmountBelowMinimum):
		category = "below_minimum"
	case errors.Is(err, paymentdomain.ErrInvalidRequest):
		category = "invalid_request"
	}
	s.metrics.RecordGatewayError(ctx, category)
}
