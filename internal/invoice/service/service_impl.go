package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/vyaparlabs/gstbill/internal/catalog/domain"
	"github.com/vyaparlabs/gstbill/internal/gst"
	invoicedomain "github.com/vyaparlabs/gstbill/internal/invoice/domain"
	"github.com/vyaparlabs/gstbill/internal/observability/metrics"
	"github.com/vyaparlabs/gstbill/pkg/db"
	"github.com/vyaparlabs/gstbill/pkg/db/option"
	"github.com/vyaparlabs/gstbill/pkg/db/pagination"
	"github.com/vyaparlabs/gstbill/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	testServiceName = "Test Service"
	testUnitPrice   = 5000.0
	testGSTRate     = 18.0
)

type ServiceParam struct {
	fx.In

	Log         *zap.Logger
	GenID       *snowflake.Node
	DB          *gorm.DB
	Metrics     *metrics.Metrics
	TrxRepo     repository.Repository[invoicedomain.Transaction]
	CatalogRepo catalogdomain.Repository
}

type Service struct {
	log         *zap.Logger
	genID       *snowflake.Node
	db          *gorm.DB
	metrics     *metrics.Metrics
	trxRepo     repository.Repository[invoicedomain.Transaction]
	catalogRepo catalogdomain.Repository
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		log:         p.Log.Named("invoice.service"),
		genID:       p.GenID,
		db:          p.DB,
		metrics:     p.Metrics,
		trxRepo:     p.TrxRepo,
		catalogRepo: p.CatalogRepo,
	}
}

func (s *Service) Create(ctx context.Context, req invoicedomain.CreateTransactionRequest) (*invoicedomain.Transaction, error) {
	if len(req.Items) == 0 {
		return nil, gst.ErrNoLineItems
	}

	lines := make([]gst.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		svcID, err := snowflake.ParseString(strings.TrimSpace(item.ServiceID))
		if err != nil {
			return nil, invoicedomain.ErrUnknownService
		}

		svc, err := s.catalogRepo.FindByID(ctx, svcID)
		if err != nil {
			return nil, err
		}
		if svc == nil {
			return nil, invoicedomain.ErrUnknownService
		}
		if !svc.Active {
			return nil, invoicedomain.ErrServiceInactive
		}

		lines = append(lines, gst.LineItem{
			ServiceID: svc.ID.String(),
			Name:      svc.Name,
			HSNCode:   svc.HSNCode,
			UnitPrice: svc.UnitPrice,
			Quantity:  item.Quantity,
			GSTRate:   svc.GSTRate,
		})
	}

	return s.create(ctx, req, lines)
}

// CreateTest issues a fixed-amount transaction without touching the
// catalog. It runs through the same calculator and persistence path as a
// regular create.
func (s *Service) CreateTest(ctx context.Context, customerName string) (*invoicedomain.Transaction, error) {
	req := invoicedomain.CreateTransactionRequest{
		CustomerName: customerName,
		Metadata:     map[string]any{"test": true},
	}

	lines := []gst.LineItem{{
		Name:      testServiceName,
		UnitPrice: testUnitPrice,
		Quantity:  1,
		GSTRate:   testGSTRate,
	}}

	return s.create(ctx, req, lines)
}

func (s *Service) create(ctx context.Context, req invoicedomain.CreateTransactionRequest, lines []gst.LineItem) (*invoicedomain.Transaction, error) {
	customerName := strings.TrimSpace(req.CustomerName)
	if customerName == "" {
		return nil, invoicedomain.ErrInvalidCustomerName
	}

	rule := gst.DiscountRule{
		Kind:  gst.DiscountKind(strings.TrimSpace(req.DiscountKind)),
		Value: req.DiscountValue,
	}
	if rule.Kind == "" {
		rule.Kind = gst.DiscountFixed
	}

	breakdown, err := gst.Calculate(lines, rule)
	if err != nil {
		return nil, err
	}

	if req.Totals != nil {
		if err := gst.VerifyTotals(*req.Totals, breakdown); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()

	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	record := &invoicedomain.Transaction{
		ID:              s.genID.Generate(),
		InvoiceDate:     now,
		CustomerName:    customerName,
		CustomerEmail:   normalizePtr(req.CustomerEmail),
		CustomerPhone:   normalizePtr(req.CustomerPhone),
		CustomerAddress: normalizePtr(req.CustomerAddress),
		CustomerGSTIN:   normalizePtr(req.CustomerGSTIN),

		DiscountKind:  string(rule.Kind),
		DiscountValue: rule.Value,

		Subtotal:       breakdown.Subtotal,
		DiscountAmount: breakdown.DiscountAmount,
		TaxableAmount:  breakdown.TaxableAmount,
		CGSTAmount:     breakdown.CGSTAmount,
		SGSTAmount:     breakdown.SGSTAmount,
		TotalAmount:    breakdown.TotalAmount,

		PaymentStatus: invoicedomain.PaymentStatusPending,
		Metadata:      metadata,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, item := range breakdown.Items {
		// Zero for the synthetic test line, which references no catalog row.
		serviceID, _ := snowflake.ParseString(item.ServiceID)

		record.Items = append(record.Items, invoicedomain.TransactionItem{
			ID:            s.genID.Generate(),
			TransactionID: record.ID,
			ServiceID:     serviceID,
			Name:          item.Name,
			HSNCode:       item.HSNCode,
			UnitPrice:     item.UnitPrice,
			Quantity:      item.Quantity,
			GSTRate:       item.GSTRate,
			LineTotal:     item.LineTotal,
			DiscountShare: item.DiscountShare,
			TaxableAmount: item.TaxableAmount,
			GSTAmount:     item.GSTAmount,
			CreatedAt:     now,
		})
	}

	// A random suffix can collide with a concurrent writer between the
	// existence check and the insert, so retry on the unique index.
	for attempt := 0; ; attempt++ {
		number, err := generateInvoiceNumber(ctx, now, s.numberExists)
		if err != nil {
			return nil, err
		}
		record.InvoiceNumber = number

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.trxRepo.WithTrx(tx).Create(ctx, record)
		})
		if err == nil {
			break
		}
		if db.IsDuplicateKeyErr(err) && attempt < 2 {
			continue
		}
		return nil, err
	}

	s.metrics.RecordTransactionCreated(ctx)
	s.log.Info("transaction created",
		zap.String("transaction_id", record.ID.String()),
		zap.String("invoice_number", record.InvoiceNumber),
		zap.Float64("total_amount", record.TotalAmount),
	)

	return record, nil
}

func (s *Service) numberExists(ctx context.Context, number string) (bool, error) {
	count, err := s.trxRepo.Count(ctx, &invoicedomain.Transaction{InvoiceNumber: number})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListTransactionRequest) (invoicedomain.ListTransactionResponse, error) {
	var resp invoicedomain.ListTransactionResponse

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	stmt := s.db.WithContext(ctx).
		Model(&invoicedomain.Transaction{}).
		Preload("Items").
		Order("created_at DESC, id DESC")
	stmt = option.WithLimit(pageSize + 1).Apply(stmt)

	if status := strings.TrimSpace(req.Status); status != "" {
		stmt = option.ApplyOperator(option.Condition{Field: "payment_status", Operator: option.EQ, Value: status}).Apply(stmt)
	}
	if from := strings.TrimSpace(req.DateFrom); from != "" {
		stmt = option.ApplyOperator(option.Condition{Field: "invoice_date", Operator: option.GTE, Value: from}).Apply(stmt)
	}
	if to := strings.TrimSpace(req.DateTo); to != "" {
		stmt = option.ApplyOperator(option.Condition{Field: "invoice_date", Operator: option.LTE, Value: to}).Apply(stmt)
	}

	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return resp, invoicedomain.ErrInvalidID
		}
		stmt = stmt.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []*invoicedomain.Transaction
	if err := stmt.Find(&rows).Error; err != nil {
		return resp, err
	}

	pageInfo, rows := pagination.BuildCursorPageInfo(rows, pageSize, func(t *invoicedomain.Transaction) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        t.ID.String(),
			CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		return token
	})

	resp.PageInfo = *pageInfo
	resp.Transactions = make([]invoicedomain.Transaction, 0, len(rows))
	for _, row := range rows {
		resp.Transactions = append(resp.Transactions, *row)
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*invoicedomain.Transaction, error) {
	trxID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}

	var record invoicedomain.Transaction
	err = s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", trxID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoicedomain.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// MarkPaid flips pending to paid exactly once. Replays with the same
// payment reference succeed and return the stored row unchanged.
func (s *Service) MarkPaid(ctx context.Context, id, paymentReference string) (*invoicedomain.Transaction, error) {
	reference := strings.TrimSpace(paymentReference)
	if reference == "" {
		return nil, invoicedomain.ErrInvalidPaymentReference
	}

	record, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if record.PaymentStatus == invoicedomain.PaymentStatusPaid {
		if record.PaymentReference != nil && *record.PaymentReference == reference {
			return record, nil
		}
		return nil, invoicedomain.ErrAlreadyPaid
	}

	now := time.Now().UTC()
	result := s.db.WithContext(ctx).Exec(
		`UPDATE transactions
		 SET payment_status = ?, payment_reference = ?, paid_at = ?, updated_at = ?
		 WHERE id = ? AND payment_status = ?`,
		invoicedomain.PaymentStatusPaid,
		reference,
		now,
		now,
		record.ID,
		invoicedomain.PaymentStatusPending,
	)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		// Lost the race. Accept only an identical replay.
		current, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.PaymentStatus == invoicedomain.PaymentStatusPaid &&
			current.PaymentReference != nil && *current.PaymentReference == reference {
			return current, nil
		}
		return nil, invoicedomain.ErrAlreadyPaid
	}

	record.PaymentStatus = invoicedomain.PaymentStatusPaid
	record.PaymentReference = &reference
	record.PaidAt = &now
	record.UpdatedAt = now

	s.log.Info("transaction paid",
		zap.String("transaction_id", record.ID.String()),
		zap.String("invoice_number", record.InvoiceNumber),
		zap.String("payment_reference", reference),
	)

	return record, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	record, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record.PaymentStatus == invoicedomain.PaymentStatusPaid {
		return invoicedomain.ErrDeletePaidTransaction
	}

	// A live gateway order still references this transaction; deleting it
	// would leave the customer's payment with nothing to settle against.
	var orders int64
	if err := s.db.WithContext(ctx).
		Table("payment_orders").
		Where("transaction_id = ?", record.ID).
		Count(&orders).Error; err != nil {
		return err
	}
	if orders > 0 {
		return invoicedomain.ErrTransactionInUse
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM transaction_items WHERE transaction_id = ?`, record.ID).Error; err != nil {
			return err
		}
		return tx.Exec(`DELETE FROM transactions WHERE id = ?`, record.ID).Error
	})
}

func normalizePtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
