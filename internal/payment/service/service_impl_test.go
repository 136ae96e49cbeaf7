package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogrepo "github.com/vyaparlabs/gstbill/internal/catalog/repository"
	"github.com/vyaparlabs/gstbill/internal/config"
	invoicedomain "github.com/vyaparlabs/gstbill/internal/invoice/domain"
	invoiceservice "github.com/vyaparlabs/gstbill/internal/invoice/service"
	paymentdomain "github.com/vyaparlabs/gstbill/internal/payment/domain"
	"github.com/vyaparlabs/gstbill/internal/payment/gateway"
	"github.com/vyaparlabs/gstbill/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecret = "secret_test"

type fixture struct {
	svc      *Service
	invoices invoicedomain.Service
	db       *gorm.DB
}

func newFixture(t *testing.T, handler http.Handler) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&invoicedomain.Transaction{},
		&invoicedomain.TransactionItem{},
		&paymentdomain.PaymentOrder{},
	))

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	invoices := invoiceservice.NewService(invoiceservice.ServiceParam{
		In:          fx.In{},
		Log:         zap.NewNop(),
		GenID:       node,
		DB:          db,
		TrxRepo:     repository.ProvideStore[invoicedomain.Transaction](db),
		CatalogRepo: catalogrepo.NewRepository(db),
	})

	client := gateway.NewClient(config.GatewayConfig{
		KeyID:   "key_test",
		Secret:  testSecret,
		BaseURL: server.URL,
	}, zap.NewNop())

	svc := NewService(ServiceParam{
		In:        fx.In{},
		Cfg:       config.Config{PublicURL: "https://bill.example.com"},
		Log:       zap.NewNop(),
		GenID:     node,
		Gateway:   client,
		Invoices:  invoices,
		OrderRepo: repository.ProvideStore[paymentdomain.PaymentOrder](db),
	}).(*Service)
	svc.pollInterval = 10 * time.Millisecond

	return &fixture{svc: svc, invoices: invoices, db: db}
}

func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateOrderFromTransaction(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, float64(590000), payload["amount"])
		json.NewEncoder(w).Encode(gateway.Order{
			ID: "order_abc", AmountMinor: 590000, Currency: "INR", Status: "created",
		})
	}))
	ctx := context.Background()

	trx, err := f.invoices.CreateTest(ctx, "Walk-in")
	require.NoError(t, err)

	resp, err := f.svc.CreateOrder(ctx, paymentdomain.CreateOrderRequest{
		TransactionID: trx.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", resp.OrderID)
	assert.Equal(t, int64(590000), resp.AmountMinor)
	assert.Equal(t, trx.ID.String(), resp.TransactionID)
	assert.Equal(t, trx.InvoiceNumber, receiptFor(t, f.db, "order_abc"))
}

func receiptFor(t *testing.T, db *gorm.DB, orderID string) string {
	t.Helper()
	var receipt string
	require.NoError(t, db.Raw(
		`SELECT receipt FROM payment_orders WHERE gateway_order_id = ?`, orderID,
	).Scan(&receipt).Error)
	return receipt
}

func TestCreateOrderRawAmountBelowMinimum(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("gateway must not be called")
	}))

	_, err := f.svc.CreateOrder(context.Background(), paymentdomain.CreateOrderRequest{Amount: 0.5})
	assert.ErrorIs(t, err, paymentdomain.ErrAmountBelowMinimum)
}

func TestCreateOrderRejectsPaidTransaction(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(gateway.Order{ID: "order_abc", Status: "created"})
	}))
	ctx := context.Background()

	trx, err := f.invoices.CreateTest(ctx, "Walk-in")
	require.NoError(t, err)
	_, err = f.invoices.MarkPaid(ctx, trx.ID.String(), "pay_0")
	require.NoError(t, err)

	_, err = f.svc.CreateOrder(ctx, paymentdomain.CreateOrderRequest{TransactionID: trx.ID.String()})
	assert.ErrorIs(t, err, invoicedomain.ErrAlreadyPaid)
}

func TestVerifyAndMarkPaid(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(gateway.Order{ID: "order_abc", Status: "created"})
	}))
	ctx := context.Background()

	trx, err := f.invoices.CreateTest(ctx, "Walk-in")
	require.NoError(t, err)
	_, err = f.svc.CreateOrder(ctx, paymentdomain.CreateOrderRequest{TransactionID: trx.ID.String()})
	require.NoError(t, err)

	paid, err := f.svc.VerifyAndMarkPaid(ctx, paymentdomain.VerifyRequest{
		PaymentID:     "pay_1",
		OrderID:       "order_abc",
		Signature:     sign("order_abc", "pay_1"),
		TransactionID: trx.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.PaymentStatusPaid, paid.PaymentStatus)

	var status string
	require.NoError(t, f.db.Raw(
		`SELECT status FROM payment_orders WHERE gateway_order_id = 'order_abc'`,
	).Scan(&status).Error)
	assert.Equal(t, paymentdomain.OrderStatusCaptured, status)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(gateway.Order{ID: "order_abc", Status: "created"})
	}))
	ctx := context.Background()

	trx, err := f.invoices.CreateTest(ctx, "Walk-in")
	require.NoError(t, err)
	_, err = f.svc.CreateOrder(ctx, paymentdomain.CreateOrderRequest{TransactionID: trx.ID.String()})
	require.NoError(t, err)

	_, err = f.svc.VerifyAndMarkPaid(ctx, paymentdomain.VerifyRequest{
		PaymentID:     "pay_1",
		OrderID:       "order_abc",
		Signature:     sign("order_abc", "pay_other"),
		TransactionID: trx.ID.String(),
	})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidSignature)

	// The transaction stays pending after a failed verification.
	current, err := f.invoices.GetByID(ctx, trx.ID.String())
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.PaymentStatusPending, current.PaymentStatus)
}

func TestVerifyResolvesTransactionFromOrder(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(gateway.Order{ID: "order_abc", Status: "created"})
	}))
	ctx := context.Background()

	trx, err := f.invoices.CreateTest(ctx, "Walk-in")
	require.NoError(t, err)
	_, err = f.svc.CreateOrder(ctx, paymentdomain.CreateOrderRequest{TransactionID: trx.ID.String()})
	require.NoError(t, err)

	paid, err := f.svc.VerifyAndMarkPaid(ctx, paymentdomain.VerifyRequest{
		PaymentID: "pay_1",
		OrderID:   "order_abc",
		Signature: sign("order_abc", "pay_1"),
	})
	require.NoError(t, err)
	assert.Equal(t, trx.ID, paid.ID)
}

func TestWaitForPaymentPollsUntilCaptured(t *testing.T) {
	var calls atomic.Int64
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(gateway.Order{ID: "order_abc", Status: "created"})
			return
		}

		n := calls.Add(1)
		payments := []gateway.Payment{}
		if n >= 3 {
			payments = append(payments, gateway.Payment{
				ID: "pay_1", OrderID: "order_abc", Status: "captured", AmountMinor: 590000,
			})
		}
		json.NewEncoder(w).Encode(map[string]any{"items": payments})
	}))
	ctx := context.Background()

	trx, err := f.invoices.CreateTest(ctx, "Walk-in")
	require.NoError(t, err)
	_, err = f.svc.CreateOrder(ctx, paymentdomain.CreateOrderRequest{TransactionID: trx.ID.String()})
	require.NoError(t, err)

	status, err := f.svc.WaitForPayment(ctx, "order_abc")
	require.NoError(t, err)
	assert.Equal(t, "captured", status)
	assert.GreaterOrEqual(t, calls.Load(), int64(3))

	paid, err := f.invoices.GetByID(ctx, trx.ID.String())
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.PaymentStatusPaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaymentReference)
	assert.Equal(t, "pay_1", *paid.PaymentReference)
}

func TestWaitForPaymentHonorsContextCancellation(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(gateway.Order{ID: "order_abc", Status: "created"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"items": []gateway.Payment{}})
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := f.svc.WaitForPayment(ctx, "order_abc")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitForPaymentReturnsCancellationNotGatewayError(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(gateway.Order{ID: "order_abc", Status: "created"})
			return
		}
		t.Fatal("gateway must not be polled with a cancelled context")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.WaitForPayment(ctx, "order_abc")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, paymentdomain.ErrGatewayUnavailable)
}

func TestCreateOrderSurvivesLocalPersistenceFailure(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(gateway.Order{
			ID: "order_abc", AmountMinor: 590000, Currency: "INR", Status: "created",
		})
	}))
	ctx := context.Background()

	trx, err := f.invoices.CreateTest(ctx, "Walk-in")
	require.NoError(t, err)

	// The gateway order exists even when the local row cannot be written;
	// the caller must still get the order id back.
	require.NoError(t, f.db.Exec(`DROP TABLE payment_orders`).Error)

	resp, err := f.svc.CreateOrder(ctx, paymentdomain.CreateOrderRequest{
		TransactionID: trx.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", resp.OrderID)
}

func TestCreateLinkDefaultsCallbackToVerifyEndpoint(t *testing.T) {
	var payload map[string]any
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		json.NewEncoder(w).Encode(gateway.PaymentLink{ID: "plink_1", ShortURL: "https://rzp.io/l/x"})
	}))
	ctx := context.Background()

	trx, err := f.invoices.CreateTest(ctx, "Walk-in")
	require.NoError(t, err)

	expiry := time.Now().Add(24 * time.Hour).Unix()
	link, err := f.svc.CreateLink(ctx, paymentdomain.CreateLinkRequest{
		TransactionID: trx.ID.String(),
		ExpireBy:      expiry,
	})
	require.NoError(t, err)
	assert.Equal(t, "plink_1", link.LinkID)

	assert.Equal(t, "https://bill.example.com/api/payments/verify", payload["callback_url"])
	assert.Equal(t, "get", payload["callback_method"])
	assert.Equal(t, float64(expiry), payload["expire_by"])
}
