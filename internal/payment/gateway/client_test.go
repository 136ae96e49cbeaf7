package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vyaparlabs/gstbill/internal/config"
	paymentdomain "github.com/vyaparlabs/gstbill/internal/payment/domain"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(config.GatewayConfig{
		KeyID:   "key_test",
		Secret:  "secret_test",
		BaseURL: server.URL,
	}, zap.NewNop())
	return client, server
}

func sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(590000), ToMinorUnits(5900))
	assert.Equal(t, int64(1056), ToMinorUnits(10.555))
	assert.Equal(t, int64(99), ToMinorUnits(0.99))
}

func TestCreateOrder(t *testing.T) {
	var captured map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_test", user)
		assert.Equal(t, "secret_test", pass)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(Order{
			ID: "order_abc", AmountMinor: 590000, Currency: "INR", Status: "created",
		})
	}))

	order, err := client.CreateOrder(context.Background(), 590000, "INR", "rcpt_1", map[string]string{"invoice": "INV-1"})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, float64(590000), captured["amount"])
	assert.Equal(t, "rcpt_1", captured["receipt"])
}

func TestCreateOrderRejectsBelowMinimumLocally(t *testing.T) {
	called := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := client.CreateOrder(context.Background(), 99, "INR", "", nil)
	assert.ErrorIs(t, err, paymentdomain.ErrAmountBelowMinimum)
	assert.False(t, called)
}

func TestCreateOrderWithoutCredentials(t *testing.T) {
	client := NewClient(config.GatewayConfig{}, zap.NewNop())
	_, err := client.CreateOrder(context.Background(), 1000, "INR", "", nil)
	assert.ErrorIs(t, err, paymentdomain.ErrConfigMissing)
}

func TestErrorCategories(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, paymentdomain.ErrGatewayAuth},
		{http.StatusBadRequest, paymentdomain.ErrGatewayRejected},
		{http.StatusUnprocessableEntity, paymentdomain.ErrGatewayRejected},
		{http.StatusInternalServerError, paymentdomain.ErrGatewayUnavailable},
		{http.StatusBadGateway, paymentdomain.ErrGatewayUnavailable},
	}
	for _, tc := range cases {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		_, err := client.CreateOrder(context.Background(), 1000, "INR", "", nil)
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
	}
}

func TestCreatePaymentLinkOmitsEmptyCustomerFields(t *testing.T) {
	var captured map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_links", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(PaymentLink{ID: "plink_1", ShortURL: "https://pay.test/abc"})
	}))

	link, err := client.CreatePaymentLink(context.Background(), LinkParams{
		AmountMinor:  250000,
		Description:  "Invoice INV-1",
		CustomerName: "Asha Rao",
	})
	require.NoError(t, err)
	assert.Equal(t, "plink_1", link.ID)

	customer, ok := captured["customer"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Asha Rao", customer["name"])
	_, hasEmail := customer["email"]
	assert.False(t, hasEmail)
	_, hasContact := customer["contact"]
	assert.False(t, hasContact)

	_, hasCallback := captured["callback_url"]
	assert.False(t, hasCallback)
	_, hasExpiry := captured["expire_by"]
	assert.False(t, hasExpiry)
}

func TestCreatePaymentLinkSetsCallbackAndExpiry(t *testing.T) {
	var captured map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(PaymentLink{ID: "plink_2", ShortURL: "https://pay.test/def"})
	}))

	_, err := client.CreatePaymentLink(context.Background(), LinkParams{
		AmountMinor: 250000,
		Description: "Invoice INV-1",
		CallbackURL: "https://bill.example.com/api/payments/verify",
		ExpireBy:    1767205800,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://bill.example.com/api/payments/verify", captured["callback_url"])
	assert.Equal(t, "get", captured["callback_method"])
	assert.Equal(t, float64(1767205800), captured["expire_by"])
}

func TestFetchPaymentsForOrder(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders/order_abc/payments", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"items": []Payment{
				{ID: "pay_1", OrderID: "order_abc", Status: "captured", AmountMinor: 590000},
			},
		})
	}))

	payments, err := client.FetchPaymentsForOrder(context.Background(), "order_abc")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "captured", payments[0].Status)
}

func TestVerifySignature(t *testing.T) {
	secret := "secret_test"
	good := sign("order_abc", "pay_1", secret)

	require.NoError(t, VerifySignature("order_abc", "pay_1", good, secret))

	// Tampered signature must fail.
	assert.ErrorIs(t,
		VerifySignature("order_abc", "pay_1", good[:len(good)-1]+"x", secret),
		paymentdomain.ErrInvalidSignature)

	// Signature for a different order must fail.
	other := sign("order_other", "pay_1", secret)
	assert.ErrorIs(t,
		VerifySignature("order_abc", "pay_1", other, secret),
		paymentdomain.ErrInvalidSignature)

	assert.ErrorIs(t,
		VerifySignature("order_abc", "pay_1", good, ""),
		paymentdomain.ErrConfigMissing)

	assert.ErrorIs(t,
		VerifySignature("", "pay_1", good, secret),
		paymentdomain.ErrInvalidSignature)
}
