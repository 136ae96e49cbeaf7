package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/vyaparlabs/gstbill/internal/config"
	paymentdomain "github.com/vyaparlabs/gstbill/internal/payment/domain"
	"go.uber.org/zap"
)

// MinimumAmountMinor is the smallest order the gateway accepts, one rupee
// in paise.
const MinimumAmountMinor = 100

type Order struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
}

type PaymentLink struct {
	ID       string `json:"id"`
	ShortURL string `json:"short_url"`
}

type Payment struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	Status      string `json:"status"`
	AmountMinor int64  `json:"amount"`
	Method      string `json:"method"`
}

// Client talks to the payment gateway's REST API with basic auth. All
// requests carry the caller's context; the gateway's own retry semantics
// are not wrapped.
type Client struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(cfg config.GatewayConfig, log *zap.Logger) *Client {
	return &Client{
		keyID:     strings.TrimSpace(cfg.KeyID),
		keySecret: strings.TrimSpace(cfg.Secret),
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.Named("payment.gateway"),
	}
}

// Secret exposes the signing key for callback verification.
func (c *Client) Secret() string { return c.keySecret }

func (c *Client) configured() bool {
	return c.keyID != "" && c.keySecret != ""
}

// ToMinorUnits converts rupees to paise with round-half-up, so 10.555
// becomes 1056 rather than truncating.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateOrder registers an order for the given amount in minor units.
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*Order, error) {
	if !c.configured() {
		return nil, paymentdomain.ErrConfigMissing
	}
	if amountMinor < MinimumAmountMinor {
		return nil, paymentdomain.ErrAmountBelowMinimum
	}
	if currency == "" {
		currency = "INR"
	}

	payload := map[string]any{
		"amount":   amountMinor,
		"currency": currency,
	}
	if receipt != "" {
		payload["receipt"] = receipt
	}
	if len(notes) > 0 {
		payload["notes"] = notes
	}

	var order Order
	if err := c.post(ctx, "/v1/orders", payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// LinkParams describes a hosted checkout link. CallbackURL is where the
// gateway sends the customer after paying; ExpireBy is a unix timestamp
// after which the link stops working.
type LinkParams struct {
	AmountMinor   int64
	Description   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	CallbackURL   string
	ExpireBy      int64
}

// CreatePaymentLink creates a hosted checkout link. Customer fields are
// only sent when present.
func (c *Client) CreatePaymentLink(ctx context.Context, params LinkParams) (*PaymentLink, error) {
	if !c.configured() {
		return nil, paymentdomain.ErrConfigMissing
	}
	if params.AmountMinor < MinimumAmountMinor {
		return nil, paymentdomain.ErrAmountBelowMinimum
	}

	payload := map[string]any{
		"amount":   params.AmountMinor,
		"currency": "INR",
	}
	if params.Description != "" {
		payload["description"] = params.Description
	}
	if params.CallbackURL != "" {
		payload["callback_url"] = params.CallbackURL
		// The gateway redirects the browser, so the callback is a GET.
		payload["callback_method"] = "get"
	}
	if params.ExpireBy > 0 {
		payload["expire_by"] = params.ExpireBy
	}

	customer := map[string]string{}
	if params.CustomerName != "" {
		customer["name"] = params.CustomerName
	}
	if params.CustomerEmail != "" {
		customer["email"] = params.CustomerEmail
	}
	if params.CustomerPhone != "" {
		customer["contact"] = params.CustomerPhone
	}
	if len(customer) > 0 {
		payload["customer"] = customer
	}

	var link PaymentLink
	if err := c.post(ctx, "/v1/payment_links", payload, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// FetchPaymentsForOrder lists the payment attempts against an order.
func (c *Client) FetchPaymentsForOrder(ctx context.Context, orderID string) ([]Payment, error) {
	if !c.configured() {
		return nil, paymentdomain.ErrConfigMissing
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, paymentdomain.ErrInvalidRequest
	}

	var result struct {
		Items []Payment `json:"items"`
	}
	if err := c.get(ctx, "/v1/orders/"+orderID+"/payments", &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// FetchOrder reads a single order's current state.
func (c *Client) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	if !c.configured() {
		return nil, paymentdomain.ErrConfigMissing
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, paymentdomain.ErrInvalidRequest
	}

	var order Order
	if err := c.get(ctx, "/v1/orders/"+orderID, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("gateway request failed",
			zap.String("path", req.URL.Path),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", paymentdomain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", paymentdomain.ErrGatewayUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return paymentdomain.ErrGatewayAuth
	case resp.StatusCode >= 500:
		c.log.Warn("gateway unavailable",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
		)
		return paymentdomain.ErrGatewayUnavailable
	case resp.StatusCode >= 400:
		c.log.Warn("gateway rejected request",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return paymentdomain.ErrGatewayRejected
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", paymentdomain.ErrGatewayUnavailable, err)
	}
	return nil
}
