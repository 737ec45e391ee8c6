package simplex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/feral-file/ff-minter/internal/adapter"
	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/logger"
)

const (
	quotePath    = "/wallet/merchant/v2/quote"
	eventsPath   = "/wallet/merchant/v2/events"
	paymentsPath = "/wallet/merchant/v2/payments/partner/data"

	paymentMethodCard = "credit_card"
	appVersionID      = "1"
)

// Config holds the payment processor configuration
type Config struct {
	APIURL          string
	APIKey          string
	WalletID        string
	WalletAddress   string
	FiatCurrency    string
	DigitalCurrency string
}

// QuoteRequest asks the processor to price a purchase for an end user
type QuoteRequest struct {
	EndUserID string
	Amount    decimal.Decimal
	ClientIP  string
}

// Quote is the processor answer to a QuoteRequest
type Quote struct {
	QuoteID     string
	UserID      string
	Price       decimal.Decimal
	TotalAmount decimal.Decimal
	// Raw is the unmodified processor response returned to the caller
	Raw json.RawMessage
}

// PaymentRequest submits the checkout of a quote
type PaymentRequest struct {
	QuoteID     string
	PaymentID   string
	OrderID     string
	EndUserID   string
	Email       string
	ClientIP    string
	ReferrerURL string
	SignupAt    time.Time
}

// Client calls the payment processor merchant API
type Client struct {
	cfg        Config
	httpClient adapter.HTTPClient
}

// NewClient creates a new payment processor client
func NewClient(cfg Config, httpClient adapter.HTTPClient) *Client {
	return &Client{cfg: cfg, httpClient: httpClient}
}

// Quote requests a price quote in the configured currencies
func (c *Client) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	amount, _ := req.Amount.Float64()
	payload := map[string]interface{}{
		"end_user_id":        req.EndUserID,
		"requested_amount":   amount,
		"client_ip":          req.ClientIP,
		"digital_currency":   c.cfg.DigitalCurrency,
		"requested_currency": c.cfg.DigitalCurrency,
		"fiat_currency":      c.cfg.FiatCurrency,
		"wallet_id":          c.cfg.WalletID,
		"payment_methods":    []string{paymentMethodCard},
	}

	resp, err := c.call(ctx, http.MethodPost, quotePath, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to request quote: %w", err)
	}

	quoteID := gjson.GetBytes(resp, "quote_id").String()
	if quoteID == "" {
		return nil, fmt.Errorf("quote response without quote id: %s", string(resp))
	}

	price, err := parseAmount(resp, "digital_money.amount")
	if err != nil {
		return nil, err
	}
	total, err := parseAmount(resp, "fiat_money.total_amount")
	if err != nil {
		return nil, err
	}

	return &Quote{
		QuoteID:     quoteID,
		UserID:      gjson.GetBytes(resp, "user_id").String(),
		Price:       price,
		TotalAmount: total,
		Raw:         json.RawMessage(resp),
	}, nil
}

// SubmitPayment submits the checkout of a quote with the destination wallet of the merchant
func (c *Client) SubmitPayment(ctx context.Context, req PaymentRequest) (json.RawMessage, error) {
	payload := map[string]interface{}{
		"account_details": map[string]interface{}{
			"app_provider_id": c.cfg.WalletID,
			"app_version_id":  appVersionID,
			"app_end_user_id": req.EndUserID,
			"email":           req.Email,
			"signup_login": map[string]interface{}{
				"ip":        req.ClientIP,
				"timestamp": req.SignupAt.UTC().Format(time.RFC3339),
			},
		},
		"transaction_details": map[string]interface{}{
			"payment_details": map[string]interface{}{
				"quote_id":              req.QuoteID,
				"payment_id":            req.PaymentID,
				"order_id":              req.OrderID,
				"original_http_ref_url": req.ReferrerURL,
				"destination_wallet": map[string]interface{}{
					"currency": c.cfg.DigitalCurrency,
					"address":  c.cfg.WalletAddress,
					"tag":      "",
				},
			},
		},
	}

	resp, err := c.call(ctx, http.MethodPost, paymentsPath, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to submit payment: %w", err)
	}

	logger.InfoCtx(ctx, "Payment submitted", zap.String("payment_id", req.PaymentID), zap.String("quote_id", req.QuoteID))
	return json.RawMessage(resp), nil
}

// ListEvents returns every undeleted payment event
func (c *Client) ListEvents(ctx context.Context) ([]domain.PaymentEvent, error) {
	resp, err := c.call(ctx, http.MethodGet, eventsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment events: %w", err)
	}

	items := gjson.GetBytes(resp, "events").Array()
	events := make([]domain.PaymentEvent, 0, len(items))
	for _, item := range items {
		events = append(events, domain.PaymentEvent{
			EventID:   item.Get("event_id").String(),
			Name:      domain.PaymentStatus(item.Get("name").String()),
			PaymentID: item.Get("payment.id").String(),
		})
	}

	return events, nil
}

// DeleteEvent acknowledges one payment event
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	if _, err := c.call(ctx, http.MethodDelete, eventsPath+"/"+url.PathEscape(eventID), nil); err != nil {
		return fmt.Errorf("failed to delete payment event %s: %w", eventID, err)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method string, path string, payload interface{}) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Authorization", "ApiKey "+c.cfg.APIKey)

	return c.httpClient.Do(ctx, adapter.Request{
		Method: method,
		URL:    strings.TrimSuffix(c.cfg.APIURL, "/") + path,
		Header: header,
		Body:   body,
	})
}

func parseAmount(resp []byte, path string) (decimal.Decimal, error) {
	v := gjson.GetBytes(resp, path)
	if !v.Exists() {
		return decimal.Zero, fmt.Errorf("quote response without %s", path)
	}
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", path, v.String(), err)
	}
	return d, nil
}
