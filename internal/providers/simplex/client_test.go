package simplex_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-minter/internal/adapter"
	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/logger"
	"github.com/feral-file/ff-minter/internal/providers/simplex"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *simplex.Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	httpClient := adapter.NewHTTPClientWithPolicy(5*time.Second, adapter.RetryPolicy{
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     20 * time.Millisecond,
		MaxElapsedTime:  100 * time.Millisecond,
	})

	return simplex.NewClient(simplex.Config{
		APIURL:          server.URL,
		APIKey:          "sx-key",
		WalletID:        "ff-wallet",
		WalletAddress:   "deposit-address",
		FiatCurrency:    "USD",
		DigitalCurrency: "USD-DEPOSIT",
	}, httpClient)
}

func readJSON(t *testing.T, r *http.Request) map[string]interface{} {
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &doc))
	return doc
}

func TestClient_Quote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wallet/merchant/v2/quote", r.URL.Path)
		assert.Equal(t, "ApiKey sx-key", r.Header.Get("Authorization"))

		doc := readJSON(t, r)
		assert.Equal(t, "holder-1", doc["end_user_id"])
		assert.Equal(t, 10.5, doc["requested_amount"])
		assert.Equal(t, "USD-DEPOSIT", doc["digital_currency"])
		assert.Equal(t, "USD-DEPOSIT", doc["requested_currency"])
		assert.Equal(t, "USD", doc["fiat_currency"])
		assert.Equal(t, "ff-wallet", doc["wallet_id"])
		assert.Equal(t, []interface{}{"credit_card"}, doc["payment_methods"])

		_, _ = w.Write([]byte(`{"user_id":"sx-user","quote_id":"q-1","digital_money":{"currency":"USD-DEPOSIT","amount":10.5},"fiat_money":{"currency":"USD","total_amount":"12.90"}}`))
	})

	quote, err := client.Quote(context.Background(), simplex.QuoteRequest{
		EndUserID: "holder-1",
		Amount:    decimal.RequireFromString("10.5"),
		ClientIP:  "10.0.0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, "q-1", quote.QuoteID)
	assert.Equal(t, "sx-user", quote.UserID)
	assert.True(t, quote.Price.Equal(decimal.RequireFromString("10.5")))
	assert.True(t, quote.TotalAmount.Equal(decimal.RequireFromString("12.9")))
	assert.Contains(t, string(quote.Raw), `"quote_id":"q-1"`)
}

func TestClient_Quote_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no quote id", body: `{"digital_money":{"amount":1},"fiat_money":{"total_amount":1}}`},
		{name: "no total", body: `{"quote_id":"q","digital_money":{"amount":1}}`},
		{name: "invalid price", body: `{"quote_id":"q","digital_money":{"amount":"ten"},"fiat_money":{"total_amount":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := client.Quote(context.Background(), simplex.QuoteRequest{Amount: decimal.NewFromInt(1)})
			assert.Error(t, err)
		})
	}
}

func TestClient_SubmitPayment(t *testing.T) {
	signup := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wallet/merchant/v2/payments/partner/data", r.URL.Path)

		doc := readJSON(t, r)
		account := doc["account_details"].(map[string]interface{})
		assert.Equal(t, "ff-wallet", account["app_provider_id"])
		assert.Equal(t, "1", account["app_version_id"])
		assert.Equal(t, "holder-1", account["app_end_user_id"])
		assert.Equal(t, "player@example.com", account["email"])
		assert.Equal(t, "2026-01-02T03:04:05Z", account["signup_login"].(map[string]interface{})["timestamp"])

		details := doc["transaction_details"].(map[string]interface{})["payment_details"].(map[string]interface{})
		assert.Equal(t, "q-1", details["quote_id"])
		assert.Equal(t, "p-1", details["payment_id"])
		assert.Equal(t, "o-1", details["order_id"])
		wallet := details["destination_wallet"].(map[string]interface{})
		assert.Equal(t, "USD-DEPOSIT", wallet["currency"])
		assert.Equal(t, "deposit-address", wallet["address"])
		assert.Equal(t, "", wallet["tag"])

		_, _ = w.Write([]byte(`{"is_kyc_update_required":false}`))
	})

	resp, err := client.SubmitPayment(context.Background(), simplex.PaymentRequest{
		QuoteID:   "q-1",
		PaymentID: "p-1",
		OrderID:   "o-1",
		EndUserID: "holder-1",
		Email:     "player@example.com",
		ClientIP:  "10.0.0.1",
		SignupAt:  signup,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"is_kyc_update_required":false}`, string(resp))
}

func TestClient_ListEvents(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/wallet/merchant/v2/events", r.URL.Path)
		_, _ = w.Write([]byte(`{"events":[
			{"event_id":"e-1","name":"payment_request_submitted","payment":{"id":"p-1","status":"pending"}},
			{"event_id":"e-2","name":"payment_simplexcc_approved","payment":{"id":"p-1","status":"approved"}}
		]}`))
	})

	events, err := client.ListEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.PaymentEvent{EventID: "e-2", Name: domain.PaymentStatusApproved, PaymentID: "p-1"}, events[1])
	assert.False(t, events[0].IsTerminal())
	assert.True(t, events[1].IsTerminal())
}

func TestClient_DeleteEvent(t *testing.T) {
	var deleted string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		deleted = r.URL.Path
		_, _ = w.Write([]byte(`{"status":"OK"}`))
	})

	require.NoError(t, client.DeleteEvent(context.Background(), "e-1"))
	assert.Equal(t, "/wallet/merchant/v2/events/e-1", deleted)
}

func TestClient_DeleteEvent_Error(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	assert.Error(t, client.DeleteEvent(context.Background(), "e-1"))
}
