package momo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	paymentdomain "github.com/mginvestments/marketplace/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, baseURL string) *Adapter {
	t.Helper()
	adapter, err := NewFactory().NewAdapter(paymentdomain.AdapterConfig{
		Config: map[string]any{
			"base_url":         baseURL,
			"subscription_key": "sub-key",
			"api_user":         "api-user",
			"api_key":          "api-key",
			"target_env":       "sandbox",
			"callback_secret":  "hook-secret",
		},
	})
	require.NoError(t, err)
	return adapter.(*Adapter)
}

func TestNewAdapter_RequiresCredentials(t *testing.T) {
	_, err := NewFactory().NewAdapter(paymentdomain.AdapterConfig{
		Config: map[string]any{"base_url": "https://sandbox.momodeveloper.mtn.com"},
	})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidConfig)
}

func TestRequestToPay_SendsExpectedRequest(t *testing.T) {
	tokenCalls := 0
	var gotBody requestToPayBody
	var gotRef string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/collection/token/":
			tokenCalls++
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "api-user", user)
			assert.Equal(t, "api-key", pass)
			json.NewEncoder(w).Encode(tokenResponse{AccessToken: "tok", ExpiresIn: 3600})
		case "/collection/v1_0/requesttopay":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			assert.Equal(t, "sandbox", r.Header.Get("X-Target-Environment"))
			assert.Equal(t, "sub-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
			gotRef = r.Header.Get("X-Reference-Id")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusAccepted)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	adapter := newTestAdapter(t, srv.URL)
	err := adapter.RequestToPay(context.Background(), paymentdomain.RequestToPayInput{
		ProviderRef: "prov-ref-1",
		Reference:   "MERCH-REF-1",
		MSISDN:      "+256700123456",
		Amount:      25_000,
		Currency:    "UGX",
		Message:     "5 contact credits",
	})
	require.NoError(t, err)

	assert.Equal(t, "prov-ref-1", gotRef)
	assert.Equal(t, "25000", gotBody.Amount)
	assert.Equal(t, "UGX", gotBody.Currency)
	assert.Equal(t, "MERCH-REF-1", gotBody.ExternalID)
	assert.Equal(t, "MSISDN", gotBody.Payer.PartyIDType)
	assert.Equal(t, "256700123456", gotBody.Payer.PartyID)

	// The second call reuses the cached token.
	err = adapter.RequestToPay(context.Background(), paymentdomain.RequestToPayInput{
		ProviderRef: "prov-ref-2",
		Reference:   "MERCH-REF-2",
		MSISDN:      "256700123456",
		Amount:      1000,
		Currency:    "UGX",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tokenCalls)
}

func TestRequestToPay_RejectsBadInput(t *testing.T) {
	adapter := newTestAdapter(t, "http://127.0.0.1:1")

	err := adapter.RequestToPay(context.Background(), paymentdomain.RequestToPayInput{
		MSISDN: "not-a-number",
		Amount: 1000,
	})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidMSISDN)

	err = adapter.RequestToPay(context.Background(), paymentdomain.RequestToPayInput{
		MSISDN: "256700123456",
		Amount: 0,
	})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidAmount)
}

func TestGetStatus_MapsStates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/collection/token/":
			json.NewEncoder(w).Encode(tokenResponse{AccessToken: "tok", ExpiresIn: 3600})
		case "/collection/v1_0/requesttopay/ok-ref":
			json.NewEncoder(w).Encode(statusResponse{Status: "SUCCESSFUL"})
		case "/collection/v1_0/requesttopay/missing-ref":
			w.WriteHeader(http.StatusNotFound)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	adapter := newTestAdapter(t, srv.URL)

	status, err := adapter.GetStatus(context.Background(), "ok-ref")
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.StatusSuccessful, status)

	_, err = adapter.GetStatus(context.Background(), "missing-ref")
	assert.ErrorIs(t, err, paymentdomain.ErrRequestNotFound)
}

func TestVerify_CallbackSecret(t *testing.T) {
	adapter := newTestAdapter(t, "http://127.0.0.1:1")

	headers := http.Header{}
	headers.Set("X-Callback-Secret", "hook-secret")
	assert.NoError(t, adapter.Verify(context.Background(), nil, headers))

	headers.Set("X-Callback-Secret", "wrong")
	assert.ErrorIs(t, adapter.Verify(context.Background(), nil, headers), paymentdomain.ErrInvalidSignature)

	assert.ErrorIs(t, adapter.Verify(context.Background(), nil, http.Header{}), paymentdomain.ErrInvalidSignature)
}

func TestParse_CallbackPayload(t *testing.T) {
	adapter := newTestAdapter(t, "http://127.0.0.1:1")
	ctx := context.Background()

	event, err := adapter.Parse(ctx, []byte(`{
		"referenceId": "prov-ref-1",
		"externalId": "MERCH-REF-1",
		"status": "SUCCESSFUL",
		"amount": "25000",
		"currency": "UGX"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "momo", event.Provider)
	assert.Equal(t, "prov-ref-1", event.ProviderRef)
	assert.Equal(t, "MERCH-REF-1", event.Reference)
	assert.Equal(t, paymentdomain.StatusSuccessful, event.Status)
	assert.Equal(t, int64(25000), event.Amount)

	_, err = adapter.Parse(ctx, []byte(`{"referenceId": "x", "status": "PENDING"}`))
	assert.ErrorIs(t, err, paymentdomain.ErrEventIgnored)

	_, err = adapter.Parse(ctx, []byte(`{"status": "SUCCESSFUL"}`))
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidEvent)

	_, err = adapter.Parse(ctx, []byte(`not json`))
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidPayload)
}

func TestValidMSISDN(t *testing.T) {
	assert.True(t, ValidMSISDN("+256700123456"))
	assert.True(t, ValidMSISDN("256700123456"))
	assert.False(t, ValidMSISDN("0700"))
	assert.False(t, ValidMSISDN("abc256700123"))
	assert.False(t, ValidMSISDN(""))
}
