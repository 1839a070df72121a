// Package momo implements the MTN Mobile Money collection API adapter
// (sandbox and production hosts share the same surface).
package momo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	paymentdomain "github.com/mginvestments/marketplace/internal/payment/domain"
)

const (
	tokenPath        = "/collection/token/"
	requestToPayPath = "/collection/v1_0/requesttopay"

	// Sandbox tokens live for an hour; refresh early.
	tokenSlack = 60 * time.Second
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() string {
	return "momo"
}

func (f *Factory) NewAdapter(cfg paymentdomain.AdapterConfig) (paymentdomain.PaymentAdapter, error) {
	baseURL, _ := readString(cfg.Config, "base_url")
	subKey, _ := readString(cfg.Config, "subscription_key")
	apiUser, _ := readString(cfg.Config, "api_user")
	apiKey, _ := readString(cfg.Config, "api_key")
	targetEnv, _ := readString(cfg.Config, "target_env")
	callbackSecret, _ := readString(cfg.Config, "callback_secret")

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" || strings.TrimSpace(subKey) == "" {
		return nil, paymentdomain.ErrInvalidConfig
	}
	if strings.TrimSpace(apiUser) == "" || strings.TrimSpace(apiKey) == "" {
		return nil, paymentdomain.ErrInvalidConfig
	}
	if targetEnv == "" {
		targetEnv = "sandbox"
	}

	return &Adapter{
		baseURL:        baseURL,
		subKey:         subKey,
		apiUser:        apiUser,
		apiKey:         apiKey,
		targetEnv:      targetEnv,
		callbackSecret: callbackSecret,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type Adapter struct {
	baseURL        string
	subKey         string
	apiUser        string
	apiKey         string
	targetEnv      string
	callbackSecret string
	httpClient     *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type requestToPayBody struct {
	Amount       string     `json:"amount"`
	Currency     string     `json:"currency"`
	ExternalID   string     `json:"externalId"`
	Payer        payerParty `json:"payer"`
	PayerMessage string     `json:"payerMessage"`
	PayeeNote    string     `json:"payeeNote"`
}

type payerParty struct {
	PartyIDType string `json:"partyIdType"`
	PartyID     string `json:"partyId"`
}

type statusResponse struct {
	Status                 string `json:"status"`
	FinancialTransactionID string `json:"financialTransactionId"`
	Reason                 any    `json:"reason"`
}

type callbackPayload struct {
	ReferenceID string `json:"referenceId"`
	ExternalID  string `json:"externalId"`
	Status      string `json:"status"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
}

func (a *Adapter) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.tokenExpiry) {
		return a.accessToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+tokenPath, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(a.apiUser, a.apiKey)
	req.Header.Set("Ocp-Apim-Subscription-Key", a.subKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("momo token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("momo token request: unexpected status %d", resp.StatusCode)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("momo token decode: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("momo token decode: empty access token")
	}

	a.accessToken = token.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenSlack)
	return a.accessToken, nil
}

func (a *Adapter) RequestToPay(ctx context.Context, input paymentdomain.RequestToPayInput) error {
	if !ValidMSISDN(input.MSISDN) {
		return paymentdomain.ErrInvalidMSISDN
	}
	if input.Amount <= 0 {
		return paymentdomain.ErrInvalidAmount
	}

	token, err := a.token(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(requestToPayBody{
		Amount:     strconv.FormatInt(input.Amount, 10),
		Currency:   input.Currency,
		ExternalID: input.Reference,
		Payer: payerParty{
			PartyIDType: "MSISDN",
			PartyID:     strings.TrimPrefix(input.MSISDN, "+"),
		},
		PayerMessage: input.Message,
		PayeeNote:    input.Message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+requestToPayPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Reference-Id", input.ProviderRef)
	req.Header.Set("X-Target-Environment", a.targetEnv)
	req.Header.Set("Ocp-Apim-Subscription-Key", a.subKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("momo requesttopay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("momo requesttopay: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

func (a *Adapter) GetStatus(ctx context.Context, providerRef string) (paymentdomain.RequestStatus, error) {
	token, err := a.token(ctx)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+requestToPayPath+"/"+providerRef, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Target-Environment", a.targetEnv)
	req.Header.Set("Ocp-Apim-Subscription-Key", a.subKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("momo status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", paymentdomain.ErrRequestNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("momo status: unexpected status %d", resp.StatusCode)
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return "", fmt.Errorf("momo status decode: %w", err)
	}
	return parseStatus(status.Status)
}

// Verify checks the shared callback secret. The sandbox does not sign
// callbacks, so a static secret header is the strongest check available.
func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	if a.callbackSecret == "" {
		return paymentdomain.ErrInvalidSignature
	}
	got := strings.TrimSpace(headers.Get("X-Callback-Secret"))
	if got == "" || !hmac.Equal([]byte(got), []byte(a.callbackSecret)) {
		return paymentdomain.ErrInvalidSignature
	}
	return nil
}

func (a *Adapter) Parse(ctx context.Context, payload []byte) (*paymentdomain.PaymentEvent, error) {
	var cb callbackPayload
	if err := json.Unmarshal(payload, &cb); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(cb.ReferenceID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	status, err := parseStatus(cb.Status)
	if err != nil {
		return nil, err
	}
	if status == paymentdomain.StatusPending {
		return nil, paymentdomain.ErrEventIgnored
	}

	amount, _ := strconv.ParseInt(strings.TrimSpace(cb.Amount), 10, 64)
	return &paymentdomain.PaymentEvent{
		Provider:    "momo",
		ProviderRef: strings.TrimSpace(cb.ReferenceID),
		Reference:   strings.TrimSpace(cb.ExternalID),
		Status:      status,
		Amount:      amount,
		Currency:    strings.TrimSpace(cb.Currency),
		OccurredAt:  time.Now().UTC(),
		RawPayload:  payload,
	}, nil
}

func parseStatus(raw string) (paymentdomain.RequestStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(paymentdomain.StatusPending):
		return paymentdomain.StatusPending, nil
	case string(paymentdomain.StatusSuccessful):
		return paymentdomain.StatusSuccessful, nil
	case string(paymentdomain.StatusFailed):
		return paymentdomain.StatusFailed, nil
	default:
		return "", paymentdomain.ErrInvalidEvent
	}
}

// ValidMSISDN accepts E.164-like numbers: optional leading +, then 9 to
// 15 digits.
func ValidMSISDN(msisdn string) bool {
	msisdn = strings.TrimSpace(msisdn)
	msisdn = strings.TrimPrefix(msisdn, "+")
	if len(msisdn) < 9 || len(msisdn) > 15 {
		return false
	}
	for _, r := range msisdn {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func readString(cfg map[string]any, key string) (string, bool) {
	if cfg == nil {
		return "", false
	}
	v, ok := cfg[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
