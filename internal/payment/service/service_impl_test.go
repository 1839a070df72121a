package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/mginvestments/marketplace/internal/clock"
	"github.com/mginvestments/marketplace/internal/config"
	creditdomain "github.com/mginvestments/marketplace/internal/credit/domain"
	creditrepository "github.com/mginvestments/marketplace/internal/credit/repository"
	creditservice "github.com/mginvestments/marketplace/internal/credit/service"
	"github.com/mginvestments/marketplace/internal/payment/adapters"
	"github.com/mginvestments/marketplace/internal/payment/adapters/momo"
	paymentdomain "github.com/mginvestments/marketplace/internal/payment/domain"
	subscriptiondomain "github.com/mginvestments/marketplace/internal/subscription/domain"
	subscriptionservice "github.com/mginvestments/marketplace/internal/subscription/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testCallbackSecret = "hook-secret"

type paymentFixture struct {
	svc       paymentdomain.Service
	creditSvc creditdomain.Service
	conn      *gorm.DB
	node      *snowflake.Node
	clk       *clock.FakeClock
	params    Params
}

// newMomoStub fakes the collection API: every request-to-pay is accepted
// and status polls answer from the statuses map.
func newMomoStub(t *testing.T, statuses map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/collection/token/":
			json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
		case r.URL.Path == "/collection/v1_0/requesttopay" && r.Method == http.MethodPost:
			w.WriteHeader(http.StatusAccepted)
		case r.Method == http.MethodGet:
			ref := r.URL.Path[len("/collection/v1_0/requesttopay/"):]
			status, ok := statuses[ref]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"status": status})
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
}

func newPaymentFixture(t *testing.T, baseURL string) *paymentFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&creditdomain.CreditBatch{},
		&creditdomain.ContactRecord{},
		&creditdomain.CreditPackage{},
		&subscriptiondomain.SchoolSubscription{},
		&paymentdomain.PaymentRequest{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	subSvc := subscriptionservice.NewService(subscriptionservice.Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
	})
	creditSvc := creditservice.NewService(creditservice.Params{
		DB:     conn,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clk,
		Repo:   creditrepository.Provide(),
		SubSvc: subSvc,
	})

	cfg := config.Config{
		Momo: config.MomoConfig{
			BaseURL:         baseURL,
			SubscriptionKey: "sub-key",
			APIUser:         "api-user",
			APIKey:          "api-key",
			TargetEnv:       "sandbox",
			Currency:        "UGX",
			CallbackSecret:  testCallbackSecret,
		},
	}

	params := Params{
		DB:        conn,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     clk,
		Cfg:       cfg,
		Adapters:  adapters.NewRegistry(momo.NewFactory()),
		CreditSvc: creditSvc,
	}
	svc := NewService(params)
	return &paymentFixture{svc: svc, creditSvc: creditSvc, conn: conn, node: node, clk: clk, params: params}
}

func callbackPayload(t *testing.T, providerRef, reference, status string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"referenceId": providerRef,
		"externalId":  reference,
		"status":      status,
		"amount":      "25000",
		"currency":    "UGX",
	})
	require.NoError(t, err)
	return payload
}

func signedHeaders() http.Header {
	headers := http.Header{}
	headers.Set("X-Callback-Secret", testCallbackSecret)
	return headers
}

func TestInitiate_CreatesPendingRequest(t *testing.T) {
	srv := newMomoStub(t, nil)
	defer srv.Close()
	f := newPaymentFixture(t, srv.URL)

	ctx := context.Background()
	schoolID := f.node.Generate()

	request, err := f.svc.Initiate(ctx, paymentdomain.InitiateRequest{
		SchoolID: schoolID,
		MSISDN:   "+256700123456",
		Credits:  5,
		Amount:   25_000,
	})
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.StatusPending, request.Status)
	assert.NotEmpty(t, request.Reference)
	assert.NotEmpty(t, request.ProviderRef)
	assert.NotEqual(t, request.Reference, request.ProviderRef)

	got, err := f.svc.GetByReference(ctx, request.Reference)
	require.NoError(t, err)
	assert.Equal(t, request.ID, got.ID)

	// Nothing is granted until the aggregator confirms.
	balance, err := f.creditSvc.GetBalance(ctx, schoolID)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestInitiate_ResolvesPackageCode(t *testing.T) {
	srv := newMomoStub(t, nil)
	defer srv.Close()
	f := newPaymentFixture(t, srv.URL)

	require.NoError(t, f.conn.Create(&creditdomain.CreditPackage{
		ID:       f.node.Generate(),
		Code:     "starter",
		Name:     "Starter",
		Credits:  5,
		Price:    25_000,
		Currency: "UGX",
		Active:   true,
	}).Error)

	request, err := f.svc.Initiate(context.Background(), paymentdomain.InitiateRequest{
		SchoolID:    f.node.Generate(),
		MSISDN:      "+256700123456",
		PackageCode: "starter",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), request.Credits)
	assert.Equal(t, int64(25_000), request.Amount)
	require.NotNil(t, request.PackageCode)
	assert.Equal(t, "starter", *request.PackageCode)
}

func TestInitiate_RejectsUnknownPackage(t *testing.T) {
	srv := newMomoStub(t, nil)
	defer srv.Close()
	f := newPaymentFixture(t, srv.URL)

	_, err := f.svc.Initiate(context.Background(), paymentdomain.InitiateRequest{
		SchoolID:    f.node.Generate(),
		MSISDN:      "+256700123456",
		PackageCode: "no-such-package",
	})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidPayload)
}

func TestHandleCallback_GrantsCreditsOnce(t *testing.T) {
	srv := newMomoStub(t, nil)
	defer srv.Close()
	f := newPaymentFixture(t, srv.URL)

	ctx := context.Background()
	schoolID := f.node.Generate()

	request, err := f.svc.Initiate(ctx, paymentdomain.InitiateRequest{
		SchoolID: schoolID,
		MSISDN:   "+256700123456",
		Credits:  5,
		Amount:   25_000,
	})
	require.NoError(t, err)

	payload := callbackPayload(t, request.ProviderRef, request.Reference, "SUCCESSFUL")
	require.NoError(t, f.svc.HandleCallback(ctx, "momo", payload, signedHeaders()))

	balance, err := f.creditSvc.GetBalance(ctx, schoolID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance)

	got, err := f.svc.GetByReference(ctx, request.Reference)
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.StatusSuccessful, got.Status)
	require.NotNil(t, got.CompletedAt)

	// Replays are absorbed without a second grant.
	require.NoError(t, f.svc.HandleCallback(ctx, "momo", payload, signedHeaders()))

	balance, err = f.creditSvc.GetBalance(ctx, schoolID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance)
}

// flakyGrantCreditService fails the first grant attempts, then delegates.
type flakyGrantCreditService struct {
	creditdomain.Service
	failures int
}

func (f *flakyGrantCreditService) PurchaseCreditsTx(ctx context.Context, tx *gorm.DB, req creditdomain.PurchaseCreditsRequest) (*creditdomain.CreditBatch, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("insert credit batch: connection reset")
	}
	return f.Service.PurchaseCreditsTx(ctx, tx, req)
}

func TestHandleCallback_TransientGrantFailureLeavesPending(t *testing.T) {
	statuses := map[string]string{}
	srv := newMomoStub(t, statuses)
	defer srv.Close()
	f := newPaymentFixture(t, srv.URL)

	params := f.params
	params.CreditSvc = &flakyGrantCreditService{Service: f.creditSvc, failures: 1}
	svc := NewService(params)

	ctx := context.Background()
	schoolID := f.node.Generate()

	request, err := svc.Initiate(ctx, paymentdomain.InitiateRequest{
		SchoolID: schoolID,
		MSISDN:   "+256700123456",
		Credits:  5,
		Amount:   25_000,
	})
	require.NoError(t, err)

	payload := callbackPayload(t, request.ProviderRef, request.Reference, "SUCCESSFUL")
	require.Error(t, svc.HandleCallback(ctx, "momo", payload, signedHeaders()))

	// The failed grant rolled the status flip back with it.
	got, err := svc.GetByReference(ctx, request.Reference)
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.StatusPending, got.Status)

	balance, err := f.creditSvc.GetBalance(ctx, schoolID)
	require.NoError(t, err)
	assert.Zero(t, balance)

	// The poller picks the request up again and completes the grant.
	statuses[request.ProviderRef] = "SUCCESSFUL"
	confirmed, err := svc.ConfirmPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, confirmed)

	got, err = svc.GetByReference(ctx, request.Reference)
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.StatusSuccessful, got.Status)

	balance, err = f.creditSvc.GetBalance(ctx, schoolID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance)
}

func TestHandleCallback_RejectsBadSecret(t *testing.T) {
	srv := newMomoStub(t, nil)
	defer srv.Close()
	f := newPaymentFixture(t, srv.URL)

	ctx := context.Background()
	request, err := f.svc.Initiate(ctx, paymentdomain.InitiateRequest{
		SchoolID: f.node.Generate(),
		MSISDN:   "+256700123456",
		Credits:  5,
		Amount:   25_000,
	})
	require.NoError(t, err)

	payload := callbackPayload(t, request.ProviderRef, request.Reference, "SUCCESSFUL")
	err = f.svc.HandleCallback(ctx, "momo", payload, http.Header{})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidSignature)

	got, err := f.svc.GetByReference(ctx, request.Reference)
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.StatusPending, got.Status)
}

func TestHandleCallback_FailedGrantsNothing(t *testing.T) {
	srv := newMomoStub(t, nil)
	defer srv.Close()
	f := newPaymentFixture(t, srv.URL)

	ctx := context.Background()
	schoolID := f.node.Generate()

	request, err := f.svc.Initiate(ctx, paymentdomain.InitiateRequest{
		SchoolID: schoolID,
		MSISDN:   "+256700123456",
		Credits:  5,
		Amount:   25_000,
	})
	require.NoError(t, err)

	payload := callbackPayload(t, request.ProviderRef, request.Reference, "FAILED")
	require.NoError(t, f.svc.HandleCallback(ctx, "momo", payload, signedHeaders()))

	got, err := f.svc.GetByReference(ctx, request.Reference)
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.StatusFailed, got.Status)

	balance, err := f.creditSvc.GetBalance(ctx, schoolID)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestHandleCallback_UnknownProvider(t *testing.T) {
	srv := newMomoStub(t, nil)
	defer srv.Close()
	f := newPaymentFixture(t, srv.URL)

	err := f.svc.HandleCallback(context.Background(), "paypal", []byte(`{}`), signedHeaders())
	assert.ErrorIs(t, err, paymentdomain.ErrProviderNotFound)
}

func TestConfirmPending_PollsTerminalStates(t *testing.T) {
	statuses := map[string]string{}
	srv := newMomoStub(t, statuses)
	defer srv.Close()
	f := newPaymentFixture(t, srv.URL)

	ctx := context.Background()
	schoolID := f.node.Generate()

	succeeded, err := f.svc.Initiate(ctx, paymentdomain.InitiateRequest{
		SchoolID: schoolID,
		MSISDN:   "+256700123456",
		Credits:  5,
		Amount:   25_000,
	})
	require.NoError(t, err)

	stillPending, err := f.svc.Initiate(ctx, paymentdomain.InitiateRequest{
		SchoolID: schoolID,
		MSISDN:   "+256700123456",
		Credits:  2,
		Amount:   10_000,
	})
	require.NoError(t, err)

	statuses[succeeded.ProviderRef] = "SUCCESSFUL"
	statuses[stillPending.ProviderRef] = "PENDING"

	confirmed, err := f.svc.ConfirmPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, confirmed)

	balance, err := f.creditSvc.GetBalance(ctx, schoolID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance)

	got, err := f.svc.GetByReference(ctx, stillPending.Reference)
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.StatusPending, got.Status)
}

func TestConfirmPending_UnknownRequestFails(t *testing.T) {
	srv := newMomoStub(t, map[string]string{})
	defer srv.Close()
	f := newPaymentFixture(t, srv.URL)

	ctx := context.Background()
	request, err := f.svc.Initiate(ctx, paymentdomain.InitiateRequest{
		SchoolID: f.node.Generate(),
		MSISDN:   "+256700123456",
		Credits:  5,
		Amount:   25_000,
	})
	require.NoError(t, err)

	// The aggregator has no record of it; the poll marks it FAILED.
	confirmed, err := f.svc.ConfirmPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, confirmed)

	got, err := f.svc.GetByReference(ctx, request.Reference)
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.StatusFailed, got.Status)
}
