package domain

import (
	"context"
	"net/http"

	"github.com/bwmarrin/snowflake"
)

type InitiateRequest struct {
	SchoolID    snowflake.ID
	MSISDN      string
	PackageCode string
	// Credits and Amount are used directly when no package code is given.
	Credits int64
	Amount  int64
}

type Service interface {
	Initiate(ctx context.Context, req InitiateRequest) (*PaymentRequest, error)
	HandleCallback(ctx context.Context, provider string, payload []byte, headers http.Header) error
	// ConfirmPending polls the aggregator for every PENDING request and
	// applies terminal transitions. It returns how many requests reached
	// a terminal status.
	ConfirmPending(ctx context.Context) (int, error)
	GetByReference(ctx context.Context, reference string) (*PaymentRequest, error)
}
