package payment

import (
	"context"
	"errors"
)

// Charge statuses reported by the provider.
const (
	StatusSuccessful = "successful"
	StatusFailed     = "failed"
	StatusPending    = "pending"
)

const EventChargeComplete = "charge.complete"

var ErrNotConfigured = errors.New("payment provider is not configured")

type ChargeRequest struct {
	Reference string
	Amount    int64 // minor units
	Currency  string
	CardToken string
	// SourceType is used when no card token is given, e.g. "promptpay".
	SourceType  string
	ReturnURI   string
	Description string
}

type Charge struct {
	ID           string
	Status       string
	Amount       int64
	Currency     string
	AuthorizeURI string
	FailureCode  string
}

type Event struct {
	ID     string
	Key    string
	Charge *Charge
}

// Unconfigured is used when no provider credentials are set. Every call
// fails with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) CreateCharge(context.Context, ChargeRequest) (*Charge, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) RetrieveEvent(context.Context, string) (*Event, error) {
	return nil, ErrNotConfigured
}
