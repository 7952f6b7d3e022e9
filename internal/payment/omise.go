package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// OmiseProvider creates charges and verifies webhook events against Omise.
type OmiseProvider struct {
	client  *omise.Client
	timeout time.Duration
}

func NewOmiseProvider(publicKey, secretKey string, timeout time.Duration) (*OmiseProvider, error) {
	c, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, err
	}
	return &OmiseProvider{client: c, timeout: timeout}, nil
}

// call runs a blocking SDK request and gives up when ctx expires or the
// provider timeout elapses, whichever comes first.
func (p *OmiseProvider) call(ctx context.Context, fn func() error) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func (p *OmiseProvider) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	if req.Amount <= 0 || req.Currency == "" {
		return nil, errors.New("invalid charge amount or currency")
	}
	if req.CardToken == "" && req.SourceType == "" {
		return nil, errors.New("either card token or source type is required")
	}

	op := &operations.CreateCharge{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Card:        req.CardToken,
		ReturnURI:   req.ReturnURI,
		Description: chargeDescription(req),
	}

	if req.CardToken == "" {
		src := &omise.Source{}
		err := p.call(ctx, func() error {
			return p.client.Do(src, &operations.CreateSource{
				Type:     req.SourceType,
				Amount:   req.Amount,
				Currency: req.Currency,
			})
		})
		if err != nil {
			return nil, fmt.Errorf("create source: %w", err)
		}
		op.Source = src.ID
	}

	ch := &omise.Charge{}
	if err := p.call(ctx, func() error { return p.client.Do(ch, op) }); err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}
	return toCharge(ch), nil
}

// RetrieveEvent fetches the event from Omise so the webhook body itself is
// never trusted.
func (p *OmiseProvider) RetrieveEvent(ctx context.Context, eventID string) (*Event, error) {
	ev := &omise.Event{}
	err := p.call(ctx, func() error {
		return p.client.Do(ev, &operations.RetrieveEvent{EventID: eventID})
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve event: %w", err)
	}

	out := &Event{ID: ev.ID, Key: ev.Key}
	if ev.Key != EventChargeComplete {
		return out, nil
	}

	// ev.Data is decoded as a generic map; round trip it into a Charge.
	raw, err := json.Marshal(ev.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal event data: %w", err)
	}
	var ch omise.Charge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return nil, fmt.Errorf("unmarshal charge: %w", err)
	}
	out.Charge = toCharge(&ch)
	return out, nil
}

func toCharge(ch *omise.Charge) *Charge {
	out := &Charge{
		ID:           ch.ID,
		Status:       string(ch.Status),
		Amount:       ch.Amount,
		Currency:     ch.Currency,
		AuthorizeURI: ch.AuthorizeURI,
	}
	if ch.FailureCode != nil {
		out.FailureCode = *ch.FailureCode
	}
	return out
}

// chargeDescription carries the order reference into the provider
// dashboard. Orders are matched back by charge id, never by this text.
func chargeDescription(req ChargeRequest) string {
	if req.Reference == "" {
		return req.Description
	}
	if req.Description == "" {
		return "order " + req.Reference
	}
	return req.Description + " (order " + req.Reference + ")"
}
