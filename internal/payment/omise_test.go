package payment

import (
	"context"
	"testing"
	"time"

	"github.com/omise/omise-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCharge(t *testing.T) {
	code := "insufficient_fund"
	ch := &omise.Charge{
		Amount:       50000,
		Currency:     "thb",
		AuthorizeURI: "https://pay.example/authorize",
		FailureCode:  &code,
	}
	ch.ID = "chrg_test_1"
	ch.Status = "failed"

	out := toCharge(ch)
	assert.Equal(t, "chrg_test_1", out.ID)
	assert.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, int64(50000), out.Amount)
	assert.Equal(t, "insufficient_fund", out.FailureCode)
}

func TestChargeDescription(t *testing.T) {
	assert.Equal(t, "Calculator (order ref-1)", chargeDescription(ChargeRequest{Description: "Calculator", Reference: "ref-1"}))
	assert.Equal(t, "order ref-1", chargeDescription(ChargeRequest{Reference: "ref-1"}))
	assert.Equal(t, "Calculator", chargeDescription(ChargeRequest{Description: "Calculator"}))
}

func TestOmiseProviderCallTimeout(t *testing.T) {
	p := &OmiseProvider{timeout: 20 * time.Millisecond}

	release := make(chan struct{})
	defer close(release)

	err := p.call(context.Background(), func() error {
		<-release
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOmiseProviderValidatesRequest(t *testing.T) {
	p := &OmiseProvider{timeout: time.Second}

	_, err := p.CreateCharge(context.Background(), ChargeRequest{Amount: 100, Currency: "thb"})
	require.Error(t, err)

	_, err = p.CreateCharge(context.Background(), ChargeRequest{Amount: 0, Currency: "thb", CardToken: "tokn_1"})
	require.Error(t, err)
}

func TestUnconfigured(t *testing.T) {
	_, err := Unconfigured{}.CreateCharge(context.Background(), ChargeRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = Unconfigured{}.RetrieveEvent(context.Background(), "evnt_1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
