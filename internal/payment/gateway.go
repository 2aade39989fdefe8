package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"
)

// ErrChargeDeclined is returned when the processor refuses the charge.
var ErrChargeDeclined = errors.New("charge declined")

// ChargeResult reports the processor's view of a settled charge.
type ChargeResult struct {
	ExternalID string
	Status     string
}

// Gateway is the synchronous charge collaborator. Charges either settle or
// fail within the call; there is no async confirmation flow.
type Gateway interface {
	Charge(ctx context.Context, amountCents int64, method, description string) (*ChargeResult, error)
}

type stripeGateway struct {
	currency string
}

// NewStripeGateway configures the stripe client once and returns a Gateway
// charging in the given currency.
func NewStripeGateway(secretKey, currency string) Gateway {
	stripe.Key = secretKey
	return &stripeGateway{currency: strings.ToLower(currency)}
}

func (g *stripeGateway) Charge(ctx context.Context, amountCents int64, method, description string) (*ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountCents),
		Currency:           stripe.String(g.currency),
		PaymentMethod:      stripe.String(method),
		ConfirmationMethod: stripe.String(string(stripe.PaymentIntentConfirmationMethodAutomatic)),
		Confirm:            stripe.Bool(true),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Description:        stripe.String(description),
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, ErrChargeDeclined
	}

	return &ChargeResult{
		ExternalID: pi.ID,
		Status:     string(pi.Status),
	}, nil
}
