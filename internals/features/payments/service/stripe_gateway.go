package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"fcehub_backend/internals/features/applications/lifecycle"
	"fcehub_backend/internals/features/applications/model"
)

const (
	stripeSessionCompleted    = "checkout.session.completed"
	stripeSessionAsyncSuccess = "checkout.session.async_payment_succeeded"
	stripeSessionExpired      = "checkout.session.expired"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
}

type StripeGateway struct {
	cfg StripeConfig

	// newSession is swapped in tests; production calls the Checkout Sessions API.
	newSession func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

func NewStripeGateway(cfg StripeConfig) *StripeGateway {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	g := &StripeGateway{cfg: cfg}
	if cfg.SecretKey != "" {
		api := client.New(cfg.SecretKey, nil)
		g.newSession = api.CheckoutSessions.New
	}
	return g
}

func (g *StripeGateway) Provider() model.PaymentMethod { return model.PaymentMethodStripe }

/* =======================================================================
   Checkout
======================================================================= */

func (g *StripeGateway) CreateCheckout(ctx context.Context, app model.ApplicationModel) (*Checkout, error) {
	amount, err := dueAmount(app)
	if err != nil {
		return nil, err
	}
	if g.newSession == nil {
		return nil, errors.New("stripe is not configured")
	}

	ref := app.ApplicationID.String()
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(ref),
		SuccessURL:        stripe.String(g.cfg.SuccessURL),
		CancelURL:         stripe.String(g.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(g.cfg.Currency),
				UnitAmount: stripe.Int64(amount.Shift(2).Round(0).IntPart()),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(checkoutTitle(app)),
				},
			},
		}},
	}
	if app.ApplicationEmail != "" {
		params.CustomerEmail = stripe.String(app.ApplicationEmail)
	}
	params.AddMetadata("application_id", ref)
	params.Context = ctx

	s, err := g.newSession(params)
	if err != nil {
		log.Printf("[STRIPE] create session application=%s: %v", ref, err)
		return nil, fmt.Errorf("stripe checkout: %w", err)
	}
	return &Checkout{
		Provider:    model.PaymentMethodStripe,
		SessionID:   s.ID,
		RedirectURL: s.URL,
	}, nil
}

/* =======================================================================
   Webhook
======================================================================= */

func (g *StripeGateway) VerifyAndParse(payload []byte, signature string) (*lifecycle.PaymentEvent, error) {
	if signature == "" || g.cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("%w: missing Stripe-Signature", lifecycle.ErrUnauthorized)
	}

	ev, err := webhook.ConstructEventWithOptions(payload, signature, g.cfg.WebhookSecret,
		webhook.ConstructEventOptions{
			Tolerance:                webhook.DefaultTolerance,
			IgnoreAPIVersionMismatch: true,
		})
	if err != nil {
		switch {
		case errors.Is(err, webhook.ErrNotSigned),
			errors.Is(err, webhook.ErrInvalidHeader),
			errors.Is(err, webhook.ErrNoValidSignature),
			errors.Is(err, webhook.ErrTooOld):
			return nil, fmt.Errorf("%w: %v", lifecycle.ErrUnauthorized, err)
		}
		return nil, fmt.Errorf("%w: %v", lifecycle.ErrMalformedEvent, err)
	}

	out := &lifecycle.PaymentEvent{
		Kind:      lifecycle.EventOther,
		Provider:  model.PaymentMethodStripe,
		EventType: string(ev.Type),
		EventID:   ev.ID,
	}

	switch string(ev.Type) {
	case stripeSessionCompleted, stripeSessionAsyncSuccess, stripeSessionExpired:
	default:
		return out, nil
	}

	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return nil, fmt.Errorf("%w: %s without data.object", lifecycle.ErrMalformedEvent, ev.Type)
	}
	var s stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("%w: checkout session: %v", lifecycle.ErrMalformedEvent, err)
	}

	out.ApplicationID = parseApplicationRef(s.ClientReferenceID)
	if s.PaymentIntent != nil && s.PaymentIntent.ID != "" {
		out.Reference = s.PaymentIntent.ID
	} else {
		out.Reference = s.ID
	}

	switch string(ev.Type) {
	case stripeSessionExpired:
		out.Kind = lifecycle.EventCheckoutExpired
	case stripeSessionAsyncSuccess:
		out.Kind = lifecycle.EventCheckoutCompleted
	case stripeSessionCompleted:
		// delayed methods (bank debits) complete the session before the money moves
		if s.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
			return out, nil
		}
		out.Kind = lifecycle.EventCheckoutCompleted
	}
	return out, nil
}
