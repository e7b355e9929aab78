package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fcehub_backend/internals/configs"
	"fcehub_backend/internals/features/applications/lifecycle"
	"fcehub_backend/internals/features/applications/model"
)

// Checkout is what the customer is redirected to after starting a payment.
type Checkout struct {
	Provider    model.PaymentMethod `json:"provider"`
	SessionID   string              `json:"session_id"`
	RedirectURL string              `json:"redirect_url"`
	Token       string              `json:"token,omitempty"`
}

// Gateway is a hosted-checkout provider that also verifies its own callbacks.
type Gateway interface {
	lifecycle.WebhookVerifier
	CreateCheckout(ctx context.Context, app model.ApplicationModel) (*Checkout, error)
}

// NewGatewayFromEnv builds the provider selected by PAYMENT_PROVIDER.
func NewGatewayFromEnv() (Gateway, error) {
	switch configs.PaymentProvider {
	case string(model.PaymentMethodStripe):
		return NewStripeGateway(StripeConfig{
			SecretKey:     configs.StripeSecretKey,
			WebhookSecret: configs.StripeWebhookSecret,
			Currency:      configs.PaymentCurrency,
			SuccessURL:    configs.CheckoutSuccessURL,
			CancelURL:     configs.CheckoutCancelURL,
		}), nil
	case string(model.PaymentMethodMidtrans):
		return NewMidtransGateway(configs.MidtransServerKey, configs.MidtransEnv == "production"), nil
	}
	return nil, fmt.Errorf("unknown PAYMENT_PROVIDER %q", configs.PaymentProvider)
}

// Verifiers returns one verifier per provider that has credentials, so a
// callback from a previously configured provider is still accepted.
func Verifiers(primary Gateway) map[model.PaymentMethod]lifecycle.WebhookVerifier {
	out := map[model.PaymentMethod]lifecycle.WebhookVerifier{}
	if primary != nil {
		out[primary.Provider()] = primary
	}
	if _, ok := out[model.PaymentMethodStripe]; !ok && configs.StripeWebhookSecret != "" {
		out[model.PaymentMethodStripe] = NewStripeGateway(StripeConfig{WebhookSecret: configs.StripeWebhookSecret})
	}
	if _, ok := out[model.PaymentMethodMidtrans]; !ok && configs.MidtransServerKey != "" {
		out[model.PaymentMethodMidtrans] = NewMidtransGateway(configs.MidtransServerKey, configs.MidtransEnv == "production")
	}
	return out
}

func dueAmount(app model.ApplicationModel) (decimal.Decimal, error) {
	if g := lifecycle.CanStartCheckout(&app); !g.Allowed {
		return decimal.Zero, g.Error()
	}
	return *app.ApplicationDueAmount, nil
}

func checkoutTitle(app model.ApplicationModel) string {
	title := "Credential evaluation"
	if app.ApplicationServiceType != nil {
		switch *app.ApplicationServiceType {
		case model.ServiceTranslation:
			title = "Certified translation"
		case model.ServiceEvaluationTranslation:
			title = "Credential evaluation and translation"
		}
	}
	if name := app.FullName(); name != "" {
		title += " for " + name
	}
	return title
}

func parseApplicationRef(ref string) uuid.UUID {
	ref = strings.TrimSpace(ref)
	if len(ref) > 36 {
		ref = ref[:36]
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return uuid.Nil
	}
	return id
}
