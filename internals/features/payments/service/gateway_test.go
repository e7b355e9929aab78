package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"

	"fcehub_backend/internals/features/applications/lifecycle"
	"fcehub_backend/internals/features/applications/model"
)

const testWebhookSecret = "whsec_test"

func signStripe(payload string, secret string, at time.Time) string {
	ts := at.Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func stripeEvent(typ string, appID string, paymentStatus string) string {
	return fmt.Sprintf(`{"id":"evt_1","object":"event","api_version":"2020-08-27","type":%q,`+
		`"data":{"object":{"id":"cs_1","object":"checkout.session","client_reference_id":%q,`+
		`"payment_intent":"pi_1","payment_status":%q}}}`, typ, appID, paymentStatus)
}

func submittedApp(due string) model.ApplicationModel {
	a := model.ApplicationModel{
		ApplicationID:            uuid.New(),
		ApplicationStatus:        model.ApplicationStatusSubmitted,
		ApplicationPaymentStatus: model.PaymentStatusPending,
		ApplicationFirstName:     "Ana",
		ApplicationLastName:      "Lima",
		ApplicationEmail:         "ana@example.com",
	}
	if due != "" {
		d := decimal.RequireFromString(due)
		a.ApplicationDueAmount = &d
	}
	return a
}

/* =========================== Stripe =========================== */

func TestStripeVerifyAndParse(t *testing.T) {
	g := NewStripeGateway(StripeConfig{WebhookSecret: testWebhookSecret})
	id := uuid.New()

	tests := []struct {
		name    string
		payload string
		sig     func(p string) string
		wantErr error
		kind    lifecycle.EventKind
	}{
		{
			name:    "completed",
			payload: stripeEvent("checkout.session.completed", id.String(), "paid"),
			sig:     func(p string) string { return signStripe(p, testWebhookSecret, time.Now()) },
			kind:    lifecycle.EventCheckoutCompleted,
		},
		{
			name:    "completed but unpaid waits for async success",
			payload: stripeEvent("checkout.session.completed", id.String(), "unpaid"),
			sig:     func(p string) string { return signStripe(p, testWebhookSecret, time.Now()) },
			kind:    lifecycle.EventOther,
		},
		{
			name:    "async success",
			payload: stripeEvent("checkout.session.async_payment_succeeded", id.String(), "paid"),
			sig:     func(p string) string { return signStripe(p, testWebhookSecret, time.Now()) },
			kind:    lifecycle.EventCheckoutCompleted,
		},
		{
			name:    "expired",
			payload: stripeEvent("checkout.session.expired", id.String(), "unpaid"),
			sig:     func(p string) string { return signStripe(p, testWebhookSecret, time.Now()) },
			kind:    lifecycle.EventCheckoutExpired,
		},
		{
			name:    "other type",
			payload: stripeEvent("customer.created", id.String(), "paid"),
			sig:     func(p string) string { return signStripe(p, testWebhookSecret, time.Now()) },
			kind:    lifecycle.EventOther,
		},
		{
			name:    "wrong secret",
			payload: stripeEvent("checkout.session.completed", id.String(), "paid"),
			sig:     func(p string) string { return signStripe(p, "whsec_other", time.Now()) },
			wantErr: lifecycle.ErrUnauthorized,
		},
		{
			name:    "stale timestamp",
			payload: stripeEvent("checkout.session.completed", id.String(), "paid"),
			sig:     func(p string) string { return signStripe(p, testWebhookSecret, time.Now().Add(-time.Hour)) },
			wantErr: lifecycle.ErrUnauthorized,
		},
		{
			name:    "missing header",
			payload: stripeEvent("checkout.session.completed", id.String(), "paid"),
			sig:     func(string) string { return "" },
			wantErr: lifecycle.ErrUnauthorized,
		},
		{
			name:    "signed garbage",
			payload: `{"id":`,
			sig:     func(p string) string { return signStripe(p, testWebhookSecret, time.Now()) },
			wantErr: lifecycle.ErrMalformedEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := g.VerifyAndParse([]byte(tt.payload), tt.sig(tt.payload))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ev.Kind != tt.kind {
				t.Fatalf("kind = %s, want %s", ev.Kind, tt.kind)
			}
			if ev.Provider != model.PaymentMethodStripe || ev.EventID != "evt_1" {
				t.Fatalf("event = %+v", ev)
			}
			if tt.kind != lifecycle.EventOther && (ev.ApplicationID != id || ev.Reference != "pi_1") {
				t.Fatalf("reference not extracted: %+v", ev)
			}
		})
	}
}

func TestStripeCheckoutBuildsSession(t *testing.T) {
	g := NewStripeGateway(StripeConfig{
		Currency:   "usd",
		SuccessURL: "https://example.com/ok",
		CancelURL:  "https://example.com/cancel",
	})
	var got *stripe.CheckoutSessionParams
	g.newSession = func(p *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		got = p
		return &stripe.CheckoutSession{ID: "cs_9", URL: "https://checkout.stripe.com/c/cs_9"}, nil
	}

	a := submittedApp("185.50")
	co, err := g.CreateCheckout(context.Background(), a)
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}
	if co.SessionID != "cs_9" || co.RedirectURL == "" || co.Provider != model.PaymentMethodStripe {
		t.Fatalf("checkout = %+v", co)
	}
	if *got.ClientReferenceID != a.ApplicationID.String() {
		t.Fatalf("client_reference_id = %s", *got.ClientReferenceID)
	}
	if amt := *got.LineItems[0].PriceData.UnitAmount; amt != 18550 {
		t.Fatalf("unit amount = %d, want 18550", amt)
	}
	if *got.CustomerEmail != "ana@example.com" || got.Metadata["application_id"] != a.ApplicationID.String() {
		t.Fatalf("params = %+v", got)
	}
}

func TestCheckoutRequiresOpenSubmittedWithAmount(t *testing.T) {
	g := NewStripeGateway(StripeConfig{})
	g.newSession = func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		t.Fatal("provider must not be called")
		return nil, nil
	}

	noAmount := submittedApp("")
	paid := submittedApp("10")
	paid.ApplicationPaymentStatus = model.PaymentStatusPaid
	draft := submittedApp("10")
	draft.ApplicationStatus = model.ApplicationStatusDraft

	for _, a := range []model.ApplicationModel{noAmount, paid, draft} {
		if _, err := g.CreateCheckout(context.Background(), a); !errors.Is(err, lifecycle.ErrInvalidTransition) {
			t.Fatalf("status=%s pay=%s: err = %v", a.ApplicationStatus, a.ApplicationPaymentStatus, err)
		}
	}
}

/* =========================== Midtrans =========================== */

func midtransBody(orderID, status, fraud, txID, serverKey string) string {
	sig := midtransSignature(orderID, "200", "150000.00", serverKey)
	return fmt.Sprintf(`{"order_id":%q,"status_code":"200","gross_amount":"150000.00",`+
		`"transaction_status":%q,"fraud_status":%q,"transaction_id":%q,"signature_key":%q}`,
		orderID, status, fraud, txID, sig)
}

func TestMidtransVerifyAndParse(t *testing.T) {
	g := NewMidtransGateway("SB-server-key", false)
	id := uuid.New()
	orderID := fmt.Sprintf("%s-%d", id, 1741618800)

	tests := []struct {
		name    string
		body    string
		wantErr error
		kind    lifecycle.EventKind
	}{
		{"settlement", midtransBody(orderID, "settlement", "", "tx-1", "SB-server-key"), nil, lifecycle.EventCheckoutCompleted},
		{"capture accept", midtransBody(orderID, "capture", "accept", "tx-1", "SB-server-key"), nil, lifecycle.EventCheckoutCompleted},
		{"capture challenge", midtransBody(orderID, "capture", "challenge", "tx-1", "SB-server-key"), nil, lifecycle.EventOther},
		{"expire", midtransBody(orderID, "expire", "", "tx-1", "SB-server-key"), nil, lifecycle.EventCheckoutExpired},
		{"pending", midtransBody(orderID, "pending", "", "tx-1", "SB-server-key"), nil, lifecycle.EventOther},
		{"forged", midtransBody(orderID, "settlement", "", "tx-1", "other-key"), lifecycle.ErrUnauthorized, ""},
		{"no signature", `{"order_id":"x","transaction_status":"settlement"}`, lifecycle.ErrUnauthorized, ""},
		{"not json", `order_id=x`, lifecycle.ErrMalformedEvent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := g.VerifyAndParse([]byte(tt.body), "")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ev.Kind != tt.kind || ev.ApplicationID != id || ev.Reference != "tx-1" {
				t.Fatalf("event = %+v", ev)
			}
			if !strings.HasPrefix(ev.EventID, "tx-1:") {
				t.Fatalf("event id = %s", ev.EventID)
			}
		})
	}
}

func TestMidtransCheckoutOrderID(t *testing.T) {
	g := NewMidtransGateway("SB-server-key", false)
	g.now = func() time.Time { return time.Unix(1741618800, 0) }
	var got *snap.Request
	g.snap = func(r *snap.Request) (*snap.Response, *midtrans.Error) {
		got = r
		return &snap.Response{Token: "tok", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/tok"}, nil
	}

	a := submittedApp("120.10")
	co, err := g.CreateCheckout(context.Background(), a)
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}
	want := a.ApplicationID.String() + "-1741618800"
	if co.SessionID != want || got.TransactionDetails.OrderID != want {
		t.Fatalf("order id = %s / %s", co.SessionID, got.TransactionDetails.OrderID)
	}
	if got.TransactionDetails.GrossAmt != 121 {
		t.Fatalf("gross = %d, want 121", got.TransactionDetails.GrossAmt)
	}
	if parseApplicationRef(co.SessionID) != a.ApplicationID {
		t.Fatal("order id does not round-trip to the application")
	}

	g.snap = func(*snap.Request) (*snap.Response, *midtrans.Error) {
		return nil, &midtrans.Error{Message: "401 unauthorized"}
	}
	if _, err := g.CreateCheckout(context.Background(), a); err == nil {
		t.Fatal("expected provider error")
	}
}

func TestParseApplicationRef(t *testing.T) {
	id := uuid.New()
	if parseApplicationRef(id.String()) != id {
		t.Fatal("bare uuid")
	}
	if parseApplicationRef(" "+id.String()+"-99 ") != id {
		t.Fatal("suffixed uuid")
	}
	if parseApplicationRef("order-123") != uuid.Nil {
		t.Fatal("garbage should be Nil")
	}
}
