package service

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"fcehub_backend/internals/features/applications/lifecycle"
	"fcehub_backend/internals/features/applications/model"
)

type MidtransGateway struct {
	serverKey string
	snap      func(*snap.Request) (*snap.Response, *midtrans.Error)
	now       func() time.Time
}

func NewMidtransGateway(serverKey string, production bool) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	var sc snap.Client
	sc.New(serverKey, env)
	return &MidtransGateway{serverKey: serverKey, snap: sc.CreateTransaction, now: time.Now}
}

func (g *MidtransGateway) Provider() model.PaymentMethod { return model.PaymentMethodMidtrans }

/* =======================================================================
   Snap checkout
======================================================================= */

// CreateCheckout opens a Snap transaction. Midtrans refuses to reuse an
// order_id, so each attempt gets "<application_id>-<unix>".
func (g *MidtransGateway) CreateCheckout(ctx context.Context, app model.ApplicationModel) (*Checkout, error) {
	amount, err := dueAmount(app)
	if err != nil {
		return nil, err
	}
	if g.serverKey == "" {
		return nil, errors.New("midtrans is not configured")
	}

	orderID := fmt.Sprintf("%s-%d", app.ApplicationID, g.now().Unix())
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: amount.RoundCeil(0).IntPart(),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: app.ApplicationFirstName,
			LName: app.ApplicationLastName,
			Email: app.ApplicationEmail,
		},
	}
	if app.ApplicationPhone != nil {
		req.CustomerDetail.Phone = *app.ApplicationPhone
	}

	resp, merr := g.snap(req)
	if merr != nil {
		log.Printf("[MIDTRANS] snap order=%s: %s", orderID, merr.Message)
		return nil, fmt.Errorf("midtrans checkout: %s", merr.Message)
	}
	return &Checkout{
		Provider:    model.PaymentMethodMidtrans,
		SessionID:   orderID,
		RedirectURL: resp.RedirectURL,
		Token:       resp.Token,
	}, nil
}

/* =======================================================================
   HTTP notification
======================================================================= */

type midtransNotif struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"` // capture, settlement, pending, deny, cancel, expire, refund, failure
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"` // accept / challenge / deny
	TransactionID     string `json:"transaction_id"`
}

// VerifyAndParse checks signature_key = SHA512(order_id + status_code +
// gross_amount + server_key). The signature travels in the body, so the
// header argument is unused.
func (g *MidtransGateway) VerifyAndParse(payload []byte, _ string) (*lifecycle.PaymentEvent, error) {
	var n midtransNotif
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", lifecycle.ErrMalformedEvent, err)
	}
	if g.serverKey == "" || n.SignatureKey == "" {
		return nil, fmt.Errorf("%w: missing signature_key", lifecycle.ErrUnauthorized)
	}
	want := midtransSignature(n.OrderID, n.StatusCode, n.GrossAmount, g.serverKey)
	if subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(n.SignatureKey))) != 1 {
		return nil, fmt.Errorf("%w: invalid signature", lifecycle.ErrUnauthorized)
	}
	if n.OrderID == "" || n.TransactionStatus == "" {
		return nil, fmt.Errorf("%w: order_id and transaction_status are required", lifecycle.ErrMalformedEvent)
	}

	status := strings.ToLower(n.TransactionStatus)
	out := &lifecycle.PaymentEvent{
		Kind:          mapMidtransStatus(status, strings.ToLower(n.FraudStatus)),
		Provider:      model.PaymentMethodMidtrans,
		EventType:     status,
		EventID:       n.OrderID + ":" + status,
		ApplicationID: parseApplicationRef(n.OrderID),
		Reference:     n.TransactionID,
	}
	if n.TransactionID != "" {
		out.EventID = n.TransactionID + ":" + status
	}
	return out, nil
}

func mapMidtransStatus(status, fraud string) lifecycle.EventKind {
	switch status {
	case "settlement":
		return lifecycle.EventCheckoutCompleted
	case "capture":
		// card payments: capture + fraud=accept is final, challenge waits for review
		if fraud == "accept" {
			return lifecycle.EventCheckoutCompleted
		}
	case "expire":
		return lifecycle.EventCheckoutExpired
	}
	return lifecycle.EventOther
}

func midtransSignature(orderID, statusCode, grossAmount, serverKey string) string {
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:])
}
