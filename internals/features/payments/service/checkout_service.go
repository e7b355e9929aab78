package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"fcehub_backend/internals/features/applications/lifecycle"
)

// ErrGateway marks a provider failure while opening a checkout.
var ErrGateway = errors.New("payment provider error")

type CheckoutService struct {
	Manager *lifecycle.Manager
	Gateway Gateway
}

func NewCheckoutService(m *lifecycle.Manager, g Gateway) *CheckoutService {
	return &CheckoutService{Manager: m, Gateway: g}
}

// Start opens a hosted checkout for the application's due amount. The
// application is not written; payment_status moves only on the callback.
func (s *CheckoutService) Start(ctx context.Context, id uuid.UUID) (*Checkout, error) {
	app, err := s.Manager.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanStartCheckout(app).Error(); err != nil {
		return nil, err
	}
	if s.Gateway == nil {
		return nil, fmt.Errorf("%w: no payment provider configured", ErrGateway)
	}

	co, err := s.Gateway.CreateCheckout(ctx, *app)
	if err != nil {
		if errors.Is(err, lifecycle.ErrInvalidTransition) {
			return nil, err
		}
		log.Printf("[CHECKOUT] ❌ %s application=%s: %v", s.Gateway.Provider(), id, err)
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	log.Printf("[CHECKOUT] %s session=%s application=%s", co.Provider, co.SessionID, id)
	return co, nil
}
