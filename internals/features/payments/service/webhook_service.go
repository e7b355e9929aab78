package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"fcehub_backend/internals/features/applications/lifecycle"
	"fcehub_backend/internals/features/payments/model"
)

// EventLog is the subset of the gateway event repository the webhook needs.
type EventLog interface {
	Record(ctx context.Context, ev *model.PaymentGatewayEventModel) (*model.PaymentGatewayEventModel, bool, error)
	Finish(ctx context.Context, id uuid.UUID, status model.GatewayEventStatus, applicationID *uuid.UUID, errMsg *string) error
}

type WebhookService struct {
	Manager *lifecycle.Manager
	Events  EventLog
}

func NewWebhookService(m *lifecycle.Manager, events EventLog) *WebhookService {
	return &WebhookService{Manager: m, Events: events}
}

// Process verifies and applies one callback, then writes it to the gateway
// event log. Rejected signatures are never logged. A failure to write the
// log does not change the result returned to the provider.
func (s *WebhookService) Process(ctx context.Context, v lifecycle.WebhookVerifier, payload []byte, signature string) (*lifecycle.WebhookResult, error) {
	res, err := s.Manager.HandlePaymentWebhook(ctx, v, payload, signature)
	if res == nil {
		return nil, err
	}
	s.record(ctx, res, payload, signature, err)
	return res, err
}

func (s *WebhookService) record(ctx context.Context, res *lifecycle.WebhookResult, payload []byte, signature string, applyErr error) {
	if s.Events == nil {
		return
	}
	// the log write outlives the request deadline
	ctx = context.WithoutCancel(ctx)

	status, errMsg := eventStatus(res, applyErr)
	ev := &model.PaymentGatewayEventModel{
		GatewayEventProvider:   string(res.Event.Provider),
		GatewayEventType:       strPtr(res.Event.EventType),
		GatewayEventExternalID: res.Event.EventID,
		GatewayEventExternalRef: func() *string {
			if res.Event.Reference != "" {
				return strPtr(res.Event.Reference)
			}
			return nil
		}(),
		GatewayEventPayload: datatypes.JSON(payload),
		GatewayEventStatus:  status,
		GatewayEventError:   errMsg,
	}
	if signature != "" {
		ev.GatewayEventSignature = strPtr(signature)
	}
	var appID *uuid.UUID
	if res.Application != nil {
		id := res.Application.ApplicationID
		appID = &id
		ev.GatewayEventApplicationID = appID
	}

	saved, dup, err := s.Events.Record(ctx, ev)
	if err != nil {
		log.Printf("[WEBHOOK] ❌ log %s event %s: %v", ev.GatewayEventProvider, ev.GatewayEventExternalID, err)
		return
	}
	if err := s.Events.Finish(ctx, saved.GatewayEventID, status, appID, errMsg); err != nil {
		log.Printf("[WEBHOOK] ❌ finish %s event %s: %v", ev.GatewayEventProvider, ev.GatewayEventExternalID, err)
		return
	}
	if dup {
		log.Printf("[WEBHOOK] redelivery of %s event %s (try %d) → %s",
			ev.GatewayEventProvider, ev.GatewayEventExternalID, saved.GatewayEventTryCount, status)
	}
}

func eventStatus(res *lifecycle.WebhookResult, applyErr error) (model.GatewayEventStatus, *string) {
	if applyErr != nil {
		return model.GatewayEventFailed, strPtr(applyErr.Error())
	}
	switch res.Outcome {
	case lifecycle.OutcomeApplied, lifecycle.OutcomeNoop:
		if res.Reason != "" {
			return model.GatewayEventProcessed, strPtr(res.Reason)
		}
		return model.GatewayEventProcessed, nil
	}
	return model.GatewayEventIgnored, strPtr(res.Reason)
}

func strPtr(s string) *string { return &s }
