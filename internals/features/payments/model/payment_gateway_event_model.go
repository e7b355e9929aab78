package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*
  payment_gateway_events = webhook / callback log
  - One row per provider delivery (provider + external id is unique).
  - Keeps the raw payload and signature for replay and audit.
*/

type GatewayEventStatus string

const (
	GatewayEventReceived  GatewayEventStatus = "received"
	GatewayEventProcessed GatewayEventStatus = "processed"
	GatewayEventFailed    GatewayEventStatus = "failed"
	GatewayEventIgnored   GatewayEventStatus = "ignored"
)

type PaymentGatewayEventModel struct {
	GatewayEventID uuid.UUID `gorm:"column:gateway_event_id;type:uuid;primaryKey" json:"gateway_event_id"`

	GatewayEventApplicationID *uuid.UUID `gorm:"column:gateway_event_application_id;type:uuid;index" json:"gateway_event_application_id,omitempty"`

	GatewayEventProvider    string  `gorm:"column:gateway_event_provider;type:varchar(20);not null;uniqueIndex:uq_gateway_event_provider_external" json:"gateway_event_provider"`
	GatewayEventType        *string `gorm:"column:gateway_event_type;type:varchar(80)" json:"gateway_event_type,omitempty"`
	GatewayEventExternalID  string  `gorm:"column:gateway_event_external_id;type:varchar(160);not null;uniqueIndex:uq_gateway_event_provider_external" json:"gateway_event_external_id"`
	GatewayEventExternalRef *string `gorm:"column:gateway_event_external_ref;type:varchar(160)" json:"gateway_event_external_ref,omitempty"`

	GatewayEventPayload   datatypes.JSON `gorm:"column:gateway_event_payload;type:jsonb" json:"gateway_event_payload,omitempty"`
	GatewayEventSignature *string        `gorm:"column:gateway_event_signature;type:text" json:"-"`

	GatewayEventStatus   GatewayEventStatus `gorm:"column:gateway_event_status;type:varchar(20);not null;default:'received';index" json:"gateway_event_status"`
	GatewayEventError    *string            `gorm:"column:gateway_event_error;type:text" json:"gateway_event_error,omitempty"`
	GatewayEventTryCount int                `gorm:"column:gateway_event_try_count;not null;default:1" json:"gateway_event_try_count"`

	GatewayEventReceivedAt  time.Time  `gorm:"column:gateway_event_received_at;not null" json:"gateway_event_received_at"`
	GatewayEventProcessedAt *time.Time `gorm:"column:gateway_event_processed_at" json:"gateway_event_processed_at,omitempty"`

	GatewayEventCreatedAt time.Time `gorm:"column:gateway_event_created_at;autoCreateTime" json:"gateway_event_created_at"`
	GatewayEventUpdatedAt time.Time `gorm:"column:gateway_event_updated_at;autoUpdateTime" json:"gateway_event_updated_at"`
}

func (PaymentGatewayEventModel) TableName() string {
	return "payment_gateway_events"
}

func (e *PaymentGatewayEventModel) BeforeCreate(tx *gorm.DB) error {
	if e.GatewayEventID == uuid.Nil {
		e.GatewayEventID = uuid.New()
	}
	if e.GatewayEventStatus == "" {
		e.GatewayEventStatus = GatewayEventReceived
	}
	if e.GatewayEventReceivedAt.IsZero() {
		e.GatewayEventReceivedAt = time.Now().UTC()
	}
	if e.GatewayEventTryCount == 0 {
		e.GatewayEventTryCount = 1
	}
	return nil
}
