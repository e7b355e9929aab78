package model

import (
	"time"

	"github.com/google/uuid"
)

// ExternalOrderModel mirrors orders imported from partner channels. When an
// application ID also lives here its status is kept in sync on every change.
type ExternalOrderModel struct {
	ExternalOrderApplicationID uuid.UUID         `gorm:"column:external_order_application_id;type:uuid;primaryKey" json:"external_order_application_id"`
	ExternalOrderSource        string            `gorm:"column:external_order_source;type:varchar(60);not null" json:"external_order_source"`
	ExternalOrderReference     *string           `gorm:"column:external_order_reference;type:varchar(120)" json:"external_order_reference,omitempty"`
	ExternalOrderStatus        ApplicationStatus `gorm:"column:external_order_status;type:varchar(20);not null" json:"external_order_status"`

	ExternalOrderCreatedAt time.Time `gorm:"column:external_order_created_at;autoCreateTime" json:"external_order_created_at"`
	ExternalOrderUpdatedAt time.Time `gorm:"column:external_order_updated_at;autoUpdateTime" json:"external_order_updated_at"`
}

func (ExternalOrderModel) TableName() string { return "external_orders" }
