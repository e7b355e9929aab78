package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fcehub_backend/internals/features/payments/model"
	helper "fcehub_backend/internals/helpers"
)

type GatewayEventRepository struct {
	DB *gorm.DB
}

func NewGatewayEventRepository(db *gorm.DB) *GatewayEventRepository {
	return &GatewayEventRepository{DB: db}
}

// Record stores a delivery. A redelivery of the same provider event bumps
// try_count on the existing row, which is returned with duplicate=true.
func (r *GatewayEventRepository) Record(ctx context.Context, ev *model.PaymentGatewayEventModel) (*model.PaymentGatewayEventModel, bool, error) {
	db := r.DB.WithContext(ctx)

	err := db.Create(ev).Error
	if err == nil {
		return ev, false, nil
	}
	if !helper.IsUniqueViolation(err) {
		return nil, false, err
	}

	var existing model.PaymentGatewayEventModel
	if err := db.Where("gateway_event_provider = ? AND gateway_event_external_id = ?",
		ev.GatewayEventProvider, ev.GatewayEventExternalID).
		First(&existing).Error; err != nil {
		return nil, true, err
	}
	if err := db.Model(&existing).
		UpdateColumn("gateway_event_try_count", gorm.Expr("gateway_event_try_count + 1")).Error; err != nil {
		return nil, true, err
	}
	existing.GatewayEventTryCount++
	return &existing, true, nil
}

// Finish stamps the outcome of processing.
func (r *GatewayEventRepository) Finish(ctx context.Context, id uuid.UUID, status model.GatewayEventStatus, applicationID *uuid.UUID, errMsg *string) error {
	now := time.Now().UTC()
	updates := map[string]any{
		"gateway_event_status":       status,
		"gateway_event_error":        errMsg,
		"gateway_event_processed_at": now,
		"gateway_event_updated_at":   now,
	}
	if applicationID != nil {
		updates["gateway_event_application_id"] = *applicationID
	}
	return r.DB.WithContext(ctx).
		Model(&model.PaymentGatewayEventModel{}).
		Where("gateway_event_id = ?", id).
		Updates(updates).Error
}

type EventFilter struct {
	ApplicationID *uuid.UUID
	Provider      string
	Status        model.GatewayEventStatus
	Offset        int
	Limit         int
}

func (r *GatewayEventRepository) List(ctx context.Context, f EventFilter) ([]model.PaymentGatewayEventModel, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.PaymentGatewayEventModel{})
	if f.ApplicationID != nil {
		q = q.Where("gateway_event_application_id = ?", *f.ApplicationID)
	}
	if f.Provider != "" {
		q = q.Where("gateway_event_provider = ?", f.Provider)
	}
	if f.Status != "" {
		q = q.Where("gateway_event_status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.PaymentGatewayEventModel
	q = q.Order("gateway_event_received_at DESC, gateway_event_id ASC").Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
