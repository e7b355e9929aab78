package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fcehub_backend/internals/features/payments/model"
)

const eventSchema = `CREATE TABLE payment_gateway_events (
	gateway_event_id TEXT PRIMARY KEY,
	gateway_event_application_id TEXT,
	gateway_event_provider TEXT NOT NULL,
	gateway_event_type TEXT,
	gateway_event_external_id TEXT NOT NULL,
	gateway_event_external_ref TEXT,
	gateway_event_payload TEXT,
	gateway_event_signature TEXT,
	gateway_event_status TEXT NOT NULL DEFAULT 'received',
	gateway_event_error TEXT,
	gateway_event_try_count INTEGER NOT NULL DEFAULT 1,
	gateway_event_received_at DATETIME NOT NULL,
	gateway_event_processed_at DATETIME,
	gateway_event_created_at DATETIME,
	gateway_event_updated_at DATETIME,
	CONSTRAINT uq_gateway_event_provider_external UNIQUE (gateway_event_provider, gateway_event_external_id)
)`

func newTestRepo(t *testing.T) *GatewayEventRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Exec(eventSchema).Error; err != nil {
		t.Fatalf("schema: %v", err)
	}
	return NewGatewayEventRepository(db)
}

func event(provider, externalID string) *model.PaymentGatewayEventModel {
	typ := "checkout.session.completed"
	return &model.PaymentGatewayEventModel{
		GatewayEventProvider:   provider,
		GatewayEventType:       &typ,
		GatewayEventExternalID: externalID,
		GatewayEventPayload:    datatypes.JSON(`{"id":"` + externalID + `"}`),
	}
}

func TestRecordDeduplicatesRedelivery(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, dup, err := repo.Record(ctx, event("stripe", "evt_1"))
	if err != nil || dup {
		t.Fatalf("first record: dup=%v err=%v", dup, err)
	}
	if first.GatewayEventTryCount != 1 || first.GatewayEventStatus != model.GatewayEventReceived {
		t.Fatalf("defaults not applied: %+v", first)
	}

	again, dup, err := repo.Record(ctx, event("stripe", "evt_1"))
	if err != nil || !dup {
		t.Fatalf("redelivery: dup=%v err=%v", dup, err)
	}
	if again.GatewayEventID != first.GatewayEventID || again.GatewayEventTryCount != 2 {
		t.Fatalf("redelivery row = %+v", again)
	}

	// same external id from another provider is a different event
	if _, dup, err := repo.Record(ctx, event("midtrans", "evt_1")); err != nil || dup {
		t.Fatalf("other provider: dup=%v err=%v", dup, err)
	}
}

func TestFinishAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	appID := uuid.New()

	a, _, _ := repo.Record(ctx, event("stripe", "evt_a"))
	b, _, _ := repo.Record(ctx, event("stripe", "evt_b"))
	if _, _, err := repo.Record(ctx, event("midtrans", "tx_c:settlement")); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if err := repo.Finish(ctx, a.GatewayEventID, model.GatewayEventProcessed, &appID, nil); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	msg := "application not found"
	if err := repo.Finish(ctx, b.GatewayEventID, model.GatewayEventIgnored, nil, &msg); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	rows, total, err := repo.List(ctx, EventFilter{ApplicationID: &appID})
	if err != nil || total != 1 || len(rows) != 1 {
		t.Fatalf("by application: total=%d rows=%d err=%v", total, len(rows), err)
	}
	if rows[0].GatewayEventStatus != model.GatewayEventProcessed || rows[0].GatewayEventProcessedAt == nil {
		t.Fatalf("finished row = %+v", rows[0])
	}

	rows, total, err = repo.List(ctx, EventFilter{Provider: "stripe", Limit: 1})
	if err != nil || total != 2 || len(rows) != 1 {
		t.Fatalf("by provider: total=%d rows=%d err=%v", total, len(rows), err)
	}

	rows, _, err = repo.List(ctx, EventFilter{Status: model.GatewayEventIgnored})
	if err != nil || len(rows) != 1 || rows[0].GatewayEventError == nil || *rows[0].GatewayEventError != msg {
		t.Fatalf("ignored rows = %+v err=%v", rows, err)
	}

	rows, total, _ = repo.List(ctx, EventFilter{Status: model.GatewayEventReceived})
	if total != 1 || rows[0].GatewayEventExternalID != "tx_c:settlement" {
		t.Fatalf("received rows = %+v", rows)
	}
	if rows[0].GatewayEventReceivedAt.After(time.Now().UTC().Add(time.Second)) {
		t.Fatal("received_at in the future")
	}
}
