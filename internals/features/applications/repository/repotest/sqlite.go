// Package repotest opens an in-memory SQLite database with the application
// tables, for repository and service tests.
package repotest

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Postgres-only column types (uuid, text[], jsonb) are declared as plain
// SQLite types here instead of going through AutoMigrate.
var schema = []string{
	`CREATE TABLE applications (
		application_id TEXT PRIMARY KEY,
		application_status TEXT NOT NULL DEFAULT 'draft',
		application_payment_status TEXT NOT NULL DEFAULT 'pending',
		application_submitted_at DATETIME,
		application_version INTEGER NOT NULL DEFAULT 1,
		application_due_amount NUMERIC,
		application_paid_at DATETIME,
		application_payment_method TEXT,
		application_payment_reference TEXT,
		application_office TEXT,
		application_first_name TEXT,
		application_last_name TEXT,
		application_email TEXT,
		application_phone TEXT,
		application_service_type TEXT,
		application_evaluation_type TEXT,
		application_purpose TEXT,
		application_delivery_method TEXT,
		application_country_of_study TEXT,
		application_source_languages TEXT,
		application_notes TEXT,
		application_created_at DATETIME,
		application_updated_at DATETIME,
		application_deleted_at DATETIME
	)`,
	`CREATE TABLE application_educations (
		education_id TEXT PRIMARY KEY,
		education_application_id TEXT NOT NULL REFERENCES applications(application_id) ON DELETE CASCADE,
		education_institution TEXT NOT NULL,
		education_country TEXT NOT NULL,
		education_degree TEXT NOT NULL,
		education_field_of_study TEXT,
		education_start_year INTEGER,
		education_end_year INTEGER,
		education_ai_equivalency TEXT,
		education_ai_confidence REAL,
		education_ai_raw TEXT,
		education_created_at DATETIME,
		education_updated_at DATETIME
	)`,
	`CREATE TABLE application_documents (
		document_id TEXT PRIMARY KEY,
		document_application_id TEXT NOT NULL,
		document_kind TEXT NOT NULL,
		document_original_name TEXT NOT NULL,
		document_object_key TEXT NOT NULL,
		document_url TEXT NOT NULL,
		document_content_type TEXT NOT NULL,
		document_size_bytes INTEGER NOT NULL,
		document_created_at DATETIME
	)`,
	`CREATE TABLE external_orders (
		external_order_application_id TEXT PRIMARY KEY,
		external_order_source TEXT NOT NULL,
		external_order_reference TEXT,
		external_order_status TEXT NOT NULL,
		external_order_created_at DATETIME,
		external_order_updated_at DATETIME
	)`,
}

// Open returns a single-connection in-memory database closed on cleanup.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, ddl := range schema {
		if err := db.Exec(ddl).Error; err != nil {
			t.Fatalf("schema: %v", err)
		}
	}
	return db
}
