package helper

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	authModel "fcehub_backend/internals/features/users/auth/model"
)

func newBlacklistDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(&authModel.TokenBlacklist{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestBlacklistLifecycle(t *testing.T) {
	db := newBlacklistDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if hit, err := IsBlacklisted(ctx, db, "tok-a", testSecret, now); err != nil || hit {
		t.Fatalf("fresh token: hit=%v err=%v", hit, err)
	}

	if err := Add(ctx, db, "tok-a", testSecret, now.Add(time.Hour)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := Add(ctx, db, "tok-b", testSecret, now.Add(-time.Minute)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// second logout of the same token extends rather than failing
	if err := Add(ctx, db, "tok-a", testSecret, now.Add(2*time.Hour)); err != nil {
		t.Fatalf("Add again: %v", err)
	}

	if hit, _ := IsBlacklisted(ctx, db, "tok-a", testSecret, now); !hit {
		t.Fatal("tok-a should be blacklisted")
	}
	if hit, _ := IsBlacklisted(ctx, db, "tok-b", testSecret, now); hit {
		t.Fatal("expired entry must not count")
	}

	var stored authModel.TokenBlacklist
	if err := db.First(&stored).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Token == "tok-a" || len(stored.Token) != 64 {
		t.Fatalf("raw token stored: %q", stored.Token)
	}

	n, err := PurgeExpired(ctx, db, now)
	if err != nil || n != 1 {
		t.Fatalf("PurgeExpired: n=%d err=%v", n, err)
	}
	var left int64
	db.Unscoped().Model(&authModel.TokenBlacklist{}).Count(&left)
	if left != 1 {
		t.Fatalf("rows left = %d", left)
	}
}
