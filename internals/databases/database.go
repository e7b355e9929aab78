package database

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fcehub_backend/internals/configs"
	appModel "fcehub_backend/internals/features/applications/model"
	payModel "fcehub_backend/internals/features/payments/model"
	authModel "fcehub_backend/internals/features/users/auth/model"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("🔌 Connecting to PostgreSQL...")

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  configs.DatabaseDSN(),
		PreferSimpleProtocol: true, // PgBouncer transaction pooling
	}), &gorm.Config{
		Logger:         configs.NewGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("❌ DB connection failed: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(configs.GetEnvInt("DB_MAX_OPEN_CONNS", 20))
	sqlDB.SetMaxIdleConns(configs.GetEnvInt("DB_MAX_IDLE_CONNS", 10))
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// AutoMigrate creates or extends every table the service owns.
// main skips it when DB_AUTO_MIGRATE=false.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&appModel.ApplicationModel{},
		&appModel.EducationModel{},
		&appModel.ApplicationDocumentModel{},
		&appModel.ExternalOrderModel{},
		&payModel.PaymentGatewayEventModel{},
		&authModel.StaffUserModel{},
		&authModel.TokenBlacklist{},
	)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := Ping(); err != nil {
			log.Printf("warm-up ping err: %v", err)
			return
		}
		var n int64
		if err := DB.Model(&appModel.ApplicationModel{}).
			Where("application_payment_status = ?", appModel.PaymentStatusPending).
			Limit(1).Count(&n).Error; err != nil {
			log.Printf("warm-up query err: %v", err)
		}
	}()
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
