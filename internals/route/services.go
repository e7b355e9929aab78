package routes

import (
	"log"

	"gorm.io/gorm"

	"fcehub_backend/internals/features/applications/lifecycle"
	appRepo "fcehub_backend/internals/features/applications/repository"
	notifService "fcehub_backend/internals/features/notifications/service"
	payService "fcehub_backend/internals/features/payments/service"
	authService "fcehub_backend/internals/features/users/auth/service"
	helperOSS "fcehub_backend/internals/helpers/oss"
)

// Services holds the long-lived collaborators shared by routes and schedulers.
type Services struct {
	DB      *gorm.DB
	Apps    *appRepo.ApplicationRepository
	Mailer  *notifService.Mailer
	Manager *lifecycle.Manager
	Auth    *authService.AuthService

	// nil when the matching env is not configured
	Gateway payService.Gateway
	Blobs   *helperOSS.OSSService
}

func NewServices(db *gorm.DB) *Services {
	repo := appRepo.NewApplicationRepository(db)
	mailer := notifService.NewMailerFromEnv()

	s := &Services{
		DB:      db,
		Apps:    repo,
		Mailer:  mailer,
		Manager: lifecycle.NewManager(repo, mailer),
		Auth:    authService.NewAuthService(db),
	}

	if g, err := payService.NewGatewayFromEnv(); err != nil {
		log.Printf("[WARN] checkout disabled: %v", err)
	} else {
		s.Gateway = g
		log.Printf("[INFO] payment provider: %s", g.Provider())
	}

	if blobs, err := helperOSS.NewOSSServiceFromEnv("fce"); err != nil {
		log.Printf("[WARN] document uploads disabled: %v", err)
	} else {
		s.Blobs = blobs
	}
	return s
}
