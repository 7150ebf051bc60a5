package router

import (
	"github.com/mksolution/account-service/internal/application"
	"github.com/mksolution/account-service/internal/container"
	pginfra "github.com/mksolution/account-service/internal/infrastructure/postgres"
	handlers "github.com/mksolution/account-service/internal/interface/http"
	"github.com/mksolution/account-service/internal/router/modules"
)

// InitModules wires the repository, application service and handlers
// from the container and registers every feature module. Called once at
// startup.
func InitModules(r *Registry, c *container.Container) {
	repo := pginfra.NewUserRepository(c.PGPool)

	svc := &application.Service{
		Repo:         repo,
		JWT:          c.JWT,
		Sessions:     c.Sessions,
		Pub:          c.Rabbit,
		Logger:       c.Logger,
		GCS:          c.GCS,
		GCSBucket:    c.Cfg.GCSBucket,
		ES:           c.ES,
		ESUsersIndex: c.Cfg.ESUsersIndex,
		OTPTTL:       c.Cfg.OTPTTL,
		AccessTTL:    c.Cfg.AccessTokenTTL,
		MailEnabled:  c.Cfg.MailSendEnabled,
	}

	r.Add(
		modules.NewAuthModule(handlers.NewAuthHandler(svc, c.Logger)),
		modules.NewUserModule(handlers.NewUserHandler(svc, c.Logger), c.JWT, c.Sessions),
		modules.NewOnboardingModule(handlers.NewOnboardingHandler(svc, c.Logger), c.JWT, c.Sessions),
	)
}
