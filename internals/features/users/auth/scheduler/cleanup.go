package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"pahla_backend/internals/features/users/auth/service"
	"pahla_backend/internals/logger"
)

// StartRevokedTokenCleanup purges expired revocations on spec (e.g. "@daily").
// The returned cron is already running; stop it on shutdown.
func StartRevokedTokenCleanup(svc *service.AuthService, spec string) (*cron.Cron, error) {
	if spec == "" {
		spec = "@daily"
	}
	log := logger.With("auth")

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := svc.PurgeRevoked(ctx)
		if err != nil {
			log.Error().Err(err).Msg("revoked token cleanup")
			return
		}
		log.Info().Int64("deleted", n).Msg("revoked token cleanup")
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
