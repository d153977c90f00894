package reminders

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"pahla_backend/internals/logger"
)

// Schedule registers a send-to-all run on spec. An empty spec returns a nil
// scheduler. The caller starts and stops it.
func Schedule(spec string, d *Dispatcher, timeout time.Duration) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	log := logger.With("reminders")

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := d.Dispatch(ctx, Request{SendToAll: true})
		if err != nil {
			log.Error().Err(err).Msg("scheduled reminder run failed")
			return
		}
		log.Info().Int("success", res.SuccessCount).Int("failure", res.FailureCount).Msg("scheduled reminder run")
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("schedule", spec).Msg("reminder schedule registered")
	return c, nil
}
