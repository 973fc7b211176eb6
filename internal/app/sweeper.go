/**
 * @description
 * Cron-driven maintenance for the password-reset flow. Expired reset tokens
 * are usable-looking rows with no valid purpose; the sweeper clears them on
 * a schedule so stale hashes do not accumulate in the users table.
 */

package app

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fundme/ledger-service/internal/store"
)

// Sweeper runs periodic cleanup jobs against the store.
type Sweeper struct {
	cron          *cron.Cron
	users         store.UserStore
	schedule      string
	resetTokenTTL time.Duration
}

// NewSweeper creates a sweeper. The schedule uses standard cron syntax
// (robfig/cron), e.g. "@hourly".
func NewSweeper(users store.UserStore, schedule string, resetTokenTTL time.Duration) *Sweeper {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	return &Sweeper{
		cron:          c,
		users:         users,
		schedule:      schedule,
		resetTokenTTL: resetTokenTTL,
	}
}

// Start registers the purge job and starts the scheduler in the background.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.purgeExpiredResetTokens); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("level=info component=sweeper msg=\"reset token sweep scheduled\" schedule=%q", s.schedule)
	return nil
}

// Stop stops the scheduler and returns a context that is done once any
// running job has finished.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Sweeper) purgeExpiredResetTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-s.resetTokenTTL)
	purged, err := s.users.DeleteExpiredResetTokens(ctx, cutoff)
	if err != nil {
		log.Printf("level=error component=sweeper msg=\"reset token sweep failed\" err=%v", err)
		return
	}
	if purged > 0 {
		log.Printf("level=info component=sweeper msg=\"expired reset tokens purged\" count=%d", purged)
	}
}
