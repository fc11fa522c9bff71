// services/scheduler.go
package services

import (
	"log"
	"time"

	"deck-tracker-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartSessionSweeper reclaims expired session rows once an hour. The auth
// gate already checks expiry lazily on every lookup, so this job only keeps
// the sessions table from growing without bound.
func (s *AuthService) StartSessionSweeper() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			res := s.DB.Where("expires_at <= ?", time.Now().UTC()).Delete(&models.Session{})
			if res.Error != nil {
				log.Printf("[Scheduler] Session sweep failed: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("✅ Swept %d expired sessions", res.RowsAffected)
			}
		}),
	)
}
