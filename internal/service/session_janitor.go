package service

import (
	"context"
	"time"

	"medisched/internal/logger"
	"medisched/internal/repository"
)

// SessionJanitor periodically removes expired sessions.
type SessionJanitor struct {
	sessions repository.SessionRepo
	log      *logger.Logger
	now      func() time.Time
}

func NewSessionJanitor(sessions repository.SessionRepo, log *logger.Logger) *SessionJanitor {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionJanitor{sessions: sessions, log: log, now: time.Now}
}

// Run sweeps at the given interval until ctx is canceled.
func (j *SessionJanitor) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			j.sweep(ctx)
		}
	}
}

func (j *SessionJanitor) sweep(ctx context.Context) {
	n, err := j.sessions.DeleteExpired(ctx, j.now().UTC().Truncate(time.Second))
	if err != nil {
		j.log.Errorw("session_sweep_failed", "err", err)
		return
	}
	if n > 0 {
		j.log.Debugw("session_sweep", "removed", n)
	}
}
