package session

import (
	"context"

	"github.com/robfig/cron/v3"
)

// Revalidator re-verifies a live session on a cron schedule, so a token revoked
// server-side is noticed without waiting for the next failing request.
type Revalidator struct {
	m    *Manager
	cron *cron.Cron
}

// NewRevalidator parses spec in the standard five-field cron format.
func NewRevalidator(m *Manager, spec string) (*Revalidator, error) {
	c := cron.New()
	r := &Revalidator{m: m, cron: c}
	if _, err := c.AddFunc(spec, r.run); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Revalidator) run() {
	if r.m.Status() != StatusAuthenticated {
		return
	}
	if err := r.m.Verify(context.Background()); err != nil {
		sessionLogger.Warn().Err(err).Msg("Session revalidation failed")
	}
}

func (r *Revalidator) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running check to finish.
func (r *Revalidator) Stop() {
	<-r.cron.Stop().Done()
}
