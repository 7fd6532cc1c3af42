package client

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"minutes-worker/constant"
	"minutes-worker/dto"
)

// StatusAPI is the slice of Client the poller needs.
type StatusAPI interface {
	Status(ctx context.Context, jobId uuid.UUID) (*dto.StatusResponse, error)
}

// Notifier receives the one-shot side effect when a tracked job reaches a
// terminal state.
type Notifier func(status *dto.StatusResponse)

const DefaultPollInterval = 30 * time.Second

// Poller bridges a disconnected client to job progress: on an interval and on
// demand (window focus), it queries every tracked non-terminal job and merges
// the result into local state. Jobs are independent, so their polls run
// concurrently.
type Poller struct {
	api      StatusAPI
	pending  PendingStore
	markers  MarkerStore
	notify   Notifier
	interval time.Duration
	poke     chan struct{}
}

func NewPoller(api StatusAPI, pending PendingStore, markers MarkerStore, notify Notifier, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		api:      api,
		pending:  pending,
		markers:  markers,
		notify:   notify,
		interval: interval,
		poke:     make(chan struct{}, 1),
	}
}

// Poke requests an immediate poll, e.g. on window focus. Non-blocking; a poll
// already pending absorbs the request.
func (p *Poller) Poke() {
	select {
	case p.poke <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		case <-p.poke:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce queries every tracked non-terminal job once.
func (p *Poller) PollOnce(ctx context.Context) {
	var wg sync.WaitGroup
	for _, jobId := range p.pending.List() {
		local, ok := p.pending.Get(jobId)
		if !ok || local.Status.Terminal() {
			continue
		}

		wg.Add(1)
		go func(jobId uuid.UUID) {
			defer wg.Done()
			p.pollJob(ctx, jobId)
		}(jobId)
	}
	wg.Wait()
}

func (p *Poller) pollJob(ctx context.Context, jobId uuid.UUID) {
	status, err := p.api.Status(ctx, jobId)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("job_id", jobId.String()).Msg("status poll failed")
		return
	}
	if status.Status == constant.JobStatusUnknown {
		// Storage may not have observed the job yet. Keep tracking.
		return
	}

	p.pending.Merge(status)

	if !status.Status.Terminal() {
		return
	}

	notified, err := p.markers.IsNotified(ctx, jobId)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("job_id", jobId.String()).Msg("notified marker read failed")
		return
	}
	if notified {
		return
	}
	// Mark before firing: a failed side effect is preferable to a duplicated
	// one, since the side effect may edit a note.
	if err := p.markers.MarkNotified(ctx, jobId); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("job_id", jobId.String()).Msg("notified marker write failed")
		return
	}
	if p.notify != nil {
		p.notify(status)
	}
}
