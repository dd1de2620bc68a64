// Package poller drives the follower client: one login, a one-time history
// backfill, then a fixed-interval poll of the live patient state.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"cdr.dev/slog/v3"
	"github.com/coder/quartz"

	"github.com/naveenspark/eversense/pkg/domain"
)

const (
	// DefaultInterval is the wait between two live-state polls.
	DefaultInterval = 60 * time.Second
	// DefaultBackfill is the history window fetched once at startup.
	DefaultBackfill = 24 * time.Hour
)

// ErrBootstrap is returned by Run when no session could be established.
var ErrBootstrap = errors.New("could not log in")

// State is the phase the poller is in.
type State int32

// Poller phases, in the order a run moves through them.
const (
	StateIdle State = iota
	StateBootstrap
	StateBackfill
	StateSteady
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBootstrap:
		return "bootstrap"
	case StateBackfill:
		return "backfill"
	case StateSteady:
		return "steady"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Session is the part of the session manager the poller needs at startup.
type Session interface {
	Valid() bool
	Authenticate(ctx context.Context) error
}

// API fetches patient state and glucose history. Implementations validate
// their own session on every call.
type API interface {
	ResolveIdentity(ctx context.Context) (*domain.Identity, error)
	FetchGlucose(ctx context.Context, user domain.UserID, from, to time.Time) ([]domain.Reading, error)
}

// Emitter receives the normalized records.
type Emitter interface {
	History(readings []domain.Reading) error
	Current(at time.Time, id domain.Identity) error
}

// Poller runs the bootstrap, backfill and steady phases in order.
type Poller struct {
	session  Session
	api      API
	emitter  Emitter
	clock    quartz.Clock
	logger   slog.Logger
	metrics  *Metrics
	interval time.Duration
	backfill time.Duration

	state atomic.Int32
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock sets the clock used for the backfill window and the poll timer.
func WithClock(clock quartz.Clock) Option {
	return func(p *Poller) {
		p.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger slog.Logger) Option {
	return func(p *Poller) {
		p.logger = logger
	}
}

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		p.interval = d
	}
}

// WithBackfill overrides DefaultBackfill.
func WithBackfill(d time.Duration) Option {
	return func(p *Poller) {
		p.backfill = d
	}
}

// WithMetrics records poll cycles into m.
func WithMetrics(m *Metrics) Option {
	return func(p *Poller) {
		p.metrics = m
	}
}

// New creates a poller. It does nothing until Run is called.
func New(session Session, api API, emitter Emitter, opts ...Option) *Poller {
	p := &Poller{
		session:  session,
		api:      api,
		emitter:  emitter,
		clock:    quartz.NewReal(),
		logger:   slog.Make(),
		interval: DefaultInterval,
		backfill: DefaultBackfill,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named("poller")
	return p
}

// State returns the current phase.
func (p *Poller) State() State {
	return State(p.state.Load())
}

func (p *Poller) setState(s State) {
	p.state.Store(int32(s))
	p.metrics.setState(s)
}

// Run logs in, backfills history and then polls until ctx is done. It only
// returns an error when the initial login fails.
func (p *Poller) Run(ctx context.Context) error {
	defer p.setState(StateStopped)

	p.setState(StateBootstrap)
	if err := p.bootstrap(ctx); err != nil {
		return err
	}

	p.setState(StateBackfill)
	p.runBackfill(ctx)

	p.setState(StateSteady)
	p.steady(ctx)
	return nil
}

func (p *Poller) bootstrap(ctx context.Context) error {
	if p.session.Valid() {
		return nil
	}
	if err := p.session.Authenticate(ctx); err != nil {
		p.logger.Error(ctx, "could not log in", slog.Error(err))
		return fmt.Errorf("%w: %w", ErrBootstrap, err)
	}
	return nil
}

func (p *Poller) runBackfill(ctx context.Context) {
	id, err := p.api.ResolveIdentity(ctx)
	if err != nil {
		p.logger.Warn(ctx, "get user info failed, skipping backfill", slog.Error(err))
		return
	}

	now := p.clock.Now().UTC()
	from := now.Add(-p.backfill)
	readings, err := p.api.FetchGlucose(ctx, id.UserID, from, now)
	if err != nil {
		p.logger.Warn(ctx, "history fetch failed", slog.Error(err))
		return
	}
	if len(readings) == 0 {
		p.logger.Warn(ctx, "no history data",
			slog.F("from", from),
			slog.F("to", now),
		)
		return
	}

	p.logger.Info(ctx, "loaded history", slog.F("readings", len(readings)))
	if err := p.emitter.History(readings); err != nil {
		p.logger.Warn(ctx, "emit history", slog.Error(err))
	}
}

// steady polls immediately and then waits the full interval after every
// cycle, successful or not.
func (p *Poller) steady(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		p.poll(ctx)

		timer := p.clock.NewTimer(p.interval, "poller", "steady")
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	id, err := p.api.ResolveIdentity(ctx)
	p.metrics.cycle(err)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn(ctx, "get user info failed, skipping cycle", slog.Error(err))
		return
	}
	if err := p.emitter.Current(p.clock.Now(), *id); err != nil {
		p.logger.Warn(ctx, "emit current state", slog.Error(err))
	}
}
