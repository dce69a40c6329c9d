package recruit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/pnw-recruiter/internal/config"
	"github.com/xonecas/pnw-recruiter/internal/pnw"
	"github.com/xonecas/pnw-recruiter/internal/store"
)

// Ledger records and answers when nations were last contacted.
type Ledger interface {
	LastContactTime(ctx context.Context, nationID int64) (time.Time, bool, error)
	RecordContact(ctx context.Context, nationID int64) error
	RecordRound(ctx context.Context, r store.Round) error
}

// Game is the remote side of a round: the nation listing and the messaging session.
type Game interface {
	FetchNations(ctx context.Context) ([]pnw.Nation, error)
	NewSession() *pnw.Session
}

// Engine runs recruitment rounds. Rounds never overlap.
type Engine struct {
	settings *config.Settings
	game     Game
	ledger   Ledger
	bus      *EventBus
	renderer *Renderer

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	mu    sync.RWMutex
	state RoundState
	last  *RoundSummary
}

// Option configures an Engine.
type Option func(*Engine)

// WithEventBus publishes round events to bus.
func WithEventBus(bus *EventBus) Option {
	return func(e *Engine) {
		e.bus = bus
	}
}

// WithClock replaces the clock used for recency checks and summaries.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithSleep replaces the function used for the send delay and the wait between rounds.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Engine) {
		e.sleep = sleep
	}
}

// NewEngine creates an engine. s must not be modified afterwards.
func NewEngine(s *config.Settings, game Game, ledger Ledger, opts ...Option) *Engine {
	e := &Engine{
		settings: s,
		game:     game,
		ledger:   ledger,
		renderer: NewRenderer(s.Msg.Sanitize),
		now:      time.Now,
		sleep:    sleepContext,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the phase of the round in progress, or idle.
func (e *Engine) State() RoundState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// LastRound returns the most recently completed round, if any.
func (e *Engine) LastRound() (RoundSummary, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.last == nil {
		return RoundSummary{}, false
	}
	return *e.last, true
}

func (e *Engine) setState(state RoundState) {
	e.mu.Lock()
	e.state = state
	e.mu.Unlock()
}

// Run executes rounds until ctx is cancelled, sleeping the configured frequency between them.
// A failed round is logged and retried at the next scheduled round.
func (e *Engine) Run(ctx context.Context) error {
	for {
		if _, err := e.RunRound(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error().Err(err).Msg("Recruitment round aborted")
		}

		log.Debug().Dur("frequency", e.settings.Frequency()).Msg("Waiting for next round")
		if err := e.sleep(ctx, e.settings.Frequency()); err != nil {
			return nil
		}
	}
}

// RunRound executes one fetch, filter, authenticate, send cycle.
// Send failures are counted and do not abort the round. Fetch and ledger failures do.
func (e *Engine) RunRound(ctx context.Context) (summary RoundSummary, err error) {
	summary = RoundSummary{
		ID:        uuid.NewString(),
		StartedAt: e.now(),
	}
	logger := log.With().Str("round", summary.ID).Logger()

	logger.Info().Time("at", summary.StartedAt).Msg("Recruitment round starting")
	e.publish(Event{Type: EventRoundStarted, RoundID: summary.ID})

	defer func() {
		summary.FinishedAt = e.now()
		summary.Err = err
		e.finish(ctx, summary)
	}()

	e.setState(StateFetching)
	nations, err := e.game.FetchNations(ctx)
	if err != nil {
		return summary, fmt.Errorf("fetch nations: %w", err)
	}
	summary.Fetched = len(nations)
	logger.Info().Int("nations", len(nations)).Msg("<-- Nations API")

	e.setState(StateFiltering)
	targets, err := e.Filter(ctx, nations)
	if err != nil {
		return summary, fmt.Errorf("filter nations: %w", err)
	}
	summary.Eligible = len(targets)

	e.setState(StateAuthenticating)
	sess := e.game.NewSession()
	defer sess.Close()

	loginData := LoginData{}
	if err := sess.Login(ctx, e.settings.Sec.User, e.settings.Sec.Pass); err != nil {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		// Not round-fatal: each send will fail and be counted on its own.
		loginData.Error = err.Error()
		logger.Warn().Err(err).Msg("Login request failed, attempting sends anyway")
	}
	loginData.Authenticated = sess.Authenticated()
	if !loginData.Authenticated {
		logger.Warn().Msg("Login set no session cookie, messages may not be delivered")
	}
	logger.Info().Int("targets", len(targets)).Msg("--> LOGIN and start nation sweep")
	e.publish(Event{Type: EventLogin, RoundID: summary.ID, Data: loginData})

	e.setState(StateSending)
	for _, n := range targets {
		if err := e.sleep(ctx, e.settings.Delay()); err != nil {
			return summary, err
		}

		sendErr := sess.SendMessage(ctx, pnw.Message{
			Receiver: n.Leader,
			Subject:  e.renderer.Render(e.settings.Msg.Subject, n),
			Body:     e.renderer.Render(e.settings.Msg.Content, n),
		})

		nlog := logger.With().Int64("nation_id", n.ID).Str("leader", n.Leader).Logger()
		if sendErr != nil {
			summary.Failed++
			nlog.Warn().Err(sendErr).Msg("Message failed")
			e.publish(Event{Type: EventMessageFailed, RoundID: summary.ID, NationID: n.ID, Leader: n.Leader, Data: ErrorData{Error: sendErr.Error()}})
		} else {
			summary.Sent++
			nlog.Info().Msg("--> Message sent")
			e.publish(Event{Type: EventMessageSent, RoundID: summary.ID, NationID: n.ID, Leader: n.Leader})
		}

		// Recorded whether or not the send worked, including when the round is being cancelled.
		if err := e.ledger.RecordContact(context.WithoutCancel(ctx), n.ID); err != nil {
			return summary, err
		}

		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
	}

	e.setState(StateDone)
	return summary, nil
}

// finish logs, stores and publishes the round outcome.
func (e *Engine) finish(ctx context.Context, summary RoundSummary) {
	logger := log.With().Str("round", summary.ID).Logger()

	round := store.Round{
		ID:         summary.ID,
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
		Fetched:    summary.Fetched,
		Eligible:   summary.Eligible,
		Sent:       summary.Sent,
		Failed:     summary.Failed,
	}

	if summary.Err != nil {
		round.Error = summary.Err.Error()
		if !errors.Is(summary.Err, context.Canceled) {
			e.publish(Event{Type: EventRoundFailed, RoundID: summary.ID, Data: summary})
		}
	} else {
		logger.Info().
			Int("fetched", summary.Fetched).
			Int("eligible", summary.Eligible).
			Int("sent", summary.Sent).
			Int("failed", summary.Failed).
			Dur("duration", summary.Duration()).
			Msgf("Recruitment round finished with %d failure(s)", summary.Failed)
		e.publish(Event{Type: EventRoundFinished, RoundID: summary.ID, Data: summary})
	}

	if err := e.ledger.RecordRound(context.WithoutCancel(ctx), round); err != nil {
		logger.Warn().Err(err).Msg("Failed to record round history")
	}

	e.mu.Lock()
	e.state = StateIdle
	e.last = &summary
	e.mu.Unlock()
}

func (e *Engine) publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = e.now()
	}
	e.bus.Publish(event)
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
