package booking

import (
	"context"
	"errors"
	"time"

	"RoomBooker/pkg/shared"

	"github.com/rs/zerolog"
)

// DefaultIncrement is how far the slot pointer moves after each account.
const DefaultIncrement = 2 * time.Hour

// Request is the booking window handed to a run.
type Request struct {
	Start     time.Time
	End       time.Time
	Location  string
	Category  string
	Preferred string
}

// Booker books resource at slotStart using cred. A false result with a nil
// error means the portal never confirmed the booking.
type Booker interface {
	Book(ctx context.Context, cred shared.Credential, resource string, slotStart time.Time) (bool, error)
}

// Record is one successful booking handed to the Recorder.
type Record struct {
	Username   string
	BookedOn   time.Time
	SlotStart  time.Time
	SlotEnd    time.Time
	Location   string
	Category   string
	ResourceID string
}

// Recorder persists successful bookings. Errors are logged by the scheduler
// and never stop a run.
type Recorder interface {
	Append(rec Record) error
}

// State is where a run stands.
type State int

const (
	StateRunning State = iota
	StateExhausted
	StateWindowClosed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateExhausted:
		return "exhausted"
	case StateWindowClosed:
		return "window closed"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Scheduler walks accounts one at a time across a booking window.
type Scheduler struct {
	Booker    Booker
	Recorder  Recorder
	Increment time.Duration
	Metrics   *Metrics
	Logger    zerolog.Logger
	Now       func() time.Time

	// OnOutcome, if set, is called after every attempted account.
	OnOutcome func(shared.Outcome)
}

// NewScheduler returns a scheduler with the default increment and a silent logger.
func NewScheduler(booker Booker, recorder Recorder) *Scheduler {
	return &Scheduler{
		Booker:    booker,
		Recorder:  recorder,
		Increment: DefaultIncrement,
		Logger:    zerolog.Nop(),
		Now:       time.Now,
	}
}

// Run is a single pass over the accounts.
type Run struct {
	Request   Request
	Resource  string
	Current   time.Time
	Remaining []shared.Credential
	Outcomes  []shared.Outcome
	State     State
}

// NewRun positions the slot pointer at the start of the window.
func NewRun(req Request, resource string, accounts []shared.Credential) *Run {
	remaining := make([]shared.Credential, len(accounts))
	copy(remaining, accounts)

	return &Run{
		Request:   req,
		Resource:  resource,
		Current:   req.Start,
		Remaining: remaining,
		State:     StateRunning,
	}
}

// Skipped returns the accounts that were never attempted.
func (r *Run) Skipped() []shared.Credential {
	if r.State == StateRunning {
		return nil
	}
	return r.Remaining
}

// Run drives a run to a terminal state and returns it.
func (s *Scheduler) Run(ctx context.Context, req Request, resource string, accounts []shared.Credential) *Run {
	run := NewRun(req, resource, accounts)
	for run.State == StateRunning {
		s.Step(ctx, run)
	}
	return run
}

// Step processes the next account, or moves the run to a terminal state.
func (s *Scheduler) Step(ctx context.Context, run *Run) {
	if run.State != StateRunning {
		return
	}

	if len(run.Remaining) == 0 {
		run.State = StateExhausted
		return
	}

	if !run.Current.Before(run.Request.End) {
		run.State = StateWindowClosed
		s.Logger.Info().
			Time("slot", run.Current).
			Time("end", run.Request.End).
			Int("skipped", len(run.Remaining)).
			Msg("Booking window closed")
		if s.Metrics != nil {
			s.Metrics.WindowClosed()
		}
		return
	}

	if err := ctx.Err(); err != nil {
		run.State = StateCancelled
		s.Logger.Warn().Err(err).Int("skipped", len(run.Remaining)).Msg("Run cancelled")
		return
	}

	cred := run.Remaining[0]
	run.Remaining = run.Remaining[1:]

	outcome := s.attempt(ctx, run, cred)
	run.Outcomes = append(run.Outcomes, outcome)
	if s.OnOutcome != nil {
		s.OnOutcome(outcome)
	}

	// The pointer moves by a fixed step whatever the booking covered
	run.Current = run.Current.Add(s.increment())
}

func (s *Scheduler) attempt(ctx context.Context, run *Run, cred shared.Credential) shared.Outcome {
	log := s.Logger.With().Str("username", cred.Username).Str("resource", run.Resource).Time("slot", run.Current).Logger()
	log.Info().Msg("Booking")

	outcome := shared.Outcome{
		Username:  cred.Username,
		Resource:  run.Resource,
		SlotStart: run.Current,
	}

	ok, err := s.Booker.Book(ctx, cred, run.Resource, run.Current)
	switch {
	case err != nil:
		outcome.Err = err
		log.Error().Err(err).Msg("Booking failed")
	case !ok:
		outcome.Err = ErrNotConfirmed
		log.Warn().Msg("Booking not confirmed")
	default:
		outcome.Success = true
		log.Info().Msg("Booking successful")
		s.record(log, run, cred)
	}

	if s.Metrics != nil {
		s.Metrics.Attempt(outcome.Success)
	}
	return outcome
}

func (s *Scheduler) record(log zerolog.Logger, run *Run, cred shared.Credential) {
	if s.Recorder == nil {
		return
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	rec := Record{
		Username:   cred.Username,
		BookedOn:   now(),
		SlotStart:  run.Current,
		SlotEnd:    run.Request.End,
		Location:   run.Request.Location,
		Category:   run.Request.Category,
		ResourceID: run.Resource,
	}
	if err := s.Recorder.Append(rec); err != nil {
		log.Warn().Err(err).Msg("Failed to save booking metadata")
	}
}

func (s *Scheduler) increment() time.Duration {
	if s.Increment <= 0 {
		return DefaultIncrement
	}
	return s.Increment
}

// ErrNotConfirmed marks an attempt the portal did not confirm.
var ErrNotConfirmed = errors.New("booking not confirmed")
