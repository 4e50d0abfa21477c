package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// State is the session controller state.
type State int

const (
	// Scanning pulls samples and grows the window.
	Scanning State = iota
	// CandidateFound is the transient state while a qualifying window is
	// being matched.
	CandidateFound
	// AwaitingDecision waits for the decision provider to resolve a
	// candidate that stored knowledge could not.
	AwaitingDecision
	// Accepted is terminal: a candidate was accepted.
	Accepted
	// Exhausted is terminal: the stream ended or a cap was reached without an
	// accepted candidate. This is an expected outcome, not an error.
	Exhausted
	// Failed is terminal: the source was unreadable, delivered out-of-order
	// samples, or the session was cancelled.
	Failed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case CandidateFound:
		return "candidate_found"
	case AwaitingDecision:
		return "awaiting_decision"
	case Accepted:
		return "accepted"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// DecisionProvider resolves candidates that neither the reference set nor the
// exclusion set can resolve. Returning ErrInvalidDecision makes the session
// ask again; it never defaults to accept.
type DecisionProvider interface {
	Decide(ctx context.Context, c Candidate) (bool, error)
}

// DecisionFunc adapts a function to the DecisionProvider interface.
type DecisionFunc func(ctx context.Context, c Candidate) (bool, error)

// Decide calls f.
func (f DecisionFunc) Decide(ctx context.Context, c Candidate) (bool, error) {
	return f(ctx, c)
}

// AutoAccept accepts the first candidate unconditionally. Used in automated
// mode where a reference set already vouches for the identity.
var AutoAccept = DecisionFunc(func(context.Context, Candidate) (bool, error) {
	return true, nil
})

// Config carries all tunables of a scan session. The zero value is not
// usable; NewSession fills unset fields with the defaults observed to work
// well for talking-head footage.
type Config struct {
	TargetDuration float64       // clip length in seconds (default 8)
	SampleRate     float64       // analyzed frames per second (default 5)
	Tolerance      float64       // max embedding distance for one identity (default 0.45)
	MinValidRatio  float64       // min fraction of single-face frames in a window (default 0.9)
	StartOffset    float64       // skip samples before this timestamp
	MaxMediaTime   float64       // stop scanning past this timestamp (default 1800)
	MaxWallClock   time.Duration // optional wall-clock cap, 0 = none
	ResumeEpsilon  float64       // gap after a rejected candidate (default 0.1)
}

func (c Config) withDefaults() Config {
	if c.TargetDuration <= 0 {
		c.TargetDuration = 8
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 5
	}
	if c.Tolerance <= 0 {
		c.Tolerance = 0.45
	}
	if c.MinValidRatio <= 0 {
		c.MinValidRatio = 0.9
	}
	if c.MaxMediaTime <= 0 {
		c.MaxMediaTime = 1800
	}
	if c.ResumeEpsilon <= 0 {
		c.ResumeEpsilon = 0.1
	}
	return c
}

// Result is the outcome of a session. Candidate is populated only for
// Accepted results.
type Result struct {
	State     State
	Candidate Candidate
}

// Session drives the scan/accept/reject loop over a sample source. It is
// single-threaded and pull-based: it blocks on the source for the next sample
// and on the decision provider when a candidate needs review. Both waits are
// cancellable through the context, and cancellation fails the session.
//
// At most one candidate is pending at any time; the exclusion set grows only
// when the decision provider rejects one.
type Session struct {
	// Decider resolves undecided candidates. Defaults to AutoAccept.
	Decider DecisionProvider
	// References is the known target identity, may be nil or empty.
	References VectorSet
	// Exclusions collects rejected identities, may be nil in automated mode.
	Exclusions MutableVectorSet
	// Logger receives per-transition debug logs. Defaults to a no-op logger.
	Logger zerolog.Logger
	// OnTransition, if set, observes every state change.
	OnTransition func(State)

	cfg    Config
	source SampleSource
	window *Window
	eval   Evaluator
	state  State
}

// NewSession creates a session over the given source with defaults applied to
// unset config fields.
func NewSession(cfg Config, source SampleSource) *Session {
	cfg = cfg.withDefaults()
	return &Session{
		Decider: AutoAccept,
		Logger:  zerolog.Nop(),
		cfg:     cfg,
		source:  source,
		window:  NewWindow(cfg.TargetDuration),
		eval:    NewEvaluator(cfg.TargetDuration, cfg.SampleRate, cfg.MinValidRatio, cfg.Tolerance),
		state:   Scanning,
	}
}

// State returns the current controller state.
func (s *Session) State() State {
	return s.state
}

func (s *Session) transition(next State) {
	if next == s.state {
		return
	}
	s.Logger.Debug().
		Stringer("from", s.state).
		Stringer("to", next).
		Msg("session transition")
	s.state = next
	if s.OnTransition != nil {
		s.OnTransition(next)
	}
}

// Run scans until a candidate is accepted, the stream or a cap is exhausted,
// or a fatal condition occurs. The returned error is non-nil only for the
// Failed state; Exhausted is reported through the result.
func (s *Session) Run(ctx context.Context) (Result, error) {
	started := time.Now()
	scanFrom := s.cfg.StartOffset
	frames := 0
	matcher := Matcher{
		Tolerance:  s.cfg.Tolerance,
		References: s.References,
		Exclusions: s.Exclusions,
	}

	for {
		if err := ctx.Err(); err != nil {
			s.transition(Failed)
			return Result{State: Failed}, fmt.Errorf("session cancelled: %w", err)
		}
		if s.cfg.MaxWallClock > 0 && time.Since(started) > s.cfg.MaxWallClock {
			s.Logger.Info().Dur("elapsed", time.Since(started)).Msg("wall-clock cap reached")
			s.transition(Exhausted)
			return Result{State: Exhausted}, nil
		}

		sample, err := s.source.Next(ctx)
		if errors.Is(err, ErrEndOfStream) {
			s.transition(Exhausted)
			return Result{State: Exhausted}, nil
		}
		if err != nil {
			s.transition(Failed)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return Result{State: Failed}, fmt.Errorf("session cancelled: %w", err)
			}
			return Result{State: Failed}, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
		}

		if sample.Timestamp > s.cfg.MaxMediaTime {
			s.Logger.Info().Float64("timestamp", sample.Timestamp).Msg("media time cap reached")
			s.transition(Exhausted)
			return Result{State: Exhausted}, nil
		}

		frames++
		if sample.Timestamp < scanFrom {
			continue
		}

		if err := s.window.Append(sample); err != nil {
			s.transition(Failed)
			return Result{State: Failed}, fmt.Errorf("append sample at %.3fs: %w", sample.Timestamp, err)
		}

		if !s.eval.Qualifies(s.window) {
			continue
		}

		s.transition(CandidateFound)
		cand := newCandidate(s.window, s.cfg.TargetDuration, frames, time.Since(started))
		s.Logger.Info().
			Float64("start", cand.Start).
			Float64("end", cand.End).
			Int("frames", cand.FramesAnalyzed).
			Msg("qualifying window found")

		switch matcher.Match(cand) {
		case Accept:
			s.transition(Accepted)
			return Result{State: Accepted, Candidate: cand}, nil

		case Reject:
			s.Logger.Info().Float64("end", cand.End).Msg("candidate rejected by identity sets")
			scanFrom = s.resumeAfter(cand)

		case Undecided:
			accepted, err := s.awaitDecision(ctx, cand)
			if err != nil {
				s.transition(Failed)
				return Result{State: Failed}, err
			}
			if accepted {
				s.transition(Accepted)
				return Result{State: Accepted, Candidate: cand}, nil
			}
			if s.Exclusions != nil && cand.Representative != nil {
				if err := s.Exclusions.Add(cand.Representative); err != nil {
					s.transition(Failed)
					return Result{State: Failed}, fmt.Errorf("record rejected identity: %w", err)
				}
			}
			s.Logger.Info().Float64("end", cand.End).Msg("candidate rejected by operator")
			scanFrom = s.resumeAfter(cand)
		}
	}
}

// awaitDecision asks the decision provider until it yields a usable answer.
// ErrInvalidDecision triggers a re-request; cancellation and other errors
// abort.
func (s *Session) awaitDecision(ctx context.Context, cand Candidate) (bool, error) {
	s.transition(AwaitingDecision)
	for {
		if err := ctx.Err(); err != nil {
			return false, fmt.Errorf("session cancelled: %w", err)
		}
		accepted, err := s.Decider.Decide(ctx, cand)
		if errors.Is(err, ErrInvalidDecision) {
			s.Logger.Warn().Msg("invalid decision response, asking again")
			continue
		}
		if err != nil {
			return false, fmt.Errorf("decision provider: %w", err)
		}
		return accepted, nil
	}
}

// resumeAfter clears the window and returns the timestamp scanning resumes
// from, strictly past the rejected candidate so the same window cannot be
// derived again.
func (s *Session) resumeAfter(cand Candidate) float64 {
	s.window.Reset()
	s.transition(Scanning)
	return cand.End + s.cfg.ResumeEpsilon
}
