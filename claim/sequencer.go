package claim

import (
	"context"
	"errors"
	"sync"

	"github.com/moyoez/claimdesk/metrics"
	"github.com/moyoez/claimdesk/tool"
	"github.com/moyoez/claimdesk/transfer"
	"github.com/moyoez/claimdesk/types"
)

var (
	ErrNotReady           = errors.New("both label and damage files are required")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrErrorPending       = errors.New("dismiss the previous error before submitting again")
	ErrNotStarted         = errors.New("no submission has been started")
)

const (
	OutcomeClaimable    = "claimable"
	OutcomeNotClaimable = "not_claimable"
	OutcomeIneligible   = "ineligible"
	OutcomeError        = "error"
)

// Backend is the pair of calls a submission makes, in order.
type Backend interface {
	VerifyDate(ctx context.Context, label types.MediaFile) (*types.VerificationResult, error)
	AssessDamage(ctx context.Context, files []types.MediaFile, verification *types.VerificationResult) (*types.ClaimResult, error)
}

// Snapshot is the sequencer state handed to listeners and API callers.
type Snapshot struct {
	State   types.SubmissionState `json:"state"`
	Outcome *types.Outcome        `json:"outcome,omitempty"`
	Error   string                `json:"error,omitempty"`
}

type Listener func(Snapshot)

type Options struct {
	Model    string
	USDToTHB float64
}

// Sequencer runs verify then assess, never both at once and never the
// second without the first succeeding eligible.
type Sequencer struct {
	backend Backend
	opts    Options

	mu        sync.Mutex
	state     types.SubmissionState
	outcome   *types.Outcome
	errMsg    string
	listeners []Listener

	// set by Begin, taken by Run
	pendingLabel  *types.MediaFile
	pendingDamage []types.MediaFile
}

func NewSequencer(backend Backend, opts Options) *Sequencer {
	return &Sequencer{
		backend: backend,
		opts:    opts,
		state:   types.StateIdle,
	}
}

// OnTransition registers l; it is called after every state change.
func (s *Sequencer) OnTransition(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Sequencer) State() types.SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Sequencer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Sequencer) snapshotLocked() Snapshot {
	return Snapshot{State: s.state, Outcome: s.outcome, Error: s.errMsg}
}

// InFlight reports Verifying or Assessing.
func (s *Sequencer) InFlight() bool {
	st := s.State()
	return st == types.StateVerifying || st == types.StateAssessing
}

// Submit runs one submission to completion: Begin then Run.
func (s *Sequencer) Submit(ctx context.Context, labels, damage []types.MediaFile) (*types.Outcome, error) {
	if err := s.Begin(labels, damage); err != nil {
		return nil, err
	}
	return s.Run(ctx)
}

// Begin checks the submit guards and moves to Verifying. Only the first label
// file is kept. The backend calls happen in Run, which may be on another
// goroutine; a second Begin before that Run finishes gets ErrSubmissionInFlight.
func (s *Sequencer) Begin(labels, damage []types.MediaFile) error {
	s.mu.Lock()
	switch s.state {
	case types.StateVerifying, types.StateAssessing:
		s.mu.Unlock()
		return ErrSubmissionInFlight
	case types.StateError:
		s.mu.Unlock()
		return ErrErrorPending
	}
	if len(labels) == 0 || len(damage) == 0 {
		s.mu.Unlock()
		return ErrNotReady
	}
	label := labels[0]
	s.pendingLabel = &label
	s.pendingDamage = append([]types.MediaFile(nil), damage...)
	s.outcome = nil
	s.errMsg = ""
	snap := s.setLocked(types.StateVerifying)
	s.mu.Unlock()
	s.emit(snap)
	return nil
}

// Run makes the backend calls for the submission Begin started. The returned
// outcome is also kept for Snapshot.
func (s *Sequencer) Run(ctx context.Context) (*types.Outcome, error) {
	s.mu.Lock()
	label, damage := s.pendingLabel, s.pendingDamage
	s.pendingLabel, s.pendingDamage = nil, nil
	s.mu.Unlock()
	if label == nil {
		return nil, ErrNotStarted
	}

	tool.DefaultLogger.Infof("[Sequencer] Verifying production date from %s", label.Name)
	verification, err := s.backend.VerifyDate(ctx, *label)
	if err != nil {
		return nil, s.fail(err)
	}
	if verification == nil {
		return nil, s.fail(transfer.ErrEmptyResponse)
	}
	if verification.TokenUsage != nil {
		metrics.TokensUsed(s.opts.Model, verification.TokenUsage.InputTokens, verification.TokenUsage.OutputTokens)
	}

	outcome := &types.Outcome{
		Verification: verification,
		Eligible:     verification.Eligible(),
		DateBanner:   NewDateBanner(verification),
	}
	if !outcome.Eligible {
		tool.DefaultLogger.Infof("[Sequencer] Status %q, skipping damage assessment", verification.English.Status)
		metrics.SubmissionFinished(OutcomeIneligible)
		s.finish(outcome)
		return outcome, nil
	}

	partial := *outcome
	s.mu.Lock()
	s.outcome = &partial
	snap := s.setLocked(types.StateAssessing)
	s.mu.Unlock()
	s.emit(snap)

	tool.DefaultLogger.Infof("[Sequencer] Assessing %d damage file(s)", len(damage))
	result, err := s.backend.AssessDamage(ctx, damage, verification)
	if err != nil {
		return nil, s.fail(err)
	}
	if result == nil {
		return nil, s.fail(transfer.ErrEmptyResponse)
	}
	outcome.Claim = result
	outcome.Claimable = result.Claimable
	outcome.Cost = CostFromClaim(result, s.opts.Model, s.opts.USDToTHB)
	if outcome.Cost != nil {
		metrics.TokensUsed(s.opts.Model, outcome.Cost.InputTokens, outcome.Cost.OutputTokens)
	}
	if outcome.Claimable {
		metrics.SubmissionFinished(OutcomeClaimable)
	} else {
		metrics.SubmissionFinished(OutcomeNotClaimable)
	}
	s.finish(outcome)
	return outcome, nil
}

func (s *Sequencer) finish(outcome *types.Outcome) {
	s.mu.Lock()
	s.outcome = outcome
	snap := s.setLocked(types.StateDone)
	s.mu.Unlock()
	s.emit(snap)
}

// fail moves to Error with the message the banner should show and returns err.
func (s *Sequencer) fail(err error) error {
	msg := DisplayMessage(err)
	tool.DefaultLogger.Warnf("[Sequencer] Submission failed: %v", err)
	metrics.SubmissionFinished(OutcomeError)
	s.mu.Lock()
	s.outcome = nil
	s.errMsg = msg
	snap := s.setLocked(types.StateError)
	s.mu.Unlock()
	s.emit(snap)
	return err
}

// Dismiss leaves Error for Idle without resubmitting. It reports whether the
// state changed.
func (s *Sequencer) Dismiss() bool {
	s.mu.Lock()
	if s.state != types.StateError {
		s.mu.Unlock()
		return false
	}
	s.errMsg = ""
	snap := s.setLocked(types.StateIdle)
	s.mu.Unlock()
	s.emit(snap)
	return true
}

// Reset drops a finished outcome. In-flight submissions are left alone.
func (s *Sequencer) Reset() bool {
	s.mu.Lock()
	if s.state != types.StateDone && s.state != types.StateError {
		s.mu.Unlock()
		return false
	}
	s.outcome = nil
	s.errMsg = ""
	snap := s.setLocked(types.StateIdle)
	s.mu.Unlock()
	s.emit(snap)
	return true
}

func (s *Sequencer) setLocked(state types.SubmissionState) Snapshot {
	s.state = state
	return s.snapshotLocked()
}

func (s *Sequencer) emit(snap Snapshot) {
	s.mu.Lock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, l := range listeners {
		l(snap)
	}
}

// DisplayMessage is the banner text for err: the backend's own message when
// there is one.
func DisplayMessage(err error) string {
	var be *transfer.BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return err.Error()
}
