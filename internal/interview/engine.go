package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// sentinel is the input that terminates a session from any state, carried
// over from the original screening flow.
const sentinel = "bye"

// Engine is the turn API: one human input produces exactly one state
// transition and one response. All mutation happens inside the store's
// update callback, so a failed turn leaves the session in its pre-turn state
// and concurrent turns on the same session are serialized.
type Engine struct {
	store        SessionStore
	orchestrator *Orchestrator
	evaluator    *Evaluator
	coordinator  *Coordinator
	logger       *zap.Logger
}

func NewEngine(store SessionStore, orchestrator *Orchestrator, evaluator *Evaluator, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:        store,
		orchestrator: orchestrator,
		evaluator:    evaluator,
		coordinator:  &Coordinator{},
		logger:       logger,
	}
}

// StartSession creates the session if it does not exist yet.
func (e *Engine) StartSession(ctx context.Context, sessionID, jobID string) error {
	err := e.store.Create(ctx, NewSession(sessionID, jobID))
	if errors.Is(err, ErrSessionExists) {
		return nil
	}
	return err
}

// Advance drives one turn. done reports that the session reached its terminal
// state; further input is not accepted.
func (e *Engine) Advance(ctx context.Context, sessionID, humanInput string) (string, bool, error) {
	var reply string
	var done bool
	var turnErr error

	err := e.store.Update(ctx, sessionID, func(s *Session) error {
		if s.Terminated {
			done = true
			if s.State == StateFailed {
				reply = "This screening could not be completed. Thank you for your time!"
			} else {
				reply = "This screening has already finished. Thank you for your time!"
			}
			return nil
		}

		if strings.EqualFold(strings.TrimSpace(humanInput), sentinel) {
			e.terminate(s)
			done = true
			reply = "Understood, ending the screening here. Thank you for your time!"
			return nil
		}

		switch s.ActiveRole {
		case RoleOrchestrator:
			return e.orchestratorTurn(ctx, s, &reply, &done, &turnErr)
		case RoleEvaluator:
			return e.evaluatorTurn(ctx, s, humanInput, &reply, &done)
		default:
			return fmt.Errorf("session %s: unknown active role %q", s.ID, s.ActiveRole)
		}
	})
	if err != nil {
		return "", false, err
	}
	if turnErr != nil {
		return "", false, turnErr
	}

	return reply, done, nil
}

// RecordVerdict persists a final verdict for a skill, rejecting duplicates.
func (e *Engine) RecordVerdict(ctx context.Context, sessionID, skill string, verdict bool) error {
	return e.store.Update(ctx, sessionID, func(s *Session) error {
		v := VerdictFail
		if verdict {
			v = VerdictPass
		}
		return s.RecordVerdict(SkillEvaluation{Skill: skill, Verdict: v})
	})
}

// NextUnevaluatedSkill reports one remaining skill, or nil once every queued
// skill has a recorded verdict.
func (e *Engine) NextUnevaluatedSkill(ctx context.Context, sessionID string) (*string, error) {
	s, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.NextUnevaluated(), nil
}

// Session returns a snapshot of the session state.
func (e *Engine) Session(ctx context.Context, sessionID string) (*Session, error) {
	return e.store.Get(ctx, sessionID)
}

func (e *Engine) orchestratorTurn(ctx context.Context, s *Session, reply *string, done *bool, turnErr *error) error {
	switch s.State {
	case StateExtracting:
		if err := e.orchestrator.Extract(ctx, s); err != nil {
			// The failed session state must commit even though the turn
			// errors, otherwise a retry could still reach the welcome.
			if errors.Is(err, ErrExtractionFailed) {
				*turnErr = err
				return nil
			}
			return err
		}
		*reply = e.orchestrator.Welcome(s)
		return nil
	case StateDispatching:
		return e.dispatch(s, reply, done)
	default:
		return fmt.Errorf("session %s: orchestrator cannot act in state %s", s.ID, s.State)
	}
}

func (e *Engine) evaluatorTurn(ctx context.Context, s *Session, answer string, reply *string, done *bool) error {
	next, handoff, err := e.evaluator.HandleAnswer(ctx, s, answer)
	if err != nil {
		return err
	}

	if handoff == nil {
		*reply = next
		return nil
	}

	// Ladder finished: hand control back, record the verdict, and keep the
	// turn moving by dispatching the next skill in the same response.
	payload, err := e.coordinator.ToOrchestrator(s, *handoff)
	if err != nil {
		return err
	}

	ev, err := e.evaluator.Finish(s)
	if err != nil {
		return err
	}
	if ev.Skill != payload.Skill {
		return fmt.Errorf("session %s: verdict for %q while ladder holds %q: %w",
			s.ID, payload.Skill, ev.Skill, ErrMalformedHandoff)
	}
	if ev.Passed() != *payload.Passed {
		return fmt.Errorf("session %s skill %q: handoff result disagrees with the evaluation: %w",
			s.ID, ev.Skill, ErrMalformedHandoff)
	}

	if err := e.orchestrator.Record(s, ev); err != nil {
		return err
	}

	return e.dispatch(s, reply, done)
}

// dispatch either opens the next skill's ladder or closes the session.
func (e *Engine) dispatch(s *Session, reply *string, done *bool) error {
	handoff, finished := e.orchestrator.Dispatch(s)
	if finished {
		*reply = e.summary(s)
		*done = true
		return nil
	}

	payload, err := e.coordinator.ToEvaluator(s, *handoff)
	if err != nil {
		return err
	}

	question := e.evaluator.Begin(s, payload.Skill)
	*reply = fmt.Sprintf("Let's cover %s.\n\n%s", payload.Skill, question)
	return nil
}

func (e *Engine) terminate(s *Session) {
	s.State = StateDone
	s.Terminated = true
	s.ActiveRole = RoleOrchestrator
	s.Ladder = nil
	e.logger.Info("session terminated by candidate",
		zap.String("session_id", s.ID),
		zap.Int("skills_evaluated", len(s.Evaluations)),
	)
}

// summary is the closing message. Verdicts are disclosed only here, once the
// whole screening is over.
func (e *Engine) summary(s *Session) string {
	var b strings.Builder
	b.WriteString("That completes the screening, thank you for your time! Results:\n")
	for _, ev := range s.Evaluations {
		b.WriteString(fmt.Sprintf("  %s: %s\n", ev.Skill, ev.Verdict))
	}
	return strings.TrimRight(b.String(), "\n")
}
