package interview

import (
	"context"
	"fmt"
)

// Role identifies which side of the handoff protocol currently owns the turn.
type Role string

const (
	RoleOrchestrator Role = "orchestrator"
	RoleEvaluator    Role = "evaluator"
)

// OrchestratorState tracks the session-level state machine.
type OrchestratorState string

const (
	StateExtracting       OrchestratorState = "extracting"
	StateWelcoming        OrchestratorState = "welcoming"
	StateDispatching      OrchestratorState = "dispatching_skill"
	StateAwaitingVerdict  OrchestratorState = "awaiting_verdict"
	StateRecordingVerdict OrchestratorState = "recording_verdict"
	StateDone             OrchestratorState = "done"
	StateFailed           OrchestratorState = "failed"
)

// LadderState tracks the per-skill evaluator state machine.
type LadderState string

const (
	LadderAwaitingQuestion LadderState = "awaiting_question"
	LadderAwaitingAnswer   LadderState = "awaiting_answer"
	LadderJudging          LadderState = "judging"
	LadderAdapting         LadderState = "adapting_difficulty"
	LadderTerminal         LadderState = "terminal"
)

// Verdict is the tri-state outcome of a skill evaluation.
type Verdict string

const (
	VerdictPending Verdict = "pending"
	VerdictPass    Verdict = "pass"
	VerdictFail    Verdict = "fail"
)

// ladderAttempts is the fixed number of questions asked per skill.
const ladderAttempts = 3

// QuestionAttempt is one asked question with the candidate's answer and the
// judge's call. Immutable once recorded.
type QuestionAttempt struct {
	Difficulty Difficulty
	Question   string
	Answer     string
	Correct    bool
}

// SkillEvaluation is the outcome of one skill's three-question ladder.
type SkillEvaluation struct {
	Skill    string
	Attempts []QuestionAttempt
	Verdict  Verdict
}

// Passed reports whether the evaluation ended in a pass verdict.
func (ev *SkillEvaluation) Passed() bool {
	return ev.Verdict == VerdictPass
}

// Ladder is the evaluator's persisted sub-state for the skill under
// evaluation. It exists only while the evaluator role is active.
type Ladder struct {
	Skill      string
	State      LadderState
	Difficulty Difficulty
	Question   string
	Attempts   []QuestionAttempt
}

// Session is one candidate screening. Mutated only through the session
// store's update callback, which serializes turns on the same session.
type Session struct {
	ID          string
	JobID       string
	SkillQueue  []string
	Evaluations []SkillEvaluation
	ActiveRole  Role
	State       OrchestratorState
	Ladder      *Ladder
	Terminated  bool
}

// NewSession returns a session poised at the extraction state.
func NewSession(id, jobID string) *Session {
	return &Session{
		ID:         id,
		JobID:      jobID,
		ActiveRole: RoleOrchestrator,
		State:      StateExtracting,
	}
}

// NextUnevaluated reports one skill from the queue that has no recorded
// verdict, or nil when the queue is exhausted. Callers must not rely on which
// remaining skill is chosen.
func (s *Session) NextUnevaluated() *string {
	for _, skill := range s.SkillQueue {
		if s.evaluationOf(skill) == nil {
			out := skill
			return &out
		}
	}
	return nil
}

// RecordVerdict appends a completed evaluation. A second verdict for the same
// skill is a protocol bug and is rejected without mutation.
func (s *Session) RecordVerdict(ev SkillEvaluation) error {
	if existing := s.evaluationOf(ev.Skill); existing != nil {
		return fmt.Errorf("session %s skill %q: %w", s.ID, ev.Skill, ErrDuplicateVerdict)
	}
	s.Evaluations = append(s.Evaluations, ev)
	return nil
}

func (s *Session) evaluationOf(skill string) *SkillEvaluation {
	for i := range s.Evaluations {
		if s.Evaluations[i].Skill == skill {
			return &s.Evaluations[i]
		}
	}
	return nil
}

// Clone returns a deep copy so callers can never alias live session state.
func (s *Session) Clone() *Session {
	out := *s
	out.SkillQueue = append([]string(nil), s.SkillQueue...)
	out.Evaluations = make([]SkillEvaluation, len(s.Evaluations))
	for i, ev := range s.Evaluations {
		ev.Attempts = append([]QuestionAttempt(nil), ev.Attempts...)
		out.Evaluations[i] = ev
	}
	if s.Ladder != nil {
		ladder := *s.Ladder
		ladder.Attempts = append([]QuestionAttempt(nil), s.Ladder.Attempts...)
		out.Ladder = &ladder
	}
	return &out
}

// SessionStore is keyed persistence for sessions. Update runs the mutation
// under the session's lock; when the callback fails the session must keep its
// previous state.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) error
}
