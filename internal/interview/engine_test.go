package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// memStore mirrors the production store's contract: Update mutates a clone and
// commits it only when the callback succeeds.
type memStore struct {
	sessions map[string]*Session
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string]*Session{}}
}

func (m *memStore) Create(ctx context.Context, s *Session) error {
	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("session %s: %w", s.ID, ErrSessionExists)
	}
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *memStore) Get(ctx context.Context, id string) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return s.Clone(), nil
}

func (m *memStore) Update(ctx context.Context, id string, fn func(*Session) error) error {
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	working := s.Clone()
	if err := fn(working); err != nil {
		return err
	}
	m.sessions[id] = working
	return nil
}

func newTestEngine(judge *stubJudge, skills ...string) (*Engine, *memStore) {
	store := newMemStore()
	orchestrator := NewOrchestrator(
		&stubJobs{description: "backend role"},
		&stubExtractor{skills: skills},
		nil,
	)
	evaluator := NewEvaluator(&stubBank{}, judge, nil)
	return NewEngine(store, orchestrator, evaluator, nil), store
}

func advance(t *testing.T, e *Engine, sessionID, input string) (string, bool) {
	t.Helper()
	reply, done, err := e.Advance(context.Background(), sessionID, input)
	if err != nil {
		t.Fatalf("advance %q: %v", input, err)
	}
	return reply, done
}

func TestEngineFullScreening(t *testing.T) {
	t.Parallel()

	// Python: two of three correct, pass. SQL: one of three, fail.
	judge := &stubJudge{script: []bool{true, true, false, false, false, true}}
	engine, _ := newTestEngine(judge, "Python", "SQL")

	if err := engine.StartSession(context.Background(), "s1", "job-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	reply, done := advance(t, engine, "s1", "start")
	if done || !strings.Contains(reply, "Python, SQL") {
		t.Fatalf("expected welcome listing the skills, got %q (done=%v)", reply, done)
	}

	reply, done = advance(t, engine, "s1", "yes")
	if done || !strings.Contains(reply, "Let's cover Python.") {
		t.Fatalf("expected the first Python question, got %q (done=%v)", reply, done)
	}

	// Three Python answers; the third chains into the first SQL question.
	advance(t, engine, "s1", "python answer 1")
	advance(t, engine, "s1", "python answer 2")
	reply, done = advance(t, engine, "s1", "python answer 3")
	if done || !strings.Contains(reply, "Let's cover SQL.") {
		t.Fatalf("expected the hand-over to SQL, got %q (done=%v)", reply, done)
	}
	if strings.Contains(strings.ToLower(reply), "pass") {
		t.Fatalf("verdicts must not leak mid-screening: %q", reply)
	}

	advance(t, engine, "s1", "sql answer 1")
	advance(t, engine, "s1", "sql answer 2")
	reply, done = advance(t, engine, "s1", "sql answer 3")
	if !done {
		t.Fatal("expected the screening to finish after the last answer")
	}
	if !strings.Contains(reply, "Python: pass") || !strings.Contains(reply, "SQL: fail") {
		t.Fatalf("expected per-skill results in the closing message, got %q", reply)
	}

	s, err := engine.Session(context.Background(), "s1")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if !s.Terminated || s.State != StateDone {
		t.Fatalf("expected terminal session, state %s", s.State)
	}
	if len(s.Evaluations) != 2 {
		t.Fatalf("expected 2 evaluations, got %d", len(s.Evaluations))
	}
	if s.Evaluations[0].Skill != "Python" || s.Evaluations[0].Verdict != VerdictPass {
		t.Fatalf("unexpected first evaluation: %+v", s.Evaluations[0])
	}
	if s.Evaluations[1].Skill != "SQL" || s.Evaluations[1].Verdict != VerdictFail {
		t.Fatalf("unexpected second evaluation: %+v", s.Evaluations[1])
	}

	// The terminal session keeps answering but accepts no further input.
	reply, done = advance(t, engine, "s1", "one more thing")
	if !done || !strings.Contains(reply, "already finished") {
		t.Fatalf("expected the finished notice, got %q (done=%v)", reply, done)
	}
}

func TestEngineSentinelTerminates(t *testing.T) {
	t.Parallel()

	judge := &stubJudge{script: []bool{true}}
	engine, _ := newTestEngine(judge, "Python")

	if err := engine.StartSession(context.Background(), "s1", "job-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	advance(t, engine, "s1", "start")
	advance(t, engine, "s1", "yes")

	reply, done := advance(t, engine, "s1", "  ByE ")
	if !done || !strings.Contains(reply, "ending the screening") {
		t.Fatalf("expected sentinel to end the session, got %q (done=%v)", reply, done)
	}

	s, err := engine.Session(context.Background(), "s1")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if !s.Terminated || s.Ladder != nil {
		t.Fatal("expected terminated session with no open ladder")
	}
}

func TestEngineJudgeFailureKeepsState(t *testing.T) {
	t.Parallel()

	judge := &stubJudge{err: errors.New("model overloaded")}
	engine, store := newTestEngine(judge, "Python")

	if err := engine.StartSession(context.Background(), "s1", "job-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	advance(t, engine, "s1", "start")
	reply, _ := advance(t, engine, "s1", "yes")

	_, _, err := engine.Advance(context.Background(), "s1", "an answer")
	if !errors.Is(err, ErrJudgeUnavailable) {
		t.Fatalf("expected ErrJudgeUnavailable, got %v", err)
	}

	s := store.sessions["s1"]
	if s.Ladder == nil || s.Ladder.State != LadderAwaitingAnswer {
		t.Fatal("failed turn must leave the ladder awaiting the same answer")
	}
	if len(s.Ladder.Attempts) != 0 {
		t.Fatalf("failed turn must not record an attempt, got %d", len(s.Ladder.Attempts))
	}
	if !strings.Contains(reply, s.Ladder.Question) {
		t.Fatalf("pending question changed across the failed turn: %q", s.Ladder.Question)
	}

	// Once the judge recovers the same answer goes through.
	judge.err = nil
	judge.script = []bool{true, true, true}
	advance(t, engine, "s1", "an answer")
	s = store.sessions["s1"]
	if len(s.Ladder.Attempts) != 1 {
		t.Fatalf("expected 1 attempt after recovery, got %d", len(s.Ladder.Attempts))
	}
}

func TestEngineExtractionFailureIsFatal(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	jobSource := &stubJobs{err: errors.New("job feed down")}
	orchestrator := NewOrchestrator(jobSource, &stubExtractor{skills: []string{"Python"}}, nil)
	evaluator := NewEvaluator(&stubBank{}, &stubJudge{}, nil)
	engine := NewEngine(store, orchestrator, evaluator, nil)

	if err := engine.StartSession(context.Background(), "s1", "job-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	_, _, err := engine.Advance(context.Background(), "s1", "start")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if s := store.sessions["s1"]; s.State != StateFailed || !s.Terminated {
		t.Fatalf("failed extraction must mark the session failed, got state %s", s.State)
	}

	// Even with the job source repaired the session stays dead: it must never
	// reach the welcome.
	jobSource.err = nil
	jobSource.description = "backend role"
	reply, done := advance(t, engine, "s1", "start")
	if !done || !strings.Contains(reply, "could not be completed") {
		t.Fatalf("expected the failed session to refuse the turn, got %q (done=%v)", reply, done)
	}
	if s := store.sessions["s1"]; s.State != StateFailed || len(s.SkillQueue) != 0 {
		t.Fatalf("failed session advanced anyway: state %s, queue %v", s.State, s.SkillQueue)
	}
}

func TestEngineSessionIsolation(t *testing.T) {
	t.Parallel()

	judge := &stubJudge{script: []bool{true, true, true}}
	engine, store := newTestEngine(judge, "Python")

	for _, id := range []string{"s1", "s2"} {
		if err := engine.StartSession(context.Background(), id, "job-1"); err != nil {
			t.Fatalf("start %s: %v", id, err)
		}
	}

	advance(t, engine, "s1", "start")
	advance(t, engine, "s1", "yes")
	advance(t, engine, "s1", "answer 1")

	s2 := store.sessions["s2"]
	if s2.State != StateExtracting || s2.Ladder != nil || len(s2.Evaluations) != 0 {
		t.Fatalf("advancing s1 must not touch s2: %+v", s2)
	}
}

func TestEngineStartSessionIdempotent(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(&stubJudge{}, "Python")

	for i := 0; i < 2; i++ {
		if err := engine.StartSession(context.Background(), "s1", "job-1"); err != nil {
			t.Fatalf("start %d: %v", i+1, err)
		}
	}
}

func TestEngineRecordVerdictRejectsDuplicates(t *testing.T) {
	t.Parallel()

	engine, store := newTestEngine(&stubJudge{}, "Python", "SQL")
	if err := engine.StartSession(context.Background(), "s1", "job-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	advance(t, engine, "s1", "start")

	if err := engine.RecordVerdict(context.Background(), "s1", "Python", true); err != nil {
		t.Fatalf("record: %v", err)
	}
	err := engine.RecordVerdict(context.Background(), "s1", "Python", false)
	if !errors.Is(err, ErrDuplicateVerdict) {
		t.Fatalf("expected ErrDuplicateVerdict, got %v", err)
	}
	if n := len(store.sessions["s1"].Evaluations); n != 1 {
		t.Fatalf("expected 1 evaluation after the rejected duplicate, got %d", n)
	}

	next, err := engine.NextUnevaluatedSkill(context.Background(), "s1")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if next == nil || *next != "SQL" {
		t.Fatalf("expected SQL to remain unevaluated, got %v", next)
	}
}
