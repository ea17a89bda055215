package interview

import (
	"context"
	"fmt"
	"strings"

	"github.com/skillgate/screener/internal/ai"

	"go.uber.org/zap"
)

// JobSource resolves a job posting's description text.
type JobSource interface {
	GetDescription(ctx context.Context, jobID string) (string, error)
}

// Orchestrator owns the session's skill queue: it extracts the skills once,
// delegates each to the evaluator, and records the returned verdicts.
type Orchestrator struct {
	jobs      JobSource
	extractor ai.SkillExtractor
	logger    *zap.Logger
}

func NewOrchestrator(jobs JobSource, extractor ai.SkillExtractor, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{jobs: jobs, extractor: extractor, logger: logger}
}

// Extract resolves the job posting and populates the skill queue. Runs once
// per session; any failure here is fatal, leaving the session failed and
// terminated so it can never reach the welcome.
func (o *Orchestrator) Extract(ctx context.Context, s *Session) error {
	if s.State != StateExtracting {
		return fmt.Errorf("session %s: extraction already done (state %s)", s.ID, s.State)
	}

	description, err := o.jobs.GetDescription(ctx, s.JobID)
	if err != nil {
		return o.fail(s, err)
	}

	skills, err := o.extractor.ExtractSkills(ctx, description)
	if err != nil {
		return o.fail(s, err)
	}

	s.SkillQueue = skills
	s.State = StateWelcoming

	o.logger.Info("skills extracted",
		zap.String("session_id", s.ID),
		zap.String("job_id", s.JobID),
		zap.Strings("skills", skills),
	)
	return nil
}

func (o *Orchestrator) fail(s *Session, err error) error {
	s.State = StateFailed
	s.Terminated = true
	o.logger.Error("skill extraction failed, session cannot proceed",
		zap.String("session_id", s.ID),
		zap.String("job_id", s.JobID),
		zap.Error(err),
	)
	return fmt.Errorf("session %s job %q: %w: %v", s.ID, s.JobID, ErrExtractionFailed, err)
}

// Welcome emits the one-time greeting and moves on to dispatching. It is not
// repeated when the orchestrator regains the turn later.
func (o *Orchestrator) Welcome(s *Session) string {
	s.State = StateDispatching
	return fmt.Sprintf(
		"Welcome! This screening covers %d skill(s): %s. "+
			"For each skill I will ask three questions of varying difficulty. "+
			"Short, focused answers are best. Are you ready to begin?",
		len(s.SkillQueue), strings.Join(s.SkillQueue, ", "),
	)
}

// Dispatch picks a remaining skill and hands it to the evaluator. When no
// skills remain the session is done. Which remaining skill is chosen is not
// guaranteed.
func (o *Orchestrator) Dispatch(s *Session) (*Handoff, bool) {
	skill := s.NextUnevaluated()
	if skill == nil {
		s.State = StateDone
		s.Terminated = true
		o.logger.Info("screening complete",
			zap.String("session_id", s.ID),
			zap.Int("skills_evaluated", len(s.Evaluations)),
		)
		return nil, true
	}

	s.State = StateAwaitingVerdict
	o.logger.Debug("dispatching skill",
		zap.String("session_id", s.ID),
		zap.String("skill", *skill),
	)

	h := NewDispatch(*skill)
	return &h, false
}

// Record appends the evaluator's completed evaluation exactly once.
func (o *Orchestrator) Record(s *Session, ev SkillEvaluation) error {
	s.State = StateRecordingVerdict
	if err := s.RecordVerdict(ev); err != nil {
		return err
	}
	s.State = StateDispatching

	o.logger.Info("verdict recorded",
		zap.String("session_id", s.ID),
		zap.String("skill", ev.Skill),
		zap.String("verdict", string(ev.Verdict)),
	)
	return nil
}
