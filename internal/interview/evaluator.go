package interview

import (
	"context"
	"fmt"

	"github.com/skillgate/screener/internal/ai"

	"go.uber.org/zap"
)

// QuestionBank looks up a question for a topic at a difficulty level.
type QuestionBank interface {
	Get(topic string, difficulty Difficulty) (string, error)
}

// Evaluator runs the three-question difficulty-adaptive ladder for one skill.
// Its per-skill state lives in the session's Ladder so a turn can resume it.
type Evaluator struct {
	bank   QuestionBank
	judge  ai.AnswerJudge
	logger *zap.Logger
}

func NewEvaluator(bank QuestionBank, judge ai.AnswerJudge, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{bank: bank, judge: judge, logger: logger}
}

// Begin opens a ladder for the skill and returns the first question. The
// ladder always starts at medium difficulty.
func (e *Evaluator) Begin(s *Session, skill string) string {
	s.Ladder = &Ladder{
		Skill:      skill,
		State:      LadderAwaitingQuestion,
		Difficulty: DifficultyMedium,
	}
	return e.ask(s)
}

// HandleAnswer consumes one candidate answer. While the ladder is open it
// returns the next question; on the third attempt it returns the verdict
// handoff instead. Judgement results are never disclosed mid-ladder.
func (e *Evaluator) HandleAnswer(ctx context.Context, s *Session, answer string) (string, *Handoff, error) {
	ladder := s.Ladder
	if ladder == nil || ladder.State != LadderAwaitingAnswer {
		return "", nil, fmt.Errorf("session %s: no answer expected by evaluator", s.ID)
	}

	ladder.State = LadderJudging
	judgement, err := e.judge.Judge(ctx, ladder.Skill, ladder.Question, answer)
	if err != nil {
		return "", nil, fmt.Errorf("session %s skill %q: %w: %v", s.ID, ladder.Skill, ErrJudgeUnavailable, err)
	}

	e.logger.Debug("answer judged",
		zap.String("session_id", s.ID),
		zap.String("skill", ladder.Skill),
		zap.String("difficulty", string(ladder.Difficulty)),
		zap.Bool("correct", judgement.Correct),
		zap.String("rationale", judgement.Rationale),
	)

	ladder.Attempts = append(ladder.Attempts, QuestionAttempt{
		Difficulty: ladder.Difficulty,
		Question:   ladder.Question,
		Answer:     answer,
		Correct:    judgement.Correct,
	})

	ladder.State = LadderAdapting
	ladder.Difficulty = ladder.Difficulty.Adapt(judgement.Correct)

	if len(ladder.Attempts) < ladderAttempts {
		ladder.State = LadderAwaitingQuestion
		return e.ask(s), nil, nil
	}

	ladder.State = LadderTerminal
	verdict := computeVerdict(ladder.Attempts)
	e.logger.Info("skill ladder finished",
		zap.String("session_id", s.ID),
		zap.String("skill", ladder.Skill),
		zap.String("verdict", string(verdict)),
	)

	handoff := NewVerdict(ladder.Skill, verdict == VerdictPass)
	return "", &handoff, nil
}

// Finish closes the ladder and returns the completed evaluation record.
func (e *Evaluator) Finish(s *Session) (SkillEvaluation, error) {
	ladder := s.Ladder
	if ladder == nil || ladder.State != LadderTerminal {
		return SkillEvaluation{}, fmt.Errorf("session %s: ladder is not terminal", s.ID)
	}
	ev := SkillEvaluation{
		Skill:    ladder.Skill,
		Attempts: ladder.Attempts,
		Verdict:  computeVerdict(ladder.Attempts),
	}
	s.Ladder = nil
	return ev, nil
}

// ask draws the next question and presents it verbatim. A bank miss does not
// crash the ladder: a generic fallback question stands in.
func (e *Evaluator) ask(s *Session) string {
	ladder := s.Ladder
	question, err := e.bank.Get(ladder.Skill, ladder.Difficulty)
	if err != nil {
		e.logger.Warn("question bank miss, using fallback question",
			zap.String("session_id", s.ID),
			zap.String("skill", ladder.Skill),
			zap.String("difficulty", string(ladder.Difficulty)),
			zap.Error(err),
		)
		question = fmt.Sprintf("Tell me about your experience with %s.", ladder.Skill)
	}

	ladder.Question = question
	ladder.State = LadderAwaitingAnswer
	return question
}

// computeVerdict passes the skill when at least two of the three attempts are
// correct. No weighting by difficulty.
func computeVerdict(attempts []QuestionAttempt) Verdict {
	if len(attempts) < ladderAttempts {
		return VerdictPending
	}
	correct := 0
	for _, a := range attempts {
		if a.Correct {
			correct++
		}
	}
	if correct >= 2 {
		return VerdictPass
	}
	return VerdictFail
}
