package ai

import "context"

// Judgement is the answer judge's call on a single candidate answer.
type Judgement struct {
	Correct   bool
	Rationale string
}

// SkillExtractor turns a free-text job description into a normalized list of
// skills the interview can actually question on.
type SkillExtractor interface {
	ExtractSkills(ctx context.Context, jobDescription string) ([]string, error)
}

// AnswerJudge classifies a candidate answer as correct or not, with a
// rationale.
type AnswerJudge interface {
	Judge(ctx context.Context, skill, question, answer string) (Judgement, error)
}
