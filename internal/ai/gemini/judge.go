package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/skillgate/screener/internal/ai"
	"github.com/skillgate/screener/internal/utils"

	"go.uber.org/zap"
)

//go:embed judge_prompt.md
var judgePrompt string

// Judge grades one candidate answer against the asked question under a fixed
// rubric. Oracle failures are returned as-is; this layer never retries.
type Judge struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewJudge(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Judge {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Judge{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

// Judge implements ai.AnswerJudge.
func (j *Judge) Judge(ctx context.Context, skill, question, answer string) (ai.Judgement, error) {
	if strings.TrimSpace(question) == "" {
		return ai.Judgement{}, fmt.Errorf("question must not be empty")
	}

	prompt := fmt.Sprintf("Skill: %s\n\nQuestion:\n%s\n\nCandidate answer:\n%s", skill, question, answer)

	j.logger.Debug("gemini judge request",
		zap.String("skill", skill),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, j.maxLogLen)),
	)

	raw, err := j.generator.GenerateContent(ctx, judgePrompt, prompt)
	if err != nil {
		return ai.Judgement{}, err
	}

	j.logger.Debug("gemini judge response",
		zap.String("skill", skill),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, j.maxLogLen)),
	)

	return parseJudgement(raw)
}

func parseJudgement(raw string) (ai.Judgement, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return ai.Judgement{}, fmt.Errorf("parse judge response: %w", err)
	}

	return ai.Judgement{
		Correct:   coerceBool(data["correct"]),
		Rationale: coerceString(data["reasoning"]),
	}, nil
}
