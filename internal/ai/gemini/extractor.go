package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/skillgate/screener/internal/utils"

	"go.uber.org/zap"
)

//go:embed extract_prompt.md
var extractPrompt string

const defaultMaxLogLength = 200

// Extractor asks the model for the skills named in a job description and
// constrains the answer to the canonical vocabulary: the model's wording is
// uncontrolled, so only skills that match a known topic survive, renamed to
// the topic's display form. An empty result falls back to the whole
// vocabulary so the interview always has work to dispatch.
type Extractor struct {
	generator  contentGenerator
	vocabulary []string
	logger     *zap.Logger
	maxLogLen  int
}

func NewExtractor(generator contentGenerator, vocabulary []string, logger *zap.Logger, maxLogLength int) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Extractor{
		generator:  generator,
		vocabulary: append([]string(nil), vocabulary...),
		logger:     logger,
		maxLogLen:  maxLogLength,
	}
}

// ExtractSkills implements ai.SkillExtractor.
func (e *Extractor) ExtractSkills(ctx context.Context, jobDescription string) ([]string, error) {
	jobDescription = strings.TrimSpace(jobDescription)
	if jobDescription == "" {
		return nil, fmt.Errorf("job description must not be empty")
	}

	prompt := fmt.Sprintf("Extract skills from this job description:\n\n%s", jobDescription)

	e.logger.Debug("gemini skill extraction request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, extractPrompt, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini skill extraction response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	candidates, err := parseSkills(raw)
	if err != nil {
		return nil, err
	}

	skills := e.normalize(candidates)
	if len(skills) == 0 {
		e.logger.Info("no extracted skill matched the vocabulary, using all topics",
			zap.Strings("candidates", candidates),
		)
		return append([]string(nil), e.vocabulary...), nil
	}

	return skills, nil
}

// normalize keeps a candidate when it matches a canonical topic as a
// case-insensitive substring in either direction, renamed to the canonical
// form. Duplicates collapse.
func (e *Extractor) normalize(candidates []string) []string {
	seen := make(map[string]bool, len(candidates))
	var out []string

	for _, candidate := range candidates {
		lower := strings.ToLower(strings.TrimSpace(candidate))
		if lower == "" {
			continue
		}
		for _, canonical := range e.vocabulary {
			canonicalLower := strings.ToLower(canonical)
			if !strings.Contains(canonicalLower, lower) && !strings.Contains(lower, canonicalLower) {
				continue
			}
			if !seen[canonical] {
				seen[canonical] = true
				out = append(out, canonical)
			}
			break
		}
	}

	return out
}

func parseSkills(raw string) ([]string, error) {
	cleaned := extractJSON(raw)

	// Tolerate both {"skills": [...]} and a bare top-level array.
	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err == nil {
		return coerceStrings(data["skills"]), nil
	}

	var list []any
	if err := json.Unmarshal([]byte(cleaned), &list); err != nil {
		return nil, fmt.Errorf("parse skill extraction response: %w", err)
	}
	return coerceStrings(list), nil
}
