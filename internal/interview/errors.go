package interview

import "errors"

var (
	// ErrUnknownTopic is returned by a question bank when no questions exist
	// for the requested topic. The evaluator recovers with a fallback question.
	ErrUnknownTopic = errors.New("unknown topic")

	// ErrUnknownDifficulty is returned when a difficulty level is not one of
	// the three known values or the bank has no questions at that level.
	ErrUnknownDifficulty = errors.New("unknown difficulty")

	// ErrJudgeUnavailable wraps an answer judge failure. The attempt is not
	// recorded and the same question stands for re-answer.
	ErrJudgeUnavailable = errors.New("answer judge unavailable")

	// ErrExtractionFailed wraps a job posting lookup or skill extraction
	// failure. Fatal to the session.
	ErrExtractionFailed = errors.New("skill extraction failed")

	// ErrMalformedHandoff marks a handoff payload that does not match the
	// receiving role's expected shape. Session state is left untouched.
	ErrMalformedHandoff = errors.New("malformed handoff")

	// ErrDuplicateVerdict marks an attempt to record a verdict for a skill
	// that already has one.
	ErrDuplicateVerdict = errors.New("verdict already recorded")

	// ErrSessionExists is returned by a session store when creating a session
	// whose ID is already taken.
	ErrSessionExists = errors.New("session already exists")

	// ErrSessionNotFound is returned by a session store for unknown IDs.
	ErrSessionNotFound = errors.New("session not found")
)
