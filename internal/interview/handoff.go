package interview

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Handoff transfers conversational control between the orchestrator and the
// evaluator. It lives for a single turn and is never persisted.
type Handoff struct {
	From    Role
	To      Role
	Payload map[string]any
}

// DispatchPayload is the orchestrator → evaluator payload shape.
type DispatchPayload struct {
	Skill string `mapstructure:"skill"`
}

// VerdictPayload is the evaluator → orchestrator payload shape.
type VerdictPayload struct {
	Skill  string `mapstructure:"skill"`
	Passed *bool  `mapstructure:"passed"`
}

// NewDispatch builds the handoff that delegates a skill to the evaluator.
func NewDispatch(skill string) Handoff {
	return Handoff{
		From:    RoleOrchestrator,
		To:      RoleEvaluator,
		Payload: map[string]any{"skill": skill},
	}
}

// NewVerdict builds the handoff that returns a skill's verdict to the
// orchestrator.
func NewVerdict(skill string, passed bool) Handoff {
	return Handoff{
		From:    RoleEvaluator,
		To:      RoleOrchestrator,
		Payload: map[string]any{"skill": skill, "passed": passed},
	}
}

// Coordinator validates handoffs and flips the session's active role. A
// rejected handoff leaves the session untouched.
type Coordinator struct{}

// ToEvaluator delivers a dispatch handoff, returning the validated payload.
func (c *Coordinator) ToEvaluator(s *Session, h Handoff) (DispatchPayload, error) {
	var payload DispatchPayload
	if err := c.validate(s, h, RoleOrchestrator, RoleEvaluator); err != nil {
		return payload, err
	}
	if err := decodePayload(h.Payload, &payload); err != nil {
		return DispatchPayload{}, err
	}
	if strings.TrimSpace(payload.Skill) == "" {
		return DispatchPayload{}, fmt.Errorf("session %s: dispatch without skill: %w", s.ID, ErrMalformedHandoff)
	}
	s.ActiveRole = RoleEvaluator
	return payload, nil
}

// ToOrchestrator delivers a verdict handoff, returning the validated payload.
func (c *Coordinator) ToOrchestrator(s *Session, h Handoff) (VerdictPayload, error) {
	var payload VerdictPayload
	if err := c.validate(s, h, RoleEvaluator, RoleOrchestrator); err != nil {
		return payload, err
	}
	if err := decodePayload(h.Payload, &payload); err != nil {
		return VerdictPayload{}, err
	}
	if strings.TrimSpace(payload.Skill) == "" {
		return VerdictPayload{}, fmt.Errorf("session %s: verdict without skill: %w", s.ID, ErrMalformedHandoff)
	}
	if payload.Passed == nil {
		return VerdictPayload{}, fmt.Errorf("session %s skill %q: verdict without result: %w", s.ID, payload.Skill, ErrMalformedHandoff)
	}
	s.ActiveRole = RoleOrchestrator
	return payload, nil
}

func (c *Coordinator) validate(s *Session, h Handoff, from, to Role) error {
	if h.From != from || h.To != to {
		return fmt.Errorf("session %s: handoff roles %s->%s, want %s->%s: %w",
			s.ID, h.From, h.To, from, to, ErrMalformedHandoff)
	}
	if s.ActiveRole != from {
		return fmt.Errorf("session %s: handoff from %s while %s holds the turn: %w",
			s.ID, h.From, s.ActiveRole, ErrMalformedHandoff)
	}
	return nil
}

// decodePayload decodes strictly: unknown keys and type mismatches are shape
// violations, not data to tolerate.
func decodePayload(raw map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      target,
		ErrorUnused: true,
	})
	if err != nil {
		return fmt.Errorf("building payload decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedHandoff, err)
	}
	return nil
}
