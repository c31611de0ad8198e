package engine

import (
	"github.com/gofiber/fiber/v2"

	"gatekeeper-backend/internal/instrument"
	"gatekeeper-backend/internal/metadata"
)

type Handler struct {
	engine   *Engine
	registry *metadata.Registry
}

func NewHandler(e *Engine, reg *metadata.Registry) *Handler {
	return &Handler{engine: e, registry: reg}
}

type validateRequest struct {
	RuleSet   string           `json:"ruleset,omitempty"`
	Rules     []*metadata.Rule `json:"rules,omitempty"`
	Record    map[string]any   `json:"record"`
	OldRecord map[string]any   `json:"old_record,omitempty"`
	Event     metadata.Event   `json:"event"`
}

// Validate handles POST /api/validate. Rules come either from a named,
// registered rule set or inline in the request body.
func (h *Handler) Validate(c *fiber.Ctx) error {
	var body validateRequest
	if err := c.BodyParser(&body); err != nil {
		return NewAppError("INVALID_PAYLOAD", 400, "Invalid JSON body")
	}

	if !body.Event.Valid() {
		return NewAppError("INVALID_EVENT", 422, "event must be one of insert, update, delete")
	}
	if body.Record == nil {
		return NewAppError("VALIDATION_FAILED", 422, "record is required")
	}

	rules := body.Rules
	if body.RuleSet != "" {
		rs := h.registry.GetRuleSet(body.RuleSet)
		if rs == nil || !rs.Active {
			return UnknownRuleSetError(body.RuleSet)
		}
		rules = rs.Rules()
	}
	if len(rules) == 0 {
		return NewAppError("VALIDATION_FAILED", 422, "no rules supplied: provide ruleset or rules")
	}

	vctx := &metadata.ValidationContext{
		Record:    body.Record,
		OldRecord: body.OldRecord,
		User:      getUser(c),
	}

	ctx, span := instrument.GetInstrumenter(c.UserContext()).StartSpan(c.UserContext(), "http", "validate", "ruleset.validate")
	defer span.End()
	if body.RuleSet != "" {
		span.SetRuleSet(body.RuleSet)
	}

	violations := h.engine.ValidateRecord(ctx, rules, vctx, body.Event)
	if violations == nil {
		violations = []Result{}
	}

	if len(violations) > 0 {
		span.SetStatus("error")
		instrument.GetInstrumenter(ctx).EmitBusinessEvent(ctx, "validation.failed", body.RuleSet, "", map[string]any{
			"event":      string(body.Event),
			"violations": len(violations),
		})
	} else {
		span.SetStatus("ok")
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"valid":      len(violations) == 0,
			"violations": violations,
		},
	})
}

// getUser extracts the UserContext set by the auth middleware.
func getUser(c *fiber.Ctx) *metadata.UserContext {
	user, _ := c.Locals("user").(*metadata.UserContext)
	return user
}
