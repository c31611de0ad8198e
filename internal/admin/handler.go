package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"gatekeeper-backend/internal/engine"
	"gatekeeper-backend/internal/metadata"
	"gatekeeper-backend/internal/store"
)

type Handler struct {
	store    *store.Store
	registry *metadata.Registry
}

func NewHandler(s *store.Store, reg *metadata.Registry) *Handler {
	return &Handler{store: s, registry: reg}
}

func RegisterAdminRoutes(app *fiber.App, h *Handler, middleware ...fiber.Handler) {
	admin := app.Group("/api/_admin", middleware...)

	admin.Get("/rulesets", h.ListRuleSets)
	admin.Get("/rulesets/:name", h.GetRuleSet)
	admin.Post("/rulesets", h.CreateRuleSet)
	admin.Put("/rulesets/:name", h.UpdateRuleSet)
	admin.Delete("/rulesets/:name", h.DeleteRuleSet)
}

func (h *Handler) ListRuleSets(c *fiber.Ctx) error {
	rows, err := store.QueryRows(c.UserContext(), h.store.Pool,
		"SELECT id::text AS id, name, definition, active, created_at, updated_at FROM _rulesets ORDER BY name")
	if err != nil {
		return fmt.Errorf("list rule sets: %w", err)
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return c.JSON(fiber.Map{"data": rows})
}

func (h *Handler) GetRuleSet(c *fiber.Ctx) error {
	name := c.Params("name")
	row, err := store.QueryRow(c.UserContext(), h.store.Pool,
		"SELECT id::text AS id, name, definition, active, created_at, updated_at FROM _rulesets WHERE name = $1", name)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": fiber.Map{"code": "NOT_FOUND", "message": "Rule set not found: " + name}})
	}
	return c.JSON(fiber.Map{"data": row})
}

type ruleSetPayload struct {
	Name       string                     `json:"name"`
	Definition metadata.RuleSetDefinition `json:"definition"`
	Active     *bool                      `json:"active,omitempty"`
}

func (h *Handler) CreateRuleSet(c *fiber.Ctx) error {
	var body ruleSetPayload
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": fiber.Map{"code": "INVALID_PAYLOAD", "message": "Invalid JSON body"}})
	}

	if err := validateRuleSet(&body); err != nil {
		return c.Status(422).JSON(fiber.Map{"error": fiber.Map{"code": "VALIDATION_FAILED", "message": err.Error()}})
	}

	defJSON, err := json.Marshal(body.Definition)
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}

	active := true
	if body.Active != nil {
		active = *body.Active
	}

	_, err = store.Exec(c.UserContext(), h.store.Pool,
		"INSERT INTO _rulesets (name, definition, active) VALUES ($1, $2, $3)",
		body.Name, string(defJSON), active)
	if err != nil {
		return fmt.Errorf("create rule set: %w", err)
	}

	if err := h.reloadRegistry(c.UserContext()); err != nil {
		return err
	}

	return c.Status(201).JSON(fiber.Map{"data": fiber.Map{"name": body.Name}})
}

func (h *Handler) UpdateRuleSet(c *fiber.Ctx) error {
	name := c.Params("name")

	var body ruleSetPayload
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": fiber.Map{"code": "INVALID_PAYLOAD", "message": "Invalid JSON body"}})
	}
	body.Name = name

	if err := validateRuleSet(&body); err != nil {
		return c.Status(422).JSON(fiber.Map{"error": fiber.Map{"code": "VALIDATION_FAILED", "message": err.Error()}})
	}

	defJSON, err := json.Marshal(body.Definition)
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}

	active := true
	if body.Active != nil {
		active = *body.Active
	}

	n, err := store.Exec(c.UserContext(), h.store.Pool,
		"UPDATE _rulesets SET definition = $1, active = $2, updated_at = NOW() WHERE name = $3",
		string(defJSON), active, name)
	if err != nil {
		return fmt.Errorf("update rule set: %w", err)
	}
	if n == 0 {
		return c.Status(404).JSON(fiber.Map{"error": fiber.Map{"code": "NOT_FOUND", "message": "Rule set not found: " + name}})
	}

	if err := h.reloadRegistry(c.UserContext()); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": fiber.Map{"name": name}})
}

func (h *Handler) DeleteRuleSet(c *fiber.Ctx) error {
	name := c.Params("name")

	n, err := store.Exec(c.UserContext(), h.store.Pool,
		"DELETE FROM _rulesets WHERE name = $1", name)
	if err != nil {
		return fmt.Errorf("delete rule set: %w", err)
	}
	if n == 0 {
		return c.Status(404).JSON(fiber.Map{"error": fiber.Map{"code": "NOT_FOUND", "message": "Rule set not found: " + name}})
	}

	if err := h.reloadRegistry(c.UserContext()); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": fiber.Map{"name": name}})
}

// reloadRegistry re-reads all rule sets, precompiling their conditions
// before requests can reach them.
func (h *Handler) reloadRegistry(ctx context.Context) error {
	if err := metadata.Reload(ctx, h.store.Pool, h.registry, engine.CompileRuleSets); err != nil {
		return fmt.Errorf("reload registry: %w", err)
	}
	return nil
}

var knownRuleTypes = map[metadata.RuleType]bool{
	metadata.RuleTypeScript:       true,
	metadata.RuleTypeUnique:       true,
	metadata.RuleTypeStateMachine: true,
	metadata.RuleTypeCrossField:   true,
	metadata.RuleTypeAsync:        true,
	metadata.RuleTypeConditional:  true,
	metadata.RuleTypeFormat:       true,
	metadata.RuleTypeRange:        true,
}

func validateRuleSet(p *ruleSetPayload) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(p.Definition.Rules) == 0 {
		return fmt.Errorf("definition.rules must not be empty")
	}
	seen := make(map[string]bool, len(p.Definition.Rules))
	return validateRules(p.Definition.Rules, seen)
}

func validateRules(rules []*metadata.Rule, seen map[string]bool) error {
	for _, r := range rules {
		if r.Name == "" {
			return fmt.Errorf("every rule needs a name")
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate rule name: %s", r.Name)
		}
		seen[r.Name] = true
		if !knownRuleTypes[r.Type] {
			return fmt.Errorf("rule %s has unknown type: %s", r.Name, r.Type)
		}
		for _, e := range r.Events {
			if !e.Valid() {
				return fmt.Errorf("rule %s has invalid event: %s", r.Name, e)
			}
		}
		if len(r.Definition.Rules) > 0 {
			if err := validateRules(r.Definition.Rules, seen); err != nil {
				return err
			}
		}
	}
	return nil
}
