package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LoadAll reads all rule sets from the database, runs the prepare hook,
// and publishes them to the registry. Published rule sets are shared by
// concurrent requests and must not be written to afterwards, so any
// per-rule preparation (condition precompilation lives in the engine
// package, which this package cannot import) happens through the hook
// before Load.
func LoadAll(ctx context.Context, pool *pgxpool.Pool, reg *Registry, prepare func([]*RuleSet)) error {
	ruleSets, err := loadRuleSets(ctx, pool)
	if err != nil {
		return fmt.Errorf("load rule sets: %w", err)
	}

	if prepare != nil {
		prepare(ruleSets)
	}
	reg.Load(ruleSets)

	log.Printf("Loaded %d rule sets into registry", len(ruleSets))
	return nil
}

// Reload is an alias for LoadAll, called after admin mutations.
func Reload(ctx context.Context, pool *pgxpool.Pool, reg *Registry, prepare func([]*RuleSet)) error {
	return LoadAll(ctx, pool, reg, prepare)
}

func loadRuleSets(ctx context.Context, pool *pgxpool.Pool) ([]*RuleSet, error) {
	rows, err := pool.Query(ctx,
		"SELECT id, name, definition, active FROM _rulesets ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ruleSets []*RuleSet
	for rows.Next() {
		var rs RuleSet
		var defJSON []byte
		if err := rows.Scan(&rs.ID, &rs.Name, &defJSON, &rs.Active); err != nil {
			return nil, fmt.Errorf("scan rule set row: %w", err)
		}
		if err := json.Unmarshal(defJSON, &rs.Definition); err != nil {
			log.Printf("WARN: skipping rule set %s (invalid JSON): %v", rs.Name, err)
			continue
		}
		ruleSets = append(ruleSets, &rs)
	}
	return ruleSets, rows.Err()
}
