package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"gatekeeper-backend/internal/metadata"
)

// SQLUniquenessChecker implements the engine's uniqueness collaborator
// with a COUNT query against a single table. A rule's scope names a
// column whose current record value narrows the check (e.g. tenant_id).
// On updates the current row is excluded by its id so a record does not
// conflict with itself.
type SQLUniquenessChecker struct {
	pool  *pgxpool.Pool
	table string
}

// NewSQLUniquenessChecker creates a checker against the given table.
func NewSQLUniquenessChecker(pool *pgxpool.Pool, table string) *SQLUniquenessChecker {
	return &SQLUniquenessChecker{pool: pool, table: table}
}

func (c *SQLUniquenessChecker) CheckUnique(ctx context.Context, fields []string, values map[string]any, scope string, vctx *metadata.ValidationContext) (bool, error) {
	if len(fields) == 0 {
		return true, nil
	}

	var conditions []string
	var args []any
	argIdx := 1

	for _, f := range fields {
		v := values[f]
		if v == nil {
			conditions = append(conditions, fmt.Sprintf("%s IS NULL", quoteIdent(f)))
			continue
		}
		conditions = append(conditions, fmt.Sprintf("%s = $%d", quoteIdent(f), argIdx))
		args = append(args, v)
		argIdx++
	}

	if scope != "" {
		scopeVal := vctx.Record[scope]
		if scopeVal == nil {
			conditions = append(conditions, fmt.Sprintf("%s IS NULL", quoteIdent(scope)))
		} else {
			conditions = append(conditions, fmt.Sprintf("%s = $%d", quoteIdent(scope), argIdx))
			args = append(args, scopeVal)
			argIdx++
		}
	}

	if vctx.OldRecord != nil {
		if id, ok := vctx.OldRecord["id"]; ok && id != nil {
			conditions = append(conditions, fmt.Sprintf("id <> $%d", argIdx))
			args = append(args, id)
			argIdx++
		}
	}

	sqlStr := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s",
		quoteIdent(c.table), strings.Join(conditions, " AND "))

	count, err := CountRow(ctx, c.pool, sqlStr, args...)
	if err != nil {
		return false, fmt.Errorf("uniqueness query: %w", err)
	}
	return count == 0, nil
}

// quoteIdent quotes a SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
