package db

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema holds the DDL for users and time entries. Every statement is idempotent.
//
//go:embed schema.sql
var Schema string

// ActiveEntryIndex is the partial unique index enforcing one active entry per user.
const ActiveEntryIndex = "time_entries_one_active_per_user"

// Migrate applies Schema statement by statement.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range statements(Schema) {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("platform/db: migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}

func statements(schema string) []string {
	var out []string
	for _, part := range strings.Split(schema, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
