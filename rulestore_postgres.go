package growbox

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const relayConfigSchema = `
CREATE TABLE IF NOT EXISTS relay_config (
	relay_index INTEGER PRIMARY KEY,
	rule        TEXT NOT NULL DEFAULT '["NOP"]',
	label       TEXT NOT NULL DEFAULT '',
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresRuleStore persists rules and labels in a relay_config table, for
// fleets of nodes sharing one database.
type PostgresRuleStore struct {
	db *sql.DB
}

// NewPostgresRuleStore connects to the given DSN and ensures the schema
// exists.
func NewPostgresRuleStore(ctx context.Context, dsn string) (*PostgresRuleStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, relayConfigSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create relay_config table: %w", err)
	}
	return &PostgresRuleStore{db: db}, nil
}

func (s *PostgresRuleStore) SaveRules(ctx context.Context, rules []string) error {
	return s.saveColumn(ctx, "rule", rules)
}

func (s *PostgresRuleStore) LoadRules(ctx context.Context, count int) ([]string, error) {
	rules, err := s.loadColumn(ctx, "rule", count)
	if err != nil {
		return nil, err
	}
	return padRules(rules, count), nil
}

func (s *PostgresRuleStore) SaveLabels(ctx context.Context, labels []string) error {
	return s.saveColumn(ctx, "label", labels)
}

func (s *PostgresRuleStore) LoadLabels(ctx context.Context, count int) ([]string, error) {
	labels, err := s.loadColumn(ctx, "label", count)
	if err != nil {
		return nil, err
	}
	return padLabels(labels, count), nil
}

// Close releases the database connection.
func (s *PostgresRuleStore) Close() error {
	return s.db.Close()
}

func (s *PostgresRuleStore) saveColumn(ctx context.Context, column string, values []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// column is one of the fixed identifiers "rule" or "label".
	query := fmt.Sprintf(`
		INSERT INTO relay_config (relay_index, %s, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (relay_index)
		DO UPDATE SET %s = EXCLUDED.%s, updated_at = now()`,
		column, column, column)

	for i, value := range values {
		if _, err := tx.ExecContext(ctx, query, i, value); err != nil {
			return fmt.Errorf("failed to upsert relay %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func (s *PostgresRuleStore) loadColumn(ctx context.Context, column string, count int) ([]string, error) {
	query := fmt.Sprintf(
		`SELECT relay_index, %s FROM relay_config WHERE relay_index < $1 ORDER BY relay_index`,
		column)
	rows, err := s.db.QueryContext(ctx, query, count)
	if err != nil {
		return nil, fmt.Errorf("failed to query relay_config: %w", err)
	}
	defer rows.Close()

	values := make([]string, count)
	for rows.Next() {
		var idx int
		var value string
		if err := rows.Scan(&idx, &value); err != nil {
			return nil, fmt.Errorf("failed to scan relay_config row: %w", err)
		}
		if idx >= 0 && idx < count {
			values[idx] = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate relay_config rows: %w", err)
	}
	return values, nil
}
