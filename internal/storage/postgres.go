package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
)

const DEFAULT_POSTGRES_TABLE = "checkpoints"

type PostgresConnector struct {
	db    *sql.DB
	table string
}

func NewPostgresConnector(cfg *config.PostgresConfig) (*PostgresConnector, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database)

	// Default to "require" for security if SSL mode not specified
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "require"
		log.Info().Msg("No SSL mode specified, defaulting to 'require' for secure connection")
	}
	connStr += fmt.Sprintf(" sslmode=%s", sslMode)

	if cfg.ConnectTimeout > 0 {
		connStr += fmt.Sprintf(" connect_timeout=%d", cfg.ConnectTimeout)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	table := cfg.Table
	if table == "" {
		table = DEFAULT_POSTGRES_TABLE
	}
	p := &PostgresConnector{db: db, table: pq.QuoteIdentifier(table)}
	if err := p.ensureTable(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *PostgresConnector) ensureTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		category TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, p.table)
	if _, err := p.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create checkpoint table: %w", err)
	}
	return nil
}

func (p *PostgresConnector) Read(ctx context.Context, category common.Category) ([]byte, error) {
	query := fmt.Sprintf(`SELECT data FROM %s WHERE category = $1`, p.table)
	var data string
	err := p.db.QueryRowContext(ctx, query, string(category)).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(data), nil
}

func (p *PostgresConnector) Write(ctx context.Context, category common.Category, data []byte) error {
	query := fmt.Sprintf(`INSERT INTO %s (category, data, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (category) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`, p.table)
	_, err := p.db.ExecContext(ctx, query, string(category), string(data))
	return err
}

func (p *PostgresConnector) Close() error {
	return p.db.Close()
}
