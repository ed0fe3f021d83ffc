package export

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/rs/zerolog/log"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
)

const DEFAULT_CLICKHOUSE_DATABASE = "default"

// ClickhouseSink inserts rows into <database>.<category>, creating the table if needed.
// Rows are deduplicated on (block_number, position), so re-exports replace earlier rows.
type ClickhouseSink struct {
	conn     clickhouse.Conn
	database string
}

func NewClickhouseSink(cfg *config.ClickhouseConfig) (*ClickhouseSink, error) {
	database := cfg.Database
	if database == "" {
		database = DEFAULT_CLICKHOUSE_DATABASE
	}
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr:     []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Protocol: clickhouse.Native,
		TLS: func() *tls.Config {
			if cfg.EnableTLS {
				return &tls.Config{}
			}
			return nil
		}(),
		Auth: clickhouse.Auth{
			Username: cfg.Username,
			Password: cfg.Password,
			Database: database,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	return &ClickhouseSink{conn: conn, database: database}, nil
}

func (s *ClickhouseSink) Name() string {
	return "clickhouse"
}

func (s *ClickhouseSink) table(category common.Category) string {
	return fmt.Sprintf("`%s`.`%s`", s.database, category)
}

func createTableQuery(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		position UInt64,
		block_number UInt64,
		tx_hash String,
		tx_type String,
		sender String,
		recipient String,
		account String,
		amount String,
		tx_amount String,
		timestamp UInt64,
		insert_timestamp DateTime DEFAULT now()
	) ENGINE = ReplacingMergeTree(insert_timestamp)
	ORDER BY (block_number, position)`, table)
}

func (s *ClickhouseSink) Write(ctx context.Context, category common.Category, rows []Row) error {
	table := s.table(category)
	if err := s.conn.Exec(ctx, createTableQuery(table)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, fmt.Sprintf(
		"INSERT INTO %s (position, block_number, tx_hash, tx_type, sender, recipient, account, amount, tx_amount, timestamp)", table))
	if err != nil {
		return fmt.Errorf("failed to prepare batch for %s: %w", table, err)
	}
	for _, row := range rows {
		if err := batch.Append(
			row.Position,
			row.BlockNumber,
			row.TxHash,
			row.TxType,
			row.Sender,
			row.Recipient,
			row.Account,
			row.Amount,
			row.TxAmount,
			row.Timestamp,
		); err != nil {
			batch.Abort()
			return fmt.Errorf("failed to append row to %s: %w", table, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch to %s: %w", table, err)
	}
	log.Debug().Str("table", table).Int("rows", len(rows)).Msg("Inserted rows into ClickHouse")
	return nil
}

func (s *ClickhouseSink) Close() error {
	return s.conn.Close()
}
