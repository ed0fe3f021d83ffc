package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog/log"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
)

var writerOptions = []parquet.WriterOption{
	parquet.Compression(&parquet.Zstd),
	parquet.DataPageStatistics(true),
}

// ParquetSink writes <dir>/<category>.parquet, replacing any previous export.
type ParquetSink struct {
	dir string
}

func NewParquetSink(cfg *config.ParquetExportConfig) (*ParquetSink, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export dir %s: %w", dir, err)
	}
	return &ParquetSink{dir: dir}, nil
}

func (s *ParquetSink) Name() string {
	return "parquet"
}

func (s *ParquetSink) Path(category common.Category) string {
	return filepath.Join(s.dir, string(category)+".parquet")
}

func (s *ParquetSink) Write(ctx context.Context, category common.Category, rows []Row) error {
	path := s.Path(category)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}

	writer := parquet.NewGenericWriter[Row](file, writerOptions...)
	if _, err := writer.Write(rows); err != nil {
		file.Close()
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		file.Close()
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	if err := file.Close(); err != nil {
		return err
	}
	log.Debug().Str("file", path).Int("rows", len(rows)).Msg("Wrote parquet file")
	return nil
}

func (s *ParquetSink) Close() error {
	return nil
}
