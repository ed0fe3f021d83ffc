package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"gopkg.in/natefinch/lumberjack.v2"
)

func InitLogger() {
	// overrides zerolog global logger
	log.Logger = NewLogger("default")
}

func NewLogger(name string) zerolog.Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	level := zerolog.WarnLevel
	if lvl, err := zerolog.ParseLevel(config.Cfg.Log.Level); err == nil && lvl != zerolog.NoLevel {
		level = lvl
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stderr
	if config.Cfg.Log.Prettify {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	if config.Cfg.Log.File != "" {
		// the file always receives JSON lines, regardless of prettify
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   config.Cfg.Log.File,
			MaxSize:    config.Cfg.Log.MaxSizeMB,
			MaxBackups: config.Cfg.Log.MaxBackups,
			MaxAge:     config.Cfg.Log.MaxAgeDays,
			Compress:   true,
		})
	}

	return zerolog.New(out).With().Timestamp().Str("component", name).Caller().Logger()
}
