package env

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Load reads a .env file from the working directory into the process environment.
// A missing file is not an error: configuration may come from the real environment.
func Load() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Error().Err(err).Msg("error loading .env file")
	}
}
