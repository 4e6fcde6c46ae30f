package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/avrohommoshebaum/school-crm-sub001/internal/config"
)

func New(environment config.Environment) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
		NoColor:    environment == config.EnvProduction,
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("env", string(environment)).
		Logger()

	if environment != config.EnvProduction {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return logger
}
