package app

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/adanyl0v/go-tms/internal/config"
)

func MustReadEnv() {
	cfg, err := config.NewEnvReader().Read()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to read env")
		panic(err)
	}
	globalLogger.Info().
		Str("env", cfg.Env).
		Str("storage_driver", cfg.Storage.Driver).
		Bool("rate_limit", cfg.HTTP.RateLimit.Enabled).
		Bool("smtp", cfg.SMTP.Host != "").
		Msg("read env")

	config.SetGlobal(cfg)
}
