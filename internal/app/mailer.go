package app

import (
	"github.com/adanyl0v/go-tms/internal/config"
	"github.com/adanyl0v/go-tms/internal/mailer"
	"github.com/adanyl0v/go-tms/internal/services"
)

func newWelcomeSender() services.WelcomeSender {
	cfg := config.Global().SMTP
	if cfg.Host == "" {
		globalLogger.Warn().Msg("smtp host is not set, welcome emails are disabled")
		return mailer.Nop{}
	}

	globalLogger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("configured smtp mailer")
	return mailer.New(globalLogger, cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Sender)
}
