package config

import "github.com/verdant-labs/authcore/pkg/notification"

// EmailConfig holds SMTP configuration for security alert delivery. With an
// empty host the email channel stays unconfigured and alerts only go to the
// structured log.
type EmailConfig struct {
	Host     string `env:"SMTP_HOST" env-default:""`
	Port     int    `env:"SMTP_PORT" env-default:"587"`
	TLS      bool   `env:"SMTP_TLS" env-default:"true"`
	Username string `env:"SMTP_USERNAME" env-default:""`
	Password string `env:"SMTP_PASSWORD" env-default:""`
	From     string `env:"SMTP_FROM" env-default:""`
	AlertTo  string `env:"SECURITY_ALERT_TO" env-default:""`
}

// Enabled reports whether the email channel is configured
func (e EmailConfig) Enabled() bool {
	return e.Host != "" && e.From != "" && e.AlertTo != ""
}

// ToSMTPConfig converts the config to a notification.SMTPConfig
func (e EmailConfig) ToSMTPConfig() notification.SMTPConfig {
	return notification.SMTPConfig{
		Host:     e.Host,
		Port:     e.Port,
		TLS:      e.TLS,
		Username: e.Username,
		Password: e.Password,
		From:     e.From,
	}
}
