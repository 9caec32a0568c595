package mailer

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Sender sends the transactional emails of the application.
type Sender interface {
	// SendVerificationCode emails a one-time email verification code.
	SendVerificationCode(to, name, code string) error

	// SendWelcome emails a welcome message after successful verification.
	SendWelcome(to, name string) error

	// SendPasswordReset emails a password reset link.
	SendPasswordReset(to, name, link string) error

	// SendPasswordChanged emails a confirmation that the password changed.
	SendPasswordChanged(to, name string) error
}

// Mailer represents an email sender backed by an SMTP transport.
type Mailer struct {
	config *mailerConfig
	dialer *gomail.Dialer
}

// Email represents an email message.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// NewMailer creates a new Mailer instance configured from the environment.
func NewMailer(logger *zerolog.Logger) *Mailer {
	cfg := newMailerConfig(logger)

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate Mailer configuration")
	}

	dialer := gomail.NewDialer(
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
	)

	return &Mailer{
		config: cfg,
		dialer: dialer,
	}
}

// Send sends a single email.
func (m *Mailer) Send(email Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	msg := gomail.NewMessage()
	m.setEmailMessage(msg, email)

	return m.dialer.DialAndSend(msg)
}

func (m *Mailer) setEmailMessage(msg *gomail.Message, email Email) {
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		msg.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			msg.AddAlternative("text/plain", email.Body)
		}
	} else {
		msg.SetBody("text/plain", email.Body)
	}
}

// smtpService maps a well-known provider name to its SMTP endpoint, the
// way the EMAIL_SERVICE shortcut expects.
type smtpService struct {
	host string
	port int
}

var knownServices = map[string]smtpService{
	"gmail":    {host: "smtp.gmail.com", port: 587},
	"outlook":  {host: "smtp-mail.outlook.com", port: 587},
	"yahoo":    {host: "smtp.mail.yahoo.com", port: 587},
	"sendgrid": {host: "smtp.sendgrid.net", port: 587},
}

// mailerConfig holds SMTP configuration for sending emails.
type mailerConfig struct {
	Service  string `env:"EMAIL_SERVICE"`
	Host     string `env:"EMAIL_HOST"`
	Port     int    `env:"EMAIL_PORT"`
	Username string `env:"EMAIL_USERNAME"`
	Password string `env:"EMAIL_PASSWORD"`
	From     string `env:"EMAIL_FROM"`
}

// newMailerConfig creates a mailerConfig instance from environment variables.
func newMailerConfig(logger *zerolog.Logger) *mailerConfig {
	cfg, err := env.ParseAs[mailerConfig]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	// EMAIL_HOST/EMAIL_PORT win over the EMAIL_SERVICE shortcut when set.
	if svc, ok := knownServices[strings.ToLower(cfg.Service)]; ok {
		if cfg.Host == "" {
			cfg.Host = svc.host
		}
		if cfg.Port == 0 {
			cfg.Port = svc.port
		}
	}

	if cfg.From == "" {
		cfg.From = cfg.Username
	}

	return &cfg
}

// validate checks if the Mailer configuration is valid.
func (c *mailerConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("missing EMAIL_HOST environment variable (or a known EMAIL_SERVICE)")
	}
	if c.Port == 0 {
		return fmt.Errorf("missing EMAIL_PORT environment variable (or a known EMAIL_SERVICE)")
	}
	if c.Username == "" {
		return fmt.Errorf("missing EMAIL_USERNAME environment variable")
	}
	if c.Password == "" {
		return fmt.Errorf("missing EMAIL_PASSWORD environment variable")
	}
	if c.From == "" {
		return fmt.Errorf("missing EMAIL_FROM environment variable")
	}

	return nil
}
