package email

import (
	"strings"

	"rentshare_backend/internal/logger"
)

// LogProvider writes mail to the log instead of sending it. Used when SMTP is not configured.
type LogProvider struct {
	renderer TemplateRenderer
}

func NewLogProvider(renderer TemplateRenderer) *LogProvider {
	return &LogProvider{renderer: renderer}
}

func (p *LogProvider) Send(email *Email) error {
	logger.Info("email not sent, smtp disabled",
		"to", strings.Join(email.To, ","),
		"subject", email.Subject,
		"body_len", len(email.Body)+len(email.HTMLBody),
	)
	return nil
}

func (p *LogProvider) SendTemplate(to []string, subject string, templateName string, data TemplateData) error {
	return sendTemplate(p, p.renderer, to, subject, templateName, data)
}

// NewProvider picks SMTP when configured, otherwise the log provider.
func NewProvider(config SMTPConfig) (Provider, error) {
	renderer, err := NewDefaultTemplateManager()
	if err != nil {
		return nil, err
	}
	if !config.Enabled() {
		return NewLogProvider(renderer), nil
	}
	return NewSMTPProvider(config, renderer)
}
