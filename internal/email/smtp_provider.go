package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type SMTPProvider struct {
	config   SMTPConfig
	dialer   *gomail.Dialer
	renderer TemplateRenderer
}

func NewSMTPProvider(config SMTPConfig, renderer TemplateRenderer) (*SMTPProvider, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return nil, fmt.Errorf("invalid SMTP port: %d", config.Port)
	}

	return &SMTPProvider{
		config:   config,
		dialer:   gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		renderer: renderer,
	}, nil
}

func (p *SMTPProvider) Send(email *Email) error {
	return p.dialer.DialAndSend(buildMessage(p.config, email))
}

func (p *SMTPProvider) SendTemplate(to []string, subject string, templateName string, data TemplateData) error {
	return sendTemplate(p, p.renderer, to, subject, templateName, data)
}

func buildMessage(config SMTPConfig, email *Email) *gomail.Message {
	m := gomail.NewMessage()

	from := email.From
	if from == "" {
		from = config.FromEmail
	}
	if config.FromName != "" && email.From == "" {
		m.SetAddressHeader("From", from, config.FromName)
	} else {
		m.SetHeader("From", from)
	}
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)

	switch {
	case email.HTMLBody != "" && email.Body != "":
		m.SetBody("text/plain", email.Body)
		m.AddAlternative("text/html", email.HTMLBody)
	case email.HTMLBody != "":
		m.SetBody("text/html", email.HTMLBody)
	default:
		m.SetBody("text/plain", email.Body)
	}
	return m
}

func sendTemplate(p Provider, renderer TemplateRenderer, to []string, subject, templateName string, data TemplateData) error {
	if renderer == nil {
		return fmt.Errorf("template renderer is not configured")
	}
	html, err := renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}
	return p.Send(&Email{To: to, Subject: subject, HTMLBody: html})
}
