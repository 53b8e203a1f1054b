package email

type Provider interface {
	Send(email *Email) error
	// SendTemplate renders templateName as the HTML body.
	SendTemplate(to []string, subject string, templateName string, data TemplateData) error
}

type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
}
