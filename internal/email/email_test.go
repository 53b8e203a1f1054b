package email

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProvider struct {
	sent []*Email
}

func (r *recordingProvider) Send(e *Email) error {
	r.sent = append(r.sent, e)
	return nil
}

func (r *recordingProvider) SendTemplate(to []string, subject, name string, data TemplateData) error {
	return nil
}

func TestDefaultTemplates(t *testing.T) {
	tm, err := NewDefaultTemplateManager()
	require.NoError(t, err)

	html, err := tm.Render(TemplatePasswordReset, TemplateData{"Username": "user1", "Email": "user1@gmail.com"})
	require.NoError(t, err)
	assert.Contains(t, html, "user1@gmail.com")

	_, err = tm.Render("missing", nil)
	assert.Error(t, err)
}

func TestSendTemplateRendersHTML(t *testing.T) {
	tm, err := NewDefaultTemplateManager()
	require.NoError(t, err)

	rec := &recordingProvider{}
	require.NoError(t, sendTemplate(rec, tm, []string{"a@b.c"}, "Welcome", TemplateWelcome, TemplateData{"Username": "bob"}))
	require.Len(t, rec.sent, 1)
	assert.Contains(t, rec.sent[0].HTMLBody, "bob")
	assert.Equal(t, []string{"a@b.c"}, rec.sent[0].To)
}

func TestNewProviderFallsBackToLog(t *testing.T) {
	p, err := NewProvider(SMTPConfig{})
	require.NoError(t, err)
	assert.IsType(t, &LogProvider{}, p)

	p, err = NewProvider(SMTPConfig{Host: "smtp.example.com", Port: 587, FromEmail: "no-reply@example.com"})
	require.NoError(t, err)
	assert.IsType(t, &SMTPProvider{}, p)
}

func TestBuildMessageUsesConfiguredSender(t *testing.T) {
	m := buildMessage(SMTPConfig{FromEmail: "no-reply@rentshare.local", FromName: "RentShare"}, &Email{
		To:      []string{"user1@gmail.com"},
		Subject: "Hello",
		Body:    "plain",
	})

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "no-reply@rentshare.local")
	assert.Contains(t, buf.String(), "Subject: Hello")
}
