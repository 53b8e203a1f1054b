package email

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// Enabled is false when no SMTP host is configured; the app then logs mail instead of sending it.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}
