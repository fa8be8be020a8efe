package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"time"
)

// Config holds SMTP configuration
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// Mailer handles sending emails
type Mailer struct {
	config Config
}

// New creates a new Mailer instance
func New(cfg Config) *Mailer {
	return &Mailer{config: cfg}
}

const alertTemplate = `
<div style="font-family: Arial, sans-serif; max-width: 520px; margin: 0 auto;">
  <h2 style="color: #b91c1c;">{{.Severity}} alert for patient {{.PatientID}}</h2>
  <p>{{.Message}}</p>
  <p style="color: #6b7280;">Triggered at {{.TriggeredAt}}</p>
  <p style="font-size: 12px; color: #9ca3af;">
    You receive this email because your account is linked to this patient.
  </p>
</div>
`

// SendAlertEmail notifies a recipient about a created alert
func (m *Mailer) SendAlertEmail(toEmail, patientID, severity, message string, triggeredAt time.Time) error {
	subject := fmt.Sprintf("VitalWatch - %s alert for %s", severity, patientID)

	body, err := m.renderAlertTemplate(patientID, severity, message, triggeredAt)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return m.send(toEmail, subject, body)
}

func (m *Mailer) renderAlertTemplate(patientID, severity, message string, triggeredAt time.Time) (string, error) {
	tmpl, err := template.New("alert").Parse(alertTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]string{
		"PatientID":   patientID,
		"Severity":    severity,
		"Message":     message,
		"TriggeredAt": triggeredAt.Format(time.RFC1123),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// send delivers an email via SMTP
func (m *Mailer) send(to, subject, htmlBody string) error {
	addr := fmt.Sprintf("%s:%s", m.config.Host, m.config.Port)

	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", m.config.FromName, m.config.From),
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=\"utf-8\"",
	}

	var msg bytes.Buffer
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	return smtp.SendMail(addr, auth, m.config.From, []string{to}, msg.Bytes())
}
