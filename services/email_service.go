package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	texttemplate "text/template"

	"nba-predictions-go/logging"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
	BaseURL      string
}

// EmailService sends account emails over SMTP
type EmailService struct {
	config EmailConfig
	dial   func(network, addr string) (net.Conn, error)
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{
		config: config,
		dial:   net.Dial,
	}
}

const welcomeSubject = "Welcome to NBA Predictions"

var welcomeHTML = template.Must(template.New("welcome-html").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Welcome</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background: white; padding: 20px; border-radius: 8px;">
    <h1 style="color: #1d428a;">🏀 NBA Predictions</h1>
    <p>Hi {{.Username}},</p>
    <p>Your account is ready. Pick a team, record how its last game went and keep an eye on your win rate.</p>
    {{if .BaseURL}}<p style="text-align: center;"><a href="{{.BaseURL}}" style="padding: 12px 24px; background-color: #c8102e; color: white; text-decoration: none; border-radius: 4px;">Open the dashboard</a></p>{{end}}
    <p style="font-size: 0.9em; color: #666;">This email was sent to {{.Email}} because it was used to sign up.</p>
  </div>
</body>
</html>`))

var welcomeText = texttemplate.Must(texttemplate.New("welcome-text").Parse(`NBA Predictions

Hi {{.Username}},

Your account is ready. Pick a team, record how its last game went and keep an eye on your win rate.
{{if .BaseURL}}
Open the dashboard: {{.BaseURL}}
{{end}}
This email was sent to {{.Email}} because it was used to sign up.
`))

// SendWelcomeEmail sends the sign-up confirmation
func (e *EmailService) SendWelcomeEmail(toEmail, username string) error {
	data := struct {
		Username string
		Email    string
		BaseURL  string
	}{
		Username: username,
		Email:    toEmail,
		BaseURL:  e.config.BaseURL,
	}

	var htmlBody, textBody bytes.Buffer
	if err := welcomeHTML.Execute(&htmlBody, data); err != nil {
		return fmt.Errorf("failed to execute HTML template: %w", err)
	}
	if err := welcomeText.Execute(&textBody, data); err != nil {
		return fmt.Errorf("failed to execute text template: %w", err)
	}

	return e.sendEmail(toEmail, welcomeSubject, textBody.String(), htmlBody.String())
}

// BuildMessage renders the multipart MIME message sent to the server
func (e *EmailService) BuildMessage(to, subject, textBody, htmlBody string) string {
	from := fmt.Sprintf("%s <%s>", e.config.FromName, e.config.FromEmail)
	boundary := "nba-predictions-boundary"

	return fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\n"+
		"Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n"+
		"--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n"+
		"--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n"+
		"--%s--\r\n",
		from, to, subject, boundary, boundary, textBody, boundary, htmlBody, boundary)
}

func (e *EmailService) connect() (*smtp.Client, error) {
	addr := net.JoinHostPort(e.config.SMTPHost, e.config.SMTPPort)
	conn, err := e.dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, e.config.SMTPHost)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: e.config.SMTPHost}); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if ok, _ := client.Extension("AUTH"); ok && e.config.SMTPUsername != "" {
		auth := smtp.PlainAuth("", e.config.SMTPUsername, e.config.SMTPPassword, e.config.SMTPHost)
		if err := client.Auth(auth); err != nil {
			client.Close()
			return nil, fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}
	return client, nil
}

func (e *EmailService) sendEmail(to, subject, textBody, htmlBody string) error {
	client, err := e.connect()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Mail(e.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := writer.Write([]byte(e.BuildMessage(to, subject, textBody, htmlBody))); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish email body: %w", err)
	}

	logging.WithPrefix("Email").Infof("Welcome email sent to %s", to)
	return client.Quit()
}

// IsConfigured checks if the email service is properly configured
func (e *EmailService) IsConfigured() bool {
	return e.config.SMTPHost != "" &&
		e.config.SMTPPort != "" &&
		e.config.FromEmail != ""
}

// TestConnection dials and authenticates without sending anything
func (e *EmailService) TestConnection() error {
	if !e.IsConfigured() {
		return fmt.Errorf("email service not configured")
	}
	client, err := e.connect()
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Quit()
}
