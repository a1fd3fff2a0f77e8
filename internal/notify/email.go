package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"github.com/voicewatch/voicewatch/internal/logger"
)

// SMTPConfig carries everything the mailer needs to reach the server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	TLSMode  string // tls, starttls or none
	From     string
	To       string // comma separated recipients
}

// Mailer delivers digest emails over SMTP.
type Mailer struct {
	cfg        SMTPConfig
	recipients []string
}

// NewMailer builds a mailer from SMTP settings, dropping recipients
// that do not look like addresses.
func NewMailer(cfg SMTPConfig) *Mailer {
	m := &Mailer{
		cfg:        cfg,
		recipients: ParseRecipients(cfg.To),
	}

	if m.Enabled() {
		logger.Info("📧 email notifications enabled",
			"smtp", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			"recipients", len(m.recipients))
	} else {
		logger.Info("📧 email notifications disabled")
	}
	return m
}

// Enabled reports whether the mailer has enough configuration to send.
func (m *Mailer) Enabled() bool {
	return m.cfg.Host != "" && m.cfg.From != "" && len(m.recipients) > 0
}

// ParseRecipients splits a comma separated recipient list, keeping only
// entries that look like email addresses.
func ParseRecipients(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		addr := strings.TrimSpace(part)
		if addr == "" {
			continue
		}
		if !strings.Contains(addr, "@") || !strings.Contains(addr, ".") {
			logger.Warn("⚠️ dropping invalid email recipient", "address", addr)
			continue
		}
		out = append(out, addr)
	}
	return out
}

// SendDigest emails the digest to all recipients. A bulk send is tried
// first; if the server rejects it, each recipient gets an individual
// attempt, and the digest counts as delivered when at least one lands.
func (m *Mailer) SendDigest(ctx context.Context, d *Digest) error {
	if !m.Enabled() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := fmt.Sprintf("🔊 AI Voice News Digest - %s", d.Date)
	htmlBody := RenderHTML(d)
	textBody := RenderText(d)

	err := m.send(m.recipients, subject, htmlBody, textBody)
	if err == nil {
		logger.Info("✅ email digest sent", "recipients", len(m.recipients))
		return nil
	}

	logger.Warn("⚠️ bulk email send failed, retrying per recipient", "error", err)
	sent := 0
	for _, rcpt := range m.recipients {
		if ctx.Err() != nil {
			break
		}
		if sendErr := m.send([]string{rcpt}, subject, htmlBody, textBody); sendErr != nil {
			logger.Warn("❌ email send failed", "to", rcpt, "error", sendErr)
		} else {
			sent++
		}
	}

	if sent > 0 {
		logger.Info("✅ email digest sent", "recipients", sent, "of", len(m.recipients))
		return nil
	}
	return fmt.Errorf("email digest failed for all %d recipients: %w", len(m.recipients), err)
}

func (m *Mailer) send(to []string, subject, htmlBody, textBody string) error {
	msg := buildMessage(m.cfg.From, to, subject, htmlBody, textBody)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	switch m.cfg.TLSMode {
	case "tls":
		return m.sendWithTLS(addr, auth, to, msg)
	case "starttls":
		return m.sendWithStartTLS(addr, auth, to, msg)
	default: // none
		return smtp.SendMail(addr, auth, m.cfg.From, to, []byte(msg))
	}
}

// buildMessage assembles a multipart/alternative MIME message with
// plain text and HTML parts.
func buildMessage(from string, to []string, subject, htmlBody, textBody string) string {
	boundary := "VoiceWatchBoundary123456789"
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary))
	msg.WriteString("\r\n")

	if textBody != "" {
		msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(textBody)
		msg.WriteString("\r\n")
	}

	if htmlBody != "" {
		msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(htmlBody)
		msg.WriteString("\r\n")
	}

	msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return msg.String()
}

// sendWithTLS connects over implicit TLS, typically port 465.
func (m *Mailer) sendWithTLS(addr string, auth smtp.Auth, to []string, msg string) error {
	tlsConfig := &tls.Config{
		ServerName: m.cfg.Host,
		MinVersion: tls.VersionTLS12,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("TLS dial failed: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("SMTP client failed: %w", err)
	}
	defer client.Close()

	return m.transmit(client, auth, to, msg)
}

// sendWithStartTLS connects in the clear and upgrades, typically port 587.
func (m *Mailer) sendWithStartTLS(addr string, auth smtp.Auth, to []string, msg string) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("SMTP dial failed: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		ServerName: m.cfg.Host,
		MinVersion: tls.VersionTLS12,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("STARTTLS failed: %w", err)
	}

	return m.transmit(client, auth, to, msg)
}

func (m *Mailer) transmit(client *smtp.Client, auth smtp.Auth, to []string, msg string) error {
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth failed: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("SMTP MAIL failed: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("SMTP RCPT failed: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA failed: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("SMTP write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("SMTP close failed: %w", err)
	}

	return client.Quit()
}
