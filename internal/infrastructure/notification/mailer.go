package notification

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/smtp"

	"github.com/embedpro/pids-licensing/internal/config"
	"github.com/embedpro/pids-licensing/pkg/logger"
)

// Mailer sends one credential mail per delivery job.
type Mailer interface {
	Send(recipient, subject, body string, attachment []byte, attachmentName string) error
}

// SMTPMailer frames a multipart MIME message and hands it to net/smtp.
type SMTPMailer struct {
	cfg config.SMTPConfig
	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates the production mailer.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

// Send frames the message with a plain-text part and a PDF attachment.
func (m *SMTPMailer) Send(recipient, subject, body string, attachment []byte, attachmentName string) error {
	const boundary = "pids-mixed-boundary"

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.Sender)
	fmt.Fprintf(&msg, "To: %s\r\n", recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	if len(attachment) > 0 {
		fmt.Fprintf(&msg, "--%s\r\n", boundary)
		msg.WriteString("Content-Type: application/pdf\r\n")
		msg.WriteString("Content-Transfer-Encoding: base64\r\n")
		fmt.Fprintf(&msg, "Content-Disposition: attachment; filename=%q\r\n\r\n", attachmentName)
		writeBase64Wrapped(&msg, attachment)
	}
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	return m.send(m.cfg.Addr(), auth, m.cfg.Sender, []string{recipient}, msg.Bytes())
}

// LogMailer stands in when SMTP is not configured: deliveries are logged
// instead of sent, so development environments work without a mail relay.
type LogMailer struct {
	log logger.Logger
}

// NewLogMailer creates the logging stand-in.
func NewLogMailer(log logger.Logger) *LogMailer {
	return &LogMailer{log: log.WithComponent("mailer")}
}

// Send logs the delivery instead of performing it.
func (m *LogMailer) Send(recipient, subject, _ string, attachment []byte, attachmentName string) error {
	m.log.Info(context.Background(), "mail delivery skipped, smtp not configured",
		logger.String("recipient", recipient),
		logger.String("subject", subject),
		logger.String("attachment", attachmentName),
		logger.Int("attachment_bytes", len(attachment)))
	return nil
}

// writeBase64Wrapped emits base64 in 76-column lines per RFC 2045.
func writeBase64Wrapped(buf *bytes.Buffer, data []byte) {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76])
		buf.WriteString("\r\n")
		encoded = encoded[76:]
	}
	buf.WriteString(encoded)
	buf.WriteString("\r\n")
}
