package notification

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"time"

	"github.com/onboardflow/platform/pkg/common/config"
	"github.com/onboardflow/platform/pkg/common/logger"
	"github.com/onboardflow/platform/pkg/common/models"
)

// Mailer sends best-effort processing notifications over authenticated SMTP.
// With incomplete transport configuration it degrades to a no-op that
// reports false; it never returns an error to the pipeline.
type Mailer struct {
	server   string
	port     string
	username string
	password string
	from     string
	to       string
}

func NewMailer(cfg *config.Config) *Mailer {
	m := &Mailer{
		server:   cfg.SMTPServer,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.EmailFrom,
		to:       cfg.EmailTo,
	}

	if !m.configured() {
		logger.Log.Warn("SMTP configuration incomplete, notifications disabled")
	}

	return m
}

func (m *Mailer) configured() bool {
	return m.username != "" && m.password != "" && m.from != ""
}

func (m *Mailer) NotifySuccess(fields map[string]interface{}, docs []models.DocumentDescriptor, processID string) bool {
	subject := fmt.Sprintf("Documents processed - OnboardFlow (%s)", time.Now().Format("02/01/2006"))
	if processID != "" {
		subject += " - ID: " + processID
	}

	return m.send(subject, successText(fields, docs), successHTML(fields, docs))
}

func (m *Mailer) NotifyFailure(errorMessage string, docs []models.DocumentDescriptor) bool {
	subject := fmt.Sprintf("Processing error - OnboardFlow (%s)", time.Now().Format("02/01/2006"))
	return m.send(subject, failureText(errorMessage, docs), failureHTML(errorMessage, docs))
}

func (m *Mailer) send(subject, textBody, htmlBody string) bool {
	if !m.configured() {
		logger.Log.Warn("SMTP configuration incomplete, notification not sent")
		return false
	}

	msg, err := buildMessage(m.from, m.to, subject, textBody, htmlBody)
	if err != nil {
		logger.Log.WithError(err).Warn("failed to build notification message")
		return false
	}

	auth := smtp.PlainAuth("", m.username, m.password, m.server)
	if err := smtp.SendMail(m.server+":"+m.port, auth, m.from, []string{m.to}, msg); err != nil {
		logger.Log.WithError(err).Warn("failed to send notification email")
		return false
	}

	logger.Log.WithField("to", m.to).Info("notification email sent")
	return true
}

// buildMessage assembles one multipart/alternative message carrying the
// plain-text and HTML renderings of the same content.
func buildMessage(from, to, subject, textBody, htmlBody string) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	text, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=UTF-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := text.Write([]byte(textBody)); err != nil {
		return nil, err
	}

	html, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=UTF-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := html.Write([]byte(htmlBody)); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n", writer.Boundary())
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	return msg.Bytes(), nil
}
