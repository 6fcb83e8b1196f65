// Package mailer sends the transactional emails of the booking flow.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

var ErrMissingFields = errors.New("to, subject and html are required")

type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Sender delivers one message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// ResendSender delivers through the Resend HTTP API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("resend send: %w", err)
	}
	return sent.Id, nil
}

// LogSender only logs; used when no provider key is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) (string, error) {
	s.logger.Info("Email not sent, no provider configured",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return "", nil
}

// AppointmentEmail is the data rendered into every appointment template.
type AppointmentEmail struct {
	To           string
	ClientName   string
	BusinessName string
	ServiceName  string
	EmployeeName string
	Date         string
	Time         string
	Price        string
}

type Mailer struct {
	sender Sender
	logger *zap.Logger
}

func New(sender Sender, logger *zap.Logger) *Mailer {
	return &Mailer{sender: sender, logger: logger}
}

// Send validates and forwards a raw message.
func (m *Mailer) Send(ctx context.Context, msg Message) (string, error) {
	if len(msg.To) == 0 || strings.TrimSpace(msg.Subject) == "" || strings.TrimSpace(msg.HTML) == "" {
		return "", ErrMissingFields
	}
	id, err := m.sender.Send(ctx, msg)
	if err != nil {
		return "", err
	}
	m.logger.Debug("Email sent", zap.Strings("to", msg.To), zap.String("id", id))
	return id, nil
}

func (m *Mailer) SendConfirmation(ctx context.Context, e AppointmentEmail) error {
	return m.sendTemplate(ctx, confirmationTmpl, "Confirmación de cita", e)
}

func (m *Mailer) SendCancellation(ctx context.Context, e AppointmentEmail) error {
	return m.sendTemplate(ctx, cancellationTmpl, "Cita cancelada", e)
}

func (m *Mailer) SendReminder(ctx context.Context, e AppointmentEmail) error {
	return m.sendTemplate(ctx, reminderTmpl, "Recordatorio de cita", e)
}

func (m *Mailer) sendTemplate(ctx context.Context, tmpl *template.Template, subject string, e AppointmentEmail) error {
	if e.To == "" {
		return fmt.Errorf("appointment email: empty recipient")
	}
	body, err := Render(tmpl, e)
	if err != nil {
		return err
	}
	_, err = m.Send(ctx, Message{To: []string{e.To}, Subject: subject, HTML: body})
	return err
}

func Render(tmpl *template.Template, e AppointmentEmail) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, e); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
