package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg Message) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.sent = append(r.sent, msg)
	return "msg-1", nil
}

func TestSendValidatesFields(t *testing.T) {
	m := New(&recordingSender{}, zap.NewNop())

	_, err := m.Send(context.Background(), Message{Subject: "s", HTML: "<p>x</p>"})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = m.Send(context.Background(), Message{To: []string{"a@b.co"}, HTML: "<p>x</p>"})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = m.Send(context.Background(), Message{To: []string{"a@b.co"}, Subject: "s", HTML: "  "})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestSendConfirmationRendersAppointment(t *testing.T) {
	rec := &recordingSender{}
	m := New(rec, zap.NewNop())

	err := m.SendConfirmation(context.Background(), AppointmentEmail{
		To:           "ana@example.com",
		ClientName:   "Ana <Gómez>",
		BusinessName: "Barbería El Elegante",
		ServiceName:  "Corte",
		EmployeeName: "Luis",
		Date:         "03/11/2025",
		Time:         "09:30",
		Price:        "$25.000",
	})
	require.NoError(t, err)
	require.Len(t, rec.sent, 1)

	msg := rec.sent[0]
	assert.Equal(t, []string{"ana@example.com"}, msg.To)
	assert.Equal(t, "Confirmación de cita", msg.Subject)
	assert.Contains(t, msg.HTML, "09:30")
	assert.Contains(t, msg.HTML, "Corte")
	assert.Contains(t, msg.HTML, "Ana &lt;Gómez&gt;")
	assert.Contains(t, msg.HTML, "$25.000")
}

func TestSendCancellationWithoutRecipient(t *testing.T) {
	rec := &recordingSender{}
	err := New(rec, zap.NewNop()).SendCancellation(context.Background(), AppointmentEmail{ServiceName: "Corte"})
	assert.Error(t, err)
	assert.Empty(t, rec.sent)
}

func TestSendPropagatesProviderError(t *testing.T) {
	boom := errors.New("rate limited")
	err := New(&recordingSender{err: boom}, zap.NewNop()).SendReminder(context.Background(), AppointmentEmail{To: "a@b.co"})
	assert.ErrorIs(t, err, boom)
}
