package mail

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"

	"github.com/hospital/pharmacy-api/internal/core/ports"
)

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("pharmacy@hospital.com", ports.MailMessage{
		To:       "jane@hospital.com",
		Subject:  "Reset your pharmacy account password",
		HTMLBody: "<p>hi</p>",
	})
	require.NoError(t, err)

	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"jane@hospital.com"}, rcpts)
	assert.Equal(t, []string{"Reset your pharmacy account password"}, msg.GetGenHeader(gomail.HeaderSubject))
}

func TestBuildMessage_InvalidAddresses(t *testing.T) {
	_, err := buildMessage("not an address", ports.MailMessage{To: "jane@hospital.com"})
	assert.Error(t, err)

	_, err = buildMessage("pharmacy@hospital.com", ports.MailMessage{To: "not an address"})
	assert.Error(t, err)
}

func TestLogMailer_NeverFails(t *testing.T) {
	m := NewLogMailer(zerolog.Nop())
	assert.NoError(t, m.Send(context.Background(), ports.MailMessage{To: "x@y.z"}))
}
