package mailer

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-tms/internal/models"
)

func TestWelcomeMessage(t *testing.T) {
	m := New(zerolog.Nop(), "localhost", 2525, "", "", "noreply@tmsystem.com")

	msg, err := m.newMessage("ann@example.com", "welcome.tmpl", &models.User{Name: "Ann <3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ann@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"noreply@tmsystem.com"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"Welcome to TMS - Registration Successful"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text/plain")
	assert.Contains(t, buf.String(), "text/html")
}

func TestSendStopsOnCanceledContext(t *testing.T) {
	m := New(zerolog.Nop(), "localhost", 1, "", "", "noreply@tmsystem.com")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.SendWelcome(ctx, &models.User{Name: "Ann", Email: "ann@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.SendWelcome(context.Background(), &models.User{}))
}
