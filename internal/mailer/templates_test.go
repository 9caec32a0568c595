package mailer

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv clears a variable for the test while keeping t.Setenv's cleanup.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	_ = os.Unsetenv(key)
}

func TestVerificationCodeTemplate(t *testing.T) {
	body, err := resolveTemplate("verification-code", map[string]string{
		"Name": "Ada",
		"Code": "123456",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Hi Ada")
	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "10 minutes")
}

func TestPasswordResetTemplate(t *testing.T) {
	link := "https://legacynote.app/resetpassword/abc123"
	body, err := resolveTemplate("password-reset", map[string]string{
		"Name": "Ada",
		"Link": link,
	})
	require.NoError(t, err)

	assert.Contains(t, body, link)
	assert.Contains(t, body, "30 minutes")
}

func TestTemplatesEscapeHTML(t *testing.T) {
	body, err := resolveTemplate("welcome", map[string]string{
		"Name": "<script>alert(1)</script>",
	})
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>")
}

func TestPasswordChangedTemplate(t *testing.T) {
	body, err := resolveTemplate("password-changed", map[string]string{
		"Name": "Ada",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "was just changed")
}

func TestMailerConfigServiceShortcut(t *testing.T) {
	t.Setenv("EMAIL_SERVICE", "gmail")
	unsetenv(t, "EMAIL_HOST")
	unsetenv(t, "EMAIL_PORT")
	t.Setenv("EMAIL_USERNAME", "legacynote@gmail.com")
	t.Setenv("EMAIL_PASSWORD", "app-password")
	unsetenv(t, "EMAIL_FROM")

	logger := zerolog.Nop()
	cfg := newMailerConfig(&logger)

	require.NoError(t, cfg.validate())
	assert.Equal(t, "smtp.gmail.com", cfg.Host)
	assert.Equal(t, 587, cfg.Port)
	assert.Equal(t, "legacynote@gmail.com", cfg.From)
}

func TestMailerConfigExplicitHostWins(t *testing.T) {
	t.Setenv("EMAIL_SERVICE", "gmail")
	t.Setenv("EMAIL_HOST", "smtp.internal.example.com")
	t.Setenv("EMAIL_PORT", "2525")
	t.Setenv("EMAIL_USERNAME", "mailer")
	t.Setenv("EMAIL_PASSWORD", "secret")
	t.Setenv("EMAIL_FROM", "noreply@legacynote.app")

	logger := zerolog.Nop()
	cfg := newMailerConfig(&logger)

	require.NoError(t, cfg.validate())
	assert.Equal(t, "smtp.internal.example.com", cfg.Host)
	assert.Equal(t, 2525, cfg.Port)
}

func TestMailerConfigMissingCredentials(t *testing.T) {
	t.Setenv("EMAIL_SERVICE", "gmail")
	unsetenv(t, "EMAIL_HOST")
	unsetenv(t, "EMAIL_PORT")
	unsetenv(t, "EMAIL_USERNAME")
	unsetenv(t, "EMAIL_PASSWORD")
	unsetenv(t, "EMAIL_FROM")

	logger := zerolog.Nop()
	cfg := newMailerConfig(&logger)

	assert.Error(t, cfg.validate())
}

func TestSendRequiresRecipient(t *testing.T) {
	m := &Mailer{config: &mailerConfig{From: "noreply@legacynote.app"}}

	err := m.Send(Email{Subject: "no one to send to"})
	assert.Error(t, err)
}
