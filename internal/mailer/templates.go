package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

const verificationCodeTemplate = `
	<p>Hi {{.Name}},</p>
	<p>Your LegacyNote verification code is:</p>

	<p style="font-size: 24px; letter-spacing: 4px;"><strong>{{.Code}}</strong></p>

	<p>Enter this code to confirm your email address. It expires in 10 minutes.</p>
	<p>If you did not create a LegacyNote account, you can safely ignore this email.</p>

	<p>Thank you,</p>
	<p>The LegacyNote Team</p>
`

const welcomeTemplate = `
	<p>Hi {{.Name}},</p>
	<p>Your email address is verified and your LegacyNote account is ready.</p>
	<p>Write a note today, seal it, and we will deliver it when its time comes.</p>

	<p>Thank you,</p>
	<p>The LegacyNote Team</p>
`

const passwordResetTemplate = `
	<p>Hi {{.Name}},</p>
	<p>We received a request to reset the password for your account.</p>
	<p>If you made this request, please click the link below to create a new password:</p>

	<p><a href="{{.Link}}">{{.Link}}</a></p>

	<p>This link will expire in 30 minutes for your security.</p>
	<p>If you did not request a password reset, you can safely ignore this email.</p>

	<p>Thank you,</p>
	<p>The LegacyNote Team</p>
`

const passwordChangedTemplate = `
	<p>Hi {{.Name}},</p>
	<p>The password for your LegacyNote account was just changed.</p>
	<p>If this was you, no further action is needed.</p>
	<p>If you did not change your password, please reset it immediately.</p>

	<p>Thank you,</p>
	<p>The LegacyNote Team</p>
`

var messageTemplates = template.Must(template.New("verification-code").Parse(verificationCodeTemplate))

func init() {
	template.Must(messageTemplates.New("welcome").Parse(welcomeTemplate))
	template.Must(messageTemplates.New("password-reset").Parse(passwordResetTemplate))
	template.Must(messageTemplates.New("password-changed").Parse(passwordChangedTemplate))
}

func resolveTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := messageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("error during executing template %s: %v", name, err)
	}

	return buf.String(), nil
}

// SendVerificationCode emails a one-time email verification code.
func (m *Mailer) SendVerificationCode(to, name, code string) error {
	body, err := resolveTemplate("verification-code", map[string]string{
		"Name": name,
		"Code": code,
	})
	if err != nil {
		return err
	}

	return m.Send(Email{
		To:       []string{to},
		Subject:  "Your LegacyNote verification code",
		HTMLBody: body,
	})
}

// SendWelcome emails a welcome message after successful verification.
func (m *Mailer) SendWelcome(to, name string) error {
	body, err := resolveTemplate("welcome", map[string]string{
		"Name": name,
	})
	if err != nil {
		return err
	}

	return m.Send(Email{
		To:       []string{to},
		Subject:  "Welcome to LegacyNote",
		HTMLBody: body,
	})
}

// SendPasswordReset emails a password reset link.
func (m *Mailer) SendPasswordReset(to, name, link string) error {
	body, err := resolveTemplate("password-reset", map[string]string{
		"Name": name,
		"Link": link,
	})
	if err != nil {
		return err
	}

	return m.Send(Email{
		To:       []string{to},
		Subject:  "Password Reset Request",
		HTMLBody: body,
	})
}

// SendPasswordChanged emails a confirmation that the password changed.
func (m *Mailer) SendPasswordChanged(to, name string) error {
	body, err := resolveTemplate("password-changed", map[string]string{
		"Name": name,
	})
	if err != nil {
		return err
	}

	return m.Send(Email{
		To:       []string{to},
		Subject:  "Your password was changed",
		HTMLBody: body,
	})
}
