// Package mailer delivers transactional email. The only message this
// application sends is the OTP verification code.
package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
)

// Mailer sends verification codes to users.
type Mailer interface {
	SendOTP(ctx context.Context, to, otp string) error
}

// SMTPMailer sends mail through a plain SMTP relay (Gmail by default).
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPMailer creates a new SMTPMailer. An empty username disables
// authentication, which is handy against a local debug relay.
func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// SendOTP delivers the verification code to the given address. The send is
// synchronous; net/smtp offers no cancellation, so ctx only guards the
// call site's intent.
func (m *SMTPMailer) SendOTP(ctx context.Context, to, otp string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	msg := buildOTPMessage(m.from, to, otp)
	addr := net.JoinHostPort(m.host, m.port)
	return smtp.SendMail(addr, auth, m.from, []string{to}, msg)
}

func buildOTPMessage(from, to, otp string) []byte {
	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333; text-align: center;">Email Verification</h2>
  <p style="color: #666; font-size: 16px;">Hello,</p>
  <p style="color: #666; font-size: 16px;">
    Thank you for signing up for NoteHub! To complete your registration,
    please use the following verification code:
  </p>
  <div style="text-align: center; margin: 30px 0;">
    <span style="background-color: #f0f0f0; padding: 15px 25px; font-size: 24px;
                 font-weight: bold; color: #333; border-radius: 5px; letter-spacing: 3px;">%s</span>
  </div>
  <p style="color: #666; font-size: 14px;">
    This code will expire in 10 minutes. If you didn't request this
    verification, please ignore this email.
  </p>
</div>`, otp)

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: NoteHub - Email Verification\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n", from, to)
	return []byte(headers + body)
}
