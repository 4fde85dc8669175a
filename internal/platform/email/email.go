package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/mk1945/cloudvault/internal/config"
	"github.com/mk1945/cloudvault/internal/domain"
)

// EmailService defines an interface for sending transactional emails.
type EmailService interface {
	SendActivationEmail(user *domain.User, token string) error
	SendPasswordResetEmail(user *domain.User, token string) error
}

// SMTPEmailService is a concrete implementation of EmailService using SMTP.
type SMTPEmailService struct {
	cfg config.Email
	// frontendURL is the base URL of the front-end application; activation
	// and reset links point there, not at the API.
	frontendURL string
}

// NewSMTPEmailService creates a new SMTPEmailService.
func NewSMTPEmailService(cfg config.Email, frontendURL string) *SMTPEmailService {
	return &SMTPEmailService{
		cfg:         cfg,
		frontendURL: frontendURL,
	}
}

// send performs the actual email sending via SMTP. When email is disabled in
// configuration it is a no-op, so local environments register accounts without
// an SMTP server.
func (s *SMTPEmailService) send(to, subject, body string) error {
	if !s.cfg.Enabled {
		return nil
	}

	// PlainAuth is widely supported; the username is the from-address and
	// the password is the API key.
	auth := smtp.PlainAuth("", s.cfg.Address, s.cfg.APIKey, s.cfg.Host)

	// The message is formatted according to RFC 822: From, To, Subject
	// headers followed by the body.
	msg := []byte(strings.ReplaceAll(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", s.cfg.Address, to, subject, body),
		"\n", "\r\n"),
	)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	return smtp.SendMail(addr, auth, s.cfg.Address, []string{to}, msg)
}

// SendActivationEmail sends the account activation link. The token in the
// link is the raw (unhashed) activation token.
func (s *SMTPEmailService) SendActivationEmail(user *domain.User, token string) error {
	subject := "CloudVault Account Activation"
	url := fmt.Sprintf("%s/activate/%s", s.frontendURL, token)
	body := "Please navigate to the following link to activate your account: " + url

	return s.send(user.Email, subject, body)
}

// SendPasswordResetEmail sends the password reset link.
func (s *SMTPEmailService) SendPasswordResetEmail(user *domain.User, token string) error {
	subject := "CloudVault Password Reset"
	url := fmt.Sprintf("%s/resetpassword/%s", s.frontendURL, token)
	body := "Please navigate to the following link to reset your password: " + url

	return s.send(user.Email, subject, body)
}
