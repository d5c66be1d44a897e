// Package email relays contact-form messages over SMTP.
package email

import (
	"fmt"
	"net/smtp"
)

// Config holds SMTP relay settings. An empty Host leaves the relay
// unconfigured, which the contact endpoint reports as a server error.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type Service struct {
	cfg  Config
	addr string
	auth smtp.Auth
	// send is swapped in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewService(cfg Config) *Service {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &Service{
		cfg:  cfg,
		addr: cfg.Host + ":" + cfg.Port,
		auth: auth,
		send: smtp.SendMail,
	}
}

// IsConfigured reports whether the relay can be used.
func (s *Service) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Port != "" && s.cfg.From != ""
}

// Send relays one plain-text message to the given recipient.
func (s *Service) Send(to, subject, body string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email relay not configured")
	}
	msg := buildMessage(s.cfg.From, to, subject, body)
	if err := s.send(s.addr, s.auth, s.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	return []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s\r\n"+
			"Subject: %s\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		to, from, subject, body,
	))
}
