package email

import (
	"net/smtp"
	"strings"
	"testing"
)

func TestIsConfigured(t *testing.T) {
	if NewService(Config{}).IsConfigured() {
		t.Errorf("expected empty config to be unconfigured")
	}
	full := Config{Host: "smtp.example.com", Port: "587", From: "site@example.com"}
	if !NewService(full).IsConfigured() {
		t.Errorf("expected full config to be configured")
	}
}

func TestSendUnconfigured(t *testing.T) {
	if err := NewService(Config{}).Send("team@example.com", "subject", "body"); err == nil {
		t.Errorf("expected error when relay is unconfigured")
	}
}

func TestSendBuildsMessage(t *testing.T) {
	s := NewService(Config{Host: "smtp.example.com", Port: "587", From: "site@example.com"})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	if err := s.Send("team@example.com", "Contact request", "hello there"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotAddr != "smtp.example.com:587" {
		t.Errorf("unexpected addr %q", gotAddr)
	}
	if gotFrom != "site@example.com" || len(gotTo) != 1 || gotTo[0] != "team@example.com" {
		t.Errorf("unexpected envelope: from=%q to=%v", gotFrom, gotTo)
	}
	msg := string(gotMsg)
	if !strings.Contains(msg, "Subject: Contact request") || !strings.HasSuffix(msg, "\r\n\r\nhello there") {
		t.Errorf("unexpected message: %q", msg)
	}
}
