package mail

import (
	"strings"
	"testing"
)

func TestBuildMessage(t *testing.T) {
	message := BuildMessage("App <no-reply@example.com>", "alice@example.com", "Your code", "Hi alice,\r\nYour one-time code is: 1234\r\n")

	lines := strings.Split(message, "\r\n")
	if lines[0] != "From: App <no-reply@example.com>" {
		t.Fatalf("from line = %q", lines[0])
	}
	if lines[1] != "To: alice@example.com" {
		t.Fatalf("to line = %q", lines[1])
	}
	if lines[2] != "Subject: Your code" {
		t.Fatalf("subject line = %q", lines[2])
	}
	if !strings.Contains(message, "Content-Type: text/plain; charset=utf-8") {
		t.Fatal("missing content type header")
	}
	if !strings.Contains(message, "\r\n\r\n") {
		t.Fatal("missing header/body separator")
	}
	if !strings.Contains(message, "code is: 1234") {
		t.Fatal("body missing")
	}
}

func TestParseAddress(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"no-reply@example.com", "no-reply@example.com"},
		{"App <no-reply@example.com>", "no-reply@example.com"},
		{"  padded@example.com  ", "padded@example.com"},
	}
	for _, tc := range cases {
		if got := parseAddress(tc.in); got != tc.want {
			t.Errorf("parseAddress(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewSMTPSenderValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"missing host", Config{Port: 587, From: "no-reply@example.com"}},
		{"missing port", Config{Host: "smtp.example.com", From: "no-reply@example.com"}},
		{"missing from", Config{Host: "smtp.example.com", Port: 587}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSMTPSender(tc.cfg); err == nil {
				t.Fatal("expected configuration error")
			}
		})
	}

	if _, err := NewSMTPSender(Config{Host: "smtp.example.com", Port: 587, From: "no-reply@example.com"}); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
