package email

import (
	"strings"
	"testing"
	"time"
)

func TestCompose(t *testing.T) {
	date := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	msg := Message{To: "john@gmail.com", Subject: "Password Reset", Text: "line one\nline two"}

	got := string(Compose("DevCamper <noreply@devcamper.io>", msg, date))

	for _, want := range []string{
		"From: DevCamper <noreply@devcamper.io>\r\n",
		"To: john@gmail.com\r\n",
		"Subject: Password Reset\r\n",
		"Date: Tue, 02 Jan 2024 03:04:05 +0000\r\n",
		"\r\n\r\nline one\r\nline two",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("message misses %q:\n%s", want, got)
		}
	}
}

func TestSenderAddress(t *testing.T) {
	if got := senderAddress("DevCamper <noreply@devcamper.io>"); got != "noreply@devcamper.io" {
		t.Fatalf("got %q", got)
	}
	if got := senderAddress("noreply@devcamper.io"); got != "noreply@devcamper.io" {
		t.Fatalf("got %q", got)
	}
}
