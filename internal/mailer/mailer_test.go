package mailer

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	gomail "gopkg.in/gomail.v2"

	"github.com/asapfoodtrailer/dealerd/internal/models"
)

type captureSender struct {
	messages []*gomail.Message
	err      error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, m...)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testLead() *models.Lead {
	return &models.Lead{
		ID:           "lead-1",
		CustomerName: "Dana Fields",
		Email:        "dana@example.com",
		Phone:        "+1-713-555-0101",
		VehicleID:    "v1",
		Message:      "Interested in the 16ft trailer",
		CreatedAt:    time.Date(2026, 8, 27, 15, 0, 0, 0, time.UTC),
	}
}

func TestNotifySendsMessage(t *testing.T) {
	sender := &captureSender{}
	m := NewWithSender(sender, "ASAP Food Trailer", "noreply@example.com", "sales@example.com", testLogger())

	m.Notify(testLead())

	if len(sender.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(sender.messages))
	}
	msg := sender.messages[0]
	if got := msg.GetHeader("To"); len(got) != 1 || got[0] != "sales@example.com" {
		t.Errorf("To = %v", got)
	}
	subject := msg.GetHeader("Subject")
	if len(subject) != 1 || !strings.Contains(subject[0], "Dana Fields") {
		t.Errorf("Subject = %v", subject)
	}
}

func TestNotifyDisabledIsNoOp(t *testing.T) {
	m := New(Options{BusinessName: "ASAP Food Trailer"}, testLogger())
	if m.Enabled() {
		t.Fatal("mailer should be disabled without a host")
	}
	// Must not panic.
	m.Notify(testLead())
}

func TestNotifySwallowsSendErrors(t *testing.T) {
	sender := &captureSender{err: errors.New("smtp down")}
	m := NewWithSender(sender, "ASAP Food Trailer", "noreply@example.com", "sales@example.com", testLogger())
	// Best-effort contract: no panic, no error surfaced.
	m.Notify(testLead())
}

func TestLeadTextOmitsEmptyVehicle(t *testing.T) {
	lead := testLead()
	lead.VehicleID = ""
	lead.Phone = ""

	text := leadText(lead)
	if strings.Contains(text, "Vehicle:") {
		t.Errorf("vehicle line present: %q", text)
	}
	if !strings.Contains(text, "Phone:   N/A") {
		t.Errorf("missing N/A phone: %q", text)
	}
}
