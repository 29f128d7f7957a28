// Package mailer sends lead notification emails over SMTP. Notifications are
// best-effort: failures are logged and never surfaced to the request that
// created the lead.
package mailer

import (
	"fmt"
	"log/slog"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/asapfoodtrailer/dealerd/internal/models"
)

// Sender abstracts the SMTP dial so tests can capture messages.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer builds and sends lead notifications.
type Mailer struct {
	sender       Sender
	businessName string
	from         string
	notifyTo     string
	logger       *slog.Logger
}

// Options configures a Mailer. An empty Host disables sending entirely.
type Options struct {
	Host         string
	Port         int
	From         string
	Password     string
	NotifyTo     string
	BusinessName string
}

// New creates a Mailer. When opts.Host is empty the returned Mailer is
// disabled: Notify becomes a logged no-op.
func New(opts Options, logger *slog.Logger) *Mailer {
	m := &Mailer{
		businessName: opts.BusinessName,
		from:         opts.From,
		notifyTo:     opts.NotifyTo,
		logger:       logger,
	}
	if opts.Host == "" {
		logger.Warn("mailer: smtp not configured, lead notifications disabled")
		return m
	}
	m.sender = gomail.NewDialer(opts.Host, opts.Port, opts.From, opts.Password)
	return m
}

// NewWithSender creates a Mailer with a custom sender, for tests.
func NewWithSender(sender Sender, businessName, from, notifyTo string, logger *slog.Logger) *Mailer {
	return &Mailer{
		sender:       sender,
		businessName: businessName,
		from:         from,
		notifyTo:     notifyTo,
		logger:       logger,
	}
}

// Enabled reports whether the mailer can send.
func (m *Mailer) Enabled() bool {
	return m.sender != nil
}

// Notify sends a new-lead notification. It never returns an error to keep
// the best-effort contract; failures are logged instead.
func (m *Mailer) Notify(lead *models.Lead) {
	if m.sender == nil {
		m.logger.Debug("mailer: skipped, not configured")
		return
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.businessName)
	msg.SetHeader("To", m.notifyTo)
	msg.SetHeader("Subject", fmt.Sprintf("New lead from %s - %s", m.businessName, lead.CustomerName))
	msg.SetBody("text/plain", leadText(lead))
	msg.AddAlternative("text/html", leadHTML(lead))

	if err := m.sender.DialAndSend(msg); err != nil {
		m.logger.Error("mailer: send failed",
			slog.String("lead_id", lead.ID),
			slog.String("error", err.Error()))
		return
	}
	m.logger.Info("mailer: lead notification sent",
		slog.String("lead_id", lead.ID),
		slog.String("to", m.notifyTo))
}

func leadText(lead *models.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New lead received %s\n\n", lead.CreatedAt.Format("January 2, 2006 at 3:04 PM"))
	fmt.Fprintf(&b, "Name:    %s\n", lead.CustomerName)
	fmt.Fprintf(&b, "Email:   %s\n", lead.Email)
	fmt.Fprintf(&b, "Phone:   %s\n", orNA(lead.Phone))
	if lead.VehicleID != "" {
		fmt.Fprintf(&b, "Vehicle: %s\n", lead.VehicleID)
	}
	fmt.Fprintf(&b, "Message: %s\n", orNA(lead.Message))
	return b.String()
}

func leadHTML(lead *models.Lead) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:sans-serif;max-width:600px">`)
	fmt.Fprintf(&b, "<h2>New lead received</h2><p>%s</p><table>", lead.CreatedAt.Format("January 2, 2006 at 3:04 PM"))
	row := func(k, v string) {
		fmt.Fprintf(&b, "<tr><td><strong>%s</strong></td><td>%s</td></tr>", k, v)
	}
	row("Name", lead.CustomerName)
	row("Email", lead.Email)
	row("Phone", orNA(lead.Phone))
	if lead.VehicleID != "" {
		row("Vehicle", lead.VehicleID)
	}
	row("Message", orNA(lead.Message))
	b.WriteString("</table></div>")
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
