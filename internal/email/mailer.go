// Package email delivers the enquiry notifications.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"
)

// Message is one outbound HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// smtpServer is the submission endpoint of a well-known provider.
type smtpServer struct {
	host string
	port int
}

var services = map[string]smtpServer{
	"gmail":   {host: "smtp.gmail.com", port: 587},
	"outlook": {host: "smtp-mail.outlook.com", port: 587},
	"hotmail": {host: "smtp-mail.outlook.com", port: 587},
	"yahoo":   {host: "smtp.mail.yahoo.com", port: 465},
}

// SMTPConfig selects the SMTP server and credentials.
type SMTPConfig struct {
	Service  string
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPMailer sends through an authenticated SMTP server, using the account
// name as the sender address.
type SMTPMailer struct {
	from   string
	client *mail.Client
}

// NewSMTPMailer resolves the service name to a server and prepares the client.
// Service "smtp" uses the explicit host and port.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	server := smtpServer{host: cfg.Host, port: cfg.Port}
	if s, ok := services[strings.ToLower(cfg.Service)]; ok {
		server = s
	}
	if server.host == "" {
		return nil, fmt.Errorf("no smtp host for email service %q", cfg.Service)
	}
	if server.port == 0 {
		server.port = 587
	}

	opts := []mail.Option{
		mail.WithPort(server.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}
	if server.port == 465 {
		opts = append(opts, mail.WithSSLPort(false))
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}
	client, err := mail.NewClient(server.host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}
	return &SMTPMailer{from: cfg.Username, client: client}, nil
}

// Send delivers msg over a fresh SMTP connection.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out := mail.NewMsg()
	if err := out.From(m.from); err != nil {
		return fmt.Errorf("invalid sender %q: %w", m.from, err)
	}
	if err := out.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextHTML, msg.HTML)

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("sending mail to %s: %w", msg.To, err)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them. Used for
// local development with EMAIL_SERVICE=log.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	slog.Info("email (log transport)", "to", msg.To, "subject", msg.Subject, "bytes", len(msg.HTML))
	return nil
}
