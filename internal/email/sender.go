// Package email delivers outbound notification mail over SMTP. Delivery is
// fire-and-forget from the caller's perspective: failures are logged by
// the subscribing module and never block the triggering transition.
package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// Sender is the outbound notification capability consumed by the
// notifications module.
type Sender interface {
	SendEscalationAlert(ctx context.Context, toEmail, contactName, message string) error
	SendProposalDispatched(ctx context.Context, toEmail, contactName string) error
	SendContractDispatched(ctx context.Context, toEmail, contactName string) error
	SendClientConfirmed(ctx context.Context, toEmail, contactName string) error
	SendArchiveNotice(ctx context.Context, toEmail, contactName string, automatic bool) error
}

// SMTPSender implements Sender using a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendEscalationAlert(ctx context.Context, toEmail, contactName, message string) error {
	content, err := renderEmailTemplate(emailData{
		Title:   "Escalation alert",
		Heading: fmt.Sprintf("Action needed for %s", contactName),
		Body:    message,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectEscalation, content)
}

func (s *SMTPSender) SendProposalDispatched(ctx context.Context, toEmail, contactName string) error {
	content, err := renderEmailTemplate(emailData{
		Title:   "Proposal sent",
		Heading: fmt.Sprintf("Proposal sent to %s", contactName),
		Body:    "The proposal has been dispatched and the account is now waiting for approval.",
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectProposal, content)
}

func (s *SMTPSender) SendContractDispatched(ctx context.Context, toEmail, contactName string) error {
	content, err := renderEmailTemplate(emailData{
		Title:   "Contract sent",
		Heading: fmt.Sprintf("Contract sent to %s", contactName),
		Body:    "The contract has been dispatched and the account is now waiting for acceptance.",
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectContract, content)
}

func (s *SMTPSender) SendClientConfirmed(ctx context.Context, toEmail, contactName string) error {
	content, err := renderEmailTemplate(emailData{
		Title:   "Client confirmed",
		Heading: fmt.Sprintf("%s is now a confirmed client", contactName),
		Body:    "The account has been moved to the client portfolio.",
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectConfirmed, content)
}

func (s *SMTPSender) SendArchiveNotice(ctx context.Context, toEmail, contactName string, automatic bool) error {
	body := "The account has been archived."
	if automatic {
		body = "The account did not respond to repeated follow-ups and has been archived automatically."
	}
	content, err := renderEmailTemplate(emailData{
		Title:   "Account archived",
		Heading: fmt.Sprintf("%s has been archived", contactName),
		Body:    body,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectArchived, content)
}

// NoopSender discards all mail. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendEscalationAlert(context.Context, string, string, string) error { return nil }
func (NoopSender) SendProposalDispatched(context.Context, string, string) error      { return nil }
func (NoopSender) SendContractDispatched(context.Context, string, string) error      { return nil }
func (NoopSender) SendClientConfirmed(context.Context, string, string) error         { return nil }
func (NoopSender) SendArchiveNotice(context.Context, string, string, bool) error     { return nil }

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = NoopSender{}
)
