package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"enquiry-platform/internal/config"
	"enquiry-platform/internal/enquiry"
	"enquiry-platform/internal/users"
	"enquiry-platform/pkg/logger"
)

// RecipientSource lists candidate recipients. users.Store satisfies it.
type RecipientSource interface {
	List(ctx context.Context) ([]users.User, error)
}

// SMTPNotifier mails status-change notifications to every active user who
// has opted into email notifications.
type SMTPNotifier struct {
	cfg        config.SMTPConfig
	recipients RecipientSource
	send       func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPNotifier(cfg config.SMTPConfig, recipients RecipientSource) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, recipients: recipients, send: smtp.SendMail}
}

func (n *SMTPNotifier) EnquiryStatusChanged(ctx context.Context, note enquiry.StatusChangeNote) error {
	all, err := n.recipients.List(ctx)
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}

	to := make([]string, 0, len(all))
	for _, u := range all {
		if u.Status == users.StatusActive && u.EmailNotifications && u.Email != "" {
			to = append(to, u.Email)
		}
	}
	if len(to) == 0 {
		logger.From(ctx).Debug("no notification recipients", "enquiry", note.EnquiryCode)
		return nil
	}

	msg := buildMessage(n.cfg, to, note)
	var auth smtp.Auth
	if n.cfg.User != "" {
		auth = smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	if err := n.send(addr, auth, n.cfg.From, to, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func buildMessage(cfg config.SMTPConfig, to []string, note enquiry.StatusChangeNote) []byte {
	from := cfg.From
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	}
	subject := fmt.Sprintf("Enquiry %s: %s", note.EnquiryCode, note.NewStatus)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Enquiry %s for %s moved from %s to %s.\r\n",
		note.EnquiryCode, note.ClientName, note.OldStatus, note.NewStatus)
	return []byte(b.String())
}
