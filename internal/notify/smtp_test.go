package notify

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"enquiry-platform/internal/config"
	"enquiry-platform/internal/enquiry"
	"enquiry-platform/internal/users"
)

type staticRecipients []users.User

func (r staticRecipients) List(ctx context.Context) ([]users.User, error) {
	return r, nil
}

func TestSMTPNotifierFiltersRecipients(t *testing.T) {
	cfg := config.SMTPConfig{
		Host: "mail.local", Port: 587,
		From: "noreply@firm.example", FromName: "Enquiry Platform",
	}
	recipients := staticRecipients{
		{Email: "on@firm.example", Status: users.StatusActive, EmailNotifications: true},
		{Email: "off@firm.example", Status: users.StatusActive, EmailNotifications: false},
		{Email: "inactive@firm.example", Status: users.StatusInactive, EmailNotifications: true},
		{Email: "suspended@firm.example", Status: users.StatusSuspended, EmailNotifications: true},
		{Email: "", Status: users.StatusActive, EmailNotifications: true},
	}

	var gotTo []string
	var gotMsg []byte
	n := NewSMTPNotifier(cfg, recipients)
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotTo = to
		gotMsg = msg
		return nil
	}

	note := enquiry.StatusChangeNote{
		EnquiryCode: "ENQ-0007",
		ClientName:  "Acme",
		OldStatus:   enquiry.StatusPending,
		NewStatus:   enquiry.StatusContacted,
	}
	if err := n.EnquiryStatusChanged(context.Background(), note); err != nil {
		t.Fatalf("EnquiryStatusChanged: %v", err)
	}

	if len(gotTo) != 1 || gotTo[0] != "on@firm.example" {
		t.Fatalf("recipients = %v, want only the opted-in active user", gotTo)
	}
	body := string(gotMsg)
	if !strings.Contains(body, "From: Enquiry Platform <noreply@firm.example>") {
		t.Errorf("missing named From header:\n%s", body)
	}
	if !strings.Contains(body, "Subject: Enquiry ENQ-0007: Contacted") {
		t.Errorf("missing subject:\n%s", body)
	}
	if !strings.Contains(body, "moved from Pending to Contacted") {
		t.Errorf("missing transition line:\n%s", body)
	}
}

func TestSMTPNotifierNoRecipientsIsNoop(t *testing.T) {
	n := NewSMTPNotifier(config.SMTPConfig{Host: "mail.local", Port: 587, From: "x@y"}, staticRecipients{})
	called := false
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		called = true
		return nil
	}
	if err := n.EnquiryStatusChanged(context.Background(), enquiry.StatusChangeNote{}); err != nil {
		t.Fatalf("EnquiryStatusChanged: %v", err)
	}
	if called {
		t.Fatal("send called with no recipients")
	}
}
