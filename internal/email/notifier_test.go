package email

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/01moynul/closetline/internal/models"
)

// recordingMailer captures messages and fails for listed recipients.
type recordingMailer struct {
	mu     sync.Mutex
	sent   []Message
	failTo map[string]error
}

func (r *recordingMailer) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failTo[msg.To]; err != nil {
		return err
	}
	r.sent = append(r.sent, msg)
	return nil
}

var (
	testItem = models.Item{ID: "item-1", Name: "Denim <Jacket>", Type: "Jacket", Description: "Washed blue"}
	testEnq  = models.Enquiry{
		ID:            "enq-1",
		ItemID:        "item-1",
		CustomerName:  "Jane",
		CustomerEmail: "jane@example.com",
		Message:       "Is it still <b>available</b>?",
	}
)

func newTestNotifier(m Mailer) *Notifier {
	n := NewNotifier(m, "store@example.com")
	n.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return n
}

func TestSendEnquiryDeliversBoth(t *testing.T) {
	m := &recordingMailer{}
	if err := newTestNotifier(m).SendEnquiry(context.Background(), testItem, testEnq); err != nil {
		t.Fatalf("SendEnquiry: %v", err)
	}
	if len(m.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(m.sent))
	}
	byTo := map[string]Message{}
	for _, msg := range m.sent {
		byTo[msg.To] = msg
	}
	owner, ok := byTo["store@example.com"]
	if !ok || owner.Subject != "New Enquiry for Denim <Jacket>" {
		t.Errorf("unexpected owner message %+v", owner)
	}
	if !strings.Contains(owner.HTML, "enq-1") || !strings.Contains(owner.HTML, "jane@example.com") {
		t.Error("owner email missing enquiry id or customer email")
	}
	customer, ok := byTo["jane@example.com"]
	if !ok || !strings.HasPrefix(customer.Subject, "Thank you for your enquiry about") {
		t.Errorf("unexpected customer message %+v", customer)
	}
}

func TestMessagesEscapeInput(t *testing.T) {
	owner, customer, err := newTestNotifier(&recordingMailer{}).Messages(testItem, testEnq)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	for _, html := range []string{owner.HTML, customer.HTML} {
		if strings.Contains(html, "<b>available</b>") || strings.Contains(html, "Denim <Jacket>") {
			t.Error("user input rendered unescaped")
		}
		if !strings.Contains(html, "&lt;b&gt;available&lt;/b&gt;") {
			t.Error("expected escaped message in email body")
		}
	}
	if strings.Contains(owner.HTML, "Phone:") {
		t.Error("phone line rendered without a phone number")
	}
}

func TestSendEnquiryNamesFailedRecipient(t *testing.T) {
	boom := errors.New("connection refused")
	m := &recordingMailer{failTo: map[string]error{"jane@example.com": boom}}

	err := newTestNotifier(m).SendEnquiry(context.Background(), testItem, testEnq)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
	if !strings.Contains(err.Error(), "customer confirmation to jane@example.com") {
		t.Errorf("error does not name the failed recipient: %v", err)
	}
	if strings.Contains(err.Error(), "store notification") {
		t.Errorf("successful message reported as failed: %v", err)
	}
	// The other message still went out.
	if len(m.sent) != 1 || m.sent[0].To != "store@example.com" {
		t.Errorf("expected the owner email to be sent, got %+v", m.sent)
	}
}

func TestNotConfigured(t *testing.T) {
	n := NewNotifier(nil, "")
	if n.Configured() {
		t.Fatal("expected notifier without mailer to be unconfigured")
	}
	if err := n.SendEnquiry(context.Background(), testItem, testEnq); err == nil {
		t.Error("expected error when not configured")
	}
}

func TestNewSMTPMailerResolvesService(t *testing.T) {
	if _, err := NewSMTPMailer(SMTPConfig{Service: "gmail", Username: "a@example.com", Password: "x"}); err != nil {
		t.Errorf("gmail: %v", err)
	}
	if _, err := NewSMTPMailer(SMTPConfig{Service: "smtp", Host: "mail.example.com", Port: 2525, Username: "a@example.com", Password: "x"}); err != nil {
		t.Errorf("explicit host: %v", err)
	}
	if _, err := NewSMTPMailer(SMTPConfig{Service: "smtp"}); err == nil {
		t.Error("expected error without host")
	}
}
