package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/01moynul/closetline/internal/models"
)

// Notifier sends the store-owner notification and the customer confirmation
// for a new enquiry.
type Notifier struct {
	mailer     Mailer
	storeEmail string
	now        func() time.Time
}

// NewNotifier returns a Notifier delivering through m. A nil mailer means
// email is not configured and Configured reports false.
func NewNotifier(m Mailer, storeEmail string) *Notifier {
	return &Notifier{mailer: m, storeEmail: storeEmail, now: time.Now}
}

// Configured reports whether notifications can be sent at all.
func (n *Notifier) Configured() bool {
	return n != nil && n.mailer != nil
}

// Messages renders the owner and customer emails for an enquiry.
func (n *Notifier) Messages(item models.Item, e models.Enquiry) (owner, customer Message, err error) {
	view := enquiryView{
		ItemName:        item.Name,
		ItemType:        item.Type,
		ItemDescription: item.Description,
		CustomerName:    e.CustomerName,
		CustomerEmail:   e.CustomerEmail,
		CustomerPhone:   e.CustomerPhone,
		Message:         e.Message,
		EnquiryID:       e.ID,
		Date:            n.now().UTC().Format("2 Jan 2006 15:04 MST"),
	}

	ownerHTML, err := render(ownerTemplate, view)
	if err != nil {
		return Message{}, Message{}, fmt.Errorf("rendering owner email: %w", err)
	}
	customerHTML, err := render(customerTemplate, view)
	if err != nil {
		return Message{}, Message{}, fmt.Errorf("rendering customer email: %w", err)
	}

	owner = Message{To: n.storeEmail, Subject: "New Enquiry for " + item.Name, HTML: ownerHTML}
	customer = Message{To: e.CustomerEmail, Subject: "Thank you for your enquiry about " + item.Name, HTML: customerHTML}
	return owner, customer, nil
}

// SendEnquiry sends both emails concurrently and waits for both to settle.
// The pair counts as failed if either message fails; the returned error names
// each recipient that failed.
func (n *Notifier) SendEnquiry(ctx context.Context, item models.Item, e models.Enquiry) error {
	if !n.Configured() {
		return errors.New("email notifications not configured")
	}
	owner, customer, err := n.Messages(item, e)
	if err != nil {
		return err
	}

	labels := [2]string{"store notification", "customer confirmation"}
	msgs := [2]Message{owner, customer}
	var errs [2]error

	var g errgroup.Group
	for i := range msgs {
		g.Go(func() error {
			if err := n.mailer.Send(ctx, msgs[i]); err != nil {
				errs[i] = fmt.Errorf("%s to %s: %w", labels[i], msgs[i].To, err)
			}
			return nil
		})
	}
	g.Wait()
	return errors.Join(errs[0], errs[1])
}
