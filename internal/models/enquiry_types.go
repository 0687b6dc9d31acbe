package models

import (
	"strings"
	"time"
)

// Enquiry statuses.
const (
	EnquiryStatusPending   = "pending"
	EnquiryStatusResponded = "responded"
	EnquiryStatusClosed    = "closed"
)

// Enquiry is a customer question about a single item.
// EmailSent/EmailSentAt are advisory: they only record the outcome of the
// notification attempt made right after the enquiry was stored.
type Enquiry struct {
	ID            string     `json:"_id" bson:"_id"`
	ItemID        string     `json:"itemId" bson:"itemId" validate:"required"`
	CustomerName  string     `json:"customerName" bson:"customerName" validate:"required,max=100"`
	CustomerEmail string     `json:"customerEmail" bson:"customerEmail" validate:"required,email"`
	CustomerPhone string     `json:"customerPhone,omitempty" bson:"customerPhone,omitempty" validate:"omitempty,phone"`
	Message       string     `json:"message,omitempty" bson:"message,omitempty" validate:"max=500"`
	Status        string     `json:"status" bson:"status" validate:"oneof=pending responded closed"`
	EmailSent     bool       `json:"emailSent" bson:"emailSent"`
	EmailSentAt   *time.Time `json:"emailSentAt,omitempty" bson:"emailSentAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Normalize trims the customer fields and lowercases the email address.
func (e *Enquiry) Normalize() {
	e.ItemID = strings.TrimSpace(e.ItemID)
	e.CustomerName = strings.TrimSpace(e.CustomerName)
	e.CustomerEmail = strings.ToLower(strings.TrimSpace(e.CustomerEmail))
	e.CustomerPhone = strings.TrimSpace(e.CustomerPhone)
	e.Message = strings.TrimSpace(e.Message)
	if e.Status == "" {
		e.Status = EnquiryStatusPending
	}
}

// EnquiryListing is an enquiry together with a projection of the item it references.
// Item is nil when the referenced item no longer exists.
type EnquiryListing struct {
	Enquiry `bson:",inline"`
	Item    *ItemRef `json:"item" bson:"-"`
}
