package email

import (
	"html/template"
	"strings"
)

type enquiryView struct {
	ItemName        string
	ItemType        string
	ItemDescription string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	Message         string
	EnquiryID       string
	Date            string
}

var ownerTemplate = template.Must(template.New("owner").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2c3e50;">New Item Enquiry</h2>
  <div style="background-color: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #3498db; margin-top: 0;">Item Details</h3>
    <p><strong>Name:</strong> {{.ItemName}}</p>
    <p><strong>Type:</strong> {{.ItemType}}</p>
    <p><strong>Description:</strong> {{.ItemDescription}}</p>
  </div>
  <div style="background-color: #e8f5e8; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #27ae60; margin-top: 0;">Customer Information</h3>
    <p><strong>Name:</strong> {{.CustomerName}}</p>
    <p><strong>Email:</strong> {{.CustomerEmail}}</p>
    {{if .CustomerPhone}}<p><strong>Phone:</strong> {{.CustomerPhone}}</p>{{end}}
    {{if .Message}}<p><strong>Message:</strong> {{.Message}}</p>{{end}}
  </div>
  <div style="background-color: #fff3cd; padding: 15px; border-radius: 8px; margin: 20px 0;">
    <p style="margin: 0;"><strong>Enquiry ID:</strong> {{.EnquiryID}}</p>
    <p style="margin: 5px 0 0 0;"><strong>Date:</strong> {{.Date}}</p>
  </div>
  <p style="color: #666; font-size: 14px; margin-top: 30px;">
    Please respond to this enquiry promptly to maintain good customer service.
  </p>
</div>`))

var customerTemplate = template.Must(template.New("customer").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2c3e50;">Thank You for Your Enquiry!</h2>
  <p>Dear {{.CustomerName}},</p>
  <p>Thank you for your interest in our clothing item. We have received your enquiry and will get back to you shortly.</p>
  <div style="background-color: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #3498db; margin-top: 0;">Item You Enquired About</h3>
    <p><strong>Name:</strong> {{.ItemName}}</p>
    <p><strong>Type:</strong> {{.ItemType}}</p>
    <p><strong>Description:</strong> {{.ItemDescription}}</p>
  </div>
  {{if .Message}}
  <div style="background-color: #e8f5e8; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #27ae60; margin-top: 0;">Your Message</h3>
    <p>{{.Message}}</p>
  </div>
  {{end}}
  <div style="background-color: #fff3cd; padding: 15px; border-radius: 8px; margin: 20px 0;">
    <p style="margin: 0;"><strong>Enquiry Reference:</strong> {{.EnquiryID}}</p>
    <p style="margin: 5px 0 0 0;"><strong>Date:</strong> {{.Date}}</p>
  </div>
  <p>We typically respond to enquiries within 24 hours. If you have any urgent questions, please don't hesitate to contact us.</p>
  <p style="color: #666; font-size: 14px; margin-top: 30px;">Best regards,<br>Clothing Inventory Team</p>
</div>`))

func render(t *template.Template, v enquiryView) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}
