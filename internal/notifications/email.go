package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"barbershop/pkg/hours"
	"barbershop/pkg/mail"
	"barbershop/pkg/model"
	"barbershop/pkg/sanitizer"

	"github.com/cenkalti/backoff/v5"
)

const (
	CustomerSubject = "Appointment Confirmation - %s"
	ShopSubject     = "New Appointment Booking"
)

var customerTemplate = template.Must(template.New("customer").Parse(`<h2>Appointment Confirmation</h2>
<p>Dear {{.Booking.CustomerName}},</p>
<p>Your appointment has been confirmed with the following details:</p>
<ul>
  <li>Service: {{.Booking.Service}}</li>
  <li>Date: {{.Booking.Date}}</li>
  <li>Time: {{.Label}}</li>
</ul>
<p>Location: {{.Shop}}</p>
<p>If you need to cancel or reschedule, please contact us as soon as possible.</p>
<p>Thank you for choosing {{.Shop}}!</p>
`))

var shopTemplate = template.Must(template.New("shop").Parse(`<h2>New Appointment</h2>
<p>A new appointment has been booked:</p>
<ul>
  <li>Customer: {{.Booking.CustomerName}}</li>
  <li>Email: {{.Booking.CustomerEmail}}</li>
  <li>Phone: {{.Booking.PhoneNumber}}{{if .E164}} ({{.E164}}){{end}}</li>
  <li>Service: {{.Booking.Service}}</li>
  <li>Date: {{.Booking.Date}}</li>
  <li>Time: {{.Label}}</li>
  <li>Booking ID: {{.Booking.ID}}</li>
</ul>
`))

type emailData struct {
	Booking *model.Booking
	Shop    string
	Label   string
	E164    string
}

func render(tmpl *template.Template, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// CustomerEmail sends the confirmation to the address on the booking.
type CustomerEmail struct {
	sender   mail.Sender
	shopName string
}

func NewCustomerEmail(sender mail.Sender, shopName string) *CustomerEmail {
	return &CustomerEmail{sender: sender, shopName: shopName}
}

func (d *CustomerEmail) Name() string {
	return "customer_email"
}

func (d *CustomerEmail) Dispatch(ctx context.Context, booking *model.Booking) error {
	html, err := render(customerTemplate, emailData{
		Booking: booking,
		Shop:    d.shopName,
		Label:   hours.Label(booking.Time),
	})
	if err != nil {
		return backoff.Permanent(err)
	}
	return d.sender.Send(ctx, mail.Message{
		To:      booking.CustomerEmail,
		Subject: fmt.Sprintf(CustomerSubject, d.shopName),
		HTML:    html,
	})
}

// ShopEmail notifies the shop operator of a new booking.
type ShopEmail struct {
	sender    mail.Sender
	shopName  string
	shopEmail string
}

func NewShopEmail(sender mail.Sender, shopName, shopEmail string) *ShopEmail {
	return &ShopEmail{sender: sender, shopName: shopName, shopEmail: shopEmail}
}

func (d *ShopEmail) Name() string {
	return "shop_email"
}

func (d *ShopEmail) Dispatch(ctx context.Context, booking *model.Booking) error {
	html, err := render(shopTemplate, emailData{
		Booking: booking,
		Shop:    d.shopName,
		Label:   hours.Label(booking.Time),
		E164:    sanitizer.NormalizePhone(booking.PhoneNumber),
	})
	if err != nil {
		return backoff.Permanent(err)
	}
	return d.sender.Send(ctx, mail.Message{
		To:      d.shopEmail,
		Subject: ShopSubject,
		HTML:    html,
	})
}
