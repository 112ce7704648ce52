package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers HTML mail through an authenticated SMTP relay such as
// Gmail on port 587.
type SMTPSender struct {
	addr string
	host string
	from string
	auth smtp.Auth
	send sendFunc
}

func NewSMTPSender(host, port, user, password, fromName string) *SMTPSender {
	host = strings.TrimSpace(host)
	port = strings.TrimSpace(port)
	user = strings.TrimSpace(user)

	from := user
	if fromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", fromName), user)
	}

	s := &SMTPSender{
		addr: net.JoinHostPort(host, port),
		host: host,
		from: from,
		auth: smtp.PlainAuth("", user, password, host),
	}
	s.send = s.sendMail
	return s
}

func (s *SMTPSender) envelopeFrom() string {
	if i := strings.LastIndex(s.from, "<"); i >= 0 {
		return strings.TrimSuffix(s.from[i+1:], ">")
	}
	return s.from
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("mail: recipient is required")
	}

	body := buildMessage(s.from, msg.To, msg.Subject, msg.HTML, time.Now())
	if err := s.send(ctx, s.addr, s.auth, s.envelopeFrom(), []string{msg.To}, []byte(body)); err != nil {
		return fmt.Errorf("mail: send to %s via %s: %w", msg.To, s.addr, err)
	}
	return nil
}

// sendMail runs the same exchange as smtp.SendMail, but every network
// operation is bounded by ctx.
func (s *SMTPSender) sendMail(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) (err error) {
	defer func() {
		if err != nil && ctx.Err() != nil {
			err = fmt.Errorf("%w: %v", ctx.Err(), err)
		}
	}()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(a); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}

	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(msg); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func buildMessage(from, to, subject, html string, date time.Time) string {
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nDate: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n",
		from,
		to,
		mime.QEncoding.Encode("utf-8", subject),
		date.Format(time.RFC1123Z),
		html,
	)
}
