// Package mail renders notification templates and delivers them over SMTP.
// Handlers never call Send directly; they publish a queue event and the
// background consumer delivers it, so a slow relay cannot stall a request.
package mail

import (
	"crypto/tls"
	"log"

	gomail "github.com/go-mail/mail"
)

// Sender delivers a single message.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SMTPSender implements Sender over an SMTP relay.
type SMTPSender struct {
	Host string
	Port int
	From string
	User string
	Pass string
}

func NewSMTPSender(host string, port int, from, user, pass string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, From: from, User: user, Pass: pass}
}

// Send delivers an HTML message. go-mail negotiates STARTTLS with the relay
// when available.
func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{ServerName: s.Host}
	return d.DialAndSend(m)
}

// LogSender is the fallback when no SMTP host is configured (local dev):
// messages are logged instead of sent so mail flows stay testable.
type LogSender struct{}

func (LogSender) Send(to, subject, _ string) error {
	log.Printf("mail: would send %q to %s (no SMTP host configured)", subject, to)
	return nil
}
