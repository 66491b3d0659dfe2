package mail

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Mailer sends the invoice notification. The workflow depends on this
// interface so tests can fake delivery without SMTP.
type Mailer interface {
	Send(to []string, subject string, body string, attachmentName string, attachment []byte) error
}

type SmtpMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSmtpMailer reads SMTP settings from env: SMTP_HOST, SMTP_PORT,
// SMTP_USERNAME, SMTP_PASSWORD, SMTP_FROM.
func NewSmtpMailer() (*SmtpMailer, error) {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil, errors.New("SMTP_HOST is not set")
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port <= 0 {
		port = 587
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USERNAME")
	}
	if from == "" {
		return nil, errors.New("SMTP_FROM is not set")
	}
	return &SmtpMailer{
		host:     host,
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     from,
	}, nil
}

func (m *SmtpMailer) Send(to []string, subject string, body string, attachmentName string, attachment []byte) error {
	if len(to) == 0 {
		return errors.New("no recipients")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	if len(attachment) > 0 {
		msg.Attach(attachmentName, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := io.Copy(w, bytes.NewReader(attachment))
			return err
		}))
	}

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	return dialer.DialAndSend(msg)
}
