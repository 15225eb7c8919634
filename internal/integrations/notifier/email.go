package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const emailSenderName = "email"

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailSender отправляет письма клиенту и администратору через SMTP
type EmailSender struct {
	addr       string
	host       string
	from       string
	adminEmail string
	auth       smtp.Auth
	sendMail   sendMailFunc
}

// NewEmailSender создает отправителя. Без username письма уходят без авторизации.
func NewEmailSender(host string, port int, username, password, from, adminEmail string) *EmailSender {
	host = strings.TrimSpace(host)
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@appointments.local"
	}

	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	return &EmailSender{
		addr:       fmt.Sprintf("%s:%d", host, port),
		host:       host,
		from:       from,
		adminEmail: strings.TrimSpace(adminEmail),
		auth:       auth,
		sendMail:   smtp.SendMail,
	}
}

func (s *EmailSender) Name() string {
	return emailSenderName
}

// Send отправляет письмо клиенту (если известен адрес) и администратору (если настроен)
func (s *EmailSender) Send(ctx context.Context, n domain.Notification) error {
	subject, body := renderEmail(n)

	recipients := make([]string, 0, 2)
	if n.CustomerEmail != "" {
		recipients = append(recipients, n.CustomerEmail)
	}
	if s.adminEmail != "" {
		recipients = append(recipients, s.adminEmail)
	}

	for _, to := range recipients {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrSendEmail, err)
		}
		msg := buildMessage(s.from, to, subject, body)
		if err := s.sendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg)); err != nil {
			return fmt.Errorf("%w: to=%s: %v", ErrSendEmail, to, err)
		}
	}

	return nil
}

func renderEmail(n domain.Notification) (string, string) {
	var subject string
	switch n.Kind {
	case domain.NotificationBookingCreated:
		subject = "New booking request"
	case domain.NotificationBookingCancelled:
		subject = "Booking cancelled"
	case domain.NotificationBookingRescheduled:
		subject = "Booking rescheduled"
	case domain.NotificationStatusChanged:
		subject = fmt.Sprintf("Booking %s", n.Status)
	default:
		subject = "Booking update"
	}

	var b strings.Builder
	if n.CustomerName != "" {
		fmt.Fprintf(&b, "Customer: %s\n", n.CustomerName)
	}
	if n.ServiceName != "" {
		fmt.Fprintf(&b, "Service: %s\n", n.ServiceName)
	}
	fmt.Fprintf(&b, "Date: %s\n", n.Date)
	fmt.Fprintf(&b, "Time: %s\n", n.TimeSlot)
	if n.PreviousDate != "" {
		fmt.Fprintf(&b, "Previous date: %s\n", n.PreviousDate)
	}
	fmt.Fprintf(&b, "Status: %s\n", n.Status)
	if n.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", n.Reason)
	}

	return subject, b.String()
}

func buildMessage(from, to, subject, body string) string {
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from,
		to,
		subject,
		body,
	)
}
