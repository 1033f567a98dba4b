package ports

import "context"

// MailMessage is a single outbound email.
type MailMessage struct {
	To       string
	Subject  string
	HTMLBody string
}

// Mailer delivers a message synchronously.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// MailQueue accepts messages for asynchronous delivery.
type MailQueue interface {
	Enqueue(msg MailMessage)
}
