package mailerrepo

import (
	"context"
	"log/slog"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers transactional mail. Callers treat delivery as best effort.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

type logSender struct{ log *slog.Logger }

// NewLog returns a Sender that only logs, used when no relay is configured.
func NewLog(log *slog.Logger) Sender { return &logSender{log: log} }

func (s *logSender) Send(ctx context.Context, m Message) error {
	s.log.InfoContext(ctx, "mail (not delivered, no relay configured)",
		"to", m.To, "subject", m.Subject, "bytes", len(m.Body))
	return nil
}
