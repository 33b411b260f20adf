package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"car-rental-api/internal/core/config"
)

type Message struct {
	To      []string
	Subject string
	Body    string
}

// Notifier 同步发送；返回错误时调用方回滚事务
type Notifier interface {
	Send(ctx context.Context, m Message) error
}

// New 按 mail.driver 选择实现
func New(c config.Mail, log *zap.Logger) (Notifier, error) {
	switch strings.ToLower(c.Driver) {
	case "", "log":
		return &LogNotifier{Log: log}, nil
	case "smtp":
		return NewSMTP(c)
	default:
		return nil, fmt.Errorf("unsupported mail driver %q", c.Driver)
	}
}

type SMTPNotifier struct {
	from   string
	client *mail.Client
}

func NewSMTP(c config.Mail) (*SMTPNotifier, error) {
	opts := []mail.Option{mail.WithPort(c.Port)}
	if c.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(c.Username),
			mail.WithPassword(c.Password),
		)
	}
	if c.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	client, err := mail.NewClient(c.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPNotifier{from: c.From, client: client}, nil
}

func (s *SMTPNotifier) Send(ctx context.Context, m Message) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("from: %w", err)
	}
	if err := msg.To(m.To...); err != nil {
		return fmt.Errorf("to: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Body)
	return s.client.DialAndSendWithContext(ctx, msg)
}

// LogNotifier 本地开发用，邮件内容只写日志
type LogNotifier struct {
	Log *zap.Logger
}

func (l *LogNotifier) Send(_ context.Context, m Message) error {
	if len(m.To) == 0 {
		return fmt.Errorf("no recipients")
	}
	l.Log.Info("mail",
		zap.Strings("to", m.To),
		zap.String("subject", m.Subject),
		zap.String("body", m.Body),
	)
	return nil
}
