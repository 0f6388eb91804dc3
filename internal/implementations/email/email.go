package email

import (
	"context"
	"fmt"
	"net/url"
	"passreset/internal/core/domain/account"
	c "passreset/internal/core/domain/common"
	e "passreset/internal/core/domain/errors"
	"passreset/internal/core/domain/logging"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

const passwordResetSubject = "Reset your password"

type Message struct {
	To      c.Email
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESSender struct {
	ses sesAPI
	// This address must be verified with Amazon SES.
	sender string
}

func NewSESSender(awsConfig aws.Config, sender string) *SESSender {
	return &SESSender{ses: ses.NewFromConfig(awsConfig), sender: sender}
}

func (s *SESSender) Send(ctx context.Context, m Message) error {
	_, err := s.ses.SendEmail(
		ctx,
		&ses.SendEmailInput{
			Source: aws.String(s.sender),
			Destination: &types.Destination{
				CcAddresses: []string{},
				ToAddresses: []string{string(m.To)},
			},
			Message: &types.Message{
				Subject: &types.Content{Data: aws.String(m.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(m.Body), Charset: aws.String("UTF-8")},
				},
			},
		},
	)
	if err != nil {
		return fmt.Errorf("could not send email to %s: %w", m.To, err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them.
// The body holds a live reset link, so it is only logged with exposeBody.
type LogSender struct {
	log        logging.Logger
	exposeBody bool
}

func NewLogSender(log logging.Logger, exposeBody bool) *LogSender {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	return &LogSender{log: log, exposeBody: exposeBody}
}

func (s *LogSender) Send(ctx context.Context, m Message) error {
	entries := []logging.LogEntry{
		logging.Entry("to", m.To),
		logging.Entry("subject", m.Subject),
	}
	if s.exposeBody {
		entries = append(entries, logging.Entry("body", m.Body))
	} else {
		entries = append(entries, logging.Entry("bodyLength", len(m.Body)))
	}
	s.log.Info(ctx, "Email message.", entries...)
	return nil
}

// Notifier renders password reset emails.
type Notifier struct {
	sender   Sender
	resetURL url.URL
}

func NewNotifier(sender Sender, resetURL url.URL) *Notifier {
	if sender == nil {
		panic(e.NewNilArgumentError("sender"))
	}
	return &Notifier{sender: sender, resetURL: resetURL}
}

func (n *Notifier) NotifyPasswordReset(ctx context.Context, notification account.ResetNotification) error {
	return n.sender.Send(ctx, n.PasswordResetMessage(notification))
}

func (n *Notifier) PasswordResetMessage(notification account.ResetNotification) Message {
	return Message{
		To:      notification.Email,
		Subject: passwordResetSubject,
		Body: fmt.Sprintf(
			"Someone requested a password reset for your account.\n\n"+
				"Follow the link below to choose a new password:\n%s\n\n"+
				"The link is valid until %s and can be used once.\n"+
				"If you did not request a reset, ignore this email.\n",
			n.PasswordResetLink(notification.Email, notification.Token),
			notification.ExpiresAt.UTC().Format(time.RFC1123),
		),
	}
}

func (n *Notifier) PasswordResetLink(email c.Email, token account.ResetToken) string {
	link := n.resetURL
	query := link.Query()
	query.Set("email", string(email))
	query.Set("token", token.String())
	link.RawQuery = query.Encode()
	return link.String()
}
