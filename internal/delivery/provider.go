// Package delivery sends the rendered digest through one of two
// interchangeable transactional-email backends: SendGrid's v3 Mail Send
// API or AWS SES v2. Which backend runs is decided once, by which
// credential is configured; SendGrid takes priority when both are.
package delivery

import (
	"context"
	"log/slog"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/google/uuid"

	"arsdigest/internal/config"
	"arsdigest/internal/digest"
	"arsdigest/internal/types"
)

// EmailProvider abstracts a transactional-email backend. Implementations
// transmit pre-rendered content and return the provider's message ID.
type EmailProvider interface {
	Send(ctx context.Context, input types.SendInput) (providerMsgID string, err error)
}

// Outcome is the explicit result of a delivery attempt. Delivery
// failure is deliberately a value, not a propagated error: the caller
// decides to log-and-continue, and the process exit status is never
// affected by a failed send.
type Outcome struct {
	Delivered bool
	MessageID string
	Err       error
}

// NewProviderFromConfig selects and constructs the email backend from
// the configured credentials. Selection happens here, exactly once:
//
//   - SendGrid API key present  -> SendGridClient
//   - else AWS access key present -> SESClient
//   - else -> email_not_configured error
func NewProviderFromConfig(ctx context.Context, cfg config.EmailConfig, httpClient *http.Client, logger *slog.Logger) (EmailProvider, error) {
	if cfg.SendGridAPIKey.Unmask() != "" {
		return NewSendGridClient(httpClient, SendGridClientConfig{
			APIKey: cfg.SendGridAPIKey,
			Logger: logger,
		}), nil
	}

	if cfg.AWSAccessKeyID != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.AWSRegion),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AWSAccessKeyID,
				cfg.AWSSecretAccessKey.Unmask(),
				"",
			)),
		)
		if err != nil {
			return nil, types.NewAppError(
				types.ErrCodeEmailNotConfigured,
				"failed to load AWS configuration for SES",
				err,
			)
		}
		return NewSESClient(awsCfg, SESClientConfig{Logger: logger}), nil
	}

	return nil, types.NewAppError(
		types.ErrCodeEmailNotConfigured,
		"no email sending service configured",
		nil,
	)
}

// Dispatcher addresses the digest and sends it through the selected
// provider. Sends are best-effort: every failure, including a missing
// provider, becomes a logged Outcome rather than an error return.
type Dispatcher struct {
	// provider is nil when no backend credentials were configured; the
	// dispatcher then reports a configuration error per dispatch.
	provider  EmailProvider
	recipient string
	from      types.SenderIdentity
	subject   string
	logger    *slog.Logger
}

// DispatcherConfig holds the parameters needed to construct a Dispatcher.
type DispatcherConfig struct {
	Provider  EmailProvider
	Recipient string
	FromAddr  string
	FromName  string
	Subject   string
	Logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher for one recipient.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		provider:  cfg.Provider,
		recipient: cfg.Recipient,
		from: types.SenderIdentity{
			Name:    cfg.FromName,
			Address: cfg.FromAddr,
		},
		subject: cfg.Subject,
		logger:  logger,
	}
}

// Dispatch sends the rendered digest to the configured recipient. The
// returned Outcome records success or a categorized failure; it never
// panics and never escalates.
func (d *Dispatcher) Dispatch(ctx context.Context, content digest.RenderedEmail) Outcome {
	if d.provider == nil {
		err := types.NewAppError(
			types.ErrCodeEmailNotConfigured,
			"no email sending service configured",
			nil,
		)
		d.logger.ErrorContext(ctx, "digest not sent", "error", err)
		return Outcome{Err: err}
	}

	input := types.SendInput{
		To:          d.recipient,
		From:        d.from,
		Subject:     d.subject,
		BodyHTML:    content.BodyHTML,
		BodyText:    content.BodyText,
		ReferenceID: uuid.NewString(),
	}

	msgID, err := d.provider.Send(ctx, input)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to send digest",
			"recipient", d.recipient,
			"error", err,
		)
		return Outcome{Err: err}
	}

	d.logger.InfoContext(ctx, "digest sent",
		"recipient", d.recipient,
		"subject", d.subject,
		"provider_message_id", msgID,
	)
	return Outcome{Delivered: true, MessageID: msgID}
}
