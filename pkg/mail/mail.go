// Package mail delivers plain-text notifications over SMTP using shoutrrr.
package mail

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/nicholas-fedor/shoutrrr"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/JaimeStill/inspector/pkg/lifecycle"
)

// Message is a single outbound notification.
// Empty Subject falls back to the configured subject; empty Recipients fall back
// to the configured recipient list.
type Message struct {
	Subject    string
	Body       string
	Recipients []string
}

// System sends notifications and coordinates sender validation with the lifecycle.
type System interface {
	// Start registers a startup hook that validates the configured service URL.
	Start(lc *lifecycle.Coordinator) error
	// Enabled reports whether delivery is configured.
	Enabled() bool
	// Recipients returns the configured default recipients.
	Recipients() []string
	// Send delivers msg. Returns ErrDisabled when no URL is configured and
	// ErrNoRecipients when neither msg nor config name a recipient.
	Send(ctx context.Context, msg Message) error
}

type smtp struct {
	cfg     Config
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a mail system from the given configuration.
func New(cfg *Config, logger *slog.Logger) System {
	return &smtp{
		cfg:     *cfg,
		timeout: cfg.TimeoutDuration(),
		logger:  logger.With("system", "mail"),
	}
}

func (s *smtp) Enabled() bool {
	return s.cfg.Enabled()
}

func (s *smtp) Recipients() []string {
	return slices.Clone(s.cfg.Recipients)
}

func (s *smtp) Start(lc *lifecycle.Coordinator) error {
	if !s.Enabled() {
		s.logger.Info("mail delivery disabled")
		return nil
	}

	// Mail problems are logged but never block readiness; summaries still
	// complete without email.
	lc.OnStartup("mail", func() error {
		if len(s.cfg.Recipients) == 0 {
			s.logger.Warn("no default mail recipients configured")
			return nil
		}
		target, err := ServiceURL(s.cfg.URL, s.cfg.From, s.cfg.Subject, s.cfg.Recipients)
		if err != nil {
			s.logger.Error("mail url invalid", "error", err)
			return nil
		}
		if _, err := shoutrrr.CreateSender(target); err != nil {
			s.logger.Error("mail sender validation failed", "error", redact(err, s.cfg.URL))
			return nil
		}
		s.logger.Info("mail sender ready", "recipients", len(s.cfg.Recipients))
		return nil
	})

	return nil
}

func (s *smtp) Send(ctx context.Context, msg Message) error {
	if !s.Enabled() {
		return ErrDisabled
	}

	recipients := msg.Recipients
	if len(recipients) == 0 {
		recipients = s.cfg.Recipients
	}
	if len(recipients) == 0 {
		return ErrNoRecipients
	}

	subject := msg.Subject
	if subject == "" {
		subject = s.cfg.Subject
	}

	target, err := ServiceURL(s.cfg.URL, s.cfg.From, subject, recipients)
	if err != nil {
		return err
	}

	sender, err := shoutrrr.CreateSender(target)
	if err != nil {
		return fmt.Errorf("create sender: %w", redact(err, s.cfg.URL))
	}
	if s.timeout > 0 {
		sender.Timeout = s.timeout
	}
	sender.SetLogger(log.New(io.Discard, "", 0))

	done := make(chan []error, 1)
	go func() {
		done <- sender.Send(msg.Body, &stypes.Params{})
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case errs := <-done:
		for _, e := range errs {
			if e != nil {
				return fmt.Errorf("%w: %w", ErrDelivery, redact(e, s.cfg.URL))
			}
		}
	}

	s.logger.Info("mail sent", "subject", subject, "recipients", len(recipients))
	return nil
}

// ServiceURL builds a shoutrrr SMTP URL from base with the sender, subject, and
// recipient list set as query parameters. Parameters already present on base
// are replaced.
func ServiceURL(base, from, subject string, recipients []string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "smtp" {
		return "", fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}

	q := u.Query()
	if from != "" {
		q.Set("fromaddress", from)
	}
	if subject != "" {
		q.Set("subject", subject)
	}
	q.Set("toaddresses", strings.Join(recipients, ","))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// redact strips credentials embedded in the service URL from err's message.
func redact(err error, serviceURL string) error {
	u, perr := url.Parse(serviceURL)
	if perr != nil || u.User == nil {
		return err
	}
	msg := err.Error()
	if pass, ok := u.User.Password(); ok && pass != "" {
		msg = strings.ReplaceAll(msg, pass, "****")
	}
	return fmt.Errorf("%s", msg)
}
