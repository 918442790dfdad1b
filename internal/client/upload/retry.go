package upload

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/cofit/cofitcli/internal/client/api"
	"github.com/cofit/cofitcli/internal/client/client"
	"github.com/cofit/cofitcli/internal/client/models"
	"github.com/cofit/cofitcli/internal/logging"
	"github.com/sethvargo/go-retry"
)

// RetryPolicy bounds a retry decorator. MaxAttempts counts the first try,
// so 1 disables retrying.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy is three attempts starting at half a second.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond}

func (p RetryPolicy) backoff() retry.Backoff {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	base := p.BaseDelay
	if base <= 0 {
		base = time.Millisecond
	}
	return retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(base))
}

func transientStatus(code int) bool {
	return code >= http.StatusInternalServerError || code == http.StatusTooManyRequests
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// transientTicketError reports whether a broker failure is worth another try:
// an unreachable server or a temporary HTTP status.
func transientTicketError(err error) bool {
	if err == nil || isCanceled(err) {
		return false
	}
	var expired *client.SessionExpiredError
	if errors.As(err, &expired) || errors.Is(err, client.ErrMissingTicketFields) {
		return false
	}
	if errors.Is(err, client.ErrUnavailable) {
		return true
	}
	var ae *api.APIError
	if errors.As(err, &ae) {
		return ae.Temporary()
	}
	return false
}

// transientTransferError retries network failures and 5xx/429 answers.
// A file that cannot be opened will not appear on a second try.
func transientTransferError(err error) bool {
	if err == nil || isCanceled(err) {
		return false
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return false
	}
	var te *client.TransferError
	if errors.As(err, &te) && te.StatusCode != 0 {
		return transientStatus(te.StatusCode)
	}
	return true
}

// RetryBroker retries transient ticket failures with exponential backoff.
type RetryBroker struct {
	inner  Broker
	policy RetryPolicy
	logger logging.Logger
}

func NewRetryBroker(inner Broker, policy RetryPolicy, logger logging.Logger) *RetryBroker {
	return &RetryBroker{inner: inner, policy: policy, logger: logger}
}

func (b *RetryBroker) RequestTicket(ctx context.Context, extension, date string) (*models.Ticket, error) {
	var ticket *models.Ticket
	attempt := 0

	err := retry.Do(ctx, b.policy.backoff(), func(ctx context.Context) error {
		attempt++
		t, err := b.inner.RequestTicket(ctx, extension, date)
		if err != nil {
			if transientTicketError(err) {
				b.logger.Warn(ctx, "ticket request failed, retrying", "ext", extension, "date", date, "attempt", attempt, "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		ticket = t
		return nil
	})
	if err != nil {
		var te *client.TicketError
		if !errors.As(err, &te) {
			err = &client.TicketError{Extension: extension, Date: date, Err: err}
		}
		return nil, err
	}
	return ticket, nil
}

// RetryTransferer retries transient transfer failures with exponential
// backoff. The file is reopened on every attempt.
type RetryTransferer struct {
	inner  Transferer
	policy RetryPolicy
	logger logging.Logger
}

func NewRetryTransferer(inner Transferer, policy RetryPolicy, logger logging.Logger) *RetryTransferer {
	return &RetryTransferer{inner: inner, policy: policy, logger: logger}
}

func (r *RetryTransferer) Transfer(ctx context.Context, writeURL, path string, asset models.Asset) error {
	attempt := 0
	err := retry.Do(ctx, r.policy.backoff(), func(ctx context.Context) error {
		attempt++
		err := r.inner.Transfer(ctx, writeURL, path, asset)
		if err != nil && transientTransferError(err) {
			r.logger.Warn(ctx, "transfer failed, retrying", "asset", asset.SourceURI, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		var te *client.TransferError
		if !errors.As(err, &te) {
			err = &client.TransferError{Err: err}
		}
		return err
	}
	return nil
}
