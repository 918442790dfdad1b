package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cofit/cofitcli/internal/client/client"
	"github.com/cofit/cofitcli/internal/client/models"
	"github.com/cofit/cofitcli/internal/logging"
	"github.com/cofit/cofitcli/internal/timex"
)

// SourceResolver maps an asset source URI to a readable local path.
type SourceResolver interface {
	Resolve(ctx context.Context, uri string) (string, error)
}

// ProgressFunc is called after each asset settles, with completed in 1..total.
type ProgressFunc func(completed, total int)

type Engine struct {
	broker   Broker
	resolver SourceResolver
	transfer Transferer
	logger   logging.Logger
	now      func() time.Time
}

type EngineOption func(*Engine)

// WithClock replaces time.Now for the ticket date.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func NewEngine(broker Broker, resolver SourceResolver, transfer Transferer, logger logging.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		broker:   broker,
		resolver: resolver,
		transfer: transfer,
		logger:   logger,
		now:      time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// UploadOne uploads a single asset and returns its public URL. The error is
// a *client.TicketError, *client.UnresolvableSourceError or
// *client.TransferError depending on the step that failed.
func (e *Engine) UploadOne(ctx context.Context, asset models.Asset) (string, error) {
	if asset.SourceURI == "" {
		return "", &client.UnresolvableSourceError{SourceURI: asset.SourceURI, Err: errors.New("empty source uri")}
	}

	ext := Extension(asset.SourceURI)
	date := timex.LocalDate(e.now())
	log := e.logger.With("asset", asset.SourceURI, "ext", ext, "date", date)

	ticket, err := e.broker.RequestTicket(ctx, ext, date)
	if err != nil {
		var te *client.TicketError
		if !errors.As(err, &te) {
			err = &client.TicketError{Extension: ext, Date: date, Err: err}
		}
		log.Error(ctx, "no upload ticket", "error", err)
		return "", err
	}

	path, err := e.resolver.Resolve(ctx, asset.SourceURI)
	if err != nil {
		var ue *client.UnresolvableSourceError
		if !errors.As(err, &ue) {
			err = &client.UnresolvableSourceError{SourceURI: asset.SourceURI, Err: err}
		}
		log.Error(ctx, "source not resolvable", "error", err)
		return "", err
	}

	if err := e.transfer.Transfer(ctx, ticket.WriteURL, path, asset); err != nil {
		var te *client.TransferError
		if !errors.As(err, &te) {
			err = &client.TransferError{Err: err}
		}
		log.Error(ctx, "transfer failed", "error", err)
		return "", err
	}

	log.Info(ctx, "asset uploaded", "url", ticket.PublicURL, "storage", ticket.StorageBackend)
	return ticket.PublicURL, nil
}

// UploadMany uploads assets one at a time. Failures are recorded and do not
// stop the batch. Cancelling ctx stops the batch before the next asset; the
// asset already in flight is allowed to finish.
func (e *Engine) UploadMany(ctx context.Context, assets []models.Asset, onProgress ProgressFunc) *Batch {
	b := &Batch{Total: len(assets)}

	for i, a := range assets {
		if ctx.Err() != nil {
			b.Cancelled = true
			e.logger.Warn(ctx, "upload batch cancelled", "completed", b.Completed, "total", b.Total)
			break
		}

		url, err := e.UploadOne(context.WithoutCancel(ctx), a)
		if err != nil {
			b.Failures = append(b.Failures, Failure{Index: i, Asset: a, Err: err})
		} else {
			b.URLs = append(b.URLs, url)
		}

		b.Completed++
		if onProgress != nil {
			onProgress(b.Completed, b.Total)
		}
	}

	e.logger.Info(ctx, "upload batch finished", "succeeded", len(b.URLs), "failed", len(b.Failures), "total", b.Total)
	return b
}

// Outcome classifies a finished batch.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomePartial
	OutcomeAll
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAll:
		return "all"
	case OutcomePartial:
		return "partial"
	default:
		return "none"
	}
}

// Failure is one asset that did not upload.
type Failure struct {
	Index int
	Asset models.Asset
	Err   error
}

// Batch is the result of UploadMany. Completed counts attempted assets;
// URLs holds the successes in submission order.
type Batch struct {
	Completed int
	Total     int
	URLs      []string
	Failures  []Failure
	Cancelled bool
}

func (b *Batch) Succeeded() int { return len(b.URLs) }

func (b *Batch) Outcome() Outcome {
	switch {
	case b.Total > 0 && len(b.URLs) == b.Total:
		return OutcomeAll
	case len(b.URLs) > 0:
		return OutcomePartial
	default:
		return OutcomeNone
	}
}

func (b *Batch) Summary() string {
	return fmt.Sprintf("%d of %d succeeded", len(b.URLs), b.Total)
}
