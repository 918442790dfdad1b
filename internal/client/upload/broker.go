package upload

import (
	"context"
	"fmt"

	"github.com/cofit/cofitcli/internal/client/api"
	"github.com/cofit/cofitcli/internal/client/client"
	"github.com/cofit/cofitcli/internal/client/models"
	"github.com/cofit/cofitcli/internal/logging"
)

// Broker issues single-use upload tickets. extension is lower-case without
// the dot; date is the local calendar day as YYYY-MM-DD.
type Broker interface {
	RequestTicket(ctx context.Context, extension, date string) (*models.Ticket, error)
}

// TicketAPI is the slice of the REST client the APIBroker needs.
type TicketAPI interface {
	MediaUploadInfo(ctx context.Context, extname, date string) (*api.MediaUploadInfo, error)
}

// APIBroker asks the Cofit backend for tickets.
type APIBroker struct {
	api    TicketAPI
	logger logging.Logger
}

func NewAPIBroker(a TicketAPI, logger logging.Logger) *APIBroker {
	return &APIBroker{api: a, logger: logger}
}

func (b *APIBroker) RequestTicket(ctx context.Context, extension, date string) (*models.Ticket, error) {
	info, err := b.api.MediaUploadInfo(ctx, extension, date)
	if err != nil {
		return nil, &client.TicketError{Extension: extension, Date: date, Err: err}
	}

	t := &models.Ticket{
		WriteURL:       info.URL,
		PublicURL:      info.CDNURL,
		StorageBackend: info.Storage,
		ObjectKey:      info.Key,
	}
	if t.PublicURL == "" {
		t.PublicURL = info.ResultURL
	}
	if t.ObjectKey == "" {
		t.ObjectKey = info.Name
	}

	if t.WriteURL == "" || t.PublicURL == "" {
		return nil, &client.TicketError{
			Extension: extension,
			Date:      date,
			Err:       fmt.Errorf("%w: url=%t public=%t", client.ErrMissingTicketFields, t.WriteURL != "", t.PublicURL != ""),
		}
	}

	b.logger.Debug(ctx, "upload ticket issued", "ext", extension, "date", date, "storage", t.StorageBackend)
	return t, nil
}
