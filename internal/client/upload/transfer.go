package upload

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/cofit/cofitcli/internal/client/client"
	"github.com/cofit/cofitcli/internal/client/models"
	"github.com/cofit/cofitcli/internal/common"
	"github.com/cofit/cofitcli/internal/logging"
	"github.com/cofit/cofitcli/internal/netx"
)

// Transferer PUTs a local file to a signed write URL.
type Transferer interface {
	Transfer(ctx context.Context, writeURL, path string, asset models.Asset) error
}

// HTTPTransferer uploads with a plain http.Client. It must not be the
// authenticated client: signed URLs reject extra Authorization headers.
type HTTPTransferer struct {
	client *http.Client
	logger logging.Logger
}

func NewHTTPTransferer(c *http.Client, logger logging.Logger) *HTTPTransferer {
	if c == nil {
		c = &http.Client{}
	}
	return &HTTPTransferer{client: c, logger: logger}
}

func (t *HTTPTransferer) Transfer(ctx context.Context, writeURL, path string, asset models.Asset) error {
	f, err := os.Open(path)
	if err != nil {
		return &client.TransferError{Err: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return &client.TransferError{Err: err}
	}
	if !fi.Mode().IsRegular() {
		return &client.TransferError{Err: &fs.PathError{Op: "open", Path: path, Err: errors.New("not a regular file")}}
	}

	contentType := asset.MimeType
	if contentType == "" {
		contentType = common.DefaultMimeType
	}

	err = netx.UploadToPresignedURL(ctx, t.client, writeURL, f, fi.Size(), contentType)
	if err != nil {
		var se *netx.StatusError
		if errors.As(err, &se) {
			t.logger.Error(ctx, "storage rejected upload", "asset", asset.SourceURI, "status", se.StatusCode, "body", se.Body)
			return &client.TransferError{StatusCode: se.StatusCode, Body: se.Body, Err: se}
		}
		t.logger.Error(ctx, "upload request failed", "asset", asset.SourceURI, "error", err)
		return &client.TransferError{Err: err}
	}

	t.logger.Debug(ctx, "upload stored", "asset", asset.SourceURI, "bytes", fi.Size(), "content_type", contentType)
	return nil
}
