package upload

import (
	"context"
	"strings"

	"github.com/cofit/cofitcli/internal/client/client"
	"github.com/cofit/cofitcli/internal/client/models"
	"github.com/cofit/cofitcli/internal/client/repositories/mediaindex"
	"github.com/cofit/cofitcli/internal/filex"
	"github.com/cofit/cofitcli/internal/logging"
)

// MediaIndex looks up library handles. mediaindex.Repository satisfies it.
type MediaIndex interface {
	Lookup(ctx context.Context, handle string) (*models.MediaRecord, error)
}

// Source is where an asset's bytes come from.
type Source interface {
	Resolve(ctx context.Context, index MediaIndex) (string, error)
}

// DirectPath is a filesystem path, possibly prefixed with file://.
type DirectPath string

func (p DirectPath) Resolve(context.Context, MediaIndex) (string, error) {
	return filex.TrimFileScheme(string(p)), nil
}

// IndirectHandle is an opaque ph:// library handle.
type IndirectHandle string

func (h IndirectHandle) Resolve(ctx context.Context, index MediaIndex) (string, error) {
	if index == nil {
		return "", &client.UnresolvableSourceError{SourceURI: string(h)}
	}
	rec, err := index.Lookup(ctx, normalizeHandle(string(h)))
	if err != nil {
		return "", &client.UnresolvableSourceError{SourceURI: string(h), Err: err}
	}
	if rec == nil || rec.FilePath == "" {
		return "", &client.UnresolvableSourceError{SourceURI: string(h)}
	}
	return filex.TrimFileScheme(rec.FilePath), nil
}

func hasHandleScheme(uri string) bool {
	return len(uri) >= len(mediaindex.HandleScheme) &&
		strings.EqualFold(uri[:len(mediaindex.HandleScheme)], mediaindex.HandleScheme)
}

// normalizeHandle lower-cases the scheme only; the id part is kept as is.
func normalizeHandle(uri string) string {
	if !hasHandleScheme(uri) {
		return uri
	}
	return mediaindex.HandleScheme + uri[len(mediaindex.HandleScheme):]
}

// ParseSource classifies uri. The ph:// scheme is matched case-insensitively.
func ParseSource(uri string) Source {
	if hasHandleScheme(uri) {
		return IndirectHandle(uri)
	}
	return DirectPath(uri)
}

// Resolver turns asset source URIs into readable local paths.
type Resolver struct {
	index  MediaIndex
	logger logging.Logger
}

func NewResolver(index MediaIndex, logger logging.Logger) *Resolver {
	return &Resolver{index: index, logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context, uri string) (string, error) {
	if uri == "" {
		return "", &client.UnresolvableSourceError{SourceURI: uri}
	}
	path, err := ParseSource(uri).Resolve(ctx, r.index)
	if err != nil {
		r.logger.Warn(ctx, "cannot resolve asset source", "asset", uri, "error", err)
		return "", err
	}
	r.logger.Debug(ctx, "resolved asset source", "asset", uri, "path", path)
	return path, nil
}
