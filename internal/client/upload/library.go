package upload

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cofit/cofitcli/internal/client/client"
	"github.com/cofit/cofitcli/internal/client/models"
	"github.com/cofit/cofitcli/internal/client/repositories/mediaindex"
	"github.com/cofit/cofitcli/internal/filex"
	"github.com/cofit/cofitcli/internal/logging"
)

// DefaultMaxAssets caps a single pick.
const DefaultMaxAssets = 10

var ErrTooManyAssets = errors.New("too many assets selected")

// Library is the picker: it imports local files under ph:// handles and
// turns a user's selection into assets.
type Library struct {
	repo   mediaindex.Repository
	logger logging.Logger
}

func NewLibrary(repo mediaindex.Repository, logger logging.Logger) *Library {
	return &Library{repo: repo, logger: logger}
}

// Import registers a local file and returns its record with a new handle.
func (l *Library) Import(ctx context.Context, path string) (*models.MediaRecord, error) {
	abs, err := filepath.Abs(filex.TrimFileScheme(path))
	if err != nil {
		return nil, err
	}
	a, err := AssetFromPath(abs)
	if err != nil {
		return nil, err
	}

	rec, err := l.repo.Register(ctx, models.MediaRecord{
		FilePath: abs,
		MimeType: a.MimeType,
		FileName: a.FileName,
		FileSize: a.FileSize,
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info(ctx, "media imported", "handle", rec.Handle, "path", abs)
	return rec, nil
}

func (l *Library) List(ctx context.Context) ([]*models.MediaRecord, error) {
	return l.repo.List(ctx)
}

func (l *Library) Remove(ctx context.Context, handle string) error {
	return l.repo.Delete(ctx, normalizeHandle(handle))
}

// Pick builds assets from refs, which may be ph:// handles or file paths.
// More than max refs is an error; max <= 0 means DefaultMaxAssets.
func (l *Library) Pick(ctx context.Context, max int, refs ...string) ([]models.Asset, error) {
	if max <= 0 {
		max = DefaultMaxAssets
	}
	if len(refs) > max {
		return nil, fmt.Errorf("%w: %d selected, limit is %d", ErrTooManyAssets, len(refs), max)
	}

	assets := make([]models.Asset, 0, len(refs))
	for _, ref := range refs {
		if hasHandleScheme(ref) {
			rec, err := l.repo.Lookup(ctx, normalizeHandle(ref))
			if err != nil {
				return nil, err
			}
			if rec == nil {
				return nil, &client.UnresolvableSourceError{SourceURI: ref}
			}
			assets = append(assets, AssetFromRecord(*rec))
			continue
		}

		a, err := AssetFromPath(ref)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, nil
}
