// Package mediaindex is the local media library: it maps indirect ph://
// handles to files on disk, the way a device photo library maps asset ids
// to its own storage.
package mediaindex

import (
	"context"

	"github.com/cofit/cofitcli/internal/client/models"
)

// HandleScheme prefixes every handle the index issues.
const HandleScheme = "ph://"

// Repository stores media records keyed by handle.
type Repository interface {
	// Register stores rec, assigning a fresh handle and creation time when
	// they are unset. The stored record is returned.
	Register(ctx context.Context, rec models.MediaRecord) (*models.MediaRecord, error)

	// Lookup returns (nil, nil) when no record has the handle.
	Lookup(ctx context.Context, handle string) (*models.MediaRecord, error)

	Delete(ctx context.Context, handle string) error

	// List returns records oldest first.
	List(ctx context.Context) ([]*models.MediaRecord, error)
}
