package upload

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cofit/cofitcli/internal/client/models"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	records map[string]*models.MediaRecord
	err     error
	lookups []string
}

func (f *fakeIndex) Lookup(_ context.Context, handle string) (*models.MediaRecord, error) {
	f.lookups = append(f.lookups, handle)
	if f.err != nil {
		return nil, f.err
	}
	return f.records[handle], nil
}

type ticketCall struct{ ext, date string }

type fakeBroker struct {
	mu    sync.Mutex
	calls []ticketCall
	// results are consumed in order; the last one repeats
	results []brokerResult
}

type brokerResult struct {
	ticket *models.Ticket
	err    error
}

func (f *fakeBroker) RequestTicket(_ context.Context, ext, date string) (*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ticketCall{ext, date})
	i := len(f.calls) - 1
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i].ticket, f.results[i].err
}

type transferCall struct {
	writeURL, path string
	asset          models.Asset
}

type fakeTransferer struct {
	calls []transferCall
	errs  []error
	hook  func(call int)
}

func (f *fakeTransferer) Transfer(_ context.Context, writeURL, path string, asset models.Asset) error {
	f.calls = append(f.calls, transferCall{writeURL, path, asset})
	n := len(f.calls)
	if f.hook != nil {
		f.hook(n)
	}
	if n-1 < len(f.errs) {
		return f.errs[n-1]
	}
	return nil
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}
