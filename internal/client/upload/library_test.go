package upload

import (
	"context"
	"strings"
	"testing"

	"github.com/cofit/cofitcli/internal/client/client"
	"github.com/cofit/cofitcli/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	repos, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return NewLibrary(repos.Media, logging.Nop())
}

func TestLibrary_ImportListRemove(t *testing.T) {
	ctx := context.Background()
	lib := newTestLibrary(t)

	rec, err := lib.Import(ctx, writeTemp(t, "a.png", pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rec.Handle, "ph://"))
	assert.Equal(t, "image/png", rec.MimeType)
	assert.Equal(t, "a.png", rec.FileName)

	list, err := lib.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, rec.Handle, list[0].Handle)

	require.NoError(t, lib.Remove(ctx, strings.ToUpper(rec.Handle[:5])+rec.Handle[5:]))
	list, err = lib.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLibrary_ImportMissingFile(t *testing.T) {
	_, err := newTestLibrary(t).Import(context.Background(), "/no/such/file.jpg")
	assert.Error(t, err)
}

func TestLibrary_Pick(t *testing.T) {
	ctx := context.Background()
	lib := newTestLibrary(t)
	rec, err := lib.Import(ctx, writeTemp(t, "a.png", pngHeader))
	require.NoError(t, err)
	direct := writeTemp(t, "b.jpg", []byte("jpeg"))

	assets, err := lib.Pick(ctx, 0, rec.Handle, direct)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, rec.Handle, assets[0].SourceURI)
	assert.Equal(t, direct, assets[1].SourceURI)
	assert.Equal(t, "image/jpeg", assets[1].MimeType)

	_, err = lib.Pick(ctx, 0, "ph://unknown")
	var ue *client.UnresolvableSourceError
	assert.ErrorAs(t, err, &ue)

	_, err = lib.Pick(ctx, 1, direct, direct)
	assert.ErrorIs(t, err, ErrTooManyAssets)

	refs := make([]string, DefaultMaxAssets+1)
	for i := range refs {
		refs[i] = direct
	}
	_, err = lib.Pick(ctx, 0, refs...)
	assert.ErrorIs(t, err, ErrTooManyAssets)
}
