package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "deeper", "cofit.db")

	require.NoError(t, EnsureParentDir(path))

	fi, err := os.Stat(filepath.Join(tmp, "nested", "deeper"))
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	require.NoError(t, EnsureParentDir("bare.db"))
}

func TestTrimFileScheme(t *testing.T) {
	tests := map[string]string{
		"file:///var/mobile/a.jpg": "/var/mobile/a.jpg",
		"/tmp/b.png":               "/tmp/b.png",
		"ph://ABC-123":             "ph://ABC-123",
		"":                         "",
	}
	for in, want := range tests {
		assert.Equal(t, want, TrimFileScheme(in), in)
	}
}

func TestStatRegular(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "f.bin")
	require.NoError(t, os.WriteFile(p, []byte("12345"), 0o600))

	n, err := StatRegular(p)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	_, err = StatRegular(tmp)
	require.Error(t, err)

	_, err = StatRegular(filepath.Join(tmp, "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
