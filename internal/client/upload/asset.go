package upload

import (
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cofit/cofitcli/internal/client/models"
	"github.com/cofit/cofitcli/internal/common"
	"github.com/cofit/cofitcli/internal/filex"
)

const sniffLen = 512

// DetectMimeType guesses a file's media type from its extension, then from
// its first bytes. Unknown content is reported as image/jpeg.
func DetectMimeType(path string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		if mt, _, err := mime.ParseMediaType(t); err == nil {
			return mt
		}
		return t
	}

	f, err := os.Open(path)
	if err != nil {
		return common.DefaultMimeType
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, _ := io.ReadFull(f, buf)
	if n == 0 {
		return common.DefaultMimeType
	}

	t := http.DetectContentType(buf[:n])
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		t = mt
	}
	if t == "application/octet-stream" || strings.HasPrefix(t, "text/") {
		return common.DefaultMimeType
	}
	return t
}

// AssetFromPath describes a local file as an upload asset.
func AssetFromPath(path string) (models.Asset, error) {
	clean := filex.TrimFileScheme(path)
	size, err := filex.StatRegular(clean)
	if err != nil {
		return models.Asset{}, err
	}
	return models.Asset{
		SourceURI: path,
		MimeType:  DetectMimeType(clean),
		FileName:  filepath.Base(clean),
		FileSize:  size,
	}, nil
}

// AssetFromRecord describes a library entry; the source is its handle.
func AssetFromRecord(rec models.MediaRecord) models.Asset {
	return models.Asset{
		SourceURI: rec.Handle,
		MimeType:  rec.MimeType,
		FileName:  rec.FileName,
		FileSize:  rec.FileSize,
	}
}
