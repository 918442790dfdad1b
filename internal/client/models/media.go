package models

import "time"

// Ticket is a single-use upload slot. WriteURL takes the PUT; PublicURL is
// where the object can be read afterwards.
type Ticket struct {
	WriteURL       string
	PublicURL      string
	StorageBackend string
	ObjectKey      string
}

// Asset is a picked media item. SourceURI is either a filesystem path,
// optionally with a file:// prefix, or an indirect ph:// library handle.
type Asset struct {
	SourceURI string
	MimeType  string
	FileName  string
	FileSize  int64
}

// MediaRecord is one entry of the local media library. Handle is the
// ph:// URI assets carry; FilePath is where the bytes live.
type MediaRecord struct {
	Handle    string
	FilePath  string
	MimeType  string
	FileName  string
	FileSize  int64
	CreatedAt time.Time
}
