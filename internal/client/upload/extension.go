package upload

import (
	"regexp"
	"strings"
)

// DefaultExtension is used when a source URI has no recognisable extension.
const DefaultExtension = "jpg"

var extPattern = regexp.MustCompile(`\.([^./?#]+)(?:[?#]|$)`)

// Extension returns the lower-cased file extension of uri without the dot,
// ignoring any query or fragment. "file:///a/IMG.HEIC?x=1" gives "heic".
func Extension(uri string) string {
	m := extPattern.FindStringSubmatch(uri)
	if m == nil {
		return DefaultExtension
	}
	return strings.ToLower(m[1])
}
