// Package scan turns raw path arguments into validated scan requests.
package scan

import (
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// NormalizedPath is an absolute, cleaned filesystem path together with
// the file URI handed to indexers.
type NormalizedPath struct {
	Path string `json:"path"`
	URI  string `json:"uri"`
}

// Validator normalizes path arguments. The zero value rejects relative
// paths; hosts set BaseDir to the working directory.
type Validator struct {
	// BaseDir resolves relative paths. Empty means relative paths are malformed.
	BaseDir string
}

// Validate is a pure function of raw and v.BaseDir; it never touches the
// filesystem, so paths of deleted files are accepted.
func (v Validator) Validate(raw string) (NormalizedPath, error) {
	if raw == "" {
		return NormalizedPath{}, emptyError()
	}
	if strings.ContainsRune(raw, 0) {
		return NormalizedPath{}, malformedError("contains NUL byte")
	}
	if !utf8.ValidString(raw) {
		return NormalizedPath{}, malformedError("not valid UTF-8")
	}

	p := raw
	if !filepath.IsAbs(p) {
		if v.BaseDir == "" || !filepath.IsAbs(v.BaseDir) {
			return NormalizedPath{}, malformedError("relative path without base directory")
		}
		p = filepath.Join(v.BaseDir, p)
	}
	p = filepath.Clean(p)

	return NormalizedPath{Path: p, URI: fileURI(p)}, nil
}

// fileURI renders p as a file:// URI with the path percent-encoded as a
// URL path. Sub-delimiters such as + : @ stay literal, which URI
// consumers decode to the same path.
func fileURI(p string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(p)}
	if !strings.HasPrefix(u.Path, "/") {
		// Windows drive paths: file:///C:/...
		u.Path = "/" + u.Path
	}
	return u.String()
}
