package scan

// Kind is the notification kind carried by a request. Only content
// changes are relayed.
type Kind string

const KindContentChanged Kind = "content_changed"

// Request is one notification ready for dispatch. It lives for a single
// invocation.
type Request struct {
	ID   string
	Path NormalizedPath
	Kind Kind
}

// NewRequest wraps a validated path into a content-changed request. id
// is the invocation's request id, shared with its log lines.
func NewRequest(id string, p NormalizedPath) Request {
	return Request{
		ID:   id,
		Path: p,
		Kind: KindContentChanged,
	}
}
