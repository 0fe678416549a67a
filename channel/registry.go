package channel

import (
	"sort"
	"strings"
)

// Registry maps channel names to their handlers.
type Registry map[string]Handler

func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve splits a qualified "channel.method" name and looks up the
// channel. Channel names may contain dots; the method is whatever
// follows the last one.
func (r Registry) Resolve(qualified string) (Handler, string, bool) {
	i := strings.LastIndex(qualified, ".")
	if i <= 0 || i == len(qualified)-1 {
		return nil, "", false
	}
	h, ok := r[qualified[:i]]
	if !ok {
		return nil, "", false
	}
	return h, qualified[i+1:], true
}
