package cache

import (
	"sort"
	"strings"
)

// Key derives the deterministic cache key for a logical operation and its
// parameter map. Parameter keys are sorted so that identical requests hash to
// the same entry regardless of how the caller assembled the map. The api key
// is never part of a cache key; callers must not include it in params.
//
// Shape: <prefix>:<op>:k1=v1&k2=v2 (or <prefix>:<op> with no params).
func Key(prefix, op string, params map[string]string) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte(':')
	b.WriteString(op)

	if len(params) == 0 {
		return b.String()
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteByte(':')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}
