// internal/render/fields.go
package render

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Fields is the flat field bag a workflow assembles for one document.
// Assembly is the caller's job; this package only renders and hashes.
type Fields map[string]string

func (f Fields) Get(key string) string {
	return f[key]
}

type Pair struct {
	Key   string
	Value string
}

// Pairs returns the fields in stable key order.
func (f Fields) Pairs() []Pair {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]Pair, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, Pair{Key: k, Value: f[k]})
	}
	return pairs
}

// Hash returns the SHA-256 of the field bag in stable key order. Two bags
// with identical contents always hash identically, so a stored document can
// be checked for staleness without re-rendering it.
func (f Fields) Hash() string {
	var sb strings.Builder
	for _, p := range f.Pairs() {
		sb.WriteString(p.Key)
		sb.WriteByte('=')
		sb.WriteString(p.Value)
		sb.WriteByte('\n')
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
