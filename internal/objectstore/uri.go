package objectstore

import (
	"fmt"
	"strings"
)

// URI identifies a table directory in an object store.
// The prefix is always normalized to end with "/" so that all downstream
// path arithmetic is plain string concatenation.
type URI struct {
	Scheme string
	Bucket string
	Prefix string
}

// ParseURI parses "<scheme>://<bucket>/<prefix>" into its parts.
// An empty prefix addresses the bucket root.
func ParseURI(raw string) (URI, error) {
	idx := strings.Index(raw, "://")
	if idx <= 0 {
		return URI{}, fmt.Errorf("invalid object store URI %q: missing scheme", raw)
	}
	scheme := raw[:idx]
	rest := raw[idx+3:]
	if rest == "" {
		return URI{}, fmt.Errorf("invalid object store URI %q: missing bucket", raw)
	}

	bucket := rest
	prefix := ""
	if slash := strings.Index(rest, "/"); slash >= 0 {
		bucket = rest[:slash]
		prefix = rest[slash+1:]
	}
	if bucket == "" {
		return URI{}, fmt.Errorf("invalid object store URI %q: missing bucket", raw)
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return URI{Scheme: scheme, Bucket: bucket, Prefix: prefix}, nil
}

// String reassembles the normalized URI.
func (u URI) String() string {
	return fmt.Sprintf("%s://%s/%s", u.Scheme, u.Bucket, u.Prefix)
}

// Join appends a bucket-relative path to the table prefix.
func (u URI) Join(rel string) string {
	return u.Prefix + rel
}

// BaseName returns the final non-empty segment of the prefix, or the
// bucket name for a bucket-root URI. Used to derive default table names.
func (u URI) BaseName() string {
	trimmed := strings.TrimSuffix(u.Prefix, "/")
	if trimmed == "" {
		return u.Bucket
	}
	if slash := strings.LastIndex(trimmed, "/"); slash >= 0 {
		return trimmed[slash+1:]
	}
	return trimmed
}
