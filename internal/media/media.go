package media

import (
	"encoding/json"
	"strings"
)

// Descriptor is one media entry after canonical parsing: either an
// absolute URL or an object key, never both.
type Descriptor struct {
	URL string
	Key string
}

// IsURL reports whether the entry was already a full http(s) URL.
func (d Descriptor) IsURL() bool { return d.URL != "" }

// ParseList converts a stored media column into descriptors.
//
// The legacy writer persisted any of: a JSON array, a JSON-encoded string
// containing an array, a bare path string, or nothing. Parsing happens
// once here so presentation code never re-interprets the column.
//
// ParseList is total: malformed input degrades to treating the raw value
// as a single entry, and empty input yields nil. It never errors.
func ParseList(raw string) []Descriptor {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var entries []string
		if err := json.Unmarshal([]byte(raw), &entries); err == nil {
			return descriptorsFrom(entries)
		}
		// malformed array text, treat as opaque single entry
		return descriptorsFrom([]string{raw})
	}

	if strings.HasPrefix(raw, `"`) {
		// JSON-encoded string, possibly wrapping an array
		var inner string
		if err := json.Unmarshal([]byte(raw), &inner); err == nil {
			inner = strings.TrimSpace(inner)
			if strings.HasPrefix(inner, "[") {
				var entries []string
				if err := json.Unmarshal([]byte(inner), &entries); err == nil {
					return descriptorsFrom(entries)
				}
			}
			return descriptorsFrom([]string{inner})
		}
	}

	return descriptorsFrom([]string{raw})
}

func descriptorsFrom(entries []string) []Descriptor {
	out := make([]Descriptor, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if IsAbsoluteURL(e) {
			out = append(out, Descriptor{URL: e})
			continue
		}
		out = append(out, Descriptor{Key: NormalizeKey(e)})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// IsAbsoluteURL reports whether s is already a displayable http(s) URL.
func IsAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// NormalizeKey strips a redundant leading bucket segment and slashes.
// Legacy rows sometimes stored "media/u/1/a.jpg" where the bucket name is
// already "media".
func NormalizeKey(key string) string {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	key = strings.TrimPrefix(key, "media/")
	return key
}
