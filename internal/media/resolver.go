package media

import (
	"context"
	"time"

	"github.com/myanmatch/backend/internal/db"
)

// Resolver maps a profile's stored media columns to a single avatar URL.
type Resolver struct {
	storage   ObjectStorage
	signedTTL time.Duration
}

// NewResolver wires the resolver to an object storage backend.
// ttl applies to presigned media_paths entries.
func NewResolver(storage ObjectStorage, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Resolver{storage: storage, signedTTL: ttl}
}

// AvatarURL resolves the display URL for a profile's avatar.
//
// Precedence:
//  1. avatar_path, resolved to a public URL (redundant bucket prefix stripped)
//  2. avatar_url, if it is already an absolute http(s) URL
//  3. first media_paths entry, presigned
//  4. first media entry, public URL (or returned raw when already absolute)
//
// Total: any parse failure or missing path yields "" and callers render a
// placeholder. Never returns an error.
func (r *Resolver) AvatarURL(ctx context.Context, p *db.Profile) string {
	if p == nil || r.storage == nil {
		return ""
	}

	if key := NormalizeKey(p.AvatarPath); key != "" {
		if u := r.storage.PublicURL(key); u != "" {
			return u
		}
	}

	if IsAbsoluteURL(p.AvatarURL) {
		return p.AvatarURL
	}

	if entries := ParseList(p.MediaPaths); len(entries) > 0 {
		first := entries[0]
		if first.IsURL() {
			return first.URL
		}
		if u, err := r.storage.PresignGet(ctx, first.Key, r.signedTTL); err == nil && u != "" {
			return u
		}
	}

	if entries := ParseList(p.Media); len(entries) > 0 {
		first := entries[0]
		if first.IsURL() {
			return first.URL
		}
		if u := r.storage.PublicURL(first.Key); u != "" {
			return u
		}
	}

	return ""
}
