package gallery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// isImageKey reports whether a storage key refers to a gallery image.
func isImageKey(key string) bool {
	lower := strings.ToLower(key)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// resolver maps human-facing picture names to storage keys. Storage keys
// are opaque (timestamp plus random suffix), so resolution is a full scan
// of the namespace with a metadata fetch per object; the first object whose
// stored name matches wins.
type resolver struct {
	store  ObjectStore
	prefix string
}

// resolve returns the storage key for the picture with the given display
// name, or ErrNotFound once the listing is exhausted without a match.
// Per-object metadata failures fall back to matching against the key's
// file name and never abort the scan.
func (r resolver) resolve(ctx context.Context, name string) (string, error) {
	objects, err := r.store.List(ctx, r.prefix)
	if err != nil {
		return "", fmt.Errorf("list objects: %w", err)
	}

	for _, obj := range objects {
		if !isImageKey(obj.Key) {
			continue
		}

		raw, err := r.store.Stat(ctx, obj.Key)
		if err != nil {
			slog.Warn("Metadata fetch failed during resolution, matching key name instead", "key", obj.Key, "err", err)
			if strings.Contains(strings.ToLower(keyTail(obj.Key)), strings.ToLower(name)) {
				return obj.Key, nil
			}
			continue
		}

		candidate := raw[metaOriginalName]
		if candidate == "" {
			candidate = keyTail(obj.Key)
		}

		if matchesName(name, candidate) {
			return obj.Key, nil
		}
	}

	return "", ErrNotFound
}

// matchesName compares a queried display name against a stored one: exact
// equality first, then case-insensitive containment in either direction.
func matchesName(query string, candidate string) bool {
	if query == candidate {
		return true
	}

	q := strings.ToLower(query)
	c := strings.ToLower(candidate)
	return strings.Contains(c, q) || strings.Contains(q, c)
}
