package gallery

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
)

// Metadata key names as persisted in the object store. Older objects may
// carry the underscore spelling of the upload date; decode accepts both,
// encode always writes the hyphenated form.
const (
	metaOriginalName     = "original-name"
	metaRating           = "rating"
	metaComments         = "comments"
	metaUploadDate       = "upload-date"
	metaUploadDateLegacy = "upload_date"
)

// Comment is one gallery comment. Comments are append-only and keep their
// insertion order.
type Comment struct {
	Author string `json:"author"`
	Text   string `json:"text"`
	Date   string `json:"date"`
}

// Metadata is the fixed per-picture metadata envelope. The object store
// only holds a string-to-string map; this type gives its known fields a
// shape and a tolerant codec.
type Metadata struct {
	OriginalName string
	Rating       int
	Comments     []Comment
	UploadDate   string
}

// decodeMetadata builds a Metadata from the raw map attached to the object
// at key. Decoding is total: absent or corrupt values degrade to their
// defaults (rating 0, no comments, display name from the key tail) and are
// logged, never surfaced as errors.
func decodeMetadata(key string, raw map[string]string) Metadata {
	md := Metadata{
		OriginalName: raw[metaOriginalName],
		Rating:       decodeRating(key, raw[metaRating]),
		Comments:     decodeComments(key, raw[metaComments]),
		UploadDate:   raw[metaUploadDate],
	}

	if md.OriginalName == "" {
		md.OriginalName = keyTail(key)
	}
	if md.UploadDate == "" {
		md.UploadDate = raw[metaUploadDateLegacy]
	}

	return md
}

func decodeRating(key string, value string) int {
	if value == "" {
		return 0
	}

	rating, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("Ignoring unparsable rating metadata", "key", key, "value", value)
		return 0
	}

	return min(max(rating, 0), 5)
}

func decodeComments(key string, value string) []Comment {
	comments := []Comment{}
	if value == "" {
		return comments
	}

	if err := json.Unmarshal([]byte(value), &comments); err != nil {
		slog.Warn("Ignoring corrupt comments metadata", "key", key, "err", err)
		return []Comment{}
	}

	return comments
}

// encode serializes the envelope back into the store's metadata map. The
// caller is responsible for having validated the fields; encoding itself
// cannot fail.
func (m Metadata) encode() map[string]string {
	comments, err := json.Marshal(m.Comments)
	if err != nil {
		// A []Comment cannot fail to marshal; keep the stored value valid
		// JSON regardless.
		comments = []byte("[]")
	}

	return map[string]string{
		metaOriginalName: m.OriginalName,
		metaRating:       strconv.Itoa(m.Rating),
		metaComments:     string(comments),
		metaUploadDate:   m.UploadDate,
	}
}

// keyTail returns the final path segment of a storage key.
func keyTail(key string) string {
	if idx := strings.LastIndexByte(key, '/'); idx != -1 {
		return key[idx+1:]
	}
	return key
}
