package gallery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeMetadataDefaults(t *testing.T) {
	t.Parallel()

	md := decodeMetadata("pictures/20260115_120000_abcd1234.jpg", nil)

	require.Equal(t, "20260115_120000_abcd1234.jpg", md.OriginalName, "display name falls back to the key tail")
	require.Equal(t, 0, md.Rating, "missing rating defaults to 0")
	require.NotNil(t, md.Comments, "comments must never be nil")
	require.Empty(t, md.Comments, "missing comments default to empty")
	require.Empty(t, md.UploadDate)
}

func TestDecodeMetadataFull(t *testing.T) {
	t.Parallel()

	raw := map[string]string{
		"original-name": "sunset.jpg",
		"rating":        "4",
		"comments":      `[{"author":"ana","text":"nice","date":"2026-01-15T12:00:00Z"}]`,
		"upload-date":   "2026-01-15T12:00:00Z",
	}

	md := decodeMetadata("pictures/x.jpg", raw)

	require.Equal(t, "sunset.jpg", md.OriginalName)
	require.Equal(t, 4, md.Rating)
	require.Len(t, md.Comments, 1)
	require.Equal(t, "ana", md.Comments[0].Author)
	require.Equal(t, "nice", md.Comments[0].Text)
	require.Equal(t, "2026-01-15T12:00:00Z", md.UploadDate)
}

func TestDecodeMetadataLegacyUploadDate(t *testing.T) {
	t.Parallel()

	md := decodeMetadata("pictures/x.jpg", map[string]string{
		"upload_date": "2024-06-01T00:00:00Z",
	})

	require.Equal(t, "2024-06-01T00:00:00Z", md.UploadDate, "underscore spelling accepted on decode")
}

func TestDecodeRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  int
	}{
		{name: "empty", value: "", want: 0},
		{name: "valid", value: "3", want: 3},
		{name: "above range", value: "9", want: 5},
		{name: "negative", value: "-2", want: 0},
		{name: "garbage", value: "banana", want: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, decodeRating("pictures/x.jpg", tc.value))
		})
	}
}

func TestDecodeCommentsCorrupt(t *testing.T) {
	t.Parallel()

	comments := decodeComments("pictures/x.jpg", "{not json")
	require.NotNil(t, comments)
	require.Empty(t, comments, "corrupt comments decode to an empty list")
}

func TestEncodeMetadata(t *testing.T) {
	t.Parallel()

	md := Metadata{
		OriginalName: "cat.png",
		Rating:       5,
		Comments:     []Comment{{Author: "bob", Text: "wow", Date: "2026-01-15T12:00:00Z"}},
		UploadDate:   "2026-01-15T12:00:00Z",
	}

	raw := md.encode()

	require.Equal(t, "cat.png", raw["original-name"])
	require.Equal(t, "5", raw["rating"])
	require.JSONEq(t, `[{"author":"bob","text":"wow","date":"2026-01-15T12:00:00Z"}]`, raw["comments"])
	require.Equal(t, "2026-01-15T12:00:00Z", raw["upload-date"])
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	md := Metadata{
		OriginalName: "dog.gif",
		Rating:       2,
		Comments:     []Comment{},
		UploadDate:   "2026-01-15T12:00:00Z",
	}

	got := decodeMetadata("pictures/x.gif", md.encode())
	require.Equal(t, md, got)
}

func TestKeyTail(t *testing.T) {
	t.Parallel()

	require.Equal(t, "a.jpg", keyTail("pictures/a.jpg"))
	require.Equal(t, "b.png", keyTail("deep/nested/b.png"))
	require.Equal(t, "plain.gif", keyTail("plain.gif"))
}

func TestIsImageKey(t *testing.T) {
	t.Parallel()

	require.True(t, isImageKey("pictures/a.jpg"))
	require.True(t, isImageKey("pictures/a.JPEG"))
	require.True(t, isImageKey("pictures/a.Png"))
	require.True(t, isImageKey("pictures/a.gif"))
	require.False(t, isImageKey("pictures/notes.txt"))
	require.False(t, isImageKey("pictures/archive.zip"))
}
