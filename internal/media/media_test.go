package media_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myanmatch/backend/internal/db"
	"github.com/myanmatch/backend/internal/media"
)

func TestParseListShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []media.Descriptor
	}{
		{
			name: "json array",
			raw:  `["u/1/a.jpg","https://cdn.test/b.jpg"]`,
			want: []media.Descriptor{{Key: "u/1/a.jpg"}, {URL: "https://cdn.test/b.jpg"}},
		},
		{
			name: "json-encoded string wrapping an array",
			raw:  `"[\"u/1/a.jpg\",\"u/1/b.jpg\"]"`,
			want: []media.Descriptor{{Key: "u/1/a.jpg"}, {Key: "u/1/b.jpg"}},
		},
		{
			name: "json-encoded bare string",
			raw:  `"u/1/a.jpg"`,
			want: []media.Descriptor{{Key: "u/1/a.jpg"}},
		},
		{
			name: "bare path",
			raw:  "u/1/a.jpg",
			want: []media.Descriptor{{Key: "u/1/a.jpg"}},
		},
		{
			name: "bare absolute url",
			raw:  "https://cdn.test/a.jpg",
			want: []media.Descriptor{{URL: "https://cdn.test/a.jpg"}},
		},
		{
			name: "redundant bucket prefix stripped",
			raw:  `["media/u/1/a.jpg","/u/2/b.jpg"]`,
			want: []media.Descriptor{{Key: "u/1/a.jpg"}, {Key: "u/2/b.jpg"}},
		},
		{name: "empty", raw: "", want: nil},
		{name: "whitespace", raw: "   ", want: nil},
		{name: "null literal", raw: "null", want: nil},
		{name: "empty array", raw: "[]", want: nil},
		{name: "array of blanks", raw: `[""," "]`, want: nil},
		{
			// malformed arrays degrade to an opaque single entry
			name: "malformed array",
			raw:  `["u/1/a.jpg"`,
			want: []media.Descriptor{{Key: `["u/1/a.jpg"`}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, media.ParseList(tc.raw))
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "u/1/a.jpg", media.NormalizeKey("media/u/1/a.jpg"))
	assert.Equal(t, "u/1/a.jpg", media.NormalizeKey("/media/u/1/a.jpg"))
	assert.Equal(t, "u/1/a.jpg", media.NormalizeKey(" u/1/a.jpg"))
	assert.Equal(t, "u/1/a.jpg", media.NormalizeKey("u/1/a.jpg"))
	assert.Equal(t, "", media.NormalizeKey(""))
}

// fakeStorage implements ObjectStorage without the network.
type fakeStorage struct {
	presignErr error
}

func (f *fakeStorage) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	return "https://files.test/media/" + key
}

func (f *fakeStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://files.test/media/" + key + "?signed=1", nil
}

func TestAvatarURLPrecedence(t *testing.T) {
	ctx := context.Background()
	r := media.NewResolver(&fakeStorage{}, time.Hour)

	// 1. avatar_path wins, with the bucket prefix stripped
	p := &db.Profile{
		AvatarPath: "media/u/1/avatar.jpg",
		AvatarURL:  "https://cdn.test/old.jpg",
		MediaPaths: `["u/1/x.jpg"]`,
	}
	assert.Equal(t, "https://files.test/media/u/1/avatar.jpg", r.AvatarURL(ctx, p))

	// 2. absolute avatar_url comes next
	p = &db.Profile{
		AvatarURL:  "https://cdn.test/old.jpg",
		MediaPaths: `["u/1/x.jpg"]`,
	}
	assert.Equal(t, "https://cdn.test/old.jpg", r.AvatarURL(ctx, p))

	// a relative avatar_url is ignored
	p = &db.Profile{AvatarURL: "u/1/rel.jpg", MediaPaths: `["u/1/x.jpg"]`}
	assert.Equal(t, "https://files.test/media/u/1/x.jpg?signed=1", r.AvatarURL(ctx, p))

	// 3. first media_paths entry is presigned
	p = &db.Profile{MediaPaths: `["u/1/x.jpg","u/1/y.jpg"]`}
	assert.Equal(t, "https://files.test/media/u/1/x.jpg?signed=1", r.AvatarURL(ctx, p))

	// 4. media column is the last resort, served as a public URL
	p = &db.Profile{Media: `"[\"u/1/m.jpg\"]"`}
	assert.Equal(t, "https://files.test/media/u/1/m.jpg", r.AvatarURL(ctx, p))

	// absolute entries inside media columns pass through untouched
	p = &db.Profile{Media: "https://cdn.test/direct.jpg"}
	assert.Equal(t, "https://cdn.test/direct.jpg", r.AvatarURL(ctx, p))

	// nothing resolvable → empty string, caller renders a placeholder
	assert.Equal(t, "", r.AvatarURL(ctx, &db.Profile{}))
	assert.Equal(t, "", r.AvatarURL(ctx, nil))
}

func TestAvatarURLPresignFailureFallsThrough(t *testing.T) {
	ctx := context.Background()
	r := media.NewResolver(&fakeStorage{presignErr: assert.AnError}, time.Hour)

	p := &db.Profile{
		MediaPaths: `["u/1/x.jpg"]`,
		Media:      `["u/1/m.jpg"]`,
	}
	// presign failed, the media column still resolves
	require.Equal(t, "https://files.test/media/u/1/m.jpg", r.AvatarURL(ctx, p))
}
