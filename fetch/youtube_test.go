package fetch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestYouTubeService_Matches(t *testing.T) {
	s := &YouTubeService{}

	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/abc123", true},
		{"https://www.tiktok.com/@user/video/123", false},
		{"https://pony.tube/w/abc", false},
		{"notaurl", false},
		{"", false},
		{"http://myoutube.com/watch?v=x", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Matches(tt.url))
		})
	}
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?si=share", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/abc123", "abc123"},
		{"https://www.youtube.com/live/xyz789", "xyz789"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/", ""},
		{"https://www.youtube.com/channel/UCabc", ""},
		{"https://example.com/watch?v=dQw4w9WgXcQ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, extractVideoID(tt.url))
		})
	}
}

func TestAPIErrorClassifier(t *testing.T) {
	assert.False(t, apiErrorClassifier(nil))
	assert.False(t, apiErrorClassifier(ErrVideoUnavailable),
		"an empty result is terminal, never retried")
	assert.False(t, apiErrorClassifier(context.Canceled))

	assert.True(t, apiErrorClassifier(&googleapi.Error{Code: 403}))
	assert.True(t, apiErrorClassifier(&googleapi.Error{Code: 429}))
	assert.True(t, apiErrorClassifier(&googleapi.Error{Code: 503}))
	assert.False(t, apiErrorClassifier(&googleapi.Error{Code: 404}))
	assert.False(t, apiErrorClassifier(&googleapi.Error{Code: 400}))

	assert.True(t, apiErrorClassifier(errors.New("connection reset")))
}
