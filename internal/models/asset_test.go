package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindForContentType(t *testing.T) {
	tests := []struct {
		contentType string
		wantKind    MediaKind
		wantAllowed bool
	}{
		{"image/jpeg", MediaKindImage, true},
		{"image/png", MediaKindImage, true},
		{"image/gif", MediaKindImage, true},
		{"image/webp", MediaKindImage, true},
		{"video/mp4", MediaKindVideo, true},
		{"video/quicktime", MediaKindVideo, true},
		{"video/x-msvideo", MediaKindVideo, true},
		{"video/webm", MediaKindVideo, true},
		{"audio/mpeg", MediaKindAudio, true},
		{"audio/wav", MediaKindAudio, true},
		{"audio/ogg", MediaKindAudio, true},
		{"application/pdf", "", false},
		{"text/html", "", false},
		{"image/svg+xml", "", false},
		{"", "", false},
		// no prefix matching: the table is exact
		{"image/jpeg; charset=utf-8", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			kind, allowed := KindForContentType(tt.contentType)
			assert.Equal(t, tt.wantAllowed, allowed)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}
