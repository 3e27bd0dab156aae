package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileHash_Execute_KnownDigests(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
		content   string
		want      string
	}{
		{
			name:      "sha256 hello world",
			algorithm: "sha256",
			content:   "hello world",
			want:      "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
		{
			name:      "md5 hello world",
			algorithm: "md5",
			content:   "hello world",
			want:      "5eb63bbbe01eeed093cb22bb8f5acdc3",
		},
		{
			name:      "sha1 hello world",
			algorithm: "sha1",
			content:   "hello world",
			want:      "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed",
		},
		{
			name:      "sha256 empty content",
			algorithm: "sha256",
			content:   "",
			want:      "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
	}

	h := NewFileHash()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Execute(context.Background(), map[string]any{
				"content":   tt.content,
				"algorithm": tt.algorithm,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out["hash"])
			assert.Equal(t, tt.algorithm, out["algorithm"])
			assert.Equal(t, len(tt.content), out["content_length"])
		})
	}
}

func TestFileHash_Execute_DefaultsToSHA256(t *testing.T) {
	h := NewFileHash()
	out, err := h.Execute(context.Background(), map[string]any{"content": "hello world"})
	require.NoError(t, err)
	assert.Equal(t, "sha256", out["algorithm"])
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", out["hash"])
}

func TestFileHash_Execute_ContentLengthIsBytes(t *testing.T) {
	h := NewFileHash()
	// multibyte characters count bytes, not runes
	out, err := h.Execute(context.Background(), map[string]any{"content": "héllo"})
	require.NoError(t, err)
	assert.Equal(t, 6, out["content_length"])
}

func TestFileHash_Execute_Invalid(t *testing.T) {
	h := NewFileHash()

	_, err := h.Execute(context.Background(), map[string]any{"content": "x", "algorithm": "crc32"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crc32")

	_, err = h.Execute(context.Background(), map[string]any{"algorithm": "sha256"})
	require.Error(t, err)

	_, err = h.Execute(context.Background(), map[string]any{"content": 42})
	require.Error(t, err)
}
