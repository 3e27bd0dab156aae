package handler

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"hash"

	"github.com/target/tasker/internal/core"
	"github.com/target/tasker/internal/domain/model"
)

// FileHash digests arbitrary text content with a caller-selected algorithm.
type FileHash struct{}

var _ core.Handler = (*FileHash)(nil)

// NewFileHash returns the file_hash handler.
func NewFileHash() *FileHash {
	return &FileHash{}
}

// Execute hashes the content parameter. algorithm defaults to sha256;
// md5 and sha1 stay available because callers compare against digests
// produced by legacy systems, not for integrity.
func (h *FileHash) Execute(_ context.Context, params map[string]any) (map[string]any, error) {
	content, err := stringParam(params, "content")
	if err != nil {
		return nil, err
	}

	algorithm := "sha256"
	if raw, ok := params["algorithm"]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, model.NewHandlerError("parameter \"algorithm\" is not a string")
		}
		algorithm = s
	}

	var digest hash.Hash
	switch algorithm {
	case "md5":
		digest = md5.New()
	case "sha1":
		digest = sha1.New()
	case "sha256":
		digest = sha256.New()
	default:
		return nil, model.NewHandlerError("unsupported algorithm %q", algorithm)
	}

	digest.Write([]byte(content))
	return map[string]any{
		"hash":           hex.EncodeToString(digest.Sum(nil)),
		"algorithm":      algorithm,
		"content_length": len(content),
	}, nil
}

func stringParam(params map[string]any, key string) (string, error) {
	raw, ok := params[key]
	if !ok {
		return "", model.NewHandlerError("missing parameter %q", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", model.NewHandlerError("parameter %q is not a string", key)
	}
	return s, nil
}
