// Package imagestore keeps post images on local disk or in S3.
package imagestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxImageBytes caps a single upload.
const MaxImageBytes = 5 << 20

var (
	ErrNotImage = errors.New("imagestore: upload is not an image")
	ErrTooLarge = errors.New("imagestore: image exceeds size limit")
	ErrBadKey   = errors.New("imagestore: invalid key")
)

// PutOptions carries object metadata.
type PutOptions struct {
	ContentType string
}

// Store is a flat key/value blob store addressed by slash-separated keys.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts *PutOptions) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// Save validates an upload and writes it under posts/YYYY/MM/. It returns
// the new key. The content must sniff as an image regardless of the
// client's filename or declared type.
func Save(ctx context.Context, s Store, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("imagestore: read upload: %w", err)
	}
	if len(data) > MaxImageBytes {
		return "", ErrTooLarge
	}
	if len(data) == 0 {
		return "", ErrNotImage
	}
	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return "", ErrNotImage
	}

	ext := strings.ToLower(path.Ext(filename))
	if ext == "" || len(ext) > 6 {
		ext = imageExt[ct]
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("posts/%04d/%02d/%s%s", now.Year(), now.Month(), uuid.NewString(), ext)
	if err := s.Put(ctx, key, bytes.NewReader(data), &PutOptions{ContentType: ct}); err != nil {
		return "", fmt.Errorf("imagestore: put %s: %w", key, err)
	}
	return key, nil
}

// cleanKey rejects keys that could escape the store root.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrBadKey
	}
	c := path.Clean(key)
	if c != key || c == "." || strings.HasPrefix(c, "../") || c == ".." {
		return "", ErrBadKey
	}
	return c, nil
}
