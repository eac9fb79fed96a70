// Package export writes every document of one type to object storage as a
// single JSON array.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/es-stream-helper/docgate/internal/payload"
	"github.com/es-stream-helper/docgate/pkg/logger"
)

// Lister is the slice of the gateway an export needs.
type Lister interface {
	List(ctx context.Context, docType string) ([]*payload.Map, error)
}

// Uploader stores an object and hands out a temporary link to it.
type Uploader interface {
	UploadJSON(ctx context.Context, key string, data []byte) error
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// LinkTTL is how long the printed download link stays valid.
const LinkTTL = 24 * time.Hour

type Result struct {
	Key       string
	Documents int
	URL       string
}

// DefaultKey names an export <type>/<UTC timestamp>.json.
func DefaultKey(docType string, now time.Time) string {
	return fmt.Sprintf("%s/%s.json", docType, now.UTC().Format("20060102T150405Z"))
}

// Run lists docType and uploads the result under key (DefaultKey when empty).
func Run(ctx context.Context, l Lister, u Uploader, docType, key string, now time.Time) (*Result, error) {
	if strings.TrimSpace(key) == "" {
		key = DefaultKey(docType, now)
	}
	docs, err := l.List(ctx, docType)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", docType, err)
	}
	data, err := encode(docs)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", docType, err)
	}
	if err := u.UploadJSON(ctx, key, data); err != nil {
		return nil, fmt.Errorf("export %s: %w", docType, err)
	}
	link, err := u.PresignedURL(ctx, key, LinkTTL)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", docType, err)
	}
	logger.Infof("exported %d %s documents to %s", len(docs), docType, key)
	return &Result{Key: key, Documents: len(docs), URL: link}, nil
}

func encode(docs []*payload.Map) ([]byte, error) {
	var b strings.Builder
	b.WriteByte('[')
	for i, d := range docs {
		if d == nil {
			return nil, errors.New("nil document")
		}
		if i > 0 {
			b.WriteByte(',')
		}
		raw, err := payload.Marshal(d)
		if err != nil {
			return nil, err
		}
		b.Write(raw)
	}
	b.WriteByte(']')
	return []byte(b.String()), nil
}
