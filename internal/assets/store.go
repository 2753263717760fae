// Package assets stores the binary payloads of media. Database rows only keep the
// reference returned by Put.
package assets

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Upload is one file received from a client
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Store persists media payloads
type Store interface {
	// Put stores the upload under prefix and returns its reference
	Put(ctx context.Context, prefix string, up Upload) (string, error)
	// URL returns the address clients use to fetch ref
	URL(ref string) string
	// Delete removes ref; deleting a missing ref is not an error
	Delete(ctx context.Context, ref string) error
}

// objectName builds "<prefix>_<timestamp>_<id><ext>", keeping the upload's extension
func objectName(prefix string, up Upload, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(up.Name))
	if ext == "" && up.ContentType != "" {
		if exts, err := mime.ExtensionsByType(up.ContentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return fmt.Sprintf("%s_%s_%s%s", prefix, now.Format("20060102150405"), uuid.New().String()[:8], ext)
}
