// Package blobstore stores the bytes behind pdf materials and shared group
// files. Personal keys are "<ownerID>/<uuid><ext>" so a caller can only
// address its own objects. Group files live under
// "<ownerID>/groups/<groupID>/<uuid><ext>": they still count toward the
// uploader's usage but are never OwnedBy the uploader.
package blobstore

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("blob not found")

// Info describes a stored object.
type Info struct {
	Key         string
	Size        int64
	ContentType string
}

// Store is the object-storage collaborator.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, Info, error)
	// Stat returns the object's metadata or ErrNotFound.
	Stat(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) error
	// Usage sums the sizes of all objects under prefix.
	Usage(ctx context.Context, prefix string) (int64, error)
}

// NewKey returns a fresh object key for ownerID, keeping the file extension.
func NewKey(ownerID, fileName string) string {
	return OwnerPrefix(ownerID) + uuid.NewString() + extOf(fileName)
}

// NewGroupKey returns a fresh object key for a file ownerID shares into
// groupID.
func NewGroupKey(ownerID, groupID, fileName string) string {
	return OwnerPrefix(ownerID) + "groups/" + groupID + "/" + uuid.NewString() + extOf(fileName)
}

func extOf(fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	if len(ext) > 10 {
		return ""
	}
	return ext
}

// OwnerPrefix is the key prefix for everything ownerID uploaded.
func OwnerPrefix(ownerID string) string {
	return ownerID + "/"
}

// OwnedBy reports whether key was issued to ownerID by NewKey.
func OwnedBy(key, ownerID string) bool {
	return ownerID != "" && strings.HasPrefix(key, OwnerPrefix(ownerID)) &&
		!strings.Contains(strings.TrimPrefix(key, OwnerPrefix(ownerID)), "/")
}
