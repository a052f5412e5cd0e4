// internal/app/features/files/upload.go
package files

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dalemusser/studypal/internal/app/system/blobstore"
)

// Uploaded describes a stored upload.
type Uploaded struct {
	FileID      string `json:"fileId"`
	FileSize    int64  `json:"fileSize"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType,omitempty"`
}

// ErrTooLarge is returned when the request body exceeds the upload limit.
var ErrTooLarge = errors.New("upload too large")

// ErrNoFile is returned when the form carries no "file" part.
var ErrNoFile = errors.New("no file in upload")

// ErrOverQuota is returned by CheckQuota when an upload would exceed the
// owner's storage quota.
var ErrOverQuota = errors.New("storage quota exceeded")

// CheckQuota returns ErrOverQuota when adding size bytes would take ownerID
// past quota. Everything under the owner's prefix counts, group files
// included. A quota of zero disables the check.
func CheckQuota(ctx context.Context, blobs blobstore.Store, ownerID string, size, quota int64) error {
	if quota <= 0 {
		return nil
	}
	used, err := blobs.Usage(ctx, blobstore.OwnerPrefix(ownerID))
	if err != nil {
		return fmt.Errorf("storage usage: %w", err)
	}
	if used+size > quota {
		return ErrOverQuota
	}
	return nil
}

// ReadUpload limits the body to maxBytes and returns the "file" part.
// The caller closes the returned file.
func ReadUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
			return nil, nil, ErrTooLarge
		}
		return nil, nil, fmt.Errorf("parse form: %w", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil || header == nil || header.Size == 0 {
		return nil, nil, ErrNoFile
	}
	return file, header, nil
}

// Store puts file under the key newKey builds from its sanitized name.
func Store(ctx context.Context, blobs blobstore.Store, newKey func(fileName string) string, file multipart.File, header *multipart.FileHeader) (Uploaded, error) {
	name := SanitizeFilename(header.Filename)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := newKey(name)
	if err := blobs.Put(ctx, key, file, header.Size, contentType); err != nil {
		return Uploaded{}, fmt.Errorf("store upload: %w", err)
	}
	return Uploaded{FileID: key, FileSize: header.Size, FileName: name, ContentType: contentType}, nil
}

// SanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with '_'. Long names are cut to 100 bytes, keeping the
// extension.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filepath.ToSlash(filename))

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 || string(result) == "." || string(result) == "_" {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
