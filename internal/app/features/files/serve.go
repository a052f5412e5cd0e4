// internal/app/features/files/serve.go
package files

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/dalemusser/studypal/internal/app/system/blobstore"
	"go.uber.org/zap"
)

// ServeBlob copies a blob to w as an attachment named fileName.
func ServeBlob(w http.ResponseWriter, rc io.Reader, info blobstore.Info, fileName string, log *zap.Logger) {
	ct := info.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		log.Warn("blob copy interrupted", zap.String("key", info.Key), zap.Error(err))
	}
}
