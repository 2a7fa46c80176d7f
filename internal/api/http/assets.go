package http

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-tasks/internal/storage"
)

// MountFiles serves blobs stored by the filesystem driver.
// GET /files/*  -> the blob at whatever follows /files/
func MountFiles(r chi.Router, bs storage.BlobStore) {
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		rc, err := bs.Get(r.Context(), key)
		if err != nil {
			if os.IsNotExist(err) || errors.Is(err, storage.ErrBadKey) {
				writeJSON(w, http.StatusNotFound, errorBody{Msg: "Not found"})
				return
			}
			writeJSON(w, http.StatusInternalServerError, errorBody{Msg: "Server error", Error: err.Error()})
			return
		}
		defer rc.Close()
		ct := mime.TypeByExtension(path.Ext(key))
		if ct == "" {
			ct = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ct)
		_, _ = io.Copy(w, rc)
	})
}
