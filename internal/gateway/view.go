package gateway

import (
	"net/http"
	"unicode/utf8"

	"github.com/docgate/docgate/internal/logger"
	"github.com/docgate/docgate/pkg/handle"
	"github.com/docgate/docgate/pkg/metrics"
)

// handleView opens a single file.
//
// Policy: first offer the file to an external viewer; if no application is
// registered for its type, classify it and render inline when the MIME type
// is on the inline allow-list. Anything else is unsupported.
func (g *Gateway) handleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := r.URL.Query().Get("uri")
	if raw == "" {
		writeText(w, http.StatusBadRequest, "No uri argument specified")
		return
	}
	file, err := handle.Parse(raw)
	if err != nil {
		writeText(w, http.StatusBadRequest, "No uri argument specified")
		return
	}

	delegated, err := g.streamer.TryExternalView(ctx, file)
	if err != nil {
		writeProviderError(w, "view", err)
		return
	}
	if delegated {
		logger.Debug("view delegated to external viewer",
			logger.String("file", file.String()))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	mimeType, err := g.streamer.Classify(ctx, file)
	if err != nil {
		writeProviderError(w, "view", err)
		return
	}

	if !g.streamer.InlineViewable(mimeType) {
		writeText(w, http.StatusUnsupportedMediaType, "Cannot view file")
		return
	}

	data, err := g.streamer.ReadAll(ctx, file)
	if err != nil {
		writeProviderError(w, "view", err)
		return
	}
	if !utf8.Valid(data) {
		logger.Error("file content is not valid UTF-8",
			logger.String("file", file.String()),
			logger.String("mime_type", mimeType))
		writeText(w, http.StatusInternalServerError, "Failed to decode file content")
		return
	}

	metrics.RecordContentBytes(int64(len(data)))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(data)
}
