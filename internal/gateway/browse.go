package gateway

import (
	"net/http"
	"time"

	"github.com/docgate/docgate/internal/logger"
	"github.com/docgate/docgate/pkg/handle"
	"github.com/docgate/docgate/pkg/metrics"
	"github.com/docgate/docgate/pkg/provider"
)

// listing is the rendered browse response. All fields are omitted when
// empty so the no-handle state renders as a bare "{}".
type listing struct {
	Name        string      `json:"name,omitempty"`
	Directories []dirEntry  `json:"directories,omitempty"`
	Files       []fileEntry `json:"files,omitempty"`
}

type dirEntry struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

type fileEntry struct {
	Name         string `json:"name"`
	URI          string `json:"uri"`
	LastModified string `json:"lastModified"`
	Size         uint64 `json:"size"`
}

// handleBrowse renders one level of the authorized tree.
//
// The container comes from the uri query parameter when present, otherwise
// from the persisted grant. No handle at all is not an error: the response
// is an empty render with status 200, prompting the client to request
// access. A stale or revoked container likewise degrades to the empty
// render; revocation is deliberately hidden behind the benign empty state.
func (g *Gateway) handleBrowse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var container handle.Handle
	if raw := r.URL.Query().Get("uri"); raw != "" {
		h, err := handle.Parse(raw)
		if err != nil {
			metrics.RecordListing("empty")
			writeJSON(w, listing{})
			return
		}
		container = h
	} else {
		active, ok, err := g.grants.ActiveTreeHandle(ctx)
		if err != nil {
			logger.Error("failed to read active grant", logger.Err(err))
			writeText(w, http.StatusInternalServerError,
				http.StatusText(http.StatusInternalServerError))
			return
		}
		if !ok {
			metrics.RecordListing("empty")
			writeJSON(w, listing{})
			return
		}

		root, err := g.resolver.ResolveTree(ctx, active)
		if err != nil {
			if _, isProviderErr := provider.CodeOf(err); isProviderErr {
				logger.Warn("active grant no longer resolves",
					logger.String("tree", active.String()), logger.Err(err))
				metrics.RecordListing("degraded")
				writeJSON(w, listing{})
				return
			}
			writeProviderError(w, "browse", err)
			return
		}
		container = root
	}

	entries, err := g.resolver.ListChildren(ctx, container)
	if err != nil {
		if code, ok := provider.CodeOf(err); ok &&
			(code == provider.ErrResolution || code == provider.ErrInvalidHandle) {
			logger.Warn("container no longer resolves",
				logger.String("container", container.String()), logger.Err(err))
			metrics.RecordListing("degraded")
			writeJSON(w, listing{})
			return
		}
		writeProviderError(w, "browse", err)
		return
	}

	out := listing{Name: container.String()}
	for _, e := range entries {
		if e.IsDirectory {
			out.Directories = append(out.Directories, dirEntry{
				Name: e.Name,
				URI:  e.Handle.String(),
			})
			continue
		}
		out.Files = append(out.Files, fileEntry{
			Name:         e.Name,
			URI:          e.Handle.String(),
			LastModified: e.LastModified.Format(time.RFC3339),
			Size:         e.Size,
		})
	}

	metrics.RecordListing("ok")
	writeJSON(w, out)
}
