package gateway

import (
	"net/http"

	"github.com/docgate/docgate/internal/logger"
	"github.com/docgate/docgate/pkg/metrics"
)

// handleOpen fires the asynchronous access request.
//
// The consent round-trip completes out of process: the response is always
// 204, and the eventual authorization result arrives on the consent channel
// at an arbitrary later time. The client re-polls the root listing after the
// redirect lands a grant.
func (g *Gateway) handleOpen(w http.ResponseWriter, r *http.Request) {
	code := g.grants.RequestAccess(r.Context())
	metrics.RecordAccessRequest()
	logger.Info("access request issued", logger.String("request_code", code))
	w.WriteHeader(http.StatusNoContent)
}
