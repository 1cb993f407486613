package api

import (
	"net/http"
	"strconv"

	"github.com/lampnet/lampnet-core/internal/audit"
)

// handleAuditList returns the paginated activity trail.
//
// Query parameters: action, actor_id, limit, offset. Invalid numeric
// values fall back to the repository defaults rather than erroring.
func (s *Server) handleAuditList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := audit.Filter{
		Action:  q.Get("action"),
		ActorID: q.Get("actor_id"),
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = v
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing activity logs failed", "error", err)
		writeInternalError(w, "failed to read activity log")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
