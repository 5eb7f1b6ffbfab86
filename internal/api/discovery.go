package api

import (
	"net/http"
	"strconv"
	"time"
)

// Discovery scan bounds.
const (
	defaultScanTimeout = 5 * time.Second
	maxScanTimeout     = 30 * time.Second
)

// handleDiscoveryScan broadcasts an SSDP search and returns the TVs that
// answered. The scan blocks for the requested timeout, so callers should
// expect the response to take several seconds.
func (s *Server) handleDiscoveryScan(w http.ResponseWriter, r *http.Request) {
	timeout := defaultScanTimeout
	if raw := r.URL.Query().Get("timeout_seconds"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 1 {
			writeBadRequest(w, "timeout_seconds must be a positive integer")
			return
		}
		timeout = time.Duration(secs) * time.Second
		if timeout > maxScanTimeout {
			timeout = maxScanTimeout
		}
	}

	found, err := s.discover(r.Context(), timeout)
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}

	s.logger.Info("discovery scan complete", "found", len(found))
	writeJSON(w, http.StatusOK, map[string]any{"discovered": found})
}
