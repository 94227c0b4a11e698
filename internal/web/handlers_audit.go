package web

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/sheetlink/internal/audit"
	"github.com/JonMunkholm/sheetlink/internal/core"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

type auditResponse struct {
	core.Result
	Entries []audit.Entry `json:"entries"`
}

// parseLimit reads the limit query parameter, clamped to maxAuditLimit.
func parseLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 1 {
		return defaultAuditLimit
	}
	return min(n, maxAuditLimit)
}

// recentAudit returns the newest entries, or ok=false when the sink cannot
// list what it stored.
func (s *Server) recentAudit(w http.ResponseWriter, r *http.Request) ([]audit.Entry, bool) {
	lister, ok := s.audit.(audit.Lister)
	if !ok {
		writeError(w, r, http.StatusNotImplemented, "AUDIT_NOT_LISTABLE", "the audit sink does not support listing")
		return nil, false
	}
	entries, err := lister.Recent(r.Context(), parseLimit(r))
	if err != nil {
		respondError(w, r, err)
		return nil, false
	}
	return entries, true
}

// handleAuditRecent returns the newest audit entries as JSON.
func (s *Server) handleAuditRecent(w http.ResponseWriter, r *http.Request) {
	entries, ok := s.recentAudit(w, r)
	if !ok {
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeJSON(w, r, auditResponse{Result: core.OK(), Entries: entries})
}

// handleAuditExport streams the newest audit entries as CSV.
func (s *Server) handleAuditExport(w http.ResponseWriter, r *http.Request) {
	entries, ok := s.recentAudit(w, r)
	if !ok {
		return
	}

	filename := fmt.Sprintf("audit_%s.csv", s.now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	cw := csv.NewWriter(w)
	cw.Write([]string{
		"ID", "Timestamp", "Operation", "Connection", "Entity Type",
		"State", "Code", "Client IP", "Duration (ms)", "User Explanation", "Tech Explanation",
	})
	for _, e := range entries {
		cw.Write([]string{
			e.ID.String(),
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			e.Operation,
			e.ConnectionID,
			e.EntityType,
			string(e.State),
			e.Code,
			e.ClientIP,
			strconv.FormatInt(e.Duration.Milliseconds(), 10),
			e.UserExplanation,
			e.TechExplanation,
		})
	}
	cw.Flush()
}
