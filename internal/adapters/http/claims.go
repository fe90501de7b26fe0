package httpadapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mvarga/claimsdesk/internal/core/domain"
)

func (rt *Router) createClaim(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClaimNumber  string `json:"claim_number"`
		ClientName   string `json:"client_name"`
		PolicyNumber string `json:"policy_number"`
		ClaimType    string `json:"claim_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	session := sessionFromContext(r.Context())
	claim, err := rt.claims.CreateClaim(r.Context(), &domain.Claim{
		ClaimNumber:  req.ClaimNumber,
		ClientName:   req.ClientName,
		PolicyNumber: req.PolicyNumber,
		ClaimType:    req.ClaimType,
		CreatedBy:    session.UserID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, claim)
}

func (rt *Router) listClaims(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	claims, err := rt.claims.ListClaims(r.Context(), session)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"claims": claims})
}

func (rt *Router) getClaim(w http.ResponseWriter, r *http.Request) {
	claim, ok := rt.visibleClaim(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

func (rt *Router) claimWorkflow(w http.ResponseWriter, r *http.Request) {
	if _, ok := rt.visibleClaim(w, r); !ok {
		return
	}

	summary, err := rt.workflow.Summary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// processClaim queues the claim for batch processing; the worker picks it
// up. Responds 202 as soon as the job is published.
func (rt *Router) processClaim(w http.ResponseWriter, r *http.Request) {
	claim, ok := rt.visibleClaim(w, r)
	if !ok {
		return
	}

	if err := rt.queue.PublishClaimBatch(r.Context(), claim.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":   "queued",
		"claim_id": claim.ID,
	})
}

func (rt *Router) generateClaimReport(w http.ResponseWriter, r *http.Request) {
	claim, ok := rt.visibleClaim(w, r)
	if !ok {
		return
	}

	var req struct {
		ContextIDs        []string `json:"context_ids"`
		CustomInstruction string   `json:"custom_instruction"`
		AnalysisTypeID    string   `json:"analysis_type_id"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
	}

	session := sessionFromContext(r.Context())
	start := time.Now()
	report, err := rt.reports.GenerateClaimReport(r.Context(), claim.ID, session.UserID, domain.ClaimReportOptions{
		ContextIDs:        req.ContextIDs,
		CustomInstruction: req.CustomInstruction,
		AnalysisTypeID:    req.AnalysisTypeID,
	})
	if rt.metrics != nil {
		rt.metrics.RecordReport("api", "claim", time.Since(start), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (rt *Router) listClaimReports(w http.ResponseWriter, r *http.Request) {
	claim, ok := rt.visibleClaim(w, r)
	if !ok {
		return
	}

	reports, err := rt.reportLog.ListByClaim(r.Context(), claim.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (rt *Router) exportClaimReports(w http.ResponseWriter, r *http.Request) {
	claim, ok := rt.visibleClaim(w, r)
	if !ok {
		return
	}

	reports, err := rt.reportLog.ListByClaim(r.Context(), claim.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	// render into memory first so a failed export still gets a JSON error
	var buf bytes.Buffer
	if err := rt.exporter.Export(&buf, claim, reports); err != nil {
		writeError(w, err)
		return
	}

	filename := fmt.Sprintf("reports_%s.xlsx", sanitizeFilename(claim.ClaimNumber))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// visibleClaim loads the claim and enforces ownership: handlers only see
// their own claims, admins see all. Foreign claims read as 404 so their
// existence does not leak.
func (rt *Router) visibleClaim(w http.ResponseWriter, r *http.Request) (*domain.Claim, bool) {
	claim, err := rt.claims.GetClaim(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}

	session := sessionFromContext(r.Context())
	if !session.IsAdmin() && claim.CreatedBy != session.UserID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "claim not found"})
		return nil, false
	}
	return claim, true
}

func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_", "\"", "_")
	name = replacer.Replace(strings.TrimSpace(name))
	if name == "" {
		return "claim"
	}
	return name
}
