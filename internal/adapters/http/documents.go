package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mvarga/claimsdesk/internal/core/domain"
)

// uploadDocument accepts one multipart file for a claim. The pipeline does
// not start automatically; the document stays at "uploaded" until a step
// trigger or a batch run picks it up.
func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	claim, ok := rt.visibleClaim(w, r)
	if !ok {
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	session := sessionFromContext(r.Context())
	doc, err := rt.ingest.Upload(
		r.Context(),
		claim.ID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
		session.UserID,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := rt.visibleDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// visibleDocument loads the document and applies the claim ownership gate:
// a document is visible exactly when its owning claim is. Foreign documents
// read as 404, same as foreign claims.
func (rt *Router) visibleDocument(w http.ResponseWriter, r *http.Request) (*domain.Document, bool) {
	doc, err := rt.documents.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}

	claim, err := rt.claims.GetClaim(r.Context(), doc.ClaimID)
	if err != nil {
		writeError(w, err)
		return nil, false
	}

	session := sessionFromContext(r.Context())
	if !session.IsAdmin() && claim.CreatedBy != session.UserID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
		return nil, false
	}
	return doc, true
}

// runStep adapts one pipeline step into a handler. Steps share the exact
// same request/response shape, only the transition differs.
func (rt *Router) runStep(step func(context.Context, string) (*domain.Document, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := rt.visibleDocument(w, r)
		if !ok {
			return
		}

		doc, err := step(r.Context(), doc.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func (rt *Router) approveDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := rt.visibleDocument(w, r)
	if !ok {
		return
	}

	var req struct {
		FinalText string `json:"final_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	session := sessionFromContext(r.Context())
	doc, err := rt.pipeline.Approve(r.Context(), doc.ID, session.UserID, req.FinalText)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) generateDocumentReport(w http.ResponseWriter, r *http.Request) {
	doc, ok := rt.visibleDocument(w, r)
	if !ok {
		return
	}
	session := sessionFromContext(r.Context())

	start := time.Now()
	report, err := rt.reports.GenerateDocumentReport(r.Context(), doc.ID, session.UserID)
	if rt.metrics != nil {
		rt.metrics.RecordReport("api", "document", time.Since(start), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}
