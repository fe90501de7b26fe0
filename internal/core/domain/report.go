package domain

import "time"

// ReportContent is the five-field narrative the LLM must return. The JSON
// key names are an external contract and must not change.
type ReportContent struct {
	Summary            string `json:"summary"`
	RelevanceAnalysis  string `json:"relevance_analysis"`
	ExclusionsAnalysis string `json:"exclusions_analysis"`
	Recommendation     string `json:"recommendation"`
	Justification      string `json:"justification"`
}

// Complete reports whether every required field is non-empty.
func (c ReportContent) Complete() bool {
	return c.Summary != "" &&
		c.RelevanceAnalysis != "" &&
		c.ExclusionsAnalysis != "" &&
		c.Recommendation != "" &&
		c.Justification != ""
}

// Report is one generated analysis. Immutable after creation; the final
// claim-level report is anchored to the first constituent document.
type Report struct {
	ID               string        `json:"id"`
	ClaimID          string        `json:"claim_id"`
	DocumentID       string        `json:"document_id"`
	Content          ReportContent `json:"content"`
	AnalysisTypeID   string        `json:"analysis_type_id,omitempty"`
	AnalysisTypeName string        `json:"analysis_type_name,omitempty"`
	GeneratedBy      string        `json:"generated_by"`
	CreatedAt        time.Time     `json:"created_at"`
}

// ClaimReportOptions tunes the claim-level ("final") report.
type ClaimReportOptions struct {
	ContextIDs        []string `json:"context_ids,omitempty"`
	CustomInstruction string   `json:"custom_instruction,omitempty"`
	AnalysisTypeID    string   `json:"analysis_type_id,omitempty"`
}

// InsuranceContext is an admin-maintained policy text block injected into
// report prompts.
type InsuranceContext struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContextType string    `json:"context_type"`
	Active      bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AnalysisType carries an alternative system prompt for the final report.
type AnalysisType struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	SystemPrompt string    `json:"system_prompt"`
	Active       bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
