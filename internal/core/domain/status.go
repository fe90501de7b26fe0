package domain

// DocumentStatus is the processing state of a single claim document. A
// document only ever moves forward through the pipeline; Rank encodes the
// order and callers must never persist a status with a lower rank than the
// current one.
type DocumentStatus string

const (
	StatusUploaded        DocumentStatus = "uploaded"
	StatusOCRProcessing   DocumentStatus = "ocr_processing"
	StatusOCRComplete     DocumentStatus = "ocr_complete"
	StatusAnonymizing     DocumentStatus = "anonymizing"
	StatusAnonymized      DocumentStatus = "anonymized"
	StatusReadyForReview  DocumentStatus = "ready_for_review"
	StatusApproved        DocumentStatus = "approved"
	StatusReportGenerated DocumentStatus = "report_generated"
)

var statusRank = map[DocumentStatus]int{
	StatusUploaded:        0,
	StatusOCRProcessing:   1,
	StatusOCRComplete:     2,
	StatusAnonymizing:     3,
	StatusAnonymized:      4,
	StatusReadyForReview:  5,
	StatusApproved:        6,
	StatusReportGenerated: 7,
}

// Rank returns the position of the status in the pipeline order, or -1 for
// an unknown value.
func (s DocumentStatus) Rank() int {
	rank, ok := statusRank[s]
	if !ok {
		return -1
	}
	return rank
}

// Before reports whether s comes strictly earlier in the pipeline than other.
func (s DocumentStatus) Before(other DocumentStatus) bool {
	return s.Rank() < other.Rank()
}

// AtLeast reports whether s has reached other's pipeline position.
func (s DocumentStatus) AtLeast(other DocumentStatus) bool {
	return s.Rank() >= other.Rank()
}

func (s DocumentStatus) Terminal() bool {
	return s == StatusReportGenerated
}

// ClaimStatus is the coarse legacy claim state shown in list views. It is
// informational; the workflow summary below is derived from documents.
type ClaimStatus string

const (
	ClaimStatusNew        ClaimStatus = "new"
	ClaimStatusInProgress ClaimStatus = "in_progress"
	ClaimStatusCompleted  ClaimStatus = "completed"
	ClaimStatusRejected   ClaimStatus = "rejected"
)

// WorkflowStatus is the aggregate dashboard state of a claim, derived from
// the multiset of its documents' statuses and the report count.
type WorkflowStatus string

const (
	WorkflowNoDocuments        WorkflowStatus = "no_documents"
	WorkflowProcessing         WorkflowStatus = "processing"
	WorkflowPendingApproval    WorkflowStatus = "pending_approval"
	WorkflowAwaitingAnalysis   WorkflowStatus = "awaiting_analysis"
	WorkflowAnalysisInProgress WorkflowStatus = "analysis_in_progress"
	WorkflowAnalysisComplete   WorkflowStatus = "analysis_complete"
	WorkflowUnknown            WorkflowStatus = "unknown"
)

type WorkflowSummary struct {
	Status    WorkflowStatus `json:"status"`
	Progress  int            `json:"progress"`
	Documents int            `json:"documents"`
	Reports   int            `json:"reports"`
}

// DeriveWorkflow computes the claim-level workflow summary. The conditions
// are evaluated most-complete first; several of them can hold at once for
// degenerate inputs, so the order here is load-bearing.
func DeriveWorkflow(statuses []DocumentStatus, reportCount int) WorkflowSummary {
	total := len(statuses)
	summary := WorkflowSummary{Documents: total, Reports: reportCount}

	if total == 0 {
		summary.Status = WorkflowNoDocuments
		return summary
	}

	var generated, approvedOrLater, readyForReview, pastPipeline int
	for _, s := range statuses {
		if s == StatusReportGenerated {
			generated++
		}
		if s.AtLeast(StatusApproved) {
			approvedOrLater++
		}
		if s == StatusReadyForReview {
			readyForReview++
		}
		if s.AtLeast(StatusReadyForReview) {
			pastPipeline++
		}
	}

	switch {
	case generated == total && reportCount >= total:
		summary.Status = WorkflowAnalysisComplete
		summary.Progress = 100
	case approvedOrLater == total && reportCount > 0:
		summary.Status = WorkflowAnalysisInProgress
		summary.Progress = 75 + scale(25, reportCount, total)
	case approvedOrLater == total:
		summary.Status = WorkflowAwaitingAnalysis
		summary.Progress = 75
	case readyForReview > 0:
		summary.Status = WorkflowPendingApproval
		summary.Progress = 50 + scale(25, approvedOrLater+readyForReview, total)
	case anyMidPipeline(statuses):
		summary.Status = WorkflowProcessing
		summary.Progress = scale(50, pastPipeline, total)
	default:
		summary.Status = WorkflowUnknown
	}
	return summary
}

func anyMidPipeline(statuses []DocumentStatus) bool {
	for _, s := range statuses {
		if s.Rank() >= 0 && s.Before(StatusReadyForReview) {
			return true
		}
	}
	return false
}

func scale(span, part, total int) int {
	if total <= 0 {
		return 0
	}
	if part > total {
		part = total
	}
	return span * part / total
}
