package domain

import "time"

type Document struct {
	ID         string         `json:"id"`
	ClaimID    string         `json:"claim_id"`
	FileName   string         `json:"file_name"`
	FilePath   string         `json:"file_path"`
	FileSize   int64          `json:"file_size"`
	MimeType   string         `json:"mime_type"`
	Status     DocumentStatus `json:"status"`
	UploadedBy string         `json:"uploaded_by"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// ProcessedDocument holds the successive text transformations of one
// document. Fields are additive: a later pipeline step never clears an
// earlier field, so the whole history stays inspectable. The Document status
// is the source of truth for pipeline position; field presence is a cache.
type ProcessedDocument struct {
	DocumentID     string     `json:"document_id"`
	OCRText        string     `json:"ocr_text"`
	AnonymizedText string     `json:"anonymized_text"`
	CleanedText    string     `json:"cleaned_text"`
	ReviewedText   string     `json:"reviewed_text"`
	ReviewedBy     string     `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// BatchItem is the structured outcome of one document inside a batch run.
type BatchItem struct {
	DocumentID string `json:"document_id"`
	FileName   string `json:"file_name"`
	Step       string `json:"step,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (i BatchItem) Failed() bool { return i.Error != "" }

// BatchResult reports a claim batch run: processed N of M with per-item
// errors, never all-or-nothing.
type BatchResult struct {
	ClaimID   string      `json:"claim_id"`
	Total     int         `json:"total"`
	Processed int         `json:"processed"`
	Items     []BatchItem `json:"items"`
}
