package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/mvarga/claimsdesk/internal/core/domain"
	"github.com/mvarga/claimsdesk/internal/core/ports"
)

const maxUploadBytes = 50 << 20

var allowedMimeTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
	"image/tiff":      {},
	"image/webp":      {},
}

// Ingest stores an uploaded source file and registers its document row.
type Ingest struct {
	claims  ports.ClaimRepository
	docs    ports.DocumentRepository
	storage ports.ObjectStorage
}

func NewIngest(claims ports.ClaimRepository, docs ports.DocumentRepository, storage ports.ObjectStorage) *Ingest {
	return &Ingest{claims: claims, docs: docs, storage: storage}
}

// Upload validates the file, writes it to object storage under a
// claim-scoped key and creates the document in status uploaded.
func (uc *Ingest) Upload(ctx context.Context, claimID, filename, mimeType string, size int64, body io.Reader, uploadedBy string) (*domain.Document, error) {
	if filename == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("filename is required"))
	}
	if size <= 0 || size > maxUploadBytes {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document",
			fmt.Errorf("file size %d outside (0, %d]", size, maxUploadBytes))
	}
	if _, ok := allowedMimeTypes[mimeType]; !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document",
			fmt.Errorf("unsupported mime type %q", mimeType))
	}

	claim, err := uc.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("fetch claim by id: %w", err)
	}

	id := uuid.NewString()
	key := path.Join("claims", claim.ID, id+"_"+path.Base(filename))
	if err := uc.storage.Save(ctx, key, io.LimitReader(body, maxUploadBytes)); err != nil {
		return nil, fmt.Errorf("store uploaded file: %w", err)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:         id,
		ClaimID:    claim.ID,
		FileName:   path.Base(filename),
		FilePath:   key,
		FileSize:   size,
		MimeType:   mimeType,
		Status:     domain.StatusUploaded,
		UploadedBy: uploadedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	slog.Info("document_uploaded",
		"claim_id", claim.ID, "document_id", doc.ID, "file", doc.FileName, "bytes", size)
	return doc, nil
}
