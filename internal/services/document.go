package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lamyda/lamyda-backend/internal/apperr"
	"github.com/lamyda/lamyda-backend/internal/logger"
	"github.com/lamyda/lamyda-backend/internal/repos"
	"github.com/lamyda/lamyda-backend/internal/types"
	"github.com/lamyda/lamyda-backend/internal/utils"
)

// PromoteInput describes one binary to promote to durable storage.
// PathPrefix scopes the storage key (inline images share "process-images",
// attachments and videos live under the owning process id); NamePrefix is an
// optional literal prefix on the object name (e.g. "video-").
type PromoteInput struct {
	ProcessID  uuid.UUID
	PathPrefix string
	NamePrefix string
	FileName   string
	MimeType   string
	Data       []byte
	CreatedBy  uuid.UUID
}

// DocumentService turns binaries into durable assets: upload, public URL,
// content hash, metadata row. Each Promote call is independent; a failure
// never aborts sibling promotions.
type DocumentService interface {
	Promote(ctx context.Context, in PromoteInput) (*types.Document, error)
	ListByProcess(ctx context.Context, processID uuid.UUID) ([]*types.Document, error)
}

type documentService struct {
	db           *gorm.DB
	log          *logger.Logger
	bucket       BucketService
	documentRepo repos.DocumentRepo
}

func NewDocumentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	bucket BucketService,
	documentRepo repos.DocumentRepo,
) DocumentService {
	return &documentService{
		db:           db,
		log:          baseLog.With("service", "DocumentService"),
		bucket:       bucket,
		documentRepo: documentRepo,
	}
}

func (ds *documentService) Promote(ctx context.Context, in PromoteInput) (*types.Document, error) {
	const op = "promote document"
	if in.ProcessID == uuid.Nil {
		return nil, apperr.Validation(op, fmt.Errorf("missing process id"))
	}
	if strings.TrimSpace(in.FileName) == "" {
		return nil, apperr.Validation(op, fmt.Errorf("missing file name"))
	}
	if len(in.Data) == 0 {
		return nil, apperr.Validation(op, fmt.Errorf("file %q has no content", in.FileName))
	}

	key := storageKey(in.PathPrefix, in.NamePrefix, in.FileName)

	if err := ds.bucket.UploadFile(ctx, key, bytes.NewReader(in.Data)); err != nil {
		ds.log.Error("upload failed", "process_id", in.ProcessID, "storage_key", key, "error", err)
		return nil, apperr.Storage(op, err)
	}

	fileURL := ds.bucket.GetPublicURL(key)

	fileHash, err := utils.HashBytes(in.Data)
	if err != nil {
		return nil, apperr.Validation(op, err)
	}

	doc := &types.Document{
		ID:         uuid.New(),
		ProcessID:  in.ProcessID,
		FileName:   in.FileName,
		FileType:   in.MimeType,
		FileURL:    fileURL,
		FileSize:   int64(len(in.Data)),
		FileHash:   fileHash,
		StorageKey: key,
		CreatedBy:  in.CreatedBy,
	}
	if _, err := ds.documentRepo.Create(ctx, nil, doc); err != nil {
		ds.log.Error("document record insert failed, removing uploaded blob", "process_id", in.ProcessID, "storage_key", key, "error", err)
		if delErr := ds.bucket.DeleteFile(ctx, key); delErr != nil {
			// Compensation is best-effort: an orphaned blob is acceptable,
			// a surfaced delete error here would mask the real failure.
			ds.log.Warn("compensating delete failed", "storage_key", key, "error", delErr)
		}
		return nil, apperr.Persistence(op, err)
	}

	return doc, nil
}

func (ds *documentService) ListByProcess(ctx context.Context, processID uuid.UUID) ([]*types.Document, error) {
	docs, err := ds.documentRepo.ListByProcessID(ctx, nil, processID)
	if err != nil {
		return nil, apperr.Persistence("list documents", err)
	}
	return docs, nil
}

// storageKey builds a collision-resistant object key:
// <prefix>/<name prefix><unix ms>-<random token><original extension>.
func storageKey(pathPrefix, namePrefix, fileName string) string {
	ext := path.Ext(fileName)
	name := fmt.Sprintf("%s%d-%s%s", namePrefix, time.Now().UnixMilli(), randomSuffix(), ext)
	if pathPrefix == "" {
		return name
	}
	return fmt.Sprintf("%s/%s", pathPrefix, name)
}
