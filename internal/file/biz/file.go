package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daffaabp/storage-management/internal/pkg/logger"
	"github.com/daffaabp/storage-management/internal/query"
)

// File is the metadata record for one uploaded file
type File struct {
	ID         string
	Name       string
	Extension  string
	Type       FileType
	URL        string
	Size       int64
	OwnerID    string
	AccountID  string
	SharedWith []string
	BlobID     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FileRepo defines the repository interface for file metadata
type FileRepo interface {
	Create(ctx context.Context, file *File) error
	GetByID(ctx context.Context, id string) (*File, error)
	List(ctx context.Context, pred query.Predicate) ([]*File, error)
	Update(ctx context.Context, file *File) error
	Delete(ctx context.Context, id string) error
}

// BlobInfo describes a stored object
type BlobInfo struct {
	BlobID     string
	StoredName string
	Size       int64
}

// BlobStore is the object storage the file bytes live in
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte) (*BlobInfo, error)
	Delete(ctx context.Context, blobID string) error
	URLFor(blobID string) string
}

// Notifier signals listing views that an account's files changed
type Notifier interface {
	FilesChanged(ctx context.Context, accountID string) error
}

// Metadata record field names used in listing predicates
const (
	FieldOwnerID    = "owner_id"
	FieldSharedWith = "shared_with"
)

// UploadRequest carries one file to ingest
type UploadRequest struct {
	FileName  string
	Data      []byte
	OwnerID   string
	AccountID string
}

// ListResult is a listing plus the total byte count of its records
type ListResult struct {
	Files     []*File
	TotalSize int64
}

// FileUseCase contains business logic for file workflows
type FileUseCase struct {
	repo     FileRepo
	blobs    BlobStore
	notifier Notifier
	logger   *logger.Logger
}

// NewFileUseCase creates a new file use case
func NewFileUseCase(repo FileRepo, blobs BlobStore, notifier Notifier, log *logger.Logger) *FileUseCase {
	if log == nil {
		log = logger.L()
	}
	return &FileUseCase{
		repo:     repo,
		blobs:    blobs,
		notifier: notifier,
		logger:   log,
	}
}

// Upload writes the file bytes to the blob store, then records its
// metadata. The blob write goes first: if the metadata create fails the
// blob is deleted again, so a metadata record never points at a missing
// object. The reverse order would have no such remedy.
func (uc *FileUseCase) Upload(ctx context.Context, req *UploadRequest) (*File, error) {
	if len(req.Data) == 0 {
		return nil, ErrEmptyFile
	}
	if req.OwnerID == "" || req.AccountID == "" {
		return nil, ErrUnauthorized
	}

	blob, err := uc.blobs.Put(ctx, req.FileName, req.Data)
	if err != nil {
		uc.logger.Error("blob write failed",
			zap.Error(err),
			zap.String("file_name", req.FileName),
			zap.String("owner_id", req.OwnerID))
		return nil, &IngestionError{Stage: StageBlobWrite, Err: err}
	}

	fileType, extension := Classify(blob.StoredName)

	now := time.Now()
	file := &File{
		ID:         uuid.New().String(),
		Name:       blob.StoredName,
		Extension:  extension,
		Type:       fileType,
		URL:        uc.blobs.URLFor(blob.BlobID),
		Size:       blob.Size,
		OwnerID:    req.OwnerID,
		AccountID:  req.AccountID,
		SharedWith: []string{},
		BlobID:     blob.BlobID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := uc.repo.Create(ctx, file); err != nil {
		compensated := true
		if delErr := uc.blobs.Delete(ctx, blob.BlobID); delErr != nil {
			compensated = false
			uc.logger.Error("orphaned blob: compensating delete failed",
				zap.Error(delErr),
				zap.String("blob_id", blob.BlobID),
				zap.String("file_name", req.FileName))
		}
		uc.logger.Error("metadata create failed",
			zap.Error(err),
			zap.String("blob_id", blob.BlobID),
			zap.Bool("compensated", compensated))
		return nil, &IngestionError{Stage: StageMetadataWrite, Compensated: compensated, Err: err}
	}

	if uc.notifier != nil {
		if err := uc.notifier.FilesChanged(ctx, req.AccountID); err != nil {
			uc.logger.Warn("failed to notify file change",
				zap.Error(err),
				zap.String("account_id", req.AccountID))
		}
	}

	return file, nil
}

// List returns the files the user owns or that are shared with their
// email, with the summed size of the result. Order follows the store.
func (uc *FileUseCase) List(ctx context.Context, userID, email string) (*ListResult, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	pred := query.Or(
		query.Eq(FieldOwnerID, userID),
		query.Contains(FieldSharedWith, strings.ToLower(email)),
	)

	files, err := uc.repo.List(ctx, pred)
	if err != nil {
		uc.logger.Error("file listing failed", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	var total int64
	for _, f := range files {
		total += f.Size
	}

	return &ListResult{Files: files, TotalSize: total}, nil
}

// Rename changes a file's display name. Both name and extension are
// rewritten so the name suffix and the extension field never diverge.
func (uc *FileUseCase) Rename(ctx context.Context, fileID, ownerID, newBaseName, extension string) (*File, error) {
	file, err := uc.repo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != ownerID {
		return nil, ErrAccessDenied
	}

	extension = strings.ToLower(strings.TrimPrefix(extension, "."))
	newName := newBaseName
	if extension != "" {
		newName = newBaseName + "." + extension
	}

	file.Name = newName
	file.Extension = extension
	file.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, file); err != nil {
		uc.logger.Error("rename failed", zap.Error(err), zap.String("file_id", fileID))
		return nil, fmt.Errorf("failed to rename file: %w", err)
	}

	uc.notifyChanged(ctx, file.AccountID)

	return file, nil
}

// Share grants the given emails access to a file
func (uc *FileUseCase) Share(ctx context.Context, fileID, ownerID string, emails []string) (*File, error) {
	file, err := uc.repo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != ownerID {
		return nil, ErrAccessDenied
	}

	seen := make(map[string]bool, len(file.SharedWith))
	for _, e := range file.SharedWith {
		seen[e] = true
	}
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !seen[e] {
			file.SharedWith = append(file.SharedWith, e)
			seen[e] = true
		}
	}
	file.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, file); err != nil {
		uc.logger.Error("share failed", zap.Error(err), zap.String("file_id", fileID))
		return nil, fmt.Errorf("failed to share file: %w", err)
	}

	uc.notifyChanged(ctx, file.AccountID)

	return file, nil
}

// Unshare revokes access for the given emails
func (uc *FileUseCase) Unshare(ctx context.Context, fileID, ownerID string, emails []string) (*File, error) {
	file, err := uc.repo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != ownerID {
		return nil, ErrAccessDenied
	}

	remove := make(map[string]bool, len(emails))
	for _, e := range emails {
		remove[strings.ToLower(strings.TrimSpace(e))] = true
	}

	kept := file.SharedWith[:0]
	for _, e := range file.SharedWith {
		if !remove[e] {
			kept = append(kept, e)
		}
	}
	file.SharedWith = kept
	file.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, file); err != nil {
		uc.logger.Error("unshare failed", zap.Error(err), zap.String("file_id", fileID))
		return nil, fmt.Errorf("failed to unshare file: %w", err)
	}

	uc.notifyChanged(ctx, file.AccountID)

	return file, nil
}

// Delete removes the metadata record and then the blob. Record first:
// a blob with no record is a cleanup problem, a record with no blob
// would be a broken listing entry.
func (uc *FileUseCase) Delete(ctx context.Context, fileID, ownerID string) error {
	file, err := uc.repo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if file.OwnerID != ownerID {
		return ErrAccessDenied
	}

	if err := uc.repo.Delete(ctx, fileID); err != nil {
		uc.logger.Error("file delete failed", zap.Error(err), zap.String("file_id", fileID))
		return fmt.Errorf("failed to delete file: %w", err)
	}

	if err := uc.blobs.Delete(ctx, file.BlobID); err != nil {
		uc.logger.Error("orphaned blob: delete after record removal failed",
			zap.Error(err),
			zap.String("blob_id", file.BlobID))
	}

	uc.notifyChanged(ctx, file.AccountID)

	return nil
}

// GetDownloadURL resolves a file's URL for a user with access
func (uc *FileUseCase) GetDownloadURL(ctx context.Context, fileID, userID, email string) (string, error) {
	file, err := uc.repo.GetByID(ctx, fileID)
	if err != nil {
		return "", err
	}

	if file.OwnerID != userID && !containsEmail(file.SharedWith, email) {
		return "", ErrAccessDenied
	}

	return file.URL, nil
}

func (uc *FileUseCase) notifyChanged(ctx context.Context, accountID string) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.FilesChanged(ctx, accountID); err != nil {
		uc.logger.Warn("failed to notify file change",
			zap.Error(err),
			zap.String("account_id", accountID))
	}
}

func containsEmail(emails []string, email string) bool {
	email = strings.ToLower(email)
	for _, e := range emails {
		if e == email {
			return true
		}
	}
	return false
}
