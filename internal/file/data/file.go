package data

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/daffaabp/storage-management/internal/file/biz"
	"github.com/daffaabp/storage-management/internal/query"
)

// StringArrayJSON stores a string slice as a JSONB column
type StringArrayJSON []string

func (j *StringArrayJSON) Scan(value interface{}) error {
	if value == nil {
		*j = []string{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

func (j StringArrayJSON) Value() (driver.Value, error) {
	if j == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(j)
}

// FilePO represents the database model for file metadata
type FilePO struct {
	ID         string          `gorm:"type:uuid;primarykey"`
	Name       string          `gorm:"size:512;not null"`
	Extension  string          `gorm:"size:32"`
	Type       string          `gorm:"size:16;not null;index:idx_files_type"`
	URL        string          `gorm:"size:1024;not null"`
	Size       int64           `gorm:"not null"`
	OwnerID    string          `gorm:"type:uuid;not null;index:idx_files_owner_id"`
	AccountID  string          `gorm:"type:uuid;not null;index:idx_files_account_id"`
	SharedWith StringArrayJSON `gorm:"column:shared_with;type:jsonb;not null;default:'[]';index:idx_files_shared_with,type:gin"`
	BlobID     string          `gorm:"size:255;not null"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (FilePO) TableName() string {
	return "files"
}

// FileRepo implements biz.FileRepo on PostgreSQL
type FileRepo struct {
	db *gorm.DB
}

// NewFileRepo creates a file metadata repository
func NewFileRepo(db *gorm.DB) biz.FileRepo {
	return &FileRepo{db: db}
}

func (r *FileRepo) Create(ctx context.Context, file *biz.File) error {
	return r.db.WithContext(ctx).Create(toPO(file)).Error
}

func (r *FileRepo) GetByID(ctx context.Context, id string) (*biz.File, error) {
	var po FilePO
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrFileNotFound
		}
		return nil, err
	}
	return toFile(&po), nil
}

func (r *FileRepo) List(ctx context.Context, pred query.Predicate) ([]*biz.File, error) {
	clause, args := pred.ToSQL()

	var pos []FilePO
	err := r.db.WithContext(ctx).
		Where(clause, args...).
		Order("created_at DESC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}

	files := make([]*biz.File, len(pos))
	for i := range pos {
		files[i] = toFile(&pos[i])
	}
	return files, nil
}

// Update rewrites only the mutable columns; type, size, url, owner and
// blob id are immutable after creation.
func (r *FileRepo) Update(ctx context.Context, file *biz.File) error {
	result := r.db.WithContext(ctx).
		Model(&FilePO{}).
		Where("id = ?", file.ID).
		Updates(map[string]interface{}{
			"name":        file.Name,
			"extension":   file.Extension,
			"shared_with": StringArrayJSON(file.SharedWith),
			"updated_at":  file.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return biz.ErrFileNotFound
	}
	return nil
}

func (r *FileRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&FilePO{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return biz.ErrFileNotFound
	}
	return nil
}

func toPO(file *biz.File) *FilePO {
	return &FilePO{
		ID:         file.ID,
		Name:       file.Name,
		Extension:  file.Extension,
		Type:       string(file.Type),
		URL:        file.URL,
		Size:       file.Size,
		OwnerID:    file.OwnerID,
		AccountID:  file.AccountID,
		SharedWith: file.SharedWith,
		BlobID:     file.BlobID,
		CreatedAt:  file.CreatedAt,
		UpdatedAt:  file.UpdatedAt,
	}
}

func toFile(po *FilePO) *biz.File {
	return &biz.File{
		ID:         po.ID,
		Name:       po.Name,
		Extension:  po.Extension,
		Type:       biz.FileType(po.Type),
		URL:        po.URL,
		Size:       po.Size,
		OwnerID:    po.OwnerID,
		AccountID:  po.AccountID,
		SharedWith: po.SharedWith,
		BlobID:     po.BlobID,
		CreatedAt:  po.CreatedAt,
		UpdatedAt:  po.UpdatedAt,
	}
}
