package data

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/daffaabp/storage-management/internal/user/biz"
)

// UserPO represents the database model
type UserPO struct {
	ID        string         `gorm:"type:uuid;primarykey"`
	FullName  string         `gorm:"size:100;not null"`
	Email     string         `gorm:"size:255;not null;uniqueIndex:idx_users_email,where:deleted_at IS NULL"`
	AvatarURL string         `gorm:"size:512"`
	AccountID string         `gorm:"type:uuid;not null;index:idx_users_account_id"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (UserPO) TableName() string {
	return "users"
}

// UserRepo implements biz.UserRepo on PostgreSQL
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo creates a user repository
func NewUserRepo(db *gorm.DB) biz.UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *biz.User) error {
	po := &UserPO{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
		AccountID: user.AccountID,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	return r.db.WithContext(ctx).Create(po).Error
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*biz.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*biz.User, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *UserRepo) GetByAccountID(ctx context.Context, accountID string) (*biz.User, error) {
	return r.getOne(ctx, "account_id = ?", accountID)
}

func (r *UserRepo) getOne(ctx context.Context, cond string, arg interface{}) (*biz.User, error) {
	var po UserPO
	err := r.db.WithContext(ctx).Where(cond, arg).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrUserNotFound
		}
		return nil, err
	}
	return toUser(&po), nil
}

func toUser(po *UserPO) *biz.User {
	return &biz.User{
		ID:        po.ID,
		FullName:  po.FullName,
		Email:     po.Email,
		AvatarURL: po.AvatarURL,
		AccountID: po.AccountID,
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	}
}
