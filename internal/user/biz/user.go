package biz

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daffaabp/storage-management/internal/auth"
	"github.com/daffaabp/storage-management/internal/pkg/logger"
)

const (
	// DefaultAvatarURL is assigned to every new account
	DefaultAvatarURL = "https://png.pngtree.com/png-vector/20190710/ourmid/pngtree-user-vector-avatar-png-image_1541962.jpg"

	// PendingSignInTTL is how long a sign-in code stays valid
	PendingSignInTTL = 5 * time.Minute

	// MaxVerifyAttempts bounds code guesses per pending sign-in
	MaxVerifyAttempts = 3
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidCode     = errors.New("invalid verification code")
	ErrCodeExpired     = errors.New("verification code expired")
	ErrTooManyAttempts = errors.New("too many verification attempts")
)

// User represents an account holder
type User struct {
	ID        string
	FullName  string
	Email     string
	AvatarURL string
	AccountID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserRepo defines the repository interface for user records
type UserRepo interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByAccountID(ctx context.Context, accountID string) (*User, error)
}

// PendingSignIn is an issued, not yet verified sign-in code
type PendingSignIn struct {
	AccountID string    `json:"account_id"`
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PendingSignInRepo stores short-lived sign-in codes
type PendingSignInRepo interface {
	Create(ctx context.Context, pending *PendingSignIn) error
	Get(ctx context.Context, accountID string) (*PendingSignIn, error)
	IncrementAttempts(ctx context.Context, accountID string) error
	Delete(ctx context.Context, accountID string) error
}

// CodeSender delivers sign-in codes to users
type CodeSender interface {
	SendSignInCode(ctx context.Context, to, code string) error
}

// UserUseCase contains business logic for accounts and sign-in
type UserUseCase struct {
	repo    UserRepo
	pending PendingSignInRepo
	sender  CodeSender
	tokens  *auth.JWTManager
	logger  *logger.Logger
}

// NewUserUseCase creates a new user use case
func NewUserUseCase(repo UserRepo, pending PendingSignInRepo, sender CodeSender, tokens *auth.JWTManager, log *logger.Logger) *UserUseCase {
	if log == nil {
		log = logger.L()
	}
	return &UserUseCase{
		repo:    repo,
		pending: pending,
		sender:  sender,
		tokens:  tokens,
		logger:  log,
	}
}

// CreateAccount registers a user (or re-enters sign-in for an existing
// email) and emails a one-time code. Returns the account id the caller
// needs for verification.
func (uc *UserUseCase) CreateAccount(ctx context.Context, fullName, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("invalid email address")
	}

	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		uc.logger.Error("failed to look up user by email", zap.Error(err), zap.String("email", email))
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	accountID := uuid.New().String()
	if existing != nil {
		accountID = existing.AccountID
	}

	if err := uc.issueCode(ctx, accountID, email); err != nil {
		return "", err
	}

	if existing == nil {
		now := time.Now()
		user := &User{
			ID:        uuid.New().String(),
			FullName:  fullName,
			Email:     email,
			AvatarURL: DefaultAvatarURL,
			AccountID: accountID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uc.repo.Create(ctx, user); err != nil {
			uc.logger.Error("failed to create user", zap.Error(err), zap.String("email", email))
			return "", fmt.Errorf("failed to create user: %w", err)
		}
	}

	return accountID, nil
}

// RequestCode re-issues a sign-in code for an existing account
func (uc *UserUseCase) RequestCode(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	if err := uc.issueCode(ctx, user.AccountID, user.Email); err != nil {
		return "", err
	}

	return user.AccountID, nil
}

// VerifyCode exchanges a valid (accountID, code) pair for a session token
func (uc *UserUseCase) VerifyCode(ctx context.Context, accountID, code string) (string, *User, error) {
	pending, err := uc.pending.Get(ctx, accountID)
	if err != nil {
		return "", nil, ErrCodeExpired
	}

	if pending.Attempts >= MaxVerifyAttempts {
		_ = uc.pending.Delete(ctx, accountID)
		return "", nil, ErrTooManyAttempts
	}

	if pending.Code != code {
		if err := uc.pending.IncrementAttempts(ctx, accountID); err != nil {
			uc.logger.Warn("failed to record verification attempt", zap.Error(err))
		}
		return "", nil, ErrInvalidCode
	}

	if err := uc.pending.Delete(ctx, accountID); err != nil {
		uc.logger.Warn("failed to delete pending sign-in", zap.Error(err))
	}

	user, err := uc.repo.GetByAccountID(ctx, accountID)
	if err != nil {
		return "", nil, err
	}

	token, err := uc.tokens.GenerateToken(user.ID, user.Email, user.AccountID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	return token, user, nil
}

// CurrentUser resolves the user behind an authenticated request
func (uc *UserUseCase) CurrentUser(ctx context.Context, userID string) (*User, error) {
	return uc.repo.GetByID(ctx, userID)
}

func (uc *UserUseCase) issueCode(ctx context.Context, accountID, email string) error {
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	now := time.Now()
	pending := &PendingSignIn{
		AccountID: accountID,
		Email:     email,
		Code:      code,
		Attempts:  0,
		CreatedAt: now,
		ExpiresAt: now.Add(PendingSignInTTL),
	}

	if err := uc.pending.Create(ctx, pending); err != nil {
		uc.logger.Error("failed to store pending sign-in", zap.Error(err), zap.String("account_id", accountID))
		return fmt.Errorf("failed to store pending sign-in: %w", err)
	}

	if err := uc.sender.SendSignInCode(ctx, email, code); err != nil {
		uc.logger.Error("failed to send sign-in code", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("failed to send sign-in code: %w", err)
	}

	return nil
}

// generateCode produces a 6-digit one-time code
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
