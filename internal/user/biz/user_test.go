package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daffaabp/storage-management/internal/auth"
)

type fakeUserRepo struct {
	users []*User
}

func (r *fakeUserRepo) Create(_ context.Context, user *User) error {
	r.users = append(r.users, user)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeUserRepo) GetByAccountID(_ context.Context, accountID string) (*User, error) {
	for _, u := range r.users {
		if u.AccountID == accountID {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

type fakePendingRepo struct {
	entries map[string]*PendingSignIn
}

func newFakePendingRepo() *fakePendingRepo {
	return &fakePendingRepo{entries: make(map[string]*PendingSignIn)}
}

func (r *fakePendingRepo) Create(_ context.Context, p *PendingSignIn) error {
	r.entries[p.AccountID] = p
	return nil
}

func (r *fakePendingRepo) Get(_ context.Context, accountID string) (*PendingSignIn, error) {
	p, ok := r.entries[accountID]
	if !ok {
		return nil, ErrCodeExpired
	}
	return p, nil
}

func (r *fakePendingRepo) IncrementAttempts(_ context.Context, accountID string) error {
	if p, ok := r.entries[accountID]; ok {
		p.Attempts++
	}
	return nil
}

func (r *fakePendingRepo) Delete(_ context.Context, accountID string) error {
	delete(r.entries, accountID)
	return nil
}

type fakeSender struct {
	sentTo   []string
	lastCode string
	fail     bool
}

func (s *fakeSender) SendSignInCode(_ context.Context, to, code string) error {
	if s.fail {
		return assert.AnError
	}
	s.sentTo = append(s.sentTo, to)
	s.lastCode = code
	return nil
}

func newTestUseCase() (*UserUseCase, *fakeUserRepo, *fakePendingRepo, *fakeSender) {
	repo := &fakeUserRepo{}
	pending := newFakePendingRepo()
	sender := &fakeSender{}
	tokens := auth.NewJWTManager("test-secret", "storage-management")
	return NewUserUseCase(repo, pending, sender, tokens, nil), repo, pending, sender
}

func TestCreateAccountNewUser(t *testing.T) {
	uc, repo, _, sender := newTestUseCase()

	accountID, err := uc.CreateAccount(context.Background(), "Ada Lovelace", "ada@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, accountID)

	require.Len(t, repo.users, 1)
	assert.Equal(t, "ada@x.com", repo.users[0].Email)
	assert.Equal(t, accountID, repo.users[0].AccountID)
	assert.Equal(t, DefaultAvatarURL, repo.users[0].AvatarURL)
	assert.Equal(t, []string{"ada@x.com"}, sender.sentTo)
}

func TestCreateAccountExistingEmailReusesAccount(t *testing.T) {
	uc, repo, _, _ := newTestUseCase()

	first, err := uc.CreateAccount(context.Background(), "Ada", "ada@x.com")
	require.NoError(t, err)

	second, err := uc.CreateAccount(context.Background(), "Ada Again", "ada@x.com")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, repo.users, 1, "no duplicate user record")
}

func TestCreateAccountRejectsBadEmail(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	_, err := uc.CreateAccount(context.Background(), "X", "not-an-email")
	assert.Error(t, err)
}

func TestVerifyCodeHappyPath(t *testing.T) {
	uc, _, _, sender := newTestUseCase()

	accountID, err := uc.CreateAccount(context.Background(), "Ada", "ada@x.com")
	require.NoError(t, err)

	token, user, err := uc.VerifyCode(context.Background(), accountID, sender.lastCode)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "ada@x.com", user.Email)

	// Verified codes are single-use.
	_, _, err = uc.VerifyCode(context.Background(), accountID, sender.lastCode)
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestVerifyCodeWrongCode(t *testing.T) {
	uc, _, pending, sender := newTestUseCase()

	accountID, err := uc.CreateAccount(context.Background(), "Ada", "ada@x.com")
	require.NoError(t, err)

	_, _, err = uc.VerifyCode(context.Background(), accountID, "000000")
	if sender.lastCode == "000000" {
		t.Skip("collided with generated code")
	}
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Equal(t, 1, pending.entries[accountID].Attempts)
}

func TestVerifyCodeTooManyAttempts(t *testing.T) {
	uc, _, pending, sender := newTestUseCase()

	accountID, err := uc.CreateAccount(context.Background(), "Ada", "ada@x.com")
	require.NoError(t, err)

	pending.entries[accountID].Attempts = MaxVerifyAttempts

	_, _, err = uc.VerifyCode(context.Background(), accountID, sender.lastCode)
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	// The pending entry is burned after the limit is hit.
	_, ok := pending.entries[accountID]
	assert.False(t, ok)
}

func TestRequestCodeUnknownEmail(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	_, err := uc.RequestCode(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
