package biz

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daffaabp/storage-management/internal/query"
)

type fakeFileRepo struct {
	files      map[string]*File
	lastPred   query.Predicate
	listCalls  int
	failCreate error
	failUpdate error
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[string]*File)}
}

func (r *fakeFileRepo) Create(_ context.Context, file *File) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	r.files[file.ID] = file
	return nil
}

func (r *fakeFileRepo) GetByID(_ context.Context, id string) (*File, error) {
	f, ok := r.files[id]
	if !ok {
		return nil, ErrFileNotFound
	}
	return f, nil
}

func (r *fakeFileRepo) List(_ context.Context, pred query.Predicate) ([]*File, error) {
	r.listCalls++
	r.lastPred = pred
	out := make([]*File, 0, len(r.files))
	for _, f := range r.files {
		out = append(out, f)
	}
	return out, nil
}

func (r *fakeFileRepo) Update(_ context.Context, file *File) error {
	if r.failUpdate != nil {
		return r.failUpdate
	}
	if _, ok := r.files[file.ID]; !ok {
		return ErrFileNotFound
	}
	r.files[file.ID] = file
	return nil
}

func (r *fakeFileRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.files[id]; !ok {
		return ErrFileNotFound
	}
	delete(r.files, id)
	return nil
}

type fakeBlobStore struct {
	objects     map[string][]byte
	putFail     error
	deleteFail  error
	deleteCalls []string
	nextID      int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (s *fakeBlobStore) Put(_ context.Context, name string, data []byte) (*BlobInfo, error) {
	if s.putFail != nil {
		return nil, s.putFail
	}
	s.nextID++
	id := fmt.Sprintf("blob-%d", s.nextID)
	s.objects[id] = data
	return &BlobInfo{BlobID: id, StoredName: name, Size: int64(len(data))}, nil
}

func (s *fakeBlobStore) Delete(_ context.Context, blobID string) error {
	s.deleteCalls = append(s.deleteCalls, blobID)
	if s.deleteFail != nil {
		return s.deleteFail
	}
	delete(s.objects, blobID)
	return nil
}

func (s *fakeBlobStore) URLFor(blobID string) string {
	return "https://store.example.com/files/" + blobID
}

type fakeNotifier struct {
	accounts []string
}

func (n *fakeNotifier) FilesChanged(_ context.Context, accountID string) error {
	n.accounts = append(n.accounts, accountID)
	return nil
}

func newTestUseCase() (*FileUseCase, *fakeFileRepo, *fakeBlobStore, *fakeNotifier) {
	repo := newFakeFileRepo()
	blobs := newFakeBlobStore()
	notifier := &fakeNotifier{}
	return NewFileUseCase(repo, blobs, notifier, nil), repo, blobs, notifier
}

func uploadReq(name string) *UploadRequest {
	return &UploadRequest{
		FileName:  name,
		Data:      []byte("content"),
		OwnerID:   "u1",
		AccountID: "acc1",
	}
}

func TestUploadSuccess(t *testing.T) {
	uc, repo, blobs, notifier := newTestUseCase()

	file, err := uc.Upload(context.Background(), uploadReq("photo.png"))
	require.NoError(t, err)

	// Both the blob and the record exist and reference each other.
	_, blobExists := blobs.objects[file.BlobID]
	assert.True(t, blobExists)
	stored, err := repo.GetByID(context.Background(), file.ID)
	require.NoError(t, err)
	assert.Equal(t, file.BlobID, stored.BlobID)

	assert.Equal(t, "photo.png", file.Name)
	assert.Equal(t, TypeImage, file.Type)
	assert.Equal(t, "png", file.Extension)
	assert.Equal(t, int64(len("content")), file.Size)
	assert.Equal(t, "https://store.example.com/files/"+file.BlobID, file.URL)
	assert.NotNil(t, file.SharedWith)
	assert.Empty(t, file.SharedWith)

	assert.Equal(t, []string{"acc1"}, notifier.accounts)
}

func TestUploadBlobWriteFailure(t *testing.T) {
	uc, repo, blobs, _ := newTestUseCase()
	blobs.putFail = errors.New("bucket unavailable")

	_, err := uc.Upload(context.Background(), uploadReq("a.txt"))

	var ingErr *IngestionError
	require.ErrorAs(t, err, &ingErr)
	assert.Equal(t, StageBlobWrite, ingErr.Stage)

	// Nothing was created, so nothing needs compensating.
	assert.Empty(t, repo.files)
	assert.Empty(t, blobs.deleteCalls)
}

func TestUploadMetadataFailureCompensates(t *testing.T) {
	uc, repo, blobs, notifier := newTestUseCase()
	repo.failCreate = errors.New("constraint violation")

	_, err := uc.Upload(context.Background(), uploadReq("a.txt"))

	var ingErr *IngestionError
	require.ErrorAs(t, err, &ingErr)
	assert.Equal(t, StageMetadataWrite, ingErr.Stage)
	assert.True(t, ingErr.Compensated)

	// The blob delete ran exactly once and the store holds neither half.
	assert.Len(t, blobs.deleteCalls, 1)
	assert.Empty(t, blobs.objects)
	assert.Empty(t, repo.files)
	assert.Empty(t, notifier.accounts)
}

func TestUploadCompensationFailureReported(t *testing.T) {
	uc, repo, blobs, _ := newTestUseCase()
	repo.failCreate = errors.New("constraint violation")
	blobs.deleteFail = errors.New("connection reset")

	_, err := uc.Upload(context.Background(), uploadReq("a.txt"))

	var ingErr *IngestionError
	require.ErrorAs(t, err, &ingErr)
	assert.Equal(t, StageMetadataWrite, ingErr.Stage)
	assert.False(t, ingErr.Compensated)

	// The orphaned blob is still in the store.
	assert.Len(t, blobs.objects, 1)
	assert.Empty(t, repo.files)
}

func TestUploadRejectsEmptyContent(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	req := uploadReq("a.txt")
	req.Data = nil

	_, err := uc.Upload(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestUploadRequiresOwner(t *testing.T) {
	uc, _, blobs, _ := newTestUseCase()

	req := uploadReq("a.txt")
	req.OwnerID = ""

	_, err := uc.Upload(context.Background(), req)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, blobs.objects, "no blob written for unauthenticated upload")
}

func TestListBuildsAccessPredicate(t *testing.T) {
	uc, repo, _, _ := newTestUseCase()

	_, err := uc.List(context.Background(), "u1", "A@X.com")
	require.NoError(t, err)

	clause, args := repo.lastPred.ToSQL()
	assert.Equal(t, "(owner_id = ? OR shared_with @> ?)", clause)
	assert.Equal(t, []interface{}{"u1", `["a@x.com"]`}, args)
}

func TestListComputesTotalSize(t *testing.T) {
	uc, repo, _, _ := newTestUseCase()
	repo.files["f1"] = &File{ID: "f1", Size: 100}
	repo.files["f2"] = &File{ID: "f2", Size: 250}

	result, err := uc.List(context.Background(), "u1", "a@x.com")
	require.NoError(t, err)

	assert.Equal(t, int64(350), result.TotalSize)
	assert.Len(t, result.Files, 2)
}

func TestListWithoutUserQueriesNothing(t *testing.T) {
	uc, repo, _, _ := newTestUseCase()

	_, err := uc.List(context.Background(), "", "a@x.com")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, repo.listCalls, "no store query without an authenticated user")
}

func TestRenameKeepsExtensionConsistent(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	file, err := uc.Upload(context.Background(), uploadReq("draft.pdf"))
	require.NoError(t, err)

	renamed, err := uc.Rename(context.Background(), file.ID, "u1", "report", "pdf")
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", renamed.Name)
	assert.Equal(t, "pdf", renamed.Extension)

	// Invariant: the name suffix always matches the extension field.
	_, ext := Classify(renamed.Name)
	assert.Equal(t, renamed.Extension, ext)
}

func TestRenameNotFound(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	_, err := uc.Rename(context.Background(), "missing", "u1", "report", "pdf")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestRenameWrongOwner(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	file, err := uc.Upload(context.Background(), uploadReq("draft.pdf"))
	require.NoError(t, err)

	_, err = uc.Rename(context.Background(), file.ID, "u2", "report", "pdf")
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestShareAndUnshare(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	file, err := uc.Upload(context.Background(), uploadReq("draft.pdf"))
	require.NoError(t, err)

	shared, err := uc.Share(context.Background(), file.ID, "u1", []string{"B@Y.com", "b@y.com", "c@z.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b@y.com", "c@z.com"}, shared.SharedWith)

	unshared, err := uc.Unshare(context.Background(), file.ID, "u1", []string{"b@y.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c@z.com"}, unshared.SharedWith)
}

func TestShareWrongOwner(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	file, err := uc.Upload(context.Background(), uploadReq("draft.pdf"))
	require.NoError(t, err)

	_, err = uc.Share(context.Background(), file.ID, "intruder", []string{"b@y.com"})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestDeleteRemovesRecordAndBlob(t *testing.T) {
	uc, repo, blobs, _ := newTestUseCase()

	file, err := uc.Upload(context.Background(), uploadReq("draft.pdf"))
	require.NoError(t, err)

	err = uc.Delete(context.Background(), file.ID, "u1")
	require.NoError(t, err)

	assert.Empty(t, repo.files)
	assert.Empty(t, blobs.objects)
}

func TestDeleteSurvivesBlobFailure(t *testing.T) {
	uc, repo, blobs, _ := newTestUseCase()

	file, err := uc.Upload(context.Background(), uploadReq("draft.pdf"))
	require.NoError(t, err)

	blobs.deleteFail = errors.New("connection reset")

	// The record is gone even though the blob delete failed; the orphan
	// is logged for out-of-band cleanup.
	err = uc.Delete(context.Background(), file.ID, "u1")
	require.NoError(t, err)
	assert.Empty(t, repo.files)
	assert.Len(t, blobs.objects, 1)
}

func TestGetDownloadURLAccess(t *testing.T) {
	uc, repo, _, _ := newTestUseCase()
	repo.files["f1"] = &File{
		ID:         "f1",
		OwnerID:    "u1",
		URL:        "https://store.example.com/files/blob-1",
		SharedWith: []string{"a@x.com"},
	}

	// Owner.
	url, err := uc.GetDownloadURL(context.Background(), "f1", "u1", "owner@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	// Shared-with email.
	url, err = uc.GetDownloadURL(context.Background(), "f1", "u2", "A@X.com")
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	// Neither.
	_, err = uc.GetDownloadURL(context.Background(), "f1", "u2", "nobody@x.com")
	assert.ErrorIs(t, err, ErrAccessDenied)
}
