package service

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/daffaabp/storage-management/internal/auth/middleware"
	"github.com/daffaabp/storage-management/internal/file/biz"
	apperrors "github.com/daffaabp/storage-management/internal/pkg/errors"
	"github.com/daffaabp/storage-management/internal/pkg/response"
)

// FileService exposes the file workflows over HTTP
type FileService struct {
	uc     *biz.FileUseCase
	logger *zap.Logger
}

// NewFileService creates a file service
func NewFileService(uc *biz.FileUseCase, logger *zap.Logger) *FileService {
	return &FileService{
		uc:     uc,
		logger: logger,
	}
}

// RegisterRoutes mounts file endpoints; all require authentication
func (s *FileService) RegisterRoutes(rg *gin.RouterGroup) {
	files := rg.Group("/files")
	{
		files.POST("", s.Upload)
		files.GET("", s.List)
		files.PATCH("/:id/name", s.Rename)
		files.POST("/:id/share", s.Share)
		files.DELETE("/:id/share", s.Unshare)
		files.DELETE("/:id", s.Delete)
		files.GET("/:id/url", s.DownloadURL)
	}
}

type FileResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Extension  string   `json:"extension"`
	Type       string   `json:"type"`
	URL        string   `json:"url"`
	Size       int64    `json:"size"`
	OwnerID    string   `json:"owner_id"`
	AccountID  string   `json:"account_id"`
	SharedWith []string `json:"shared_with"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
}

type ListResponse struct {
	Files     []*FileResponse `json:"files"`
	TotalSize int64           `json:"total_size"`
}

type BatchUploadResponse struct {
	Uploaded []*FileResponse `json:"uploaded"`
	Failed   []FailedUpload  `json:"failed"`
}

type FailedUpload struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

type RenameRequest struct {
	Name      string `json:"name" binding:"required"`
	Extension string `json:"extension"`
}

type ShareRequest struct {
	Emails []string `json:"emails" binding:"required"`
}

// Upload ingests one or more multipart files
func (s *FileService) Upload(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	accountID := c.GetString(middleware.ContextAccountID)

	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "multipart form required")
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}
	if len(headers) == 0 {
		response.BadRequest(c, "no files in request")
		return
	}

	result := &BatchUploadResponse{
		Uploaded: make([]*FileResponse, 0, len(headers)),
		Failed:   make([]FailedUpload, 0),
	}

	for _, header := range headers {
		data, err := readUpload(header)
		if err != nil {
			result.Failed = append(result.Failed, FailedUpload{
				FileName: header.Filename,
				Error:    "failed to read file content",
			})
			continue
		}

		file, err := s.uc.Upload(c.Request.Context(), &biz.UploadRequest{
			FileName:  header.Filename,
			Data:      data,
			OwnerID:   userID,
			AccountID: accountID,
		})
		if err != nil {
			s.logger.Error("upload failed",
				zap.Error(err),
				zap.String("file_name", header.Filename),
				zap.String("user_id", userID))
			result.Failed = append(result.Failed, FailedUpload{
				FileName: header.Filename,
				Error:    uploadErrorMessage(err),
			})
			continue
		}

		result.Uploaded = append(result.Uploaded, toFileResponse(file))
	}

	if len(result.Uploaded) == 0 && len(result.Failed) > 0 {
		c.JSON(apperrors.GetHTTPStatus(apperrors.ErrFileBlobWrite), response.Response{
			Code:    apperrors.ErrFileBlobWrite,
			Message: "all uploads failed",
			Data:    result,
		})
		return
	}

	response.Created(c, result)
}

// List returns the caller's accessible files
func (s *FileService) List(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	email := c.GetString(middleware.ContextEmail)

	result, err := s.uc.List(c.Request.Context(), userID, email)
	if err != nil {
		s.logger.Error("listing failed", zap.Error(err), zap.String("user_id", userID))
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrFileQuery))
		return
	}

	files := make([]*FileResponse, len(result.Files))
	for i, f := range result.Files {
		files[i] = toFileResponse(f)
	}

	response.Success(c, &ListResponse{
		Files:     files,
		TotalSize: result.TotalSize,
	})
}

// Rename updates a file's display name
func (s *FileService) Rename(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	file, err := s.uc.Rename(c.Request.Context(), c.Param("id"), userID, req.Name, req.Extension)
	if err != nil {
		s.handleFileError(c, err, "rename")
		return
	}

	response.Success(c, toFileResponse(file))
}

// Share grants file access to emails
func (s *FileService) Share(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	file, err := s.uc.Share(c.Request.Context(), c.Param("id"), userID, req.Emails)
	if err != nil {
		s.handleFileError(c, err, "share")
		return
	}

	response.Success(c, toFileResponse(file))
}

// Unshare revokes file access for emails
func (s *FileService) Unshare(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	file, err := s.uc.Unshare(c.Request.Context(), c.Param("id"), userID, req.Emails)
	if err != nil {
		s.handleFileError(c, err, "unshare")
		return
	}

	response.Success(c, toFileResponse(file))
}

// Delete removes a file and its stored content
func (s *FileService) Delete(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	if err := s.uc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		s.handleFileError(c, err, "delete")
		return
	}

	response.Success(c, nil)
}

// DownloadURL resolves the fetchable URL of an accessible file
func (s *FileService) DownloadURL(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	email := c.GetString(middleware.ContextEmail)

	url, err := s.uc.GetDownloadURL(c.Request.Context(), c.Param("id"), userID, email)
	if err != nil {
		s.handleFileError(c, err, "resolve url")
		return
	}

	response.Success(c, gin.H{"url": url})
}

func (s *FileService) handleFileError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, biz.ErrFileNotFound):
		response.HandleError(c, apperrors.New(apperrors.ErrFileNotFound))
	case errors.Is(err, biz.ErrAccessDenied):
		response.HandleError(c, apperrors.New(apperrors.ErrFileAccessDenied))
	default:
		s.logger.Error("file operation failed", zap.Error(err), zap.String("op", op))
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrInternalServer))
	}
}

func uploadErrorMessage(err error) string {
	var ingErr *biz.IngestionError
	if errors.As(err, &ingErr) {
		switch ingErr.Stage {
		case biz.StageBlobWrite:
			return apperrors.GetMessage(apperrors.ErrFileBlobWrite)
		case biz.StageMetadataWrite:
			return apperrors.GetMessage(apperrors.ErrFileMetadataWrite)
		}
	}
	if errors.Is(err, biz.ErrEmptyFile) {
		return "file content is empty"
	}
	return apperrors.GetMessage(apperrors.ErrInternalServer)
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func toFileResponse(file *biz.File) *FileResponse {
	return &FileResponse{
		ID:         file.ID,
		Name:       file.Name,
		Extension:  file.Extension,
		Type:       string(file.Type),
		URL:        file.URL,
		Size:       file.Size,
		OwnerID:    file.OwnerID,
		AccountID:  file.AccountID,
		SharedWith: file.SharedWith,
		CreatedAt:  file.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:  file.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
