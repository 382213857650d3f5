package service

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/daffaabp/storage-management/internal/auth/middleware"
	apperrors "github.com/daffaabp/storage-management/internal/pkg/errors"
	"github.com/daffaabp/storage-management/internal/pkg/response"
	"github.com/daffaabp/storage-management/internal/user/biz"
)

// UserService exposes account and sign-in endpoints
type UserService struct {
	uc     *biz.UserUseCase
	logger *zap.Logger
}

// NewUserService creates a user service
func NewUserService(uc *biz.UserUseCase, logger *zap.Logger) *UserService {
	return &UserService{
		uc:     uc,
		logger: logger,
	}
}

// RegisterRoutes mounts public auth endpoints
func (s *UserService) RegisterRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", s.Register)
		authGroup.POST("/otp", s.RequestCode)
		authGroup.POST("/verify", s.VerifyCode)
	}
}

// RegisterProtectedRoutes mounts endpoints requiring a session
func (s *UserService) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", s.Me)
}

type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

type RequestCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyCodeRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	Code      string `json:"code" binding:"required"`
}

type UserResponse struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	AccountID string `json:"account_id"`
}

func (s *UserService) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	accountID, err := s.uc.CreateAccount(c.Request.Context(), req.FullName, req.Email)
	if err != nil {
		s.logger.Error("failed to create account", zap.Error(err))
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrAuthCodeDelivery))
		return
	}

	response.Created(c, gin.H{"account_id": accountID})
}

func (s *UserService) RequestCode(c *gin.Context) {
	var req RequestCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	accountID, err := s.uc.RequestCode(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, biz.ErrUserNotFound) {
			response.HandleError(c, apperrors.New(apperrors.ErrAuthUserNotFound))
			return
		}
		s.logger.Error("failed to issue sign-in code", zap.Error(err))
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrAuthCodeDelivery))
		return
	}

	response.Success(c, gin.H{"account_id": accountID})
}

func (s *UserService) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	token, user, err := s.uc.VerifyCode(c.Request.Context(), req.AccountID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, biz.ErrTooManyAttempts):
			response.HandleError(c, apperrors.New(apperrors.ErrAuthTooManyTries))
		case errors.Is(err, biz.ErrCodeExpired):
			response.HandleError(c, apperrors.New(apperrors.ErrAuthCodeExpired))
		case errors.Is(err, biz.ErrInvalidCode):
			response.HandleError(c, apperrors.New(apperrors.ErrAuthInvalidCode))
		default:
			s.logger.Error("failed to verify sign-in code", zap.Error(err))
			response.HandleError(c, apperrors.Wrap(err, apperrors.ErrInternalServer))
		}
		return
	}

	response.Success(c, gin.H{
		"token": token,
		"user":  toUserResponse(user),
	})
}

func (s *UserService) Me(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	user, err := s.uc.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, biz.ErrUserNotFound) {
			response.HandleError(c, apperrors.New(apperrors.ErrUserNotFound))
			return
		}
		s.logger.Error("failed to resolve current user", zap.Error(err))
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrInternalServer))
		return
	}

	response.Success(c, toUserResponse(user))
}

func toUserResponse(user *biz.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
		AccountID: user.AccountID,
	}
}
