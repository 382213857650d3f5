package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrUnauthorized    = 1003
	ErrForbidden       = 1004
	ErrConflict        = 1005
	ErrTooManyRequests = 1006
	ErrBadRequest      = 1007
	ErrServiceUnavail  = 1008

	// Auth errors (2000-2999)
	ErrAuthInvalidToken  = 2000
	ErrAuthTokenExpired  = 2001
	ErrAuthInvalidCode   = 2002
	ErrAuthCodeExpired   = 2003
	ErrAuthTooManyTries  = 2004
	ErrAuthInvalidEmail  = 2005
	ErrAuthCodeDelivery  = 2006
	ErrAuthUserNotFound  = 2007

	// User errors (3000-3999)
	ErrUserNotFound     = 3000
	ErrUserExists       = 3001
	ErrUserInvalidInput = 3002

	// File errors (4000-4999)
	ErrFileNotFound      = 4000
	ErrFileInvalidInput  = 4001
	ErrFileAccessDenied  = 4002
	ErrFileBlobWrite     = 4003
	ErrFileBlobDelete    = 4004
	ErrFileMetadataWrite = 4005
	ErrFileQuery         = 4006
	ErrFileTooLarge      = 4007
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:    {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:       {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrConflict:        {ErrConflict, http.StatusConflict, "Resource conflict"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	// Auth errors
	ErrAuthInvalidToken: {ErrAuthInvalidToken, http.StatusUnauthorized, "Invalid or expired token"},
	ErrAuthTokenExpired: {ErrAuthTokenExpired, http.StatusUnauthorized, "Token expired"},
	ErrAuthInvalidCode:  {ErrAuthInvalidCode, http.StatusUnauthorized, "Invalid verification code"},
	ErrAuthCodeExpired:  {ErrAuthCodeExpired, http.StatusUnauthorized, "Verification code expired"},
	ErrAuthTooManyTries: {ErrAuthTooManyTries, http.StatusTooManyRequests, "Too many verification attempts"},
	ErrAuthInvalidEmail: {ErrAuthInvalidEmail, http.StatusBadRequest, "Invalid email format"},
	ErrAuthCodeDelivery: {ErrAuthCodeDelivery, http.StatusInternalServerError, "Failed to deliver verification code"},
	ErrAuthUserNotFound: {ErrAuthUserNotFound, http.StatusNotFound, "User not found"},

	// User errors
	ErrUserNotFound:     {ErrUserNotFound, http.StatusNotFound, "User not found"},
	ErrUserExists:       {ErrUserExists, http.StatusConflict, "User already exists"},
	ErrUserInvalidInput: {ErrUserInvalidInput, http.StatusBadRequest, "Invalid user input"},

	// File errors
	ErrFileNotFound:      {ErrFileNotFound, http.StatusNotFound, "File not found"},
	ErrFileInvalidInput:  {ErrFileInvalidInput, http.StatusBadRequest, "Invalid file input"},
	ErrFileAccessDenied:  {ErrFileAccessDenied, http.StatusForbidden, "Access to file denied"},
	ErrFileBlobWrite:     {ErrFileBlobWrite, http.StatusInternalServerError, "Failed to store file content"},
	ErrFileBlobDelete:    {ErrFileBlobDelete, http.StatusInternalServerError, "Failed to delete file content"},
	ErrFileMetadataWrite: {ErrFileMetadataWrite, http.StatusInternalServerError, "Failed to store file metadata"},
	ErrFileQuery:         {ErrFileQuery, http.StatusInternalServerError, "Failed to query files"},
	ErrFileTooLarge:      {ErrFileTooLarge, http.StatusBadRequest, "File size exceeds limit"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsSuccess checks if the code represents success
func IsSuccess(code int) bool {
	return code == Success
}

// FormatError formats an error message with optional details
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
