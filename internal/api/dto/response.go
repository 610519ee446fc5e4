package dto

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/zonetune/zonetune/internal/pkg/validator"
)

const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"
	ErrCodeBadGateway     = "BAD_GATEWAY"
)

type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Error     *ErrorData  `json:"error,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type ErrorData struct {
	Code    string                      `json:"code"`
	Message string                      `json:"message"`
	Details []validator.ValidationError `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := Response{
		Success:   status >= 200 && status < 300,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}

	_ = json.NewEncoder(w).Encode(response)
}

func ErrorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := Response{
		Success:   false,
		Timestamp: time.Now().Unix(),
		Error: &ErrorData{
			Code:    statusToErrorCode(status),
			Message: message,
		},
	}

	_ = json.NewEncoder(w).Encode(response)
}

func ValidationErrorResponse(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	response := Response{
		Success:   false,
		Timestamp: time.Now().Unix(),
		Error: &ErrorData{
			Code:    ErrCodeValidation,
			Message: "validation failed",
			Details: validator.Errors(err),
		},
	}

	_ = json.NewEncoder(w).Encode(response)
}

func statusToErrorCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusBadRequest:
		return ErrCodeBadRequest
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusBadGateway:
		return ErrCodeBadGateway
	default:
		return ErrCodeInternalServer
	}
}
