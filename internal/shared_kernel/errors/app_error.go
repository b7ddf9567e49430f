package apperrors

type Type string

const (
	TypeValidation      Type = "validation"
	TypeNotFound        Type = "not_found"
	TypeUnauthenticated Type = "unauthenticated"
	TypeUnprocessable   Type = "unprocessable"
	TypeIgnored         Type = "ignored"
	TypeUnavailable     Type = "unavailable"
	TypeInternal        Type = "internal"
)

type AppError struct {
	Type    Type           `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func NewInternal(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeInternal,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewValidation(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeValidation,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewNotFound(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeNotFound,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewUnauthenticated(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeUnauthenticated,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewUnprocessable(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeUnprocessable,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewIgnored(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeIgnored,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewUnavailable(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeUnavailable,
		Code:    code,
		Message: message,
		Details: details,
	}
}
