package checker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"safeRestServer/urlcheck"
)

const DefaultMaxURLLength = 2048

const (
	CodeURLRequired = "url_required"
	CodeURLTooLong  = "url_too_long"
	CodeInvalidURL  = "invalid_url"
)

// ValidationError rejects a request before any lookup runs. Code is
// machine readable.
type ValidationError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Code + ": " + e.Message
}

// Validate checks a caller supplied URL and returns it trimmed. A nil
// pointer means the field was absent.
func Validate(raw *string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxURLLength
	}
	if raw == nil || *raw == "" {
		return "", &ValidationError{Code: CodeURLRequired, Message: "URL parameter is required and must be a string"}
	}
	if utf8.RuneCountInString(*raw) > maxLen {
		return "", &ValidationError{Code: CodeURLTooLong, Message: fmt.Sprintf("URL must be less than %d characters", maxLen)}
	}
	url := strings.TrimSpace(*raw)
	if !urlcheck.IsValidURL(url) {
		return "", &ValidationError{Code: CodeInvalidURL, Message: "Invalid URL format"}
	}
	return url, nil
}
