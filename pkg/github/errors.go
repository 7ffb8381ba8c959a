package github

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
)

// ErrorType represents different categories of GitHub API errors
type ErrorType string

const (
	ErrorTypeAuth       ErrorType = "authentication"
	ErrorTypePermission ErrorType = "permission"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// ErrConfirmationRequired is returned by destructive operations invoked without
// explicit confirmation. No remote call is made when it is returned.
var ErrConfirmationRequired = errors.New("confirmation required")

// ConfirmationError reports which resource a destructive call was refused for.
type ConfirmationError struct {
	Resource string
}

// Error implements the error interface
func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("%s: deleting %s is irreversible, pass explicit confirmation to proceed", ErrConfirmationRequired, e.Resource)
}

// Unwrap lets errors.Is match ErrConfirmationRequired
func (e *ConfirmationError) Unwrap() error {
	return ErrConfirmationRequired
}

// GitHubError represents a structured error from GitHub operations
type GitHubError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Cause      error     `json:"-"`
	Resource   string    `json:"resource,omitempty"`
	Field      string    `json:"field,omitempty"`
	Code       string    `json:"code,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
	Body       string    `json:"body,omitempty"`
	Retryable  bool      `json:"retryable"`
}

// Error implements the error interface
func (e *GitHubError) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Resource != "" {
		return fmt.Sprintf("%s error for %s: %s", e.Type, e.Resource, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Type, msg)
}

// Unwrap returns the underlying error
func (e *GitHubError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether the error is retryable
func (e *GitHubError) IsRetryable() bool {
	return e.Retryable
}

// NewGitHubError creates a new GitHubError with the specified type and message
func NewGitHubError(errorType ErrorType, message string, cause error) *GitHubError {
	return &GitHubError{
		Type:      errorType,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryableErrorType(errorType),
	}
}

// IsNotFound reports whether err is a not_found GitHubError
func IsNotFound(err error) bool {
	return hasErrorType(err, ErrorTypeNotFound)
}

// IsAuthError reports whether err is an authentication GitHubError
func IsAuthError(err error) bool {
	return hasErrorType(err, ErrorTypeAuth)
}

func hasErrorType(err error, t ErrorType) bool {
	var ghErr *GitHubError
	return errors.As(err, &ghErr) && ghErr.Type == t
}

// WrapGitHubError wraps a GitHub API error into our structured error type
func WrapGitHubError(err error, resource string) *GitHubError {
	if err == nil {
		return nil
	}

	var ghErr *GitHubError
	if errors.As(err, &ghErr) {
		if ghErr.Resource == "" {
			ghErr.Resource = resource
		}
		return ghErr
	}

	// RateLimitError embeds the response too, so it is checked first
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &GitHubError{
			Type:       ErrorTypeRateLimit,
			Message:    fmt.Sprintf("Rate limit exceeded. Reset at %v", rateErr.Rate.Reset.Time),
			Cause:      err,
			Resource:   resource,
			StatusCode: statusOf(rateErr.Response),
			Retryable:  true,
		}
	}

	var apiErr *github.ErrorResponse
	if errors.As(err, &apiErr) && apiErr.Response != nil {
		return parseGitHubAPIError(apiErr, resource)
	}

	if isNetworkError(err) {
		return &GitHubError{
			Type:      ErrorTypeNetwork,
			Message:   "Network error occurred. Please check your connection and try again",
			Cause:     err,
			Resource:  resource,
			Retryable: true,
		}
	}

	return &GitHubError{
		Type:      ErrorTypeUnknown,
		Message:   err.Error(),
		Cause:     err,
		Resource:  resource,
		Retryable: false,
	}
}

// parseGitHubAPIError parses GitHub API error responses into structured errors
func parseGitHubAPIError(ghErr *github.ErrorResponse, resource string) *GitHubError {
	baseErr := &GitHubError{
		Resource:   resource,
		Cause:      ghErr,
		StatusCode: ghErr.Response.StatusCode,
		Body:       responseBody(ghErr),
	}

	switch ghErr.Response.StatusCode {
	case http.StatusUnauthorized:
		baseErr.Type = ErrorTypeAuth
		baseErr.Message = "Authentication failed. Please check your GitHub token"

		if strings.Contains(strings.ToLower(ghErr.Message), "credentials") {
			baseErr.Message = "Invalid or expired GitHub token. Please update your GH_TOKEN environment variable or configuration"
		}

	case http.StatusForbidden:
		if strings.Contains(strings.ToLower(ghErr.Message), "rate limit") {
			baseErr.Type = ErrorTypeRateLimit
			baseErr.Message = "GitHub API rate limit exceeded. Please wait before retrying"
			baseErr.Retryable = true
		} else {
			baseErr.Type = ErrorTypePermission
			baseErr.Message = "Insufficient permissions. Your token may not have the required scopes"

			if strings.Contains(resource, "repository") {
				baseErr.Message += ". Required scopes: repo (for private repos) or public_repo (for public repos); delete_repo for deletion"
			}
		}

	case http.StatusNotFound:
		baseErr.Type = ErrorTypeNotFound

		switch {
		case strings.Contains(resource, "repository"):
			baseErr.Message = "Repository not found. Check the repository name and your access permissions"
		case strings.Contains(resource, "user"):
			baseErr.Message = "User not found. Please verify the username is correct"
		default:
			baseErr.Message = "Resource not found"
		}

	case http.StatusConflict:
		baseErr.Type = ErrorTypeConflict
		baseErr.Message = "Resource conflict occurred"

		if ghErr.Message != "" {
			baseErr.Message = fmt.Sprintf("Resource conflict occurred: %s", ghErr.Message)
		}

	case http.StatusUnprocessableEntity:
		baseErr.Type = ErrorTypeValidation
		baseErr.Message = "Validation failed"

		if len(ghErr.Errors) > 0 {
			var validationErrors []string
			for _, err := range ghErr.Errors {
				if err.Field != "" {
					validationErrors = append(validationErrors, fmt.Sprintf("%s: %s", err.Field, err.Message))
					if baseErr.Field == "" {
						baseErr.Field = err.Field
						baseErr.Code = err.Code
					}
				} else {
					validationErrors = append(validationErrors, err.Message)
				}
			}
			baseErr.Message = fmt.Sprintf("Validation failed: %s", strings.Join(validationErrors, "; "))
		}

	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		baseErr.Type = ErrorTypeNetwork
		baseErr.Message = "GitHub API is temporarily unavailable. Please try again later"
		baseErr.Retryable = true

	default:
		baseErr.Type = ErrorTypeUnknown
		baseErr.Message = ghErr.Message
		baseErr.Retryable = ghErr.Response.StatusCode >= 500
	}

	return baseErr
}

// responseBody returns the raw error body; go-github re-populates it after decoding
func responseBody(ghErr *github.ErrorResponse) string {
	if ghErr.Response == nil || ghErr.Response.Body == nil {
		return ghErr.Message
	}
	data, err := io.ReadAll(ghErr.Response.Body)
	if err != nil || len(data) == 0 {
		return ghErr.Message
	}
	return strings.TrimSpace(string(data))
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

// isNetworkError checks if an error is a network-related error
func isNetworkError(err error) bool {
	errStr := strings.ToLower(err.Error())
	networkKeywords := []string{
		"connection refused",
		"connection reset",
		"connection timeout",
		"network is unreachable",
		"no such host",
		"timeout",
		"dial tcp",
		"i/o timeout",
	}

	for _, keyword := range networkKeywords {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

// isRetryableErrorType determines if an error type is generally retryable
func isRetryableErrorType(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeRateLimit, ErrorTypeNetwork:
		return true
	default:
		return false
	}
}

// RetryConfig defines configuration for retry logic.
// Only read-only calls go through WithRetry; mutations run exactly once.
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns a configuration that performs no retries
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:    0,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryableOperation represents an operation that can be retried
type RetryableOperation func() error

// WithRetry executes an operation, retrying transient GitHubErrors with exponential backoff
func WithRetry(operation RetryableOperation, config *RetryConfig) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(delay)

			delay = time.Duration(float64(delay) * config.BackoffFactor)
			if delay > config.MaxDelay {
				delay = config.MaxDelay
			}
		}

		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		var ghErr *GitHubError
		if !errors.As(err, &ghErr) || !ghErr.IsRetryable() {
			return err
		}
	}

	if config.MaxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("operation failed after %d retries: %w", config.MaxRetries, lastErr)
}
