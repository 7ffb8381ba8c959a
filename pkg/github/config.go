package github

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 350
	maxTopicLength       = 50
)

var (
	validName  = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	validTopic = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
)

// ValidationError represents a local validation failure of repository settings
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("validation error for field '%s' (value: %s): %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	messages := make([]string, 0, len(e))
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed with %d errors: %s", len(e), strings.Join(messages, "; "))
}

// Add adds a validation error to the collection
func (e *ValidationErrors) Add(field, value, message string) {
	*e = append(*e, ValidationError{Field: field, Value: value, Message: message})
}

// HasErrors returns true if there are validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// asGitHubError wraps collected errors as a validation GitHubError
func (e ValidationErrors) asGitHubError() error {
	if !e.HasErrors() {
		return nil
	}
	return &GitHubError{
		Type:    ErrorTypeValidation,
		Message: e.Error(),
		Cause:   e,
	}
}

// ValidateName checks a repository name against GitHub's naming rules
func ValidateName(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	return nil
}

func checkName(name string) *ValidationError {
	switch {
	case name == "":
		return &ValidationError{Field: "name", Message: "repository name is required"}
	case len(name) > maxNameLength:
		return &ValidationError{Field: "name", Value: name, Message: "repository name must be 100 characters or less"}
	case !validName.MatchString(name):
		return &ValidationError{Field: "name", Value: name,
			Message: "repository name can only contain alphanumeric characters, periods, hyphens, and underscores"}
	case strings.HasPrefix(name, ".") || strings.HasSuffix(name, "."):
		return &ValidationError{Field: "name", Value: name, Message: "repository name cannot start or end with a period"}
	}
	return nil
}

// ValidateTopics checks already normalized topics
func ValidateTopics(topics []string) error {
	var errs ValidationErrors
	if len(topics) > MaxTopics {
		errs.Add("topics", "", fmt.Sprintf("a repository can have at most %d topics", MaxTopics))
	}
	for i, topic := range topics {
		switch {
		case len(topic) > maxTopicLength:
			errs.Add("topics", topic, fmt.Sprintf("topic %d must be 50 characters or less", i+1))
		case !validTopic.MatchString(topic):
			errs.Add("topics", topic, fmt.Sprintf("topic %d can only contain lowercase letters, numbers, and hyphens", i+1))
		}
	}
	return errs.asGitHubError()
}

// Validate checks the settings before a create call
func (c RepositoryConfig) Validate() error {
	var errs ValidationErrors

	if err := checkName(c.Name); err != nil {
		errs = append(errs, *err)
	}
	if utf8.RuneCountInString(c.Description) > maxDescriptionLength {
		errs.Add("description", "", "repository description must be 350 characters or less")
	}
	if strings.ContainsAny(c.DefaultBranch, " ~^:?*[\\") {
		errs.Add("default_branch", c.DefaultBranch, "not a valid branch name")
	}

	return errs.asGitHubError()
}

// Validate checks the fields an update sets
func (u RepositoryUpdate) Validate() error {
	var errs ValidationErrors

	if u.Name != nil {
		if err := checkName(*u.Name); err != nil {
			errs = append(errs, *err)
		}
	}
	if u.Description != nil && utf8.RuneCountInString(*u.Description) > maxDescriptionLength {
		errs.Add("description", "", "repository description must be 350 characters or less")
	}
	if u.DefaultBranch != nil {
		branch := *u.DefaultBranch
		if branch == "" || strings.ContainsAny(branch, " ~^:?*[\\") {
			errs.Add("default_branch", branch, "not a valid branch name")
		}
	}

	return errs.asGitHubError()
}
