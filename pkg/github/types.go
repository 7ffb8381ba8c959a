package github

import (
	"fmt"
	"strings"
	"time"
)

// MaxTopics is the number of topics kept by SetTopics; extra entries are dropped
const MaxTopics = 20

// RepoRef identifies a repository by its (owner, name) pair
type RepoRef struct {
	Owner string `json:"owner" yaml:"owner"`
	Name  string `json:"name" yaml:"name"`
}

// String returns the owner/name form
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepoRef parses an owner/name string
func ParseRepoRef(s string) (RepoRef, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepoRef{}, fmt.Errorf("invalid repository reference %q: expected owner/name", s)
	}
	return RepoRef{Owner: owner, Name: name}, nil
}

// Repository represents a GitHub repository as returned by the API.
// It is fetched fresh on every read and never cached.
type Repository struct {
	ID            int64              `json:"id" yaml:"id"`
	Owner         string             `json:"owner" yaml:"owner"`
	Name          string             `json:"name" yaml:"name"`
	FullName      string             `json:"full_name" yaml:"full_name"`
	Description   string             `json:"description" yaml:"description"`
	Homepage      string             `json:"homepage" yaml:"homepage"`
	HTMLURL       string             `json:"html_url" yaml:"html_url"`
	Language      string             `json:"language" yaml:"language"`
	DefaultBranch string             `json:"default_branch" yaml:"default_branch"`
	Private       bool               `json:"private" yaml:"private"`
	Archived      bool               `json:"archived" yaml:"archived"`
	Fork          bool               `json:"fork" yaml:"fork"`
	Stars         int                `json:"stargazers_count" yaml:"stars"`
	Forks         int                `json:"forks_count" yaml:"forks"`
	Watchers      int                `json:"watchers_count" yaml:"watchers"`
	SizeKB        int                `json:"size" yaml:"size_kb"`
	Topics        []string           `json:"topics" yaml:"topics"`
	Features      RepositoryFeatures `json:"features" yaml:"features"`
	CreatedAt     time.Time          `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" yaml:"updated_at"`
	PushedAt      time.Time          `json:"pushed_at" yaml:"pushed_at"`
}

// Ref returns the repository's (owner, name) key
func (r Repository) Ref() RepoRef {
	return RepoRef{Owner: r.Owner, Name: r.Name}
}

// RepositoryFeatures represents repository feature settings
type RepositoryFeatures struct {
	Issues   bool `json:"has_issues" yaml:"issues"`
	Wiki     bool `json:"has_wiki" yaml:"wiki"`
	Projects bool `json:"has_projects" yaml:"projects"`
}

// RepositoryConfig holds the settings for creating a repository
type RepositoryConfig struct {
	Name          string             `yaml:"name"`
	Description   string             `yaml:"description,omitempty"`
	Homepage      string             `yaml:"homepage,omitempty"`
	Private       bool               `yaml:"private"`
	Features      RepositoryFeatures `yaml:"features"`
	AutoInit      bool               `yaml:"auto_init"`
	DefaultBranch string             `yaml:"default_branch,omitempty"`
}

// DefaultRepositoryConfig returns a config with all features enabled and main as branch
func DefaultRepositoryConfig(name string) RepositoryConfig {
	return RepositoryConfig{
		Name: name,
		Features: RepositoryFeatures{
			Issues:   true,
			Wiki:     true,
			Projects: true,
		},
		DefaultBranch: "main",
	}
}

// RepositoryUpdate is a sparse patch: only non-nil fields are sent upstream
type RepositoryUpdate struct {
	Name          *string `yaml:"name,omitempty"`
	Description   *string `yaml:"description,omitempty"`
	Homepage      *string `yaml:"homepage,omitempty"`
	Private       *bool   `yaml:"private,omitempty"`
	HasIssues     *bool   `yaml:"has_issues,omitempty"`
	HasProjects   *bool   `yaml:"has_projects,omitempty"`
	HasWiki       *bool   `yaml:"has_wiki,omitempty"`
	DefaultBranch *string `yaml:"default_branch,omitempty"`
	Archived      *bool   `yaml:"archived,omitempty"`
}

// IsEmpty reports whether no field is set
func (u RepositoryUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Homepage == nil &&
		u.Private == nil && u.HasIssues == nil && u.HasProjects == nil &&
		u.HasWiki == nil && u.DefaultBranch == nil && u.Archived == nil
}

// ListOptions controls repository listing.
//
// With an empty Owner the authenticated identity's repositories are listed and
// Filter values all, public and private are sent as visibility; anything else
// is sent as type. With an Owner, Filter is always sent as type.
type ListOptions struct {
	Owner  string
	Filter string
	Sort   string
	Limit  int
}

// BatchFailure records one item that failed within a batch
type BatchFailure struct {
	Repo  string `json:"repo" yaml:"repo"`
	Error string `json:"error" yaml:"error"`
	Err   error  `json:"-" yaml:"-"`
}

// BatchResult captures every outcome of a batch, in input order
type BatchResult struct {
	Succeeded []string       `json:"succeeded" yaml:"succeeded"`
	Failed    []BatchFailure `json:"failed" yaml:"failed"`
}

// HasFailures reports whether any item failed
func (r *BatchResult) HasFailures() bool {
	return len(r.Failed) > 0
}

// Total returns the number of processed items
func (r *BatchResult) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}
