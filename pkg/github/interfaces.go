package github

import "context"

// APIClient defines the interface for GitHub repository operations
type APIClient interface {
	// User returns the authenticated identity resolved at construction
	User() string

	// Read operations
	ListRepositories(ctx context.Context, opts ListOptions) ([]Repository, error)
	GetRepository(ctx context.Context, owner, name string) (*Repository, error)

	// State changes
	ArchiveRepository(ctx context.Context, owner, name string) (*Repository, error)
	UnarchiveRepository(ctx context.Context, owner, name string) (*Repository, error)
	DeleteRepository(ctx context.Context, owner, name string, confirmed bool) error
	UpdateRepository(ctx context.Context, owner, name string, update RepositoryUpdate) (*Repository, error)
	CreateRepository(ctx context.Context, config RepositoryConfig) (*Repository, error)

	// Topic operations
	GetTopics(ctx context.Context, owner, name string) ([]string, error)
	SetTopics(ctx context.Context, owner, name string, topics []string) ([]string, error)
	AddTopics(ctx context.Context, owner, name string, topics []string) ([]string, error)
}

var _ APIClient = (*Client)(nil)
