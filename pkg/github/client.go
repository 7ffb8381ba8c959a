package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	// DefaultTimeout bounds every remote call
	DefaultTimeout = 10 * time.Second

	// DefaultMaxPages caps how many list pages are followed
	DefaultMaxPages = 10

	// DefaultListLimit is used when ListOptions.Limit is not positive
	DefaultListLimit = 30

	maxPerPage = 100
)

// Client implements the APIClient interface using the GitHub REST API
type Client struct {
	client   *github.Client
	user     string
	token    *TokenInfo
	maxPages int
	retry    *RetryConfig
	limiter  *RateLimiter
	log      *logger.Entry
}

type clientOptions struct {
	baseURL  string
	timeout  time.Duration
	maxPages int
	retry    *RetryConfig
	limiter  *RateLimiter
	log      *logger.Entry
}

// Option customizes a Client
type Option func(*clientOptions)

// WithBaseURL points the client at another API root (GitHub Enterprise, test servers)
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) { o.baseURL = baseURL }
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithMaxPages caps list pagination
func WithMaxPages(pages int) Option {
	return func(o *clientOptions) {
		if pages > 0 {
			o.maxPages = pages
		}
	}
}

// WithRetryConfig sets the retry policy used for read-only calls
func WithRetryConfig(cfg *RetryConfig) Option {
	return func(o *clientOptions) { o.retry = cfg }
}

// WithRateLimiter replaces the default rate limiter, e.g. to share one
// between clients
func WithRateLimiter(limiter *RateLimiter) Option {
	return func(o *clientOptions) { o.limiter = limiter }
}

// WithLogger sets the logger entry
func WithLogger(entry *logger.Entry) Option {
	return func(o *clientOptions) { o.log = entry }
}

// NewClient creates a GitHub API client for the given token and resolves the
// authenticated identity once. A rejected token yields an authentication error.
func NewClient(ctx context.Context, token string, opts ...Option) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, NewGitHubError(ErrorTypeAuth, "GitHub token cannot be empty", nil)
	}

	o := clientOptions{
		timeout:  DefaultTimeout,
		maxPages: DefaultMaxPages,
		retry:    DefaultRetryConfig(),
		log:      logger.WithField("component", "github"),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.limiter == nil {
		o.limiter = NewRateLimiter(nil)
	}

	oauthCtx := context.WithValue(ctx, oauth2.HTTPClient, rateLimitedHTTPClient(nil, o.limiter))
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(oauthCtx, ts)
	tc.Timeout = o.timeout

	gh := github.NewClient(tc)
	if o.baseURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(o.baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", o.baseURL, err)
		}
		gh.BaseURL = baseURL
	}

	c := &Client{
		client:   gh,
		maxPages: o.maxPages,
		retry:    o.retry,
		limiter:  o.limiter,
		log:      o.log,
	}

	info, err := c.authenticatedUser(ctx)
	if err != nil {
		return nil, err
	}
	c.user = info.User
	c.token = info
	c.log.WithFields(logger.Fields{
		"user":           info.User,
		"scopes":         info.Scopes,
		"rate_remaining": c.limiter.Stats().RemainingRequests,
	}).Debug("authenticated")

	return c, nil
}

// User returns the authenticated login
func (c *Client) User() string {
	return c.user
}

// TokenInfo returns the identity and scopes of the token
func (c *Client) TokenInfo() *TokenInfo {
	return c.token
}

// RateLimit returns what the client has learned about the API rate limit
func (c *Client) RateLimit() RateLimiterStats {
	return c.limiter.Stats()
}

func (c *Client) authenticatedUser(ctx context.Context) (*TokenInfo, error) {
	var (
		user *github.User
		resp *github.Response
	)

	err := WithRetry(func() error {
		var err error
		user, resp, err = c.client.Users.Get(ctx, "")
		if err != nil {
			return WrapGitHubError(err, "authenticated user")
		}
		return nil
	}, c.retry)
	if err != nil {
		return nil, err
	}

	if user.GetLogin() == "" {
		return nil, NewGitHubError(ErrorTypeAuth, "token did not resolve to a user", nil)
	}

	var header http.Header
	if resp != nil && resp.Response != nil {
		header = resp.Header
	}
	return newTokenInfo(user.GetLogin(), header), nil
}

// ListRepositories lists repositories of the authenticated identity or of opts.Owner.
// Pages are followed until opts.Limit records are collected, the remote has no
// more pages, or the page cap is reached.
func (c *Client) ListRepositories(ctx context.Context, opts ListOptions) ([]Repository, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	perPage := min(limit, maxPerPage)

	resource := "repositories of the authenticated user"
	if opts.Owner != "" {
		resource = fmt.Sprintf("repositories of user %s", opts.Owner)
	}

	var all []Repository

	err := WithRetry(func() error {
		all = nil // Reset on retry
		page := 1

		for pages := 0; pages < c.maxPages; pages++ {
			repos, resp, err := c.listPage(ctx, opts, github.ListOptions{Page: page, PerPage: perPage})
			if err != nil {
				return WrapGitHubError(err, resource)
			}

			for _, repo := range repos {
				all = append(all, *c.convertGitHubRepository(repo))
				if len(all) >= limit {
					return nil
				}
			}

			if resp.NextPage == 0 {
				return nil
			}
			page = resp.NextPage
		}
		return nil
	}, c.retry)

	return all, err
}

func (c *Client) listPage(ctx context.Context, opts ListOptions, page github.ListOptions) ([]*github.Repository, *github.Response, error) {
	c.log.WithFields(logger.Fields{"owner": opts.Owner, "page": page.Page}).Debug("listing repositories")

	if opts.Owner != "" {
		return c.client.Repositories.ListByUser(ctx, opts.Owner, &github.RepositoryListByUserOptions{
			Type:        opts.Filter,
			Sort:        opts.Sort,
			ListOptions: page,
		})
	}

	listOpts := &github.RepositoryListByAuthenticatedUserOptions{
		Sort:        opts.Sort,
		ListOptions: page,
	}
	switch opts.Filter {
	case "all", "public", "private":
		listOpts.Visibility = opts.Filter
	default:
		listOpts.Type = opts.Filter
	}
	return c.client.Repositories.ListByAuthenticatedUser(ctx, listOpts)
}

// GetRepository retrieves a repository by owner and name
func (c *Client) GetRepository(ctx context.Context, owner, name string) (*Repository, error) {
	var repo *github.Repository

	err := WithRetry(func() error {
		var err error
		repo, _, err = c.client.Repositories.Get(ctx, owner, name)
		if err != nil {
			return WrapGitHubError(err, repositoryResource(owner, name))
		}
		return nil
	}, c.retry)

	if err != nil {
		return nil, err
	}

	return c.convertGitHubRepository(repo), nil
}

// ArchiveRepository marks a repository read-only
func (c *Client) ArchiveRepository(ctx context.Context, owner, name string) (*Repository, error) {
	return c.edit(ctx, owner, name, &github.Repository{Archived: github.Bool(true)})
}

// UnarchiveRepository makes an archived repository writable again
func (c *Client) UnarchiveRepository(ctx context.Context, owner, name string) (*Repository, error) {
	return c.edit(ctx, owner, name, &github.Repository{Archived: github.Bool(false)})
}

// DeleteRepository permanently deletes a repository. It refuses to make any
// remote call unless confirmed is true.
func (c *Client) DeleteRepository(ctx context.Context, owner, name string, confirmed bool) error {
	if !confirmed {
		return &ConfirmationError{Resource: RepoRef{Owner: owner, Name: name}.String()}
	}

	c.log.WithField("repo", owner+"/"+name).Debug("deleting repository")
	_, err := c.client.Repositories.Delete(ctx, owner, name)
	if err != nil {
		return WrapGitHubError(err, repositoryResource(owner, name))
	}
	return nil
}

// UpdateRepository sends only the fields set in update
func (c *Client) UpdateRepository(ctx context.Context, owner, name string, update RepositoryUpdate) (*Repository, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	repo := &github.Repository{
		Name:          update.Name,
		Description:   update.Description,
		Homepage:      update.Homepage,
		Private:       update.Private,
		HasIssues:     update.HasIssues,
		HasProjects:   update.HasProjects,
		HasWiki:       update.HasWiki,
		DefaultBranch: update.DefaultBranch,
		Archived:      update.Archived,
	}

	return c.edit(ctx, owner, name, repo)
}

// UpdateVisibility switches a repository between private and public
func (c *Client) UpdateVisibility(ctx context.Context, owner, name string, private bool) (*Repository, error) {
	return c.UpdateRepository(ctx, owner, name, RepositoryUpdate{Private: github.Bool(private)})
}

func (c *Client) edit(ctx context.Context, owner, name string, patch *github.Repository) (*Repository, error) {
	c.log.WithField("repo", owner+"/"+name).Debug("editing repository")

	edited, _, err := c.client.Repositories.Edit(ctx, owner, name, patch)
	if err != nil {
		return nil, WrapGitHubError(err, repositoryResource(owner, name))
	}
	return c.convertGitHubRepository(edited), nil
}

// GetTopics returns the repository topics
func (c *Client) GetTopics(ctx context.Context, owner, name string) ([]string, error) {
	var topics []string

	err := WithRetry(func() error {
		var err error
		topics, _, err = c.client.Repositories.ListAllTopics(ctx, owner, name)
		if err != nil {
			return WrapGitHubError(err, fmt.Sprintf("topics for repository %s/%s", owner, name))
		}
		return nil
	}, c.retry)

	return topics, err
}

// SetTopics replaces all topics. At most MaxTopics entries are kept and every
// entry is lowercased before it is sent.
func (c *Client) SetTopics(ctx context.Context, owner, name string, topics []string) ([]string, error) {
	normalized := NormalizeTopics(topics)

	stored, _, err := c.client.Repositories.ReplaceAllTopics(ctx, owner, name, normalized)
	if err != nil {
		return nil, WrapGitHubError(err, fmt.Sprintf("topics for repository %s/%s", owner, name))
	}
	return stored, nil
}

// AddTopics merges topics into the current set. This is a read-modify-write:
// a concurrent writer between the read and the replace can lose an update.
func (c *Client) AddTopics(ctx context.Context, owner, name string, topics []string) ([]string, error) {
	current, err := c.GetTopics(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	return c.SetTopics(ctx, owner, name, MergeTopics(current, topics))
}

// CreateRepository creates a repository for the authenticated identity. When
// the requested default branch differs from the one GitHub assigned, a second
// call renames it; failure of that call is logged and does not fail the create.
func (c *Client) CreateRepository(ctx context.Context, config RepositoryConfig) (*Repository, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo := &github.Repository{
		Name:        github.String(config.Name),
		Private:     github.Bool(config.Private),
		HasIssues:   github.Bool(config.Features.Issues),
		HasWiki:     github.Bool(config.Features.Wiki),
		HasProjects: github.Bool(config.Features.Projects),
		AutoInit:    github.Bool(config.AutoInit),
	}
	if config.Description != "" {
		repo.Description = github.String(config.Description)
	}
	if config.Homepage != "" {
		repo.Homepage = github.String(config.Homepage)
	}

	created, _, err := c.client.Repositories.Create(ctx, "", repo)
	if err != nil {
		return nil, WrapGitHubError(err, fmt.Sprintf("repository %s", config.Name))
	}

	result := c.convertGitHubRepository(created)
	if result.Owner == "" {
		result.Owner = c.user
	}

	if config.DefaultBranch != "" && config.DefaultBranch != result.DefaultBranch {
		branch := config.DefaultBranch
		updated, err := c.UpdateRepository(ctx, result.Owner, result.Name, RepositoryUpdate{DefaultBranch: &branch})
		if err != nil {
			c.log.WithError(err).WithField("repo", result.FullName).
				Warnf("could not change default branch to %q", branch)
		} else {
			result = updated
		}
	}

	return result, nil
}

// NormalizeTopics keeps the first MaxTopics entries, trimmed and lowercased
func NormalizeTopics(topics []string) []string {
	if len(topics) > MaxTopics {
		topics = topics[:MaxTopics]
	}

	normalized := make([]string, 0, len(topics))
	for _, topic := range topics {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(topic)))
	}
	return normalized
}

// MergeTopics returns current followed by the extra topics not already present,
// compared case-insensitively
func MergeTopics(current, extra []string) []string {
	seen := make(map[string]bool, len(current)+len(extra))
	merged := make([]string, 0, len(current)+len(extra))

	for _, list := range [][]string{current, extra} {
		for _, topic := range list {
			key := strings.ToLower(strings.TrimSpace(topic))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, key)
		}
	}
	return merged
}

func repositoryResource(owner, name string) string {
	return fmt.Sprintf("repository %s/%s", owner, name)
}

// convertGitHubRepository converts a GitHub API repository to our internal type
func (c *Client) convertGitHubRepository(repo *github.Repository) *Repository {
	return &Repository{
		ID:            repo.GetID(),
		Owner:         repo.GetOwner().GetLogin(),
		Name:          repo.GetName(),
		FullName:      repo.GetFullName(),
		Description:   repo.GetDescription(),
		Homepage:      repo.GetHomepage(),
		HTMLURL:       repo.GetHTMLURL(),
		Language:      repo.GetLanguage(),
		DefaultBranch: repo.GetDefaultBranch(),
		Private:       repo.GetPrivate(),
		Archived:      repo.GetArchived(),
		Fork:          repo.GetFork(),
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		Watchers:      repo.GetWatchersCount(),
		SizeKB:        repo.GetSize(),
		Topics:        repo.Topics,
		Features: RepositoryFeatures{
			Issues:   repo.GetHasIssues(),
			Wiki:     repo.GetHasWiki(),
			Projects: repo.GetHasProjects(),
		},
		CreatedAt: repo.GetCreatedAt().Time,
		UpdatedAt: repo.GetUpdatedAt().Time,
		PushedAt:  repo.GetPushedAt().Time,
	}
}
