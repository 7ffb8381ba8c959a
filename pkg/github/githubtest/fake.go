// Package githubtest provides an in-memory github.APIClient for tests.
package githubtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"supergithub/pkg/github"
)

// Client is an in-memory github.APIClient. Repositories are kept in insertion
// order. Errors can be injected per operation with Fail.
type Client struct {
	Login string

	mu     sync.Mutex
	order  []string
	repos  map[string]*github.Repository
	fail   map[string]error
	calls  []string
	nextID int64
}

var _ github.APIClient = (*Client)(nil)

// New creates an empty fake for the given login
func New(login string) *Client {
	return &Client{
		Login: login,
		repos: make(map[string]*github.Repository),
		fail:  make(map[string]error),
	}
}

// Add stores a repository; owner defaults to the fake's login
func (c *Client) Add(repos ...github.Repository) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, repo := range repos {
		if repo.Owner == "" {
			repo.Owner = c.Login
		}
		if repo.FullName == "" {
			repo.FullName = repo.Owner + "/" + repo.Name
		}
		key := repo.Ref().String()
		if _, exists := c.repos[key]; !exists {
			c.order = append(c.order, key)
		}
		stored := repo
		c.repos[key] = &stored
	}
	return c
}

// Fail makes op fail for owner/name. op is one of list, get, archive, unarchive,
// delete, update, create, get_topics, set_topics.
func (c *Client) Fail(op, fullName string, err error) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fail[op+" "+fullName] = err
	return c
}

// Calls returns the mutating and read calls seen so far, as "op owner/name"
func (c *Client) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.calls...)
}

// Repo returns a copy of the stored repository
func (c *Client) Repo(fullName string) (github.Repository, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	repo, ok := c.repos[fullName]
	if !ok {
		return github.Repository{}, false
	}
	return *repo, true
}

func (c *Client) record(op, fullName string) error {
	c.calls = append(c.calls, op+" "+fullName)
	return c.fail[op+" "+fullName]
}

func (c *Client) lookup(owner, name string) (*github.Repository, error) {
	repo, ok := c.repos[owner+"/"+name]
	if !ok {
		return nil, &github.GitHubError{
			Type:       github.ErrorTypeNotFound,
			Message:    "Repository not found",
			Resource:   fmt.Sprintf("repository %s/%s", owner, name),
			StatusCode: 404,
		}
	}
	return repo, nil
}

// User implements github.APIClient
func (c *Client) User() string {
	return c.Login
}

// ListRepositories implements github.APIClient. Filter and Sort are ignored.
func (c *Client) ListRepositories(_ context.Context, opts github.ListOptions) ([]github.Repository, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	owner := opts.Owner
	if owner == "" {
		owner = c.Login
	}
	if err := c.record("list", owner); err != nil {
		return nil, err
	}

	var out []github.Repository
	for _, key := range c.order {
		repo := c.repos[key]
		if repo.Owner != owner {
			continue
		}
		out = append(out, *repo)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

// GetRepository implements github.APIClient
func (c *Client) GetRepository(_ context.Context, owner, name string) (*github.Repository, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.record("get", owner+"/"+name); err != nil {
		return nil, err
	}
	repo, err := c.lookup(owner, name)
	if err != nil {
		return nil, err
	}
	out := *repo
	return &out, nil
}

// ArchiveRepository implements github.APIClient
func (c *Client) ArchiveRepository(ctx context.Context, owner, name string) (*github.Repository, error) {
	archived := true
	return c.patch("archive", owner, name, github.RepositoryUpdate{Archived: &archived})
}

// UnarchiveRepository implements github.APIClient
func (c *Client) UnarchiveRepository(ctx context.Context, owner, name string) (*github.Repository, error) {
	archived := false
	return c.patch("unarchive", owner, name, github.RepositoryUpdate{Archived: &archived})
}

// DeleteRepository implements github.APIClient
func (c *Client) DeleteRepository(_ context.Context, owner, name string, confirmed bool) error {
	if !confirmed {
		return &github.ConfirmationError{Resource: owner + "/" + name}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := owner + "/" + name
	if err := c.record("delete", key); err != nil {
		return err
	}
	if _, err := c.lookup(owner, name); err != nil {
		return err
	}

	delete(c.repos, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// UpdateRepository implements github.APIClient
func (c *Client) UpdateRepository(_ context.Context, owner, name string, update github.RepositoryUpdate) (*github.Repository, error) {
	return c.patch("update", owner, name, update)
}

func (c *Client) patch(op, owner, name string, update github.RepositoryUpdate) (*github.Repository, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.record(op, owner+"/"+name); err != nil {
		return nil, err
	}
	repo, err := c.lookup(owner, name)
	if err != nil {
		return nil, err
	}

	if update.Description != nil {
		repo.Description = *update.Description
	}
	if update.Homepage != nil {
		repo.Homepage = *update.Homepage
	}
	if update.Private != nil {
		repo.Private = *update.Private
	}
	if update.HasIssues != nil {
		repo.Features.Issues = *update.HasIssues
	}
	if update.HasProjects != nil {
		repo.Features.Projects = *update.HasProjects
	}
	if update.HasWiki != nil {
		repo.Features.Wiki = *update.HasWiki
	}
	if update.DefaultBranch != nil {
		repo.DefaultBranch = *update.DefaultBranch
	}
	if update.Archived != nil {
		repo.Archived = *update.Archived
	}
	if update.Name != nil && *update.Name != name {
		oldKey := owner + "/" + name
		repo.Name = *update.Name
		repo.FullName = owner + "/" + repo.Name
		delete(c.repos, oldKey)
		c.repos[repo.FullName] = repo
		for i, k := range c.order {
			if k == oldKey {
				c.order[i] = repo.FullName
			}
		}
	}

	out := *repo
	return &out, nil
}

// CreateRepository implements github.APIClient
func (c *Client) CreateRepository(_ context.Context, config github.RepositoryConfig) (*github.Repository, error) {
	c.mu.Lock()
	key := c.Login + "/" + config.Name
	if err := c.record("create", key); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if _, exists := c.repos[key]; exists {
		c.mu.Unlock()
		return nil, &github.GitHubError{
			Type:       github.ErrorTypeValidation,
			Message:    "Validation failed: name: name already exists on this account",
			Resource:   "repository " + config.Name,
			StatusCode: 422,
		}
	}
	c.nextID++
	id := c.nextID
	c.mu.Unlock()

	branch := config.DefaultBranch
	if branch == "" {
		branch = "main"
	}

	c.Add(github.Repository{
		ID:            id,
		Name:          config.Name,
		Description:   config.Description,
		Homepage:      config.Homepage,
		Private:       config.Private,
		Features:      config.Features,
		DefaultBranch: branch,
	})

	repo, _ := c.Repo(key)
	return &repo, nil
}

// GetTopics implements github.APIClient
func (c *Client) GetTopics(_ context.Context, owner, name string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.record("get_topics", owner+"/"+name); err != nil {
		return nil, err
	}
	repo, err := c.lookup(owner, name)
	if err != nil {
		return nil, err
	}
	return append([]string{}, repo.Topics...), nil
}

// SetTopics implements github.APIClient
func (c *Client) SetTopics(_ context.Context, owner, name string, topics []string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.record("set_topics", owner+"/"+name); err != nil {
		return nil, err
	}
	repo, err := c.lookup(owner, name)
	if err != nil {
		return nil, err
	}
	repo.Topics = github.NormalizeTopics(topics)
	return append([]string{}, repo.Topics...), nil
}

// AddTopics implements github.APIClient
func (c *Client) AddTopics(ctx context.Context, owner, name string, topics []string) ([]string, error) {
	current, err := c.GetTopics(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	return c.SetTopics(ctx, owner, name, github.MergeTopics(current, topics))
}

// CallsWithPrefix filters Calls by operation name
func (c *Client) CallsWithPrefix(op string) []string {
	var out []string
	for _, call := range c.Calls() {
		if strings.HasPrefix(call, op+" ") {
			out = append(out, call)
		}
	}
	return out
}
