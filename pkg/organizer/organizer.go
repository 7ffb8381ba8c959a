// Package organizer classifies a user's repositories by age and activity and
// runs the archive, delete, describe and tag passes that follow from it.
package organizer

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"supergithub/pkg/github"
)

// DeleteConfirmationPhrase must be returned verbatim by a confirmation prompt
// before the delete pass runs without Force
const DeleteConfirmationPhrase = "DELETE ALL"

// DefaultListLimit caps how many repositories are loaded for classification
const DefaultListLimit = 1000

// ActionKind names a pass
type ActionKind string

const (
	ActionArchive ActionKind = "archive"
	ActionDelete  ActionKind = "delete"
	ActionUpdate  ActionKind = "update"
	ActionTag     ActionKind = "tag"
)

// Action is one planned change. Executed is false in dry-run mode and for
// items that failed or were cancelled.
type Action struct {
	Kind     ActionKind `json:"kind" yaml:"kind"`
	Repo     string     `json:"repo" yaml:"repo"`
	Detail   string     `json:"detail,omitempty" yaml:"detail,omitempty"`
	Executed bool       `json:"executed" yaml:"executed"`
}

// Report summarizes a run
type Report struct {
	Total           int                   `json:"total" yaml:"total"`
	Counts          map[Category]int      `json:"counts" yaml:"counts"`
	Archived        int                   `json:"archived" yaml:"archived"`
	Deleted         int                   `json:"deleted" yaml:"deleted"`
	Updated         int                   `json:"updated" yaml:"updated"`
	Tagged          int                   `json:"tagged" yaml:"tagged"`
	Actions         []Action              `json:"actions" yaml:"actions"`
	Failures        []github.BatchFailure `json:"failures" yaml:"failures"`
	DryRun          bool                  `json:"dry_run" yaml:"dry_run"`
	DeleteCancelled bool                  `json:"delete_cancelled,omitempty" yaml:"delete_cancelled,omitempty"`
}

// ConfirmFunc asks the user to type phrase and reports whether they did
type ConfirmFunc func(phrase string) bool

// RunOptions selects the passes to run
type RunOptions struct {
	DryRun  bool
	Archive bool
	Delete  bool
	Update  bool
	Tag     bool

	// Force skips the delete confirmation
	Force   bool
	Confirm ConfirmFunc
}

// DefaultRunOptions simulates archive, update and tag passes; delete is opt-in
func DefaultRunOptions() RunOptions {
	return RunOptions{
		DryRun:  true,
		Archive: true,
		Delete:  false,
		Update:  true,
		Tag:     true,
	}
}

// Organizer drives classification and passes over the authenticated user's repositories
type Organizer struct {
	client    github.APIClient
	batch     *github.BatchOperator
	rules     Rules
	now       func() time.Time
	listLimit int
	log       *logger.Entry
}

// Option customizes an Organizer
type Option func(*Organizer)

// WithRules overrides the classification rules
func WithRules(rules Rules) Option {
	return func(o *Organizer) { o.rules = rules }
}

// WithClock injects the time source used for age computation
func WithClock(now func() time.Time) Option {
	return func(o *Organizer) { o.now = now }
}

// WithConcurrency sets how many repositories are processed at once per pass
func WithConcurrency(n int) Option {
	return func(o *Organizer) { o.batch = github.NewBatchOperator(o.client, n) }
}

// WithListLimit caps the number of repositories loaded
func WithListLimit(n int) Option {
	return func(o *Organizer) {
		if n > 0 {
			o.listLimit = n
		}
	}
}

// WithLogger sets the logger entry
func WithLogger(entry *logger.Entry) Option {
	return func(o *Organizer) { o.log = entry }
}

// New creates an Organizer
func New(client github.APIClient, opts ...Option) *Organizer {
	o := &Organizer{
		client:    client,
		batch:     github.NewBatchOperator(client, github.DefaultConcurrency),
		rules:     DefaultRules(),
		now:       time.Now,
		listLimit: DefaultListLimit,
		log:       logger.WithField("component", "organizer"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Rules returns the active classification rules
func (o *Organizer) Rules() Rules {
	return o.rules
}

// Load fetches the authenticated user's repositories, most recently updated first
func (o *Organizer) Load(ctx context.Context) ([]github.Repository, error) {
	o.log.Info("loading repositories")

	repos, err := o.client.ListRepositories(ctx, github.ListOptions{
		Filter: "owner",
		Sort:   "updated",
		Limit:  o.listLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load repositories: %w", err)
	}

	o.log.WithField("count", len(repos)).Info("repositories loaded")
	return repos, nil
}

// Categorize classifies repos using the organizer's clock
func (o *Organizer) Categorize(repos []github.Repository) Categories {
	return o.rules.Categorize(repos, o.now())
}

// Run loads, classifies and executes the enabled passes. In dry-run mode no
// mutating client operation is called; the planned actions are still reported.
func (o *Organizer) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	repos, err := o.Load(ctx)
	if err != nil {
		return nil, err
	}

	categories := o.Categorize(repos)
	report := &Report{
		Total:    len(repos),
		Counts:   categories.Counts(),
		Actions:  []Action{},
		Failures: []github.BatchFailure{},
		DryRun:   opts.DryRun,
	}

	// Repositories scheduled for archive or delete are not tagged
	touched := make(map[string]bool)

	if opts.Archive {
		o.archivePass(ctx, categories[CategoryArchive], opts, report, touched)
	}
	if opts.Delete {
		o.deletePass(ctx, categories[CategoryDelete], opts, report, touched)
	}
	if opts.Update {
		o.updatePass(ctx, categories[CategoryUpdate], opts, report)
	}
	if opts.Tag {
		o.tagPass(ctx, repos, opts, report, touched)
	}

	return report, ctx.Err()
}

func (o *Organizer) ref(repo github.Repository) github.RepoRef {
	owner := repo.Owner
	if owner == "" {
		owner = o.client.User()
	}
	return github.RepoRef{Owner: owner, Name: repo.Name}
}

func (o *Organizer) archivePass(ctx context.Context, repos []github.Repository, opts RunOptions, report *Report, touched map[string]bool) {
	if len(repos) == 0 {
		o.log.Info("no repositories to archive")
		return
	}

	now := o.now()
	refs := make([]github.RepoRef, 0, len(repos))
	start := len(report.Actions)
	for _, repo := range repos {
		ref := o.ref(repo)
		refs = append(refs, ref)
		touched[ref.String()] = true
		report.Actions = append(report.Actions, Action{
			Kind:   ActionArchive,
			Repo:   ref.String(),
			Detail: fmt.Sprintf("%d days without updates", AgeDays(repo, now)),
		})
	}

	o.log.WithFields(logger.Fields{"count": len(refs), "dry_run": opts.DryRun}).Info("archive pass")
	if opts.DryRun {
		return
	}

	result := o.batch.ArchiveMany(ctx, refs)
	report.Archived = len(result.Succeeded)
	o.collect(report, start, result)
}

func (o *Organizer) deletePass(ctx context.Context, repos []github.Repository, opts RunOptions, report *Report, touched map[string]bool) {
	if len(repos) == 0 {
		o.log.Info("no repositories to delete")
		return
	}

	refs := make([]github.RepoRef, 0, len(repos))
	start := len(report.Actions)
	for _, repo := range repos {
		ref := o.ref(repo)
		refs = append(refs, ref)
		touched[ref.String()] = true
		report.Actions = append(report.Actions, Action{
			Kind:   ActionDelete,
			Repo:   ref.String(),
			Detail: "temporary or test repository",
		})
	}

	o.log.WithFields(logger.Fields{"count": len(refs), "dry_run": opts.DryRun}).Info("delete pass")
	if opts.DryRun {
		return
	}

	if !opts.Force && (opts.Confirm == nil || !opts.Confirm(DeleteConfirmationPhrase)) {
		o.log.Warn("deletion cancelled")
		report.DeleteCancelled = true
		return
	}

	result, err := o.batch.DeleteMany(ctx, refs, true)
	if err != nil {
		// Not reachable with confirmed=true
		o.log.WithError(err).Error("delete pass refused")
		return
	}
	report.Deleted = len(result.Succeeded)
	o.collect(report, start, result)
}

func (o *Organizer) updatePass(ctx context.Context, repos []github.Repository, opts RunOptions, report *Report) {
	if len(repos) == 0 {
		o.log.Info("no repositories to update")
		return
	}

	refs := make([]github.RepoRef, 0, len(repos))
	descriptions := make(map[github.RepoRef]string, len(repos))
	start := len(report.Actions)
	for _, repo := range repos {
		ref := o.ref(repo)
		desc := o.rules.Description(repo.Name)
		refs = append(refs, ref)
		descriptions[ref] = desc
		report.Actions = append(report.Actions, Action{
			Kind:   ActionUpdate,
			Repo:   ref.String(),
			Detail: desc,
		})
	}

	o.log.WithFields(logger.Fields{"count": len(refs), "dry_run": opts.DryRun}).Info("update pass")
	if opts.DryRun {
		return
	}

	result := o.batch.Run(ctx, refs, func(ctx context.Context, ref github.RepoRef) error {
		desc := descriptions[ref]
		_, err := o.client.UpdateRepository(ctx, ref.Owner, ref.Name, github.RepositoryUpdate{Description: &desc})
		return err
	})
	report.Updated = len(result.Succeeded)
	o.collect(report, start, result)
}

func (o *Organizer) tagPass(ctx context.Context, repos []github.Repository, opts RunOptions, report *Report, touched map[string]bool) {
	var refs []github.RepoRef
	topics := make(map[github.RepoRef]string)
	start := len(report.Actions)

	for _, repo := range repos {
		ref := o.ref(repo)
		if repo.Archived || touched[ref.String()] {
			continue
		}

		lang := strings.ToLower(strings.TrimSpace(repo.Language))
		if lang == "" || slices.Contains(repo.Topics, lang) {
			continue
		}

		refs = append(refs, ref)
		topics[ref] = lang
		report.Actions = append(report.Actions, Action{
			Kind:   ActionTag,
			Repo:   ref.String(),
			Detail: lang,
		})
	}

	o.log.WithFields(logger.Fields{"count": len(refs), "dry_run": opts.DryRun}).Info("tag pass")
	if opts.DryRun || len(refs) == 0 {
		return
	}

	result := o.batch.Run(ctx, refs, func(ctx context.Context, ref github.RepoRef) error {
		_, err := o.client.AddTopics(ctx, ref.Owner, ref.Name, []string{topics[ref]})
		return err
	})
	report.Tagged = len(result.Succeeded)
	o.collect(report, start, result)
}

// collect marks executed actions from start onward and records failures.
// Actions and batch outcomes share input order.
func (o *Organizer) collect(report *Report, start int, result *github.BatchResult) {
	succeeded := make(map[string]int, len(result.Succeeded))
	for _, repo := range result.Succeeded {
		succeeded[repo]++
	}

	for i := start; i < len(report.Actions); i++ {
		repo := report.Actions[i].Repo
		if succeeded[repo] > 0 {
			succeeded[repo]--
			report.Actions[i].Executed = true
		}
	}

	report.Failures = append(report.Failures, result.Failed...)
}
