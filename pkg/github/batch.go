package github

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of in-flight items per batch
const DefaultConcurrency = 4

// ItemFunc applies a single-item operation within a batch
type ItemFunc func(ctx context.Context, ref RepoRef) error

// BatchOperator runs single-item client operations over lists of repositories.
// Items are independent: a failed item never stops the others, and outcomes are
// reported in input order.
type BatchOperator struct {
	client      APIClient
	concurrency int
	log         *logger.Entry
}

// NewBatchOperator creates a batch operator; a non-positive concurrency uses DefaultConcurrency
func NewBatchOperator(client APIClient, concurrency int) *BatchOperator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &BatchOperator{
		client:      client,
		concurrency: concurrency,
		log:         logger.WithField("component", "batch"),
	}
}

// ArchiveMany archives every repository in refs
func (b *BatchOperator) ArchiveMany(ctx context.Context, refs []RepoRef) *BatchResult {
	return b.Run(ctx, refs, func(ctx context.Context, ref RepoRef) error {
		_, err := b.client.ArchiveRepository(ctx, ref.Owner, ref.Name)
		return err
	})
}

// UnarchiveMany unarchives every repository in refs
func (b *BatchOperator) UnarchiveMany(ctx context.Context, refs []RepoRef) *BatchResult {
	return b.Run(ctx, refs, func(ctx context.Context, ref RepoRef) error {
		_, err := b.client.UnarchiveRepository(ctx, ref.Owner, ref.Name)
		return err
	})
}

// DeleteMany deletes every repository in refs. Without confirmation it fails
// before touching any item.
func (b *BatchOperator) DeleteMany(ctx context.Context, refs []RepoRef, confirmed bool) (*BatchResult, error) {
	if !confirmed {
		return nil, &ConfirmationError{Resource: pluralRepos(len(refs))}
	}

	return b.Run(ctx, refs, func(ctx context.Context, ref RepoRef) error {
		return b.client.DeleteRepository(ctx, ref.Owner, ref.Name, true)
	}), nil
}

// Run applies fn to every ref with bounded concurrency. Repeated refs are
// processed as many times as they appear. Items not started before ctx is done
// record the context error.
func (b *BatchOperator) Run(ctx context.Context, refs []RepoRef, fn ItemFunc) *BatchResult {
	outcomes := make([]error, len(refs))

	var g errgroup.Group
	g.SetLimit(b.concurrency)

	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			outcomes[i] = err
			continue
		}

		i, ref := i, ref
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = err
				return nil
			}
			outcomes[i] = fn(ctx, ref)
			return nil
		})
	}

	// Item errors are kept in outcomes; the group itself never fails
	_ = g.Wait()

	result := &BatchResult{
		Succeeded: []string{},
		Failed:    []BatchFailure{},
	}
	for i, ref := range refs {
		if err := outcomes[i]; err != nil {
			b.log.WithError(err).WithField("repo", ref.String()).Warn("batch item failed")
			result.Failed = append(result.Failed, BatchFailure{
				Repo:  ref.String(),
				Error: err.Error(),
				Err:   err,
			})
			continue
		}
		result.Succeeded = append(result.Succeeded, ref.String())
	}

	return result
}

func pluralRepos(n int) string {
	if n == 1 {
		return "1 repository"
	}
	return fmt.Sprintf("%d repositories", n)
}
