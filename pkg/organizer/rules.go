package organizer

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"supergithub/pkg/github"
)

// Category is the bucket a repository is classified into
type Category string

const (
	CategoryDelete  Category = "to_delete"
	CategoryArchive Category = "to_archive"
	CategoryUpdate  Category = "to_update"
	CategoryActive  Category = "active"
)

// AllCategories lists the buckets in priority order
var AllCategories = []Category{CategoryDelete, CategoryArchive, CategoryUpdate, CategoryActive}

// Rules holds the classification thresholds
type Rules struct {
	DeletePrefixes    []string
	DeleteAfterDays   int
	ArchiveAfterDays  int
	DescriptionPrefix string
}

// DefaultRules returns the stock thresholds: temporary repos idle for three
// months are deleted, unstarred unforked repos idle for a year are archived
func DefaultRules() Rules {
	return Rules{
		DeletePrefixes:    []string{"temp-", "test-", "demo-", "experiment-"},
		DeleteAfterDays:   90,
		ArchiveAfterDays:  365,
		DescriptionPrefix: "Projeto: ",
	}
}

// AgeDays returns the whole days between the repository's last update and now.
// The result depends on now, so repeated classification at different times can differ.
func AgeDays(repo github.Repository, now time.Time) int {
	return int(now.UTC().Sub(repo.UpdatedAt.UTC()) / (24 * time.Hour))
}

// ShouldDelete reports whether repo has a temporary name prefix and has been idle too long
func (r Rules) ShouldDelete(repo github.Repository, now time.Time) bool {
	name := strings.ToLower(repo.Name)
	for _, prefix := range r.DeletePrefixes {
		if strings.HasPrefix(name, strings.ToLower(prefix)) {
			return AgeDays(repo, now) > r.DeleteAfterDays
		}
	}
	return false
}

// ShouldArchive reports whether repo is unarchived, old, and has no stars or forks
func (r Rules) ShouldArchive(repo github.Repository, now time.Time) bool {
	if repo.Archived {
		return false
	}
	return AgeDays(repo, now) > r.ArchiveAfterDays && repo.Stars == 0 && repo.Forks == 0
}

// Classify returns the first matching category
func (r Rules) Classify(repo github.Repository, now time.Time) Category {
	switch {
	case r.ShouldDelete(repo, now):
		return CategoryDelete
	case r.ShouldArchive(repo, now):
		return CategoryArchive
	case strings.TrimSpace(repo.Description) == "":
		return CategoryUpdate
	default:
		return CategoryActive
	}
}

// Categories partitions repositories into disjoint buckets, each in listing order
type Categories map[Category][]github.Repository

// Categorize classifies every repository
func (r Rules) Categorize(repos []github.Repository, now time.Time) Categories {
	categories := make(Categories, len(AllCategories))
	for _, c := range AllCategories {
		categories[c] = []github.Repository{}
	}
	for _, repo := range repos {
		c := r.Classify(repo, now)
		categories[c] = append(categories[c], repo)
	}
	return categories
}

// Counts returns the size of each bucket
func (c Categories) Counts() map[Category]int {
	counts := make(map[Category]int, len(AllCategories))
	for _, category := range AllCategories {
		counts[category] = len(c[category])
	}
	return counts
}

// Description builds the generated description for a repository name,
// e.g. "my-cool_tool" becomes "Projeto: My Cool Tool"
func (r Rules) Description(name string) string {
	spaced := strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return r.DescriptionPrefix + cases.Title(language.Und).String(spaced)
}
