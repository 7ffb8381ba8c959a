// Package github provides repository management on top of the GitHub REST API.
//
// The package includes:
// - APIClient interface and its REST implementation, Client
// - Sparse updates through RepositoryUpdate, where nil fields are not sent
// - A confirmation gate on destructive calls (ErrConfirmationRequired)
// - BatchOperator for bounded-concurrency archive, unarchive and delete runs
// - Structured errors (GitHubError) carrying the HTTP status and raw body
package github
