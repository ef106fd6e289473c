package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/go-github/v71/github"
	"golang.org/x/oauth2"
)

// ErrOriginFetch wraps any GitHub communication failure. The fetcher never
// retries; a failed fetch fails the active review.
var ErrOriginFetch = errors.New("origin fetch failed")

const (
	// per-file change budget; larger files add noise and cost
	maxFileChanges = 1000
	// cap on the concatenated diff handed to the analyzer
	maxDiffChars = 50000

	truncationMarker = "\n\n... (diff truncated due to size)"
)

// extensions with no reviewable text content
var skippedExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".ico", ".pdf", ".zip", ".tar", ".gz",
}

// PullRequestFile is one changed file that survived filtering.
type PullRequestFile struct {
	Path      string `json:"path"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch,omitempty"`
}

// PullRequestDiff is the normalized change-set of a pull request.
type PullRequestDiff struct {
	Content string
	Files   []PullRequestFile
}

// PullRequestDetails is the pull request metadata needed by the analyzer.
type PullRequestDetails struct {
	Title   string
	Body    string
	State   string
	HeadRef string
	HeadSHA string
	BaseRef string
	BaseSHA string
}

// GitHubService fetches pull request change data from the GitHub API.
type GitHubService struct {
	client *github.Client
}

// NewGitHubService creates the service. Without a token requests are
// unauthenticated and rate limited.
func NewGitHubService(token string) *GitHubService {
	if token == "" {
		log.Println("GITHUB_TOKEN is not set, using unauthenticated client")
		return &GitHubService{client: github.NewClient(nil)}
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	return &GitHubService{client: github.NewClient(tc)}
}

// FetchDiff retrieves the changed files of a pull request, filters out
// unreviewable ones and concatenates the remaining patches into one blob.
// Oversized blobs are truncated, never rejected.
func (s *GitHubService) FetchDiff(ctx context.Context, owner, repo string, number int) (*PullRequestDiff, error) {
	var all []*github.CommitFile

	opts := &github.ListOptions{PerPage: 100}
	for {
		files, resp, err := s.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: list files for %s/%s#%d: %v", ErrOriginFetch, owner, repo, number, err)
		}
		all = append(all, files...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	var kept []PullRequestFile
	var combined strings.Builder
	for _, f := range all {
		if !isReviewableFile(f) {
			continue
		}

		pf := PullRequestFile{
			Path:      f.GetFilename(),
			Status:    f.GetStatus(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
			Patch:     f.GetPatch(),
		}
		kept = append(kept, pf)

		if pf.Patch != "" {
			fmt.Fprintf(&combined, "\n--- a/%s\n+++ b/%s\n", pf.Path, pf.Path)
			combined.WriteString(pf.Patch)
			combined.WriteString("\n")
		}
	}

	content := combined.String()
	if len(content) > maxDiffChars {
		log.Printf("truncating large diff for %s/%s#%d (%d chars)", owner, repo, number, len(content))
		content = content[:maxDiffChars] + truncationMarker
	}

	return &PullRequestDiff{Content: content, Files: kept}, nil
}

// FetchDetails retrieves the pull request metadata.
func (s *GitHubService) FetchDetails(ctx context.Context, owner, repo string, number int) (*PullRequestDetails, error) {
	pr, _, err := s.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s/%s#%d: %v", ErrOriginFetch, owner, repo, number, err)
	}

	return &PullRequestDetails{
		Title:   pr.GetTitle(),
		Body:    pr.GetBody(),
		State:   pr.GetState(),
		HeadRef: pr.GetHead().GetRef(),
		HeadSHA: pr.GetHead().GetSHA(),
		BaseRef: pr.GetBase().GetRef(),
		BaseSHA: pr.GetBase().GetSHA(),
	}, nil
}

// isReviewableFile drops deleted files, oversized files, files with
// malformed size metadata and binary-like extensions.
func isReviewableFile(f *github.CommitFile) bool {
	if f.GetStatus() == "removed" {
		return false
	}

	additions, deletions := f.GetAdditions(), f.GetDeletions()
	if additions < 0 || deletions < 0 {
		// malformed upstream metadata, fail closed
		return false
	}
	if additions+deletions > maxFileChanges {
		log.Printf("skipping large file: %s (%d changes)", f.GetFilename(), additions+deletions)
		return false
	}

	name := strings.ToLower(f.GetFilename())
	for _, ext := range skippedExtensions {
		if strings.HasSuffix(name, ext) {
			log.Printf("skipping binary file: %s", f.GetFilename())
			return false
		}
	}

	return true
}
