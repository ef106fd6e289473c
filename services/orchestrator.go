package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devflow-review/models"
)

// ChangeFetcher retrieves pull request change data from the origin host.
type ChangeFetcher interface {
	FetchDiff(ctx context.Context, owner, repo string, number int) (*PullRequestDiff, error)
	FetchDetails(ctx context.Context, owner, repo string, number int) (*PullRequestDetails, error)
}

// ReviewAnalyzer produces a structured verdict for a diff.
type ReviewAnalyzer interface {
	Analyze(ctx context.Context, diffContent, prTitle string) (*AnalysisResult, error)
}

// ReviewNotifier announces a review that reached a terminal status.
// Best-effort: failures must not affect the pipeline.
type ReviewNotifier interface {
	NotifyReviewFinished(review *models.Review, repo *models.Repository, pr *models.PullRequest)
}

// ReviewEvent is a validated pull_request webhook delivery, normalized for
// the pipeline.
type ReviewEvent struct {
	Action     string
	DeliveryID string

	SenderGithubID  string
	SenderLogin     string
	SenderAvatarURL string

	RepoGithubID int64
	RepoName     string
	RepoFullName string
	RepoOwner    string
	RepoPrivate  bool

	PRGithubID int64
	PRNumber   int
	PRTitle    string
	PRState    string
}

// Orchestrator drives one review pipeline per accepted event: resolve
// entities, create a pending review, fetch details and diff, analyze,
// persist the verdict. Status transitions are
// pending -> processing -> completed | failed; completed and failed are
// terminal. Dependencies are injected so tests can substitute fakes.
type Orchestrator struct {
	db       *gorm.DB
	resolver *Resolver
	fetcher  ChangeFetcher
	analyzer ReviewAnalyzer
	notifier ReviewNotifier

	fetchTimeout   time.Duration
	analyzeTimeout time.Duration
}

func NewOrchestrator(db *gorm.DB, resolver *Resolver, fetcher ChangeFetcher, analyzer ReviewAnalyzer, notifier ReviewNotifier, fetchTimeout, analyzeTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		db:             db,
		resolver:       resolver,
		fetcher:        fetcher,
		analyzer:       analyzer,
		notifier:       notifier,
		fetchTimeout:   fetchTimeout,
		analyzeTimeout: analyzeTimeout,
	}
}

// ProcessReviewEvent runs the full pipeline for one event. A single
// best-effort attempt: errors after the review row exists leave it failed
// with the cause as its summary, and a new event is needed to retry.
func (o *Orchestrator) ProcessReviewEvent(ctx context.Context, ev ReviewEvent) error {
	log.Printf("starting code analysis for pr %s#%d", ev.RepoFullName, ev.PRNumber)

	user, err := o.resolver.EnsureUser(ev.SenderGithubID, ev.SenderLogin, ev.SenderAvatarURL)
	if err != nil {
		return err
	}
	repo, err := o.resolver.EnsureRepository(ev.RepoGithubID, ev.RepoName, ev.RepoFullName, ev.RepoOwner, ev.RepoPrivate, user)
	if err != nil {
		return err
	}
	pr, err := o.resolver.EnsurePullRequest(ev.PRGithubID, ev.PRNumber, ev.PRTitle, ev.PRState, repo)
	if err != nil {
		return err
	}

	review := models.Review{
		ID:            uuid.NewString(),
		Status:        models.ReviewStatusPending,
		PullRequestID: pr.ID,
		UserID:        user.ID,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := o.db.Create(&review).Error; err != nil {
		return fmt.Errorf("review create failed: %w", err)
	}

	if err := o.runPipeline(ctx, &review, repo, pr); err != nil {
		o.failReview(&review, err)
		o.notify(&review, repo, pr)
		return err
	}

	o.notify(&review, repo, pr)
	log.Printf("analysis completed for pr %s#%d (review %s)", ev.RepoFullName, ev.PRNumber, review.ID)
	return nil
}

func (o *Orchestrator) runPipeline(ctx context.Context, review *models.Review, repo *models.Repository, pr *models.PullRequest) error {
	if err := o.setStatus(review, models.ReviewStatusProcessing); err != nil {
		return err
	}

	owner, name, ok := strings.Cut(repo.FullName, "/")
	if !ok || owner == "" || name == "" {
		return fmt.Errorf("invalid repository format: %s", repo.FullName)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, o.fetchTimeout)
	defer cancel()

	// details and diff come from independent endpoints, fetch them together
	var (
		details    *PullRequestDetails
		diff       *PullRequestDiff
		detailsErr error
		diffErr    error
		wg         sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		details, detailsErr = o.fetcher.FetchDetails(fetchCtx, owner, name, pr.Number)
	}()
	go func() {
		defer wg.Done()
		diff, diffErr = o.fetcher.FetchDiff(fetchCtx, owner, name, pr.Number)
	}()
	wg.Wait()

	if detailsErr != nil {
		return detailsErr
	}
	if diffErr != nil {
		return diffErr
	}

	if strings.TrimSpace(diff.Content) == "" {
		log.Printf("no code changes found for %s#%d, marking as completed", repo.FullName, pr.Number)
		return o.completeReview(review, "No code changes detected in this pull request.", 100, nil)
	}

	log.Printf("analyzing %d files for %s#%d", len(diff.Files), repo.FullName, pr.Number)

	analyzeCtx, cancel := context.WithTimeout(ctx, o.analyzeTimeout)
	defer cancel()

	analysis, err := o.analyzer.Analyze(analyzeCtx, diff.Content, details.Title)
	if err != nil {
		return err
	}

	return o.completeReview(review, analysis.Summary, analysis.Score, analysis.Comments)
}

// completeReview persists the verdict, marks the review completed and
// records each comment as a finding.
func (o *Orchestrator) completeReview(review *models.Review, summary string, score int, comments []AnalysisComment) error {
	score = ClampScore(score)
	review.Status = models.ReviewStatusCompleted
	review.Summary = &summary
	review.Score = &score
	review.UpdatedAt = time.Now()
	if err := o.db.Save(review).Error; err != nil {
		return fmt.Errorf("review update failed: %w", err)
	}

	for _, c := range comments {
		finding := models.Finding{
			ID:        uuid.NewString(),
			Content:   c.Content,
			Type:      c.Type,
			Severity:  c.Severity,
			ReviewID:  review.ID,
			CreatedAt: time.Now(),
		}
		if c.FilePath != "" {
			path := c.FilePath
			finding.FilePath = &path
		}
		if c.LineNumber > 0 {
			line := c.LineNumber
			finding.LineNumber = &line
		}
		if err := o.db.Create(&finding).Error; err != nil {
			return fmt.Errorf("finding create failed: %w", err)
		}
	}

	return nil
}

// failReview is the terminal transition for any pipeline error. The cause
// lands in the summary so the dashboard can surface it without log access.
func (o *Orchestrator) failReview(review *models.Review, cause error) {
	summary := fmt.Sprintf("Analysis failed: %v", cause)
	review.Status = models.ReviewStatusFailed
	review.Summary = &summary
	review.Score = nil
	review.UpdatedAt = time.Now()
	if err := o.db.Save(review).Error; err != nil {
		log.Printf("failed to mark review %s as failed: %v", review.ID, err)
	}
}

func (o *Orchestrator) setStatus(review *models.Review, status string) error {
	review.Status = status
	review.UpdatedAt = time.Now()
	if err := o.db.Save(review).Error; err != nil {
		return fmt.Errorf("review status update failed: %w", err)
	}
	return nil
}

func (o *Orchestrator) notify(review *models.Review, repo *models.Repository, pr *models.PullRequest) {
	if o.notifier == nil {
		return
	}
	o.notifier.NotifyReviewFinished(review, repo, pr)
}
