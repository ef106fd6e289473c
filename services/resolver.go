package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"devflow-review/models"
)

// Resolver maps GitHub identifiers to durable records, creating them on
// first sight. Every operation is a get-or-create keyed strictly on the
// GitHub id: an insert racing with a duplicate delivery falls through the
// unique index and the authoritative row is re-read. Existing rows are never
// mutated, so a repeat sighting of a known entity is a pure read.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// EnsureUser returns the user with the given GitHub id, creating it if
// unseen. The contact email is synthesized from the login since webhook
// payloads carry no address.
func (r *Resolver) EnsureUser(githubID, login, avatarURL string) (*models.User, error) {
	var user models.User
	err := r.db.Where("github_id = ?", githubID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	created := models.User{
		ID:        uuid.NewString(),
		GithubID:  &githubID,
		Name:      login,
		Email:     fmt.Sprintf("%s@github.local", login),
		AvatarURL: avatarURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&created).Error; err != nil {
		return nil, fmt.Errorf("user create failed: %w", err)
	}

	// re-read: the row is authoritative whether we created it or lost the race
	if err := r.db.Where("github_id = ?", githubID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("user re-read failed: %w", err)
	}

	log.Printf("created user: %s (github id %s)", login, githubID)
	return &user, nil
}

// EnsureRepository returns the repository with the given GitHub id, creating
// it if unseen.
func (r *Resolver) EnsureRepository(githubID int64, name, fullName, owner string, private bool, user *models.User) (*models.Repository, error) {
	var repo models.Repository
	err := r.db.Where("github_id = ?", githubID).First(&repo).Error
	if err == nil {
		return &repo, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("repository lookup failed: %w", err)
	}

	created := models.Repository{
		ID:        uuid.NewString(),
		GithubID:  githubID,
		Name:      name,
		FullName:  fullName,
		Owner:     owner,
		Private:   private,
		IsActive:  true,
		UserID:    user.ID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&created).Error; err != nil {
		return nil, fmt.Errorf("repository create failed: %w", err)
	}

	if err := r.db.Where("github_id = ?", githubID).First(&repo).Error; err != nil {
		return nil, fmt.Errorf("repository re-read failed: %w", err)
	}

	log.Printf("created repository: %s (github id %d)", fullName, githubID)
	return &repo, nil
}

// EnsurePullRequest returns the pull request with the given GitHub id,
// creating it if unseen. Title and state are captured at first sight and not
// refreshed on later deliveries.
func (r *Resolver) EnsurePullRequest(githubID int64, number int, title, state string, repo *models.Repository) (*models.PullRequest, error) {
	var pr models.PullRequest
	err := r.db.Where("github_id = ?", githubID).First(&pr).Error
	if err == nil {
		return &pr, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("pull request lookup failed: %w", err)
	}

	created := models.PullRequest{
		ID:           uuid.NewString(),
		GithubID:     githubID,
		Number:       number,
		Title:        title,
		State:        state,
		RepositoryID: repo.ID,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&created).Error; err != nil {
		return nil, fmt.Errorf("pull request create failed: %w", err)
	}

	if err := r.db.Where("github_id = ?", githubID).First(&pr).Error; err != nil {
		return nil, fmt.Errorf("pull request re-read failed: %w", err)
	}

	log.Printf("created pull request: %s#%d (github id %d)", repo.FullName, number, githubID)
	return &pr, nil
}
