package usecase

import (
	"context"
	"io"

	"resume-matcher/internal/domain"
)

// Store is the relational persistence the service needs. Lookups of
// missing rows return domain.ErrNotFound.
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error)
	UserByUsername(ctx context.Context, username string) (*domain.User, error)

	CreateJob(ctx context.Context, j *domain.Job) error
	JobByID(ctx context.Context, id int64) (*domain.Job, error)
	JobByLinkID(ctx context.Context, linkID string) (*domain.Job, error)
	ListJobsByOwner(ctx context.Context, ownerID int64) ([]*domain.JobSummary, error)
	// DeleteJob removes the job and its applications atomically and
	// returns the removed applications.
	DeleteJob(ctx context.Context, id int64) ([]*domain.Application, error)

	CreateApplication(ctx context.Context, a *domain.Application) error
	ApplicationByID(ctx context.Context, id int64) (*domain.Application, error)
	ListApplications(ctx context.Context, jobID int64) ([]*domain.Application, error)
	DeleteApplication(ctx context.Context, id int64) error
}

// FileStore keeps uploaded resumes and photos.
type FileStore interface {
	Save(name string, src io.Reader) (string, error)
	Remove(name string) error
}
