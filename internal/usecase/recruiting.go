package usecase

import (
	"bytes"
	"context"
	"fmt"

	"resume-matcher/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ResumeAnalyzer interface {
	Analyze(ctx context.Context, filename string, content []byte, job *domain.Job) *domain.Analysis
}

// Upload is a file received from an applicant.
type Upload struct {
	Filename string
	Content  []byte
}

type Submission struct {
	Name    string
	Email   string
	Contact string
	Resume  Upload
	Photo   *Upload
}

type JobInput struct {
	Title          string
	Description    string
	Location       string
	RequiredSkills string
	ResumeKeywords string
}

// Recruiting implements job and application management on top of the
// store, the upload directory and the analyzer.
type Recruiting struct {
	store    Store
	files    FileStore
	analyzer ResumeAnalyzer
	logger   *zap.Logger
}

func NewRecruiting(store Store, files FileStore, analyzer ResumeAnalyzer, logger *zap.Logger) *Recruiting {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recruiting{store: store, files: files, analyzer: analyzer, logger: logger}
}

// CreateJob stores a job owned by ownerID under a fresh random link id.
func (r *Recruiting) CreateJob(ctx context.Context, ownerID int64, in JobInput) (*domain.Job, error) {
	j := &domain.Job{
		Title:          in.Title,
		Description:    in.Description,
		Location:       in.Location,
		RequiredSkills: in.RequiredSkills,
		ResumeKeywords: in.ResumeKeywords,
		LinkID:         uuid.NewString(),
		CreatedBy:      ownerID,
	}
	if err := r.store.CreateJob(ctx, j); err != nil {
		return nil, err
	}
	r.logger.Info("job created", zap.Int64("job_id", j.ID), zap.Int64("owner_id", ownerID))
	return j, nil
}

func (r *Recruiting) Dashboard(ctx context.Context, ownerID int64) ([]*domain.JobSummary, error) {
	return r.store.ListJobsByOwner(ctx, ownerID)
}

func (r *Recruiting) PublicJob(ctx context.Context, linkID string) (*domain.Job, error) {
	return r.store.JobByLinkID(ctx, linkID)
}

// OwnedJob loads a job and checks that userID created it.
func (r *Recruiting) OwnedJob(ctx context.Context, userID, jobID int64) (*domain.Job, error) {
	j, err := r.store.JobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.CreatedBy != userID {
		return nil, domain.ErrForbidden
	}
	return j, nil
}

// OwnedApplication loads an application whose job userID created.
func (r *Recruiting) OwnedApplication(ctx context.Context, userID, appID int64) (*domain.Application, *domain.Job, error) {
	a, err := r.store.ApplicationByID(ctx, appID)
	if err != nil {
		return nil, nil, err
	}
	j, err := r.OwnedJob(ctx, userID, a.JobID)
	if err != nil {
		return nil, nil, err
	}
	return a, j, nil
}

func (r *Recruiting) Applicants(ctx context.Context, userID, jobID int64) (*domain.Job, []*domain.Application, error) {
	j, err := r.OwnedJob(ctx, userID, jobID)
	if err != nil {
		return nil, nil, err
	}
	apps, err := r.store.ListApplications(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	return j, apps, nil
}

// Submit stores the uploads, analyses the resume and records the
// application. Analysis problems degrade the stored result but never fail
// the submission.
func (r *Recruiting) Submit(ctx context.Context, job *domain.Job, sub Submission) (*domain.Application, error) {
	resumeName, err := r.files.Save(sub.Resume.Filename, bytes.NewReader(sub.Resume.Content))
	if err != nil {
		return nil, fmt.Errorf("save resume: %w", err)
	}
	saved := []string{resumeName}

	photoName := ""
	if sub.Photo != nil {
		photoName, err = r.files.Save(sub.Photo.Filename, bytes.NewReader(sub.Photo.Content))
		if err != nil {
			r.cleanup(saved)
			return nil, fmt.Errorf("save photo: %w", err)
		}
		saved = append(saved, photoName)
	}

	app := &domain.Application{
		JobID:          job.ID,
		Name:           sub.Name,
		Email:          sub.Email,
		Contact:        sub.Contact,
		ResumeFilename: resumeName,
		PhotoFilename:  photoName,
	}
	app.Apply(r.analyzer.Analyze(ctx, sub.Resume.Filename, sub.Resume.Content, job))

	if err := r.store.CreateApplication(ctx, app); err != nil {
		r.cleanup(saved)
		return nil, err
	}
	r.logger.Info("application received",
		zap.Int64("job_id", job.ID),
		zap.Int64("application_id", app.ID),
		zap.Int("score", app.MatchScore),
	)
	return app, nil
}

func (r *Recruiting) DeleteApplication(ctx context.Context, userID, appID int64) error {
	a, _, err := r.OwnedApplication(ctx, userID, appID)
	if err != nil {
		return err
	}
	if err := r.store.DeleteApplication(ctx, appID); err != nil {
		return err
	}
	r.cleanup([]string{a.ResumeFilename, a.PhotoFilename})
	return nil
}

// DeleteJob removes the job, all of its applications and their files. It
// returns the number of applications removed.
func (r *Recruiting) DeleteJob(ctx context.Context, userID, jobID int64) (int, error) {
	if _, err := r.OwnedJob(ctx, userID, jobID); err != nil {
		return 0, err
	}
	apps, err := r.store.DeleteJob(ctx, jobID)
	if err != nil {
		return 0, err
	}
	for _, a := range apps {
		r.cleanup([]string{a.ResumeFilename, a.PhotoFilename})
	}
	r.logger.Info("job deleted", zap.Int64("job_id", jobID), zap.Int("applications", len(apps)))
	return len(apps), nil
}

// cleanup removes stored files, logging failures.
func (r *Recruiting) cleanup(names []string) {
	for _, n := range names {
		if n == "" {
			continue
		}
		if err := r.files.Remove(n); err != nil {
			r.logger.Warn("could not remove upload", zap.String("file", n), zap.Error(err))
		}
	}
}
