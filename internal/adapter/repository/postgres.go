package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resume-matcher/internal/domain"
	"resume-matcher/internal/infrastructure/migration"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

const pgUniqueViolation = "23505"

// PostgresRepo persists users, jobs and applications in PostgreSQL.
type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{pool: pool}
}

// Migrate creates the schema if it does not exist.
func (r *PostgresRepo) Migrate(ctx context.Context, logger *zap.Logger) error {
	return migration.RunMigrations(ctx, migration.ForPool(r.pool), migration.Postgres, logger)
}

func (r *PostgresRepo) Close() error {
	r.pool.Close()
	return nil
}

func isPgNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func isPgUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (r *PostgresRepo) CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	u := &domain.User{Username: username, PasswordHash: passwordHash}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`,
		username, passwordHash).Scan(&u.ID)
	if err != nil {
		if isPgUnique(err) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return u, nil
}

func (r *PostgresRepo) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	return u, notFound(err, "loading user")
}

func (r *PostgresRepo) CreateJob(ctx context.Context, j *domain.Job) error {
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
	err := r.pool.QueryRow(ctx, `INSERT INTO jobs
		(job_title, job_description, location, required_skills, resume_keywords, unique_link_id, created_by_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		j.Title, j.Description, j.Location, j.RequiredSkills, j.ResumeKeywords, j.LinkID, j.CreatedBy, j.CreatedAt).Scan(&j.ID)
	if err != nil {
		return fmt.Errorf("inserting job: %w", err)
	}
	return nil
}

func (r *PostgresRepo) JobByID(ctx context.Context, id int64) (*domain.Job, error) {
	j, err := scanJob(r.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id), plainTime)
	return j, notFound(err, "loading job")
}

func (r *PostgresRepo) JobByLinkID(ctx context.Context, linkID string) (*domain.Job, error) {
	j, err := scanJob(r.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE unique_link_id = $1`, linkID), plainTime)
	return j, notFound(err, "loading job")
}

func (r *PostgresRepo) ListJobsByOwner(ctx context.Context, ownerID int64) ([]*domain.JobSummary, error) {
	rows, err := r.pool.Query(ctx, jobSummaryQuery("$1"), ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	out := []*domain.JobSummary{}
	for rows.Next() {
		s, err := scanJobSummary(rows, plainTime)
		if err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) DeleteJob(ctx context.Context, id int64) ([]*domain.Application, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	apps, err := listPgApplications(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM applications WHERE job_id = $1`, id); err != nil {
		return nil, fmt.Errorf("deleting applications: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("deleting job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing job deletion: %w", err)
	}
	return apps, nil
}

func (r *PostgresRepo) CreateApplication(ctx context.Context, a *domain.Application) error {
	if a.AppliedAt.IsZero() {
		a.AppliedAt = time.Now().UTC()
	}
	err := r.pool.QueryRow(ctx, `INSERT INTO applications
		(job_id, applicant_name, applicant_email, applicant_contact, resume_filename, photo_filename,
		 match_score, matched_skills, missing_skills, ai_feedback, xai_chart_base64, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`,
		a.JobID, a.Name, a.Email, a.Contact, a.ResumeFilename, a.PhotoFilename,
		a.MatchScore, joinList(a.MatchedSkills), joinList(a.MissingSkills), a.Feedback, a.ChartBase64, a.AppliedAt).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("inserting application: %w", err)
	}
	return nil
}

func (r *PostgresRepo) ApplicationByID(ctx context.Context, id int64) (*domain.Application, error) {
	a, err := scanApplication(r.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id), plainTime)
	return a, notFound(err, "loading application")
}

func (r *PostgresRepo) ListApplications(ctx context.Context, jobID int64) ([]*domain.Application, error) {
	return listPgApplications(ctx, r.pool, jobID)
}

type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

func listPgApplications(ctx context.Context, q pgQuerier, jobID int64) ([]*domain.Application, error) {
	rows, err := q.Query(ctx, `SELECT `+applicationColumns+` FROM applications
		WHERE job_id = $1 ORDER BY applied_at DESC, id DESC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	defer rows.Close()

	out := []*domain.Application{}
	for rows.Next() {
		a, err := scanApplication(rows, plainTime)
		if err != nil {
			return nil, fmt.Errorf("scanning application: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) DeleteApplication(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
