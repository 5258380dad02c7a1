package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-matcher/internal/domain"
	"resume-matcher/internal/infrastructure/migration"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRepo persists users, jobs and applications in a SQLite file.
type SQLiteRepo struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and checks the
// connection. The schema is created by the migration runner.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// one writer at a time; the pure Go driver serialises anyway
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return &SQLiteRepo{db: db}, nil
}

// Migrate creates the schema if it does not exist.
func (r *SQLiteRepo) Migrate(ctx context.Context, logger *zap.Logger) error {
	return migration.RunMigrations(ctx, migration.ForDB(r.db), migration.SQLite, logger)
}

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

func isSQLiteUnique(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *SQLiteRepo) CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`, username, passwordHash)
	if err != nil {
		if isSQLiteUnique(err) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading user id: %w", err)
	}
	return &domain.User{ID: id, Username: username, PasswordHash: passwordHash}, nil
}

func (r *SQLiteRepo) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	return u, notFound(err, "loading user")
}

func (r *SQLiteRepo) CreateJob(ctx context.Context, j *domain.Job) error {
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO jobs
		(job_title, job_description, location, required_skills, resume_keywords, unique_link_id, created_by_user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		j.Title, j.Description, j.Location, j.RequiredSkills, j.ResumeKeywords, j.LinkID, j.CreatedBy, j.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting job: %w", err)
	}
	if j.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading job id: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) JobByID(ctx context.Context, id int64) (*domain.Job, error) {
	j, err := scanJob(r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id), textTime)
	return j, notFound(err, "loading job")
}

func (r *SQLiteRepo) JobByLinkID(ctx context.Context, linkID string) (*domain.Job, error) {
	j, err := scanJob(r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE unique_link_id = ?`, linkID), textTime)
	return j, notFound(err, "loading job")
}

func (r *SQLiteRepo) ListJobsByOwner(ctx context.Context, ownerID int64) ([]*domain.JobSummary, error) {
	rows, err := r.db.QueryContext(ctx, jobSummaryQuery("?"), ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	out := []*domain.JobSummary{}
	for rows.Next() {
		s, err := scanJobSummary(rows, textTime)
		if err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) DeleteJob(ctx context.Context, id int64) ([]*domain.Application, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	apps, err := r.listApplications(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM applications WHERE job_id = ?`, id); err != nil {
		return nil, fmt.Errorf("deleting applications: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("deleting job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing job deletion: %w", err)
	}
	return apps, nil
}

func (r *SQLiteRepo) CreateApplication(ctx context.Context, a *domain.Application) error {
	if a.AppliedAt.IsZero() {
		a.AppliedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO applications
		(job_id, applicant_name, applicant_email, applicant_contact, resume_filename, photo_filename,
		 match_score, matched_skills, missing_skills, ai_feedback, xai_chart_base64, applied_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.JobID, a.Name, a.Email, a.Contact, a.ResumeFilename, a.PhotoFilename,
		a.MatchScore, joinList(a.MatchedSkills), joinList(a.MissingSkills), a.Feedback, a.ChartBase64, a.AppliedAt)
	if err != nil {
		return fmt.Errorf("inserting application: %w", err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading application id: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) ApplicationByID(ctx context.Context, id int64) (*domain.Application, error) {
	a, err := scanApplication(r.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id), textTime)
	return a, notFound(err, "loading application")
}

func (r *SQLiteRepo) ListApplications(ctx context.Context, jobID int64) ([]*domain.Application, error) {
	return r.listApplications(ctx, r.db, jobID)
}

type sqlQuerier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (r *SQLiteRepo) listApplications(ctx context.Context, q sqlQuerier, jobID int64) ([]*domain.Application, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+applicationColumns+` FROM applications
		WHERE job_id = ? ORDER BY applied_at DESC, id DESC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	defer rows.Close()

	out := []*domain.Application{}
	for rows.Next() {
		a, err := scanApplication(rows, textTime)
		if err != nil {
			return nil, fmt.Errorf("scanning application: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) DeleteApplication(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func notFound(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows), isPgNoRows(err):
		return domain.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
