package migration

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// Dialect selects the SQL flavour of the schema statements.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ExecFunc runs a single schema statement.
type ExecFunc func(ctx context.Context, query string) error

// ForPool adapts a pgx pool.
func ForPool(pool *pgxpool.Pool) ExecFunc {
	return func(ctx context.Context, query string) error {
		_, err := pool.Exec(ctx, query)
		return err
	}
}

// ForDB adapts a database/sql handle.
func ForDB(db *sql.DB) ExecFunc {
	return func(ctx context.Context, query string) error {
		_, err := db.ExecContext(ctx, query)
		return err
	}
}

// Migration represents a database migration. Every Up must be idempotent:
// the full list runs on each startup.
type Migration struct {
	Name string
	Up   func(ctx context.Context, exec ExecFunc, d Dialect) error
}

func migrations() []Migration {
	return []Migration{
		{Name: "create_users", Up: createUsers},
		{Name: "create_jobs", Up: createJobs},
		{Name: "create_applications", Up: createApplications},
		{Name: "index_applications_job_id", Up: indexApplicationsJobID},
	}
}

// RunMigrations executes all migrations in order, stopping at the first
// failure.
func RunMigrations(ctx context.Context, exec ExecFunc, d Dialect, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if d != Postgres && d != SQLite {
		return fmt.Errorf("unsupported dialect %q", d)
	}
	logger.Info("starting database migrations", zap.String("dialect", string(d)))

	for _, m := range migrations() {
		if err := m.Up(ctx, exec, d); err != nil {
			logger.Error("migration failed", zap.String("name", m.Name), zap.Error(err))
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
		logger.Debug("migration completed", zap.String("name", m.Name))
	}

	logger.Info("all migrations completed")
	return nil
}

func idColumn(d Dialect) string {
	if d == Postgres {
		return "id BIGSERIAL PRIMARY KEY"
	}
	return "id INTEGER PRIMARY KEY AUTOINCREMENT"
}

func timeType(d Dialect) string {
	if d == Postgres {
		return "TIMESTAMPTZ"
	}
	return "DATETIME"
}

func createUsers(ctx context.Context, exec ExecFunc, d Dialect) error {
	return exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			`+idColumn(d)+`,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL
		)`)
}

func createJobs(ctx context.Context, exec ExecFunc, d Dialect) error {
	return exec(ctx, `
		CREATE TABLE IF NOT EXISTS jobs (
			`+idColumn(d)+`,
			job_title TEXT NOT NULL,
			job_description TEXT NOT NULL,
			location TEXT,
			required_skills TEXT,
			resume_keywords TEXT,
			unique_link_id TEXT UNIQUE NOT NULL,
			created_by_user_id BIGINT REFERENCES users (id),
			created_at `+timeType(d)+` NOT NULL
		)`)
}

// applications.job_id carries no foreign key: rows are removed by the job
// deletion transaction, not by a cascade.
func createApplications(ctx context.Context, exec ExecFunc, d Dialect) error {
	return exec(ctx, `
		CREATE TABLE IF NOT EXISTS applications (
			`+idColumn(d)+`,
			job_id BIGINT NOT NULL,
			applicant_name TEXT NOT NULL,
			applicant_email TEXT NOT NULL,
			applicant_contact TEXT,
			resume_filename TEXT NOT NULL,
			photo_filename TEXT,
			match_score INTEGER NOT NULL DEFAULT 0,
			matched_skills TEXT,
			missing_skills TEXT,
			ai_feedback TEXT,
			xai_chart_base64 TEXT,
			applied_at `+timeType(d)+` NOT NULL
		)`)
}

func indexApplicationsJobID(ctx context.Context, exec ExecFunc, _ Dialect) error {
	return exec(ctx, `CREATE INDEX IF NOT EXISTS idx_applications_job_id ON applications (job_id)`)
}
