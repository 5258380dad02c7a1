package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"resume-matcher/internal/domain"
)

// listSep joins matched and missing skills in a single text column.
const listSep = ", "

// scanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

const (
	userColumns = `id, username, password_hash`

	jobColumns = `id, job_title, job_description, COALESCE(location, ''), COALESCE(required_skills, ''),
		COALESCE(resume_keywords, ''), unique_link_id, COALESCE(created_by_user_id, 0), created_at`

	applicationColumns = `id, job_id, applicant_name, applicant_email, COALESCE(applicant_contact, ''),
		resume_filename, COALESCE(photo_filename, ''), match_score, COALESCE(matched_skills, ''),
		COALESCE(missing_skills, ''), COALESCE(ai_feedback, ''), COALESCE(xai_chart_base64, ''), applied_at`
)

func joinList(items []string) string {
	return strings.Join(items, listSep)
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, listSep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func scanUser(row scanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash); err != nil {
		return nil, err
	}
	return &u, nil
}

// timeDest wraps a timestamp field in the scan destination a backend needs.
type timeDest func(*time.Time) interface{}

func plainTime(t *time.Time) interface{} { return t }

func textTime(t *time.Time) interface{} { return sqliteTime{t: t} }

func scanJob(row scanner, ts timeDest) (*domain.Job, error) {
	var j domain.Job
	if err := row.Scan(&j.ID, &j.Title, &j.Description, &j.Location, &j.RequiredSkills,
		&j.ResumeKeywords, &j.LinkID, &j.CreatedBy, ts(&j.CreatedAt)); err != nil {
		return nil, err
	}
	return &j, nil
}

func scanApplication(row scanner, ts timeDest) (*domain.Application, error) {
	var (
		a                domain.Application
		matched, missing string
	)
	if err := row.Scan(&a.ID, &a.JobID, &a.Name, &a.Email, &a.Contact, &a.ResumeFilename,
		&a.PhotoFilename, &a.MatchScore, &matched, &missing, &a.Feedback, &a.ChartBase64, ts(&a.AppliedAt)); err != nil {
		return nil, err
	}
	a.MatchedSkills = splitList(matched)
	a.MissingSkills = splitList(missing)
	return &a, nil
}

// sqliteTime decodes timestamps stored by the sqlite driver, which may come
// back as time.Time or as text depending on the column affinity.
type sqliteTime struct {
	t *time.Time
}

var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (s sqliteTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*s.t = v
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	case int64:
		*s.t = time.Unix(v, 0).UTC()
		return nil
	case nil:
		*s.t = time.Time{}
		return nil
	}
	return fmt.Errorf("scan time: unsupported type %T", src)
}

func (s sqliteTime) parse(v string) error {
	for _, layout := range sqliteTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			*s.t = t
			return nil
		}
	}
	return fmt.Errorf("scan time: cannot parse %q", v)
}

var _ sql.Scanner = sqliteTime{}

// jobSummaryQuery lists an owner's jobs, newest first, with applicant
// statistics. ph is the backend's placeholder for the owner id.
func jobSummaryQuery(ph string) string {
	return `SELECT ` + jobColumns + `,
		(SELECT COUNT(*) FROM applications a WHERE a.job_id = jobs.id),
		(SELECT CAST(COALESCE(AVG(a.match_score), 0) AS DOUBLE PRECISION) FROM applications a WHERE a.job_id = jobs.id)
		FROM jobs WHERE created_by_user_id = ` + ph + `
		ORDER BY created_at DESC, id DESC`
}

func scanJobSummary(row scanner, ts timeDest) (*domain.JobSummary, error) {
	var s domain.JobSummary
	j := &s.Job
	if err := row.Scan(&j.ID, &j.Title, &j.Description, &j.Location, &j.RequiredSkills,
		&j.ResumeKeywords, &j.LinkID, &j.CreatedBy, ts(&j.CreatedAt), &s.Applicants, &s.AverageScore); err != nil {
		return nil, err
	}
	return &s, nil
}
