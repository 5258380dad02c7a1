package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"resume-matcher/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	ctx := context.Background()
	repo, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(ctx, nil))
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedJob(t *testing.T, repo *SQLiteRepo, owner int64, link string, at time.Time) *domain.Job {
	t.Helper()
	j := &domain.Job{
		Title:          "Backend Engineer",
		Description:    "Build Go services",
		Location:       "Remote",
		RequiredSkills: "go, postgres",
		LinkID:         link,
		CreatedBy:      owner,
		CreatedAt:      at,
	}
	require.NoError(t, repo.CreateJob(context.Background(), j))
	return j
}

func TestUsers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	_, err = repo.CreateUser(ctx, "alice", "other")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	got, err := repo.UserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	_, err = repo.UserByUsername(ctx, "bob")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, err := repo.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	older := seedJob(t, repo, u.ID, "link-1", base)
	newer := seedJob(t, repo, u.ID, "link-2", base.Add(time.Hour))

	byLink, err := repo.JobByLinkID(ctx, "link-2")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, byLink.ID)
	assert.Equal(t, "Remote", byLink.Location)
	assert.True(t, byLink.CreatedAt.Equal(newer.CreatedAt), "got %v", byLink.CreatedAt)

	byID, err := repo.JobByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "link-1", byID.LinkID)

	_, err = repo.JobByLinkID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.CreateJob(ctx, &domain.Job{Title: "dup", Description: "d", LinkID: "link-1", CreatedBy: u.ID})
	assert.Error(t, err, "link ids are unique")

	require.NoError(t, repo.CreateApplication(ctx, &domain.Application{
		JobID: older.ID, Name: "n", Email: "e", ResumeFilename: "r.pdf", MatchScore: 80,
	}))
	require.NoError(t, repo.CreateApplication(ctx, &domain.Application{
		JobID: older.ID, Name: "m", Email: "f", ResumeFilename: "s.pdf", MatchScore: 41,
	}))

	list, err := repo.ListJobsByOwner(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, 0, list[0].Applicants)
	assert.Equal(t, 2, list[1].Applicants)
	assert.InDelta(t, 60.5, list[1].AverageScore, 1e-9)

	others, err := repo.ListJobsByOwner(ctx, u.ID+100)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestApplications(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, err := repo.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	job := seedJob(t, repo, u.ID, "link", time.Now().UTC())

	first := &domain.Application{
		JobID:          job.ID,
		Name:           "Jane",
		Email:          "jane@example.com",
		ResumeFilename: "a_resume.pdf",
		MatchScore:     72,
		MatchedSkills:  []string{"go", "sql"},
		MissingSkills:  []string{"kafka"},
		Feedback:       "Solid profile.",
		AppliedAt:      time.Now().UTC().Add(-time.Minute),
	}
	require.NoError(t, repo.CreateApplication(ctx, first))
	second := &domain.Application{JobID: job.ID, Name: "John", Email: "john@example.com", ResumeFilename: "b.docx"}
	require.NoError(t, repo.CreateApplication(ctx, second))

	got, err := repo.ApplicationByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, got.MatchedSkills)
	assert.Equal(t, []string{"kafka"}, got.MissingSkills)
	assert.Equal(t, 72, got.MatchScore)
	assert.Empty(t, got.PhotoFilename)

	empty, err := repo.ApplicationByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, empty.MatchedSkills)

	list, err := repo.ListApplications(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	require.NoError(t, repo.DeleteApplication(ctx, second.ID))
	assert.ErrorIs(t, repo.DeleteApplication(ctx, second.ID), domain.ErrNotFound)
	_, err = repo.ApplicationByID(ctx, second.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteJobRemovesApplications(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, err := repo.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	job := seedJob(t, repo, u.ID, "link", time.Now().UTC())
	keep := seedJob(t, repo, u.ID, "other", time.Now().UTC())

	for _, name := range []string{"a.pdf", "b.pdf"} {
		require.NoError(t, repo.CreateApplication(ctx, &domain.Application{
			JobID: job.ID, Name: "x", Email: "y", ResumeFilename: name, PhotoFilename: "p_" + name + ".png",
		}))
	}
	require.NoError(t, repo.CreateApplication(ctx, &domain.Application{
		JobID: keep.ID, Name: "x", Email: "y", ResumeFilename: "c.pdf",
	}))

	removed, err := repo.DeleteJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	_, err = repo.JobByID(ctx, job.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	left, err := repo.ListApplications(ctx, job.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	kept, err := repo.ListApplications(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	_, err = repo.DeleteJob(ctx, job.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{}, splitList(""))
	assert.Equal(t, []string{"go", "machine learning"}, splitList("go, machine learning"))
	assert.Equal(t, "go, machine learning", joinList([]string{"go", "machine learning"}))
}

func TestSQLiteTimeScan(t *testing.T) {
	var ts time.Time
	require.NoError(t, sqliteTime{t: &ts}.Scan("2024-03-01 10:00:00+00:00"))
	assert.Equal(t, 2024, ts.Year())
	require.NoError(t, sqliteTime{t: &ts}.Scan([]byte("2024-03-01T10:00:00Z")))
	assert.Equal(t, 10, ts.Hour())
	assert.Error(t, sqliteTime{t: &ts}.Scan("yesterday"))
}
