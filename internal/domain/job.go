package domain

import (
	"time"
)

// Job is a posting created by an employer. LinkID is the public identifier
// used in the apply URL; it is assigned once and never changes.
type Job struct {
	ID             int64     `json:"id"`
	Title          string    `json:"job_title"`
	Description    string    `json:"job_description"`
	Location       string    `json:"location"`
	RequiredSkills string    `json:"required_skills"`
	ResumeKeywords string    `json:"resume_keywords"`
	LinkID         string    `json:"unique_link_id"`
	CreatedBy      int64     `json:"created_by_user_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// MatchText is the text the resume is scored against.
func (j *Job) MatchText() string {
	return j.Description + " " + j.RequiredSkills
}

// JobSummary is a job as listed on its owner's dashboard.
type JobSummary struct {
	Job
	Applicants   int     `json:"applicant_count"`
	AverageScore float64 `json:"average_score"`
}
