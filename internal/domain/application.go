package domain

import "time"

type Application struct {
	ID             int64     `json:"id"`
	JobID          int64     `json:"job_id"`
	Name           string    `json:"applicant_name"`
	Email          string    `json:"applicant_email"`
	Contact        string    `json:"applicant_contact,omitempty"`
	ResumeFilename string    `json:"resume_filename"`
	PhotoFilename  string    `json:"photo_filename,omitempty"`
	MatchScore     int       `json:"match_score"`
	MatchedSkills  []string  `json:"matched_skills"`
	MissingSkills  []string  `json:"missing_skills"`
	Feedback       string    `json:"ai_feedback"`
	ChartBase64    string    `json:"xai_chart_base64,omitempty"`
	AppliedAt      time.Time `json:"applied_at"`
}

// Analysis is the outcome of scoring one resume against one job.
type Analysis struct {
	Score       int
	Matched     []string
	Missing     []string
	Feedback    string
	ChartBase64 string
	Degraded    bool
}

// Apply copies the analysis outcome onto the application.
func (a *Application) Apply(an *Analysis) {
	if an == nil {
		return
	}
	a.MatchScore = an.Score
	a.MatchedSkills = an.Matched
	a.MissingSkills = an.Missing
	a.Feedback = an.Feedback
	a.ChartBase64 = an.ChartBase64
}
