package model

// Credentials is the body of /register and /login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateJob struct {
	Title          string `json:"job_title"`
	Description    string `json:"job_description"`
	Location       string `json:"location"`
	RequiredSkills string `json:"required_skills"`
	ResumeKeywords string `json:"resume_keywords"`
}
