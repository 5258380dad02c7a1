package http

import (
	"encoding/json"

	"resume-matcher/internal/model"
	"resume-matcher/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateJobForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"form":   "create-job",
		"action": "/create-job",
		"fields": []string{"job_title", "job_description", "location", "required_skills", "resume_keywords"},
	})
}

func (h *Handler) Dashboard(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return h.fail(c, err)
	}
	jobs, err := h.recruiting.Dashboard(c.UserContext(), currentUser(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"username": sess.Get(sessionUsername),
		"jobs":     jobs,
	})
}

func (h *Handler) CreateJob(c *fiber.Ctx) error {
	if err := model.Validate(model.SchemaCreateJob, c.Body()); err != nil {
		return message(c, fiber.StatusBadRequest, err.Error())
	}
	var req model.CreateJob
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return message(c, fiber.StatusBadRequest, err.Error())
	}

	j, err := h.recruiting.CreateJob(c.UserContext(), currentUser(c), usecase.JobInput{
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		RequiredSkills: req.RequiredSkills,
		ResumeKeywords: req.ResumeKeywords,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Job link created!",
		"link":    h.applyLink(j.LinkID),
	})
}

func (h *Handler) applyLink(linkID string) string {
	return h.publicURL + "/apply/" + linkID
}

// PublicJob is the job view shown to applicants.
func (h *Handler) PublicJob(c *fiber.Ctx) error {
	j, err := h.recruiting.PublicJob(c.UserContext(), c.Params("link"))
	if err != nil {
		return h.lookupFailed(c, err, "Job not found")
	}
	return c.JSON(fiber.Map{
		"job_title":       j.Title,
		"job_description": j.Description,
		"location":        j.Location,
		"required_skills": j.RequiredSkills,
		"resume_keywords": j.ResumeKeywords,
		"apply":           h.applyLink(j.LinkID),
	})
}

func (h *Handler) Applicants(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return message(c, fiber.StatusNotFound, "Job not found")
	}
	j, apps, err := h.recruiting.Applicants(c.UserContext(), currentUser(c), id)
	if err != nil {
		return h.lookupFailed(c, err, "Job not found")
	}
	return c.JSON(fiber.Map{"job": j, "applicants": apps})
}

func (h *Handler) DeleteJob(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return message(c, fiber.StatusNotFound, "Job not found")
	}
	n, err := h.recruiting.DeleteJob(c.UserContext(), currentUser(c), id)
	if err != nil {
		return h.lookupFailed(c, err, "Job not found")
	}
	return c.JSON(fiber.Map{"message": "Job deleted", "applications_removed": n})
}
