package http

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"strings"

	"resume-matcher/internal/adapter/storage"
	"resume-matcher/internal/textextract"
	"resume-matcher/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func readUpload(fh *multipart.FileHeader) (usecase.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return usecase.Upload{}, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return usecase.Upload{}, err
	}
	return usecase.Upload{Filename: fh.Filename, Content: content}, nil
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

// Apply handles a public application: a multipart form carrying the
// resume, an optional photo and the applicant's details.
func (h *Handler) Apply(c *fiber.Ctx) error {
	ctx := c.UserContext()
	job, err := h.recruiting.PublicJob(ctx, c.Params("link"))
	if err != nil {
		return h.lookupFailed(c, err, "Job not found")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return message(c, fiber.StatusBadRequest, "Resume file is required")
	}
	resumes := form.File["resume"]
	if len(resumes) == 0 {
		// browsers send an empty file part when nothing was picked
		if _, sent := form.Value["resume"]; sent {
			return message(c, fiber.StatusBadRequest, "No resume selected")
		}
		return message(c, fiber.StatusBadRequest, "Resume file is required")
	}
	resumeHeader := resumes[0]
	if resumeHeader.Filename == "" {
		return message(c, fiber.StatusBadRequest, "No resume selected")
	}
	if textextract.Supported(resumeHeader.Filename) != nil {
		return message(c, fiber.StatusBadRequest, "File type not allowed")
	}

	sub := usecase.Submission{
		Name:    formValue(form, "applicant_name"),
		Email:   formValue(form, "applicant_email"),
		Contact: formValue(form, "applicant_contact"),
	}
	if sub.Name == "" || sub.Email == "" {
		return message(c, fiber.StatusBadRequest, "Applicant name and email are required")
	}

	if sub.Resume, err = readUpload(resumeHeader); err != nil {
		return h.fail(c, err)
	}
	if photos := form.File["photo"]; len(photos) > 0 && photos[0].Filename != "" {
		if storage.Allowed(photos[0].Filename, storage.PhotoExtensions) {
			photo, err := readUpload(photos[0])
			if err != nil {
				return h.fail(c, err)
			}
			sub.Photo = &photo
		} else {
			h.logger.Info("ignoring photo with unsupported type", zap.String("file", photos[0].Filename))
		}
	}

	app, err := h.recruiting.Submit(ctx, job, sub)
	if errors.Is(err, storage.ErrInvalidName) {
		return message(c, fiber.StatusBadRequest, "Invalid file name")
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        "Application submitted successfully!",
		"application_id": app.ID,
	})
}

func (h *Handler) Applicant(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return message(c, fiber.StatusNotFound, "Applicant not found")
	}
	app, job, err := h.recruiting.OwnedApplication(c.UserContext(), currentUser(c), id)
	if err != nil {
		return h.lookupFailed(c, err, "Applicant not found")
	}
	return c.JSON(fiber.Map{"applicant": app, "job": job})
}

func (h *Handler) DeleteApplicant(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return message(c, fiber.StatusNotFound, "Applicant not found")
	}
	if err := h.recruiting.DeleteApplication(c.UserContext(), currentUser(c), id); err != nil {
		return h.lookupFailed(c, err, "Applicant not found")
	}
	return message(c, fiber.StatusOK, "Applicant deleted")
}

// Upload serves a stored resume or photo.
func (h *Handler) Upload(c *fiber.Ctx) error {
	p, err := h.files.Path(c.Params("filename"))
	if err != nil {
		return message(c, fiber.StatusNotFound, "File not found")
	}
	if _, err := os.Stat(p); err != nil {
		return message(c, fiber.StatusNotFound, "File not found")
	}
	return c.SendFile(p)
}
