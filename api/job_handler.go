package api

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/pixelready/express-jobly/db"
	"github.com/pixelready/express-jobly/models"
	"github.com/pixelready/express-jobly/repo"
)

// JobHandler serves /jobs.
type JobHandler struct {
	jobs  repo.JobRepository
	retry db.RetryConfig
}

// NewJobHandler creates a JobHandler. retry applies to reads only.
func NewJobHandler(jobs repo.JobRepository, retry db.RetryConfig) *JobHandler {
	return &JobHandler{jobs: jobs, retry: retry}
}

// Create handles POST /jobs
func (h *JobHandler) Create(c *fiber.Ctx) error {
	var params models.CreateJobParams
	if err := decodeBody(c, &params); err != nil {
		return HandleInvalidRequestError(c, "Invalid request body", err.Error())
	}

	job, err := h.jobs.Create(c.UserContext(), params)
	if err != nil {
		return HandleError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"job": job})
}

// List handles GET /jobs?title=&minSalary=&maxSalary=&hasEquity=&companyHandle=
func (h *JobHandler) List(c *fiber.Ctx) error {
	var filter models.JobFilter
	if err := decodeQuery(c, &filter); err != nil {
		return HandleInvalidRequestError(c, "Invalid query parameters", err.Error())
	}

	var jobs []*models.Job
	err := db.WithRetry(c.UserContext(), h.retry, func() error {
		var err error
		jobs, err = h.jobs.FindAll(c.UserContext(), filter)
		return err
	})
	if err != nil {
		return HandleError(c, err)
	}
	return c.JSON(fiber.Map{"jobs": jobs})
}

// Get handles GET /jobs/:id
func (h *JobHandler) Get(c *fiber.Ctx) error {
	id, err := jobID(c)
	if err != nil {
		return HandleError(c, err)
	}

	var job *models.Job
	err = db.WithRetry(c.UserContext(), h.retry, func() error {
		var err error
		job, err = h.jobs.Get(c.UserContext(), id)
		return err
	})
	if err != nil {
		return HandleError(c, err)
	}
	return c.JSON(fiber.Map{"job": job})
}

// Update handles PATCH /jobs/:id. The body may not name id or companyHandle.
func (h *JobHandler) Update(c *fiber.Ctx) error {
	id, err := jobID(c)
	if err != nil {
		return HandleError(c, err)
	}
	var params models.UpdateJobParams
	if err := decodeBody(c, &params); err != nil {
		return HandleInvalidRequestError(c, "Invalid request body", err.Error())
	}

	job, err := h.jobs.Update(c.UserContext(), id, params)
	if err != nil {
		return HandleError(c, err)
	}
	return c.JSON(fiber.Map{"job": job})
}

// Remove handles DELETE /jobs/:id
func (h *JobHandler) Remove(c *fiber.Ctx) error {
	id, err := jobID(c)
	if err != nil {
		return HandleError(c, err)
	}
	if err := h.jobs.Remove(c.UserContext(), id); err != nil {
		return HandleError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": id})
}

// jobID parses the :id segment. An id that is not a number names no job.
func jobID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, db.Errorf(db.ErrNotFound, "no job: %s", raw)
	}
	return id, nil
}
