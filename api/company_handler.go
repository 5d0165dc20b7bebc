package api

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/pixelready/express-jobly/db"
	"github.com/pixelready/express-jobly/models"
	"github.com/pixelready/express-jobly/repo"
)

// CompanyHandler serves /companies.
type CompanyHandler struct {
	companies repo.CompanyRepository
	jobs      repo.JobRepository
	retry     db.RetryConfig
}

// NewCompanyHandler creates a CompanyHandler. retry applies to reads only.
func NewCompanyHandler(companies repo.CompanyRepository, jobs repo.JobRepository, retry db.RetryConfig) *CompanyHandler {
	return &CompanyHandler{companies: companies, jobs: jobs, retry: retry}
}

// Create handles POST /companies
func (h *CompanyHandler) Create(c *fiber.Ctx) error {
	var params models.CreateCompanyParams
	if err := decodeBody(c, &params); err != nil {
		return HandleInvalidRequestError(c, "Invalid request body", err.Error())
	}

	company, err := h.companies.Create(c.UserContext(), params)
	if err != nil {
		return HandleError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"company": company})
}

// List handles GET /companies?name=&minEmployees=&maxEmployees=
func (h *CompanyHandler) List(c *fiber.Ctx) error {
	var filter models.CompanyFilter
	if err := decodeQuery(c, &filter); err != nil {
		return HandleInvalidRequestError(c, "Invalid query parameters", err.Error())
	}

	var companies []*models.Company
	err := db.WithRetry(c.UserContext(), h.retry, func() error {
		var err error
		companies, err = h.companies.FindAll(c.UserContext(), filter)
		return err
	})
	if err != nil {
		return HandleError(c, err)
	}
	return c.JSON(fiber.Map{"companies": companies})
}

// Get handles GET /companies/:handle and includes the company's jobs.
func (h *CompanyHandler) Get(c *fiber.Ctx) error {
	handle := c.Params("handle")

	var company *models.Company
	err := db.WithRetry(c.UserContext(), h.retry, func() error {
		var err error
		if company, err = h.companies.Get(c.UserContext(), handle); err != nil {
			return err
		}
		company.Jobs, err = h.jobs.FindAll(c.UserContext(), models.JobFilter{CompanyHandle: &handle})
		return err
	})
	if err != nil {
		return HandleError(c, err)
	}
	return c.JSON(fiber.Map{"company": company})
}

// Update handles PATCH /companies/:handle
func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	var params models.UpdateCompanyParams
	if err := decodeBody(c, &params); err != nil {
		return HandleInvalidRequestError(c, "Invalid request body", err.Error())
	}

	company, err := h.companies.Update(c.UserContext(), c.Params("handle"), params)
	if err != nil {
		return HandleError(c, err)
	}
	return c.JSON(fiber.Map{"company": company})
}

// Remove handles DELETE /companies/:handle
func (h *CompanyHandler) Remove(c *fiber.Ctx) error {
	handle := c.Params("handle")
	if err := h.companies.Remove(c.UserContext(), handle); err != nil {
		return HandleError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": handle})
}
