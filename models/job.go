package models

import (
	"github.com/pixelready/express-jobly/db"
	"github.com/pixelready/express-jobly/query"
)

// Job represents a row in the "jobs" table. ID is generated by the store.
type Job struct {
	ID            int64    `db:"id" json:"id"`
	Title         string   `db:"title" json:"title"`
	Salary        *int     `db:"salary" json:"salary"`
	Equity        *float64 `db:"equity" json:"equity"`
	CompanyHandle string   `db:"companyHandle" json:"companyHandle"`
}

type CreateJobParams struct {
	Title         string   `json:"title"`
	Salary        *int     `json:"salary"`
	Equity        *float64 `json:"equity"`
	CompanyHandle string   `json:"companyHandle"`
}

func (p CreateJobParams) Validate() error {
	switch {
	case p.Title == "":
		return db.Errorf(db.ErrInvalidRequest, "title is required")
	case p.CompanyHandle == "":
		return db.Errorf(db.ErrInvalidRequest, "companyHandle is required")
	}
	return validateTerms(p.Salary, p.Equity)
}

// UpdateJobParams holds the fields that can change. ID and CompanyHandle are
// fixed for the life of a job.
type UpdateJobParams struct {
	Title  Patch[string]  `json:"title"`
	Salary Patch[int]     `json:"salary"`
	Equity Patch[float64] `json:"equity"`
}

func (p UpdateJobParams) Validate() error {
	if p.Title.Null || (p.Title.Set && p.Title.Value == "") {
		return db.Errorf(db.ErrInvalidRequest, "title cannot be empty")
	}
	var salary *int
	if p.Salary.Set && !p.Salary.Null {
		salary = &p.Salary.Value
	}
	var equity *float64
	if p.Equity.Set && !p.Equity.Null {
		equity = &p.Equity.Value
	}
	return validateTerms(salary, equity)
}

// Assignments lists the supplied fields in declaration order.
func (p UpdateJobParams) Assignments() []query.Assignment {
	var as []query.Assignment
	as = p.Title.appendTo(as, "title")
	as = p.Salary.appendTo(as, "salary")
	as = p.Equity.appendTo(as, "equity")
	return as
}

func validateTerms(salary *int, equity *float64) error {
	if salary != nil && *salary < 0 {
		return db.Errorf(db.ErrInvalidRequest, "salary must not be negative")
	}
	if equity != nil && (*equity < 0 || *equity > 1) {
		return db.Errorf(db.ErrInvalidRequest, "equity must be between 0 and 1")
	}
	return nil
}

// JobFilter narrows a job listing. nil fields do not filter; HasEquity only
// filters when true.
type JobFilter struct {
	Title         *string `schema:"title"`
	MinSalary     *int    `schema:"minSalary"`
	MaxSalary     *int    `schema:"maxSalary"`
	HasEquity     *bool   `schema:"hasEquity"`
	CompanyHandle *string `schema:"companyHandle"`
}

// Filters returns the supplied criteria keyed by filter name.
func (f JobFilter) Filters() query.Filters {
	out := query.Filters{}
	if f.Title != nil && *f.Title != "" {
		out["title"] = *f.Title
	}
	if f.MinSalary != nil {
		out["minSalary"] = *f.MinSalary
	}
	if f.MaxSalary != nil {
		out["maxSalary"] = *f.MaxSalary
	}
	if f.HasEquity != nil {
		out["hasEquity"] = *f.HasEquity
	}
	if f.CompanyHandle != nil && *f.CompanyHandle != "" {
		out["companyHandle"] = *f.CompanyHandle
	}
	return out
}
