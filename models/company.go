package models

import (
	"github.com/pixelready/express-jobly/db"
	"github.com/pixelready/express-jobly/query"
)

// Company represents a row in the "companies" table, keyed by Handle.
// db tags carry the logical names the repository aliases columns to.
type Company struct {
	Handle       string  `db:"handle" json:"handle"`
	Name         string  `db:"name" json:"name"`
	Description  string  `db:"description" json:"description"`
	NumEmployees *int    `db:"numEmployees" json:"numEmployees"`
	LogoURL      *string `db:"logoUrl" json:"logoUrl"`

	// Jobs is only filled in by the company detail route.
	Jobs []*Job `db:"-" json:"jobs,omitempty"`
}

// CreateCompanyParams holds the fields of a new company.
type CreateCompanyParams struct {
	Handle       string  `json:"handle"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	NumEmployees *int    `json:"numEmployees"`
	LogoURL      *string `json:"logoUrl"`
}

func (p CreateCompanyParams) Validate() error {
	switch {
	case p.Handle == "":
		return db.Errorf(db.ErrInvalidRequest, "handle is required")
	case p.Name == "":
		return db.Errorf(db.ErrInvalidRequest, "name is required")
	case p.NumEmployees != nil && *p.NumEmployees < 0:
		return db.Errorf(db.ErrInvalidRequest, "numEmployees must not be negative")
	}
	return nil
}

// UpdateCompanyParams holds the fields that can change. The handle is the
// company's identity and is not among them.
type UpdateCompanyParams struct {
	Name         Patch[string] `json:"name"`
	Description  Patch[string] `json:"description"`
	NumEmployees Patch[int]    `json:"numEmployees"`
	LogoURL      Patch[string] `json:"logoUrl"`
}

func (p UpdateCompanyParams) Validate() error {
	switch {
	case p.Name.Null || (p.Name.Set && p.Name.Value == ""):
		return db.Errorf(db.ErrInvalidRequest, "name cannot be empty")
	case p.Description.Null:
		return db.Errorf(db.ErrInvalidRequest, "description cannot be null")
	case p.NumEmployees.Set && !p.NumEmployees.Null && p.NumEmployees.Value < 0:
		return db.Errorf(db.ErrInvalidRequest, "numEmployees must not be negative")
	}
	return nil
}

// Assignments lists the supplied fields in declaration order.
func (p UpdateCompanyParams) Assignments() []query.Assignment {
	var as []query.Assignment
	as = p.Name.appendTo(as, "name")
	as = p.Description.appendTo(as, "description")
	as = p.NumEmployees.appendTo(as, "numEmployees")
	as = p.LogoURL.appendTo(as, "logoUrl")
	return as
}

// CompanyFilter narrows a company listing. nil fields do not filter.
type CompanyFilter struct {
	Name         *string `schema:"name"`
	MinEmployees *int    `schema:"minEmployees"`
	MaxEmployees *int    `schema:"maxEmployees"`
}

// Filters returns the supplied criteria keyed by filter name.
func (f CompanyFilter) Filters() query.Filters {
	out := query.Filters{}
	if f.Name != nil && *f.Name != "" {
		out["name"] = *f.Name
	}
	if f.MinEmployees != nil {
		out["minEmployees"] = *f.MinEmployees
	}
	if f.MaxEmployees != nil {
		out["maxEmployees"] = *f.MaxEmployees
	}
	return out
}
