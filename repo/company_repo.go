package repo

import (
	"context"
	"fmt"

	"github.com/pixelready/express-jobly/db"
	"github.com/pixelready/express-jobly/models"
	"github.com/pixelready/express-jobly/query"
)

// ─────────────────────────────────────────────────────────────────────────────
// CompanyRepository interface — for mocking in tests
// ─────────────────────────────────────────────────────────────────────────────

// CompanyRepository defines the persistence operations on companies.
type CompanyRepository interface {
	Create(ctx context.Context, params models.CreateCompanyParams) (*models.Company, error)
	FindAll(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, error)
	Get(ctx context.Context, handle string) (*models.Company, error)
	Update(ctx context.Context, handle string, params models.UpdateCompanyParams) (*models.Company, error)
	Remove(ctx context.Context, handle string) error
}

// companyRepo is the production implementation backed by a db.Querier.
type companyRepo struct {
	q db.Querier
}

// NewCompanyRepo returns a CompanyRepository backed by q.
// q can be a *db.DB or *db.Tx.
func NewCompanyRepo(q db.Querier) CompanyRepository {
	return &companyRepo{q: q}
}

// ─────────────────────────────────────────────────────────────────────────────
// Columns, filters and SQL
// ─────────────────────────────────────────────────────────────────────────────

var companyFields = query.FieldMap{
	"numEmployees": "num_employees",
	"logoUrl":      "logo_url",
}

var companyColumns = companyFields.SelectList("handle", "name", "description", "numEmployees", "logoUrl")

var companyFilters = query.Vocabulary{
	Terms: []query.Term{
		{Key: "name", Column: companyFields.Column("name"), Kind: query.Substring},
		{Key: "minEmployees", Column: companyFields.Column("numEmployees"), Kind: query.AtLeast},
		{Key: "maxEmployees", Column: companyFields.Column("numEmployees"), Kind: query.AtMost},
	},
	Bounds: []query.Bound{{Min: "minEmployees", Max: "maxEmployees"}},
}

const (
	sqlCompanyExists = `
		SELECT handle
		FROM   companies
		WHERE  handle = $1`

	sqlDeleteCompany = `
		DELETE FROM companies WHERE handle = $1`
)

var (
	sqlInsertCompany = `
		INSERT INTO companies (handle, name, description, num_employees, logo_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + companyColumns

	sqlGetCompany = `
		SELECT ` + companyColumns + `
		FROM   companies
		WHERE  handle = $1`
)

// ─────────────────────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────────────────────

// Create inserts a company. A company with the same handle yields
// db.ErrDuplicateKey, both when seen up front and when a concurrent insert
// wins the race to the unique constraint. The check and the insert share a
// transaction unless the repository already runs inside one.
func (r *companyRepo) Create(ctx context.Context, params models.CreateCompanyParams) (*models.Company, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var company *models.Company
	err := inTx(ctx, r.q, func(q db.Querier) error {
		var existing string
		err := q.QueryRow(ctx, sqlCompanyExists, params.Handle).Scan(&existing)
		switch {
		case err == nil:
			return db.Errorf(db.ErrDuplicateKey, "duplicate company: %s", params.Handle)
		case !db.IsNotFound(err):
			return fmt.Errorf("repo/company: %w", err)
		}

		rows, err := q.Query(ctx, sqlInsertCompany,
			params.Handle, params.Name, params.Description, params.NumEmployees, params.LogoURL)
		if err != nil {
			return fmt.Errorf("repo/company: %w", err)
		}
		company, err = scanCompany(rows, params.Handle)
		return err
	})
	if err != nil {
		return nil, err
	}
	return company, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// FindAll
// ─────────────────────────────────────────────────────────────────────────────

// FindAll lists companies matching filter, ordered by name. No matches is an
// empty slice, not an error.
func (r *companyRepo) FindAll(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, error) {
	where, err := companyFilters.Build(filter.Filters(), r.q.Dialect())
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf(`
		SELECT %s
		FROM   companies
		%s
		ORDER  BY name`, companyColumns, where.Where())

	rows, err := r.q.Query(ctx, stmt, where.Args...)
	if err != nil {
		return nil, fmt.Errorf("repo/company: %w", err)
	}
	companies, err := scanAll[models.Company](rows)
	if err != nil {
		return nil, fmt.Errorf("repo/company: scan: %w", err)
	}
	return companies, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Get
// ─────────────────────────────────────────────────────────────────────────────

// Get returns the company with handle, or db.ErrNotFound.
func (r *companyRepo) Get(ctx context.Context, handle string) (*models.Company, error) {
	rows, err := r.q.Query(ctx, sqlGetCompany, handle)
	if err != nil {
		return nil, fmt.Errorf("repo/company: %w", err)
	}
	return scanCompany(rows, handle)
}

// ─────────────────────────────────────────────────────────────────────────────
// Update
// ─────────────────────────────────────────────────────────────────────────────

// Update writes the supplied fields of params and returns the updated
// company. Supplying nothing is db.ErrInvalidRequest.
func (r *companyRepo) Update(ctx context.Context, handle string, params models.UpdateCompanyParams) (*models.Company, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	set, err := query.PartialUpdate(params.Assignments(), companyFields)
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf(`
		UPDATE companies
		SET    %s
		WHERE  handle = $%d
		RETURNING %s`,
		set.SQL, set.NextParam(), companyColumns)

	rows, err := r.q.Query(ctx, stmt, append(set.Args, handle)...)
	if err != nil {
		return nil, fmt.Errorf("repo/company: %w", err)
	}
	return scanCompany(rows, handle)
}

// ─────────────────────────────────────────────────────────────────────────────
// Remove
// ─────────────────────────────────────────────────────────────────────────────

// Remove deletes the company with handle, or returns db.ErrNotFound.
// Its jobs go with it (ON DELETE CASCADE).
func (r *companyRepo) Remove(ctx context.Context, handle string) error {
	res, err := r.q.Exec(ctx, sqlDeleteCompany, handle)
	if err != nil {
		return fmt.Errorf("repo/company: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repo/company: %w", err)
	}
	if n == 0 {
		return db.Errorf(db.ErrNotFound, "no company: %s", handle)
	}
	return nil
}

func scanCompany(rows *db.Rows, handle string) (*models.Company, error) {
	c, err := scanOne[models.Company](rows, db.Errorf(db.ErrNotFound, "no company: %s", handle))
	if err != nil && !db.IsNotFound(err) {
		return nil, fmt.Errorf("repo/company: scan: %w", err)
	}
	return c, err
}

var _ CompanyRepository = (*companyRepo)(nil)
