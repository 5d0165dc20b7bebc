package repo

import (
	"context"
	"fmt"

	"github.com/pixelready/express-jobly/db"
	"github.com/pixelready/express-jobly/models"
	"github.com/pixelready/express-jobly/query"
)

// JobRepository defines the persistence operations on jobs.
type JobRepository interface {
	Create(ctx context.Context, params models.CreateJobParams) (*models.Job, error)
	FindAll(ctx context.Context, filter models.JobFilter) ([]*models.Job, error)
	Get(ctx context.Context, id int64) (*models.Job, error)
	Update(ctx context.Context, id int64, params models.UpdateJobParams) (*models.Job, error)
	Remove(ctx context.Context, id int64) error
}

type jobRepo struct {
	q db.Querier
}

// NewJobRepo returns a JobRepository backed by q.
func NewJobRepo(q db.Querier) JobRepository {
	return &jobRepo{q: q}
}

var jobFields = query.FieldMap{
	"companyHandle": "company_handle",
}

var jobColumns = jobFields.SelectList("id", "title", "salary", "equity", "companyHandle")

var jobFilters = query.Vocabulary{
	Terms: []query.Term{
		{Key: "title", Column: jobFields.Column("title"), Kind: query.Substring},
		{Key: "minSalary", Column: jobFields.Column("salary"), Kind: query.AtLeast},
		{Key: "maxSalary", Column: jobFields.Column("salary"), Kind: query.AtMost},
		{Key: "hasEquity", Column: jobFields.Column("equity"), Kind: query.Flag,
			Cond: query.QuoteIdent(jobFields.Column("equity")) + " > 0"},
		{Key: "companyHandle", Column: jobFields.Column("companyHandle"), Kind: query.Equals},
	},
	Bounds: []query.Bound{{Min: "minSalary", Max: "maxSalary"}},
}

const sqlDeleteJob = `
	DELETE FROM jobs WHERE id = $1`

var (
	sqlInsertJob = `
		INSERT INTO jobs (title, salary, equity, company_handle)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + jobColumns

	sqlGetJob = `
		SELECT ` + jobColumns + `
		FROM   jobs
		WHERE  id = $1`
)

// Create inserts a job; the store assigns its id. Jobs have no natural key,
// so there is no duplicate check.
func (r *jobRepo) Create(ctx context.Context, params models.CreateJobParams) (*models.Job, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sqlInsertJob,
		params.Title, params.Salary, params.Equity, params.CompanyHandle)
	if err != nil {
		return nil, fmt.Errorf("repo/job: %w", err)
	}
	job, err := scanOne[models.Job](rows, db.Errorf(db.ErrNotFound, "insert returned no job"))
	if err != nil {
		return nil, fmt.Errorf("repo/job: %w", err)
	}
	return job, nil
}

// FindAll lists jobs matching filter, ordered by title then id.
func (r *jobRepo) FindAll(ctx context.Context, filter models.JobFilter) ([]*models.Job, error) {
	where, err := jobFilters.Build(filter.Filters(), r.q.Dialect())
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf(`
		SELECT %s
		FROM   jobs
		%s
		ORDER  BY title, id`, jobColumns, where.Where())

	rows, err := r.q.Query(ctx, stmt, where.Args...)
	if err != nil {
		return nil, fmt.Errorf("repo/job: %w", err)
	}
	jobs, err := scanAll[models.Job](rows)
	if err != nil {
		return nil, fmt.Errorf("repo/job: scan: %w", err)
	}
	return jobs, nil
}

// Get returns the job with id, or db.ErrNotFound.
func (r *jobRepo) Get(ctx context.Context, id int64) (*models.Job, error) {
	rows, err := r.q.Query(ctx, sqlGetJob, id)
	if err != nil {
		return nil, fmt.Errorf("repo/job: %w", err)
	}
	return scanJob(rows, id)
}

// Update writes the supplied fields of params. The id and company of a job
// never change.
func (r *jobRepo) Update(ctx context.Context, id int64, params models.UpdateJobParams) (*models.Job, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	set, err := query.PartialUpdate(params.Assignments(), jobFields)
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf(`
		UPDATE jobs
		SET    %s
		WHERE  id = $%d
		RETURNING %s`,
		set.SQL, set.NextParam(), jobColumns)

	rows, err := r.q.Query(ctx, stmt, append(set.Args, id)...)
	if err != nil {
		return nil, fmt.Errorf("repo/job: %w", err)
	}
	return scanJob(rows, id)
}

// Remove deletes the job with id, or returns db.ErrNotFound.
func (r *jobRepo) Remove(ctx context.Context, id int64) error {
	res, err := r.q.Exec(ctx, sqlDeleteJob, id)
	if err != nil {
		return fmt.Errorf("repo/job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repo/job: %w", err)
	}
	if n == 0 {
		return db.Errorf(db.ErrNotFound, "no job: %d", id)
	}
	return nil
}

func scanJob(rows *db.Rows, id int64) (*models.Job, error) {
	job, err := scanOne[models.Job](rows, db.Errorf(db.ErrNotFound, "no job: %d", id))
	if err != nil && !db.IsNotFound(err) {
		return nil, fmt.Errorf("repo/job: scan: %w", err)
	}
	return job, err
}

var _ JobRepository = (*jobRepo)(nil)
