package query_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/pixelready/express-jobly/db"
	"github.com/pixelready/express-jobly/query"
)

// ─────────────────────────────────────────────────────────────────────────────
// FieldMap
// ─────────────────────────────────────────────────────────────────────────────

func TestFieldMap_Column(t *testing.T) {
	m := query.FieldMap{"numEmployees": "num_employees"}

	if got := m.Column("numEmployees"); got != "num_employees" {
		t.Fatalf("Column(numEmployees) = %q", got)
	}
	if got := m.Column("name"); got != "name" {
		t.Fatalf("unmapped field must translate to itself, got %q", got)
	}
	if got := query.FieldMap(nil).Column("age"); got != "age" {
		t.Fatalf("nil map must translate to identity, got %q", got)
	}
}

func TestFieldMap_Field(t *testing.T) {
	m := query.FieldMap{"logoUrl": "logo_url"}
	if got := m.Field("logo_url"); got != "logoUrl" {
		t.Fatalf("Field(logo_url) = %q", got)
	}
	if got := m.Field("handle"); got != "handle" {
		t.Fatalf("Field(handle) = %q", got)
	}
}

func TestFieldMap_SelectList(t *testing.T) {
	m := query.FieldMap{"numEmployees": "num_employees"}
	got := m.SelectList("handle", "numEmployees")
	want := `"handle", "num_employees" AS "numEmployees"`
	if got != want {
		t.Fatalf("SelectList = %q, want %q", got, want)
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := query.QuoteIdent(`we"ird`); got != `"we""ird"` {
		t.Fatalf("QuoteIdent = %q", got)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// PartialUpdate
// ─────────────────────────────────────────────────────────────────────────────

func TestPartialUpdate(t *testing.T) {
	frag, err := query.PartialUpdate([]query.Assignment{
		{Field: "firstName", Value: "Aliya"},
		{Field: "age", Value: 32},
	}, query.FieldMap{"firstName": "first_name"})
	if err != nil {
		t.Fatalf("PartialUpdate: %v", err)
	}
	if want := `"first_name"=$1, "age"=$2`; frag.SQL != want {
		t.Fatalf("SQL = %q, want %q", frag.SQL, want)
	}
	if !reflect.DeepEqual(frag.Args, []any{"Aliya", 32}) {
		t.Fatalf("Args = %v", frag.Args)
	}
	if frag.NextParam() != 3 {
		t.Fatalf("NextParam = %d, want 3", frag.NextParam())
	}
}

func TestPartialUpdate_NullValue(t *testing.T) {
	frag, err := query.PartialUpdate([]query.Assignment{{Field: "salary", Value: nil}}, nil)
	if err != nil {
		t.Fatalf("PartialUpdate: %v", err)
	}
	if frag.SQL != `"salary"=$1` || len(frag.Args) != 1 || frag.Args[0] != nil {
		t.Fatalf("unexpected fragment %+v", frag)
	}
}

func TestPartialUpdate_PreservesOrder(t *testing.T) {
	data := []query.Assignment{
		{Field: "c", Value: 3},
		{Field: "a", Value: 1},
		{Field: "b", Value: 2},
	}
	frag, err := query.PartialUpdate(data, nil)
	if err != nil {
		t.Fatalf("PartialUpdate: %v", err)
	}
	if want := `"c"=$1, "a"=$2, "b"=$3`; frag.SQL != want {
		t.Fatalf("SQL = %q, want %q", frag.SQL, want)
	}
	if !reflect.DeepEqual(frag.Args, []any{3, 1, 2}) {
		t.Fatalf("Args = %v", frag.Args)
	}
}

func TestPartialUpdate_Empty(t *testing.T) {
	for _, data := range [][]query.Assignment{nil, {}} {
		_, err := query.PartialUpdate(data, query.FieldMap{"a": "b"})
		if !db.IsInvalidRequest(err) {
			t.Fatalf("expected ErrInvalidRequest, got %v", err)
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Vocabulary.Build
// ─────────────────────────────────────────────────────────────────────────────

var companyVocab = query.Vocabulary{
	Terms: []query.Term{
		{Key: "name", Column: "name", Kind: query.Substring},
		{Key: "minEmployees", Column: "num_employees", Kind: query.AtLeast},
		{Key: "maxEmployees", Column: "num_employees", Kind: query.AtMost},
	},
	Bounds: []query.Bound{{Min: "minEmployees", Max: "maxEmployees"}},
}

var jobVocab = query.Vocabulary{
	Terms: []query.Term{
		{Key: "title", Column: "title", Kind: query.Substring},
		{Key: "minSalary", Column: "salary", Kind: query.AtLeast},
		{Key: "hasEquity", Column: "equity", Kind: query.Flag, Cond: `"equity" > 0`},
		{Key: "companyHandle", Column: "company_handle", Kind: query.Equals},
	},
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		vocab    query.Vocabulary
		filters  query.Filters
		dialect  db.Dialect
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "all company filters in vocabulary order",
			vocab:    companyVocab,
			filters:  query.Filters{"maxEmployees": 100, "name": "net", "minEmployees": 10},
			wantSQL:  `"name" ILIKE $1 AND "num_employees" >= $2 AND "num_employees" <= $3`,
			wantArgs: []any{"%net%", 10, 100},
		},
		{
			name:     "single max bound starts at one",
			vocab:    companyVocab,
			filters:  query.Filters{"maxEmployees": 3},
			wantSQL:  `"num_employees" <= $1`,
			wantArgs: []any{3},
		},
		{
			name:     "equal bounds are allowed",
			vocab:    companyVocab,
			filters:  query.Filters{"minEmployees": 5, "maxEmployees": 5},
			wantSQL:  `"num_employees" >= $1 AND "num_employees" <= $2`,
			wantArgs: []any{5, 5},
		},
		{
			name:    "no filters",
			vocab:   companyVocab,
			filters: query.Filters{},
		},
		{
			name:    "unknown keys only",
			vocab:   companyVocab,
			filters: query.Filters{"color": "red", "name": nil},
		},
		{
			name:     "sqlite uses LIKE",
			vocab:    companyVocab,
			filters:  query.Filters{"name": "c"},
			dialect:  db.SQLite,
			wantSQL:  `"name" LIKE $1`,
			wantArgs: []any{"%c%"},
		},
		{
			name:     "flag adds no parameter",
			vocab:    jobVocab,
			filters:  query.Filters{"title": "eng", "hasEquity": true, "companyHandle": "c1"},
			wantSQL:  `"title" ILIKE $1 AND "equity" > 0 AND "company_handle" = $2`,
			wantArgs: []any{"%eng%", "c1"},
		},
		{
			name:     "false flag is ignored",
			vocab:    jobVocab,
			filters:  query.Filters{"hasEquity": false, "minSalary": 1000},
			wantSQL:  `"salary" >= $1`,
			wantArgs: []any{1000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, err := tt.vocab.Build(tt.filters, tt.dialect)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if frag.SQL != tt.wantSQL {
				t.Fatalf("SQL = %q, want %q", frag.SQL, tt.wantSQL)
			}
			if len(frag.Args) != len(tt.wantArgs) || (len(tt.wantArgs) > 0 && !reflect.DeepEqual(frag.Args, tt.wantArgs)) {
				t.Fatalf("Args = %v, want %v", frag.Args, tt.wantArgs)
			}
			if strings.Count(frag.SQL, "$") != len(frag.Args) {
				t.Fatalf("placeholder count does not match args in %q", frag.SQL)
			}
			if tt.wantSQL == "" && frag.Where() != "" {
				t.Fatalf("expected no WHERE, got %q", frag.Where())
			}
		})
	}
}

func TestBuild_MinGreaterThanMax(t *testing.T) {
	_, err := companyVocab.Build(query.Filters{"minEmployees": 3, "maxEmployees": 1}, db.Postgres)
	if !db.IsInvalidRequest(err) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestBuild_NonNumericBound(t *testing.T) {
	_, err := companyVocab.Build(query.Filters{"minEmployees": "lots"}, db.Postgres)
	if !db.IsInvalidRequest(err) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestBuild_Policies(t *testing.T) {
	v := companyVocab
	v.ExclusiveBounds = true
	v.RejectEmpty = true

	frag, err := v.Build(query.Filters{"minEmployees": 1, "maxEmployees": 9}, db.Postgres)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if want := `"num_employees" > $1 AND "num_employees" < $2`; frag.SQL != want {
		t.Fatalf("SQL = %q, want %q", frag.SQL, want)
	}

	if _, err := v.Build(query.Filters{}, db.Postgres); !db.IsInvalidRequest(err) {
		t.Fatalf("expected ErrInvalidRequest for empty filters, got %v", err)
	}
}

func TestFragment_Where(t *testing.T) {
	f := query.Fragment{SQL: `"a" = $1`, Args: []any{1}}
	if f.Where() != `WHERE "a" = $1` {
		t.Fatalf("Where = %q", f.Where())
	}
	if (query.Fragment{}).Where() != "" {
		t.Fatal("empty fragment must render no WHERE")
	}
}
