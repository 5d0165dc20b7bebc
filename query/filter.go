package query

import (
	"fmt"
	"strings"

	"github.com/pixelready/express-jobly/db"
)

// Kind selects how a filter term becomes a predicate.
type Kind int

const (
	// Substring matches rows whose column contains the value, case-insensitively.
	Substring Kind = iota
	// AtLeast is a minimum bound on a numeric column.
	AtLeast
	// AtMost is a maximum bound on a numeric column.
	AtMost
	// Equals is an exact match.
	Equals
	// Flag adds a fixed condition when its value is true and nothing otherwise.
	Flag
)

// Term is one filter key a resource recognises.
type Term struct {
	Key    string // logical filter key, e.g. "minEmployees"
	Column string // physical column
	Kind   Kind
	Cond   string // Flag only: the condition to add, e.g. `"equity" > 0`
}

// Bound pairs the keys of a minimum and maximum filter on the same column.
// When both are present the minimum may not exceed the maximum.
type Bound struct {
	Min, Max string
}

// Filters is the subset of filter keys a caller supplied. Keys the vocabulary
// does not know are ignored; nil values count as absent.
type Filters map[string]any

// Vocabulary is the fixed, ordered set of filter terms of one resource.
// Predicates are emitted in Terms order, never in the caller's order.
type Vocabulary struct {
	Terms  []Term
	Bounds []Bound

	// ExclusiveBounds renders AtLeast/AtMost as > and < instead of >= and <=.
	ExclusiveBounds bool
	// RejectEmpty makes Build fail when no recognised filter is present
	// instead of returning an empty fragment.
	RejectEmpty bool
}

// Build validates supplied and renders the present filters as a conjunction.
// Validation happens before any predicate is built. With nothing present the
// fragment is empty and the caller omits WHERE altogether.
func (v Vocabulary) Build(supplied Filters, d db.Dialect) (Fragment, error) {
	if err := v.validate(supplied); err != nil {
		return Fragment{}, err
	}

	var (
		preds []string
		args  []any
		n     = 1
	)
	for _, t := range v.Terms {
		val, ok := supplied[t.Key]
		if !ok || val == nil {
			continue
		}
		pred, termArgs, next, err := t.predicate(n, val, d, v.ExclusiveBounds)
		if err != nil {
			return Fragment{}, err
		}
		if pred == "" {
			continue
		}
		preds = append(preds, pred)
		args = append(args, termArgs...)
		n = next
	}

	if len(preds) == 0 && v.RejectEmpty {
		return Fragment{}, db.Errorf(db.ErrInvalidRequest, "no filters")
	}
	return Fragment{SQL: strings.Join(preds, " AND "), Args: args}, nil
}

func (v Vocabulary) validate(supplied Filters) error {
	for _, b := range v.Bounds {
		minV, hasMin := supplied[b.Min]
		maxV, hasMax := supplied[b.Max]
		if !hasMin || !hasMax || minV == nil || maxV == nil {
			continue
		}
		lo, err := toFloat(b.Min, minV)
		if err != nil {
			return err
		}
		hi, err := toFloat(b.Max, maxV)
		if err != nil {
			return err
		}
		if lo > hi {
			return db.Errorf(db.ErrInvalidRequest, "%s cannot be greater than %s", b.Min, b.Max)
		}
	}
	return nil
}

// predicate renders the term with its first placeholder numbered n and
// returns the number the next term starts at.
func (t Term) predicate(n int, val any, d db.Dialect, exclusive bool) (string, []any, int, error) {
	col := QuoteIdent(t.Column)
	switch t.Kind {
	case Substring:
		return fmt.Sprintf("%s %s $%d", col, d.SubstringOp(), n), []any{fmt.Sprintf("%%%v%%", val)}, n + 1, nil
	case AtLeast, AtMost:
		if _, err := toFloat(t.Key, val); err != nil {
			return "", nil, n, err
		}
		op := ">="
		if t.Kind == AtMost {
			op = "<="
		}
		if exclusive {
			op = op[:1]
		}
		return fmt.Sprintf("%s %s $%d", col, op, n), []any{val}, n + 1, nil
	case Equals:
		return fmt.Sprintf("%s = $%d", col, n), []any{val}, n + 1, nil
	case Flag:
		on, ok := val.(bool)
		if !ok {
			return "", nil, n, db.Errorf(db.ErrInvalidRequest, "%s must be a boolean", t.Key)
		}
		if !on {
			return "", nil, n, nil
		}
		return t.Cond, nil, n, nil
	}
	return "", nil, n, fmt.Errorf("query: unknown filter kind %d for %q", t.Kind, t.Key)
}

func toFloat(key string, v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, db.Errorf(db.ErrInvalidRequest, "%s must be a number, got %T", key, v)
}
