package query

import (
	"fmt"
	"strings"

	"github.com/pixelready/express-jobly/db"
)

// Assignment sets one logical field. A nil Value writes NULL.
type Assignment struct {
	Field string
	Value any
}

// PartialUpdate renders assignments as a SET list, `"col"=$1, "col2"=$2`,
// with values in the same order. The caller's order is preserved.
func PartialUpdate(data []Assignment, m FieldMap) (Fragment, error) {
	if len(data) == 0 {
		return Fragment{}, db.Errorf(db.ErrInvalidRequest, "no data")
	}

	sets := make([]string, len(data))
	args := make([]any, len(data))
	for i, a := range data {
		sets[i] = fmt.Sprintf("%s=$%d", QuoteIdent(m.Column(a.Field)), i+1)
		args[i] = a.Value
	}
	return Fragment{SQL: strings.Join(sets, ", "), Args: args}, nil
}
