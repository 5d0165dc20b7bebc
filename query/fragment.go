package query

// Fragment is a piece of SQL with positional placeholders $1..$n and the n
// values bound to them, in placeholder order.
type Fragment struct {
	SQL  string
	Args []any
}

// Empty reports whether the fragment holds no SQL.
func (f Fragment) Empty() bool { return f.SQL == "" }

// Where renders the fragment as a WHERE clause, or "" when it is empty.
func (f Fragment) Where() string {
	if f.Empty() {
		return ""
	}
	return "WHERE " + f.SQL
}

// NextParam is the placeholder number a caller should use for the first
// value it appends after the fragment's own.
func (f Fragment) NextParam() int { return len(f.Args) + 1 }
