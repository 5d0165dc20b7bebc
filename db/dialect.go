package db

// Dialect identifies the SQL flavour of the connected store. Statements are
// written for PostgreSQL ($N placeholders, RETURNING); the dialect only
// decides the few operators that differ.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite"
	default:
		return "postgres"
	}
}

// SubstringOp is the case-insensitive pattern operator. SQLite's LIKE is
// already case-insensitive for ASCII and has no ILIKE.
func (d Dialect) SubstringOp() string {
	if d == SQLite {
		return "LIKE"
	}
	return "ILIKE"
}

// DialectFor resolves the dialect of a database/sql driver name through the
// driver registry. Unknown drivers are assumed to speak PostgreSQL.
func DialectFor(driverName string) Dialect {
	drv, err := LookupDriver(driverName)
	if err != nil {
		return Postgres
	}
	return drv.Dialect()
}
