package repository

import (
	"database/sql"
	"errors"

	"github.com/hilthontt/melody/internal/errs"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	// pqInvalidTextRepresentation is raised for ids that are not valid UUIDs.
	pqInvalidTextRepresentation = "22P02"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// lookupErr maps a single-row lookup failure to notFound when the row is
// missing or the id could never exist, and wraps anything else.
func lookupErr(err, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) || pqCode(err) == pqInvalidTextRepresentation {
		return notFound
	}
	return errs.Wrap(err, msg)
}

// updateErr reports notFound when an UPDATE touched no row.
func updateErr(res sql.Result, err, notFound error, msg string) error {
	if err != nil {
		if pqCode(err) == pqInvalidTextRepresentation {
			return notFound
		}
		return errs.Wrap(err, msg)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound
	}
	return nil
}
