package repository

import (
	"errors"

	"shuttlecourt/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgErrCodeUniqueViolation    = "23505"
	pgErrCodeForeignKeyViolated = "23503"
	pgErrCodeExclusionViolation = "23P01"
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// wrapQueryErr classifies a pgx error into a repository error kind. The
// exclusion-constraint code covers the slot-overlap guard: two bookings
// racing for the same court window lose here, not in application code.
func wrapQueryErr(msg string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return infra.WrapRepoErr(infra.KindNotFound, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrCodeUniqueViolation:
			return infra.WrapRepoErr(infra.KindDuplicateKey, msg, err)
		case pgErrCodeForeignKeyViolated:
			return infra.WrapRepoErr(infra.KindForeignKeyViolated, msg, err)
		case pgErrCodeExclusionViolation:
			return infra.WrapRepoErr(infra.KindConflict, msg, err)
		}
	}
	return infra.WrapRepoErr(infra.KindDBFailure, msg, err)
}
