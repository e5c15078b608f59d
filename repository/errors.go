package repository

import (
	"errors"
	"fmt"

	"celestia/domain/entities"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes reported as contention rather than faults
var conflictCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"57014": true, // query_canceled (statement timeout)
}

// wrapError annotates err with op and tags lock contention with ErrStorageConflict
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsConflict(err) {
		return fmt.Errorf("%s: %w: %w", op, entities.ErrStorageConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsConflict reports whether err is a Postgres contention failure
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return conflictCodes[pgErr.Code]
	}
	return false
}
